//go:build linux

package actuator

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/sweeney/game-controller/internal/logic"
)

// SysfsRoot is where the kernel exposes PWM chips.
var SysfsRoot = "/sys/class/pwm"

// PWMConfig names the PWM chip and channel numbers of each actuator.
type PWMConfig struct {
	Chip   string
	Red    int
	Green  int
	Blue   int
	Buzzer int
	Servo  int
}

// channel is one exported sysfs PWM channel.
type channel struct {
	dir    string
	period int64
}

func exportChannel(chip string, n int) (*channel, error) {
	chipDir := filepath.Join(SysfsRoot, chip)
	dir := filepath.Join(chipDir, "pwm"+strconv.Itoa(n))
	if _, err := os.Stat(dir); errors.Is(err, os.ErrNotExist) {
		if err := os.WriteFile(filepath.Join(chipDir, "export"), []byte(strconv.Itoa(n)), 0o200); err != nil {
			return nil, fmt.Errorf("export %s/pwm%d: %w", chip, n, err)
		}
	}

	// udev may take a moment to make the new attributes writable.
	deadline := time.Now().Add(time.Second)
	for {
		f, err := os.OpenFile(filepath.Join(dir, "period"), os.O_WRONLY, 0)
		if err == nil {
			f.Close()
			break
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("wait for %s: %w", dir, err)
		}
		time.Sleep(20 * time.Millisecond)
	}
	return &channel{dir: dir}, nil
}

func (c *channel) write(attr string, v int64) error {
	return os.WriteFile(filepath.Join(c.dir, attr), []byte(strconv.FormatInt(v, 10)), 0o200)
}

// configure sets period and duty. Duty is cleared first because the kernel
// rejects a period shorter than the current duty cycle.
func (c *channel) configure(period, duty int64) error {
	if period != c.period {
		if err := c.write("duty_cycle", 0); err != nil {
			return err
		}
		if err := c.write("period", period); err != nil {
			return err
		}
		c.period = period
	}
	return c.write("duty_cycle", duty)
}

func (c *channel) enable(on bool) error {
	v := int64(0)
	if on {
		v = 1
	}
	return c.write("enable", v)
}

// PWMDriver drives the actuators through Linux sysfs PWM channels.
type PWMDriver struct {
	red, green, blue *channel
	buzzer           *channel
	servo            *channel

	// mu guards the buzzer, which is also touched by the tone timer.
	mu        sync.Mutex
	toneTimer *time.Timer
	toneSeq   uint64
}

var _ Driver = (*PWMDriver)(nil)

// NewPWMDriver exports and enables every configured channel.
func NewPWMDriver(cfg PWMConfig) (*PWMDriver, error) {
	d := &PWMDriver{}
	for _, c := range []struct {
		dst **channel
		n   int
	}{
		{&d.red, cfg.Red},
		{&d.green, cfg.Green},
		{&d.blue, cfg.Blue},
		{&d.buzzer, cfg.Buzzer},
		{&d.servo, cfg.Servo},
	} {
		ch, err := exportChannel(cfg.Chip, c.n)
		if err != nil {
			return nil, err
		}
		*c.dst = ch
	}

	for _, ch := range []*channel{d.red, d.green, d.blue} {
		if err := ch.configure(ledPeriodNs, 0); err != nil {
			return nil, fmt.Errorf("configure led: %w", err)
		}
		if err := ch.enable(true); err != nil {
			return nil, fmt.Errorf("enable led: %w", err)
		}
	}
	if err := d.servo.configure(servoPeriodNs, servoPulseNs(logic.ServoCenter)); err != nil {
		return nil, fmt.Errorf("configure servo: %w", err)
	}
	if err := d.servo.enable(true); err != nil {
		return nil, fmt.Errorf("enable servo: %w", err)
	}
	return d, nil
}

// SetColor sets the LED duty cycles.
func (d *PWMDriver) SetColor(c logic.Color) error {
	if err := d.red.configure(ledPeriodNs, ledDutyNs(c.R)); err != nil {
		return fmt.Errorf("set red: %w", err)
	}
	if err := d.green.configure(ledPeriodNs, ledDutyNs(c.G)); err != nil {
		return fmt.Errorf("set green: %w", err)
	}
	if err := d.blue.configure(ledPeriodNs, ledDutyNs(c.B)); err != nil {
		return fmt.Errorf("set blue: %w", err)
	}
	return nil
}

// PlayTone starts a square wave at t.FreqHz and schedules it to stop.
// A new tone replaces any tone still playing.
func (d *PWMDriver) PlayTone(t logic.Tone) error {
	if t.Silent() {
		return nil
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.toneTimer != nil {
		d.toneTimer.Stop()
	}
	d.toneSeq++
	seq := d.toneSeq
	period := tonePeriodNs(t.FreqHz)
	if err := d.buzzer.configure(period, period/2); err != nil {
		return fmt.Errorf("set tone: %w", err)
	}
	if err := d.buzzer.enable(true); err != nil {
		return fmt.Errorf("start tone: %w", err)
	}
	d.toneTimer = time.AfterFunc(t.Duration, func() { d.endTone(seq) })
	return nil
}

// endTone silences the buzzer unless a newer tone has started since seq.
// A timer that fired while PlayTone held the lock must not cut the new tone.
func (d *PWMDriver) endTone(seq uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if seq != d.toneSeq {
		return
	}
	if err := d.buzzer.enable(false); err != nil {
		log.Warn().Err(err).Msg("stop tone")
	}
}

// SetServo sets the servo pulse width for angle.
func (d *PWMDriver) SetServo(angle int) error {
	if err := d.servo.configure(servoPeriodNs, servoPulseNs(angle)); err != nil {
		return fmt.Errorf("set servo: %w", err)
	}
	return nil
}

// Close disables every channel.
func (d *PWMDriver) Close() error {
	d.mu.Lock()
	if d.toneTimer != nil {
		d.toneTimer.Stop()
	}
	d.mu.Unlock()

	var errs []error
	for _, ch := range []*channel{d.red, d.green, d.blue, d.buzzer, d.servo} {
		if ch == nil {
			continue
		}
		if err := ch.enable(false); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
