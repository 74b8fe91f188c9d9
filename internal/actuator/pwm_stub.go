//go:build !linux

package actuator

import (
	"errors"

	"github.com/sweeney/game-controller/internal/logic"
)

// PWMConfig names the PWM chip and channel numbers of each actuator.
type PWMConfig struct {
	Chip   string
	Red    int
	Green  int
	Blue   int
	Buzzer int
	Servo  int
}

// PWMDriver is not available on non-Linux platforms.
type PWMDriver struct{}

// NewPWMDriver returns an error on non-Linux platforms.
func NewPWMDriver(cfg PWMConfig) (*PWMDriver, error) {
	return nil, errors.New("actuator: sysfs pwm not supported on this platform (requires Linux)")
}

func (d *PWMDriver) SetColor(c logic.Color) error { return errors.New("actuator: not supported") }
func (d *PWMDriver) PlayTone(t logic.Tone) error  { return errors.New("actuator: not supported") }
func (d *PWMDriver) SetServo(angle int) error     { return errors.New("actuator: not supported") }
func (d *PWMDriver) Close() error                 { return nil }
