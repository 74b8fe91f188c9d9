// Command game-controller runs the physical game controller: it reads the
// button, motion and tilt sensors, exchanges line messages with the game host
// over serial and drives the LED, buzzer and servo.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"math/rand/v2"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog/log"

	"github.com/sweeney/game-controller/internal/accel"
	"github.com/sweeney/game-controller/internal/actuator"
	"github.com/sweeney/game-controller/internal/clock"
	"github.com/sweeney/game-controller/internal/controller"
	"github.com/sweeney/game-controller/internal/gpio"
	"github.com/sweeney/game-controller/internal/logging"
	"github.com/sweeney/game-controller/internal/logic"
	"github.com/sweeney/game-controller/internal/mqtt"
	"github.com/sweeney/game-controller/internal/serial"
	"github.com/sweeney/game-controller/internal/status"
	"github.com/sweeney/game-controller/internal/web"
)

type options struct {
	serialDev  string
	baud       int
	gpioChip   string
	pinButton  int
	pinMotion  int
	i2cDev     string
	i2cAddr    uint
	pwm        actuator.PWMConfig
	broker     string
	heartbeat  time.Duration
	httpAddr   string
	tick       time.Duration
	logLevel   string
	printState bool
}

func main() {
	var o options
	flag.StringVar(&o.serialDev, "serial", "/dev/ttyACM0", "Serial device connected to the game host")
	flag.IntVar(&o.baud, "baud", 115200, "Serial baud rate")
	flag.StringVar(&o.gpioChip, "gpio-chip", gpio.DefaultChip, "GPIO chip name")
	flag.IntVar(&o.pinButton, "pin-button", gpio.DefaultPinButton, "BCM pin number for the button (active low)")
	flag.IntVar(&o.pinMotion, "pin-motion", gpio.DefaultPinMotion, "BCM pin number for the motion sensor (active high)")
	flag.StringVar(&o.i2cDev, "i2c", accel.DefaultDevice, "I2C bus device for the accelerometer")
	flag.UintVar(&o.i2cAddr, "i2c-addr", accel.DefaultAddress, "Accelerometer I2C address")
	flag.StringVar(&o.pwm.Chip, "pwm-chip", "pwmchip0", "sysfs PWM chip")
	flag.IntVar(&o.pwm.Red, "pwm-red", 0, "PWM channel for the red LED")
	flag.IntVar(&o.pwm.Green, "pwm-green", 1, "PWM channel for the green LED")
	flag.IntVar(&o.pwm.Blue, "pwm-blue", 2, "PWM channel for the blue LED")
	flag.IntVar(&o.pwm.Buzzer, "pwm-buzzer", 3, "PWM channel for the buzzer")
	flag.IntVar(&o.pwm.Servo, "pwm-servo", 4, "PWM channel for the servo")
	flag.StringVar(&o.broker, "broker", "tcp://192.168.1.200:1883", "MQTT broker address (empty to disable)")
	flag.DurationVar(&o.heartbeat, "heartbeat", 15*time.Minute, "Heartbeat interval (0 to disable)")
	flag.StringVar(&o.httpAddr, "http", ":80", "HTTP status address (empty to disable)")
	flag.DurationVar(&o.tick, "tick", 5*time.Millisecond, "Control loop pass interval")
	flag.StringVar(&o.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.BoolVar(&o.printState, "print-state", false, "Print current sensor readings and exit")

	flag.Parse()

	if err := logging.Setup(os.Stderr, o.logLevel, isatty.IsTerminal(os.Stderr.Fd())); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(2)
	}

	if err := run(o); err != nil {
		log.Fatal().Err(err).Msg("fatal")
	}
}

func run(o options) error {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	inputs, err := gpio.NewRealReader(o.gpioChip, o.pinButton, o.pinMotion)
	if err != nil {
		return fmt.Errorf("init gpio: %w", err)
	}
	defer inputs.Close()

	var sensor accel.Reader = absentSensor{}
	bus, err := accel.OpenBus(o.i2cDev)
	if err != nil {
		log.Error().Err(err).Str("device", o.i2cDev).Msg("open i2c bus")
	} else {
		defer bus.Close()
		sensor = accel.NewMPU6050(bus, uint16(o.i2cAddr))
	}

	if o.printState {
		return printState(inputs, sensor)
	}

	act, err := actuator.NewPWMDriver(o.pwm)
	if err != nil {
		return fmt.Errorf("init actuators: %w", err)
	}
	defer act.Close()

	var publisher mqtt.Publisher = nopPublisher{}
	var mqttStatus mqtt.ConnectionStatus = nopPublisher{}
	var sink controller.Sink
	if o.broker != "" {
		p := mqtt.NewRealPublisher(o.broker)
		defer p.Close()
		publisher, mqttStatus, sink = p, p, p
	}

	// Initialize status tracker (before STARTUP so snapshot is available)
	intervals := controller.DefaultIntervals
	tracker := status.NewTracker(time.Now(), status.Config{
		ButtonMs:    int64(intervals.Button),
		MotionMs:    int64(intervals.Motion),
		TiltMs:      int64(intervals.Tilt),
		ServoMs:     int64(intervals.Servo),
		HeartbeatMs: o.heartbeat.Milliseconds(),
		Serial:      o.serialDev,
		Baud:        o.baud,
		Broker:      o.broker,
		HTTPPort:    o.httpAddr,
	})
	if net := readNetworkInfo(); net != nil {
		tracker.SetNetwork(net)
	}

	// The status page is up before the probe so a fault is visible remotely.
	if o.httpAddr != "" {
		srv := web.New(o.httpAddr, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error().Err(err).Msg("http server error")
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Info().Str("addr", o.httpAddr).Msg("http status server listening")
	}

	if err := controller.Probe(sensor, act); err != nil {
		tracker.SetFault(err.Error())
		return failStop(err, publisher, time.Now, sigCh)
	}
	if dev, ok := sensor.(*accel.MPU6050); ok {
		if err := dev.Configure(); err != nil {
			return fmt.Errorf("configure accelerometer: %w", err)
		}
	}

	port, err := serial.Open(&serial.Config{Device: o.serialDev, Baud: o.baud, ReadTimeout: 100})
	if err != nil {
		return fmt.Errorf("init serial: %w", err)
	}
	link := serial.NewLink(port)
	link.Start()
	defer link.Close()

	src := clock.NewMonotonic()
	ctrl := controller.New(controller.Config{
		Inputs:    inputs,
		Accel:     sensor,
		Actuators: act,
		Transport: link,
		Sink:      sink,
		Observer:  newIgnoredLogger(),
		Rand:      rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), uint64(os.Getpid()))),
		Intervals: intervals,
	}, src.Now())
	tracker.Update(ctrl.Snapshot(), link.Stats())

	// Publish startup event with full status snapshot
	snap := tracker.Snapshot()
	startupEvent := mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "STARTUP",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
	}
	if err := publisher.PublishSystem(startupEvent); err != nil {
		log.Warn().Err(err).Msg("failed to publish startup event")
	}

	log.Info().
		Str("serial", o.serialDev).
		Int("baud", o.baud).
		Str("broker", o.broker).
		Dur("heartbeat", o.heartbeat).
		Dur("tick", o.tick).
		Msg("started")

	ticker := time.NewTicker(o.tick)
	defer ticker.Stop()

	return runLoop(ctrl, src, link, publisher, mqttStatus, tracker, o.heartbeat, time.Now, ticker.C, sigCh)
}

// statsSource reports transport drop counters.
type statsSource interface {
	Stats() serial.Stats
}

func runLoop(ctrl *controller.Controller, src clock.Source, link statsSource, publisher mqtt.Publisher, mqttStatus mqtt.ConnectionStatus, tracker *status.Tracker, heartbeat time.Duration, now func() time.Time, tick <-chan time.Time, sig <-chan os.Signal) error {
	heartbeatGate := logic.NewGate(uint32(heartbeat.Milliseconds()), src.Now())

	for {
		select {
		case s := <-sig:
			signalName := signalName(s)
			log.Info().Str("signal", signalName).Msg("shutting down")
			event := mqtt.SystemEvent{
				Timestamp: now(),
				Event:     "SHUTDOWN",
				Reason:    signalName,
				Retained:  true,
			}
			if tracker != nil {
				refreshTracker(tracker, ctrl, link, mqttStatus)
				event.RawPayload = status.FormatStatusEvent(tracker.Snapshot(), "SHUTDOWN", signalName)
			}
			if err := publisher.PublishSystem(event); err != nil {
				log.Warn().Err(err).Msg("failed to publish shutdown event")
			}
			return nil

		case <-tick:
			t := src.Now()
			ctrl.Step(t)

			if tracker != nil {
				refreshTracker(tracker, ctrl, link, mqttStatus)
			}

			if !heartbeatGate.Ready(t) {
				continue
			}
			snap := ctrl.Snapshot()
			log.Info().
				Str("state", snap.State.String()).
				Int("button_presses", snap.Counts.ButtonPresses).
				Int("motion_events", snap.Counts.MotionEvents).
				Int("commands", snap.Counts.Commands).
				Int("ignored", snap.Counts.Ignored).
				Int("mqtt_dropped", mqttStatus.OutboxStats().Dropped).
				Msg("heartbeat")

			hbEvent := mqtt.SystemEvent{
				Timestamp: now(),
				Event:     "HEARTBEAT",
			}
			if tracker != nil {
				// Refresh network info for heartbeat
				if net := readNetworkInfo(); net != nil {
					tracker.SetNetwork(net)
				}
				hbEvent.RawPayload = status.FormatStatusEvent(tracker.Snapshot(), "HEARTBEAT", "")
			}
			if err := publisher.PublishSystem(hbEvent); err != nil {
				log.Warn().Err(err).Msg("heartbeat publish error")
			}
		}
	}
}

func refreshTracker(tracker *status.Tracker, ctrl *controller.Controller, link statsSource, mqttStatus mqtt.ConnectionStatus) {
	tracker.Update(ctrl.Snapshot(), link.Stats())
	tracker.SetMQTTConnected(mqttStatus.IsConnected())
	tracker.SetMQTTOutbox(mqttStatus.OutboxStats())
}

// failStop holds the fault indication until the process is signalled and
// then returns cause. The caller has already shown the fault colour.
func failStop(cause error, publisher mqtt.Publisher, now func() time.Time, sig <-chan os.Signal) error {
	log.Error().Err(cause).Msg("startup failed; holding fault indication until signalled")
	event := mqtt.SystemEvent{
		Timestamp: now(),
		Event:     "FAULT",
		Reason:    cause.Error(),
		Retained:  true,
	}
	if err := publisher.PublishSystem(event); err != nil {
		log.Warn().Err(err).Msg("failed to publish fault event")
	}
	s := <-sig
	log.Info().Str("signal", signalName(s)).Msg("exiting after fault")
	return fmt.Errorf("startup: %w", cause)
}

func printState(inputs gpio.Reader, sensor accel.Reader) error {
	pressed, motion, err := inputs.Read()
	if err != nil {
		return fmt.Errorf("read gpio: %w", err)
	}
	if !sensor.Connected() {
		return controller.ErrSensorMissing
	}
	s, err := sensor.ReadRaw()
	if err != nil {
		return fmt.Errorf("read accelerometer: %w", err)
	}
	x, y := logic.Tilt(s.X, s.Y, s.Z)
	fmt.Printf("Button: %s, Motion: %s, Tilt: x=%.2f y=%.2f\n", pressedString(pressed), motionString(motion), x, y)
	return nil
}

// ignoredLogger reports dropped inbound lines as rate-limited warnings.
type ignoredLogger struct {
	sampler *logging.Sampler
}

func newIgnoredLogger() *ignoredLogger {
	return &ignoredLogger{sampler: logging.NewSampler(5*time.Second, 3)}
}

func (l *ignoredLogger) Ignored(line string, reason error) {
	ok, suppressed := l.sampler.Allow()
	if !ok {
		return
	}
	log.Warn().Err(reason).Str("line", line).Int("suppressed", suppressed).Msg("ignored inbound line")
}

// absentSensor stands in for an accelerometer whose bus could not be opened.
type absentSensor struct{}

func (absentSensor) Connected() bool { return false }

func (absentSensor) ReadRaw() (accel.Sample, error) { return accel.Sample{}, accel.ErrNotConnected }

// nopPublisher is used when MQTT is disabled.
type nopPublisher struct{}

func (nopPublisher) Publish(logic.Event) error            { return nil }
func (nopPublisher) PublishSystem(mqtt.SystemEvent) error { return nil }
func (nopPublisher) Close() error                         { return nil }
func (nopPublisher) IsConnected() bool                    { return false }
func (nopPublisher) OutboxStats() mqtt.OutboxStats        { return mqtt.OutboxStats{} }

func signalName(s os.Signal) string {
	switch s {
	case syscall.SIGINT:
		return "SIGINT"
	case syscall.SIGTERM:
		return "SIGTERM"
	}
	return "UNKNOWN"
}

// pi-helper env var names (written to /run/pi-helper.env).
const (
	envNetworkType       = "NETWORK_TYPE"
	envNetworkIP         = "NETWORK_IP"
	envNetworkStatus     = "NETWORK_STATUS"
	envNetworkGateway    = "NETWORK_GATEWAY"
	envNetworkWifiStatus = "NETWORK_WIFI_STATUS"
	envNetworkWifiSSID   = "NETWORK_WIFI_SSID"
)

func readNetworkInfo() *status.NetworkInfo {
	s := os.Getenv(envNetworkStatus)
	if s == "" {
		return nil
	}
	return &status.NetworkInfo{
		Type:       os.Getenv(envNetworkType),
		IP:         os.Getenv(envNetworkIP),
		Status:     s,
		Gateway:    os.Getenv(envNetworkGateway),
		WifiStatus: os.Getenv(envNetworkWifiStatus),
		SSID:       os.Getenv(envNetworkWifiSSID),
	}
}

func pressedString(on bool) string {
	if on {
		return "pressed"
	}
	return "released"
}

func motionString(on bool) string {
	if on {
		return "detected"
	}
	return "none"
}
