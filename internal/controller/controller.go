// Package controller runs the cooperative control loop: it polls the
// inputs, talks to the game host and drives the actuators, all from a
// single goroutine. Every activity is gated by elapsed time and nothing
// in Step blocks.
package controller

import (
	"errors"
	"math/rand/v2"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/sweeney/game-controller/internal/accel"
	"github.com/sweeney/game-controller/internal/actuator"
	"github.com/sweeney/game-controller/internal/clock"
	"github.com/sweeney/game-controller/internal/gpio"
	"github.com/sweeney/game-controller/internal/logging"
	"github.com/sweeney/game-controller/internal/logic"
	"github.com/sweeney/game-controller/internal/protocol"
)

// ErrSensorMissing is the one fatal condition: the accelerometer did not
// answer at startup.
var ErrSensorMissing = errors.New("accelerometer not detected")

// Transport carries protocol lines to and from the game host.
type Transport interface {
	// Send queues one complete line without blocking.
	Send(line []byte) bool

	// Drain returns every complete line received so far without blocking.
	Drain() []string
}

// Sink receives button, motion and state-change events for telemetry.
type Sink interface {
	Emit(e logic.Event)
}

// Observer is told about inbound lines that were ignored.
type Observer interface {
	Ignored(line string, reason error)
}

// Intervals are the polling periods in milliseconds.
type Intervals struct {
	Button uint32
	Motion uint32
	Tilt   uint32
	Servo  uint32
}

// DefaultIntervals are the controller's polling periods.
var DefaultIntervals = Intervals{
	Button: 50,
	Motion: 100,
	Tilt:   100,
	Servo:  50,
}

// Config wires the controller to its hardware and peers.
// Sink, Observer and Rand are optional.
type Config struct {
	Inputs    gpio.Reader
	Accel     accel.Reader
	Actuators actuator.Driver
	Transport Transport
	Sink      Sink
	Observer  Observer
	Rand      *rand.Rand
	Intervals Intervals
}

// Controller owns all mutable game-controller state. It must only be used
// from one goroutine; other goroutines read Snapshots.
type Controller struct {
	cfg Config

	state logic.GameState
	servo logic.Servo
	blink logic.Blinker

	button logic.EdgeDetector
	motion logic.EdgeDetector

	buttonGate logic.Gate
	motionGate logic.Gate
	tiltGate   logic.Gate
	servoGate  logic.Gate

	angleX, angleY float64
	counts         logic.EventCounts

	inputErrs    *logging.Sampler
	accelErrs    *logging.Sampler
	actuatorErrs *logging.Sampler
}

// New creates a controller in the Idle state and applies its feedback.
func New(cfg Config, now clock.Timestamp) *Controller {
	if cfg.Intervals == (Intervals{}) {
		cfg.Intervals = DefaultIntervals
	}
	if cfg.Rand == nil {
		cfg.Rand = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x9e3779b97f4a7c15))
	}

	c := &Controller{
		cfg:          cfg,
		state:        logic.StateIdle,
		servo:        logic.NewServo(),
		buttonGate:   logic.NewGate(cfg.Intervals.Button, now),
		motionGate:   logic.NewGate(cfg.Intervals.Motion, now),
		tiltGate:     logic.NewGate(cfg.Intervals.Tilt, now),
		servoGate:    logic.NewGate(cfg.Intervals.Servo, now),
		inputErrs:    logging.NewSampler(5*time.Second, 1),
		accelErrs:    logging.NewSampler(5*time.Second, 1),
		actuatorErrs: logging.NewSampler(5*time.Second, 1),
	}

	c.setColor(c.blink.Start(logic.FeedbackFor(c.state), now))
	c.setServo()
	return c
}

// Probe checks the accelerometer link. On failure it shows solid red and
// returns ErrSensorMissing; the caller must not start the loop.
func Probe(r accel.Reader, act actuator.Driver) error {
	if r.Connected() {
		return nil
	}
	if err := act.SetColor(logic.ColorRed); err != nil {
		log.Error().Err(err).Msg("set fault colour")
	}
	return ErrSensorMissing
}

// Step runs one pass of the loop at time now.
func (c *Controller) Step(now clock.Timestamp) {
	c.pollInputs(now)

	if c.tiltGate.Ready(now) {
		c.sampleTilt(now)
	}

	for _, line := range c.cfg.Transport.Drain() {
		c.Dispatch(line, now)
	}

	if c.servoGate.Ready(now) && c.state.Animated() {
		if c.servo.Animate(c.state) {
			c.setServo()
		}
	}

	if color, ok := c.blink.Tick(now); ok {
		c.setColor(color)
	}
}

// pollInputs samples the digital inputs once if either gate is due.
func (c *Controller) pollInputs(now clock.Timestamp) {
	buttonDue := c.buttonGate.Ready(now)
	motionDue := c.motionGate.Ready(now)
	if !buttonDue && !motionDue {
		return
	}

	pressed, motion, err := c.cfg.Inputs.Read()
	if err != nil {
		c.inputErrs.Warn(err, "gpio read error")
		return
	}

	if buttonDue && c.button.Sample(pressed) {
		c.counts.ButtonPresses++
		c.send(logic.Event{Time: now, Type: logic.EventButton})
		c.playTone(logic.ButtonTone)
	}

	if motionDue && c.motion.Sample(motion) {
		c.counts.MotionEvents++
		c.send(logic.Event{Time: now, Type: logic.EventMotion})
		c.servo.Kick(c.cfg.Rand.IntN(2) == 1)
		c.setServo()
	}
}

func (c *Controller) sampleTilt(now clock.Timestamp) {
	s, err := c.cfg.Accel.ReadRaw()
	if err != nil {
		c.accelErrs.Warn(err, "accelerometer read error")
		return
	}
	c.angleX, c.angleY = logic.Tilt(s.X, s.Y, s.Z)
	c.send(logic.Event{Time: now, Type: logic.EventAccel, AngleX: c.angleX, AngleY: c.angleY})
}

// send encodes e for the host and mirrors non-accel events to the sink.
func (c *Controller) send(e logic.Event) {
	if line, ok := protocol.Encode(e); ok {
		c.cfg.Transport.Send(line)
	}
	if e.Type != logic.EventAccel {
		c.emit(e)
	}
}

func (c *Controller) emit(e logic.Event) {
	if c.cfg.Sink != nil {
		c.cfg.Sink.Emit(e)
	}
}

func (c *Controller) setColor(color logic.Color) {
	if err := c.cfg.Actuators.SetColor(color); err != nil {
		c.actuatorErrs.Warn(err, "led write error")
	}
}

func (c *Controller) setServo() {
	if err := c.cfg.Actuators.SetServo(c.servo.Pos); err != nil {
		c.actuatorErrs.Warn(err, "servo write error")
	}
}

func (c *Controller) playTone(t logic.Tone) {
	if t.Silent() {
		return
	}
	if err := c.cfg.Actuators.PlayTone(t); err != nil {
		c.actuatorErrs.Warn(err, "buzzer write error")
	}
}

// Snapshot is a point-in-time copy of the controller state.
type Snapshot struct {
	State          logic.GameState
	Color          logic.Color
	BlinkInterval  uint32
	ServoPos       int
	ServoDir       int
	AngleX         float64
	AngleY         float64
	ButtonPressed  bool
	MotionDetected bool
	Counts         logic.EventCounts
}

// Snapshot returns the current state by value.
func (c *Controller) Snapshot() Snapshot {
	return Snapshot{
		State:          c.state,
		Color:          c.blink.Showing(),
		BlinkInterval:  c.blink.Interval(),
		ServoPos:       c.servo.Pos,
		ServoDir:       c.servo.Dir,
		AngleX:         c.angleX,
		AngleY:         c.angleY,
		ButtonPressed:  c.button.Level(),
		MotionDetected: c.motion.Level(),
		Counts:         c.counts,
	}
}
