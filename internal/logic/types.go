// Package logic contains pure game-controller logic: timing gates, edge
// detection, tilt computation, the feedback state machine and servo motion.
// This package has NO external dependencies (no GPIO, serial, MQTT or sleeps).
// Time is always injected as a clock.Timestamp.
package logic

import (
	"fmt"
	"time"

	"github.com/sweeney/game-controller/internal/clock"
)

// GameState is the game phase reported by the remote peer.
type GameState uint8

const (
	StateIdle GameState = iota
	StatePlaying
	StateCollision
	StatePowerUp
	StateGameOver
	StateSpecial1
	StateSpecial2

	numStates
)

// ResetSentinel is the only argument accepted by the R command. It is the
// ordinal following the last real state.
const ResetSentinel = int(numStates)

var stateNames = [numStates]string{
	StateIdle:      "IDLE",
	StatePlaying:   "PLAYING",
	StateCollision: "COLLISION",
	StatePowerUp:   "POWERUP",
	StateGameOver:  "GAMEOVER",
	StateSpecial1:  "SPECIAL1",
	StateSpecial2:  "SPECIAL2",
}

func (s GameState) String() string {
	if s < numStates {
		return stateNames[s]
	}
	return fmt.Sprintf("STATE(%d)", uint8(s))
}

// Valid reports whether s is one of the defined states.
func (s GameState) Valid() bool {
	return s < numStates
}

// Animated reports whether the servo moves on its own in this state.
func (s GameState) Animated() bool {
	return s == StatePlaying || s == StatePowerUp
}

// States returns all defined states in ordinal order.
func States() []GameState {
	out := make([]GameState, numStates)
	for i := range out {
		out[i] = GameState(i)
	}
	return out
}

// Color is an RGB LED value.
type Color struct {
	R, G, B uint8
}

// Off is the dark LED.
var Off = Color{}

func (c Color) String() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Tone is a one-shot buzzer sound. A zero FreqHz means silence.
type Tone struct {
	FreqHz   int
	Duration time.Duration
}

// Silent reports whether the tone produces no sound.
func (t Tone) Silent() bool {
	return t.FreqHz <= 0 || t.Duration <= 0
}

// Feedback is the physical expression of a GameState.
type Feedback struct {
	Color Color
	Tone  Tone
	// BlinkInterval in milliseconds; 0 means solid colour.
	BlinkInterval uint32
}

// EventType identifies an outbound controller event.
type EventType string

const (
	EventAccel  EventType = "A"
	EventButton EventType = "B"
	EventMotion EventType = "M"
	// EventState is emitted on every GameState transition. It is mirrored
	// to telemetry only; the serial peer already knows the state.
	EventState EventType = "S"
)

// Event is something the controller observed or did.
type Event struct {
	Time   clock.Timestamp
	Type   EventType
	AngleX float64   // EventAccel
	AngleY float64   // EventAccel
	State  GameState // EventState: the new state
	From   GameState // EventState: the previous state
}

// EventCounts tracks totals since startup.
type EventCounts struct {
	ButtonPresses int
	MotionEvents  int
	Commands      int
	Ignored       int
	Transitions   int
}
