package logic

import (
	"time"

	"github.com/sweeney/game-controller/internal/clock"
)

var (
	ColorWhite  = Color{255, 255, 255}
	ColorGreen  = Color{0, 255, 0}
	ColorRed    = Color{255, 0, 0}
	ColorBlue   = Color{0, 0, 255}
	ColorOrange = Color{255, 165, 0}
	ColorPurple = Color{128, 0, 128}
	ColorYellow = Color{255, 255, 0}
)

// Confirmation tones that are not tied to a state.
var (
	ButtonTone = Tone{FreqHz: 2000, Duration: 50 * time.Millisecond}
	ResetTone  = Tone{FreqHz: 1500, Duration: 100 * time.Millisecond}
)

// CommandToneDuration is the length of tones requested with the T command.
const CommandToneDuration = 200 * time.Millisecond

// feedbackTable is indexed by GameState; its length is tied to numStates so
// adding a state without a row fails TestFeedbackForEveryState.
var feedbackTable = [numStates]Feedback{
	StateIdle:    {Color: ColorWhite},
	StatePlaying: {Color: ColorGreen},
	StateCollision: {
		Color:         ColorRed,
		Tone:          Tone{FreqHz: 200, Duration: 300 * time.Millisecond},
		BlinkInterval: 200,
	},
	StatePowerUp: {
		Color:         ColorBlue,
		Tone:          Tone{FreqHz: 1000, Duration: 200 * time.Millisecond},
		BlinkInterval: 100,
	},
	StateGameOver: {
		Color:         ColorOrange,
		Tone:          Tone{FreqHz: 150, Duration: 500 * time.Millisecond},
		BlinkInterval: 500,
	},
	StateSpecial1: {
		Color:         ColorPurple,
		Tone:          Tone{FreqHz: 800, Duration: 250 * time.Millisecond},
		BlinkInterval: 150,
	},
	StateSpecial2: {
		Color:         ColorYellow,
		Tone:          Tone{FreqHz: 1200, Duration: 250 * time.Millisecond},
		BlinkInterval: 250,
	},
}

// FeedbackFor returns the LED colour, entry tone and blink cadence of s.
// Undefined states get the Idle feedback.
func FeedbackFor(s GameState) Feedback {
	if !s.Valid() {
		return feedbackTable[StateIdle]
	}
	return feedbackTable[s]
}

// Blinker alternates the LED between a colour and off.
type Blinker struct {
	gate  Gate
	color Color
	lit   bool
}

// Start applies fb at now. It returns the colour to show immediately.
// A zero BlinkInterval stops blinking and leaves the colour solid.
func (b *Blinker) Start(fb Feedback, now clock.Timestamp) Color {
	b.color = fb.Color
	b.lit = true
	b.gate.Restart(fb.BlinkInterval, now)
	return b.color
}

// Tick toggles the LED if the blink interval has elapsed. It returns the
// colour to write and true when a toggle happened.
func (b *Blinker) Tick(now clock.Timestamp) (Color, bool) {
	if !b.gate.Ready(now) {
		return Color{}, false
	}
	b.lit = !b.lit
	if b.lit {
		return b.color, true
	}
	return Off, true
}

// Interval returns the current blink interval in milliseconds.
func (b *Blinker) Interval() uint32 {
	return b.gate.Interval()
}

// Lit reports whether the LED is currently in its "on" phase.
func (b *Blinker) Lit() bool {
	return b.lit
}

// Showing returns the colour currently on the LED.
func (b *Blinker) Showing() Color {
	if b.lit {
		return b.color
	}
	return Off
}
