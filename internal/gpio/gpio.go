// Package gpio reads the controller's button and motion sensor.
// RealReader uses the Linux GPIO character device; FakeReader replays
// scripted levels for tests.
package gpio

import "errors"

// ErrUnsupported is returned by RealReader on platforms without gpiocdev.
var ErrUnsupported = errors.New("gpio: not supported on this platform (requires Linux)")

// Reader reads the controller's digital inputs.
type Reader interface {
	// Read returns the logical states of the button and motion sensor.
	// The button is wired active-low with a pull-up: raw low = pressed.
	// The motion sensor is active-high.
	// Returns (pressed, motion, error).
	Read() (bool, bool, error)

	// Close releases GPIO resources.
	Close() error
}

// Pin definitions (BCM numbering)
const (
	DefaultPinButton = 17
	DefaultPinMotion = 27
	DefaultChip      = "gpiochip0"
)
