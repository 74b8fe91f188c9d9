package actuator

import "github.com/sweeney/game-controller/internal/logic"

// FakeDriver records actuator commands for test assertions.
type FakeDriver struct {
	// Colors contains every colour written, in order.
	Colors []logic.Color

	// Tones contains every tone played.
	Tones []logic.Tone

	// Angles contains every servo angle written.
	Angles []int

	// Err, if set, is returned by every command (after recording it).
	Err error

	// Closed tracks if Close was called.
	Closed bool
}

// NewFakeDriver creates an empty FakeDriver.
func NewFakeDriver() *FakeDriver {
	return &FakeDriver{}
}

// SetColor records c.
func (f *FakeDriver) SetColor(c logic.Color) error {
	f.Colors = append(f.Colors, c)
	return f.Err
}

// PlayTone records t.
func (f *FakeDriver) PlayTone(t logic.Tone) error {
	f.Tones = append(f.Tones, t)
	return f.Err
}

// SetServo records angle.
func (f *FakeDriver) SetServo(angle int) error {
	f.Angles = append(f.Angles, angle)
	return f.Err
}

// Close marks the driver as closed.
func (f *FakeDriver) Close() error {
	f.Closed = true
	return nil
}

// LastColor returns the most recent colour, or Off if none.
func (f *FakeDriver) LastColor() logic.Color {
	if len(f.Colors) == 0 {
		return logic.Off
	}
	return f.Colors[len(f.Colors)-1]
}

// LastAngle returns the most recent servo angle, or -1 if none.
func (f *FakeDriver) LastAngle() int {
	if len(f.Angles) == 0 {
		return -1
	}
	return f.Angles[len(f.Angles)-1]
}

// Reset clears recorded commands.
func (f *FakeDriver) Reset() {
	f.Colors = nil
	f.Tones = nil
	f.Angles = nil
	f.Err = nil
	f.Closed = false
}
