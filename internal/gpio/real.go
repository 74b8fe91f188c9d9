//go:build linux

package gpio

import (
	"errors"
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// RealReader reads GPIO from actual hardware using Linux GPIO character device.
type RealReader struct {
	chip      *gpiocdev.Chip
	buttonPin *gpiocdev.Line
	motionPin *gpiocdev.Line
}

// NewRealReader creates a GPIO reader for the button and motion sensor.
func NewRealReader(chipName string, pinButton, pinMotion int) (*RealReader, error) {
	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	// The button pulls the line to ground when pressed.
	buttonLine, err := chip.RequestLine(pinButton, gpiocdev.AsInput, gpiocdev.WithPullUp,
		gpiocdev.WithConsumer("game-controller-button"))
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request button pin %d: %w", pinButton, err)
	}

	// PIR modules drive the output high while motion is detected.
	motionLine, err := chip.RequestLine(pinMotion, gpiocdev.AsInput, gpiocdev.WithPullDown,
		gpiocdev.WithConsumer("game-controller-motion"))
	if err != nil {
		buttonLine.Close()
		chip.Close()
		return nil, fmt.Errorf("request motion pin %d: %w", pinMotion, err)
	}

	return &RealReader{
		chip:      chip,
		buttonPin: buttonLine,
		motionPin: motionLine,
	}, nil
}

// Read returns the logical states of the button and motion sensor.
// Inverts the button: raw low (0) = pressed.
func (r *RealReader) Read() (bool, bool, error) {
	buttonRaw, err := r.buttonPin.Value()
	if err != nil {
		return false, false, fmt.Errorf("read button pin: %w", err)
	}

	motionRaw, err := r.motionPin.Value()
	if err != nil {
		return false, false, fmt.Errorf("read motion pin: %w", err)
	}

	return buttonRaw == 0, motionRaw == 1, nil
}

// Close returns both lines to pulled-down inputs, the Pi's boot default,
// and releases the chip.
func (r *RealReader) Close() error {
	var errs []error
	for _, l := range []struct {
		name string
		line *gpiocdev.Line
	}{{"button", r.buttonPin}, {"motion", r.motionPin}} {
		if l.line == nil {
			continue
		}
		if err := l.line.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullDown); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure %s pin: %w", l.name, err))
		}
		if err := l.line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s pin: %w", l.name, err))
		}
	}
	if r.chip != nil {
		if err := r.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}
	return errors.Join(errs...)
}
