// Package actuator drives the controller's LED, buzzer and servo.
// Callers issue logical commands; pulse generation is left to the hardware.
package actuator

import "github.com/sweeney/game-controller/internal/logic"

// Driver applies logical actuator commands.
type Driver interface {
	// SetColor sets the RGB LED.
	SetColor(c logic.Color) error

	// PlayTone starts a tone and returns immediately; the tone stops by
	// itself after its duration.
	PlayTone(t logic.Tone) error

	// SetServo moves the servo to angle degrees in [0,180].
	SetServo(angle int) error

	// Close turns everything off and releases resources.
	Close() error
}

// PWM timing.
const (
	ledPeriodNs   = 1_000_000  // 1 kHz
	servoPeriodNs = 20_000_000 // 50 Hz
	servoMinNs    = 500_000
	servoMaxNs    = 2_500_000
)

// servoPulseNs maps an angle to a pulse width, clamping to [0,180].
func servoPulseNs(angle int) int64 {
	if angle < logic.ServoMin {
		angle = logic.ServoMin
	}
	if angle > logic.ServoMax {
		angle = logic.ServoMax
	}
	return servoMinNs + int64(angle)*(servoMaxNs-servoMinNs)/logic.ServoMax
}

// ledDutyNs maps an 8-bit channel value to a duty cycle.
func ledDutyNs(v uint8) int64 {
	return ledPeriodNs * int64(v) / 255
}

// tonePeriodNs returns the PWM period for a frequency.
func tonePeriodNs(freqHz int) int64 {
	return 1_000_000_000 / int64(freqHz)
}
