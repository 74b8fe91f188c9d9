// Package accel reads the 3-axis accelerometer used for tilt control.
// The device is an MPU-6050 class IMU on I2C, driven through the
// tinygo.org/x/drivers bus abstraction so the same code runs against the
// Linux i2c-dev bus and the in-memory FakeBus.
package accel

// Sample is one raw acceleration reading in device counts.
type Sample struct {
	X, Y, Z int16
}

// Reader reads raw acceleration samples.
type Reader interface {
	// Connected probes the device identity register.
	Connected() bool

	// ReadRaw returns the latest acceleration sample.
	ReadRaw() (Sample, error)
}

// Default bus settings.
const (
	DefaultDevice  = "/dev/i2c-1"
	DefaultAddress = 0x68
)
