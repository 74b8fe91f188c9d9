package accel

import (
	"encoding/binary"
	"errors"
	"fmt"

	"tinygo.org/x/drivers"
)

// MPU-6050 registers.
const (
	regAccelConfig = 0x1C
	regAccelXOutH  = 0x3B
	regPwrMgmt1    = 0x6B
	regWhoAmI      = 0x75

	whoAmIValue = 0x68

	accelRange2G = 0x00
)

// ErrNotConnected is returned when the device does not answer WHO_AM_I.
var ErrNotConnected = errors.New("accelerometer not connected")

// MPU6050 talks to the IMU over a drivers.I2C bus.
type MPU6050 struct {
	bus     drivers.I2C
	address uint16
	last    Sample
}

var (
	_ Reader         = (*MPU6050)(nil)
	_ drivers.Sensor = (*MPU6050)(nil)
)

// NewMPU6050 creates a driver for the device at address on bus.
// It does not touch the bus until Configure or a read.
func NewMPU6050(bus drivers.I2C, address uint16) *MPU6050 {
	return &MPU6050{bus: bus, address: address}
}

// Connected reports whether WHO_AM_I returns the expected identity.
func (d *MPU6050) Connected() bool {
	var id [1]byte
	if err := d.bus.Tx(d.address, []byte{regWhoAmI}, id[:]); err != nil {
		return false
	}
	return id[0]&0x7E == whoAmIValue
}

// Configure wakes the device and selects the ±2g range (16384 counts/g).
func (d *MPU6050) Configure() error {
	if !d.Connected() {
		return ErrNotConnected
	}
	if err := d.bus.Tx(d.address, []byte{regPwrMgmt1, 0x00}, nil); err != nil {
		return fmt.Errorf("wake: %w", err)
	}
	if err := d.bus.Tx(d.address, []byte{regAccelConfig, accelRange2G}, nil); err != nil {
		return fmt.Errorf("set range: %w", err)
	}
	return nil
}

// Update implements drivers.Sensor. Only acceleration is supported.
func (d *MPU6050) Update(which drivers.Measurement) error {
	if which&drivers.Acceleration == 0 {
		return nil
	}
	var buf [6]byte
	if err := d.bus.Tx(d.address, []byte{regAccelXOutH}, buf[:]); err != nil {
		return fmt.Errorf("read acceleration: %w", err)
	}
	d.last = Sample{
		X: int16(binary.BigEndian.Uint16(buf[0:2])),
		Y: int16(binary.BigEndian.Uint16(buf[2:4])),
		Z: int16(binary.BigEndian.Uint16(buf[4:6])),
	}
	return nil
}

// ReadRaw updates and returns the acceleration sample.
func (d *MPU6050) ReadRaw() (Sample, error) {
	if err := d.Update(drivers.Acceleration); err != nil {
		return Sample{}, err
	}
	return d.last, nil
}
