//go:build !linux

package accel

import "errors"

// LinuxBus is not available on non-Linux platforms.
type LinuxBus struct{}

// OpenBus returns an error on non-Linux platforms.
func OpenBus(device string) (*LinuxBus, error) {
	return nil, errors.New("accel: i2c-dev not supported on this platform (requires Linux)")
}

// Tx is not implemented on non-Linux platforms.
func (b *LinuxBus) Tx(addr uint16, w, r []byte) error {
	return errors.New("accel: not supported")
}

// ReadRegister is not implemented on non-Linux platforms.
func (b *LinuxBus) ReadRegister(addr uint8, reg uint8, buf []byte) error {
	return errors.New("accel: not supported")
}

// WriteRegister is not implemented on non-Linux platforms.
func (b *LinuxBus) WriteRegister(addr uint8, reg uint8, buf []byte) error {
	return errors.New("accel: not supported")
}

// Close is a no-op on non-Linux platforms.
func (b *LinuxBus) Close() error {
	return nil
}
