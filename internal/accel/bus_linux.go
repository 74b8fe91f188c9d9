//go:build linux

package accel

import (
	"fmt"
	"sync"

	"golang.org/x/sys/unix"
)

// i2cSlave is the i2c-dev ioctl that selects the target address.
const i2cSlave = 0x0703

// LinuxBus is a drivers.I2C implementation over /dev/i2c-N.
type LinuxBus struct {
	mu   sync.Mutex
	fd   int
	addr uint16
}

// OpenBus opens an i2c-dev character device.
func OpenBus(device string) (*LinuxBus, error) {
	fd, err := unix.Open(device, unix.O_RDWR|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", device, err)
	}
	return &LinuxBus{fd: fd, addr: 0xFFFF}, nil
}

// Tx writes w then reads len(r) bytes from the device at addr.
func (b *LinuxBus) Tx(addr uint16, w, r []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.addr != addr {
		if err := unix.IoctlSetInt(b.fd, i2cSlave, int(addr)); err != nil {
			return fmt.Errorf("select address %#x: %w", addr, err)
		}
		b.addr = addr
	}
	if len(w) > 0 {
		if _, err := unix.Write(b.fd, w); err != nil {
			return fmt.Errorf("write %#x: %w", addr, err)
		}
	}
	if len(r) > 0 {
		n, err := unix.Read(b.fd, r)
		if err != nil {
			return fmt.Errorf("read %#x: %w", addr, err)
		}
		if n != len(r) {
			return fmt.Errorf("read %#x: short read %d/%d", addr, n, len(r))
		}
	}
	return nil
}

// ReadRegister reads len(buf) bytes starting at register reg.
func (b *LinuxBus) ReadRegister(addr uint8, reg uint8, buf []byte) error {
	return b.Tx(uint16(addr), []byte{reg}, buf)
}

// WriteRegister writes buf starting at register reg.
func (b *LinuxBus) WriteRegister(addr uint8, reg uint8, buf []byte) error {
	return b.Tx(uint16(addr), append([]byte{reg}, buf...), nil)
}

// Close releases the device.
func (b *LinuxBus) Close() error {
	return unix.Close(b.fd)
}
