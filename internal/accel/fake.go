package accel

import (
	"errors"
	"fmt"
)

// FakeBus is an in-memory register file for a single I2C device.
type FakeBus struct {
	Address   uint16
	Registers [256]byte

	// TxError, if set, is returned by every Tx.
	TxError error

	// Writes records every register write as [reg, data...].
	Writes [][]byte
}

// NewFakeBus creates a bus with an MPU-6050 answering at address.
func NewFakeBus(address uint16) *FakeBus {
	b := &FakeBus{Address: address}
	b.Registers[regWhoAmI] = whoAmIValue
	return b
}

// SetAcceleration loads raw counts into the output registers.
func (b *FakeBus) SetAcceleration(s Sample) {
	put := func(reg int, v int16) {
		b.Registers[reg] = byte(uint16(v) >> 8)
		b.Registers[reg+1] = byte(v)
	}
	put(regAccelXOutH, s.X)
	put(regAccelXOutH+2, s.Y)
	put(regAccelXOutH+4, s.Z)
}

// Tx implements drivers.I2C. The first written byte selects the register;
// remaining bytes are stored, then reads auto-increment from it.
func (b *FakeBus) Tx(addr uint16, w, r []byte) error {
	if b.TxError != nil {
		return b.TxError
	}
	if addr != b.Address {
		return fmt.Errorf("no device at %#x", addr)
	}
	if len(w) == 0 {
		return errors.New("no register selected")
	}
	reg := int(w[0])
	if len(w) > 1 {
		b.Writes = append(b.Writes, append([]byte(nil), w...))
		for i, v := range w[1:] {
			b.Registers[(reg+i)&0xFF] = v
		}
	}
	for i := range r {
		r[i] = b.Registers[(reg+i)&0xFF]
	}
	return nil
}

// ReadRegister reads len(buf) bytes starting at reg.
func (b *FakeBus) ReadRegister(addr uint8, reg uint8, buf []byte) error {
	return b.Tx(uint16(addr), []byte{reg}, buf)
}

// WriteRegister writes buf starting at reg.
func (b *FakeBus) WriteRegister(addr uint8, reg uint8, buf []byte) error {
	return b.Tx(uint16(addr), append([]byte{reg}, buf...), nil)
}

// FakeReader is a test double that returns scripted samples.
type FakeReader struct {
	// Samples are returned in order; the last one repeats.
	Samples []Sample
	index   int

	// Present controls Connected.
	Present bool

	// ReadError, if set, is returned by ReadRaw.
	ReadError error

	// Reads counts ReadRaw calls.
	Reads int
}

// NewFakeReader creates a connected FakeReader.
func NewFakeReader(samples ...Sample) *FakeReader {
	return &FakeReader{Samples: samples, Present: true}
}

// Connected reports Present.
func (f *FakeReader) Connected() bool {
	return f.Present
}

// ReadRaw returns the next scripted sample.
func (f *FakeReader) ReadRaw() (Sample, error) {
	f.Reads++
	if f.ReadError != nil {
		return Sample{}, f.ReadError
	}
	if len(f.Samples) == 0 {
		return Sample{}, errors.New("no samples configured")
	}
	s := f.Samples[f.index]
	if f.index < len(f.Samples)-1 {
		f.index++
	}
	return s, nil
}
