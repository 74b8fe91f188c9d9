package gpio

import (
	"errors"
	"fmt"
)

// Sample is one scripted reading in logical form.
type Sample struct {
	Button bool // pressed
	Motion bool // motion detected
}

func (s Sample) String() string {
	return fmt.Sprintf("button=%t motion=%t", s.Button, s.Motion)
}

// FakeReader replays Samples, one per successful Read, holding the last
// one once the script runs out.
type FakeReader struct {
	Samples []Sample

	// ReadError, if set, fails every Read.
	ReadError error

	// FailReads lists read numbers (0-based, counting every call) that fail
	// without consuming a sample.
	FailReads map[int]bool

	// Reads counts Read calls.
	Reads int

	Closed bool

	next int
}

var errNoSamples = errors.New("gpio: no samples scripted")

// NewFakeReader creates a FakeReader over samples.
func NewFakeReader(samples []Sample) *FakeReader {
	return &FakeReader{Samples: samples}
}

// Read returns the next scripted sample.
func (f *FakeReader) Read() (bool, bool, error) {
	call := f.Reads
	f.Reads++

	switch {
	case f.ReadError != nil:
		return false, false, f.ReadError
	case f.FailReads[call]:
		return false, false, fmt.Errorf("gpio: scripted fault on read %d", call)
	case len(f.Samples) == 0:
		return false, false, errNoSamples
	}

	s := f.Samples[f.next]
	if f.next+1 < len(f.Samples) {
		f.next++
	}
	return s.Button, s.Motion, nil
}

func (f *FakeReader) Close() error {
	f.Closed = true
	return nil
}

// Reset rewinds the script and clears the call counter.
func (f *FakeReader) Reset() {
	f.next = 0
	f.Reads = 0
	f.Closed = false
}
