// Package clock provides the millisecond time base used by the control loop.
// Timestamps are 32-bit and wrap; all comparisons go through Elapsed.
package clock

import "time"

// Timestamp is a wrapping millisecond counter.
type Timestamp uint32

// Source yields the current timestamp.
type Source interface {
	Now() Timestamp
}

// Elapsed returns now-last using unsigned arithmetic, so a single wrap
// between last and now still yields the true distance.
func Elapsed(now, last Timestamp) uint32 {
	return uint32(now - last)
}

// Monotonic counts milliseconds since it was created.
type Monotonic struct {
	start time.Time
}

// NewMonotonic creates a Monotonic source starting at zero.
func NewMonotonic() *Monotonic {
	return &Monotonic{start: time.Now()}
}

// Now returns milliseconds since start, truncated to 32 bits.
func (m *Monotonic) Now() Timestamp {
	return Timestamp(uint64(time.Since(m.start).Milliseconds()))
}

// Fake is a manually advanced Source for tests.
type Fake struct {
	T Timestamp
}

// NewFake creates a Fake at the given timestamp.
func NewFake(start Timestamp) *Fake {
	return &Fake{T: start}
}

// Now returns the current fake time.
func (f *Fake) Now() Timestamp {
	return f.T
}

// Advance moves the fake time forward by ms, wrapping like the real counter.
func (f *Fake) Advance(ms uint32) Timestamp {
	f.T += Timestamp(ms)
	return f.T
}
