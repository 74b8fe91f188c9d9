package serial

import (
	"bytes"
	"io"
	"sync"
)

// FakePort is an in-memory Port for tests. Bytes pushed with Inject are
// returned by Read; bytes written are recorded in Written.
type FakePort struct {
	mu      sync.Mutex
	cond    *sync.Cond
	in      bytes.Buffer
	written bytes.Buffer
	writes  int
	closed  bool

	// WriteError, if set, is returned by Write.
	WriteError error
}

// NewFakePort creates an empty FakePort.
func NewFakePort() *FakePort {
	f := &FakePort{}
	f.cond = sync.NewCond(&f.mu)
	return f
}

// Inject makes p available to the next Read.
func (f *FakePort) Inject(p []byte) {
	f.mu.Lock()
	f.in.Write(p)
	f.mu.Unlock()
	f.cond.Broadcast()
}

// Read blocks until data is injected or the port is closed.
func (f *FakePort) Read(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for f.in.Len() == 0 && !f.closed {
		f.cond.Wait()
	}
	if f.closed {
		return 0, io.ErrClosedPipe
	}
	return f.in.Read(p)
}

// Write records p.
func (f *FakePort) Write(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.WriteError != nil {
		return 0, f.WriteError
	}
	f.writes++
	return f.written.Write(p)
}

// Written returns everything written so far.
func (f *FakePort) Written() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.written.String()
}

// Writes returns the number of Write calls.
func (f *FakePort) Writes() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.writes
}

// Close unblocks pending reads.
func (f *FakePort) Close() error {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
	f.cond.Broadcast()
	return nil
}

// Closed reports whether Close was called.
func (f *FakePort) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}
