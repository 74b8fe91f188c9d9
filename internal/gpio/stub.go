//go:build !linux

package gpio

// RealReader is a placeholder so the daemon still builds off-target.
type RealReader struct{}

// NewRealReader always fails with ErrUnsupported.
func NewRealReader(chipName string, pinButton, pinMotion int) (*RealReader, error) {
	return nil, ErrUnsupported
}

func (r *RealReader) Read() (bool, bool, error) { return false, false, ErrUnsupported }

func (r *RealReader) Close() error { return nil }
