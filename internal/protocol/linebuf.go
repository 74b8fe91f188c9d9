package protocol

// LineBuffer assembles complete lines from arbitrary byte chunks.
// Lines longer than MaxLineLength are discarded whole.
// Not safe for concurrent use.
type LineBuffer struct {
	buf      []byte
	lines    []string
	overlong bool
	dropped  int
}

// NewLineBuffer creates an empty LineBuffer.
func NewLineBuffer() *LineBuffer {
	return &LineBuffer{buf: make([]byte, 0, MaxLineLength)}
}

// Feed appends received bytes. Completed lines become available via Next.
func (l *LineBuffer) Feed(p []byte) {
	for _, c := range p {
		if c == '\n' {
			if l.overlong {
				l.dropped++
			} else {
				l.lines = append(l.lines, string(l.buf))
			}
			l.buf = l.buf[:0]
			l.overlong = false
			continue
		}
		if l.overlong {
			continue
		}
		if len(l.buf) == MaxLineLength {
			l.overlong = true
			l.buf = l.buf[:0]
			continue
		}
		l.buf = append(l.buf, c)
	}
}

// Next returns the oldest complete line, or false if none is buffered.
func (l *LineBuffer) Next() (string, bool) {
	if len(l.lines) == 0 {
		return "", false
	}
	line := l.lines[0]
	l.lines[0] = ""
	l.lines = l.lines[1:]
	if len(l.lines) == 0 {
		l.lines = nil
	}
	return line, true
}

// Pending returns the number of complete lines waiting.
func (l *LineBuffer) Pending() int {
	return len(l.lines)
}

// Dropped returns how many overlong lines were discarded.
func (l *LineBuffer) Dropped() int {
	return l.dropped
}
