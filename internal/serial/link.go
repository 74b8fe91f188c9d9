package serial

import (
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/sweeney/game-controller/internal/protocol"
)

const (
	rxQueueChunks = 16
	txQueueLines  = 32
	readChunk     = protocol.MaxLineLength
)

// Link moves bytes between a Port and the control loop without ever
// blocking the loop. A reader goroutine queues received chunks and a writer
// goroutine sends queued lines; when either queue is full the data is
// dropped and counted.
type Link struct {
	port  Port
	rx    chan []byte
	tx    chan []byte
	lines *protocol.LineBuffer

	rxDropped atomic.Int64
	txDropped atomic.Int64

	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// NewLink creates a Link over port. Call Start to begin moving bytes.
func NewLink(port Port) *Link {
	return &Link{
		port:  port,
		rx:    make(chan []byte, rxQueueChunks),
		tx:    make(chan []byte, txQueueLines),
		lines: protocol.NewLineBuffer(),
		done:  make(chan struct{}),
	}
}

// Start launches the reader and writer goroutines.
func (l *Link) Start() {
	l.wg.Add(2)
	go l.readLoop()
	go l.writeLoop()
}

// Send queues one complete line for transmission. It returns false if the
// transmit queue is full and the line was dropped.
func (l *Link) Send(line []byte) bool {
	select {
	case <-l.done:
		return false
	default:
	}
	select {
	case l.tx <- line:
		return true
	default:
		l.txDropped.Add(1)
		return false
	}
}

// Drain consumes every chunk received so far and returns the complete
// lines they form. It never waits for more data.
func (l *Link) Drain() []string {
	for {
		select {
		case chunk := <-l.rx:
			l.lines.Feed(chunk)
			continue
		default:
		}
		break
	}

	var out []string
	for {
		line, ok := l.lines.Next()
		if !ok {
			return out
		}
		out = append(out, line)
	}
}

// Stats reports dropped traffic.
type Stats struct {
	RxDroppedChunks int64
	TxDroppedLines  int64
	OverlongLines   int
}

// Stats returns the drop counters. OverlongLines is only safe to read from
// the goroutine that calls Drain.
func (l *Link) Stats() Stats {
	return Stats{
		RxDroppedChunks: l.rxDropped.Load(),
		TxDroppedLines:  l.txDropped.Load(),
		OverlongLines:   l.lines.Dropped(),
	}
}

// Close stops both goroutines and closes the port.
func (l *Link) Close() error {
	var err error
	l.closeOnce.Do(func() {
		close(l.done)
		err = l.port.Close()
		l.wg.Wait()
	})
	return err
}

func (l *Link) closed() bool {
	select {
	case <-l.done:
		return true
	default:
		return false
	}
}

func (l *Link) readLoop() {
	defer l.wg.Done()
	buf := make([]byte, readChunk)
	for {
		n, err := l.port.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			select {
			case l.rx <- chunk:
			default:
				l.rxDropped.Add(1)
			}
		}
		if l.closed() {
			return
		}
		if err != nil {
			// A read timeout surfaces as io.EOF on tarm/serial.
			if errors.Is(err, io.EOF) {
				continue
			}
			log.Warn().Err(err).Msg("serial read error")
			select {
			case <-l.done:
				return
			case <-time.After(100 * time.Millisecond):
			}
		}
	}
}

func (l *Link) writeLoop() {
	defer l.wg.Done()
	for {
		select {
		case <-l.done:
			return
		case line := <-l.tx:
			if _, err := l.port.Write(line); err != nil {
				log.Warn().Err(err).Msg("serial write error")
			}
		}
	}
}
