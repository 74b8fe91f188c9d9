// Package logging configures the process-wide zerolog logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// Setup installs the global logger. Console output is used when pretty is
// set (interactive terminals); otherwise one JSON object per line.
func Setup(w io.Writer, level string, pretty bool) error {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("parse log level %q: %w", level, err)
	}
	if w == nil {
		w = os.Stderr
	}
	if pretty {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	log.Logger = zerolog.New(w).With().Timestamp().Logger()
	zerolog.SetGlobalLevel(lvl)
	return nil
}

// Sampler lets a repeating log line through at a bounded rate and counts
// what it held back.
type Sampler struct {
	limiter    *rate.Limiter
	suppressed int
}

// NewSampler allows burst lines immediately, then one per every.
func NewSampler(every time.Duration, burst int) *Sampler {
	return &Sampler{limiter: rate.NewLimiter(rate.Every(every), burst)}
}

// Allow reports whether the caller may log now. When it returns true, the
// second result is the number of lines suppressed since the last allowed one.
func (s *Sampler) Allow() (bool, int) {
	if !s.limiter.Allow() {
		s.suppressed++
		return false, 0
	}
	n := s.suppressed
	s.suppressed = 0
	return true, n
}

// Warn logs err with msg through the sampler.
func (s *Sampler) Warn(err error, msg string) {
	ok, suppressed := s.Allow()
	if !ok {
		return
	}
	ev := log.Warn().Err(err)
	if suppressed > 0 {
		ev = ev.Int("suppressed", suppressed)
	}
	ev.Msg(msg)
}
