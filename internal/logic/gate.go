package logic

import "github.com/sweeney/game-controller/internal/clock"

// Gate lets an activity fire at most once per interval.
//
// Firing sets last to now rather than advancing it by the interval, so an
// activity that falls behind skips the missed periods instead of bursting.
type Gate struct {
	last     clock.Timestamp
	interval uint32
}

// NewGate creates a gate whose first firing is one interval after now.
func NewGate(interval uint32, now clock.Timestamp) Gate {
	return Gate{last: now, interval: interval}
}

// Ready reports whether the interval has elapsed and, if so, records now
// as the last firing. A zero interval disables the gate.
func (g *Gate) Ready(now clock.Timestamp) bool {
	if g.interval == 0 {
		return false
	}
	if clock.Elapsed(now, g.last) < g.interval {
		return false
	}
	g.last = now
	return true
}

// Restart sets a new interval and measures it from now.
func (g *Gate) Restart(interval uint32, now clock.Timestamp) {
	g.interval = interval
	g.last = now
}

// Interval returns the gate interval in milliseconds.
func (g *Gate) Interval() uint32 {
	return g.interval
}
