package logic

// Servo limits in degrees.
const (
	ServoMin    = 0
	ServoMax    = 180
	ServoCenter = 90

	powerUpStep = 5
	playingStep = 1
)

// Servo is the animated servo position and direction (+1 or -1).
type Servo struct {
	Pos int
	Dir int
}

// NewServo returns a centred servo moving upward.
func NewServo() Servo {
	return Servo{Pos: ServoCenter, Dir: 1}
}

// Center snaps the servo back to the middle.
func (s *Servo) Center() {
	s.Pos = ServoCenter
	s.Dir = 1
}

// Kick jumps to one of the extremes: ServoMax if high, ServoMin otherwise.
// The direction is turned away from that bound so a PowerUp sweep carries on
// at the next tick.
func (s *Servo) Kick(high bool) {
	if high {
		s.Pos = ServoMax
		s.Dir = -1
	} else {
		s.Pos = ServoMin
		s.Dir = 1
	}
}

// Animate advances one animation tick for state. It returns true if the
// position changed.
//
// PowerUp sweeps between the bounds in steps of 5, reversing at each bound.
// Playing eases back toward the centre one degree at a time. Every other
// state holds the current position.
func (s *Servo) Animate(state GameState) bool {
	prev := s.Pos
	switch state {
	case StatePowerUp:
		if s.Dir == 0 {
			s.Dir = 1
		}
		s.Pos += s.Dir * powerUpStep
		if s.Pos >= ServoMax {
			s.Pos = ServoMax
			s.Dir = -1
		} else if s.Pos <= ServoMin {
			s.Pos = ServoMin
			s.Dir = 1
		}
	case StatePlaying:
		switch {
		case s.Pos < ServoCenter:
			s.Pos += playingStep
		case s.Pos > ServoCenter:
			s.Pos -= playingStep
		}
	}
	return s.Pos != prev
}
