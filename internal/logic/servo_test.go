package logic

import (
	"testing"

	"github.com/sweeney/game-controller/internal/clock"
)

func clockAt(ms uint32) clock.Timestamp {
	return clock.Timestamp(ms)
}

func TestServoPowerUpBoundary(t *testing.T) {
	s := Servo{Pos: 178, Dir: 1}

	s.Animate(StatePowerUp)
	if s.Pos != 180 {
		t.Errorf("pos: got %d, want 180 (clamped)", s.Pos)
	}
	if s.Dir != -1 {
		t.Errorf("dir after reaching bound: got %d, want -1", s.Dir)
	}

	s.Animate(StatePowerUp)
	if s.Pos != 175 {
		t.Errorf("pos after bounce: got %d, want 175", s.Pos)
	}
}

func TestServoPowerUpLowerBoundary(t *testing.T) {
	s := Servo{Pos: 3, Dir: -1}

	s.Animate(StatePowerUp)
	if s.Pos != 0 || s.Dir != 1 {
		t.Errorf("got pos=%d dir=%d, want pos=0 dir=1", s.Pos, s.Dir)
	}
	s.Animate(StatePowerUp)
	if s.Pos != 5 {
		t.Errorf("pos after bounce: got %d, want 5", s.Pos)
	}
}

func TestServoPowerUpStaysInRange(t *testing.T) {
	s := NewServo()
	for i := 0; i < 1000; i++ {
		s.Animate(StatePowerUp)
		if s.Pos < ServoMin || s.Pos > ServoMax {
			t.Fatalf("tick %d: position %d out of range", i, s.Pos)
		}
	}
}

func TestServoPlayingReturnsToCenter(t *testing.T) {
	s := Servo{Pos: 180, Dir: 1}
	ticks := 0
	for s.Animate(StatePlaying) {
		ticks++
		if ticks > 200 {
			t.Fatal("servo never settled")
		}
	}
	if s.Pos != ServoCenter {
		t.Errorf("settled at %d, want %d", s.Pos, ServoCenter)
	}
	if ticks != 90 {
		t.Errorf("ticks to settle: got %d, want 90", ticks)
	}

	s = Servo{Pos: 0, Dir: -1}
	for i := 0; i < 100; i++ {
		s.Animate(StatePlaying)
	}
	if s.Pos != ServoCenter {
		t.Errorf("from 0: settled at %d, want %d", s.Pos, ServoCenter)
	}
}

func TestServoHoldsInOtherStates(t *testing.T) {
	for _, st := range []GameState{StateIdle, StateCollision, StateGameOver, StateSpecial1, StateSpecial2} {
		s := Servo{Pos: 42, Dir: 1}
		if s.Animate(st) {
			t.Errorf("%s: servo moved", st)
		}
		if s.Pos != 42 {
			t.Errorf("%s: pos got %d, want 42", st, s.Pos)
		}
	}
}

func TestServoKickAndCenter(t *testing.T) {
	s := NewServo()
	s.Kick(true)
	if s.Pos != ServoMax {
		t.Errorf("kick high: got %d", s.Pos)
	}
	s.Kick(false)
	if s.Pos != ServoMin {
		t.Errorf("kick low: got %d", s.Pos)
	}
	s.Center()
	if s.Pos != ServoCenter || s.Dir != 1 {
		t.Errorf("center: got pos=%d dir=%d", s.Pos, s.Dir)
	}
}

func TestServoKickKeepsSweepMoving(t *testing.T) {
	testCases := []struct {
		name    string
		start   Servo
		high    bool
		wantPos int
	}{
		{name: "low while heading down", start: Servo{Pos: 40, Dir: -1}, high: false, wantPos: 5},
		{name: "low while heading up", start: Servo{Pos: 40, Dir: 1}, high: false, wantPos: 5},
		{name: "high while heading up", start: Servo{Pos: 40, Dir: 1}, high: true, wantPos: 175},
		{name: "high while heading down", start: Servo{Pos: 40, Dir: -1}, high: true, wantPos: 175},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s := tc.start
			s.Kick(tc.high)
			if !s.Animate(StatePowerUp) {
				t.Fatalf("sweep paused after kick: pos=%d dir=%d", s.Pos, s.Dir)
			}
			if s.Pos != tc.wantPos {
				t.Errorf("pos: got %d, want %d", s.Pos, tc.wantPos)
			}
		})
	}
}
