package clock

import (
	"testing"
	"time"
)

func TestElapsed(t *testing.T) {
	tests := []struct {
		name string
		now  Timestamp
		last Timestamp
		want uint32
	}{
		{"zero", 100, 100, 0},
		{"forward", 150, 100, 50},
		{"across wrap", 0x00000020, 0xFFFFFFF0, 0x30},
		{"just before wrap", 0xFFFFFFFF, 0xFFFFFFF0, 0x0F},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Elapsed(tt.now, tt.last); got != tt.want {
				t.Errorf("Elapsed(%d, %d) = %d, want %d", tt.now, tt.last, got, tt.want)
			}
		})
	}
}

func TestFakeAdvanceWraps(t *testing.T) {
	f := NewFake(0xFFFFFFF0)
	got := f.Advance(0x20)
	if got != 0x10 {
		t.Errorf("expected wrap to 0x10, got %#x", got)
	}
	if f.Now() != 0x10 {
		t.Errorf("Now: expected 0x10, got %#x", f.Now())
	}
}

func TestMonotonicNonDecreasing(t *testing.T) {
	m := NewMonotonic()
	prev := m.Now()
	for i := 0; i < 5; i++ {
		time.Sleep(2 * time.Millisecond)
		cur := m.Now()
		if Elapsed(cur, prev) > uint32(time.Hour.Milliseconds()) {
			t.Fatalf("clock went backwards: prev=%d cur=%d", prev, cur)
		}
		prev = cur
	}
	if prev == 0 {
		t.Error("expected clock to advance past zero")
	}
}
