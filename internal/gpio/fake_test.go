package gpio

import (
	"errors"
	"testing"
)

func TestFakeReaderReplaysAndHoldsLast(t *testing.T) {
	f := NewFakeReader([]Sample{
		{Button: true},
		{Motion: true},
		{Button: true, Motion: true},
	})

	want := []Sample{
		{Button: true},
		{Motion: true},
		{Button: true, Motion: true},
		{Button: true, Motion: true}, // held
		{Button: true, Motion: true},
	}
	for i, w := range want {
		pressed, motion, err := f.Read()
		if err != nil {
			t.Fatalf("read %d: unexpected error: %v", i, err)
		}
		if got := (Sample{Button: pressed, Motion: motion}); got != w {
			t.Errorf("read %d: got %s, want %s", i, got, w)
		}
	}
	if f.Reads != len(want) {
		t.Errorf("Reads: got %d, want %d", f.Reads, len(want))
	}
}

func TestFakeReaderNoSamples(t *testing.T) {
	f := NewFakeReader(nil)

	if _, _, err := f.Read(); !errors.Is(err, errNoSamples) {
		t.Errorf("expected errNoSamples, got %v", err)
	}
}

func TestFakeReaderReadError(t *testing.T) {
	boom := errors.New("simulated error")
	f := NewFakeReader([]Sample{{Button: true}})
	f.ReadError = boom

	if _, _, err := f.Read(); !errors.Is(err, boom) {
		t.Errorf("expected simulated error, got %v", err)
	}
}

func TestFakeReaderFailReadsDoNotConsume(t *testing.T) {
	f := NewFakeReader([]Sample{{}, {Button: true}})
	f.FailReads = map[int]bool{1: true, 2: true}

	var got []string
	for i := 0; i < 4; i++ {
		pressed, _, err := f.Read()
		switch {
		case err != nil:
			got = append(got, "err")
		case pressed:
			got = append(got, "pressed")
		default:
			got = append(got, "released")
		}
	}

	want := []string{"released", "err", "err", "pressed"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("reads: got %v, want %v", got, want)
		}
	}
}

func TestFakeReaderCloseAndReset(t *testing.T) {
	f := NewFakeReader([]Sample{{Button: true}, {Motion: true}})
	f.Read()

	if err := f.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !f.Closed {
		t.Error("should be closed after Close()")
	}

	f.Reset()
	if f.Closed || f.Reads != 0 {
		t.Error("Reset should clear Closed and Reads")
	}
	pressed, motion, _ := f.Read()
	if !pressed || motion {
		t.Errorf("after reset: got (%v, %v), want first sample", pressed, motion)
	}
}
