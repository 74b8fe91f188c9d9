package logic

import "testing"

func TestEdgeDetectorRisingOnly(t *testing.T) {
	// Samples taken every 50ms.
	samples := []bool{false, false, true, true, true, false, false, true, false, true, true}
	wantRises := []int{2, 7, 9}

	var d EdgeDetector
	var got []int
	for i, s := range samples {
		if d.Sample(s) {
			got = append(got, i)
		}
	}

	if len(got) != len(wantRises) {
		t.Fatalf("expected %d rising edges, got %d (%v)", len(wantRises), len(got), got)
	}
	for i := range got {
		if got[i] != wantRises[i] {
			t.Errorf("edge %d: got sample %d, want %d", i, got[i], wantRises[i])
		}
	}
	if d.Rises() != 3 {
		t.Errorf("Rises: got %d, want 3", d.Rises())
	}
}

func TestEdgeDetectorFallingIsSilent(t *testing.T) {
	var d EdgeDetector
	d.Sample(true)

	if d.Sample(false) {
		t.Error("falling edge must not report")
	}
	if d.Level() {
		t.Error("level should be cleared after falling edge")
	}
}

func TestEdgeDetectorHeldLevel(t *testing.T) {
	var d EdgeDetector
	if !d.Sample(true) {
		t.Fatal("first high sample should be a rising edge")
	}
	for i := 0; i < 20; i++ {
		if d.Sample(true) {
			t.Fatalf("sample %d: held level must not report", i)
		}
	}
}
