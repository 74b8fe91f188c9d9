package logic

// EdgeDetector tracks a sampled boolean input and reports rising edges.
// Samples are taken only at gate ticks, so the gate interval acts as the
// debounce period.
type EdgeDetector struct {
	level bool
	rises int
}

// Sample records the new level. It returns true only on a false→true
// transition; sustained levels and falling edges return false.
func (d *EdgeDetector) Sample(level bool) bool {
	rising := level && !d.level
	d.level = level
	if rising {
		d.rises++
	}
	return rising
}

// Level returns the last sampled level.
func (d *EdgeDetector) Level() bool {
	return d.level
}

// Rises returns the number of rising edges seen.
func (d *EdgeDetector) Rises() int {
	return d.rises
}
