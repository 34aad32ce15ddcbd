package scan

// Coverage tracks which angle stops of a sweep have been seen since the last
// reset. A sweep is complete once every stop the current mode visits has been
// observed at least once. The device samples each extreme twice per
// turnaround, so completion triggers reliably at the boundaries.
type Coverage struct {
	start, end int
	mode       Mode
	seen       map[int]bool
}

// NewCoverage tracks stops in [start, end] for the given mode.
func NewCoverage(start, end int, mode Mode) *Coverage {
	return &Coverage{
		start: start,
		end:   end,
		mode:  mode,
		seen:  make(map[int]bool),
	}
}

// Expected returns the angle stops the current mode visits.
func (c *Coverage) Expected() []int {
	var stops []int
	for a := c.start; a <= c.end; a += c.mode.StepDegrees() {
		stops = append(stops, a)
	}
	return stops
}

// Observe records one frame. A frame from a different mode switches the
// tracker to that mode and resets it first. Returns true when this frame
// completes the sweep.
func (c *Coverage) Observe(f Frame) bool {
	if f.Mode != c.mode {
		c.mode = f.Mode
		c.Reset()
	}
	c.seen[f.Angle] = true
	return c.Complete()
}

// Complete reports whether every expected stop has been seen.
func (c *Coverage) Complete() bool {
	for _, a := range c.Expected() {
		if !c.seen[a] {
			return false
		}
	}
	return true
}

// Reset forgets all seen stops.
func (c *Coverage) Reset() {
	c.seen = make(map[int]bool)
}
