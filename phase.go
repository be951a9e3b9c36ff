package crossing

// PhaseClock counts control ticks for the fixed-cycle schedule. It is owned
// by a Controller and advanced exactly once per control tick.
type PhaseClock struct {
	tick int
}

// Tick returns the number of control ticks completed so far
func (c *PhaseClock) Tick() int {
	return c.tick
}

// Phase returns the position of the current tick within a cycle
func (c *PhaseClock) Phase(cycle int) int {
	if cycle <= 0 {
		return 0
	}
	return c.tick % cycle
}

// Advance moves the clock forward by one control tick
func (c *PhaseClock) Advance() {
	c.tick++
}

// Reset returns the clock to tick zero
func (c *PhaseClock) Reset() {
	c.tick = 0
}
