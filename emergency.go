package crossing

// EmergencyStatus describes the preemption currently in force, if any
type EmergencyStatus struct {
	Active    bool      `json:"active"`
	Direction Direction `json:"direction,omitempty"`
	Remaining int       `json:"remaining"`
}

// Dispatcher rolls for emergency vehicles on every dispatch tick and expires
// an active emergency after a fixed number of control ticks.
type Dispatcher struct {
	probability float64
	duration    int
	rnd         RandomSource

	active    bool
	direction Direction
	remaining int
}

// NewDispatcher creates an emergency dispatcher from the engine configuration
func NewDispatcher(cfg Config, rnd RandomSource) *Dispatcher {
	return &Dispatcher{
		probability: cfg.EmergencyProbability,
		duration:    cfg.EmergencyDuration,
		rnd:         rnd,
	}
}

// Roll runs one dispatch tick. It reports the preempted direction when an
// emergency starts. A roll while an emergency is active does nothing and
// consumes no randomness.
func (d *Dispatcher) Roll() (Direction, bool) {
	if d.active {
		return "", false
	}
	if d.rnd.Float64() >= d.probability {
		return "", false
	}
	d.active = true
	d.direction = Directions[d.rnd.Intn(len(Directions))]
	d.remaining = d.duration
	return d.direction, true
}

// Advance counts down one control tick of an active emergency. It reports
// the direction exactly once, on the tick the emergency expires.
func (d *Dispatcher) Advance() (Direction, bool) {
	if !d.active {
		return "", false
	}
	d.remaining--
	if d.remaining > 0 {
		return "", false
	}
	expired := d.direction
	d.clear()
	return expired, true
}

// Cancel ends an active emergency without waiting for it to expire.
// It reports the direction that was preempted, if any.
func (d *Dispatcher) Cancel() (Direction, bool) {
	if !d.active {
		return "", false
	}
	cancelled := d.direction
	d.clear()
	return cancelled, true
}

// Status returns the current emergency, if any
func (d *Dispatcher) Status() EmergencyStatus {
	if !d.active {
		return EmergencyStatus{}
	}
	return EmergencyStatus{Active: true, Direction: d.direction, Remaining: d.remaining}
}

func (d *Dispatcher) clear() {
	d.active = false
	d.direction = ""
	d.remaining = 0
}
