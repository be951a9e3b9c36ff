package crossing

import (
	"context"

	"github.com/samber/lo"
)

// Mode identifies the branch the controller took on a control tick
type Mode int

const (
	// The fixed-cycle schedule ran
	ModeFixedCycle Mode = iota
	// Queue pressure forced an immediate switch
	ModeAdaptive
	// An emergency preempted every other rule
	ModeEmergency
)

func (m Mode) String() string {
	switch m {
	case ModeAdaptive:
		return "adaptive"
	case ModeEmergency:
		return "emergency"
	default:
		return "fixed_cycle"
	}
}

// MarshalText renders the mode by name in JSON and logs
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText parses a mode name written by MarshalText
func (m *Mode) UnmarshalText(text []byte) error {
	switch string(text) {
	case "fixed_cycle":
		*m = ModeFixedCycle
	case "adaptive":
		*m = ModeAdaptive
	case "emergency":
		*m = ModeEmergency
	default:
		return NewConfigurationError("Mode", "unknown mode "+string(text))
	}
	return nil
}

// StepOutcome reports what a control tick decided
type StepOutcome struct {
	Mode  Mode `json:"mode"`
	Tick  int  `json:"tick"`
	Phase int  `json:"phase"`
	// Direction made green by an adaptive switch or emergency
	Target Direction `json:"target,omitempty"`
	// Set when the green approach still had vehicles inside the junction
	Blocked bool `json:"blocked"`
	// Lights as shown once the tick has been applied
	Lights []TrafficLight `json:"lights"`
}

// Controller decides, once per control tick, which signal shows which color
type Controller struct {
	cfg       Config
	clock     PhaseClock
	signals   []*Signal
	observers *ObserverManager
}

// NewController creates a controller whose signals start in the initial
// intersection state
func NewController(cfg Config, plan *SignalPlan, observers *ObserverManager) *Controller {
	if observers == nil {
		observers = NewObserverManager()
	}
	c := &Controller{cfg: cfg, observers: observers}
	for _, light := range NewIntersectionState().Lights {
		c.signals = append(c.signals, NewSignal(light.Direction, plan, light.State, light.Timer, observers))
	}
	return c
}

// Signal returns the signal for a direction, or nil
func (c *Controller) Signal(d Direction) *Signal {
	for _, s := range c.signals {
		if s.Direction() == d {
			return s
		}
	}
	return nil
}

// Lights returns the current light views in canonical direction order
func (c *Controller) Lights() []TrafficLight {
	return lo.Map(c.signals, func(s *Signal, _ int) TrafficLight { return s.Light() })
}

// Tick returns the number of control ticks taken so far
func (c *Controller) Tick() int {
	return c.clock.Tick()
}

// SetQueueLengths records the latest per-direction queue counts
func (c *Controller) SetQueueLengths(queues map[Direction]int) {
	for _, s := range c.signals {
		s.SetQueueLength(queues[s.Direction()])
	}
}

// Step runs one control tick: emergency override first, then the adaptive
// switch, then the fixed cycle. The phase clock advances whatever the branch.
func (c *Controller) Step(ctx context.Context, vehicles []Vehicle, emergency EmergencyStatus) StepOutcome {
	tick := c.clock.Tick()
	defer c.clock.Advance()

	outcome := c.decide(ctx, tick, vehicles, emergency)
	outcome.Lights = c.Lights()
	return outcome
}

func (c *Controller) decide(ctx context.Context, tick int, vehicles []Vehicle, emergency EmergencyStatus) StepOutcome {
	outcome := StepOutcome{Tick: tick, Phase: c.clock.Phase(c.cfg.CycleLength())}

	if emergency.Active {
		outcome.Mode = ModeEmergency
		outcome.Target = emergency.Direction
		c.grant(ctx, emergency.Direction, ModeEmergency, tick)
		return outcome
	}

	target, blocked := c.adaptiveTarget(vehicles)
	outcome.Blocked = blocked
	if target != "" {
		outcome.Mode = ModeAdaptive
		outcome.Target = target
		c.grant(ctx, target, ModeAdaptive, tick)
		return outcome
	}

	outcome.Mode = ModeFixedCycle
	c.runFixedCycle(ctx, outcome.Phase, tick)
	return outcome
}

// adaptiveTarget returns the direction to switch to, or "" when no switch is
// due. blocked is set when the green approach has not cleared the junction.
func (c *Controller) adaptiveTarget(vehicles []Vehicle) (target Direction, blocked bool) {
	green, ok := lo.Find(c.signals, func(s *Signal) bool { return s.State() == Green })
	if !ok {
		return "", false
	}
	current := green.Direction()

	cleared := lo.NoneBy(vehicles, func(v Vehicle) bool {
		return v.Direction == current && v.Position <= c.cfg.ExitThreshold
	})
	if !cleared {
		return "", true
	}

	queues := QueueLengths(vehicles, c.cfg)
	longest, longestQueue := Direction(""), 0
	for _, d := range Directions {
		if queues[d] > longestQueue {
			longest, longestQueue = d, queues[d]
		}
	}
	if longest != "" && longestQueue > queues[current]+c.cfg.SwitchThreshold {
		return longest, false
	}
	return "", false
}

// grant turns winner green and every other signal red, all with timer 0
func (c *Controller) grant(ctx context.Context, winner Direction, mode Mode, tick int) {
	for _, s := range c.signals {
		if s.Direction() == winner {
			c.show(ctx, s, Green, 0, mode, tick)
		} else {
			c.show(ctx, s, Red, 0, mode, tick)
		}
	}
}

// runFixedCycle applies the phase schedule to every signal based on the
// color it showed when the tick began. A light already yellow keeps
// following the schedule of the green it came from.
func (c *Controller) runFixedCycle(ctx context.Context, phase, tick int) {
	greenEnd := c.cfg.GreenDuration
	yellowEnd := c.cfg.GreenDuration + c.cfg.YellowDuration
	releaseAt := c.cfg.CycleLength() - c.cfg.MinRedDuration

	for _, s := range c.signals {
		switch s.State() {
		case Green, Yellow:
			switch {
			case phase >= greenEnd && phase < yellowEnd:
				c.show(ctx, s, Yellow, phase, ModeFixedCycle, tick)
			case phase >= yellowEnd:
				c.show(ctx, s, Red, 0, ModeFixedCycle, tick)
			default:
				s.SetTimer(phase)
			}
		case Red:
			if phase >= releaseAt {
				c.show(ctx, s, Green, 0, ModeFixedCycle, tick)
			} else {
				s.SetTimer(phase)
			}
		}
	}
}

// show makes s display state and timer, firing a transition only when the
// color actually changes
func (c *Controller) show(ctx context.Context, s *Signal, state LightState, timer int, mode Mode, tick int) {
	if s.State() == state {
		s.SetTimer(timer)
		return
	}
	event := NewEvent(eventFor(state), timer).WithMode(mode, tick)
	if result := s.Fire(ctx, event); result.Error != nil {
		// A custom plan may lack the edge; the tick still has to land on a valid state.
		c.observers.NotifyError(result.Error, s.Context())
		s.force(state, timer)
	}
}

func eventFor(state LightState) string {
	switch state {
	case Green:
		return EventGo
	case Yellow:
		return EventCaution
	default:
		return EventStop
	}
}
