package crossing

// Transition moves a signal from one color to another on an event
type Transition struct {
	From   LightState
	To     LightState
	Event  string
	Guard  GuardFunc
	Action ActionFunc
}

// NewTransition creates a new transition
func NewTransition(from, to LightState, event string) *Transition {
	return &Transition{
		From:  from,
		To:    to,
		Event: event,
	}
}

// WithGuard adds a guard condition to the transition
func (t *Transition) WithGuard(guard GuardFunc) *Transition {
	t.Guard = guard
	return t
}

// WithAction adds an action to the transition
func (t *Transition) WithAction(action ActionFunc) *Transition {
	t.Action = action
	return t
}

// IsSelf reports whether the transition re-enters its source color
func (t *Transition) IsSelf() bool {
	return t.From == t.To
}
