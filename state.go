package crossing

import "fmt"

// State is one node of a signal plan
type State interface {
	ID() LightState
	Enter(ctx Context) error
	Exit(ctx Context) error
}

// ActionFunc runs on state entry, state exit or while taking a transition
type ActionFunc func(ctx Context) error

// GuardFunc decides whether a transition may be taken
type GuardFunc func(ctx Context) bool

// LightStateNode implements State for one light color
type LightStateNode struct {
	id          LightState
	entryAction ActionFunc
	exitAction  ActionFunc
}

// NewLightState creates a plan node for the given color
func NewLightState(id LightState) *LightStateNode {
	return &LightStateNode{id: id}
}

// ID returns the light color this node represents
func (s *LightStateNode) ID() LightState {
	return s.id
}

// Enter executes the entry action
func (s *LightStateNode) Enter(ctx Context) error {
	if s.entryAction == nil {
		return nil
	}
	return safeExecuteAction(s.entryAction, ctx)
}

// Exit executes the exit action
func (s *LightStateNode) Exit(ctx Context) error {
	if s.exitAction == nil {
		return nil
	}
	return safeExecuteAction(s.exitAction, ctx)
}

// WithEntryAction sets the entry action for the state
func (s *LightStateNode) WithEntryAction(action ActionFunc) *LightStateNode {
	s.entryAction = action
	return s
}

// WithExitAction sets the exit action for the state
func (s *LightStateNode) WithExitAction(action ActionFunc) *LightStateNode {
	s.exitAction = action
	return s
}

// safeEvaluateGuard evaluates a guard, treating a panic as a rejection
func safeEvaluateGuard(guard GuardFunc, ctx Context) (result bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = false
			err = fmt.Errorf("guard panic: %v", r)
		}
	}()

	result = guard(ctx)
	return result, nil
}

// safeExecuteAction runs an action, converting a panic into an error
func safeExecuteAction(action ActionFunc, ctx Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("action panic: %v", r)
		}
	}()

	return action(ctx)
}
