package crossing

import (
	"context"
	"fmt"
	"strings"
)

// Signal is the state machine behind one signal head. It is not safe for
// concurrent use; the Engine serializes every access.
type Signal struct {
	direction   Direction
	plan        *SignalPlan
	state       LightState
	timer       int
	queueLength int
	context     *SignalContext
	observers   *ObserverManager
}

// NewSignal creates a signal for direction showing the given color and timer.
// An empty color starts the signal in the plan's initial state.
func NewSignal(direction Direction, plan *SignalPlan, state LightState, timer int, observers *ObserverManager) *Signal {
	if plan == nil {
		plan = DefaultSignalPlan()
	}
	if observers == nil {
		observers = NewObserverManager()
	}
	if state == "" {
		state = plan.GetInitialState()
	}
	s := &Signal{
		direction: direction,
		plan:      plan,
		state:     state,
		timer:     timer,
		context:   NewContext(context.Background(), direction),
		observers: observers,
	}
	s.context.updateCurrentState(state)
	return s
}

// Direction returns the approach this signal controls
func (s *Signal) Direction() Direction {
	return s.direction
}

// State returns the color currently shown
func (s *Signal) State() LightState {
	return s.state
}

// Timer returns the displayed timer value
func (s *Signal) Timer() int {
	return s.timer
}

// SetTimer rewrites the displayed timer without changing color
func (s *Signal) SetTimer(timer int) {
	s.timer = timer
}

// QueueLength returns the last queue count recorded for the approach
func (s *Signal) QueueLength() int {
	return s.queueLength
}

// SetQueueLength records the approach's queue count
func (s *Signal) SetQueueLength(n int) {
	s.queueLength = n
}

// Context returns the signal's context
func (s *Signal) Context() Context {
	return s.context
}

// Light returns the externally visible view of the signal
func (s *Signal) Light() TrafficLight {
	return TrafficLight{
		Direction:   s.direction,
		State:       s.state,
		Timer:       s.timer,
		QueueLength: s.queueLength,
	}
}

// force sets color and timer without consulting the plan or notifying
// transition observers
func (s *Signal) force(state LightState, timer int) {
	s.state = state
	s.timer = timer
	s.context.updateCurrentState(state)
}

// Fire applies an event to the signal. On success the signal shows the
// transition's target color and the event's timer value.
func (s *Signal) Fire(ctx context.Context, event Event) *EventResult {
	previous := s.state

	if event == nil || strings.TrimSpace(event.GetName()) == "" {
		reason := "event name cannot be empty"
		s.observers.NotifyEventRejected(s.direction, event, reason, s.context)
		return NewEventResult(false, false, previous, previous).
			WithRejection(reason).
			WithError(NewNoTransitionError(s.direction, previous, ""))
	}

	s.context.updateTransitionInfo(ctx, previous, "", event)

	transition, ok := s.findMatchingTransition(event)
	if !ok {
		err := NewNoTransitionError(s.direction, previous, event.GetName())
		s.observers.NotifyEventRejected(s.direction, event, err.Reason, s.context)
		return NewEventResult(false, false, previous, previous).
			WithRejection(err.Reason).
			WithError(err)
	}

	target := transition.To
	s.context.updateTransitionInfo(ctx, previous, target, event)

	if transition.Action != nil {
		if err := safeExecuteAction(transition.Action, s.context); err != nil {
			actionErr := NewActionError("transition", s.direction, previous, err)
			s.observers.NotifyError(actionErr, s.context)
			s.observers.NotifyEventRejected(s.direction, event, fmt.Sprintf("transition action failed: %v", err), s.context)
			return NewEventResult(false, false, previous, previous).WithError(actionErr)
		}
	}

	if from, ok := s.plan.states[previous]; ok {
		if err := from.Exit(s.context); err != nil {
			s.observers.NotifyError(NewActionError("exit", s.direction, previous, err), s.context)
		}
	}

	s.state = target
	s.timer = event.GetTimer()
	s.context.updateCurrentState(target)

	if to, ok := s.plan.states[target]; ok {
		if err := to.Enter(s.context); err != nil {
			s.observers.NotifyError(NewActionError("entry", s.direction, target, err), s.context)
		}
	}

	s.observers.NotifyStateExit(s.direction, previous, s.context)
	s.observers.NotifyTransition(s.direction, previous, target, event, s.context)
	s.observers.NotifyStateEnter(s.direction, target, s.context)

	return NewEventResult(true, true, previous, target)
}

// findMatchingTransition returns the first transition out of the current
// color whose event matches and whose guard passes. A panicking guard
// counts as a rejection.
func (s *Signal) findMatchingTransition(event Event) (Transition, bool) {
	for _, t := range s.plan.transitions[s.state] {
		if t.Event != event.GetName() {
			continue
		}
		if t.Guard != nil {
			passed, err := safeEvaluateGuard(t.Guard, s.context)
			s.observers.NotifyGuardEvaluation(s.direction, t.From, t.To, event, passed, s.context)
			if err != nil || !passed {
				continue
			}
		}
		return t, true
	}
	return Transition{}, false
}
