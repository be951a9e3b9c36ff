package crossing

import (
	"fmt"
)

// SignalPlan is the immutable definition shared by every signal head:
// its colors, their actions, and the transitions between them
type SignalPlan struct {
	initial     LightState
	order       []LightState
	states      map[LightState]State
	transitions map[LightState][]Transition
}

// GetInitialState returns the color a fresh signal starts in
func (p *SignalPlan) GetInitialState() LightState {
	return p.initial
}

// GetStates returns the plan's states keyed by color
func (p *SignalPlan) GetStates() map[LightState]State {
	result := make(map[LightState]State, len(p.states))
	for k, v := range p.states {
		result[k] = v
	}
	return result
}

// GetTransitions returns the plan's transitions keyed by source color
func (p *SignalPlan) GetTransitions() map[LightState][]Transition {
	result := make(map[LightState][]Transition, len(p.transitions))
	for k, v := range p.transitions {
		result[k] = append([]Transition(nil), v...)
	}
	return result
}

// StateIDs returns the plan's colors in declaration order
func (p *SignalPlan) StateIDs() []LightState {
	return append([]LightState(nil), p.order...)
}

// PlanBuilder provides the entry point for building signal plans
type PlanBuilder interface {
	State(id LightState) StateBuilder
	Build() (*SignalPlan, error)
}

// StateBuilder configures one color of the plan
type StateBuilder interface {
	To(target LightState) TransitionBuilder
	OnEntry(action ActionFunc) StateBuilder
	OnExit(action ActionFunc) StateBuilder
	Initial() StateBuilder

	State(id LightState) StateBuilder
	Build() (*SignalPlan, error)
}

// TransitionBuilder configures a transition out of the current color
type TransitionBuilder interface {
	On(event string) TransitionBuilder
	When(guard GuardFunc) TransitionBuilder
	Unless(guard GuardFunc) TransitionBuilder
	Do(action ActionFunc) TransitionBuilder

	To(target LightState) TransitionBuilder
	State(id LightState) StateBuilder
	Build() (*SignalPlan, error)
}

type planBuilderImpl struct {
	initial     LightState
	states      map[LightState]*LightStateNode
	order       []LightState
	transitions []*Transition
}

// NewSignalPlan starts a new plan definition
func NewSignalPlan() PlanBuilder {
	return &planBuilderImpl{
		states: make(map[LightState]*LightStateNode),
	}
}

func (pb *planBuilderImpl) State(id LightState) StateBuilder {
	node, ok := pb.states[id]
	if !ok {
		node = NewLightState(id)
		pb.states[id] = node
		pb.order = append(pb.order, id)
	}
	return &stateBuilderImpl{plan: pb, node: node}
}

func (pb *planBuilderImpl) Build() (*SignalPlan, error) {
	if err := pb.validate(); err != nil {
		return nil, err
	}

	plan := &SignalPlan{
		initial:     pb.initial,
		order:       append([]LightState(nil), pb.order...),
		states:      make(map[LightState]State, len(pb.states)),
		transitions: make(map[LightState][]Transition),
	}
	for id, node := range pb.states {
		plan.states[id] = node
	}
	for _, t := range pb.transitions {
		plan.transitions[t.From] = append(plan.transitions[t.From], *t)
	}
	return plan, nil
}

func (pb *planBuilderImpl) validate() error {
	if pb.initial == "" {
		return NewConfigurationError("SignalPlan", "no initial state defined")
	}
	for _, t := range pb.transitions {
		if t.Event == "" {
			return NewConfigurationError("SignalPlan", fmt.Sprintf("transition %s -> %s has no event", t.From, t.To))
		}
		if _, ok := pb.states[t.To]; !ok {
			return NewConfigurationError("SignalPlan", fmt.Sprintf("transition %s -> %s targets an undefined state", t.From, t.To))
		}
	}
	return nil
}

type stateBuilderImpl struct {
	plan *planBuilderImpl
	node *LightStateNode
}

func (sb *stateBuilderImpl) To(target LightState) TransitionBuilder {
	t := NewTransition(sb.node.ID(), target, "")
	sb.plan.transitions = append(sb.plan.transitions, t)
	return &transitionBuilderImpl{state: sb, transition: t}
}

func (sb *stateBuilderImpl) OnEntry(action ActionFunc) StateBuilder {
	sb.node.WithEntryAction(action)
	return sb
}

func (sb *stateBuilderImpl) OnExit(action ActionFunc) StateBuilder {
	sb.node.WithExitAction(action)
	return sb
}

func (sb *stateBuilderImpl) Initial() StateBuilder {
	sb.plan.initial = sb.node.ID()
	return sb
}

func (sb *stateBuilderImpl) State(id LightState) StateBuilder {
	return sb.plan.State(id)
}

func (sb *stateBuilderImpl) Build() (*SignalPlan, error) {
	return sb.plan.Build()
}

type transitionBuilderImpl struct {
	state      *stateBuilderImpl
	transition *Transition
}

func (tb *transitionBuilderImpl) On(event string) TransitionBuilder {
	tb.transition.Event = event
	return tb
}

func (tb *transitionBuilderImpl) When(guard GuardFunc) TransitionBuilder {
	tb.transition.WithGuard(guard)
	return tb
}

func (tb *transitionBuilderImpl) Unless(guard GuardFunc) TransitionBuilder {
	tb.transition.WithGuard(func(ctx Context) bool {
		return !guard(ctx)
	})
	return tb
}

func (tb *transitionBuilderImpl) Do(action ActionFunc) TransitionBuilder {
	tb.transition.WithAction(action)
	return tb
}

func (tb *transitionBuilderImpl) To(target LightState) TransitionBuilder {
	return tb.state.To(target)
}

func (tb *transitionBuilderImpl) State(id LightState) StateBuilder {
	return tb.state.plan.State(id)
}

func (tb *transitionBuilderImpl) Build() (*SignalPlan, error) {
	return tb.state.plan.Build()
}

// DefaultSignalPlan returns the plan the controller drives: any color can be
// forced green or red, and only a green light can turn yellow
func DefaultSignalPlan() *SignalPlan {
	plan, err := NewSignalPlan().
		State(Red).Initial().
		To(Green).On(EventGo).
		State(Green).
		To(Yellow).On(EventCaution).
		To(Red).On(EventStop).
		State(Yellow).
		To(Red).On(EventStop).
		To(Green).On(EventGo).
		Build()
	if err != nil {
		panic(err)
	}
	return plan
}
