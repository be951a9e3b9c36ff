package crossing

import (
	"context"
	"sync"
)

// Context provides access to signal data while actions, guards and
// observers run
type Context interface {
	context.Context

	Get(key string) (any, bool)
	Set(key string, value any)
	GetAll() map[string]any

	GetDirection() Direction
	GetCurrentState() LightState
	GetSourceState() LightState
	GetTargetState() LightState

	GetCurrentEvent() Event
	GetEventName() string
}

// SignalContext implements Context for a single Signal
type SignalContext struct {
	context.Context
	data         map[string]any
	direction    Direction
	currentState LightState
	sourceState  LightState
	targetState  LightState
	currentEvent Event

	mutex sync.RWMutex
}

// NewContext creates a context bound to the given direction
func NewContext(parent context.Context, direction Direction) *SignalContext {
	if parent == nil {
		parent = context.Background()
	}
	return &SignalContext{
		Context:   parent,
		data:      make(map[string]any),
		direction: direction,
	}
}

// Get retrieves a value from the context
func (ctx *SignalContext) Get(key string) (any, bool) {
	ctx.mutex.RLock()
	defer ctx.mutex.RUnlock()
	value, exists := ctx.data[key]
	return value, exists
}

// Set stores a value in the context
func (ctx *SignalContext) Set(key string, value any) {
	ctx.mutex.Lock()
	defer ctx.mutex.Unlock()
	ctx.data[key] = value
}

// GetAll returns a copy of all context data
func (ctx *SignalContext) GetAll() map[string]any {
	ctx.mutex.RLock()
	defer ctx.mutex.RUnlock()
	result := make(map[string]any, len(ctx.data))
	for k, v := range ctx.data {
		result[k] = v
	}
	return result
}

// GetDirection returns the approach the signal controls
func (ctx *SignalContext) GetDirection() Direction {
	return ctx.direction
}

// GetCurrentState returns the signal's color
func (ctx *SignalContext) GetCurrentState() LightState {
	ctx.mutex.RLock()
	defer ctx.mutex.RUnlock()
	return ctx.currentState
}

// GetSourceState returns the source color of the transition in progress
func (ctx *SignalContext) GetSourceState() LightState {
	ctx.mutex.RLock()
	defer ctx.mutex.RUnlock()
	return ctx.sourceState
}

// GetTargetState returns the target color of the transition in progress
func (ctx *SignalContext) GetTargetState() LightState {
	ctx.mutex.RLock()
	defer ctx.mutex.RUnlock()
	return ctx.targetState
}

// GetCurrentEvent returns the event being processed
func (ctx *SignalContext) GetCurrentEvent() Event {
	ctx.mutex.RLock()
	defer ctx.mutex.RUnlock()
	return ctx.currentEvent
}

// GetEventName returns the name of the event being processed, or ""
func (ctx *SignalContext) GetEventName() string {
	ctx.mutex.RLock()
	defer ctx.mutex.RUnlock()
	if ctx.currentEvent == nil {
		return ""
	}
	return ctx.currentEvent.GetName()
}

func (ctx *SignalContext) updateCurrentState(state LightState) {
	ctx.mutex.Lock()
	defer ctx.mutex.Unlock()
	ctx.currentState = state
}

func (ctx *SignalContext) updateTransitionInfo(parent context.Context, source, target LightState, event Event) {
	ctx.mutex.Lock()
	defer ctx.mutex.Unlock()
	if parent != nil {
		ctx.Context = parent
	}
	ctx.sourceState = source
	ctx.targetState = target
	ctx.currentEvent = event
}
