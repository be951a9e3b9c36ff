package crossing

import (
	"time"
)

// Signal event names understood by the default plan
const (
	EventGo      = "go"
	EventCaution = "caution"
	EventStop    = "stop"
)

// Event represents a trigger for a signal transition
type Event interface {
	GetName() string
	// GetTimer is the timer value the signal shows after the transition
	GetTimer() int
	GetMode() Mode
	GetTick() int
	GetTimestamp() time.Time
}

// SignalEvent is the Event implementation the controller sends to signals
type SignalEvent struct {
	name      string
	timer     int
	mode      Mode
	tick      int
	timestamp time.Time
}

// NewEvent creates an event carrying the timer value to display
func NewEvent(name string, timer int) *SignalEvent {
	return &SignalEvent{
		name:      name,
		timer:     timer,
		timestamp: time.Now(),
	}
}

// WithMode tags the event with the controller branch and tick that raised it
func (e *SignalEvent) WithMode(mode Mode, tick int) *SignalEvent {
	e.mode = mode
	e.tick = tick
	return e
}

// GetName returns the event name
func (e *SignalEvent) GetName() string {
	return e.name
}

// GetTimer returns the timer value carried by the event
func (e *SignalEvent) GetTimer() int {
	return e.timer
}

// GetMode returns the controller branch that raised the event
func (e *SignalEvent) GetMode() Mode {
	return e.mode
}

// GetTick returns the control tick that raised the event
func (e *SignalEvent) GetTick() int {
	return e.tick
}

// GetTimestamp returns the wall-clock creation time
func (e *SignalEvent) GetTimestamp() time.Time {
	return e.timestamp
}

// EventResult represents the result of firing an event at a signal
type EventResult struct {
	Processed       bool
	StateChanged    bool
	PreviousState   LightState
	CurrentState    LightState
	Error           error
	RejectionReason string
}

// NewEventResult creates a new event result
func NewEventResult(processed, stateChanged bool, prevState, currentState LightState) *EventResult {
	return &EventResult{
		Processed:     processed,
		StateChanged:  stateChanged,
		PreviousState: prevState,
		CurrentState:  currentState,
	}
}

// WithError adds an error to the event result
func (r *EventResult) WithError(err error) *EventResult {
	r.Error = err
	return r
}

// WithRejection adds a rejection reason to the event result
func (r *EventResult) WithRejection(reason string) *EventResult {
	r.RejectionReason = reason
	r.Processed = false
	return r
}

// Success returns true if the event was processed successfully
func (r *EventResult) Success() bool {
	return r.Processed && r.Error == nil
}
