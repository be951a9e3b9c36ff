package crossing

import (
	"strconv"
	"sync"
	"testing"
)

// TestObserver is a recording observer for tests that captures every notification
type TestObserver struct {
	mutex        sync.RWMutex
	Transitions  []TransitionEvent
	StateEnters  []StateEvent
	StateExits   []StateEvent
	EventRejects []EventRejectEvent
	Errors       []error
	Guards       []GuardEvent
	Steps        []StepOutcome
	Emergencies  []EmergencyStatus
	Clears       []ClearEvent
	Spawned      []Vehicle
	Exited       []Vehicle
	Started      int
	Stopped      int
}

type TransitionEvent struct {
	Direction Direction
	From      LightState
	To        LightState
	Event     Event
	Ctx       Context
}

type StateEvent struct {
	Direction Direction
	State     LightState
}

type EventRejectEvent struct {
	Direction Direction
	Event     Event
	Reason    string
}

type GuardEvent struct {
	Direction Direction
	From      LightState
	To        LightState
	Result    bool
}

type ClearEvent struct {
	Direction Direction
	Cancelled bool
}

// NewTestObserver creates a new test observer
func NewTestObserver() *TestObserver {
	return &TestObserver{}
}

func (o *TestObserver) OnTransition(direction Direction, from, to LightState, event Event, ctx Context) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.Transitions = append(o.Transitions, TransitionEvent{Direction: direction, From: from, To: to, Event: event, Ctx: ctx})
}

func (o *TestObserver) OnStateEnter(direction Direction, state LightState, _ Context) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.StateEnters = append(o.StateEnters, StateEvent{Direction: direction, State: state})
}

func (o *TestObserver) OnStateExit(direction Direction, state LightState, _ Context) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.StateExits = append(o.StateExits, StateEvent{Direction: direction, State: state})
}

func (o *TestObserver) OnGuardEvaluation(direction Direction, from, to LightState, _ Event, result bool, _ Context) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.Guards = append(o.Guards, GuardEvent{Direction: direction, From: from, To: to, Result: result})
}

func (o *TestObserver) OnEventRejected(direction Direction, event Event, reason string, _ Context) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.EventRejects = append(o.EventRejects, EventRejectEvent{Direction: direction, Event: event, Reason: reason})
}

func (o *TestObserver) OnError(err error) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.Errors = append(o.Errors, err)
}

func (o *TestObserver) OnControlStep(outcome StepOutcome) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.Steps = append(o.Steps, outcome)
}

func (o *TestObserver) OnEmergencyStart(status EmergencyStatus) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.Emergencies = append(o.Emergencies, status)
}

func (o *TestObserver) OnEmergencyClear(direction Direction, cancelled bool) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.Clears = append(o.Clears, ClearEvent{Direction: direction, Cancelled: cancelled})
}

func (o *TestObserver) OnVehicleSpawned(v Vehicle) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.Spawned = append(o.Spawned, v)
}

func (o *TestObserver) OnVehicleExited(v Vehicle) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.Exited = append(o.Exited, v)
}

func (o *TestObserver) OnEngineStarted() {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.Started++
}

func (o *TestObserver) OnEngineStopped() {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.Stopped++
}

// Helper methods for test assertions
func (o *TestObserver) Reset() {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.Transitions = nil
	o.StateEnters = nil
	o.StateExits = nil
	o.EventRejects = nil
	o.Errors = nil
	o.Guards = nil
	o.Steps = nil
	o.Emergencies = nil
	o.Clears = nil
	o.Spawned = nil
	o.Exited = nil
	o.Started = 0
	o.Stopped = 0
}

func (o *TestObserver) TransitionCount() int {
	o.mutex.RLock()
	defer o.mutex.RUnlock()
	return len(o.Transitions)
}

func (o *TestObserver) ErrorCount() int {
	o.mutex.RLock()
	defer o.mutex.RUnlock()
	return len(o.Errors)
}

func (o *TestObserver) ClearEvents() []ClearEvent {
	o.mutex.RLock()
	defer o.mutex.RUnlock()
	return append([]ClearEvent(nil), o.Clears...)
}

func (o *TestObserver) LastTransition() *TransitionEvent {
	o.mutex.RLock()
	defer o.mutex.RUnlock()
	if len(o.Transitions) == 0 {
		return nil
	}
	return &o.Transitions[len(o.Transitions)-1]
}

func (o *TestObserver) LastStep() *StepOutcome {
	o.mutex.RLock()
	defer o.mutex.RUnlock()
	if len(o.Steps) == 0 {
		return nil
	}
	return &o.Steps[len(o.Steps)-1]
}

func (o *TestObserver) StartStopCounts() (int, int) {
	o.mutex.RLock()
	defer o.mutex.RUnlock()
	return o.Started, o.Stopped
}

// ScriptedRandom replays fixed values. Once a script runs out, Float64
// returns 0.99 and Intn returns 0.
type ScriptedRandom struct {
	mutex  sync.Mutex
	floats []float64
	ints   []int
}

// NewScriptedRandom creates a random source that replays floats and ints in order
func NewScriptedRandom(floats []float64, ints []int) *ScriptedRandom {
	return &ScriptedRandom{floats: floats, ints: ints}
}

func (r *ScriptedRandom) Float64() float64 {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if len(r.floats) == 0 {
		return 0.99
	}
	f := r.floats[0]
	r.floats = r.floats[1:]
	return f
}

func (r *ScriptedRandom) Intn(n int) int {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if len(r.ints) == 0 {
		return 0
	}
	i := r.ints[0]
	r.ints = r.ints[1:]
	return i % n
}

// Remaining reports how many scripted floats and ints have not been consumed
func (r *ScriptedRandom) Remaining() (int, int) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return len(r.floats), len(r.ints)
}

// Test fixtures

// SequentialIDs returns an IDFunc producing "v1", "v2", ...
func SequentialIDs() IDFunc {
	var mutex sync.Mutex
	n := 0
	return func() string {
		mutex.Lock()
		defer mutex.Unlock()
		n++
		return "v" + strconv.Itoa(n)
	}
}

// NewTestEngine creates an engine with scripted randomness and sequential ids
func NewTestEngine(t *testing.T, rnd RandomSource, opts ...Option) *Engine {
	t.Helper()
	if rnd == nil {
		rnd = NewScriptedRandom(nil, nil)
	}
	opts = append([]Option{WithRandomSource(rnd), WithIDFunc(SequentialIDs())}, opts...)
	engine, err := NewEngine(DefaultConfig(), opts...)
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}
	return engine
}

// AssertAtMostOneGreen fails the test when more than one light is green
func AssertAtMostOneGreen(t *testing.T, lights []TrafficLight) {
	t.Helper()
	greens := 0
	for _, l := range lights {
		if l.State == Green {
			greens++
		}
	}
	if greens > 1 {
		t.Errorf("Expected at most one green light, got %d: %+v", greens, lights)
	}
}

// AssertLight checks the color and timer of one direction's light
func AssertLight(t *testing.T, lights []TrafficLight, d Direction, state LightState, timer int) {
	t.Helper()
	for _, l := range lights {
		if l.Direction != d {
			continue
		}
		if l.State != state || l.Timer != timer {
			t.Errorf("Expected %s light %s/%d, got %s/%d", d, state, timer, l.State, l.Timer)
		}
		return
	}
	t.Errorf("No light for direction %s", d)
}
