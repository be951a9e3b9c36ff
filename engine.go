package crossing

import (
	"context"
	"sync"
	"time"
)

// Snapshot is an immutable copy of the simulation handed to readers
type Snapshot struct {
	IntersectionState
	Emergency EmergencyStatus `json:"emergency"`
	Tick      int             `json:"tick"`
	Mode      Mode            `json:"mode"`
	Advisory  Advisory        `json:"advisory"`
}

// Option configures an Engine
type Option func(*Engine)

// WithRandomSource sets the randomness used for spawning and emergencies
func WithRandomSource(rnd RandomSource) Option {
	return func(e *Engine) { e.rnd = rnd }
}

// WithIDFunc sets the vehicle id generator
func WithIDFunc(fn IDFunc) Option {
	return func(e *Engine) { e.nextID = fn }
}

// WithSignalPlan replaces the default signal plan
func WithSignalPlan(plan *SignalPlan) Option {
	return func(e *Engine) { e.plan = plan }
}

// WithObserver registers an observer before the first tick
func WithObserver(observer Observer) Option {
	return func(e *Engine) { e.observers.AddObserver(observer) }
}

// Engine owns the intersection state and drives the control, motion and
// dispatch ticks. Every tick holds the engine's lock for its whole
// read-modify-write, so no reader ever sees a half-applied tick.
type Engine struct {
	cfg    Config
	rnd    RandomSource
	nextID IDFunc
	plan   *SignalPlan

	mutex      sync.RWMutex
	vehicles   []Vehicle
	controller *Controller
	kinematics *Kinematics
	dispatcher *Dispatcher
	observers  *ObserverManager
	lastMode   Mode

	runMutex sync.Mutex
	running  bool
	cancel   context.CancelFunc
	done     chan struct{}
}

// NewEngine validates cfg and builds an engine in the initial intersection state
func NewEngine(cfg Config, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{
		cfg:       cfg,
		observers: NewObserverManager(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.rnd == nil {
		e.rnd = NewRandomSource(0)
	}
	if e.plan == nil {
		e.plan = DefaultSignalPlan()
	}
	e.init()
	return e, nil
}

func (e *Engine) init() {
	e.vehicles = []Vehicle{}
	e.controller = NewController(e.cfg, e.plan, e.observers)
	e.kinematics = NewKinematics(e.cfg, e.rnd, e.nextID)
	e.dispatcher = NewDispatcher(e.cfg, e.rnd)
	e.lastMode = ModeFixedCycle
}

// Config returns the engine configuration
func (e *Engine) Config() Config {
	return e.cfg
}

// Plan returns the signal plan driving every signal head
func (e *Engine) Plan() *SignalPlan {
	return e.plan
}

// AddObserver adds an observer to the engine
func (e *Engine) AddObserver(observer Observer) {
	e.observers.AddObserver(observer)
}

// RemoveObserver removes an observer from the engine
func (e *Engine) RemoveObserver(observer Observer) {
	e.observers.RemoveObserver(observer)
}

// ControlTick runs the signal controller once and counts down any active
// emergency
func (e *Engine) ControlTick(ctx context.Context) StepOutcome {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	outcome := e.controller.Step(ctx, e.vehicles, e.dispatcher.Status())
	e.lastMode = outcome.Mode
	if expired, ok := e.dispatcher.Advance(); ok {
		e.observers.NotifyEmergencyClear(expired, false)
	}
	e.observers.NotifyControlStep(outcome)
	return outcome
}

// MotionTick moves every vehicle once, spawns at most one new vehicle and
// refreshes the queue counts shown on the lights
func (e *Engine) MotionTick(_ context.Context) {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	next, spawned, exited := e.kinematics.Advance(e.vehicles, e.controller.Lights())
	e.vehicles = next
	e.controller.SetQueueLengths(QueueLengths(e.vehicles, e.cfg))

	for _, v := range exited {
		e.observers.NotifyVehicleExited(v)
	}
	if spawned != nil {
		e.observers.NotifyVehicleSpawned(*spawned)
	}
}

// DispatchTick rolls for an emergency. It reports whether one started.
func (e *Engine) DispatchTick(_ context.Context) bool {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	if _, ok := e.dispatcher.Roll(); !ok {
		return false
	}
	e.observers.NotifyEmergencyStart(e.dispatcher.Status())
	return true
}

// Snapshot returns a deep copy of the current state
func (e *Engine) Snapshot() Snapshot {
	e.mutex.RLock()
	defer e.mutex.RUnlock()

	state := IntersectionState{Vehicles: e.vehicles, Lights: e.controller.Lights()}.Clone()
	return Snapshot{
		IntersectionState: state,
		Emergency:         e.dispatcher.Status(),
		Tick:              e.controller.Tick(),
		Mode:              e.lastMode,
		Advisory:          Classify(QueueLengths(state.Vehicles, e.cfg), e.cfg),
	}
}

// Reset returns the engine to the initial intersection state. Observers are kept.
func (e *Engine) Reset() {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	if direction, ok := e.dispatcher.Cancel(); ok {
		e.observers.NotifyEmergencyClear(direction, true)
	}
	e.init()
}

// Running reports whether the tick loop is active
func (e *Engine) Running() bool {
	e.runMutex.Lock()
	defer e.runMutex.Unlock()
	return e.running
}

// Start launches the tick loop in its own goroutine
func (e *Engine) Start(ctx context.Context) error {
	e.runMutex.Lock()
	defer e.runMutex.Unlock()

	if e.running {
		return NewMachineError(ErrCodeInvalidState, "Start", "engine is already running")
	}
	loopCtx, cancel := context.WithCancel(ctx)
	e.running = true
	e.cancel = cancel
	e.done = make(chan struct{})

	go e.loop(loopCtx, e.done)
	return nil
}

// Stop cancels every periodic task and any active emergency, and waits for
// the tick loop to exit
func (e *Engine) Stop() error {
	e.runMutex.Lock()
	if !e.running {
		e.runMutex.Unlock()
		return NewMachineError(ErrCodeNotRunning, "Stop", "engine is not running")
	}
	cancel, done := e.cancel, e.done
	e.runMutex.Unlock()

	cancel()
	<-done
	return nil
}

// Run starts the tick loop and blocks until ctx is cancelled
func (e *Engine) Run(ctx context.Context) error {
	if err := e.Start(ctx); err != nil {
		return err
	}
	e.runMutex.Lock()
	done := e.done
	e.runMutex.Unlock()
	<-done
	return nil
}

func (e *Engine) loop(ctx context.Context, done chan struct{}) {
	control := time.NewTicker(e.cfg.ControlPeriod)
	motion := time.NewTicker(e.cfg.MotionPeriod)
	dispatch := time.NewTicker(e.cfg.DispatchPeriod)

	defer func() {
		control.Stop()
		motion.Stop()
		dispatch.Stop()

		e.mutex.Lock()
		if direction, ok := e.dispatcher.Cancel(); ok {
			e.observers.NotifyEmergencyClear(direction, true)
		}
		e.mutex.Unlock()

		e.runMutex.Lock()
		e.running = false
		e.runMutex.Unlock()

		e.observers.NotifyEngineStopped()
		close(done)
	}()

	e.observers.NotifyEngineStarted()
	for {
		select {
		case <-ctx.Done():
			return
		case <-control.C:
			e.ControlTick(ctx)
		case <-motion.C:
			e.MotionTick(ctx)
		case <-dispatch.C:
			e.DispatchTick(ctx)
		}
	}
}
