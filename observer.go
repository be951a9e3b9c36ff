package crossing

import (
	"fmt"
	"sync"
)

// Observer watches signal transitions
type Observer interface {
	// Required methods

	// OnTransition is called when a signal changes color
	OnTransition(direction Direction, from, to LightState, event Event, ctx Context)

	// OnStateEnter is called when a signal enters a color
	OnStateEnter(direction Direction, state LightState, ctx Context)
}

// ExtendedObserver provides additional optional observation methods
type ExtendedObserver interface {
	Observer

	// OnStateExit is called when a signal leaves a color
	OnStateExit(direction Direction, state LightState, ctx Context)

	// OnGuardEvaluation is called when a transition guard is evaluated
	OnGuardEvaluation(direction Direction, from, to LightState, event Event, result bool, ctx Context)

	// OnEventRejected is called when a signal has no transition for an event
	OnEventRejected(direction Direction, event Event, reason string, ctx Context)

	// OnError is called when an action fails or an observer panics
	OnError(err error)

	// OnControlStep is called after every control tick
	OnControlStep(outcome StepOutcome)

	// OnEmergencyStart is called when a dispatch tick activates an emergency
	OnEmergencyStart(status EmergencyStatus)

	// OnEmergencyClear is called once when an emergency ends; cancelled is
	// true when it was cut short by shutdown
	OnEmergencyClear(direction Direction, cancelled bool)

	// OnVehicleSpawned is called when a vehicle enters the simulation
	OnVehicleSpawned(v Vehicle)

	// OnVehicleExited is called when a vehicle leaves the simulation
	OnVehicleExited(v Vehicle)

	// OnEngineStarted is called when the engine's tick loop starts
	OnEngineStarted()

	// OnEngineStopped is called when the engine's tick loop stops
	OnEngineStopped()
}

// BaseObserver provides a default implementation with no-op methods
type BaseObserver struct{}

// OnTransition implements the required Observer method
func (o *BaseObserver) OnTransition(Direction, LightState, LightState, Event, Context) {}

// OnStateEnter implements the required Observer method
func (o *BaseObserver) OnStateEnter(Direction, LightState, Context) {}

// OnStateExit implements the optional ExtendedObserver method
func (o *BaseObserver) OnStateExit(Direction, LightState, Context) {}

// OnGuardEvaluation implements the optional ExtendedObserver method
func (o *BaseObserver) OnGuardEvaluation(Direction, LightState, LightState, Event, bool, Context) {}

// OnEventRejected implements the optional ExtendedObserver method
func (o *BaseObserver) OnEventRejected(Direction, Event, string, Context) {}

// OnError implements the optional ExtendedObserver method
func (o *BaseObserver) OnError(error) {}

// OnControlStep implements the optional ExtendedObserver method
func (o *BaseObserver) OnControlStep(StepOutcome) {}

// OnEmergencyStart implements the optional ExtendedObserver method
func (o *BaseObserver) OnEmergencyStart(EmergencyStatus) {}

// OnEmergencyClear implements the optional ExtendedObserver method
func (o *BaseObserver) OnEmergencyClear(Direction, bool) {}

// OnVehicleSpawned implements the optional ExtendedObserver method
func (o *BaseObserver) OnVehicleSpawned(Vehicle) {}

// OnVehicleExited implements the optional ExtendedObserver method
func (o *BaseObserver) OnVehicleExited(Vehicle) {}

// OnEngineStarted implements the optional ExtendedObserver method
func (o *BaseObserver) OnEngineStarted() {}

// OnEngineStopped implements the optional ExtendedObserver method
func (o *BaseObserver) OnEngineStopped() {}

// ObserverManager fans notifications out to a set of observers. A panicking
// observer never interrupts a tick; the panic is reported through OnError.
type ObserverManager struct {
	mutex     sync.RWMutex
	observers []Observer
}

// NewObserverManager creates a new observer manager
func NewObserverManager() *ObserverManager {
	return &ObserverManager{
		observers: make([]Observer, 0),
	}
}

// AddObserver adds an observer to the manager
func (om *ObserverManager) AddObserver(observer Observer) {
	om.mutex.Lock()
	defer om.mutex.Unlock()
	om.observers = append(om.observers, observer)
}

// RemoveObserver removes an observer from the manager
func (om *ObserverManager) RemoveObserver(observer Observer) {
	om.mutex.Lock()
	defer om.mutex.Unlock()
	for i, obs := range om.observers {
		if obs == observer {
			om.observers = append(om.observers[:i], om.observers[i+1:]...)
			break
		}
	}
}

// Len returns the number of registered observers
func (om *ObserverManager) Len() int {
	om.mutex.RLock()
	defer om.mutex.RUnlock()
	return len(om.observers)
}

func (om *ObserverManager) snapshot() []Observer {
	om.mutex.RLock()
	defer om.mutex.RUnlock()
	observers := make([]Observer, len(om.observers))
	copy(observers, om.observers)
	return observers
}

// each calls fn for every observer, recovering panics
func (om *ObserverManager) each(method string, fn func(Observer)) {
	for _, observer := range om.snapshot() {
		func() {
			defer func() {
				if r := recover(); r != nil {
					if extObs, ok := observer.(ExtendedObserver); ok && method != "OnError" {
						func() {
							defer func() { recover() }()
							extObs.OnError(fmt.Errorf("observer panic in %s: %v", method, r))
						}()
					}
				}
			}()
			fn(observer)
		}()
	}
}

// eachExtended is each restricted to observers implementing ExtendedObserver
func (om *ObserverManager) eachExtended(method string, fn func(ExtendedObserver)) {
	om.each(method, func(o Observer) {
		if extObs, ok := o.(ExtendedObserver); ok {
			fn(extObs)
		}
	})
}

// NotifyTransition notifies all observers of a color change
func (om *ObserverManager) NotifyTransition(direction Direction, from, to LightState, event Event, ctx Context) {
	om.each("OnTransition", func(o Observer) { o.OnTransition(direction, from, to, event, ctx) })
}

// NotifyStateEnter notifies all observers of a color entry
func (om *ObserverManager) NotifyStateEnter(direction Direction, state LightState, ctx Context) {
	om.each("OnStateEnter", func(o Observer) { o.OnStateEnter(direction, state, ctx) })
}

// NotifyStateExit notifies all observers of a color exit
func (om *ObserverManager) NotifyStateExit(direction Direction, state LightState, ctx Context) {
	om.eachExtended("OnStateExit", func(o ExtendedObserver) { o.OnStateExit(direction, state, ctx) })
}

// NotifyGuardEvaluation notifies all observers of a guard evaluation
func (om *ObserverManager) NotifyGuardEvaluation(direction Direction, from, to LightState, event Event, result bool, ctx Context) {
	om.eachExtended("OnGuardEvaluation", func(o ExtendedObserver) {
		o.OnGuardEvaluation(direction, from, to, event, result, ctx)
	})
}

// NotifyEventRejected notifies all observers of an event with no transition
func (om *ObserverManager) NotifyEventRejected(direction Direction, event Event, reason string, ctx Context) {
	om.eachExtended("OnEventRejected", func(o ExtendedObserver) { o.OnEventRejected(direction, event, reason, ctx) })
}

// NotifyError notifies all observers of an error
func (om *ObserverManager) NotifyError(err error, _ Context) {
	om.eachExtended("OnError", func(o ExtendedObserver) { o.OnError(err) })
}

// NotifyControlStep notifies all observers of a completed control tick
func (om *ObserverManager) NotifyControlStep(outcome StepOutcome) {
	om.eachExtended("OnControlStep", func(o ExtendedObserver) { o.OnControlStep(outcome) })
}

// NotifyEmergencyStart notifies all observers of an emergency activation
func (om *ObserverManager) NotifyEmergencyStart(status EmergencyStatus) {
	om.eachExtended("OnEmergencyStart", func(o ExtendedObserver) { o.OnEmergencyStart(status) })
}

// NotifyEmergencyClear notifies all observers that an emergency ended
func (om *ObserverManager) NotifyEmergencyClear(direction Direction, cancelled bool) {
	om.eachExtended("OnEmergencyClear", func(o ExtendedObserver) { o.OnEmergencyClear(direction, cancelled) })
}

// NotifyVehicleSpawned notifies all observers of a new vehicle
func (om *ObserverManager) NotifyVehicleSpawned(v Vehicle) {
	om.eachExtended("OnVehicleSpawned", func(o ExtendedObserver) { o.OnVehicleSpawned(v) })
}

// NotifyVehicleExited notifies all observers of a retired vehicle
func (om *ObserverManager) NotifyVehicleExited(v Vehicle) {
	om.eachExtended("OnVehicleExited", func(o ExtendedObserver) { o.OnVehicleExited(v) })
}

// NotifyEngineStarted notifies all observers that the tick loop started
func (om *ObserverManager) NotifyEngineStarted() {
	om.eachExtended("OnEngineStarted", func(o ExtendedObserver) { o.OnEngineStarted() })
}

// NotifyEngineStopped notifies all observers that the tick loop stopped
func (om *ObserverManager) NotifyEngineStopped() {
	om.eachExtended("OnEngineStopped", func(o ExtendedObserver) { o.OnEngineStopped() })
}
