package crossing

import (
	"context"
	"sync"
	"testing"
)

type panickingObserver struct {
	BaseObserver
	errors []error
}

func (o *panickingObserver) OnTransition(Direction, LightState, LightState, Event, Context) {
	panic("observer exploded")
}

func (o *panickingObserver) OnError(err error) {
	o.errors = append(o.errors, err)
}

type minimalObserver struct {
	transitions int
}

func (o *minimalObserver) OnTransition(Direction, LightState, LightState, Event, Context) {
	o.transitions++
}

func (o *minimalObserver) OnStateEnter(Direction, LightState, Context) {}

func TestObserver_BasicInterface(t *testing.T) {
	observer := NewTestObserver()

	var _ Observer = observer
	var _ ExtendedObserver = observer
	var _ ExtendedObserver = &BaseObserver{}
}

func TestObserver_SignalTransition(t *testing.T) {
	observer := NewTestObserver()
	manager := NewObserverManager()
	manager.AddObserver(observer)

	signal := NewSignal(North, nil, Red, 0, manager)
	result := signal.Fire(context.Background(), NewEvent(EventGo, 0).WithMode(ModeAdaptive, 7))
	if !result.Success() {
		t.Fatalf("Expected go to succeed: %v", result.Error)
	}

	last := observer.LastTransition()
	if last == nil {
		t.Fatal("Expected transition to be recorded")
	}
	if last.Direction != North || last.From != Red || last.To != Green {
		t.Errorf("Unexpected transition %+v", last)
	}
	if last.Event.GetMode() != ModeAdaptive || last.Event.GetTick() != 7 {
		t.Errorf("Expected event tagged adaptive/7, got %s/%d", last.Event.GetMode(), last.Event.GetTick())
	}
	if len(observer.StateExits) != 1 || observer.StateExits[0].State != Red {
		t.Errorf("Expected exit from red, got %+v", observer.StateExits)
	}
	if len(observer.StateEnters) != 1 || observer.StateEnters[0].State != Green {
		t.Errorf("Expected enter into green, got %+v", observer.StateEnters)
	}
}

func TestObserver_EventRejected(t *testing.T) {
	observer := NewTestObserver()
	manager := NewObserverManager()
	manager.AddObserver(observer)

	signal := NewSignal(South, nil, Red, 0, manager)
	result := signal.Fire(context.Background(), NewEvent(EventCaution, 0))

	if result.Processed {
		t.Error("Expected red to reject caution")
	}
	if !IsTransitionError(result.Error) {
		t.Errorf("Expected transition error, got %T", result.Error)
	}
	if len(observer.EventRejects) != 1 || observer.EventRejects[0].Direction != South {
		t.Errorf("Expected one rejection for south, got %+v", observer.EventRejects)
	}

	empty := signal.Fire(context.Background(), NewEvent("  ", 0))
	if empty.Processed {
		t.Error("Expected empty event name to be rejected")
	}
}

func TestObserver_PanicRecovery(t *testing.T) {
	bad := &panickingObserver{}
	good := NewTestObserver()
	manager := NewObserverManager()
	manager.AddObserver(bad)
	manager.AddObserver(good)

	signal := NewSignal(East, nil, Green, 0, manager)
	signal.Fire(context.Background(), NewEvent(EventStop, 0))

	if signal.State() != Red {
		t.Errorf("Expected transition to complete despite panic, got %s", signal.State())
	}
	if len(bad.errors) != 1 {
		t.Errorf("Expected panic to be reported once, got %d", len(bad.errors))
	}
	if good.TransitionCount() != 1 {
		t.Errorf("Expected healthy observer to be notified, got %d", good.TransitionCount())
	}
}

func TestObserver_MinimalObserverSkipsExtended(t *testing.T) {
	minimal := &minimalObserver{}
	manager := NewObserverManager()
	manager.AddObserver(minimal)

	manager.NotifyControlStep(StepOutcome{Mode: ModeAdaptive})
	manager.NotifyTransition(North, Red, Green, NewEvent(EventGo, 0), nil)

	if minimal.transitions != 1 {
		t.Errorf("Expected 1 transition, got %d", minimal.transitions)
	}
}

func TestObserverManager_AddRemove(t *testing.T) {
	manager := NewObserverManager()
	first := NewTestObserver()
	second := NewTestObserver()

	manager.AddObserver(first)
	manager.AddObserver(second)
	if manager.Len() != 2 {
		t.Fatalf("Expected 2 observers, got %d", manager.Len())
	}

	manager.RemoveObserver(first)
	if manager.Len() != 1 {
		t.Fatalf("Expected 1 observer, got %d", manager.Len())
	}

	manager.NotifyVehicleSpawned(Vehicle{ID: "v1"})
	if len(first.Spawned) != 0 || len(second.Spawned) != 1 {
		t.Error("Expected only the remaining observer to be notified")
	}
}

func TestObserverManager_ConcurrentNotify(t *testing.T) {
	manager := NewObserverManager()
	observer := NewTestObserver()
	manager.AddObserver(observer)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				manager.NotifyControlStep(StepOutcome{Tick: j})
			}
		}()
	}
	wg.Wait()

	if len(observer.Steps) != 400 {
		t.Errorf("Expected 400 control steps, got %d", len(observer.Steps))
	}
}
