package crossing

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"
)

type testContextKey string

func TestContext_Creation(t *testing.T) {
	ctx := NewContext(context.Background(), West)

	if ctx.GetDirection() != West {
		t.Errorf("Expected direction west, got %s", ctx.GetDirection())
	}
	if ctx.GetCurrentState() != "" {
		t.Error("Expected empty current state initially")
	}
	if ctx.GetSourceState() != "" || ctx.GetTargetState() != "" {
		t.Error("Expected empty transition info initially")
	}
	if ctx.GetCurrentEvent() != nil {
		t.Error("Expected nil current event initially")
	}
	if ctx.GetEventName() != "" {
		t.Error("Expected empty event name initially")
	}
}

func TestContext_NilParent(t *testing.T) {
	//nolint:staticcheck
	ctx := NewContext(nil, North)
	if ctx.Done() != nil {
		t.Error("Expected background parent for nil context")
	}
}

func TestContext_DataOperations(t *testing.T) {
	ctx := NewContext(context.Background(), North)

	ctx.Set("queue", 7)
	value, ok := ctx.Get("queue")
	if !ok || value != 7 {
		t.Errorf("Expected queue=7, got %v (%v)", value, ok)
	}

	if _, ok := ctx.Get("missing"); ok {
		t.Error("Expected missing key to be absent")
	}

	all := ctx.GetAll()
	all["queue"] = 0
	if value, _ := ctx.Get("queue"); value != 7 {
		t.Error("Expected GetAll to return a copy")
	}
}

func TestContext_ParentValues(t *testing.T) {
	parent := context.WithValue(context.Background(), testContextKey("request"), "abc")
	signal := NewSignal(South, nil, Red, 0, nil)

	signal.Fire(parent, NewEvent(EventGo, 0))

	if signal.Context().Value(testContextKey("request")) != "abc" {
		t.Error("Expected signal context to expose parent values during a transition")
	}
}

func TestContext_TransitionInfo(t *testing.T) {
	signal := NewSignal(East, nil, Green, 30, nil)
	event := NewEvent(EventCaution, 30)

	signal.Fire(context.Background(), event)
	ctx := signal.Context()

	if ctx.GetSourceState() != Green {
		t.Errorf("Expected source green, got %s", ctx.GetSourceState())
	}
	if ctx.GetTargetState() != Yellow {
		t.Errorf("Expected target yellow, got %s", ctx.GetTargetState())
	}
	if ctx.GetCurrentState() != Yellow {
		t.Errorf("Expected current yellow, got %s", ctx.GetCurrentState())
	}
	if ctx.GetEventName() != EventCaution {
		t.Errorf("Expected event name caution, got %s", ctx.GetEventName())
	}
}

func TestContext_Cancellation(t *testing.T) {
	parent, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	ctx := NewContext(parent, North)
	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("Expected context to be cancelled with its parent")
	}
}

func TestContext_ConcurrentAccess(t *testing.T) {
	ctx := NewContext(context.Background(), North)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				key := fmt.Sprintf("key_%d_%d", id, j)
				ctx.Set(key, j)
				ctx.Get(key)
				_ = ctx.GetCurrentState()
			}
		}(i)
	}
	wg.Wait()

	if len(ctx.GetAll()) != 1000 {
		t.Errorf("Expected 1000 keys, got %d", len(ctx.GetAll()))
	}
}
