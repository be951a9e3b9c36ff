package crossing

import (
	"context"
	"errors"
	"testing"
)

func TestLightState_Halts(t *testing.T) {
	if !Red.Halts() || !Yellow.Halts() {
		t.Error("Expected red and yellow to halt traffic")
	}
	if Green.Halts() {
		t.Error("Expected green not to halt traffic")
	}
}

func TestDirection_Valid(t *testing.T) {
	for _, d := range Directions {
		if !d.Valid() {
			t.Errorf("Expected %s to be valid", d)
		}
	}
	if Direction("up").Valid() {
		t.Error("Expected unknown direction to be invalid")
	}
}

func TestLightStateNode_Actions(t *testing.T) {
	ctx := NewContext(context.Background(), North)

	node := NewLightState(Green)
	if node.ID() != Green {
		t.Errorf("Expected id green, got %s", node.ID())
	}
	if err := node.Enter(ctx); err != nil {
		t.Errorf("Expected nil entry without action, got %v", err)
	}

	entryErr := errors.New("lamp failure")
	node.WithEntryAction(func(Context) error { return entryErr })
	if err := node.Enter(ctx); !errors.Is(err, entryErr) {
		t.Errorf("Expected entry error, got %v", err)
	}

	node.WithExitAction(func(Context) error { panic("boom") })
	if err := node.Exit(ctx); err == nil {
		t.Error("Expected panic in exit action to become an error")
	}
}

func TestSafeEvaluateGuard_Panic(t *testing.T) {
	ctx := NewContext(context.Background(), North)

	result, err := safeEvaluateGuard(func(Context) bool { panic("bad guard") }, ctx)
	if result {
		t.Error("Expected panicking guard to reject")
	}
	if err == nil {
		t.Error("Expected panicking guard to report an error")
	}

	result, err = safeEvaluateGuard(func(Context) bool { return true }, ctx)
	if !result || err != nil {
		t.Errorf("Expected passing guard, got %v %v", result, err)
	}
}

func TestIntersectionState_Initial(t *testing.T) {
	state := NewIntersectionState()

	if len(state.Vehicles) != 0 {
		t.Errorf("Expected no vehicles, got %d", len(state.Vehicles))
	}
	AssertLight(t, state.Lights, North, Red, 0)
	AssertLight(t, state.Lights, South, Red, 0)
	AssertLight(t, state.Lights, East, Green, 30)
	AssertLight(t, state.Lights, West, Red, 0)

	for i, d := range Directions {
		if state.Lights[i].Direction != d {
			t.Errorf("Expected light %d to be %s, got %s", i, d, state.Lights[i].Direction)
		}
	}
}

func TestIntersectionState_Clone(t *testing.T) {
	state := NewIntersectionState()
	state.Vehicles = append(state.Vehicles, Vehicle{ID: "a", Direction: North, Position: 3})

	clone := state.Clone()
	clone.Vehicles[0].Position = 90
	clone.Lights[0].State = Green

	if state.Vehicles[0].Position != 3 {
		t.Error("Expected clone vehicles to be independent")
	}
	if light, _ := state.Light(North); light.State != Red {
		t.Error("Expected clone lights to be independent")
	}
	if _, ok := state.Light(Direction("up")); ok {
		t.Error("Expected no light for an unknown direction")
	}
}
