package crossing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func queued(d Direction, n int, position float64) []Vehicle {
	vehicles := make([]Vehicle, 0, n)
	for i := 0; i < n; i++ {
		vehicles = append(vehicles, Vehicle{ID: string(d) + "-q", Direction: d, Position: position})
	}
	return vehicles
}

func stepN(c *Controller, n int, vehicles []Vehicle) StepOutcome {
	var outcome StepOutcome
	for i := 0; i < n; i++ {
		outcome = c.Step(context.Background(), vehicles, EmergencyStatus{})
	}
	return outcome
}

func TestController_InitialLights(t *testing.T) {
	c := NewController(DefaultConfig(), nil, nil)

	assert.Equal(t, NewIntersectionState().Lights, c.Lights())
	assert.Zero(t, c.Tick())
	assert.Nil(t, c.Signal(Direction("up")))
}

// Scenario A
func TestController_AdaptiveSwitch(t *testing.T) {
	observer := NewTestObserver()
	manager := NewObserverManager()
	manager.AddObserver(observer)
	c := NewController(DefaultConfig(), nil, manager)

	outcome := c.Step(context.Background(), queued(North, 5, 10), EmergencyStatus{})

	assert.Equal(t, ModeAdaptive, outcome.Mode)
	assert.Equal(t, North, outcome.Target)
	assert.False(t, outcome.Blocked)

	lights := c.Lights()
	AssertLight(t, lights, North, Green, 0)
	AssertLight(t, lights, South, Red, 0)
	AssertLight(t, lights, East, Red, 0)
	AssertLight(t, lights, West, Red, 0)
	AssertAtMostOneGreen(t, lights)
	assert.Equal(t, lights, outcome.Lights, "the outcome carries the lights after the tick")

	require.Equal(t, 2, observer.TransitionCount(), "only north and east change color")
	for _, tr := range observer.Transitions {
		assert.Equal(t, ModeAdaptive, tr.Event.GetMode())
	}
	assert.Equal(t, 1, c.Tick(), "the phase clock advances on an adaptive tick")
}

// Scenario B
func TestController_SurplusWithinThreshold(t *testing.T) {
	t.Run("queued vehicles on the green approach", func(t *testing.T) {
		c := NewController(DefaultConfig(), nil, nil)
		vehicles := append(queued(East, 2, 20), queued(North, 4, 20)...)

		outcome := c.Step(context.Background(), vehicles, EmergencyStatus{})

		assert.Equal(t, ModeFixedCycle, outcome.Mode)
		AssertLight(t, c.Lights(), East, Green, 0)
	})

	t.Run("cleared green approach", func(t *testing.T) {
		c := NewController(DefaultConfig(), nil, nil)

		outcome := c.Step(context.Background(), queued(North, 3, 20), EmergencyStatus{})

		assert.Equal(t, ModeFixedCycle, outcome.Mode, "3 does not exceed 0+3")
		AssertLight(t, c.Lights(), East, Green, 0)
		AssertLight(t, c.Lights(), North, Red, 0)
	})
}

// Scenario C
func TestController_ClearanceBlocksSwitch(t *testing.T) {
	c := NewController(DefaultConfig(), nil, nil)
	inJunction := Vehicle{ID: "e1", Direction: East, Position: 50}

	outcome := c.Step(context.Background(), append(queued(North, 10, 5), inJunction), EmergencyStatus{})
	assert.Equal(t, ModeFixedCycle, outcome.Mode)
	assert.True(t, outcome.Blocked)
	AssertLight(t, c.Lights(), East, Green, 0)

	inJunction.Position = 55
	outcome = c.Step(context.Background(), append(queued(North, 10, 5), inJunction), EmergencyStatus{})
	assert.True(t, outcome.Blocked, "a vehicle at the exit threshold still blocks")

	inJunction.Position = 56
	outcome = c.Step(context.Background(), append(queued(North, 10, 5), inJunction), EmergencyStatus{})
	assert.Equal(t, ModeAdaptive, outcome.Mode)
	assert.Equal(t, North, outcome.Target)
	AssertLight(t, c.Lights(), North, Green, 0)
}

func TestController_TieBreaking(t *testing.T) {
	t.Run("equal queues keep direction order", func(t *testing.T) {
		c := NewController(DefaultConfig(), nil, nil)
		vehicles := append(queued(South, 5, 1), queued(North, 5, 1)...)

		outcome := c.Step(context.Background(), vehicles, EmergencyStatus{})

		assert.Equal(t, North, outcome.Target)
	})

	t.Run("strictly longer queue wins", func(t *testing.T) {
		c := NewController(DefaultConfig(), nil, nil)
		vehicles := append(queued(North, 5, 1), queued(West, 6, 1)...)

		outcome := c.Step(context.Background(), vehicles, EmergencyStatus{})

		assert.Equal(t, West, outcome.Target)
	})

	t.Run("no switch without a green light", func(t *testing.T) {
		c := NewController(DefaultConfig(), nil, nil)
		c.grant(context.Background(), Direction(""), ModeEmergency, 0)

		target, blocked := c.adaptiveTarget(queued(North, 9, 1))

		assert.Equal(t, Direction(""), target)
		assert.False(t, blocked)
	})
}

// Scenario D
func TestController_FixedCycle(t *testing.T) {
	c := NewController(DefaultConfig(), nil, nil)

	for tick := 0; tick < 30; tick++ {
		outcome := c.Step(context.Background(), nil, EmergencyStatus{})
		assert.Equal(t, ModeFixedCycle, outcome.Mode)
		AssertAtMostOneGreen(t, c.Lights())
	}
	AssertLight(t, c.Lights(), East, Green, 29)
	AssertLight(t, c.Lights(), North, Red, 29)

	stepN(c, 1, nil) // tick 30
	AssertLight(t, c.Lights(), East, Yellow, 30)
	AssertLight(t, c.Lights(), North, Red, 30)

	stepN(c, 4, nil) // tick 34
	AssertLight(t, c.Lights(), East, Yellow, 34)

	stepN(c, 1, nil) // tick 35
	lights := c.Lights()
	AssertLight(t, lights, East, Red, 0)
	AssertLight(t, lights, North, Green, 0)
	AssertLight(t, lights, South, Green, 0)
	AssertLight(t, lights, West, Green, 0)

	stepN(c, 20, nil) // tick 55 starts the next cycle
	assert.Equal(t, 56, c.Tick())
	AssertLight(t, c.Lights(), East, Green, 0)
	AssertLight(t, c.Lights(), North, Red, 0)

	stepN(c, 30, nil) // tick 85
	AssertLight(t, c.Lights(), East, Yellow, 30)

	stepN(c, 5, nil) // tick 90
	lights = c.Lights()
	AssertLight(t, lights, East, Red, 0)
	AssertLight(t, lights, North, Green, 0)
	AssertLight(t, lights, South, Green, 0)
	AssertLight(t, lights, West, Green, 0)
}

func TestController_Emergency(t *testing.T) {
	c := NewController(DefaultConfig(), nil, nil)
	emergency := EmergencyStatus{Active: true, Direction: West, Remaining: 30}

	// A large north queue would otherwise win an adaptive switch.
	outcome := c.Step(context.Background(), queued(North, 10, 1), emergency)

	assert.Equal(t, ModeEmergency, outcome.Mode)
	assert.Equal(t, West, outcome.Target)
	lights := c.Lights()
	AssertLight(t, lights, West, Green, 0)
	AssertLight(t, lights, North, Red, 0)
	AssertLight(t, lights, East, Red, 0)
	AssertAtMostOneGreen(t, lights)
	assert.Equal(t, 1, c.Tick())

	outcome = c.Step(context.Background(), nil, emergency)
	assert.Equal(t, ModeEmergency, outcome.Mode)
	AssertLight(t, c.Lights(), West, Green, 0)
	assert.Equal(t, 2, c.Tick())
}

func TestController_SetQueueLengths(t *testing.T) {
	c := NewController(DefaultConfig(), nil, nil)

	c.SetQueueLengths(map[Direction]int{North: 4, West: 1})

	assert.Equal(t, 4, c.Signal(North).QueueLength())
	assert.Equal(t, 0, c.Signal(South).QueueLength())
	assert.Equal(t, 1, c.Lights()[3].QueueLength)
}

func TestController_PlanWithoutEdgeStillLands(t *testing.T) {
	plan, err := NewSignalPlan().
		State(Red).Initial().
		State(Green).To(Red).On(EventStop).
		State(Yellow).
		Build()
	require.NoError(t, err)

	observer := NewTestObserver()
	manager := NewObserverManager()
	manager.AddObserver(observer)
	c := NewController(DefaultConfig(), plan, manager)

	c.Step(context.Background(), queued(North, 5, 1), EmergencyStatus{})

	AssertLight(t, c.Lights(), North, Green, 0)
	assert.Equal(t, 1, observer.ErrorCount(), "red has no go edge in this plan")
}

func TestPhaseClock(t *testing.T) {
	var clock PhaseClock

	for i := 0; i < 57; i++ {
		clock.Advance()
	}
	assert.Equal(t, 57, clock.Tick())
	assert.Equal(t, 2, clock.Phase(55))
	assert.Zero(t, clock.Phase(0))

	clock.Reset()
	assert.Zero(t, clock.Tick())
}
