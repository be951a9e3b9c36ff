package observers

import (
	"fmt"
	"sync"

	"github.com/anggasct/crossing"
	"github.com/samber/lo"
)

// SafetyObserver checks a running engine against its signal plan and the
// single-green rule. Transitions outside the plan and more than one green
// after an adaptive or emergency tick are recorded as violations. Greens are
// counted from the lights each control tick reports, so resets and forced
// colors never leave it behind.
type SafetyObserver struct {
	crossing.BaseObserver

	allowed    map[crossing.LightState]map[crossing.LightState]bool
	violations []string
	mutex      sync.RWMutex
}

// NewSafetyObserver creates an observer that validates against plan
func NewSafetyObserver(plan *crossing.SignalPlan) *SafetyObserver {
	o := &SafetyObserver{
		allowed: make(map[crossing.LightState]map[crossing.LightState]bool),
	}
	for from, transitions := range plan.GetTransitions() {
		o.allowed[from] = make(map[crossing.LightState]bool)
		for _, t := range transitions {
			o.allowed[from][t.To] = true
		}
	}
	return o
}

// OnTransition validates transitions against the plan
func (o *SafetyObserver) OnTransition(direction crossing.Direction, from, to crossing.LightState, event crossing.Event, _ crossing.Context) {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	if !o.allowed[from][to] {
		name := ""
		if event != nil {
			name = event.GetName()
		}
		o.violations = append(o.violations, fmt.Sprintf(
			"invalid transition for %s from '%s' to '%s' on event '%s'", direction, from, to, name))
	}
}

// OnControlStep checks the single-green rule after preemptive ticks
func (o *SafetyObserver) OnControlStep(outcome crossing.StepOutcome) {
	if outcome.Mode == crossing.ModeFixedCycle {
		return
	}

	greens := lo.CountBy(outcome.Lights, func(l crossing.TrafficLight) bool {
		return l.State == crossing.Green
	})
	if greens <= 1 {
		return
	}

	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.violations = append(o.violations, fmt.Sprintf(
		"%d green lights after %s tick %d", greens, outcome.Mode, outcome.Tick))
}

// OnError records errors as violations
func (o *SafetyObserver) OnError(err error) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.violations = append(o.violations, fmt.Sprintf("error occurred: %v", err))
}

// GetViolations returns all recorded violations
func (o *SafetyObserver) GetViolations() []string {
	o.mutex.RLock()
	defer o.mutex.RUnlock()

	result := make([]string, len(o.violations))
	copy(result, o.violations)
	return result
}

// HasViolations returns whether any violations occurred
func (o *SafetyObserver) HasViolations() bool {
	o.mutex.RLock()
	defer o.mutex.RUnlock()
	return len(o.violations) > 0
}
