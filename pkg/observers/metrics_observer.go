package observers

import (
	"sync"

	"github.com/anggasct/crossing"
)

// Metrics is a point-in-time copy of the counters a MetricsObserver keeps
type Metrics struct {
	Transitions        map[crossing.Direction]int  `json:"transitions"`
	ColorVisits        map[crossing.LightState]int `json:"colorVisits"`
	ModeCounts         map[string]int              `json:"modeCounts"`
	BlockedSteps       int                         `json:"blockedSteps"`
	EmergenciesStarted int                         `json:"emergenciesStarted"`
	EmergenciesCleared int                         `json:"emergenciesCleared"`
	VehiclesSpawned    int                         `json:"vehiclesSpawned"`
	VehiclesExited     int                         `json:"vehiclesExited"`
	MaxWaitingTime     int                         `json:"maxWaitingTime"`
	Errors             int                         `json:"errors"`
}

// MetricsObserver collects counters about engine execution
type MetricsObserver struct {
	crossing.BaseObserver

	transitions        map[crossing.Direction]int
	colorVisits        map[crossing.LightState]int
	modeCounts         map[string]int
	blockedSteps       int
	emergenciesStarted int
	emergenciesCleared int
	vehiclesSpawned    int
	vehiclesExited     int
	maxWaitingTime     int
	errorCount         int
	mutex              sync.RWMutex
}

// NewMetricsObserver creates a new metrics observer
func NewMetricsObserver() *MetricsObserver {
	o := &MetricsObserver{}
	o.reset()
	return o
}

// OnTransition records color changes per direction
func (o *MetricsObserver) OnTransition(direction crossing.Direction, _, _ crossing.LightState, _ crossing.Event, _ crossing.Context) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.transitions[direction]++
}

// OnStateEnter records color visits
func (o *MetricsObserver) OnStateEnter(_ crossing.Direction, state crossing.LightState, _ crossing.Context) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.colorVisits[state]++
}

// OnControlStep records which controller branch ran
func (o *MetricsObserver) OnControlStep(outcome crossing.StepOutcome) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.modeCounts[outcome.Mode.String()]++
	if outcome.Blocked {
		o.blockedSteps++
	}
}

// OnEmergencyStart counts emergencies
func (o *MetricsObserver) OnEmergencyStart(crossing.EmergencyStatus) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.emergenciesStarted++
}

// OnEmergencyClear counts emergencies that ended
func (o *MetricsObserver) OnEmergencyClear(crossing.Direction, bool) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.emergenciesCleared++
}

// OnVehicleSpawned counts vehicles
func (o *MetricsObserver) OnVehicleSpawned(crossing.Vehicle) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.vehiclesSpawned++
}

// OnVehicleExited counts retired vehicles and tracks the longest wait seen
func (o *MetricsObserver) OnVehicleExited(v crossing.Vehicle) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.vehiclesExited++
	if v.WaitingTime > o.maxWaitingTime {
		o.maxWaitingTime = v.WaitingTime
	}
}

// ObserveWaiting folds the waiting times of vehicles still on the road
// into the maximum
func (o *MetricsObserver) ObserveWaiting(vehicles []crossing.Vehicle) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	for _, v := range vehicles {
		if v.WaitingTime > o.maxWaitingTime {
			o.maxWaitingTime = v.WaitingTime
		}
	}
}

// WithWaiting returns a copy of m with the waiting times of vehicles still
// on the road folded into the maximum
func (m Metrics) WithWaiting(vehicles []crossing.Vehicle) Metrics {
	for _, v := range vehicles {
		if v.WaitingTime > m.MaxWaitingTime {
			m.MaxWaitingTime = v.WaitingTime
		}
	}
	return m
}

// OnError counts errors
func (o *MetricsObserver) OnError(error) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.errorCount++
}

// Metrics returns a copy of every counter
func (o *MetricsObserver) Metrics() Metrics {
	o.mutex.RLock()
	defer o.mutex.RUnlock()

	m := Metrics{
		Transitions:        make(map[crossing.Direction]int, len(o.transitions)),
		ColorVisits:        make(map[crossing.LightState]int, len(o.colorVisits)),
		ModeCounts:         make(map[string]int, len(o.modeCounts)),
		BlockedSteps:       o.blockedSteps,
		EmergenciesStarted: o.emergenciesStarted,
		EmergenciesCleared: o.emergenciesCleared,
		VehiclesSpawned:    o.vehiclesSpawned,
		VehiclesExited:     o.vehiclesExited,
		MaxWaitingTime:     o.maxWaitingTime,
		Errors:             o.errorCount,
	}
	for k, v := range o.transitions {
		m.Transitions[k] = v
	}
	for k, v := range o.colorVisits {
		m.ColorVisits[k] = v
	}
	for k, v := range o.modeCounts {
		m.ModeCounts[k] = v
	}
	return m
}

// Reset resets all metrics
func (o *MetricsObserver) Reset() {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.reset()
}

func (o *MetricsObserver) reset() {
	o.transitions = make(map[crossing.Direction]int)
	o.colorVisits = make(map[crossing.LightState]int)
	o.modeCounts = make(map[string]int)
	o.blockedSteps = 0
	o.emergenciesStarted = 0
	o.emergenciesCleared = 0
	o.vehiclesSpawned = 0
	o.vehiclesExited = 0
	o.maxWaitingTime = 0
	o.errorCount = 0
}
