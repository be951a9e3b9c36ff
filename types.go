package crossing

// Direction identifies one approach of the intersection
type Direction string

const (
	North Direction = "north"
	South Direction = "south"
	East  Direction = "east"
	West  Direction = "west"
)

// Directions lists every approach in the order lights are stored and evaluated
var Directions = []Direction{North, South, East, West}

// Valid reports whether d is one of the four approaches
func (d Direction) Valid() bool {
	switch d {
	case North, South, East, West:
		return true
	}
	return false
}

// VehicleKind is the vehicle body type
type VehicleKind string

const (
	Car   VehicleKind = "car"
	Truck VehicleKind = "truck"
)

// VehicleKinds lists every kind a spawned vehicle may take
var VehicleKinds = []VehicleKind{Car, Truck}

// LightState is the color shown by a signal head
type LightState string

const (
	Red    LightState = "red"
	Yellow LightState = "yellow"
	Green  LightState = "green"
)

// Halts reports whether vehicles approaching a light in this state must stop
func (s LightState) Halts() bool {
	return s == Red || s == Yellow
}

// Vehicle is a single road user travelling along one approach lane
type Vehicle struct {
	ID          string      `json:"id"`
	Direction   Direction   `json:"direction"`
	Kind        VehicleKind `json:"type"`
	Lane        int         `json:"lane"`
	Position    float64     `json:"position"`
	WaitingTime int         `json:"waitingTime"`
}

// TrafficLight is the externally visible state of one signal head
type TrafficLight struct {
	Direction   Direction  `json:"direction"`
	State       LightState `json:"state"`
	Timer       int        `json:"timer"`
	QueueLength int        `json:"queueLength"`
}

// IntersectionState holds every vehicle and one light per direction
type IntersectionState struct {
	Vehicles []Vehicle      `json:"vehicles"`
	Lights   []TrafficLight `json:"lights"`
}

// Light returns the light for the given direction
func (s IntersectionState) Light(d Direction) (TrafficLight, bool) {
	return findLight(s.Lights, d)
}

// Clone returns a deep copy that shares no slices with s
func (s IntersectionState) Clone() IntersectionState {
	vehicles := make([]Vehicle, len(s.Vehicles))
	copy(vehicles, s.Vehicles)
	lights := make([]TrafficLight, len(s.Lights))
	copy(lights, s.Lights)
	return IntersectionState{Vehicles: vehicles, Lights: lights}
}

// NewIntersectionState returns the initial state: east green with timer 30,
// every other direction red, no vehicles
func NewIntersectionState() IntersectionState {
	return IntersectionState{
		Vehicles: []Vehicle{},
		Lights: []TrafficLight{
			{Direction: North, State: Red, Timer: 0},
			{Direction: South, State: Red, Timer: 0},
			{Direction: East, State: Green, Timer: 30},
			{Direction: West, State: Red, Timer: 0},
		},
	}
}

func findLight(lights []TrafficLight, d Direction) (TrafficLight, bool) {
	for _, l := range lights {
		if l.Direction == d {
			return l, true
		}
	}
	return TrafficLight{}, false
}
