package crossing

import (
	"github.com/google/uuid"
	"github.com/samber/lo"
)

// IDFunc produces unique vehicle identifiers
type IDFunc func() string

// Kinematics moves vehicles along their lanes, halting them at red and
// yellow lights, and spawns and retires vehicles.
type Kinematics struct {
	cfg    Config
	rnd    RandomSource
	nextID IDFunc
}

// NewKinematics creates a vehicle mover. A nil id func uses random UUIDs.
func NewKinematics(cfg Config, rnd RandomSource, nextID IDFunc) *Kinematics {
	if nextID == nil {
		nextID = uuid.NewString
	}
	return &Kinematics{cfg: cfg, rnd: rnd, nextID: nextID}
}

// ShouldStop reports whether v must hold its position this motion tick.
// A vehicle whose direction has no light never stops.
func (k *Kinematics) ShouldStop(v Vehicle, lights []TrafficLight) bool {
	light, ok := findLight(lights, v.Direction)
	if !ok {
		return false
	}
	approaching := v.Position >= k.cfg.ApproachStart() && v.Position <= k.cfg.ExitThreshold
	return approaching && light.State.Halts()
}

// Advance applies one motion tick and returns the new vehicle set along with
// the vehicles that spawned and exited during the tick. The input is not modified.
func (k *Kinematics) Advance(vehicles []Vehicle, lights []TrafficLight) (next []Vehicle, spawned *Vehicle, exited []Vehicle) {
	moved := lo.Map(vehicles, func(v Vehicle, _ int) Vehicle {
		if k.ShouldStop(v, lights) {
			v.WaitingTime++
			return v
		}
		v.Position++
		v.WaitingTime = 0
		return v
	})

	next, exited = lo.FilterReject(moved, func(v Vehicle, _ int) bool {
		return v.Position <= 100
	})

	if k.rnd.Float64() < k.cfg.SpawnProbability {
		v := k.spawn()
		next = append(next, v)
		spawned = &v
	}
	return next, spawned, exited
}

func (k *Kinematics) spawn() Vehicle {
	return Vehicle{
		ID:        k.nextID(),
		Direction: Directions[k.rnd.Intn(len(Directions))],
		Kind:      VehicleKinds[k.rnd.Intn(len(VehicleKinds))],
		Lane:      k.rnd.Intn(2),
	}
}
