// Package worldstate holds the mutable container of all live entities plus
// the current simulation timestamp (spec §3, "World state"). It owns its
// vehicles and pedestrians exclusively; crossings remain owned by the road
// and are only ever referenced.
package worldstate

import (
	"zebra/pedestrian"
	"zebra/timeq"
	"zebra/vehicle"
)

// State is the kernel's single mutable world. Vehicles and pedestrians are
// stored in FIFO arrival order: index 0 is the earliest arrival (front of
// the queue).
type State struct {
	Timestamp  timeq.Time
	Vehicles   []*vehicle.Vehicle
	Pedestrians []*pedestrian.Pedestrian

	nextVehicleID     int64
	nextPedestrianID  int64
}

// New constructs an empty world state starting at t=0.
func New() *State {
	return &State{Timestamp: 0}
}

// NextVehicleID returns the next free vehicle ID without consuming it;
// AddVehicle consumes it when the caller passes the vehicle it constructed
// with that ID.
func (s *State) NextVehicleID() int64 { return s.nextVehicleID }

// NextPedestrianID returns the next free pedestrian ID without consuming it.
func (s *State) NextPedestrianID() int64 { return s.nextPedestrianID }

// AddVehicle appends a newly arrived vehicle to the fleet and advances the
// vehicle ID counter (spec §3 "Lifecycle").
func (s *State) AddVehicle(v *vehicle.Vehicle) {
	s.Vehicles = append(s.Vehicles, v)
	if v.ID >= s.nextVehicleID {
		s.nextVehicleID = v.ID + 1
	}
}

// AddPedestrian appends a newly arrived pedestrian and advances the
// pedestrian ID counter.
func (s *State) AddPedestrian(p *pedestrian.Pedestrian) {
	s.Pedestrians = append(s.Pedestrians, p)
	if p.ID >= s.nextPedestrianID {
		s.nextPedestrianID = p.ID + 1
	}
}

// RemoveVehicleAt removes the vehicle at slot idx (spec §3 "Lifecycle",
// VehicleExit), preserving the relative FIFO order of the rest.
func (s *State) RemoveVehicleAt(idx int) {
	s.Vehicles = append(s.Vehicles[:idx], s.Vehicles[idx+1:]...)
}

// RemovePedestrianAt removes the pedestrian at slot idx (PedestrianExit).
func (s *State) RemovePedestrianAt(idx int) {
	s.Pedestrians = append(s.Pedestrians[:idx], s.Pedestrians[idx+1:]...)
}

// AdvanceBy rolls every vehicle's continuous state forward by dt and
// advances the world timestamp. Crossings and pedestrians have no
// continuous state (spec §4.5 step 3): only their activity windows matter,
// and those are pure functions of absolute time.
func (s *State) AdvanceBy(dt timeq.Delta) {
	for _, v := range s.Vehicles {
		v.RollForwardBy(dt)
	}
	s.Timestamp = s.Timestamp.Add(dt)
}

// ActivePedestrians returns the pedestrians currently occupying a crossing
// at the world's current timestamp.
func (s *State) ActivePedestrians() []*pedestrian.Pedestrian {
	out := make([]*pedestrian.Pedestrian, 0, len(s.Pedestrians))
	for _, p := range s.Pedestrians {
		if p.IsActive(s.Timestamp) {
			out = append(out, p)
		}
	}
	return out
}
