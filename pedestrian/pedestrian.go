// Package pedestrian implements the other mobile entity of spec §3: a
// pedestrian that appears at a crossing and occupies it for a fixed
// window, during which it is an obstacle to vehicles travelling through
// that crossing in either direction.
package pedestrian

import (
	"zebra/road"
	"zebra/timeq"
)

// Pedestrian is identified by arrival order and references the crossing it
// occupies by ID; the crossing itself is owned by the road, not the
// pedestrian (spec §3).
type Pedestrian struct {
	ID         int64
	CrossingID int
	Arrival    timeq.Time
	stopTime   timeq.Delta
}

// New constructs a pedestrian that arrived at `at` and occupies the given
// crossing for stopTime (the crossing's cross-time or stop-time).
func New(id int64, crossingID int, at timeq.Time, stopTime timeq.Delta) *Pedestrian {
	return &Pedestrian{ID: id, CrossingID: crossingID, Arrival: at, stopTime: stopTime}
}

// ExitTime returns the instant this pedestrian's crossing window ends.
func (p *Pedestrian) ExitTime() timeq.Time {
	return p.Arrival.Add(p.stopTime)
}

// IsActive reports whether the pedestrian is currently occupying its
// crossing: active over [arrival, arrival+stop_time), per spec §3.
func (p *Pedestrian) IsActive(t timeq.Time) bool {
	return t.Sub(p.Arrival) >= 0 && t.Sub(p.ExitTime()) < 0
}

// Position satisfies obstacle.Obstacle: a pedestrian's position is its
// crossing's position in the requesting direction.
func (p *Pedestrian) Position(r *road.Road, dir road.Direction) float64 {
	pos, err := r.PositionOf(p.CrossingID, dir)
	if err != nil {
		// The kernel never constructs a pedestrian against a crossing id
		// the road doesn't have; reaching here is a fatal invariant
		// breach (spec §7), not a recoverable condition.
		panic(err)
	}
	return pos
}

// Speed is always 0 for a pedestrian (spec §4.2).
func (p *Pedestrian) Speed() float64 { return 0 }

// Acceleration is always 0 for a pedestrian (spec §4.2).
func (p *Pedestrian) Acceleration() float64 { return 0 }

// Length is always 0 for a pedestrian (spec §4.2).
func (p *Pedestrian) Length() float64 { return 0 }
