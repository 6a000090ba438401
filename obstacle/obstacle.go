// Package obstacle declares the capability every mobile or static thing on
// the road must implement so that a vehicle can reason about "the next
// thing ahead of me" uniformly, whether that thing is another vehicle, a
// pedestrian occupying a crossing, or the far end of the road itself
// (spec §4.2).
package obstacle

import (
	"zebra/road"
	"zebra/timeq"
)

// Obstacle is anything a vehicle's kinematics must react to. Pedestrian
// (while occupying a crossing) and road.Exit satisfy this interface
// structurally without importing this package, and road must not import
// it, since that would form a cycle back through road. Vehicle satisfies it
// through the view returned by its AsObstacle method.
type Obstacle interface {
	// Position returns the obstacle's position in the given direction's
	// coordinate frame on the given road.
	Position(r *road.Road, dir road.Direction) float64
	// Speed returns the obstacle's current speed in m/s. Zero for static
	// obstacles (pedestrians, the road exit).
	Speed() float64
	// Acceleration returns the obstacle's current acceleration in m/s^2.
	Acceleration() float64
	// Length returns the obstacle's physical length in metres, added to
	// the buffer distance a following vehicle must keep. Zero for
	// zero-length obstacles (pedestrians, the road exit).
	Length() float64
	// IsActive reports whether the obstacle actually blocks passage at the
	// given instant — e.g. a pedestrian only blocks while crossing, not
	// before arrival or after clearing.
	IsActive(t timeq.Time) bool
}

// MinBuffer is the minimum following distance (spec §3), measured from the
// rear of the obstacle ahead to the front of the following vehicle.
const MinBuffer = 1.0
