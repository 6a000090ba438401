// Package road models the fixed-length stretch of road and the pedestrian
// crossings placed along it. A Road exposes two directional views of the
// same crossings — Up (as configured) and Down (mirrored) — so that
// vehicles travelling in either direction can query positions in their own
// frame without the caller ever duplicating a Crossing.
package road

import (
	"errors"
	"fmt"
	"math"

	"zebra/timeq"
)

// Direction is the direction of travel along the road.
type Direction int

const (
	Up Direction = iota
	Down
)

func (d Direction) String() string {
	if d == Up {
		return "Up"
	}
	return "Down"
}

// CrossingKind distinguishes the two crossing variants of spec §3.
type CrossingKind int

const (
	Zebra CrossingKind = iota
	Pelican
)

// LightState is the pelican light's current phase. Zebra crossings have no
// light and are always implicitly "active on pedestrian presence" — Light
// is meaningless for them and left at its zero value.
type LightState int

const (
	Green LightState = iota
	Red
)

// Default crossing timings per spec §3.
const (
	DefaultCrossTime  = timeq.Delta(10000) // Zebra cross-time / Pelican stop-time.
	DefaultWaitTime   = timeq.Delta(5000)  // Pelican arrival -> red.
	DefaultGoTime     = timeq.Delta(5000)  // Pelican minimum spacing between successive reds.
)

// Crossing is a single logical crossing, shared by reference between the
// road's Up and Down views and referenced (not owned) by any Pedestrian
// standing on it.
type Crossing struct {
	ID   int
	Kind CrossingKind

	// StopTime is how long a pedestrian occupies the crossing once it goes
	// active: the Zebra cross-time, or the Pelican stop-time.
	StopTime timeq.Delta
	// WaitTime is the Pelican arrival-to-red delay. Zero for Zebra.
	WaitTime timeq.Delta
	// GoTime is the Pelican minimum spacing between successive red phases:
	// RequestStop never schedules a red earlier than GoTime after the
	// previous red began. How long the light has been green is not
	// tracked. Zero for Zebra.
	GoTime timeq.Delta

	// Light is the current pelican phase. Unused for Zebra crossings.
	Light LightState
	// lastRed is the last time this crossing's light turned red, used by
	// RequestStop to enforce GoTime between stops.
	lastRed timeq.Time
	// hasGoneRed records whether lastRed holds a meaningful value yet.
	hasGoneRed bool
}

// NewZebra constructs a Zebra crossing with the spec-default cross-time.
func NewZebra(id int) *Crossing {
	return &Crossing{ID: id, Kind: Zebra, StopTime: DefaultCrossTime}
}

// NewPelican constructs a Pelican crossing with spec-default timings.
func NewPelican(id int) *Crossing {
	return &Crossing{
		ID:       id,
		Kind:     Pelican,
		StopTime: DefaultCrossTime,
		WaitTime: DefaultWaitTime,
		GoTime:   DefaultGoTime,
	}
}

// RequestStop is called when a pedestrian presses a Pelican crossing's
// button at `now`. It returns the time the light turns red, respecting the
// minimum GoTime since the crossing last went red. Zebra crossings have no
// light protocol; calling this on one is a programmer error.
func (c *Crossing) RequestStop(now timeq.Time) timeq.Time {
	if c.Kind != Pelican {
		return now
	}
	earliest := now.Add(c.WaitTime)
	if c.hasGoneRed {
		minNext := c.lastRed.Add(c.GoTime)
		if minNext.Sub(earliest) > 0 {
			earliest = minNext
		}
	}
	return earliest
}

// GoRed transitions the crossing's light to Red at `at`, recording the time
// for the next RequestStop's GoTime floor.
func (c *Crossing) GoRed(at timeq.Time) {
	c.Light = Red
	c.lastRed = at
	c.hasGoneRed = true
}

// GoGreen transitions the crossing's light back to Green.
func (c *Crossing) GoGreen() {
	c.Light = Green
}

type crossingAt struct {
	crossing *Crossing
	position float64
}

// CrossingAt pairs a crossing with its position in some direction's frame.
type CrossingAt struct {
	Crossing *Crossing
	Position float64
}

// Road is the fixed-length segment with an ordered list of crossings.
type Road struct {
	length   float64
	crossUp  []crossingAt
}

var (
	// ErrUnknownCrossing is returned when a crossing ID has no position in
	// the requested road.
	ErrUnknownCrossing = errors.New("road: unknown crossing id")
	// ErrCrossingOutOfBounds is returned at construction when a crossing
	// position falls outside [0, length].
	ErrCrossingOutOfBounds = errors.New("road: crossing position outside road bounds")
	// ErrCrossingOrder is returned at construction when crossing positions
	// are not strictly increasing in the Up direction.
	ErrCrossingOrder = errors.New("road: crossing positions must be strictly increasing")
)

// CrossingSpec describes one crossing to place on a new Road, in Up-direction
// position order.
type CrossingSpec struct {
	Kind     CrossingKind
	Position float64
}

// New constructs a Road of the given length with crossings placed at the
// given Up-direction positions. Positions must be strictly increasing and
// fall within [0, length]; crossing IDs are assigned 0..N-1 by position
// order, per spec §3.
func New(length float64, specs []CrossingSpec) (*Road, error) {
	crossUp := make([]crossingAt, 0, len(specs))
	lastPos := math.Inf(-1)
	for i, spec := range specs {
		if spec.Position < 0 || spec.Position > length {
			return nil, fmt.Errorf("%w: position %.3f (road length %.3f)", ErrCrossingOutOfBounds, spec.Position, length)
		}
		if spec.Position <= lastPos {
			return nil, fmt.Errorf("%w: position %.3f does not exceed previous %.3f", ErrCrossingOrder, spec.Position, lastPos)
		}
		lastPos = spec.Position

		var c *Crossing
		switch spec.Kind {
		case Pelican:
			c = NewPelican(i)
		default:
			c = NewZebra(i)
		}
		crossUp = append(crossUp, crossingAt{crossing: c, position: spec.Position})
	}

	return &Road{length: length, crossUp: crossUp}, nil
}

// Length returns the road length in metres.
func (r *Road) Length() float64 {
	return r.length
}

// Crossings returns the ordered (Crossing, position) pairs in the given
// direction's coordinate frame. The Down view mirrors positions
// (length - p) and reverses order; the underlying Crossing objects are
// shared with the Up view, never copied.
func (r *Road) Crossings(dir Direction) []CrossingAt {
	out := make([]CrossingAt, len(r.crossUp))
	if dir == Up {
		for i, ca := range r.crossUp {
			out[i] = CrossingAt{Crossing: ca.crossing, Position: ca.position}
		}
		return out
	}

	n := len(r.crossUp)
	for i, ca := range r.crossUp {
		out[n-1-i] = CrossingAt{Crossing: ca.crossing, Position: r.length - ca.position}
	}
	return out
}

// PositionOf returns the position of the crossing with the given ID in the
// given direction's frame.
func (r *Road) PositionOf(id int, dir Direction) (float64, error) {
	for _, ca := range r.crossUp {
		if ca.crossing.ID == id {
			if dir == Up {
				return ca.position, nil
			}
			return r.length - ca.position, nil
		}
	}
	return 0, fmt.Errorf("%w: id %d", ErrUnknownCrossing, id)
}

// CrossingByID returns the crossing with the given ID, or false if no such
// crossing exists on this road.
func (r *Road) CrossingByID(id int) (*Crossing, bool) {
	for _, ca := range r.crossUp {
		if ca.crossing.ID == id {
			return ca.crossing, true
		}
	}
	return nil, false
}

// ExitObstacle returns the synthetic stationary obstacle at the far end of
// the road in the given direction, used uniformly by vehicles to detect
// reaching the road's end (spec §4.1, §4.7).
func (r *Road) ExitObstacle(dir Direction) *Exit {
	return &Exit{road: r, direction: dir}
}

// Exit is the synthetic end-of-road obstacle. It satisfies package
// obstacle's Obstacle interface structurally (Position/Speed/Acceleration/
// Length/IsActive) without road importing obstacle, avoiding a dependency
// cycle between the two components.
type Exit struct {
	road      *Road
	direction Direction
}

// Position returns the road's length: the far end, in the given direction's
// own frame, is always located at that direction's full length (Up's far
// end is at `length`; Down's far end — the Up origin — is also at `length`
// in Down's mirrored frame).
func (e *Exit) Position(_ *Road, _ Direction) float64 { return e.road.length }
func (e *Exit) Speed() float64                        { return 0 }
func (e *Exit) Acceleration() float64                 { return 0 }
func (e *Exit) Length() float64                        { return 0 }
func (e *Exit) IsActive(_ timeq.Time) bool             { return true }
