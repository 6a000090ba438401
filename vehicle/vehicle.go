// Package vehicle implements the stateful mobile entity of spec §3/§4.3: a
// vehicle travelling in one direction along a road, whose continuous
// kinematics are advanced in closed-form steps by the kernel and whose
// discrete mode (Accelerate/Decelerate/StaticSpeed) is set entirely by
// scheduled events.
package vehicle

import (
	"zebra/obstacle"
	"zebra/pedestrian"
	"zebra/road"
	"zebra/timeq"
)

// Mode is the vehicle's control-policy state (spec §4.8).
type Mode int

const (
	StaticSpeed Mode = iota
	Accelerate
	Decelerate
)

func (m Mode) String() string {
	switch m {
	case Accelerate:
		return "Accelerate"
	case Decelerate:
		return "Decelerate"
	default:
		return "StaticSpeed"
	}
}

// Vehicle is a single vehicle travelling the road in one direction. Position
// and speed are stored in the vehicle's own direction frame: for a Down
// vehicle, increasing Position means further along the Down direction, i.e.
// closer to the Up origin.
type Vehicle struct {
	ID        int64
	Direction road.Direction
	Position  float64
	Speed     float64
	Acceleration float64
	Mode      Mode

	length float64
	buffer float64

	maxSpeed float64
	maxAccel float64
	maxDecel float64
}

// Default physical dimensions (spec §3).
const (
	DefaultLength = 4.0
	DefaultBuffer = 1.0
)

// New constructs a vehicle at position 0 with the spec's lifecycle initial
// state: speed = maxSpeed, mode StaticSpeed, acceleration 0 (spec §3, §4.8).
func New(id int64, dir road.Direction, maxSpeed, maxAccel, maxDecel float64) *Vehicle {
	return &Vehicle{
		ID:        id,
		Direction: dir,
		Position:  0,
		Speed:     maxSpeed,
		Acceleration: 0,
		Mode:      StaticSpeed,
		length:    DefaultLength,
		buffer:    DefaultBuffer,
		maxSpeed:  maxSpeed,
		maxAccel:  maxAccel,
		maxDecel:  maxDecel,
	}
}

// Length returns the vehicle's physical length (spec §3, default 4m).
func (v *Vehicle) Length() float64 { return v.length }

// Buffer returns the vehicle's minimum following distance (spec §3, default 1m).
func (v *Vehicle) Buffer() float64 { return v.buffer }

// MaxSpeed returns the configured speed cap this vehicle was built with.
func (v *Vehicle) MaxSpeed() float64 { return v.maxSpeed }

// MaxAcceleration returns the configured acceleration magnitude.
func (v *Vehicle) MaxAcceleration() float64 { return v.maxAccel }

// MaxDeceleration returns the configured deceleration magnitude.
func (v *Vehicle) MaxDeceleration() float64 { return v.maxDecel }

// position translates this vehicle's position into the requested
// direction's frame, for use by obstacleView's Position method.
func (v *Vehicle) position(r *road.Road, dir road.Direction) float64 {
	if dir == v.Direction {
		return v.Position
	}
	return r.Length() - v.Position
}

// IsActive reports that a vehicle is always an active obstacle once it
// exists in the world state.
func (v *Vehicle) IsActive(_ timeq.Time) bool { return true }

// obstacleView adapts *Vehicle to obstacle.Obstacle's exact method names
// (Position/Speed/Acceleration/Length/IsActive) without renaming this
// package's own public fields/accessors, which read more naturally at
// vehicle call sites (v.Speed, v.Acceleration as plain fields).
type obstacleView struct{ v *Vehicle }

func (o obstacleView) Position(r *road.Road, dir road.Direction) float64 { return o.v.position(r, dir) }
func (o obstacleView) Speed() float64                                    { return o.v.Speed }
func (o obstacleView) Acceleration() float64                             { return o.v.Acceleration }
func (o obstacleView) Length() float64                                   { return o.v.length }
func (o obstacleView) IsActive(t timeq.Time) bool                        { return o.v.IsActive(t) }

// AsObstacle returns the obstacle.Obstacle view of this vehicle.
func (v *Vehicle) AsObstacle() obstacle.Obstacle { return obstacleView{v} }

// Action sets the vehicle's control mode and derives its acceleration from
// it (spec §4.3, §4.8): Accelerate -> +maxAccel, Decelerate -> -maxDecel,
// StaticSpeed -> 0.
func (v *Vehicle) Action(mode Mode) {
	v.Mode = mode
	switch mode {
	case Accelerate:
		v.Acceleration = v.maxAccel
	case Decelerate:
		v.Acceleration = -v.maxDecel
	default:
		v.Acceleration = 0
	}
}

// RollForwardBy advances position and speed by dt using constant
// acceleration kinematics. If decelerating and speed would go negative
// within dt, dt is clamped to the zero-speed instant so speed never goes
// negative (spec §4.3); the kernel is responsible for scheduling a
// ZeroSpeedReached event at exactly that instant so no time is lost.
func (v *Vehicle) RollForwardBy(dt timeq.Delta) {
	secs := dt.Seconds()
	if secs <= 0 {
		return
	}

	if v.Acceleration < 0 {
		if zeroAt := -v.Speed / v.Acceleration; zeroAt < secs {
			secs = zeroAt
		}
	}

	v.Position += v.Speed*secs + 0.5*v.Acceleration*secs*secs
	v.Speed += v.Acceleration * secs
	if v.Speed < 0 {
		v.Speed = 0
	}
	if v.Speed > v.maxSpeed {
		v.Speed = v.maxSpeed
	}
}

// NextVehicle returns the nearest vehicle ahead of v in the same direction,
// scanning fleet (in FIFO arrival order, front = furthest along) from v's
// own index back toward the front. The no-overtaking invariant guarantees
// the nearest same-direction predecessor in the list is also the nearest
// one spatially.
func (v *Vehicle) NextVehicle(fleet []*Vehicle) (*Vehicle, bool) {
	selfIdx := -1
	for i, other := range fleet {
		if other == v {
			selfIdx = i
			break
		}
	}
	if selfIdx <= 0 {
		return nil, false
	}
	for i := selfIdx - 1; i >= 0; i-- {
		if fleet[i].Direction == v.Direction {
			return fleet[i], true
		}
	}
	return nil, false
}

// NextCrossing returns the nearest crossing strictly ahead of v on r, in
// v's own direction, or false if none remain.
func (v *Vehicle) NextCrossing(r *road.Road) (road.CrossingAt, bool) {
	for _, ca := range r.Crossings(v.Direction) {
		if ca.Position > v.Position {
			return ca, true
		}
	}
	return road.CrossingAt{}, false
}

// NextPedestrian returns the nearest active pedestrian ahead of v in v's
// direction, or false if none.
func (v *Vehicle) NextPedestrian(r *road.Road, peds []*pedestrian.Pedestrian, now timeq.Time) (*pedestrian.Pedestrian, bool) {
	var best *pedestrian.Pedestrian
	bestPos := 0.0
	for _, p := range peds {
		if !p.IsActive(now) {
			continue
		}
		pos, err := r.PositionOf(p.CrossingID, v.Direction)
		if err != nil {
			continue
		}
		if pos <= v.Position {
			continue
		}
		if best == nil || pos < bestPos {
			best = p
			bestPos = pos
		}
	}
	return best, best != nil
}

// RelativePosition returns self-position minus obstacle-position, both in
// v's own direction frame. Always <= 0 when the obstacle is ahead or
// co-located (spec §4.3).
func (v *Vehicle) RelativePosition(r *road.Road, obs obstacle.Obstacle) float64 {
	return v.Position - obs.Position(r, v.Direction)
}

// RelativeSpeed returns self-speed minus obstacle-speed.
func (v *Vehicle) RelativeSpeed(obs obstacle.Obstacle) float64 {
	return v.Speed - obs.Speed()
}

// RelativeAcceleration returns self-acceleration minus obstacle-acceleration.
func (v *Vehicle) RelativeAcceleration(obs obstacle.Obstacle) float64 {
	return v.Acceleration - obs.Acceleration()
}
