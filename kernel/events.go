package kernel

import "zebra/timeq"

// Kind is an event variant (spec §4.4).
type Kind int

const (
	SpeedLimitReached Kind = iota
	ZeroSpeedReached
	StaticSpeedReached
	ReactionToObstacle
	EmergencyStop
	VehicleAccelerate
	LightsToRed
	LightsToGreen
	PedestrianExit
	VehicleExit
	PedestrianArrival
	VehicleArrival
	StopSimulation
)

func (k Kind) String() string {
	switch k {
	case SpeedLimitReached:
		return "SpeedLimitReached"
	case ZeroSpeedReached:
		return "ZeroSpeedReached"
	case StaticSpeedReached:
		return "StaticSpeedReached"
	case ReactionToObstacle:
		return "ReactionToObstacle"
	case EmergencyStop:
		return "EmergencyStop"
	case VehicleAccelerate:
		return "VehicleAccelerate"
	case LightsToRed:
		return "LightsToRed"
	case LightsToGreen:
		return "LightsToGreen"
	case PedestrianExit:
		return "PedestrianExit"
	case VehicleExit:
		return "VehicleExit"
	case PedestrianArrival:
		return "PedestrianArrival"
	case VehicleArrival:
		return "VehicleArrival"
	default:
		return "StopSimulation"
	}
}

// priority implements the intra-tick ordering of spec §4.4: continuous
// transitions, then lights, then exits, then arrivals, then StopSimulation.
func (k Kind) priority() int {
	switch k {
	case SpeedLimitReached, ZeroSpeedReached, StaticSpeedReached, ReactionToObstacle, EmergencyStop, VehicleAccelerate:
		return 0
	case LightsToRed, LightsToGreen:
		return 1
	case PedestrianExit, VehicleExit:
		return 2
	case PedestrianArrival, VehicleArrival:
		return 3
	default: // StopSimulation
		return 4
	}
}

// Event is a single scheduled occurrence: an absolute time, a variant, and
// a slot whose meaning depends on the variant (vehicle index for vehicle
// events, pedestrian ID for pedestrian exits, crossing ID for light
// events, unused (-1) otherwise).
type Event struct {
	Time timeq.Time
	Kind Kind
	Slot int
}
