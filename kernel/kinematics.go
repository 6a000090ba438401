package kernel

import "math"

// Outcome classifies the result of a reaction-time computation (spec §4.6).
type Outcome int

const (
	// NoEvent means no future reaction is implied by the current kinematics.
	NoEvent Outcome = iota
	// Scheduled means t is a valid, non-negative (or negligibly negative)
	// reaction time to schedule.
	Scheduled
	// Emergency means the reaction window has already passed; the caller
	// must fall back to an immediate EmergencyStop (spec §7).
	Emergency
)

// Tuning constants carried over from the original simulation (spec §4.5,
// §4.6; original_source/src/event_driven_sim.rs's THRESHOLD_* / MIN_DIST_TO_OBS
// constants).
const (
	thresholdReact      = -0.001
	thresholdAccelerate = 1.0
	minDistToObstacle   = 1.0
	thresholdRelSpeed   = -0.1
)

// reactionTime implements spec §4.6's closed-form reaction computation.
// vPos/vSpeed/vAccel describe the reacting vehicle in its own direction
// frame; obsPos/obsSpeed/obsAccel/obsLength describe the obstacle in that
// same frame. buffer is the vehicle's own buffer zone (obsLength is added
// to it here, matching spec §4.6's `b = vehicle.buffer + obstacle.length`).
// decel is the braking deceleration used for the stopping-point condition
// (always the vehicle's own max deceleration, as a negative number).
//
// vehAccelHypothetical asks "what if I switch to Accelerate now instead of
// reacting normally" (used to decide whether it's safe to start
// accelerating); obsDecelerating asks "assume the obstacle is, or
// immediately begins, braking at `decel`" (the worst-case leader
// assumption of spec §4.5).
func reactionTime(
	vPos, vSpeed, vAccel float64,
	obsPos, obsSpeed, obsAccel, obsLength float64,
	buffer, decel, maxAccel float64,
	vehAccelHypothetical, obsDecelerating bool,
) (float64, Outcome) {
	relAccel := vAccel - obsAccel
	relSpeed := vSpeed - obsSpeed
	relPosition := vPos - obsPos
	totalBuffer := buffer + obsLength

	if !vehAccelHypothetical && (vAccel == decel || (relSpeed <= 0 && relAccel <= 0)) {
		return 0, NoEvent
	}

	if obsAccel == decel || obsDecelerating {
		// Treat the obstacle as if it brakes to a stop now: its effective
		// future position is shifted forward by its stopping distance.
		relPosition += (obsSpeed * obsSpeed) / (2 * decel)
		relSpeed += obsSpeed
		relAccel = vAccel
	}

	if vehAccelHypothetical {
		relAccel = relAccel - vAccel + maxAccel
	}

	if relPosition > -1.1*totalBuffer && vehAccelHypothetical {
		return 0, Scheduled
	}

	gamma := 1 - relAccel/decel

	var tPrime float64
	if relAccel == 0 {
		if relSpeed <= 0 {
			return 0, NoEvent
		}
		tPrime = (1 / relSpeed) * (-totalBuffer + (relSpeed*relSpeed)/(2*decel) - relPosition)
	} else {
		inner := (relSpeed*gamma)*(relSpeed*gamma) - 2*relAccel*gamma*(relPosition-(relSpeed*relSpeed)/(2*decel)+totalBuffer)
		if inner < 0 {
			return 0, NoEvent
		}
		tPrime = (-relSpeed*gamma + math.Sqrt(inner)) / (relAccel * gamma)
	}

	if tPrime < thresholdReact {
		return tPrime, Emergency
	}
	return tPrime, Scheduled
}

// timeToRelSpeedAim solves for the instant the relative speed between a
// decelerating vehicle and a non-decelerating obstacle ahead crosses
// relSpeedAim (spec §4.5's StaticSpeedReached hysteresis).
func timeToRelSpeedAim(vSpeed, vAccel, obsSpeed, obsAccel, relSpeedAim float64) float64 {
	relSpeed := vSpeed - obsSpeed
	relAccel := vAccel - obsAccel
	return (relSpeedAim - relSpeed) / relAccel
}

// exitTime implements spec §4.7: the earliest positive root of the
// displacement equation x(t) = x + v*t + 1/2*a*t^2 reaching `remaining`
// (the distance still left to the road's end), or false if the vehicle
// never reaches it (decelerating to a stop short of the end).
func exitTime(remaining, speed, accel float64) (float64, bool) {
	if speed == 0 && accel == 0 {
		return 0, false
	}
	if accel == 0 {
		if speed <= 0 {
			return 0, false
		}
		return remaining / speed, true
	}

	discriminant := speed*speed + 2*accel*remaining
	if discriminant < 0 {
		return 0, false
	}
	sq := math.Sqrt(discriminant)
	t1 := (-speed + sq) / accel
	t2 := (-speed - sq) / accel

	best, ok := 0.0, false
	for _, t := range []float64{t1, t2} {
		if t < 0 {
			continue
		}
		if !ok || t < best {
			best, ok = t, true
		}
	}
	return best, ok
}
