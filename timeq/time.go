// Package timeq is the integer-millisecond timeline shared by every other
// package in this module. A plain int64 is deliberately not used directly
// for timestamps outside this package, so that conversions to/from the
// floating-point seconds used in kinematics happen in one place.
package timeq

import "math"

// Resolution is the number of Time units (milliseconds) per second.
const Resolution int64 = 1000

// Time is an absolute simulation instant, in milliseconds since the
// simulation's start_time.
type Time int64

// Delta is a signed duration, in milliseconds. It is a distinct type from
// Time so that "instant + duration" and "instant - instant = duration"
// read unambiguously at call sites.
type Delta int64

// NewDelta constructs a Delta directly from a millisecond count.
func NewDelta(millis int64) Delta {
	return Delta(millis)
}

// DeltaFromSecs constructs a Delta from a whole number of seconds.
func DeltaFromSecs(secs int64) Delta {
	return Delta(secs * Resolution)
}

// DeltaFromSeconds rounds a floating-point second count to the nearest
// millisecond. This is the boundary at which every closed-form kinematic
// root computed in package kernel becomes a schedulable event time.
func DeltaFromSeconds(secs float64) Delta {
	return Delta(int64(math.Round(secs * float64(Resolution))))
}

// DeltaFloor rounds a floating point second count down to the millisecond
// below, matching the original source's `TimeDelta::floor` used for
// continuous-boundary events (speed-limit, zero-speed) where rounding up
// would schedule the event a moment after the kinematics already reached it.
func DeltaFloor(secs float64) Delta {
	return Delta(int64(math.Floor(secs * float64(Resolution))))
}

// Seconds converts a Delta to fractional seconds for use in kinematics.
func (d Delta) Seconds() float64 {
	return float64(d) / float64(Resolution)
}

// Millis returns the raw millisecond count.
func (d Delta) Millis() int64 {
	return int64(d)
}

// Add returns t shifted forward by d. d may be negative.
func (t Time) Add(d Delta) Time {
	return t + Time(d)
}

// Sub returns the Delta between two instants, t - other.
func (t Time) Sub(other Time) Delta {
	return Delta(t - other)
}

// Millis returns the raw millisecond count.
func (t Time) Millis() int64 {
	return int64(t)
}
