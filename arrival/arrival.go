// Package arrival generates Poisson arrival streams for spec §6: given a
// rate, a window, and an RNG, produce a sorted list of arrival instants
// whose inter-arrival gaps are exponentially distributed.
package arrival

import (
	"math"
	"math/rand"

	"zebra/timeq"
)

// MinVehicleSpacing is the minimum gap enforced between consecutive
// vehicle arrivals (spec §6): the brake-to-stop time from MAX_SPEED at
// max deceleration, so two vehicles can never arrive close enough to
// already violate the following-buffer invariant at creation time.
const MinVehicleSpacing = timeq.Delta(3400)

// Generate samples a Poisson arrival stream of the given rate (events per
// second) over [start, end), rounding each inter-arrival draw to the
// nearest millisecond. minSpacing is a floor applied to every gap: any
// sampled gap shorter than it is pushed out to exactly minSpacing
// (spec §6's 3400ms vehicle-arrival floor passes this in; pedestrian
// arrivals pass zero).
func Generate(rate float64, start, end timeq.Time, rng *rand.Rand, minSpacing timeq.Delta) []timeq.Time {
	if rate <= 0 {
		return nil
	}

	var out []timeq.Time
	t := start
	for {
		gap := sampleExp(rate, rng)
		delta := timeq.DeltaFromSeconds(gap)
		if delta < minSpacing {
			delta = minSpacing
		}
		t = t.Add(delta)
		if t.Sub(end) >= 0 {
			break
		}
		out = append(out, t)
	}
	return out
}

// sampleExp draws one inter-arrival gap, in seconds, from Exp(rate) via
// inverse-CDF sampling.
func sampleExp(rate float64, rng *rand.Rand) float64 {
	u := rng.Float64()
	for u <= 0 {
		u = rng.Float64()
	}
	return -math.Log(u) / rate
}
