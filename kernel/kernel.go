// Package kernel implements the event-driven simulation loop of spec §4.5:
// gather candidate next-events from the current continuous dynamics,
// select the earliest (with a fixed intra-tick priority for ties), roll
// the world state forward to that instant, and apply the implied discrete
// mutation. It is the only package in this module permitted to mutate a
// worldstate.State once the simulation has started.
package kernel

import (
	"fmt"
	"math/rand"
	"os"
	"sort"

	"zebra/atomicfloat"
	"zebra/obstacle"
	"zebra/pedestrian"
	"zebra/road"
	"zebra/timeq"
	"zebra/vehicle"
	"zebra/worldstate"
)

// Kernel owns the world state, the road, the RNG, and the two arrival
// streams, and drives the main loop of spec §4.5. It is single-threaded
// and cooperative (spec §5): nothing outside Run/Step ever mutates State.
type Kernel struct {
	Road  *road.Road
	State *worldstate.State
	RNG   *rand.Rand

	EndTime timeq.Time

	PedestrianArrivals []timeq.Time
	VehicleArrivals    []timeq.Time
	pedIdx             int
	vehIdx             int

	MaxSpeed          float64
	MaxAcceleration   float64
	MaxDeceleration   float64
	DirectionWeightUp float64

	Verbose bool

	// clock publishes the current simulated time, in seconds, for readers
	// outside the single kernel goroutine (e.g. a CLI progress ticker) to
	// poll without racing State.Timestamp, which only Step ever touches.
	clock *atomicfloat.Float64

	pendingLights []Event
	stopRequested bool

	// breach latches the first runtime invariant violation noticed while
	// gathering this step's candidates (spec §7); Step checks and clears
	// it once per iteration.
	breach *InvariantError
}

// speedTolerance and positionTolerance absorb floating-point noise in the
// kinematics so a breach check never fires on an honest rounding error at
// the millisecond boundary rather than a real invariant violation.
const (
	speedTolerance    = 1e-6
	positionTolerance = 1e-6
)

// New constructs a kernel ready to run from t=0. pedArrivals and
// vehArrivals must be sorted ascending (spec §6's arrival stream
// contract); endTime must exceed 0 (spec §7's precondition check is the
// caller's, typically config validation, responsibility).
func New(r *road.Road, pedArrivals, vehArrivals []timeq.Time, endTime timeq.Time, seed int64, maxSpeed, maxAccel, maxDecel, directionWeightUp float64) *Kernel {
	return &Kernel{
		Road:               r,
		State:              worldstate.New(),
		RNG:                rand.New(rand.NewSource(seed)),
		EndTime:            endTime,
		PedestrianArrivals: pedArrivals,
		VehicleArrivals:    vehArrivals,
		MaxSpeed:           maxSpeed,
		MaxAcceleration:    maxAccel,
		MaxDeceleration:    maxDecel,
		DirectionWeightUp:  directionWeightUp,
		clock:              atomicfloat.New(0),
	}
}

// Elapsed returns the simulated time reached so far, in seconds. It is
// safe to call from any goroutine while Run/Step is driving the kernel
// from another.
func (k *Kernel) Elapsed() float64 {
	return k.clock.Load()
}

// RequestStop asks the kernel to terminate at the start of its next
// iteration, emitting a synthetic StopSimulation at the current time
// (spec §5's cooperative cancellation).
func (k *Kernel) RequestStop() { k.stopRequested = true }

// InvariantError reports a runtime invariant breach (spec §7): vehicle
// speed out of range, overtaking, a light event naming a crossing the
// road doesn't have, or an obstacle found behind the vehicle reacting to
// it. These are treated as fatal bugs, not degenerate input: the kernel
// reports the offending event and aborts without writing the half-step,
// since silently recovering would corrupt the trace.
type InvariantError struct {
	Event Event
	Msg   string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("kernel: invariant breach at t=%dms (%s slot=%d): %s",
		e.Event.Time.Millis(), e.Event.Kind, e.Event.Slot, e.Msg)
}

// Step runs one iteration of the main loop: gather, select, advance,
// apply. It returns the events applied at this step and whether the
// simulation has reached its end (t >= EndTime) or was cooperatively
// stopped. A non-nil error means an invariant breach was detected, either
// while gathering candidates (before anything is advanced or applied) or
// after applying this step's events; State must then not be emitted.
func (k *Kernel) Step() (applied []Event, done bool, err error) {
	if k.stopRequested {
		return []Event{{Time: k.State.Timestamp, Kind: StopSimulation, Slot: -1}}, true, nil
	}

	k.breach = nil
	candidates := k.gatherCandidates()
	if k.breach != nil {
		return nil, true, k.breach
	}
	selected := selectEarliest(candidates)

	tStar := selected[0].Time
	dt := tStar.Sub(k.State.Timestamp)
	k.State.AdvanceBy(dt)
	k.clock.Store(float64(k.State.Timestamp.Millis()) / float64(timeq.Resolution))

	sortByPriority(selected)
	if err := k.apply(selected); err != nil {
		return selected, true, err
	}

	if k.Verbose {
		for _, ev := range selected {
			fmt.Fprintf(os.Stderr, "zebra: t=%dms %s slot=%d\n", k.State.Timestamp.Millis(), ev.Kind, ev.Slot)
		}
	}

	if err := k.checkInvariants(selected); err != nil {
		return selected, true, err
	}

	done = k.State.Timestamp.Sub(k.EndTime) >= 0
	return selected, done, nil
}

// Run drives Step to completion, invoking emit after every iteration with
// the resulting world state. Emission errors and invariant breaches
// both abort the run (spec §5: "a slow consumer causes backpressure on
// the loop", and spec §7: an invariant breach is surfaced, never
// silently recovered).
func (k *Kernel) Run(emit func(*worldstate.State) error) error {
	for {
		_, done, err := k.Step()
		if err != nil {
			return err
		}
		if err := emit(k.State); err != nil {
			return fmt.Errorf("kernel: emit snapshot: %w", err)
		}
		if done {
			return nil
		}
	}
}

// checkInvariants implements spec §7's runtime invariant breach checks:
// speed bounds and no-overtaking within each direction. Crossing-ID and
// obstacle-position breaches are caught inline where they occur
// (applyLightEvent, timeToObstacleEvent) since those already hold the
// relevant context.
func (k *Kernel) checkInvariants(selected []Event) error {
	var lastUp, lastDown *vehicle.Vehicle
	for _, v := range k.State.Vehicles {
		if v.Speed < 0 || v.Speed > k.MaxSpeed+speedTolerance {
			return &InvariantError{Event: selected[0], Msg: fmt.Sprintf("vehicle %d speed %.4f outside [0, %.4f]", v.ID, v.Speed, k.MaxSpeed)}
		}

		var last **vehicle.Vehicle
		if v.Direction == road.Up {
			last = &lastUp
		} else {
			last = &lastDown
		}
		if *last != nil && v.Position > (*last).Position+positionTolerance {
			return &InvariantError{Event: selected[0], Msg: fmt.Sprintf("vehicle %d overtook vehicle %d", v.ID, (*last).ID)}
		}
		*last = v
	}
	return nil
}

func selectEarliest(candidates []Event) []Event {
	minTime := candidates[0].Time
	for _, e := range candidates[1:] {
		if e.Time.Sub(minTime) < 0 {
			minTime = e.Time
		}
	}
	out := make([]Event, 0, len(candidates))
	for _, e := range candidates {
		if e.Time == minTime {
			out = append(out, e)
		}
	}
	return out
}

func sortByPriority(events []Event) {
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].Kind.priority() != events[j].Kind.priority() {
			return events[i].Kind.priority() < events[j].Kind.priority()
		}
		// Within VehicleExit, remove from the end of the fleet first so
		// earlier slot indices in the same batch stay valid.
		if events[i].Kind == VehicleExit && events[j].Kind == VehicleExit {
			return events[i].Slot > events[j].Slot
		}
		return false
	})
}

// gatherCandidates implements spec §4.5 step 1.
func (k *Kernel) gatherCandidates() []Event {
	t := k.State.Timestamp
	candidates := []Event{{Time: k.EndTime, Kind: StopSimulation, Slot: -1}}

	if k.pedIdx < len(k.PedestrianArrivals) && k.PedestrianArrivals[k.pedIdx].Sub(t) >= 0 {
		candidates = append(candidates, Event{Time: k.PedestrianArrivals[k.pedIdx], Kind: PedestrianArrival, Slot: -1})
	}
	if k.vehIdx < len(k.VehicleArrivals) && k.VehicleArrivals[k.vehIdx].Sub(t) >= 0 {
		candidates = append(candidates, Event{Time: k.VehicleArrivals[k.vehIdx], Kind: VehicleArrival, Slot: -1})
	}

	for _, p := range k.State.Pedestrians {
		if p.IsActive(t) {
			candidates = append(candidates, Event{Time: p.ExitTime(), Kind: PedestrianExit, Slot: int(p.ID)})
		}
	}

	for _, ev := range k.pendingLights {
		if ev.Time.Sub(t) >= 0 {
			candidates = append(candidates, ev)
		}
	}

	fleet := k.State.Vehicles
	for i, v := range fleet {
		candidates = append(candidates, k.vehicleCandidates(i, v, fleet, t)...)
	}

	return candidates
}

func (k *Kernel) vehicleCandidates(i int, v *vehicle.Vehicle, fleet []*vehicle.Vehicle, t timeq.Time) []Event {
	var out []Event

	if v.Acceleration > 0 {
		dt := (k.MaxSpeed - v.Speed) / v.Acceleration
		out = append(out, Event{Time: t.Add(timeq.DeltaFloor(dt)), Kind: SpeedLimitReached, Slot: i})
	} else if v.Acceleration < 0 && v.Speed > 0 {
		dt := v.Speed / -v.Acceleration
		out = append(out, Event{Time: t.Add(timeq.DeltaFloor(dt)), Kind: ZeroSpeedReached, Slot: i})
	}

	remaining := k.Road.Length() - v.Position
	if dt, ok := exitTime(remaining, v.Speed, v.Acceleration); ok {
		out = append(out, Event{Time: t.Add(timeq.DeltaFloor(dt)), Kind: VehicleExit, Slot: i})
	}

	var minReactAfterSwitch *float64
	var minDistToObs *float64
	noAheadObs := true

	if ped, ok := v.NextPedestrian(k.Road, k.State.Pedestrians, t); ok {
		noAheadObs = false
		if dt, outcome := k.timeToObstacleEvent(v, ped, false, false); outcome != NoEvent {
			if outcome == Emergency {
				out = append(out, Event{Time: t, Kind: EmergencyStop, Slot: i})
			} else {
				out = append(out, Event{Time: t.Add(timeq.DeltaFromSeconds(dt)), Kind: ReactionToObstacle, Slot: i})
			}
		} else if dt2, outcome2 := k.timeToObstacleEvent(v, ped, true, false); outcome2 != NoEvent {
			if minReactAfterSwitch == nil {
				d := dt2
				minReactAfterSwitch = &d
				rel := -v.RelativePosition(k.Road, ped)
				minDistToObs = &rel
			}
		}
	}

	if leader, ok := v.NextVehicle(fleet); ok {
		noAheadObs = false
		obs := leader.AsObstacle()

		if dt, outcome := k.timeToObstacleEvent(v, obs, false, true); outcome != NoEvent {
			if outcome == Emergency {
				out = append(out, Event{Time: t, Kind: EmergencyStop, Slot: i})
			} else {
				out = append(out, Event{Time: t.Add(timeq.DeltaFromSeconds(dt)), Kind: ReactionToObstacle, Slot: i})
			}
		} else if dt2, outcome2 := k.timeToObstacleEvent(v, obs, true, true); outcome2 != NoEvent {
			if minReactAfterSwitch == nil {
				d := dt2
				minReactAfterSwitch = &d
			} else if dt2 < *minReactAfterSwitch {
				*minReactAfterSwitch = dt2
			}
		}

		if v.Acceleration < 0 && !(leader.Acceleration < 0) && minReactAfterSwitch == nil {
			relSpeedAim := thresholdRelSpeed
			if leader.Speed < -thresholdRelSpeed {
				relSpeedAim = 0
			}
			dt := timeToRelSpeedAim(v.Speed, v.Acceleration, leader.Speed, leader.Acceleration, relSpeedAim)
			out = append(out, Event{Time: t.Add(timeq.DeltaFloor(dt)), Kind: StaticSpeedReached, Slot: i})
		}
	}

	if v.Speed < k.MaxSpeed && v.Mode != vehicle.Accelerate {
		if minReactAfterSwitch == nil {
			if noAheadObs {
				out = append(out, Event{Time: t, Kind: VehicleAccelerate, Slot: i})
			}
		} else if minDistToObs == nil || *minDistToObs > minDistToObstacle {
			if *minReactAfterSwitch > thresholdAccelerate {
				out = append(out, Event{Time: t, Kind: VehicleAccelerate, Slot: i})
			}
		}
	}

	return out
}

func (k *Kernel) timeToObstacleEvent(v *vehicle.Vehicle, obs obstacle.Obstacle, vehAccelHypothetical, obsDecelerating bool) (float64, Outcome) {
	obsPos := obs.Position(k.Road, v.Direction)
	if obsPos < v.Position-positionTolerance && k.breach == nil {
		k.breach = &InvariantError{
			Event: Event{Time: k.State.Timestamp, Kind: ReactionToObstacle, Slot: -1},
			Msg:   fmt.Sprintf("vehicle %d: obstacle behind vehicle (obstacle at %.3f, vehicle at %.3f)", v.ID, obsPos, v.Position),
		}
	}
	obsSpeed := obs.Speed()
	obsAccel := obs.Acceleration()
	obsLength := obs.Length()
	return reactionTime(
		v.Position, v.Speed, v.Acceleration,
		obsPos, obsSpeed, obsAccel, obsLength,
		v.Buffer(), -v.MaxDeceleration(), v.MaxAcceleration(),
		vehAccelHypothetical, obsDecelerating,
	)
}

// apply implements spec §4.5 step 4. events must already be sorted by
// priority (sortByPriority). A non-nil error means a runtime invariant
// breach (spec §7) was detected partway through; the caller treats the
// whole step as fatal.
func (k *Kernel) apply(events []Event) error {
	for _, ev := range events {
		switch ev.Kind {
		case SpeedLimitReached:
			v := k.State.Vehicles[ev.Slot]
			v.Speed = k.MaxSpeed
			v.Action(vehicle.StaticSpeed)
		case ZeroSpeedReached:
			v := k.State.Vehicles[ev.Slot]
			v.Speed = 0
			v.Action(vehicle.StaticSpeed)
		case StaticSpeedReached:
			k.State.Vehicles[ev.Slot].Action(vehicle.StaticSpeed)
		case ReactionToObstacle:
			k.State.Vehicles[ev.Slot].Action(vehicle.Decelerate)
		case EmergencyStop:
			v := k.State.Vehicles[ev.Slot]
			v.Speed = 0
			v.Action(vehicle.StaticSpeed)
		case VehicleAccelerate:
			k.State.Vehicles[ev.Slot].Action(vehicle.Accelerate)
		case LightsToRed, LightsToGreen:
			if err := k.applyLightEvent(ev); err != nil {
				return err
			}
		case PedestrianExit:
			k.removePedestrianByID(int64(ev.Slot))
		case VehicleExit:
			k.State.RemoveVehicleAt(ev.Slot)
		case PedestrianArrival:
			k.newPedestrian(ev.Time)
			k.pedIdx++
		case VehicleArrival:
			k.newVehicle()
			k.vehIdx++
		case StopSimulation:
			// Nothing to mutate.
		}
	}
	return nil
}

func (k *Kernel) applyLightEvent(ev Event) error {
	crossing, ok := k.Road.CrossingByID(ev.Slot)
	if !ok {
		return &InvariantError{Event: ev, Msg: fmt.Sprintf("crossing %d not found", ev.Slot)}
	}
	if ev.Kind == LightsToRed {
		crossing.GoRed(ev.Time)
	} else {
		crossing.GoGreen()
	}
	remaining := k.pendingLights[:0]
	for _, pending := range k.pendingLights {
		if pending == ev {
			continue
		}
		remaining = append(remaining, pending)
	}
	k.pendingLights = remaining
	return nil
}

func (k *Kernel) removePedestrianByID(id int64) {
	for i, p := range k.State.Pedestrians {
		if p.ID == id {
			k.State.RemovePedestrianAt(i)
			return
		}
	}
}

func (k *Kernel) newVehicle() {
	dir := road.Up
	if k.RNG.Float64() >= k.DirectionWeightUp {
		dir = road.Down
	}
	v := vehicle.New(k.State.NextVehicleID(), dir, k.MaxSpeed, k.MaxAcceleration, k.MaxDeceleration)
	k.State.AddVehicle(v)
}

func (k *Kernel) newPedestrian(now timeq.Time) {
	crossings := k.Road.Crossings(road.Up)
	if len(crossings) == 0 {
		return
	}
	chosen := crossings[k.RNG.Intn(len(crossings))].Crossing

	p := pedestrian.New(k.State.NextPedestrianID(), chosen.ID, now, chosen.StopTime)
	k.State.AddPedestrian(p)

	if chosen.Kind == road.Pelican {
		redAt := chosen.RequestStop(now)
		k.pendingLights = append(k.pendingLights,
			Event{Time: redAt, Kind: LightsToRed, Slot: chosen.ID},
			Event{Time: p.ExitTime(), Kind: LightsToGreen, Slot: chosen.ID},
		)
	}
}
