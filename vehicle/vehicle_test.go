package vehicle_test

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"zebra/obstacle"
	"zebra/pedestrian"
	"zebra/road"
	"zebra/timeq"
	"zebra/vehicle"
)

var _ obstacle.Obstacle = vehicle.New(0, road.Up, 13.41, 3, 4).AsObstacle()

func TestVehicleLifecycleDefaults(t *testing.T) {
	Convey("Given a freshly arrived vehicle", t, func() {
		v := vehicle.New(1, road.Up, 13.41, 3, 4)

		Convey("It starts at position 0 with speed = max speed and mode StaticSpeed", func() {
			So(v.Position, ShouldEqual, 0)
			So(v.Speed, ShouldEqual, 13.41)
			So(v.Mode, ShouldEqual, vehicle.StaticSpeed)
			So(v.Acceleration, ShouldEqual, 0)
		})
	})
}

func TestVehicleAction(t *testing.T) {
	Convey("Given a vehicle built with max accel 3 and max decel 4", t, func() {
		v := vehicle.New(1, road.Up, 13.41, 3, 4)

		Convey("Action(Accelerate) sets acceleration to +maxAccel", func() {
			v.Action(vehicle.Accelerate)
			So(v.Acceleration, ShouldEqual, 3)
		})

		Convey("Action(Decelerate) sets acceleration to -maxDecel", func() {
			v.Action(vehicle.Decelerate)
			So(v.Acceleration, ShouldEqual, -4)
		})

		Convey("Action(StaticSpeed) zeroes acceleration", func() {
			v.Action(vehicle.Accelerate)
			v.Action(vehicle.StaticSpeed)
			So(v.Acceleration, ShouldEqual, 0)
		})
	})
}

func TestVehicleRollForwardBy(t *testing.T) {
	Convey("Given a vehicle at rest with zero acceleration", t, func() {
		v := vehicle.New(1, road.Up, 13.41, 3, 4)
		v.Speed = 0
		v.Action(vehicle.StaticSpeed)

		Convey("Rolling forward does not move it", func() {
			v.RollForwardBy(timeq.DeltaFromSecs(5))
			So(v.Position, ShouldEqual, 0)
			So(v.Speed, ShouldEqual, 0)
		})
	})

	Convey("Given a vehicle with a=0 and v=10", t, func() {
		v := vehicle.New(1, road.Up, 13.41, 3, 4)
		v.Speed = 10
		v.Action(vehicle.StaticSpeed)

		Convey("Position after dt equals x0 + v*dt exactly", func() {
			v.RollForwardBy(timeq.DeltaFromSecs(3))
			So(v.Position, ShouldEqual, 30.0)
			So(v.Speed, ShouldEqual, 10.0)
		})
	})

	Convey("Given a decelerating vehicle that would reach negative speed", t, func() {
		v := vehicle.New(1, road.Up, 13.41, 3, 4)
		v.Speed = 4
		v.Action(vehicle.Decelerate) // acceleration -4, zero speed at t=1s

		Convey("RollForwardBy clamps so speed never goes negative", func() {
			v.RollForwardBy(timeq.DeltaFromSecs(5))
			So(v.Speed, ShouldEqual, 0)
			// distance covered is exactly the distance to stop: v^2/(2*|a|) = 16/8 = 2
			So(v.Position, ShouldEqual, 2.0)
		})
	})
}

func TestVehicleNextVehicle(t *testing.T) {
	Convey("Given three vehicles, two Up and one Down, in arrival order", t, func() {
		front := vehicle.New(1, road.Up, 13.41, 3, 4)
		front.Position = 100
		back := vehicle.New(2, road.Up, 13.41, 3, 4)
		back.Position = 10
		opposite := vehicle.New(3, road.Down, 13.41, 3, 4)

		fleet := []*vehicle.Vehicle{front, opposite, back}

		Convey("The front-most vehicle has no vehicle ahead", func() {
			_, ok := front.NextVehicle(fleet)
			So(ok, ShouldBeFalse)
		})

		Convey("The back vehicle's next vehicle is the same-direction one ahead of it, skipping the opposite-direction one", func() {
			next, ok := back.NextVehicle(fleet)
			So(ok, ShouldBeTrue)
			So(next, ShouldEqual, front)
		})

		Convey("The opposite-direction vehicle has no same-direction vehicle ahead", func() {
			_, ok := opposite.NextVehicle(fleet)
			So(ok, ShouldBeFalse)
		})
	})
}

func TestVehicleNextCrossingAndPedestrian(t *testing.T) {
	Convey("Given a road with a crossing at 170 and a vehicle at 0", t, func() {
		r, err := road.New(300, []road.CrossingSpec{{Kind: road.Zebra, Position: 170}})
		So(err, ShouldBeNil)
		v := vehicle.New(1, road.Up, 13.41, 0, 0)

		Convey("NextCrossing finds the crossing ahead", func() {
			ca, ok := v.NextCrossing(r)
			So(ok, ShouldBeTrue)
			So(ca.Position, ShouldEqual, 170.0)
		})

		Convey("NextPedestrian finds an active pedestrian occupying that crossing", func() {
			crossing := r.Crossings(road.Up)[0].Crossing
			p := pedestrian.New(1, crossing.ID, timeq.Time(0), crossing.StopTime)
			peds := []*pedestrian.Pedestrian{p}

			next, ok := v.NextPedestrian(r, peds, timeq.Time(0))
			So(ok, ShouldBeTrue)
			So(next, ShouldEqual, p)
		})

		Convey("NextPedestrian ignores an inactive pedestrian", func() {
			crossing := r.Crossings(road.Up)[0].Crossing
			p := pedestrian.New(1, crossing.ID, timeq.Time(0), crossing.StopTime)
			peds := []*pedestrian.Pedestrian{p}

			_, ok := v.NextPedestrian(r, peds, p.ExitTime())
			So(ok, ShouldBeFalse)
		})
	})
}

func TestVehicleRelatives(t *testing.T) {
	Convey("Given a follower behind a leader vehicle", t, func() {
		r, err := road.New(1000, nil)
		So(err, ShouldBeNil)

		leader := vehicle.New(1, road.Up, 13.41, 3, 4)
		leader.Position = 100
		leader.Speed = 10

		follower := vehicle.New(2, road.Up, 13.41, 3, 4)
		follower.Position = 0
		follower.Speed = 14

		Convey("RelativePosition is negative (leader is ahead)", func() {
			So(follower.RelativePosition(r, leader.AsObstacle()), ShouldBeLessThan, 0)
		})

		Convey("RelativeSpeed is self minus obstacle", func() {
			So(follower.RelativeSpeed(leader.AsObstacle()), ShouldEqual, 4.0)
		})
	})
}
