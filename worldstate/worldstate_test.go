package worldstate_test

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"zebra/pedestrian"
	"zebra/road"
	"zebra/timeq"
	"zebra/vehicle"
	"zebra/worldstate"
)

func TestWorldStateLifecycle(t *testing.T) {
	Convey("Given an empty world state", t, func() {
		s := worldstate.New()

		Convey("NextVehicleID and NextPedestrianID start at 0", func() {
			So(s.NextVehicleID(), ShouldEqual, int64(0))
			So(s.NextPedestrianID(), ShouldEqual, int64(0))
		})

		Convey("Adding a vehicle advances the vehicle ID counter", func() {
			v := vehicle.New(s.NextVehicleID(), road.Up, 13.41, 3, 4)
			s.AddVehicle(v)
			So(s.NextVehicleID(), ShouldEqual, int64(1))
			So(len(s.Vehicles), ShouldEqual, 1)
		})

		Convey("Adding then removing a vehicle leaves the state empty again", func() {
			v := vehicle.New(0, road.Up, 13.41, 3, 4)
			s.AddVehicle(v)
			s.RemoveVehicleAt(0)
			So(len(s.Vehicles), ShouldEqual, 0)
		})

		Convey("Adding a pedestrian advances the pedestrian ID counter", func() {
			p := pedestrian.New(s.NextPedestrianID(), 0, timeq.Time(0), timeq.DeltaFromSecs(10))
			s.AddPedestrian(p)
			So(s.NextPedestrianID(), ShouldEqual, int64(1))
		})
	})

	Convey("Given a world with one moving vehicle", t, func() {
		s := worldstate.New()
		v := vehicle.New(0, road.Up, 13.41, 3, 4)
		v.Speed = 10
		v.Action(vehicle.StaticSpeed)
		s.AddVehicle(v)

		Convey("AdvanceBy moves the vehicle and the timestamp together", func() {
			s.AdvanceBy(timeq.DeltaFromSecs(2))
			So(v.Position, ShouldEqual, 20.0)
			So(s.Timestamp, ShouldEqual, timeq.Time(2000))
		})

		Convey("Advancing by dt then by 0 is the same as advancing by dt alone", func() {
			s.AdvanceBy(timeq.DeltaFromSecs(2))
			posAfterFirst := v.Position
			s.AdvanceBy(timeq.NewDelta(0))
			So(v.Position, ShouldEqual, posAfterFirst)
		})
	})

	Convey("Given a world with an active and an inactive pedestrian", t, func() {
		s := worldstate.New()
		s.Timestamp = timeq.Time(5000)
		active := pedestrian.New(0, 0, timeq.Time(0), timeq.DeltaFromSecs(10))
		inactive := pedestrian.New(1, 1, timeq.Time(0), timeq.DeltaFromSecs(1))
		s.AddPedestrian(active)
		s.AddPedestrian(inactive)

		Convey("ActivePedestrians returns only the active one", func() {
			got := s.ActivePedestrians()
			So(len(got), ShouldEqual, 1)
			So(got[0], ShouldEqual, active)
		})
	})
}
