package timeq

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestTime(t *testing.T) {
	Convey("Given a Delta built from milliseconds", t, func() {
		d := NewDelta(500)

		Convey("Seconds converts it to fractional seconds", func() {
			So(d.Seconds(), ShouldEqual, 0.5)
		})
	})

	Convey("Given a Delta built from whole seconds", t, func() {
		d := DeltaFromSecs(5)

		Convey("Seconds round-trips exactly", func() {
			So(d.Seconds(), ShouldEqual, 5.0)
		})
	})

	Convey("Given a Delta built by rounding a fractional second count", t, func() {
		d := DeltaFromSeconds(3.5)

		Convey("Millis rounds to the nearest millisecond", func() {
			So(d.Millis(), ShouldEqual, 3500)
		})
	})

	Convey("Given a Delta built by flooring a fractional second count", t, func() {
		Convey("A value that rounds up under DeltaFromSeconds floors down instead", func() {
			So(DeltaFloor(1.0009).Millis(), ShouldEqual, 1000)
			So(DeltaFromSeconds(1.0009).Millis(), ShouldEqual, 1001)
		})
	})

	Convey("Given two Time instants", t, func() {
		t1 := Time(10_000)
		t2 := Time(25_000)

		Convey("Sub returns their Delta", func() {
			So(t2.Sub(t1).Millis(), ShouldEqual, 15_000)
		})

		Convey("Add is the inverse of Sub", func() {
			So(t1.Add(t2.Sub(t1)), ShouldEqual, t2)
		})
	})
}
