package config_test

import (
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"zebra/config"
	"zebra/road"
)

func TestValidate(t *testing.T) {
	Convey("Given spec-default configuration values", t, func() {
		cfg := config.Defaults()

		Convey("It validates cleanly", func() {
			So(cfg.Validate(), ShouldBeNil)
		})
	})

	Convey("Given a non-positive road length", t, func() {
		cfg := config.Defaults()
		cfg.RoadLength = 0

		Convey("Validate rejects it", func() {
			So(cfg.Validate(), ShouldNotBeNil)
		})
	})

	Convey("Given a run_time of zero", t, func() {
		cfg := config.Defaults()
		cfg.Simulation.RunTime = 0

		Convey("Validate rejects it (end_time must exceed start_time)", func() {
			So(cfg.Validate(), ShouldNotBeNil)
		})
	})

	Convey("Given a negative vehicle arrival rate", t, func() {
		cfg := config.Defaults()
		cfg.Simulation.VehicleArrivalRate = -0.1

		Convey("Validate rejects it", func() {
			So(cfg.Validate(), ShouldNotBeNil)
		})
	})

	Convey("Given a crossing position outside the road", t, func() {
		cfg := config.Defaults()
		cfg.RoadLength = 100
		cfg.ZebraCrossings = []float64{150}

		Convey("Validate rejects it", func() {
			So(cfg.Validate(), ShouldNotBeNil)
		})
	})

	Convey("Given a zebra and pelican crossing at the same position", t, func() {
		cfg := config.Defaults()
		cfg.RoadLength = 100
		cfg.ZebraCrossings = []float64{50}
		cfg.PelicanCrossings = []float64{50}

		Convey("Validate rejects the duplicate position", func() {
			So(cfg.Validate(), ShouldNotBeNil)
		})
	})
}

func TestBuildRoad(t *testing.T) {
	Convey("Given a config with one zebra and one pelican crossing and custom timings", t, func() {
		cfg := config.Defaults()
		cfg.RoadLength = 200
		cfg.ZebraCrossings = []float64{150}
		cfg.PelicanCrossings = []float64{50}
		cfg.CrossingTime = 8000
		cfg.PelicanWaitTime = 2000
		cfg.PelicanGoTime = 3000

		r, err := cfg.BuildRoad()
		So(err, ShouldBeNil)

		Convey("Crossings are placed in position order regardless of input list order", func() {
			up := r.Crossings(road.Up)
			So(len(up), ShouldEqual, 2)
			So(up[0].Position, ShouldEqual, 50.0)
			So(up[0].Crossing.Kind, ShouldEqual, road.Pelican)
			So(up[1].Position, ShouldEqual, 150.0)
			So(up[1].Crossing.Kind, ShouldEqual, road.Zebra)
		})

		Convey("Custom crossing timings are applied to every crossing", func() {
			for _, ca := range r.Crossings(road.Up) {
				So(ca.Crossing.StopTime.Millis(), ShouldEqual, int64(8000))
				if ca.Crossing.Kind == road.Pelican {
					So(ca.Crossing.WaitTime.Millis(), ShouldEqual, int64(2000))
					So(ca.Crossing.GoTime.Millis(), ShouldEqual, int64(3000))
				}
			}
		})
	})
}

func TestLoad(t *testing.T) {
	Convey("Given a minimal TOML config file on disk", t, func() {
		dir := t.TempDir()
		path := filepath.Join(dir, "zebra.toml")
		contents := `
road_length = 500
zebra_crossings = [100, 300]

[simulation]
run_time = 60000
pedestrian_arrival_rate = 0.2
`
		So(os.WriteFile(path, []byte(contents), 0o644), ShouldBeNil)

		cfg, err := config.Load(path)
		So(err, ShouldBeNil)

		Convey("Explicit values override defaults", func() {
			So(cfg.RoadLength, ShouldEqual, 500.0)
			So(len(cfg.ZebraCrossings), ShouldEqual, 2)
			So(cfg.Simulation.RunTime, ShouldEqual, int64(60000))
			So(cfg.Simulation.PedestrianArrivalRate, ShouldEqual, 0.2)
		})

		Convey("Unset values keep spec defaults", func() {
			So(cfg.MaxSpeed, ShouldEqual, 13.41)
			So(cfg.Simulation.VehicleArrivalRate, ShouldEqual, 0.5)
			So(cfg.Simulation.DirectionWeightUp, ShouldEqual, 1.0)
		})
	})

	Convey("Given a nonexistent config path", t, func() {
		_, err := config.Load("/nonexistent/zebra.toml")

		Convey("Load surfaces an error", func() {
			So(err, ShouldNotBeNil)
		})
	})
}
