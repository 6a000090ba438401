package obstacle_test

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"zebra/obstacle"
	"zebra/road"
	"zebra/timeq"
)

// stub is a minimal Obstacle, used only to confirm the interface is
// satisfiable by a plain struct that never imports this package.
type stub struct {
	pos float64
}

func (s stub) Position(_ *road.Road, _ road.Direction) float64 { return s.pos }
func (s stub) Speed() float64                                  { return 0 }
func (s stub) Acceleration() float64                           { return 0 }
func (s stub) Length() float64                                 { return 0 }
func (s stub) IsActive(_ timeq.Time) bool                       { return true }

var _ obstacle.Obstacle = stub{}
var _ obstacle.Obstacle = (*road.Exit)(nil)

func TestObstacleInterface(t *testing.T) {
	Convey("Given the MinBuffer constant", t, func() {
		Convey("It matches the spec's 1m minimum following distance", func() {
			So(obstacle.MinBuffer, ShouldEqual, 1.0)
		})
	})
}
