package types_test

import (
	"testing"

	"github.com/rcamargo/flexroom/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func TestNormalizePosition(t *testing.T) {
	Convey("Given the casual position aliases", t, func() {
		Convey("Then each alias should resolve to its canonical code", func() {
			So(types.NormalizePosition("top"), ShouldEqual, types.PositionTop)
			So(types.NormalizePosition("jungle"), ShouldEqual, types.PositionJungle)
			So(types.NormalizePosition("mid"), ShouldEqual, types.PositionMiddle)
			So(types.NormalizePosition("adc"), ShouldEqual, types.PositionBottom)
			So(types.NormalizePosition("sup"), ShouldEqual, types.PositionUtility)
			So(types.NormalizePosition("fill"), ShouldEqual, types.PositionFill)
		})

		Convey("Then matching should be case-insensitive", func() {
			So(types.NormalizePosition("ADC"), ShouldEqual, types.PositionBottom)
			So(types.NormalizePosition("Mid"), ShouldEqual, types.PositionMiddle)
		})

		Convey("Then unknown values should be upper-cased as-is", func() {
			So(types.NormalizePosition("support"), ShouldEqual, types.Position("SUPPORT"))
			So(types.NormalizePosition("JUNGLE"), ShouldEqual, types.PositionJungle)
		})
	})
}

func TestLanePositions(t *testing.T) {
	Convey("Given the lane position set", t, func() {
		lanes := types.LanePositions()

		Convey("Then it should contain the five lanes and not FILL", func() {
			So(lanes, ShouldHaveLength, 5)
			So(lanes, ShouldNotContain, types.PositionFill)
		})
	})
}

func TestValidPosition(t *testing.T) {
	Convey("Given canonical and bogus positions", t, func() {
		So(types.ValidPosition(types.PositionTop), ShouldBeTrue)
		So(types.ValidPosition(types.PositionFill), ShouldBeTrue)
		So(types.ValidPosition(types.Position("SUPPORT")), ShouldBeFalse)
	})
}
