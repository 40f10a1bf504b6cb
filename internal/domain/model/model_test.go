package model_test

import (
	"testing"
	"time"

	"github.com/rcamargo/flexroom/internal/domain/model"
	"github.com/rcamargo/flexroom/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func TestSummonerName(t *testing.T) {
	Convey("Given summoners in both identity formats", t, func() {
		Convey("Then the riot-id pair should win when present", func() {
			s := model.Summoner{DisplayName: "OldName", GameName: "Faker", TagLine: "KR1"}
			So(s.Name(), ShouldEqual, "Faker#KR1")
		})

		Convey("Then the legacy display name should be used otherwise", func() {
			s := model.Summoner{DisplayName: "OldName"}
			So(s.Name(), ShouldEqual, "OldName")
		})
	})
}

func TestRoomHelpers(t *testing.T) {
	Convey("Given a room with two needed positions", t, func() {
		room := model.Room{
			ID:              "r1",
			MinElo:          types.TierGold,
			Status:          types.RoomOpen,
			Players:         []model.Player{{Position: types.PositionJungle}},
			NeededPositions: []types.Position{types.PositionTop, types.PositionMiddle},
			CreatedAt:       time.Now().Add(-10 * time.Minute),
		}

		Convey("Then Needs should match only listed positions", func() {
			So(room.Needs(types.PositionTop), ShouldBeTrue)
			So(room.Needs(types.PositionBottom), ShouldBeFalse)
		})

		Convey("Then Age should reflect elapsed time", func() {
			So(room.Age(time.Now()), ShouldBeGreaterThan, 9*time.Minute)
		})

		Convey("Then Clone should be independent of the original", func() {
			cp := room.Clone()
			cp.NeededPositions[0] = types.PositionUtility
			cp.Players[0].Position = types.PositionTop

			So(room.NeededPositions[0], ShouldEqual, types.PositionTop)
			So(room.Players[0].Position, ShouldEqual, types.PositionJungle)
		})
	})
}

func TestUnrankedEntry(t *testing.T) {
	Convey("Given the unranked placeholder", t, func() {
		e := model.UnrankedEntry()
		So(e.Tier, ShouldEqual, types.TierUnranked)
		So(e.Division, ShouldEqual, "NA")
		So(e.LeaguePoints, ShouldEqual, 0)
	})
}
