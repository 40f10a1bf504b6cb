package rooms_test

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/rcamargo/flexroom/internal/adapters/repository"
	"github.com/rcamargo/flexroom/internal/domain/model"
	"github.com/rcamargo/flexroom/internal/domain/rooms"
	"github.com/rcamargo/flexroom/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

var errBroken = errors.New("disk gone")

// brokenStore fails every write after failAfter successful saves.
type brokenStore struct {
	saves     int
	failAfter int
}

func (b *brokenStore) Load(context.Context) (map[string]model.Room, error) {
	return map[string]model.Room{}, nil
}

func (b *brokenStore) Save(context.Context, map[string]model.Room) error {
	b.saves++
	if b.saves > b.failAfter {
		return errBroken
	}
	return nil
}

func (b *brokenStore) Clear(context.Context) error { return errBroken }

func newRegistry(t *testing.T, opts ...rooms.Option) *rooms.Registry {
	t.Helper()
	store := repository.NewFileStore(repository.WithPath(filepath.Join(t.TempDir(), "rooms.json")))
	reg, err := rooms.New(context.Background(), store, opts...)
	if err != nil {
		t.Fatalf("building registry: %v", err)
	}
	return reg
}

func host() model.Summoner {
	return model.Summoner{DisplayName: "Host#BR1", PUUID: "host-puuid", SummonerID: 1}
}

func joiner(n int) model.Player {
	return model.Player{
		Summoner: model.Summoner{
			GameName: fmt.Sprintf("Joiner%d", n),
			TagLine:  "BR1",
			PUUID:    fmt.Sprintf("puuid-%d", n),
		},
	}
}

func TestCreate(t *testing.T) {
	Convey("Given an empty registry", t, func() {
		ctx := context.Background()
		reg := newRegistry(t)

		Convey("When creating a room with explicit needed positions", func() {
			room, err := reg.Create(ctx, host(), types.TierGold, types.PositionJungle, types.PositionFill,
				[]types.Position{types.PositionTop, types.PositionMiddle})

			Convey("Then the room should hold only the host, open", func() {
				So(err, ShouldBeNil)
				So(room.Players, ShouldHaveLength, 1)
				So(room.Status, ShouldEqual, types.RoomOpen)
				So(room.Players[0].Position, ShouldEqual, types.PositionJungle)
				So(room.Players[0].SecondaryPosition, ShouldEqual, types.PositionFill)
				So(room.NeededPositions, ShouldResemble, []types.Position{types.PositionTop, types.PositionMiddle})
				So(room.ID, ShouldNotBeEmpty)
			})

			Convey("Then a created event should be emitted with the room", func() {
				ev := <-reg.Events()
				So(ev.Type, ShouldEqual, rooms.EventCreated)
				So(ev.RoomID, ShouldEqual, room.ID)
				So(ev.Room, ShouldNotBeNil)
			})
		})

		Convey("When the needed set overlaps the host's positions", func() {
			room, err := reg.Create(ctx, host(), types.TierGold, types.PositionTop, types.PositionMiddle,
				types.LanePositions())

			Convey("Then host positions should be removed from the needed set", func() {
				So(err, ShouldBeNil)
				So(room.NeededPositions, ShouldResemble,
					[]types.Position{types.PositionJungle, types.PositionBottom, types.PositionUtility})
			})
		})

		Convey("When the host's secondary is FILL", func() {
			room, err := reg.Create(ctx, host(), types.TierGold, types.PositionTop, types.PositionFill,
				types.LanePositions())

			Convey("Then only the primary should be excluded", func() {
				So(err, ShouldBeNil)
				So(room.NeededPositions, ShouldHaveLength, 4)
				So(room.Needs(types.PositionTop), ShouldBeFalse)
			})
		})

		Convey("When the needed set itself contains FILL", func() {
			room, err := reg.Create(ctx, host(), types.TierGold, types.PositionTop, types.PositionMiddle,
				[]types.Position{types.PositionFill, types.PositionJungle})

			Convey("Then FILL is dropped; only concrete lanes are recruitable", func() {
				So(err, ShouldBeNil)
				So(room.NeededPositions, ShouldResemble, []types.Position{types.PositionJungle})
			})
		})
	})
}

func TestJoin(t *testing.T) {
	Convey("Given a registry with one open room", t, func() {
		ctx := context.Background()
		reg := newRegistry(t)
		room, err := reg.Create(ctx, host(), types.TierGold, types.PositionJungle, types.PositionFill,
			types.LanePositions())
		So(err, ShouldBeNil)
		<-reg.Events()

		Convey("When a player joins at a needed position", func() {
			p := joiner(2)
			p.Position = types.PositionTop
			got, err := reg.Join(ctx, room.ID, p)

			Convey("Then the player is appended and the position consumed", func() {
				So(err, ShouldBeNil)
				So(got.Players, ShouldHaveLength, 2)
				So(got.Players[1].Summoner.DisplayName, ShouldEqual, "Joiner2#BR1")
				So(got.Needs(types.PositionTop), ShouldBeFalse)
				So(got.Status, ShouldEqual, types.RoomOpen)
				So(got.UpdatedAt.IsZero(), ShouldBeFalse)
			})

			Convey("Then an updated event is emitted", func() {
				ev := <-reg.Events()
				So(ev.Type, ShouldEqual, rooms.EventUpdated)
				So(ev.Room.Players, ShouldHaveLength, 2)
			})
		})

		Convey("When a player asks for a position nobody needs", func() {
			p := joiner(2)
			p.Position = types.PositionJungle // taken by the host
			_, err := reg.Join(ctx, room.ID, p)

			Convey("Then the join fails and the room is untouched", func() {
				So(errors.Is(err, rooms.ErrPositionNotNeeded), ShouldBeTrue)
				cur, ok := reg.Get(room.ID)
				So(ok, ShouldBeTrue)
				So(cur.Players, ShouldHaveLength, 1)
				So(cur.NeededPositions, ShouldResemble, room.NeededPositions)
			})
		})

		Convey("When the room id is unknown", func() {
			_, err := reg.Join(ctx, "nope", joiner(2))
			So(errors.Is(err, rooms.ErrRoomNotFound), ShouldBeTrue)
		})

		Convey("When four players fill the remaining positions", func() {
			needed := append([]types.Position(nil), room.NeededPositions...)
			var got model.Room
			for i, pos := range needed {
				p := joiner(i + 2)
				p.Position = pos
				var err error
				got, err = reg.Join(ctx, room.ID, p)
				So(err, ShouldBeNil)
			}

			Convey("Then the room flips to full exactly at five players", func() {
				So(got.Players, ShouldHaveLength, 5)
				So(got.Status, ShouldEqual, types.RoomFull)
				So(got.NeededPositions, ShouldBeEmpty)
			})

			Convey("Then further joins fail because the room is not open", func() {
				p := joiner(9)
				p.Position = types.PositionTop
				_, err := reg.Join(ctx, room.ID, p)
				So(errors.Is(err, rooms.ErrRoomNotOpen), ShouldBeTrue)
			})
		})
	})
}

func TestLeave(t *testing.T) {
	Convey("Given a room with a host and one joiner", t, func() {
		ctx := context.Background()
		reg := newRegistry(t)
		room, err := reg.Create(ctx, host(), types.TierGold, types.PositionJungle, types.PositionFill,
			types.LanePositions())
		So(err, ShouldBeNil)
		p := joiner(2)
		p.Position = types.PositionTop
		_, err = reg.Join(ctx, room.ID, p)
		So(err, ShouldBeNil)

		Convey("When the joiner leaves", func() {
			got, err := reg.Leave(ctx, room.ID, "Joiner2#BR1")

			Convey("Then the room stays open with the host only", func() {
				So(err, ShouldBeNil)
				So(got.Players, ShouldHaveLength, 1)
				So(got.Status, ShouldEqual, types.RoomOpen)
			})

			Convey("Then the vacated position is not restored to the needed set", func() {
				So(got.Needs(types.PositionTop), ShouldBeFalse)
			})
		})

		Convey("When a stranger tries to leave", func() {
			_, err := reg.Leave(ctx, room.ID, "Nobody#XX")
			So(errors.Is(err, rooms.ErrPlayerNotInRoom), ShouldBeTrue)
		})

		Convey("When everyone leaves", func() {
			_, err := reg.Leave(ctx, room.ID, "Joiner2#BR1")
			So(err, ShouldBeNil)
			_, err = reg.Leave(ctx, room.ID, "Host#BR1")
			So(err, ShouldBeNil)

			Convey("Then the room is deleted", func() {
				_, ok := reg.Get(room.ID)
				So(ok, ShouldBeFalse)
			})
		})
	})
}

func TestCancelAndClear(t *testing.T) {
	Convey("Given a registry with a room", t, func() {
		ctx := context.Background()
		reg := newRegistry(t)
		room, err := reg.Create(ctx, host(), types.TierSilver, types.PositionTop, types.PositionFill,
			types.LanePositions())
		So(err, ShouldBeNil)
		<-reg.Events()

		Convey("When the room is canceled", func() {
			So(reg.Cancel(ctx, room.ID), ShouldBeNil)

			Convey("Then it is gone and a canceled event is emitted", func() {
				_, ok := reg.Get(room.ID)
				So(ok, ShouldBeFalse)
				ev := <-reg.Events()
				So(ev.Type, ShouldEqual, rooms.EventCanceled)
				So(ev.RoomID, ShouldEqual, room.ID)
			})
		})

		Convey("When canceling an unknown id", func() {
			So(errors.Is(reg.Cancel(ctx, "nope"), rooms.ErrRoomNotFound), ShouldBeTrue)
		})

		Convey("When clearing all rooms", func() {
			So(reg.ClearAll(ctx), ShouldBeNil)

			Convey("Then the registry is empty and a cleared event is emitted", func() {
				So(reg.ListOpen(), ShouldBeEmpty)
				ev := <-reg.Events()
				So(ev.Type, ShouldEqual, rooms.EventCleared)
			})
		})
	})
}

func TestListAndFilter(t *testing.T) {
	Convey("Given rooms created at increasing times", t, func() {
		ctx := context.Background()
		clock := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
		reg := newRegistry(t, rooms.WithClock(func() time.Time {
			clock = clock.Add(time.Minute)
			return clock
		}))

		gold, err := reg.Create(ctx, host(), types.TierGold, types.PositionJungle, types.PositionFill,
			types.LanePositions())
		So(err, ShouldBeNil)
		silver, err := reg.Create(ctx, host(), types.TierSilver, types.PositionTop, types.PositionFill,
			types.LanePositions())
		So(err, ShouldBeNil)
		gold2, err := reg.Create(ctx, host(), types.TierGold, types.PositionBottom, types.PositionFill,
			types.LanePositions())
		So(err, ShouldBeNil)

		Convey("Then ListOpen is ordered most recent first", func() {
			open := reg.ListOpen()
			So(open, ShouldHaveLength, 3)
			So(open[0].ID, ShouldEqual, gold2.ID)
			So(open[1].ID, ShouldEqual, silver.ID)
			So(open[2].ID, ShouldEqual, gold.ID)
		})

		Convey("Then filtering by elo keeps only matching rooms in order", func() {
			got := reg.Filter(rooms.Filter{Elo: types.TierGold})
			So(got, ShouldHaveLength, 2)
			So(got[0].ID, ShouldEqual, gold2.ID)
			So(got[1].ID, ShouldEqual, gold.ID)
		})

		Convey("Then filtering by position keeps rooms that still need it", func() {
			got := reg.Filter(rooms.Filter{Position: types.PositionJungle})
			// gold's host plays jungle, so only silver and gold2 still need it.
			So(got, ShouldHaveLength, 2)
			for _, room := range got {
				So(room.Needs(types.PositionJungle), ShouldBeTrue)
			}
		})

		Convey("Then full rooms are excluded from listings", func() {
			needed := append([]types.Position(nil), gold.NeededPositions...)
			for i, pos := range needed {
				p := joiner(i + 2)
				p.Position = pos
				_, err := reg.Join(ctx, gold.ID, p)
				So(err, ShouldBeNil)
			}
			open := reg.ListOpen()
			So(open, ShouldHaveLength, 2)
			for _, room := range open {
				So(room.ID, ShouldNotEqual, gold.ID)
			}
		})
	})
}

func TestSweepStale(t *testing.T) {
	Convey("Given rooms of mixed ages", t, func() {
		ctx := context.Background()
		now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
		current := now
		reg := newRegistry(t, rooms.WithClock(func() time.Time { return current }))

		old, err := reg.Create(ctx, host(), types.TierGold, types.PositionJungle, types.PositionFill,
			types.LanePositions())
		So(err, ShouldBeNil)

		current = now.Add(20 * time.Minute)
		fresh, err := reg.Create(ctx, host(), types.TierGold, types.PositionTop, types.PositionFill,
			types.LanePositions())
		So(err, ShouldBeNil)

		Convey("When sweeping just past the old room's TTL", func() {
			current = now.Add(31 * time.Minute)
			removed := reg.SweepStale(ctx)

			Convey("Then exactly the stale room is removed", func() {
				So(removed, ShouldEqual, 1)
				_, ok := reg.Get(old.ID)
				So(ok, ShouldBeFalse)
				_, ok = reg.Get(fresh.ID)
				So(ok, ShouldBeTrue)
			})
		})

		Convey("When no room is past the TTL", func() {
			current = now.Add(25 * time.Minute)
			So(reg.SweepStale(ctx), ShouldEqual, 0)
			So(reg.ListOpen(), ShouldHaveLength, 2)
		})

		Convey("When a room is exactly at the threshold", func() {
			current = now.Add(30 * time.Minute)
			// Age must exceed, not reach, the TTL.
			So(reg.SweepStale(ctx), ShouldEqual, 0)
		})
	})
}

func TestPersistenceFailureReverts(t *testing.T) {
	Convey("Given a registry whose store starts failing", t, func() {
		ctx := context.Background()
		store := &brokenStore{failAfter: 1}
		reg, err := rooms.New(ctx, store)
		So(err, ShouldBeNil)

		room, err := reg.Create(ctx, host(), types.TierGold, types.PositionJungle, types.PositionFill,
			types.LanePositions())
		So(err, ShouldBeNil)

		Convey("When a join cannot be persisted", func() {
			p := joiner(2)
			p.Position = types.PositionTop
			_, err := reg.Join(ctx, room.ID, p)

			Convey("Then the error surfaces and memory matches the last durable state", func() {
				So(errors.Is(err, errBroken), ShouldBeTrue)
				cur, ok := reg.Get(room.ID)
				So(ok, ShouldBeTrue)
				So(cur.Players, ShouldHaveLength, 1)
			})
		})

		Convey("When a create cannot be persisted", func() {
			r2, err := reg.Create(ctx, host(), types.TierGold, types.PositionTop, types.PositionFill,
				types.LanePositions())

			Convey("Then no phantom room remains", func() {
				So(err, ShouldNotBeNil)
				So(r2.ID, ShouldBeEmpty)
				So(reg.ListOpen(), ShouldHaveLength, 1)
			})
		})
	})
}

func TestSnapshotRoundTrip(t *testing.T) {
	Convey("Given a registry persisted to a file", t, func() {
		ctx := context.Background()
		path := filepath.Join(t.TempDir(), "rooms.json")
		store := repository.NewFileStore(repository.WithPath(path))
		reg, err := rooms.New(ctx, store)
		So(err, ShouldBeNil)

		room, err := reg.Create(ctx, host(), types.TierGold, types.PositionJungle, types.PositionFill,
			[]types.Position{types.PositionTop, types.PositionMiddle})
		So(err, ShouldBeNil)
		p := joiner(2)
		p.Position = types.PositionTop
		_, err = reg.Join(ctx, room.ID, p)
		So(err, ShouldBeNil)

		Convey("When a second registry loads the same snapshot", func() {
			reloaded, err := rooms.New(ctx, repository.NewFileStore(repository.WithPath(path)))
			So(err, ShouldBeNil)

			Convey("Then the room is reproduced field for field", func() {
				got, ok := reloaded.Get(room.ID)
				So(ok, ShouldBeTrue)
				So(got.MinElo, ShouldEqual, types.TierGold)
				So(got.Players, ShouldHaveLength, 2)
				So(got.Players[0].Summoner.PUUID, ShouldEqual, "host-puuid")
				So(got.Players[1].Summoner.DisplayName, ShouldEqual, "Joiner2#BR1")
				So(got.NeededPositions, ShouldResemble, []types.Position{types.PositionMiddle})
				So(got.CreatedAt.Equal(room.CreatedAt), ShouldBeTrue)
			})
		})
	})
}
