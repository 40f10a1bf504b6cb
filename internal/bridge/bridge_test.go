package bridge

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/rcamargo/flexroom/internal/adapters/lcu"
	"github.com/rcamargo/flexroom/internal/domain/model"
	"github.com/rcamargo/flexroom/internal/domain/rooms"
	"github.com/rcamargo/flexroom/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	logger.Init()
}

func receive(t *testing.T, ch <-chan Message) Message {
	t.Helper()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for message")
		panic("unreachable")
	}
}

func TestBroadcast(t *testing.T) {
	Convey("Given a bridge with two observers", t, func() {
		b := New(nil, nil)
		id1, ch1 := b.Attach()
		_, ch2 := b.Attach()

		Convey("When a message is broadcast", func() {
			b.Broadcast(Message{Type: "roomCreated"})

			Convey("Then both observers receive it", func() {
				So(receive(t, ch1).Type, ShouldEqual, "roomCreated")
				So(receive(t, ch2).Type, ShouldEqual, "roomCreated")
			})
		})

		Convey("When one observer detaches", func() {
			b.Detach(id1)

			Convey("Then its channel is closed and delivery continues elsewhere", func() {
				_, open := <-ch1
				So(open, ShouldBeFalse)

				b.Broadcast(Message{Type: "roomUpdated"})
				So(receive(t, ch2).Type, ShouldEqual, "roomUpdated")
			})

			Convey("Then detaching again is harmless", func() {
				So(func() { b.Detach(id1) }, ShouldNotPanic)
			})
		})
	})
}

func TestBroadcastNeverBlocks(t *testing.T) {
	Convey("Given an observer with a single-slot buffer that never reads", t, func() {
		b := New(nil, nil, WithObserverBuffer(1))
		_, slow := b.Attach()
		_, healthy := b.Attach()

		Convey("When more messages arrive than the buffer holds", func() {
			b.Broadcast(Message{Type: "first"})
			b.Broadcast(Message{Type: "second"})
			b.Broadcast(Message{Type: "third"})

			Convey("Then the overflow is dropped and other observers see everything", func() {
				So(receive(t, slow).Type, ShouldEqual, "first")
				So(len(slow), ShouldEqual, 0)

				So(receive(t, healthy).Type, ShouldEqual, "first")
				So(receive(t, healthy).Type, ShouldEqual, "second")
				So(receive(t, healthy).Type, ShouldEqual, "third")
			})
		})
	})
}

func TestRun(t *testing.T) {
	Convey("Given a running bridge over both event sources", t, func() {
		roomEvents := make(chan rooms.Event, 4)
		statusEvents := make(chan lcu.Status, 4)
		b := New(roomEvents, statusEvents)

		ctx, cancel := context.WithCancel(context.Background())
		Reset(cancel)
		go b.Run(ctx)

		_, ch := b.Attach()

		Convey("When a room event is published", func() {
			room := &model.Room{ID: "r-1", Status: "open"}
			roomEvents <- rooms.Event{Type: rooms.EventCreated, RoomID: "r-1", Room: room}

			Convey("Then observers get the room envelope", func() {
				msg := receive(t, ch)
				So(msg.Type, ShouldEqual, string(rooms.EventCreated))

				var payload struct {
					RoomID string      `json:"roomId"`
					Room   *model.Room `json:"room"`
				}
				So(json.Unmarshal(msg.Payload, &payload), ShouldBeNil)
				So(payload.RoomID, ShouldEqual, "r-1")
				So(payload.Room.ID, ShouldEqual, "r-1")
			})
		})

		Convey("When the connection status changes", func() {
			statusEvents <- lcu.StatusConnected

			Convey("Then observers get a status envelope", func() {
				msg := receive(t, ch)
				So(msg.Type, ShouldEqual, TypeConnectionStatus)
				So(string(msg.Payload), ShouldEqual, `{"status":"connected"}`)
			})
		})
	})
}
