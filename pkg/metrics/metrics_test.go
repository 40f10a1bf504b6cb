package metrics_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rcamargo/flexroom/pkg/metrics"
	. "github.com/smartystreets/goconvey/convey"
)

func TestManager(t *testing.T) {
	Convey("Given a manager on a fresh registry", t, func() {
		reg := prometheus.NewRegistry()
		m := metrics.NewManager(metrics.WithRegistry(reg), metrics.WithNamespace("test"))

		Convey("Then construction should register without collision", func() {
			So(m, ShouldNotBeNil)
			families, err := reg.Gather()
			So(err, ShouldBeNil)
			So(len(families), ShouldBeGreaterThan, 0)
		})
	})

	Convey("Given the global helpers", t, func() {
		Convey("Then recording should never panic", func() {
			So(func() {
				metrics.RecordRoomCreated()
				metrics.RecordRoomJoined()
				metrics.RecordRoomLeft()
				metrics.RecordRoomCanceled()
				metrics.RecordRoomExpired()
				metrics.UpdateOpenRooms(3)
				metrics.RecordLCURequest("GET", "200")
				metrics.RecordLCURequestDuration(12.5)
				metrics.RecordSocketReconnect()
				metrics.RecordSocketEvent()
				metrics.RecordSocketBadFrame()
				metrics.UpdateObserverCount(1)
				metrics.RecordMessageDropped()
				metrics.RecordHTTPRequest("rooms", "GET", "200")
				metrics.RecordHTTPRequestDuration("rooms", "GET", "200", 4.2)
			}, ShouldNotPanic)
		})

		Convey("Then the shared registry should gather", func() {
			families, err := metrics.GetRegistry().Gather()
			So(err, ShouldBeNil)
			So(len(families), ShouldBeGreaterThan, 0)
		})
	})
}
