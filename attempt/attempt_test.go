package attempt

import (
	"testing"
	"time"

	"github.com/dashreel/dashreel/media"
	"github.com/dashreel/dashreel/strategy"
	. "github.com/smartystreets/goconvey/convey"
)

var (
	robust   = strategy.Descriptor{ID: strategy.RobustBackend, Fallback: true}
	platform = strategy.Descriptor{ID: strategy.PlatformBackend, Priority: 10}
	epoch    = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
)

func TestState(t *testing.T) {
	Convey("Given a fresh attempt", t, func() {
		s := New(media.New("/a.mp4"), platform, "file:///a.mp4", 1, epoch)

		Convey("It should start idle and not handed over", func() {
			So(s.LastState, ShouldEqual, Idle)
			So(s.HandedOver(), ShouldBeFalse)
			So(s.Retries, ShouldEqual, 0)
		})

		Convey("The latch should close exactly once", func() {
			So(s.Latch(), ShouldBeTrue)
			So(s.Latch(), ShouldBeFalse)
			So(s.HandedOver(), ShouldBeTrue)
		})

		Convey("Switching should reset the backend scoped counters and keep the URL", func() {
			s.Retries, s.Anomalies, s.Conservative = 1, 2, true
			s.Latch()
			s.SwitchTo(robust, 2, epoch.Add(time.Second))

			So(s.Backend, ShouldResemble, robust)
			So(s.Retries, ShouldEqual, 0)
			So(s.Anomalies, ShouldEqual, 0)
			So(s.Conservative, ShouldBeFalse)
			So(s.URL, ShouldEqual, "file:///a.mp4")
			So(s.Generation, ShouldEqual, 2)
			So(s.HandedOver(), ShouldBeTrue)
		})

		Convey("Transition should report the elapsed time of the previous state", func() {
			from, elapsed := s.Transition(Buffering, epoch.Add(300*time.Millisecond))
			So(from, ShouldEqual, Idle)
			So(elapsed, ShouldEqual, 300*time.Millisecond)

			from, elapsed = s.Transition(Ready, epoch.Add(time.Second))
			So(from, ShouldEqual, Buffering)
			So(elapsed, ShouldEqual, 700*time.Millisecond)
		})

		Convey("Reaching Ready should mark the generation as played until a restart", func() {
			So(s.Played, ShouldBeFalse)
			s.Transition(Ready, epoch.Add(time.Second))
			s.Transition(Buffering, epoch.Add(2*time.Second))
			So(s.Played, ShouldBeTrue)

			s.Restart(2, epoch.Add(3*time.Second))
			So(s.Played, ShouldBeFalse)
		})

		Convey("Repeating a state should not move its timestamp", func() {
			s.Transition(Buffering, epoch.Add(100*time.Millisecond))
			s.Transition(Buffering, epoch.Add(900*time.Millisecond))
			So(s.LastChange, ShouldEqual, epoch.Add(100*time.Millisecond))
		})
	})
}
