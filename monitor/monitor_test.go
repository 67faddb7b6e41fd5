package monitor

import (
	"testing"
	"time"

	"github.com/dashreel/dashreel/attempt"
	"github.com/dashreel/dashreel/media"
	"github.com/dashreel/dashreel/player"
	"github.com/dashreel/dashreel/strategy"
	. "github.com/smartystreets/goconvey/convey"
)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func state(s attempt.Lifecycle) player.Event { return player.Event{State: s} }

func sample(pos, dur time.Duration) player.Event { return player.Event{Position: pos, Duration: dur} }

var thresholds = Thresholds{
	AnomalyWindow: time.Second,
	NearZero:      time.Second,
	MinDuration:   5 * time.Second,
	Keywords:      []string{"NoSupport", "profilelevel", "hevc", "missing a plug-in"},
}

func TestObserve(t *testing.T) {
	Convey("Given a monitor and a fresh attempt", t, func() {
		clock := &fakeClock{now: time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)}
		m := New(thresholds, clock)
		s := attempt.New(media.New("/a.mp4"), strategy.Descriptor{ID: strategy.PlatformBackend}, "/a.mp4", 1, clock.Now())

		Convey("Buffering, Ready then Ended should be one normal end", func() {
			So(m.Observe(s, state(attempt.Buffering)).Kind, ShouldEqual, Progress)
			clock.Advance(200 * time.Millisecond)
			So(m.Observe(s, state(attempt.Ready)).Kind, ShouldEqual, Progress)
			clock.Advance(30 * time.Second)

			c := m.Observe(s, state(attempt.Ended))
			So(c.Kind, ShouldEqual, EndOfItem)
			So(c.Anomalous, ShouldBeFalse)
			So(c.From, ShouldEqual, attempt.Ready)

			Convey("A duplicate end should not end the item twice", func() {
				So(m.Observe(s, state(attempt.Ended)).Kind, ShouldEqual, Progress)
			})
		})

		Convey("An immediate end at zero of a long item should be a decode failure", func() {
			m.Observe(s, state(attempt.Buffering))
			m.Observe(s, sample(0, 90*time.Second))
			clock.Advance(300 * time.Millisecond)

			c := m.Observe(s, state(attempt.Ended))
			So(c.Kind, ShouldEqual, DecodeFailure)
			So(c.Anomalous, ShouldBeTrue)
			So(s.Anomalies, ShouldEqual, 1)
		})

		Convey("An early end of a short clip should be an anomalous end of item", func() {
			m.Observe(s, state(attempt.Buffering))
			m.Observe(s, sample(0, 3*time.Second))
			clock.Advance(300 * time.Millisecond)

			c := m.Observe(s, state(attempt.Ended))
			So(c.Kind, ShouldEqual, EndOfItem)
			So(c.Anomalous, ShouldBeTrue)
		})

		Convey("A slow end without Ready should not be suspicious", func() {
			m.Observe(s, state(attempt.Buffering))
			m.Observe(s, sample(0, 90*time.Second))
			clock.Advance(4 * time.Second)

			c := m.Observe(s, state(attempt.Ended))
			So(c.Kind, ShouldEqual, EndOfItem)
			So(c.Anomalous, ShouldBeTrue)
		})

		Convey("An unknown duration should not be suspicious", func() {
			m.Observe(s, state(attempt.Buffering))
			clock.Advance(100 * time.Millisecond)
			So(m.Observe(s, state(attempt.Ended)).Kind, ShouldEqual, EndOfItem)
		})

		Convey("Errors mentioning codec support should be format incompatibility", func() {
			for _, cause := range []string{
				"MediaCodec NO_SUPPORT: nosupport for profile",
				"decoder reported PROFILELEVEL mismatch",
				"Your GStreamer installation is missing a plug-in.",
			} {
				c := m.Observe(s, player.Event{State: attempt.Error, Cause: cause})
				So(c.Kind, ShouldEqual, FormatIncompatible)
				So(c.Cause, ShouldEqual, cause)
			}
		})

		Convey("A decoder init failure should be format incompatibility", func() {
			c := m.Observe(s, player.Event{State: attempt.Error, Cause: "could not allocate", Kind: player.ErrorDecoderInit})
			So(c.Kind, ShouldEqual, FormatIncompatible)
		})

		Convey("Other errors should be decode failures", func() {
			c := m.Observe(s, player.Event{State: attempt.Error, Cause: "connection reset by peer"})
			So(c.Kind, ShouldEqual, DecodeFailure)
			So(c.Anomalous, ShouldBeFalse)
		})

		Convey("Reaching Ready should reset the counters", func() {
			s.Retries, s.Anomalies = 1, 1
			m.Observe(s, state(attempt.Buffering))
			m.Observe(s, state(attempt.Ready))
			So(s.Retries, ShouldEqual, 0)
			So(s.Anomalies, ShouldEqual, 0)
		})

		Convey("An end after a stall should be a normal end of item", func() {
			m.Observe(s, state(attempt.Buffering))
			m.Observe(s, state(attempt.Ready))
			m.Observe(s, sample(40*time.Second, 90*time.Second))
			m.Observe(s, state(attempt.Buffering))
			clock.Advance(300 * time.Millisecond)

			c := m.Observe(s, state(attempt.Ended))
			So(c.Kind, ShouldEqual, EndOfItem)
			So(c.Anomalous, ShouldBeFalse)
			So(c.From, ShouldEqual, attempt.Buffering)
			So(s.Anomalies, ShouldEqual, 0)
		})

		Convey("Falling back to Buffering while playing should be a stall", func() {
			m.Observe(s, state(attempt.Ready))
			c := m.Observe(s, state(attempt.Buffering))
			So(c.Kind, ShouldEqual, Stall)
		})

		Convey("Samples should be recorded without changing the state", func() {
			c := m.Observe(s, sample(2*time.Second, 10*time.Second))
			So(c.Kind, ShouldEqual, Progress)
			So(s.Position, ShouldEqual, 2*time.Second)
			So(s.Duration, ShouldEqual, 10*time.Second)
			So(s.LastState, ShouldEqual, attempt.Idle)
		})
	})
}
