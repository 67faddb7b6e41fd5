package handover

import (
	"math/rand"
	"testing"
	"time"

	"github.com/dashreel/dashreel/attempt"
	"github.com/dashreel/dashreel/media"
	"github.com/dashreel/dashreel/monitor"
	"github.com/dashreel/dashreel/strategy"
	. "github.com/smartystreets/goconvey/convey"
)

var (
	robust   = strategy.Descriptor{ID: strategy.RobustBackend, Priority: 0, Fallback: true}
	platform = strategy.Descriptor{ID: strategy.PlatformBackend, Priority: 10}
	budgets  = Budgets{
		PerBackend: map[string]int{strategy.RobustBackend: 2, strategy.PlatformBackend: 1},
		Default:    1,
		Anomaly:    2,
	}
	epoch = time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
)

func chain() *strategy.Chain {
	c, err := strategy.NewChain(
		strategy.Strategy{Descriptor: robust, Matcher: strategy.FragileCodec{ContainerBias: true}},
		strategy.Strategy{Descriptor: platform, Matcher: strategy.AcceptAll{}},
	)
	So(err, ShouldBeNil)
	return c
}

func fresh(backend strategy.Descriptor) *attempt.State {
	return attempt.New(media.New("/media/a.mp4"), backend, "https://cdn.example.com/a.mp4?access_token=t", 1, epoch)
}

var (
	decodeFailure = monitor.Classification{Kind: monitor.DecodeFailure, Cause: "stream error"}
	incompatible  = monitor.Classification{Kind: monitor.FormatIncompatible, Cause: "hevc profile not supported"}
	suspiciousEnd = monitor.Classification{Kind: monitor.DecodeFailure, Anomalous: true}
)

// apply mimics the session: a switch moves the attempt to the target backend.
func apply(s *attempt.State, a Action) {
	if a.Kind == Switch {
		s.SwitchTo(a.Target, s.Generation+1, epoch)
	}
}

func TestDecide(t *testing.T) {
	Convey("Given a controller over the built-in chain", t, func() {
		c := New(chain(), budgets)

		Convey("Progress and stalls should continue", func() {
			s := fresh(platform)
			So(c.Decide(monitor.Classification{Kind: monitor.Progress}, s, 3).Kind, ShouldEqual, Continue)
			So(c.Decide(monitor.Classification{Kind: monitor.Stall}, s, 3).Kind, ShouldEqual, Continue)
		})

		Convey("End of item should advance", func() {
			s := fresh(platform)
			So(c.Decide(monitor.Classification{Kind: monitor.EndOfItem}, s, 3).Kind, ShouldEqual, Advance)
			So(c.Decide(monitor.Classification{Kind: monitor.EndOfItem, Anomalous: true}, s, 1).Kind, ShouldEqual, Advance)
		})

		Convey("Format incompatibility on the first backend should switch at once", func() {
			s := fresh(platform)
			a := c.Decide(incompatible, s, 3)
			So(a.Kind, ShouldEqual, Switch)
			So(a.Target.ID, ShouldEqual, strategy.RobustBackend)
			So(s.HandedOver(), ShouldBeTrue)

			apply(s, a)
			So(s.URL, ShouldEqual, "https://cdn.example.com/a.mp4?access_token=t")
			So(s.Retries, ShouldEqual, 0)

			Convey("and abort when the alternate is incompatible too", func() {
				So(c.Decide(incompatible, s, 3).Kind, ShouldEqual, Abort)
			})

			Convey("and advance when the alternate exhausts its budget", func() {
				So(c.Decide(decodeFailure, s, 3).Kind, ShouldEqual, Retry)
				So(c.Decide(decodeFailure, s, 3).Kind, ShouldEqual, Advance)
			})
		})

		Convey("Decode failures on the robust backend should retry once then switch", func() {
			s := fresh(robust)

			a := c.Decide(decodeFailure, s, 1)
			So(a.Kind, ShouldEqual, Retry)
			So(s.Retries, ShouldEqual, 1)
			So(s.Conservative, ShouldBeTrue)

			a = c.Decide(decodeFailure, s, 1)
			So(a.Kind, ShouldEqual, Switch)
			So(a.Target.ID, ShouldEqual, strategy.PlatformBackend)
		})

		Convey("A decode failure on the platform backend should switch at once", func() {
			s := fresh(platform)
			So(c.Decide(decodeFailure, s, 5).Kind, ShouldEqual, Switch)
		})

		Convey("A suspicious end in a single item queue should switch at once", func() {
			s := fresh(platform)
			s.Anomalies = 1
			So(c.Decide(suspiciousEnd, s, 1).Kind, ShouldEqual, Switch)
		})

		Convey("A suspicious end in a longer queue should retry until the budget", func() {
			s := fresh(platform)
			s.Anomalies = 1
			So(c.Decide(suspiciousEnd, s, 4).Kind, ShouldEqual, Retry)
			s.Anomalies = 2
			So(c.Decide(suspiciousEnd, s, 4).Kind, ShouldEqual, Switch)
		})

		Convey("A second switch request should become an advance", func() {
			s := fresh(robust)
			So(c.Decide(suspiciousEnd, withAnomalies(s, 2), 4).Kind, ShouldEqual, Switch)
			apply(s, Action{Kind: Switch, Target: platform})
			So(c.Decide(suspiciousEnd, withAnomalies(s, 2), 4).Kind, ShouldEqual, Advance)
		})
	})

	Convey("Given a chain with a single backend", t, func() {
		only, err := strategy.NewChain(strategy.Strategy{Descriptor: platform, Matcher: strategy.AcceptAll{}})
		So(err, ShouldBeNil)
		c := New(only, budgets)

		Convey("Incompatibility should abort", func() {
			So(c.Decide(incompatible, fresh(platform), 3).Kind, ShouldEqual, Abort)
		})

		Convey("An exhausted budget should advance", func() {
			So(c.Decide(decodeFailure, fresh(platform), 3).Kind, ShouldEqual, Advance)
		})
	})
}

func withAnomalies(s *attempt.State, n int) *attempt.State {
	s.Anomalies = n
	return s
}

func TestSingleItemBudget(t *testing.T) {
	Convey("Given repeated decode failures on a single item queue", t, func() {
		c := New(chain(), budgets)
		s := fresh(robust)

		var actions []Kind
		for i := 0; i < 10; i++ {
			a := c.Decide(decodeFailure, s, 1)
			actions = append(actions, a.Kind)
			apply(s, a)
			if a.Ends() {
				break
			}
		}

		Convey("The sequence should contain exactly one switch and end", func() {
			So(actions, ShouldResemble, []Kind{Retry, Switch, Advance})
		})
	})
}

func TestAtMostOneSwitch(t *testing.T) {
	Convey("Given random classification sequences", t, func() {
		c := New(chain(), budgets)
		rng := rand.New(rand.NewSource(7))
		kinds := []monitor.Classification{
			{Kind: monitor.Progress},
			{Kind: monitor.Stall},
			decodeFailure,
			incompatible,
			suspiciousEnd,
		}

		for run := 0; run < 500; run++ {
			s := fresh([]strategy.Descriptor{robust, platform}[rng.Intn(2)])
			queueLen := rng.Intn(3)
			switches := 0

			for step := 0; step < 30; step++ {
				cl := kinds[rng.Intn(len(kinds))]
				if cl.Anomalous {
					s.Anomalies++
				}
				a := c.Decide(cl, s, queueLen)
				if a.Kind == Switch {
					switches++
				}
				apply(s, a)
				if a.Ends() {
					break
				}
			}

			So(switches, ShouldBeLessThanOrEqualTo, 1)
		}
	})
}
