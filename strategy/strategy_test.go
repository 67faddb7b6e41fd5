package strategy

import (
	"errors"
	"testing"

	"github.com/dashreel/dashreel/media"
	. "github.com/smartystreets/goconvey/convey"
)

func never() Matcher { return MatcherFunc(func(*media.Item) bool { return false }) }

func TestNewChain(t *testing.T) {
	Convey("Given no strategies", t, func() {
		_, err := NewChain()
		So(err, ShouldEqual, ErrEmptyChain)
	})

	Convey("Given three distinct backends", t, func() {
		_, err := NewChain(
			Strategy{Descriptor: Descriptor{ID: "a"}, Matcher: AcceptAll{}},
			Strategy{Descriptor: Descriptor{ID: "b"}, Matcher: AcceptAll{}},
			Strategy{Descriptor: Descriptor{ID: "c"}, Matcher: AcceptAll{}},
		)
		So(errors.Is(err, ErrTooManyBackends), ShouldBeTrue)
	})

	Convey("Given a strategy without a matcher", t, func() {
		_, err := NewChain(Strategy{Descriptor: Descriptor{ID: "a"}})
		So(err, ShouldNotBeNil)
	})

	Convey("Given no flagged fallback", t, func() {
		chain, err := NewChain(
			Strategy{Descriptor: Descriptor{ID: "late", Priority: 5}, Matcher: never()},
			Strategy{Descriptor: Descriptor{ID: "early", Priority: 1}, Matcher: never()},
		)
		So(err, ShouldBeNil)

		Convey("The last entry in priority order should be the fallback", func() {
			So(chain.Fallback().ID, ShouldEqual, "late")
		})
	})

	Convey("Given two flagged fallbacks", t, func() {
		chain, err := NewChain(
			Strategy{Descriptor: Descriptor{ID: "b", Priority: 9, Fallback: true}, Matcher: never()},
			Strategy{Descriptor: Descriptor{ID: "a", Priority: 3, Fallback: true}, Matcher: never()},
		)
		So(err, ShouldBeNil)

		Convey("The first flagged entry in priority order should win", func() {
			So(chain.Fallback().ID, ShouldEqual, "a")
		})
	})
}

func TestSelect(t *testing.T) {
	Convey("Given the built-in chain with container bias", t, func() {
		chain, err := NewChain(
			Strategy{Descriptor: Descriptor{ID: RobustBackend, Priority: 0, Fallback: true}, Matcher: FragileCodec{ContainerBias: true}},
			Strategy{Descriptor: Descriptor{ID: PlatformBackend, Priority: 10}, Matcher: AcceptAll{}},
		)
		So(err, ShouldBeNil)

		Convey("An HEVC MIME should select the robust backend", func() {
			item := media.New("https://cdn.example.com/a").WithMIME("video/HEVC")
			So(chain.Select(item).ID, ShouldEqual, RobustBackend)
		})

		Convey("A container should select the robust backend", func() {
			So(chain.Select(media.New("/media/clip.mp4")).ID, ShouldEqual, RobustBackend)
		})

		Convey("An unknown extension should select the platform backend", func() {
			So(chain.Select(media.New("/media/clip.ts")).ID, ShouldEqual, PlatformBackend)
		})

		Convey("Every item should get a backend", func() {
			items := []*media.Item{
				{},
				media.New(""),
				media.New("/x/y.unknown"),
				media.New("/x/y.h265").WithCodec("avc1"),
			}
			for _, item := range items {
				So(chain.Backends(), ShouldContain, chain.Select(item).ID)
			}
		})
	})

	Convey("Given a chain where no matcher accepts", t, func() {
		chain, _ := NewChain(
			Strategy{Descriptor: Descriptor{ID: "x", Priority: 0}, Matcher: never()},
			Strategy{Descriptor: Descriptor{ID: "y", Priority: 1, Fallback: true}, Matcher: never()},
		)

		Convey("Select should return the fallback", func() {
			So(chain.Select(media.New("/a.mp4")).ID, ShouldEqual, "y")
		})
	})

	Convey("Given equal priorities", t, func() {
		chain, _ := NewChain(
			Strategy{Descriptor: Descriptor{ID: "first", Priority: 1}, Matcher: AcceptAll{}},
			Strategy{Descriptor: Descriptor{ID: "second", Priority: 1}, Matcher: AcceptAll{}},
		)

		Convey("Registration order should break the tie", func() {
			So(chain.Select(media.New("/a")).ID, ShouldEqual, "first")
		})
	})
}

func TestAlternate(t *testing.T) {
	Convey("Given the two built-in backends", t, func() {
		chain, _ := NewChain(
			Strategy{Descriptor: Descriptor{ID: RobustBackend, Fallback: true}, Matcher: FragileCodec{}},
			Strategy{Descriptor: Descriptor{ID: PlatformBackend, Priority: 10}, Matcher: AcceptAll{}},
		)

		Convey("Each should be the other's alternate", func() {
			alt, err := chain.Alternate(RobustBackend)
			So(err, ShouldBeNil)
			So(alt.ID, ShouldEqual, PlatformBackend)

			alt, err = chain.Alternate(PlatformBackend)
			So(err, ShouldBeNil)
			So(alt.ID, ShouldEqual, RobustBackend)
		})

		Convey("An unknown backend should be rejected", func() {
			_, err := chain.Alternate("vlc")
			So(errors.Is(err, ErrUnknownBackend), ShouldBeTrue)
		})
	})

	Convey("Given a single backend", t, func() {
		chain, _ := NewChain(Strategy{Descriptor: Descriptor{ID: "only"}, Matcher: AcceptAll{}})
		_, err := chain.Alternate("only")
		So(errors.Is(err, ErrNoAlternate), ShouldBeTrue)
	})
}
