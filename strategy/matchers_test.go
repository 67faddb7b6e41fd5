package strategy

import (
	"testing"

	"github.com/dashreel/dashreel/media"
	. "github.com/smartystreets/goconvey/convey"
)

func TestFragileCodec(t *testing.T) {
	Convey("Given a fragile codec matcher without container bias", t, func() {
		m := FragileCodec{}

		Convey("It should accept HEVC MIME types", func() {
			for _, mime := range []string{"video/hevc", "video/mp4; codecs=hev1.1.6.L93", "video/mp4; codecs=HVC1"} {
				So(m.CanHandle(media.New("/a").WithMIME(mime)), ShouldBeTrue)
			}
		})

		Convey("It should accept HEVC codec tags", func() {
			for _, codec := range []string{"hev1", "hvc1.2.4", "H265"} {
				So(m.CanHandle(media.New("/a").WithCodec(codec)), ShouldBeTrue)
			}
		})

		Convey("It should accept raw HEVC extensions", func() {
			for _, path := range []string{"/a/b.hevc", "/a/b.H265", "/a/b.265"} {
				So(m.CanHandle(media.New(path)), ShouldBeTrue)
			}
		})

		Convey("It should accept paths that mention the codec", func() {
			So(m.CanHandle(media.New("/Movies/HEVC/trip.ts")), ShouldBeTrue)
			So(m.CanHandle(media.New("/Movies/x265-rip/trip.ts")), ShouldBeTrue)
		})

		Convey("It should reject an AVC transport stream", func() {
			So(m.CanHandle(media.New("/Movies/trip.ts").WithCodec("avc1").WithMIME("video/mp2t")), ShouldBeFalse)
		})

		Convey("It should reject a container", func() {
			So(m.CanHandle(media.New("/Movies/trip.mp4")), ShouldBeFalse)
		})

		Convey("It should skip missing fields", func() {
			So(m.CanHandle(&media.Item{}), ShouldBeFalse)
			So(m.CanHandle(nil), ShouldBeFalse)
		})
	})

	Convey("Given a fragile codec matcher with container bias", t, func() {
		m := FragileCodec{ContainerBias: true}

		Convey("It should accept every generic container", func() {
			for _, path := range []string{"a.mp4", "a.MKV", "a.avi", "a.mov", "a.flv", "a.wmv", "a.webm", "a.m4v"} {
				So(m.CanHandle(media.New(path)), ShouldBeTrue)
			}
		})

		Convey("It should still reject other extensions", func() {
			So(m.CanHandle(media.New("a.ts")), ShouldBeFalse)
		})
	})
}

func TestAcceptAll(t *testing.T) {
	Convey("AcceptAll should accept anything", t, func() {
		So(AcceptAll{}.CanHandle(nil), ShouldBeTrue)
		So(AcceptAll{}.CanHandle(media.New("/a.ts")), ShouldBeTrue)
	})
}
