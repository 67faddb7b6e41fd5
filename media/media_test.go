package media

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestNew(t *testing.T) {
	Convey("Given a video path", t, func() {
		item := New("/mnt/usb/Trip/Day 1.MKV")

		Convey("The name should be the base name", func() {
			So(item.Name, ShouldEqual, "Day 1.MKV")
		})

		Convey("It should be a video with no declared metadata", func() {
			So(item.IsVideo(), ShouldBeTrue)
			So(item.MIME.IsAbsent(), ShouldBeTrue)
			So(item.Codec.IsAbsent(), ShouldBeTrue)
			So(item.Ext(), ShouldEqual, ".mkv")
		})
	})

	Convey("Given a remote link with a query string", t, func() {
		item := New("https://media.example.com/file/photo.JPG?sign=abc")

		Convey("The query should not leak into the name", func() {
			So(item.Name, ShouldEqual, "photo.JPG")
		})

		Convey("It should be a remote image", func() {
			So(item.Kind, ShouldEqual, KindImage)
			So(item.IsRemote(), ShouldBeTrue)
		})
	})
}

func TestWith(t *testing.T) {
	Convey("Given an item without metadata", t, func() {
		item := New("clip")

		Convey("WithMIME should not modify the original", func() {
			withMime := item.WithMIME("video/hevc")
			So(withMime.MIME.MustGet(), ShouldEqual, "video/hevc")
			So(item.MIME.IsAbsent(), ShouldBeTrue)
		})

		Convey("An image MIME should turn the item into an image", func() {
			So(item.WithMIME("image/png").Kind, ShouldEqual, KindImage)
		})

		Convey("An empty codec should stay absent", func() {
			So(item.WithCodec("").Codec.IsAbsent(), ShouldBeTrue)
			So(item.WithCodec("hvc1").Codec.MustGet(), ShouldEqual, "hvc1")
		})
	})
}
