package util

import (
	"testing"

	"github.com/dashreel/dashreel/filesystem"
	. "github.com/smartystreets/goconvey/convey"
)

func TestSanitizeFilename(t *testing.T) {
	Convey("SanitizeFilename", t, func() {
		So(SanitizeFilename("prefer mpv: hevc?"), ShouldEqual, "prefer_mpv_hevc")
		So(SanitizeFilename("car__rules.lua"), ShouldEqual, "car_rules.lua")
		So(SanitizeFilename("-dash-cam-"), ShouldEqual, "dash-cam")
	})
}

func TestQuantify(t *testing.T) {
	Convey("Quantify", t, func() {
		So(Quantify(1, "file", "files"), ShouldEqual, "1 file")
		So(Quantify(2, "file", "files"), ShouldEqual, "2 files")
	})
}

func TestCapitalize(t *testing.T) {
	Convey("Capitalize", t, func() {
		So(Capitalize("hello"), ShouldEqual, "Hello")
		So(Capitalize(""), ShouldEqual, "")
	})
}

func TestFileStem(t *testing.T) {
	Convey("FileStem", t, func() {
		So(FileStem("path/to/file.txt"), ShouldEqual, "file")
		So(FileStem("file"), ShouldEqual, "file")
	})
}

func TestMax(t *testing.T) {
	Convey("Max", t, func() {
		So(Max(1, 5, 2), ShouldEqual, 5)
		So(Max[int](), ShouldEqual, 0)
	})
}

func TestStack(t *testing.T) {
	Convey("Stack", t, func() {
		var s Stack[string]
		s.Push("playing")
		s.Push("queue")
		So(s.Len(), ShouldEqual, 2)
		So(s.Pop(), ShouldEqual, "queue")
		So(s.Pop(), ShouldEqual, "playing")
		So(s.Pop(), ShouldEqual, "")
		So(s.Len(), ShouldEqual, 0)
	})
}

func TestDelete(t *testing.T) {
	Convey("Delete", t, func() {
		filesystem.SetMemMapFs()
		fs := filesystem.API()

		So(fs.MkdirAll("/cache/nested", 0o755), ShouldBeNil)
		So(fs.WriteFile("/cache/nested/a.json", []byte("{}"), 0o644), ShouldBeNil)
		So(fs.WriteFile("/history.json", []byte("{}"), 0o644), ShouldBeNil)

		So(Delete("/history.json"), ShouldBeNil)
		So(Delete("/cache"), ShouldBeNil)

		exists, _ := fs.Exists("/cache/nested/a.json")
		So(exists, ShouldBeFalse)
		So(Delete("/missing"), ShouldNotBeNil)
	})
}
