package filesystem

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestApi(t *testing.T) {
	Convey("Filesystem API", t, func() {
		Convey("Should default to OsFs", func() {
			SetOsFs()
			So(API().Name(), ShouldEqual, "OsFs")
		})

		Convey("Should switch to MemMapFs", func() {
			SetMemMapFs()
			So(API().Name(), ShouldEqual, "MemMapFS")
		})
	})
}

func TestReadTrimmed(t *testing.T) {
	Convey("Given a state file with surrounding whitespace", t, func() {
		SetMemMapFs()
		So(API().WriteFile("/run/gear", []byte("  drive\n"), 0o644), ShouldBeNil)

		Convey("ReadTrimmed should return the bare value", func() {
			v, err := ReadTrimmed("/run/gear")
			So(err, ShouldBeNil)
			So(v, ShouldEqual, "drive")
		})

		Convey("A missing file should error", func() {
			_, err := ReadTrimmed("/run/missing")
			So(err, ShouldNotBeNil)
		})
	})
}
