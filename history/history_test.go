package history

import (
	"testing"
	"time"

	"github.com/dashreel/dashreel/filesystem"
	"github.com/dashreel/dashreel/key"
	"github.com/dashreel/dashreel/media"
	"github.com/dashreel/dashreel/strategy"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestHistory(t *testing.T) {
	Convey("Given an item", t, func() {
		So(Clear(), ShouldBeNil)
		item := media.New("/media/usb/trip.mp4")

		Convey("When saving it twice", func() {
			now = func() time.Time { return time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC) }
			So(Save(item, strategy.PlatformBackend), ShouldBeNil)
			first, err := Get()
			So(err, ShouldBeNil)
			id := first[item.Path].ID

			now = func() time.Time { return time.Date(2026, 5, 2, 9, 0, 0, 0, time.UTC) }
			So(Save(item, strategy.RobustBackend), ShouldBeNil)

			Convey("Then one record is kept with the latest play", func() {
				records, err := Recent()
				So(err, ShouldBeNil)
				So(len(records), ShouldEqual, 1)
				So(records[0].ID, ShouldEqual, id)
				So(records[0].Plays, ShouldEqual, 2)
				So(records[0].Backend, ShouldEqual, strategy.RobustBackend)
				So(records[0].PlayedAt.Day(), ShouldEqual, 2)
				So(records[0].CreatedAt.Day(), ShouldEqual, 1)

				Convey("And it can be removed", func() {
					So(Remove(records[0]), ShouldBeNil)
					saved, err := Get()
					So(err, ShouldBeNil)
					So(saved, ShouldBeEmpty)
				})
			})
		})

		Convey("When reporting it unplayable", func() {
			So(Flag(item, "no backend can decode it", []string{strategy.PlatformBackend, strategy.RobustBackend}), ShouldBeNil)

			Convey("Then the report lists the backends tried", func() {
				reports, err := Unplayable()
				So(err, ShouldBeNil)
				So(len(reports), ShouldEqual, 1)
				So(reports[0].Name, ShouldEqual, "trip.mp4")
				So(reports[0].Tried, ShouldResemble, []string{strategy.PlatformBackend, strategy.RobustBackend})

				Convey("And Clear removes it", func() {
					So(Clear(), ShouldBeNil)
					reports, err := Unplayable()
					So(err, ShouldBeNil)
					So(reports, ShouldBeEmpty)
				})
			})
		})

		Convey("The recorder honours history.save", func() {
			viper.Set(key.HistorySave, false)
			Recorder{}.Played(item, strategy.PlatformBackend)
			saved, err := Get()
			So(err, ShouldBeNil)
			So(saved, ShouldBeEmpty)

			viper.Set(key.HistorySave, true)
			Recorder{}.Played(item, strategy.PlatformBackend)
			saved, err = Get()
			So(err, ShouldBeNil)
			So(len(saved), ShouldEqual, 1)
		})
	})
}
