package queue

import (
	"testing"

	"github.com/dashreel/dashreel/filesystem"
	"github.com/dashreel/dashreel/media"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	filesystem.SetMemMapFs()
}

func names(items []*media.Item) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.Name
	}
	return out
}

func drain(q *Queue, n int) []string {
	var out []string
	for i := 0; i < n; i++ {
		item, ok := q.Next()
		if !ok {
			break
		}
		out = append(out, item.Name)
	}
	return out
}

func TestQueue(t *testing.T) {
	items := []*media.Item{media.New("/a.mp4"), media.New("/b.mp4"), media.New("/c.jpg")}

	Convey("A sequential queue ends after its last item", t, func() {
		q := New(items, Sequential)
		So(drain(q, 5), ShouldResemble, []string{"a.mp4", "b.mp4", "c.jpg"})
		_, ok := q.Next()
		So(ok, ShouldBeFalse)
		So(q.Len(), ShouldEqual, 3)

		Convey("Previous after the end returns the last item", func() {
			item, ok := q.Previous()
			So(ok, ShouldBeTrue)
			So(item.Name, ShouldEqual, "c.jpg")
		})
	})

	Convey("Previous at the first item stays put in sequential mode", t, func() {
		q := New(items, Sequential)
		q.Next()
		_, ok := q.Previous()
		So(ok, ShouldBeFalse)
		item, _ := q.Next()
		So(item.Name, ShouldEqual, "b.mp4")
	})

	Convey("A loop queue wraps both ways", t, func() {
		q := New(items, Loop)
		So(drain(q, 4), ShouldResemble, []string{"a.mp4", "b.mp4", "c.jpg", "a.mp4"})
		item, ok := q.Previous()
		So(ok, ShouldBeTrue)
		So(item.Name, ShouldEqual, "c.jpg")
	})

	Convey("A shuffle queue plays every item once", t, func() {
		q := New(items, Shuffle)
		So(drain(q, 5), ShouldHaveLength, 3)
		So(names(q.Items()), ShouldContain, "b.mp4")
	})

	Convey("An empty queue has nothing next", t, func() {
		_, ok := New(nil, Loop).Next()
		So(ok, ShouldBeFalse)
	})

	Convey("ParseMode rejects unknown modes", t, func() {
		_, err := ParseMode("random")
		So(err, ShouldNotBeNil)
		m, err := ParseMode("loop")
		So(err, ShouldBeNil)
		So(m, ShouldEqual, Loop)
	})
}

func TestLoad(t *testing.T) {
	Convey("Given a playlist", t, func() {
		playlist := "#EXTM3U\n#EXTINF:12,Coast\ncoast.mp4\n\n/abs/park.jpg\nhttps://cdn.example.com/live.ts\n"
		So(filesystem.API().WriteFile("/lists/trip.m3u", []byte(playlist), 0o644), ShouldBeNil)

		Convey("Load expands it among other inputs", func() {
			items, err := Load([]string{"/media/intro.mp4", "/lists/trip.m3u"})
			So(err, ShouldBeNil)
			So(names(items), ShouldResemble, []string{"intro.mp4", "coast.mp4", "park.jpg", "live.ts"})
			So(items[1].Path, ShouldEqual, "/lists/coast.mp4")
			So(items[2].IsVideo(), ShouldBeFalse)
		})

		Convey("A missing playlist is an error", func() {
			_, err := Load([]string{"/lists/missing.m3u"})
			So(err, ShouldNotBeNil)
		})
	})

	Convey("Match filters by fuzzy name", t, func() {
		items := []*media.Item{media.New("/Coastal Drive.mp4"), media.New("/city.mp4")}
		So(names(Match(items, "coadrv")), ShouldResemble, []string{"Coastal Drive.mp4"})
		So(Match(items, ""), ShouldHaveLength, 2)
	})
}
