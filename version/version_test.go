package version

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dashreel/dashreel/filesystem"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestCompare(t *testing.T) {
	Convey("Compare", t, func() {
		for _, c := range []struct {
			a, b string
			want int
		}{
			{"0.3.1", "0.3.1", 0},
			{"v0.4.0", "0.3.9", 1},
			{"1.0.0", "1.0.1", -1},
			{"0.4", "0.4.0", 0},
			{"0.4.0-rc1", "0.4.0", -1},
			{"0.4.0-rc2", "0.4.0-rc1", 1},
		} {
			got, err := Compare(c.a, c.b)
			So(err, ShouldBeNil)
			So(got, ShouldEqual, c.want)
		}

		_, err := Compare("latest", "0.1.0")
		So(err, ShouldNotBeNil)
	})
}

func TestLatest(t *testing.T) {
	Convey("Given a releases endpoint", t, func() {
		calls := 0
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls++
			_, _ = w.Write([]byte(`{"tag_name":"v0.4.2"}`))
		}))
		defer server.Close()

		previous := releasesURL
		releasesURL = server.URL
		defer func() { releasesURL = previous }()
		_ = versionCacher.Delete()

		Convey("Latest strips the v prefix and caches the answer", func() {
			v, err := Latest(context.Background())
			So(err, ShouldBeNil)
			So(v, ShouldEqual, "0.4.2")

			v, err = Latest(context.Background())
			So(err, ShouldBeNil)
			So(v, ShouldEqual, "0.4.2")
			So(calls, ShouldEqual, 1)
		})
	})
}
