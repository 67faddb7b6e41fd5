package resolve

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dashreel/dashreel/media"
	. "github.com/smartystreets/goconvey/convey"
)

func TestWithToken(t *testing.T) {
	Convey("WithToken", t, func() {
		Convey("Appends the token to a link without a query", func() {
			link, err := WithToken("https://d.pcs.example.com/file/a.mp4", "access_token", "abc")
			So(err, ShouldBeNil)
			So(link, ShouldEqual, "https://d.pcs.example.com/file/a.mp4?access_token=abc")
		})

		Convey("Appends the token after other parameters", func() {
			link, err := WithToken("https://d.pcs.example.com/file?fid=42&dstime=1", "access_token", "abc")
			So(err, ShouldBeNil)
			So(link, ShouldEqual, "https://d.pcs.example.com/file?fid=42&dstime=1&access_token=abc")
		})

		Convey("Replaces a stale token in place", func() {
			link, err := WithToken("https://d.pcs.example.com/file?access_token=old&fid=42", "access_token", "new")
			So(err, ShouldBeNil)
			So(link, ShouldEqual, "https://d.pcs.example.com/file?access_token=new&fid=42")
		})

		Convey("Defaults the parameter name", func() {
			link, err := WithToken("https://d.pcs.example.com/f", "", "abc")
			So(err, ShouldBeNil)
			So(link, ShouldEqual, "https://d.pcs.example.com/f?access_token=abc")
		})
	})
}

func TestResolve(t *testing.T) {
	Convey("Given a CDN that redirects signed links", t, func() {
		var agent string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			agent = r.Header.Get("User-Agent")
			switch r.URL.Path {
			case "/file":
				if r.URL.Query().Get("access_token") != "abc" {
					w.WriteHeader(http.StatusForbidden)
					return
				}
				http.Redirect(w, r, "/edge/a.mp4", http.StatusFound)
			case "/edge/a.mp4":
				w.WriteHeader(http.StatusOK)
			default:
				w.WriteHeader(http.StatusNotFound)
			}
		}))
		defer server.Close()

		token := func() (string, error) { return "abc", nil }
		r := &Resolver{Token: token, Param: "access_token", UserAgent: "dashreel/test", Probe: true}

		Convey("The probe returns the final location", func() {
			link, err := r.Resolve(context.Background(), media.New(server.URL+"/file?fid=1"))
			So(err, ShouldBeNil)
			So(link, ShouldEqual, server.URL+"/edge/a.mp4")
			So(agent, ShouldEqual, "dashreel/test")
		})

		Convey("A rejected link is unreachable", func() {
			r.Token = func() (string, error) { return "wrong", nil }
			_, err := r.Resolve(context.Background(), media.New(server.URL+"/file"))
			So(errors.Is(err, ErrUnreachable), ShouldBeTrue)
		})

		Convey("Without probing only the token is applied", func() {
			r.Probe = false
			link, err := r.Resolve(context.Background(), media.New(server.URL+"/file"))
			So(err, ShouldBeNil)
			So(link, ShouldEqual, server.URL+"/file?access_token=abc")
		})
	})

	Convey("Local paths are left alone", t, func() {
		r := &Resolver{Token: func() (string, error) { return "abc", nil }, Probe: true}
		link, err := r.Resolve(context.Background(), media.New("/media/usb/a.mp4"))
		So(err, ShouldBeNil)
		So(link, ShouldEqual, "/media/usb/a.mp4")
	})

	Convey("Token failures stop resolution", t, func() {
		r := &Resolver{Token: func() (string, error) { return "", errors.New("keyring locked") }}
		_, err := r.Resolve(context.Background(), media.New("https://d.pcs.example.com/file"))
		So(err, ShouldNotBeNil)
	})
}
