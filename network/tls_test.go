package network

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestDo(t *testing.T) {
	Convey("Given a plain http server that redirects", t, func() {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/start" {
				http.Redirect(w, r, "/media/a.mp4", http.StatusFound)
				return
			}
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		Convey("Do follows the redirect", func() {
			req, err := http.NewRequest(http.MethodHead, server.URL+"/start", nil)
			So(err, ShouldBeNil)
			resp, err := Do(req, false)
			So(err, ShouldBeNil)
			defer resp.Body.Close()
			So(resp.Request.URL.Path, ShouldEqual, "/media/a.mp4")
		})

		Convey("Do can stop at the redirect", func() {
			req, err := http.NewRequest(http.MethodHead, server.URL+"/start", nil)
			So(err, ShouldBeNil)
			resp, err := Do(req, true)
			So(err, ShouldBeNil)
			defer resp.Body.Close()
			So(resp.StatusCode, ShouldEqual, http.StatusFound)
		})

		Convey("Do refuses requests with a body", func() {
			req, err := http.NewRequest(http.MethodPost, server.URL, strings.NewReader("x"))
			So(err, ShouldBeNil)
			_, err = Do(req, false)
			So(err, ShouldNotBeNil)
		})
	})
}
