package player

import (
	"testing"
	"time"

	"github.com/dashreel/dashreel/attempt"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMPVArgs(t *testing.T) {
	Convey("Given an mpv backend", t, func() {
		mpv := NewMPV("mpv", true, time.Second)

		Convey("Normal starts should allow hardware decoding", func() {
			args := mpv.args("/tmp/s.sock", "/media/a.mp4", StartOptions{Title: "a\nb"})
			So(args, ShouldContain, "--input-ipc-server=/tmp/s.sock")
			So(args, ShouldContain, "--force-media-title=a b")
			So(args, ShouldContain, "--hwdec=auto-safe")
			So(args, ShouldContain, "--fullscreen")
			So(args[len(args)-2:], ShouldResemble, []string{"--", "/media/a.mp4"})
		})

		Convey("Conservative starts should force software decoding", func() {
			args := mpv.args("/tmp/s.sock", "/media/a.mp4", StartOptions{Conservative: true})
			So(args, ShouldContain, "--hwdec=no")
			So(args, ShouldNotContain, "--hwdec=auto-safe")
		})
	})
}

func TestTranslateMPV(t *testing.T) {
	Convey("translateMPV", t, func() {
		Convey("Position and duration should become samples", func() {
			ev, ok := translateMPV("time-pos", 1.5)
			So(ok, ShouldBeTrue)
			So(ev.IsSample(), ShouldBeTrue)
			So(ev.Position, ShouldEqual, 1500*time.Millisecond)

			ev, ok = translateMPV("duration", 60.0)
			So(ok, ShouldBeTrue)
			So(ev.Duration, ShouldEqual, time.Minute)
		})

		Convey("Unavailable properties should be ignored", func() {
			_, ok := translateMPV("time-pos", nil)
			So(ok, ShouldBeFalse)
		})

		Convey("Cache stalls should map to buffering and back", func() {
			ev, _ := translateMPV("paused-for-cache", true)
			So(ev.State, ShouldEqual, attempt.Buffering)
			ev, _ = translateMPV("paused-for-cache", false)
			So(ev.State, ShouldEqual, attempt.Ready)
		})

		Convey("Lifecycle events should map to states", func() {
			ev, _ := translateMPV("start-file", map[string]any{"event": "start-file"})
			So(ev.State, ShouldEqual, attempt.Buffering)
			ev, _ = translateMPV("playback-restart", map[string]any{})
			So(ev.State, ShouldEqual, attempt.Ready)
			ev, _ = translateMPV("end-file", map[string]any{"reason": "eof"})
			So(ev.State, ShouldEqual, attempt.Ended)
		})

		Convey("A failed file should carry mpv's error", func() {
			ev, ok := translateMPV("end-file", map[string]any{"reason": "error", "file_error": "unrecognized file format"})
			So(ok, ShouldBeTrue)
			So(ev.State, ShouldEqual, attempt.Error)
			So(ev.Cause, ShouldEqual, "unrecognized file format")
			So(ev.Kind, ShouldEqual, ErrorRuntime)

			ev, _ = translateMPV("end-file", map[string]any{"reason": "error", "file_error": "no audio or video data played"})
			So(ev.Kind, ShouldEqual, ErrorDecoderInit)
		})

		Convey("Ends we caused should be ignored", func() {
			_, ok := translateMPV("end-file", map[string]any{"reason": "quit"})
			So(ok, ShouldBeFalse)
			_, ok = translateMPV("end-file", map[string]any{"reason": "stop"})
			So(ok, ShouldBeFalse)
		})
	})
}

func TestSanitize(t *testing.T) {
	Convey("sanitizeMediaTarget", t, func() {
		_, err := sanitizeMediaTarget("--script=evil.lua")
		So(err, ShouldNotBeNil)

		_, err = sanitizeMediaTarget("ftp://host/a.mp4")
		So(err, ShouldNotBeNil)

		_, err = sanitizeMediaTarget("  ")
		So(err, ShouldNotBeNil)

		target, err := sanitizeMediaTarget("https://cdn.example.com/a.mp4?access_token=x")
		So(err, ShouldBeNil)
		So(target, ShouldEqual, "https://cdn.example.com/a.mp4?access_token=x")

		target, err = sanitizeMediaTarget("/media//usb/./a.mp4")
		So(err, ShouldBeNil)
		So(target, ShouldEqual, "/media/usb/a.mp4")
	})
}

func TestSplitLines(t *testing.T) {
	Convey("splitLines should keep the unterminated tail", t, func() {
		lines, rest := splitLines([]byte("{\"a\":1}\n\n{\"b\":2}\n{\"c\""))
		So(lines, ShouldResemble, []string{"{\"a\":1}", "{\"b\":2}"})
		So(string(rest), ShouldEqual, "{\"c\"")

		lines, rest = splitLines([]byte("{\"a\":1}\n"))
		So(lines, ShouldHaveLength, 1)
		So(rest, ShouldBeNil)
	})
}

func TestEmitter(t *testing.T) {
	Convey("Given a full emitter", t, func() {
		e := newEmitter("mpv")
		for i := 0; i < eventBuffer; i++ {
			e.emit(Event{Position: time.Second})
		}

		Convey("Samples should be dropped instead of blocking", func() {
			e.emit(Event{Position: 2 * time.Second})
			So(len(e.events), ShouldEqual, eventBuffer)
		})

		Convey("Lifecycle events should be dropped once the backend is closed", func() {
			close(e.closed)
			e.emit(Event{State: attempt.Ended})
			So(len(e.events), ShouldEqual, eventBuffer)
		})

		Convey("Events should be stamped with the backend id", func() {
			So((<-e.events).Backend, ShouldEqual, "mpv")
		})
	})
}
