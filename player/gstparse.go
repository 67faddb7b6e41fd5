package player

import (
	"bytes"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/dashreel/dashreel/attempt"
)

var (
	gstBuffering = regexp.MustCompile(`^Buffering\.\.\.\s*(\d+)%`)
	gstPosition  = regexp.MustCompile(`^(\d+):(\d{2}):(\d{2})(?:\.(\d+))?\s*/\s*(\d+):(\d{2}):(\d{2})(?:\.(\d+))?`)
	gstError     = regexp.MustCompile(`^ERROR (.+?)(?: for (\S+))?$`)
	// messages GStreamer uses when no usable decoder could be set up
	gstInitMarkers = []string{
		"missing a plug-in",
		"no decoder available",
		"not-negotiated",
		"could not initialize",
		"failed to allocate",
		"could not determine type of stream",
	}
)

// gstLine is what one line of gst-play output means.
type gstLine struct {
	event Event
	ok    bool
	// playing is set for position lines, which gst-play prints only while the pipeline runs.
	playing bool
}

// parseGstLine interprets one line of gst-play output.
func parseGstLine(line string) gstLine {
	line = strings.TrimSpace(line)
	switch {
	case line == "":
		return gstLine{}
	case strings.HasPrefix(line, "Prerolling"):
		return gstLine{event: Event{State: attempt.Buffering}, ok: true}
	case strings.HasPrefix(line, "Reached end of play list"):
		return gstLine{event: Event{State: attempt.Ended}, ok: true}
	case strings.HasPrefix(line, "ERROR debug information"):
		return gstLine{}
	}

	if m := gstBuffering.FindStringSubmatch(line); m != nil {
		percent, _ := strconv.Atoi(m[1])
		if percent >= 100 {
			return gstLine{}
		}
		return gstLine{event: Event{State: attempt.Buffering}, ok: true}
	}

	if m := gstPosition.FindStringSubmatch(line); m != nil {
		return gstLine{
			event:   Event{Position: clock(m[1:5]), Duration: clock(m[5:9])},
			ok:      true,
			playing: true,
		}
	}

	if m := gstError.FindStringSubmatch(line); m != nil {
		cause := m[1]
		kind := ErrorRuntime
		lower := strings.ToLower(cause)
		for _, marker := range gstInitMarkers {
			if strings.Contains(lower, marker) {
				kind = ErrorDecoderInit
				break
			}
		}
		return gstLine{event: Event{State: attempt.Error, Cause: cause, Kind: kind}, ok: true}
	}

	return gstLine{}
}

// clock parses h, mm, ss and an optional fraction into a duration.
func clock(parts []string) time.Duration {
	h, _ := strconv.Atoi(parts[0])
	m, _ := strconv.Atoi(parts[1])
	s, _ := strconv.Atoi(parts[2])
	d := time.Duration(h)*time.Hour + time.Duration(m)*time.Minute + time.Duration(s)*time.Second

	if frac := parts[3]; frac != "" {
		if len(frac) > 9 {
			frac = frac[:9]
		}
		ns, _ := strconv.Atoi(frac + strings.Repeat("0", 9-len(frac)))
		d += time.Duration(ns)
	}
	return d
}

// scanCRLF splits gst-play output, which redraws progress lines with \r.
func scanCRLF(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		return i + 1, data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}
