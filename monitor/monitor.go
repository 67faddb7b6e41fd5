// Package monitor classifies backend lifecycle events of the item being played.
package monitor

import (
	"fmt"
	"strings"
	"time"

	"github.com/dashreel/dashreel/attempt"
	"github.com/dashreel/dashreel/config"
	"github.com/dashreel/dashreel/key"
	"github.com/dashreel/dashreel/player"
	"github.com/samber/lo"
	"github.com/spf13/viper"
)

// Kind is the meaning of an event for the handover decision.
type Kind string

const (
	Progress           Kind = "progress"
	Stall              Kind = "stall"
	DecodeFailure      Kind = "decode-failure"
	FormatIncompatible Kind = "format-incompatible"
	EndOfItem          Kind = "end-of-item"
)

// Classification is the monitor's verdict on one event.
type Classification struct {
	Kind Kind
	// Anomalous marks an end of a generation that never reached Ready.
	Anomalous bool
	From, To  attempt.Lifecycle
	Cause     string
}

func (c Classification) String() string {
	s := string(c.Kind)
	if c.Anomalous {
		s += " (anomalous)"
	}
	if c.Cause != "" {
		s += ": " + c.Cause
	}
	return s
}

// Thresholds tune the heuristics that tell a broken stream from a short one.
type Thresholds struct {
	// AnomalyWindow is the time since the previous transition under which an early end is suspicious.
	AnomalyWindow time.Duration
	// NearZero is the position below which playback never really started.
	NearZero time.Duration
	// MinDuration is the length above which an item cannot legitimately end at once.
	MinDuration time.Duration
	// Keywords in an error cause mark the stream as undecodable by the backend.
	Keywords []string
}

// DefaultThresholds reads the thresholds from the configuration.
func DefaultThresholds() Thresholds {
	return Thresholds{
		AnomalyWindow: config.Millis(key.MonitorAnomalyWindow),
		NearZero:      config.Millis(key.MonitorNearZeroPosition),
		MinDuration:   config.Millis(key.MonitorMinDuration),
		Keywords:      viper.GetStringSlice(key.MonitorIncompatibilityKeywords),
	}
}

// Monitor is stateless; everything it tracks lives in the attempt it is handed.
type Monitor struct {
	thresholds Thresholds
	clock      Clock
}

func New(thresholds Thresholds, clock Clock) *Monitor {
	thresholds.Keywords = lo.Map(thresholds.Keywords, func(k string, _ int) string {
		return strings.ToLower(k)
	})
	return &Monitor{thresholds: thresholds, clock: clock}
}

// Observe records ev on the attempt and classifies it. It only updates the attempt's
// bookkeeping: lifecycle, timestamps, samples and the counters reset by Ready.
func (m *Monitor) Observe(s *attempt.State, ev player.Event) Classification {
	if ev.Position > 0 {
		s.Position = ev.Position
	}
	if ev.Duration > 0 {
		s.Duration = ev.Duration
	}

	if ev.IsSample() {
		return Classification{Kind: Progress, From: s.LastState, To: s.LastState}
	}

	from, elapsed := s.Transition(ev.State, m.clock.Now())
	c := Classification{From: from, To: ev.State}

	switch ev.State {
	case attempt.Error:
		c.Cause = ev.Cause
		if ev.Kind == player.ErrorDecoderInit || m.incompatible(ev.Cause) {
			c.Kind = FormatIncompatible
		} else {
			c.Kind = DecodeFailure
		}

	case attempt.Ended:
		switch {
		case from == attempt.Ready:
			c.Kind = EndOfItem
		case from == attempt.Ended:
			c.Kind = Progress
		case s.Played:
			// stalled after playing, then ended
			c.Kind = EndOfItem
		default:
			s.Anomalies++
			c.Anomalous = true
			if m.suspicious(s, elapsed) {
				c.Kind = DecodeFailure
				c.Cause = fmt.Sprintf("ended %s after %s at %s of %s", from, elapsed.Round(time.Millisecond), s.Position, s.Duration)
			} else {
				c.Kind = EndOfItem
			}
		}

	case attempt.Ready:
		if from != attempt.Ready {
			s.Retries = 0
			s.Anomalies = 0
		}
		c.Kind = Progress

	case attempt.Buffering:
		if from == attempt.Ready {
			c.Kind = Stall
		} else {
			c.Kind = Progress
		}

	default:
		c.Kind = Progress
	}

	return c
}

// suspicious reports whether an end came too fast, too early, in a long item.
func (m *Monitor) suspicious(s *attempt.State, elapsed time.Duration) bool {
	return elapsed < m.thresholds.AnomalyWindow &&
		s.Position < m.thresholds.NearZero &&
		s.Duration > m.thresholds.MinDuration
}

func (m *Monitor) incompatible(cause string) bool {
	cause = strings.ToLower(cause)
	return lo.SomeBy(m.thresholds.Keywords, func(k string) bool {
		return strings.Contains(cause, k)
	})
}
