// Package attempt holds the bookkeeping of one item's playback.
package attempt

import (
	"time"

	"github.com/dashreel/dashreel/media"
	"github.com/dashreel/dashreel/strategy"
)

// Lifecycle is the backend-reported state of the item being played.
type Lifecycle string

const (
	Idle      Lifecycle = "idle"
	Buffering Lifecycle = "buffering"
	Ready     Lifecycle = "ready"
	Ended     Lifecycle = "ended"
	Error     Lifecycle = "error"
)

// State is the per-item playback record. It is owned by one session goroutine;
// the monitor and the handover controller mutate it from there only.
type State struct {
	Item    *media.Item
	Backend strategy.Descriptor
	// URL is resolved once per item and reused across handovers.
	URL string

	// Retries counts decode failures on the active backend.
	Retries int
	// Anomalies counts ends that happened without reaching Ready.
	Anomalies int
	// Conservative restarts the backend with software decoding.
	Conservative bool

	LastState  Lifecycle
	LastChange time.Time
	// Played is set once the current generation reached Ready.
	Played bool

	// Latest samples reported by the backend; zero when unknown.
	Position time.Duration
	Duration time.Duration

	// Generation tags backend events so stale ones can be dropped.
	Generation uint64

	handedOver bool
}

// New starts the record of an item on its selected backend.
func New(item *media.Item, backend strategy.Descriptor, url string, generation uint64, now time.Time) *State {
	return &State{
		Item:       item,
		Backend:    backend,
		URL:        url,
		LastState:  Idle,
		LastChange: now,
		Generation: generation,
	}
}

// HandedOver reports whether the item already switched backends.
func (s *State) HandedOver() bool {
	return s.handedOver
}

// Latch marks the item as handed over. It returns false if it already was,
// in which case the caller must not switch again.
func (s *State) Latch() bool {
	if s.handedOver {
		return false
	}
	s.handedOver = true
	return true
}

// SwitchTo moves the record to another backend: the latch stays, the retry
// budget and lifecycle start over, the URL is kept.
func (s *State) SwitchTo(backend strategy.Descriptor, generation uint64, now time.Time) {
	s.Backend = backend
	s.Retries = 0
	s.Anomalies = 0
	s.Conservative = false
	s.Restart(generation, now)
}

// Restart keeps the backend and counters and begins a new generation.
func (s *State) Restart(generation uint64, now time.Time) {
	s.LastState = Idle
	s.LastChange = now
	s.Position = 0
	s.Duration = 0
	s.Played = false
	s.Generation = generation
}

// Transition records a lifecycle change and returns the time spent in the previous state.
func (s *State) Transition(to Lifecycle, now time.Time) (from Lifecycle, elapsed time.Duration) {
	from, elapsed = s.LastState, now.Sub(s.LastChange)
	if from != to {
		s.LastState = to
		s.LastChange = now
	}
	if to == Ready {
		s.Played = true
	}
	return from, elapsed
}
