// Package player drives the external decode backends behind one handle abstraction.
package player

import (
	"context"
	"errors"
	"time"

	"github.com/dashreel/dashreel/attempt"
)

// ErrorKind separates runtime decode errors from a backend that could not set up a decoder at all.
type ErrorKind int

const (
	ErrorRuntime ErrorKind = iota
	ErrorDecoderInit
)

var (
	ErrNotStarted    = errors.New("backend is not playing")
	ErrUnsupported   = errors.New("operation not supported by backend")
	ErrUnknownPlayer = errors.New("unknown backend")
)

// Event is a lifecycle change or a position sample reported by a backend.
// Samples have an empty State.
type Event struct {
	Backend    string
	Generation uint64
	State      attempt.Lifecycle
	Position   time.Duration
	Duration   time.Duration
	// Cause and Kind are set for Error events.
	Cause string
	Kind  ErrorKind
}

// IsSample reports whether the event only carries position data.
func (e Event) IsSample() bool {
	return e.State == ""
}

// StartOptions configure one playback start.
type StartOptions struct {
	// Generation is echoed in every event of this start.
	Generation uint64
	Title      string
	// Conservative asks for software decoding.
	Conservative bool
	// CodecMime is the declared codec of the item, used for decoder ranking.
	CodecMime string
}

// Backend is a decode/playback implementation. Start and Stop may block for a few
// seconds and must not be called from an event processing path.
type Backend interface {
	ID() string
	// Start plays url, replacing whatever the backend was playing.
	Start(ctx context.Context, url string, opts StartOptions) error
	// Stop ends playback. Events of the stopped generation may still arrive.
	Stop() error
	TogglePause() error
	SetPaused(paused bool) error
	Position() (time.Duration, error)
	Duration() (time.Duration, error)
	// Events is one channel for the lifetime of the backend.
	Events() <-chan Event
	Close() error
}

const eventBuffer = 64

// emitter delivers events without ever blocking on samples.
type emitter struct {
	id     string
	events chan Event
	closed chan struct{}
}

func newEmitter(id string) emitter {
	return emitter{id: id, events: make(chan Event, eventBuffer), closed: make(chan struct{})}
}

func (e emitter) emit(ev Event) {
	ev.Backend = e.id
	if ev.IsSample() {
		select {
		case e.events <- ev:
		default:
		}
		return
	}

	select {
	case e.events <- ev:
	case <-e.closed:
	}
}

func seconds(v float64) time.Duration {
	return time.Duration(v * float64(time.Second))
}
