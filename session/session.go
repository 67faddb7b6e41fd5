// Package session plays a queue item by item, choosing a backend for each video
// and recovering from backend failures through a single handover.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dashreel/dashreel/attempt"
	"github.com/dashreel/dashreel/handover"
	"github.com/dashreel/dashreel/log"
	"github.com/dashreel/dashreel/media"
	"github.com/dashreel/dashreel/monitor"
	"github.com/dashreel/dashreel/player"
	"github.com/dashreel/dashreel/strategy"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
)

// Queue supplies items. Len is the total number of items, used to spot single item queues.
type Queue interface {
	Next() (*media.Item, bool)
	Len() int
}

// Resolver turns an item into a playable URL. It is called once per item.
type Resolver interface {
	Resolve(ctx context.Context, item *media.Item) (string, error)
}

// Reporter is told about items that played and items that could not be played.
type Reporter interface {
	Played(item *media.Item, backend string)
	Unplayable(item *media.Item, reason string, tried []string)
}

// Rewinder is implemented by queues that can step back.
type Rewinder interface {
	Previous() (*media.Item, bool)
}

// Driving reports the vehicle's driving state. The channel yields the current state first.
type Driving interface {
	Subscribe() (<-chan bool, func())
}

// Observer receives engine decisions, e.g. for metrics.
type Observer interface {
	Selected(backend string)
	Classified(backend string, c monitor.Classification)
	Acted(backend string, a handover.Action)
}

// Options wire a session. Reporter, Driving, Observer and Viewer are optional.
type Options struct {
	Chain      *strategy.Chain
	Backends   map[string]player.Backend
	Queue      Queue
	Resolver   Resolver
	Monitor    *monitor.Monitor
	Controller *handover.Controller
	Clock      monitor.Clock

	Reporter Reporter
	Driving  Driving
	Observer Observer
	// Viewer displays images; without one images are only timed.
	Viewer        player.Backend
	ImageDuration time.Duration
}

var ErrMissingOption = errors.New("missing session option")

// Snapshot is the observable state of a session.
type Snapshot struct {
	SessionID      string
	Item           *media.Item
	Backend        string
	State          attempt.Lifecycle
	Classification monitor.Classification
	Action         handover.Action
	HandedOver     bool
	Retries        int
	Position       time.Duration
	Duration       time.Duration
	Paused         bool
	Driving        bool
	Done           bool
}

// Notice announces that an item's attempt ended or handed over.
type Notice struct {
	Kind   handover.Kind
	Item   *media.Item
	Reason string
}

type (
	eventMsg struct{ ev player.Event }

	startFailedMsg struct {
		generation uint64
		backend    string
		err        error
	}

	resolvedMsg struct {
		generation uint64
		url        string
		err        error
	}

	imageDoneMsg struct{ generation uint64 }

	drivingMsg struct{ driving bool }

	commandMsg struct{ command command }
)

type command int

const (
	cmdNext command = iota
	cmdPrevious
	cmdTogglePause
)

const (
	mailboxSize = 64
	noticesSize = 64
)

// Session is an actor: every state change happens on the goroutine running Run.
type Session struct {
	id   string
	opts Options

	mailbox chan any
	ops     *opList
	done    chan struct{}
	notices chan Notice
	updates chan Snapshot

	mu       sync.RWMutex
	snapshot Snapshot

	runOnce sync.Once

	// start failures reported by the ops worker, signalled through failed
	failMu   sync.Mutex
	failures []startFailedMsg
	failed   chan struct{}

	// owned by the Run goroutine
	ctx        context.Context
	state      *attempt.State
	generation uint64
	active     player.Backend
	tried      []string
	imageTimer *time.Timer
	paused     bool
	driving    bool
	played     bool
}

func New(opts Options) (*Session, error) {
	missing := lo.Filter([]lo.Tuple2[string, bool]{
		lo.T2("Chain", opts.Chain == nil),
		lo.T2("Backends", len(opts.Backends) == 0),
		lo.T2("Queue", opts.Queue == nil),
		lo.T2("Resolver", opts.Resolver == nil),
		lo.T2("Monitor", opts.Monitor == nil),
		lo.T2("Controller", opts.Controller == nil),
	}, func(t lo.Tuple2[string, bool], _ int) bool { return t.B })
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingOption, missing[0].A)
	}

	if opts.Clock == nil {
		opts.Clock = monitor.SystemClock
	}

	id := uuid.NewString()
	return &Session{
		id:       id,
		opts:     opts,
		mailbox:  make(chan any, mailboxSize),
		ops:      newOpList(),
		failed:   make(chan struct{}, 1),
		done:     make(chan struct{}),
		notices:  make(chan Notice, noticesSize),
		updates:  make(chan Snapshot, 1),
		snapshot: Snapshot{SessionID: id, State: attempt.Idle},
	}, nil
}

func (s *Session) ID() string {
	return s.id
}

// SelectBackend returns the backend the chain picks for an item, or "" for images.
func (s *Session) SelectBackend(item *media.Item) string {
	if !item.IsVideo() {
		return ""
	}
	return s.opts.Chain.Select(item).ID
}

// Current returns the latest snapshot.
func (s *Session) Current() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

// Updates yields the latest snapshot whenever it changes. Slow readers only see the newest one.
func (s *Session) Updates() <-chan Snapshot {
	return s.updates
}

// Notices yields advance, abort and switch notices.
func (s *Session) Notices() <-chan Notice {
	return s.notices
}

// Done is closed when Run returns.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Next skips to the next item.
func (s *Session) Next() {
	s.send(commandMsg{cmdNext})
}

// Previous goes back one item when the queue supports it.
func (s *Session) Previous() {
	s.send(commandMsg{cmdPrevious})
}

// TogglePause pauses or resumes the current video.
func (s *Session) TogglePause() {
	s.send(commandMsg{cmdTogglePause})
}

func (s *Session) send(msg any) {
	select {
	case s.mailbox <- msg:
	case <-s.done:
	}
}

// Run plays the queue until it is exhausted or ctx is cancelled. It may be called once.
func (s *Session) Run(ctx context.Context) error {
	err := errors.New("session already ran")
	s.runOnce.Do(func() { err = s.run(ctx) })
	return err
}

func (s *Session) run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	s.ctx = ctx

	var workers sync.WaitGroup
	defer func() {
		cancel()
		s.stopImageTimer()
		s.stopActive()
		s.ops.close()
		close(s.done)
		workers.Wait()
		s.publish(func(snap *Snapshot) { snap.Done = true })
	}()

	workers.Add(1)
	go func() {
		defer workers.Done()
		s.ops.run()
	}()

	for _, b := range s.distinctBackends() {
		workers.Add(1)
		go func(b player.Backend) {
			defer workers.Done()
			s.forward(b)
		}(b)
	}

	if s.opts.Driving != nil {
		states, unsubscribe := s.opts.Driving.Subscribe()
		workers.Add(1)
		go func() {
			defer workers.Done()
			defer unsubscribe()
			for {
				select {
				case driving, ok := <-states:
					if !ok {
						return
					}
					s.send(drivingMsg{driving})
				case <-s.done:
					return
				}
			}
		}()
	}

	if !s.advance() {
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg := <-s.mailbox:
			if !s.handle(msg) {
				return nil
			}
		case <-s.failed:
			for _, msg := range s.takeFailures() {
				if !s.handle(msg) {
					return nil
				}
			}
		}
	}
}

func (s *Session) distinctBackends() []player.Backend {
	backends := lo.Values(s.opts.Backends)
	if s.opts.Viewer != nil {
		backends = append(backends, s.opts.Viewer)
	}
	return lo.Uniq(backends)
}

func (s *Session) forward(b player.Backend) {
	for {
		select {
		case ev := <-b.Events():
			s.send(eventMsg{ev})
		case <-s.done:
			return
		}
	}
}

// handle processes one message and reports whether the session goes on.
func (s *Session) handle(msg any) bool {
	switch m := msg.(type) {
	case eventMsg:
		return s.onEvent(m.ev)

	case startFailedMsg:
		if !s.current(m.generation, m.backend) {
			return true
		}
		return s.onEvent(player.Event{
			Backend:    m.backend,
			Generation: m.generation,
			State:      attempt.Error,
			Cause:      m.err.Error(),
			Kind:       player.ErrorDecoderInit,
		})

	case resolvedMsg:
		if s.state == nil || m.generation != s.state.Generation {
			return true
		}
		if m.err != nil {
			return s.abort(fmt.Sprintf("resolve: %s", m.err))
		}
		s.state.URL = m.url
		s.start()
		return true

	case imageDoneMsg:
		if s.state == nil || m.generation != s.state.Generation {
			return true
		}
		s.notify(handover.Advance, "image shown")
		return s.advance()

	case drivingMsg:
		s.onDriving(m.driving)
		return true

	case commandMsg:
		switch m.command {
		case cmdNext:
			s.notify(handover.Advance, "skipped")
			return s.advance()
		case cmdPrevious:
			rewinder, ok := s.opts.Queue.(Rewinder)
			if !ok {
				return true
			}
			item, ok := rewinder.Previous()
			if !ok {
				return true
			}
			s.notify(handover.Advance, "previous")
			s.end()
			s.begin(item)
		case cmdTogglePause:
			s.setPaused(!s.paused)
		}
		return true
	}

	return true
}

// current reports whether a generation and backend belong to the attempt in flight.
func (s *Session) current(generation uint64, backend string) bool {
	return s.state != nil &&
		s.state.Item.IsVideo() &&
		generation == s.state.Generation &&
		backend == s.state.Backend.ID
}

func (s *Session) onEvent(ev player.Event) bool {
	if !s.current(ev.Generation, ev.Backend) {
		return true
	}

	st := s.state
	cl := s.opts.Monitor.Observe(st, ev)
	action := s.opts.Controller.Decide(cl, st, s.opts.Queue.Len())

	if !ev.IsSample() {
		s.logger().WithField("event", ev.State).Infof("%s -> %s", cl, action)
	}
	if s.opts.Observer != nil && !ev.IsSample() {
		s.opts.Observer.Classified(st.Backend.ID, cl)
		s.opts.Observer.Acted(st.Backend.ID, action)
	}

	if ev.State == attempt.Ready && !s.played {
		s.played = true
		if s.opts.Reporter != nil {
			s.opts.Reporter.Played(st.Item, st.Backend.ID)
		}
	}

	s.publish(func(snap *Snapshot) {
		snap.State = st.LastState
		snap.Position, snap.Duration = st.Position, st.Duration
		snap.Retries = st.Retries
		if !ev.IsSample() {
			snap.Classification = cl
			snap.Action = action
		}
	})

	switch action.Kind {
	case handover.Retry:
		s.generation++
		st.Restart(s.generation, s.opts.Clock.Now())
		s.start()

	case handover.Switch:
		s.generation++
		st.SwitchTo(action.Target, s.generation, s.opts.Clock.Now())
		s.tried = append(s.tried, action.Target.ID)
		s.notify(handover.Switch, action.Reason)
		s.start()

	case handover.Advance:
		s.notify(handover.Advance, action.Reason)
		return s.advance()

	case handover.Abort:
		return s.abort(action.Reason)
	}

	return true
}

func (s *Session) abort(reason string) bool {
	s.logger().Warnf("giving up on item: %s", reason)
	if s.opts.Reporter != nil {
		s.opts.Reporter.Unplayable(s.state.Item, reason, s.tried)
	}
	s.notify(handover.Abort, reason)
	return s.advance()
}

// advance ends the current attempt and begins the next item. It reports false when the queue is exhausted.
func (s *Session) advance() bool {
	s.end()

	item, ok := s.opts.Queue.Next()
	if !ok {
		s.state = nil
		return false
	}

	s.begin(item)
	return true
}

// end stops whatever the current attempt left running.
func (s *Session) end() {
	s.stopImageTimer()
	s.stopActive()
	s.paused = false
	s.played = false
}

// begin starts the attempt of item: images are timed, videos are resolved then started.
func (s *Session) begin(item *media.Item) {
	s.generation++
	now := s.opts.Clock.Now()

	if !item.IsVideo() {
		s.state = attempt.New(item, strategy.Descriptor{}, item.Path, s.generation, now)
		s.tried = nil
		s.publishAttempt()
		s.showImage()
		return
	}

	backend := s.opts.Chain.Select(item)
	s.state = attempt.New(item, backend, "", s.generation, now)
	s.tried = []string{backend.ID}
	if s.opts.Observer != nil {
		s.opts.Observer.Selected(backend.ID)
	}
	s.publishAttempt()

	generation := s.generation
	go func() {
		url, err := s.opts.Resolver.Resolve(s.ctx, item)
		s.send(resolvedMsg{generation: generation, url: url, err: err})
	}()
}

func (s *Session) showImage() {
	generation := s.generation
	s.imageTimer = time.AfterFunc(s.opts.ImageDuration, func() {
		s.send(imageDoneMsg{generation})
	})

	if viewer := s.opts.Viewer; viewer != nil {
		ctx, url := s.ctx, s.state.URL
		title := s.state.Item.Name
		s.active = viewer
		s.enqueue(func() {
			if ctx.Err() != nil {
				return
			}
			if err := viewer.Start(ctx, url, player.StartOptions{Generation: generation, Title: title}); err != nil {
				log.Warnf("show image %s: %s", title, err)
			}
		})
	}
}

// start launches the attempt's backend after stopping whichever other backend is active.
func (s *Session) start() {
	st := s.state
	backend, ok := s.opts.Backends[st.Backend.ID]
	if !ok {
		s.reportFailure(startFailedMsg{generation: st.Generation, backend: st.Backend.ID, err: fmt.Errorf("%w: %s", player.ErrUnknownPlayer, st.Backend.ID)})
		return
	}

	previous := s.active
	s.active = backend

	ctx, url := s.ctx, st.URL
	opts := player.StartOptions{
		Generation:   st.Generation,
		Title:        st.Item.Name,
		Conservative: st.Conservative,
		CodecMime:    codecMime(st.Item),
	}

	s.publish(func(snap *Snapshot) {
		snap.Backend = st.Backend.ID
		snap.HandedOver = st.HandedOver()
		snap.Retries = st.Retries
		snap.State = st.LastState
		snap.Paused = false
	})

	s.enqueue(func() {
		if previous != nil && previous != backend {
			if err := previous.Stop(); err != nil {
				log.Warnf("stop %s: %s", previous.ID(), err)
			}
		}
		if ctx.Err() != nil {
			return
		}
		if err := backend.Start(ctx, url, opts); err != nil {
			s.reportFailure(startFailedMsg{generation: opts.Generation, backend: backend.ID(), err: err})
		}
	})
}

func (s *Session) stopActive() {
	if s.active == nil {
		return
	}
	active := s.active
	s.active = nil
	s.enqueue(func() {
		if err := active.Stop(); err != nil {
			log.Warnf("stop %s: %s", active.ID(), err)
		}
	})
}

func (s *Session) stopImageTimer() {
	if s.imageTimer != nil {
		s.imageTimer.Stop()
		s.imageTimer = nil
	}
}

// enqueue hands a backend operation to the ops worker. It never blocks.
func (s *Session) enqueue(op func()) {
	s.ops.push(op)
}

// reportFailure queues a start failure for the Run goroutine without waiting for it.
func (s *Session) reportFailure(msg startFailedMsg) {
	s.failMu.Lock()
	s.failures = append(s.failures, msg)
	s.failMu.Unlock()

	select {
	case s.failed <- struct{}{}:
	default:
	}
}

func (s *Session) takeFailures() []startFailedMsg {
	s.failMu.Lock()
	defer s.failMu.Unlock()
	failures := s.failures
	s.failures = nil
	return failures
}

func (s *Session) onDriving(driving bool) {
	s.driving = driving
	s.publish(func(snap *Snapshot) { snap.Driving = driving })

	if driving && s.state != nil && s.state.Item.IsVideo() && !s.paused {
		s.logger().Info("driving, pausing video")
		s.setPaused(true)
	}
}

func (s *Session) setPaused(paused bool) {
	if s.active == nil || s.state == nil || !s.state.Item.IsVideo() {
		return
	}

	s.paused = paused
	active := s.active
	s.enqueue(func() {
		if err := active.SetPaused(paused); err != nil {
			log.Warnf("pause %s: %s", active.ID(), err)
		}
	})
	s.publish(func(snap *Snapshot) { snap.Paused = paused })
}

func (s *Session) notify(kind handover.Kind, reason string) {
	if s.state == nil {
		return
	}

	n := Notice{Kind: kind, Item: s.state.Item, Reason: reason}
	select {
	case s.notices <- n:
	default:
		log.Warnf("notice dropped: %s %s", kind, s.state.Item)
	}
}

func (s *Session) publishAttempt() {
	st := s.state
	s.publish(func(snap *Snapshot) {
		snap.Item = st.Item
		snap.Backend = st.Backend.ID
		snap.State = st.LastState
		snap.Classification = monitor.Classification{}
		snap.Action = handover.Action{}
		snap.HandedOver = false
		snap.Retries = 0
		snap.Position, snap.Duration = 0, 0
		snap.Paused = false
	})
}

func (s *Session) publish(mutate func(*Snapshot)) {
	s.mu.Lock()
	mutate(&s.snapshot)
	snap := s.snapshot
	s.mu.Unlock()

	select {
	case <-s.updates:
	default:
	}
	select {
	case s.updates <- snap:
	default:
	}
}

func (s *Session) logger() *logrus.Entry {
	fields := log.Fields{"session": s.id, "generation": s.generation}
	if s.state != nil {
		fields["item"] = s.state.Item.Name
		fields["backend"] = s.state.Backend.ID
	}
	return log.With(fields)
}

// codecMime picks the most specific codec description of an item.
func codecMime(item *media.Item) string {
	if codec, ok := item.Codec.Get(); ok {
		return codec
	}
	return item.MIME.OrEmpty()
}
