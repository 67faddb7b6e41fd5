package player

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/dashreel/dashreel/attempt"
	"github.com/dashreel/dashreel/decoder"
	"github.com/dashreel/dashreel/log"
	"github.com/dashreel/dashreel/strategy"
)

// GStreamer is the platform backend: gst-play with whatever decoders the system provides.
// Decoder preference is applied through GST_PLUGIN_FEATURE_RANK.
type GStreamer struct {
	emitter

	Binary      string
	Inventory   decoder.Inventory
	Classifier  decoder.Classifier
	GracePeriod time.Duration

	mu         sync.Mutex
	cmd        *exec.Cmd
	exited     chan struct{}
	generation uint64
	stopping   bool
	finished   bool
	ready      bool
	paused     bool
	position   time.Duration
	duration   time.Duration

	closeOnce sync.Once
}

func NewGStreamer(binary string, inventory decoder.Inventory, classifier decoder.Classifier, grace time.Duration) *GStreamer {
	return &GStreamer{
		emitter:     newEmitter(strategy.PlatformBackend),
		Binary:      binary,
		Inventory:   inventory,
		Classifier:  classifier,
		GracePeriod: grace,
	}
}

func (g *GStreamer) ID() string {
	return strategy.PlatformBackend
}

func (g *GStreamer) Events() <-chan Event {
	return g.events
}

// Ranking returns the decoder order used for a start, best first.
func (g *GStreamer) Ranking(ctx context.Context, codecMime string) ([]decoder.Candidate, error) {
	if g.Inventory == nil {
		return nil, nil
	}

	candidates, err := g.Inventory.Decoders(ctx, codecMime)
	if err != nil {
		return nil, err
	}
	return g.Classifier.Rank(codecMime, candidates), nil
}

func (g *GStreamer) environ(ctx context.Context, opts StartOptions) []string {
	env := os.Environ()

	ranked, err := g.Ranking(ctx, opts.CodecMime)
	if err != nil {
		log.Warnf("gstreamer: decoder inventory: %s", err)
		return env
	}
	if len(ranked) == 0 {
		return env
	}

	ranks := decoder.RankEnv(ranked, opts.Conservative)
	log.Debugf("gstreamer: GST_PLUGIN_FEATURE_RANK=%s", ranks)
	return append(env, "GST_PLUGIN_FEATURE_RANK="+ranks)
}

func (g *GStreamer) Start(ctx context.Context, rawURL string, opts StartOptions) error {
	if err := g.Stop(); err != nil {
		log.Warnf("gstreamer: stop before start: %s", err)
	}

	target, err := sanitizeMediaTarget(rawURL)
	if err != nil {
		return fmt.Errorf("invalid media target: %w", err)
	}

	cmd := exec.Command(g.Binary, "--no-interactive", target)
	cmd.Env = g.environ(ctx, opts)
	cmd.SysProcAttr = sysProcAttr()

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("gstreamer stdout: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("gstreamer stderr: %w", err)
	}

	g.mu.Lock()
	g.generation = opts.Generation
	g.stopping, g.finished, g.ready, g.paused = false, false, false, false
	g.position, g.duration = 0, 0
	g.mu.Unlock()

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", g.Binary, err)
	}

	exited := make(chan struct{})
	g.mu.Lock()
	g.cmd = cmd
	g.exited = exited
	g.mu.Unlock()

	var readers sync.WaitGroup
	for _, pipe := range []io.Reader{stdout, stderr} {
		readers.Add(1)
		go func(r io.Reader) {
			defer readers.Done()
			scanner := bufio.NewScanner(r)
			scanner.Split(scanCRLF)
			for scanner.Scan() {
				g.line(opts.Generation, scanner.Text())
			}
		}(pipe)
	}

	go func() {
		readers.Wait()
		err := cmd.Wait()
		close(exited)
		g.onExit(opts.Generation, err)
	}()

	return nil
}

func (g *GStreamer) line(generation uint64, text string) {
	parsed := parseGstLine(text)
	if !parsed.ok {
		return
	}

	ev := parsed.event
	ev.Generation = generation
	if !ev.IsSample() {
		log.Tracef("gstreamer: %q -> %s", text, ev.State)
	}

	var pending []Event

	g.mu.Lock()
	if generation != g.generation || g.finished {
		g.mu.Unlock()
		return
	}

	switch {
	case parsed.playing:
		g.position, g.duration = ev.Position, ev.Duration
		if !g.ready {
			g.ready = true
			pending = append(pending, Event{Generation: generation, State: attempt.Ready})
		}
	case ev.State == attempt.Buffering:
		g.ready = false
	case ev.State == attempt.Ended, ev.State == attempt.Error:
		g.finished = true
		ev.Position, ev.Duration = g.position, g.duration
	}
	g.mu.Unlock()

	for _, p := range append(pending, ev) {
		g.emit(p)
	}
}

func (g *GStreamer) onExit(generation uint64, err error) {
	g.mu.Lock()
	unexpected := generation == g.generation && !g.stopping && !g.finished
	if unexpected {
		g.finished = true
	}
	position, duration := g.position, g.duration
	g.mu.Unlock()

	if !unexpected {
		return
	}

	cause := "gst-play exited before the end of the item"
	if err != nil {
		cause = fmt.Sprintf("%s: %s", cause, err)
	}
	g.emit(Event{Generation: generation, State: attempt.Error, Cause: cause, Position: position, Duration: duration})
}

func (g *GStreamer) Stop() error {
	g.mu.Lock()
	cmd, exited := g.cmd, g.exited
	g.stopping = true
	g.mu.Unlock()

	if cmd == nil {
		return nil
	}

	_ = suspendProcess(cmd, false)
	_ = terminateProcess(cmd)

	select {
	case <-exited:
	case <-time.After(g.GracePeriod):
		_ = killProcess(cmd)
		<-exited
	}

	g.mu.Lock()
	if g.cmd == cmd {
		g.cmd = nil
	}
	g.mu.Unlock()

	return nil
}

func (g *GStreamer) SetPaused(paused bool) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.cmd == nil {
		return ErrNotStarted
	}
	if g.paused == paused {
		return nil
	}
	if err := suspendProcess(g.cmd, paused); err != nil {
		return err
	}
	g.paused = paused
	return nil
}

func (g *GStreamer) TogglePause() error {
	g.mu.Lock()
	paused := g.paused
	g.mu.Unlock()
	return g.SetPaused(!paused)
}

func (g *GStreamer) Position() (time.Duration, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.cmd == nil {
		return 0, ErrNotStarted
	}
	return g.position, nil
}

func (g *GStreamer) Duration() (time.Duration, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.cmd == nil {
		return 0, ErrNotStarted
	}
	return g.duration, nil
}

func (g *GStreamer) Close() error {
	err := g.Stop()
	g.closeOnce.Do(func() { close(g.closed) })
	return err
}
