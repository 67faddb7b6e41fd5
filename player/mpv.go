package player

import (
	"context"
	"crypto/rand"
	"fmt"
	"net"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/dashreel/dashreel/attempt"
	"github.com/dashreel/dashreel/log"
	"github.com/dashreel/dashreel/strategy"
)

const (
	socketWaitRetries = 10
	socketWaitDelay   = 300 * time.Millisecond
	sampleInterval    = 250 * time.Millisecond
)

var observedProperties = []string{"time-pos", "duration", "paused-for-cache"}

// MPV is the robust backend: mpv with its bundled decoders, driven over JSON-IPC.
type MPV struct {
	emitter

	Binary      string
	Fullscreen  bool
	GracePeriod time.Duration

	ipcMu sync.Mutex

	mu         sync.Mutex
	socketPath string
	cmd        *exec.Cmd
	exited     chan struct{}
	listener   *EventListener
	generation uint64
	stopping   bool
	finished   bool
	lastSample time.Time

	closeOnce sync.Once
}

func NewMPV(binary string, fullscreen bool, grace time.Duration) *MPV {
	return &MPV{
		emitter:     newEmitter(strategy.RobustBackend),
		Binary:      binary,
		Fullscreen:  fullscreen,
		GracePeriod: grace,
	}
}

func (m *MPV) ID() string {
	return strategy.RobustBackend
}

func (m *MPV) Events() <-chan Event {
	return m.events
}

func (m *MPV) socket() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.socketPath
}

// args builds the mpv command line for one start.
func (m *MPV) args(socketPath, target string, opts StartOptions) []string {
	title := sanitizeTitle(opts.Title)
	args := []string{
		"--no-terminal",
		"--really-quiet",
		fmt.Sprintf("--input-ipc-server=%s", socketPath),
		fmt.Sprintf("--force-media-title=%s", title),
		"--force-window=yes",
		"--keep-open=no",
		"--idle=no",
		"--image-display-duration=inf",
	}

	if m.Fullscreen {
		args = append(args, "--fullscreen")
	}

	if opts.Conservative {
		args = append(args, "--hwdec=no")
	} else {
		args = append(args, "--hwdec=auto-safe")
	}

	return append(args, "--", target)
}

func (m *MPV) Start(ctx context.Context, rawURL string, opts StartOptions) error {
	if err := m.Stop(); err != nil {
		log.Warnf("mpv: stop before start: %s", err)
	}

	target, err := sanitizeMediaTarget(rawURL)
	if err != nil {
		return fmt.Errorf("invalid media target: %w", err)
	}

	randomBytes := make([]byte, 4)
	if _, err := rand.Read(randomBytes); err != nil {
		return fmt.Errorf("generate socket name: %w", err)
	}
	socketPath := filepath.Join(os.TempDir(), fmt.Sprintf("dashreel-%x.sock", randomBytes))

	cmd := exec.Command(m.Binary, m.args(socketPath, target, opts)...)
	cmd.SysProcAttr = sysProcAttr()

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start mpv: %w", err)
	}

	exited := make(chan struct{})
	m.mu.Lock()
	m.socketPath = socketPath
	m.cmd = cmd
	m.exited = exited
	m.generation = opts.Generation
	m.stopping = false
	m.finished = false
	m.mu.Unlock()

	go func() {
		err := cmd.Wait()
		close(exited)
		m.onExit(opts.Generation, err)
	}()

	m.emit(Event{Generation: opts.Generation, State: attempt.Buffering})

	if err := waitForSocket(ctx, socketPath, exited); err != nil {
		select {
		case <-exited:
		default:
			log.Warnf("killing mpv: socket never became ready")
			_ = killProcess(cmd)
		}
		return fmt.Errorf("mpv socket not ready: %w", err)
	}

	listener := NewEventListener(socketPath, observedProperties, func(name string, data any) {
		m.handle(opts.Generation, name, data)
	})
	if err := listener.Start(); err != nil {
		_ = killProcess(cmd)
		return err
	}

	m.mu.Lock()
	m.listener = listener
	m.mu.Unlock()

	return nil
}

func waitForSocket(ctx context.Context, socketPath string, exited <-chan struct{}) error {
	for i := 0; i < socketWaitRetries; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-exited:
			return fmt.Errorf("mpv exited before socket was ready")
		case <-time.After(socketWaitDelay):
		}

		conn, err := net.Dial("unix", socketPath)
		if err == nil {
			conn.Close()
			return nil
		}
	}
	return fmt.Errorf("socket %s not ready after %d attempts", socketPath, socketWaitRetries)
}

// handle turns an mpv notification into an event of the given generation.
func (m *MPV) handle(generation uint64, name string, data any) {
	ev, ok := translateMPV(name, data)
	if !ok {
		return
	}
	ev.Generation = generation
	if !ev.IsSample() {
		log.Tracef("mpv: %s %v -> %s", name, data, ev.State)
	}

	m.mu.Lock()
	if generation != m.generation || m.finished {
		m.mu.Unlock()
		return
	}
	if ev.IsSample() {
		now := time.Now()
		if now.Sub(m.lastSample) < sampleInterval {
			m.mu.Unlock()
			return
		}
		m.lastSample = now
	}
	if ev.State == attempt.Ended || ev.State == attempt.Error {
		m.finished = true
	}
	m.mu.Unlock()

	m.emit(ev)
}

func (m *MPV) onExit(generation uint64, err error) {
	m.mu.Lock()
	unexpected := generation == m.generation && !m.stopping && !m.finished
	if unexpected {
		m.finished = true
	}
	m.mu.Unlock()

	if !unexpected {
		return
	}

	cause := "mpv exited before the end of the item"
	if err != nil {
		cause = fmt.Sprintf("%s: %s", cause, err)
	}
	m.emit(Event{Generation: generation, State: attempt.Error, Cause: cause})
}

// translateMPV maps observed properties and named events onto lifecycle events.
func translateMPV(name string, data any) (Event, bool) {
	switch name {
	case "time-pos":
		if v, ok := data.(float64); ok {
			return Event{Position: seconds(v)}, true
		}
	case "duration":
		if v, ok := data.(float64); ok {
			return Event{Duration: seconds(v)}, true
		}
	case "paused-for-cache":
		if v, ok := data.(bool); ok {
			if v {
				return Event{State: attempt.Buffering}, true
			}
			return Event{State: attempt.Ready}, true
		}
	case "start-file":
		return Event{State: attempt.Buffering}, true
	case "playback-restart":
		return Event{State: attempt.Ready}, true
	case "end-file":
		payload, _ := data.(map[string]any)
		reason, _ := payload["reason"].(string)
		switch reason {
		case "eof":
			return Event{State: attempt.Ended}, true
		case "error":
			cause, _ := payload["file_error"].(string)
			if cause == "" {
				cause = "playback error"
			}
			kind := ErrorRuntime
			if strings.Contains(cause, "no audio or video data played") || strings.Contains(cause, "init") {
				kind = ErrorDecoderInit
			}
			return Event{State: attempt.Error, Cause: cause, Kind: kind}, true
		}
	}
	return Event{}, false
}

// Stop quits mpv, killing it after the grace period.
func (m *MPV) Stop() error {
	m.mu.Lock()
	cmd, exited, listener, socketPath := m.cmd, m.exited, m.listener, m.socketPath
	m.stopping = true
	m.listener = nil
	m.mu.Unlock()

	if cmd == nil {
		return nil
	}

	if listener != nil {
		listener.Stop()
	}

	_, _ = m.sendCommand([]any{"quit"})

	select {
	case <-exited:
	case <-time.After(m.GracePeriod):
		_ = killProcess(cmd)
		<-exited
	}

	_ = os.Remove(socketPath)

	m.mu.Lock()
	if m.cmd == cmd {
		m.cmd = nil
		m.socketPath = ""
	}
	m.mu.Unlock()

	return nil
}

func (m *MPV) TogglePause() error {
	_, err := m.sendCommand([]any{"cycle", "pause"})
	return err
}

func (m *MPV) SetPaused(paused bool) error {
	_, err := m.sendCommand([]any{"set_property", "pause", paused})
	return err
}

func (m *MPV) Position() (time.Duration, error) {
	v, err := m.getFloatProperty("time-pos")
	return seconds(v), err
}

func (m *MPV) Duration() (time.Duration, error) {
	v, err := m.getFloatProperty("duration")
	return seconds(v), err
}

func (m *MPV) Close() error {
	err := m.Stop()
	m.closeOnce.Do(func() { close(m.closed) })
	return err
}

func (m *MPV) getFloatProperty(name string) (float64, error) {
	data, err := m.sendCommand([]any{"get_property", name})
	if err != nil {
		return 0, err
	}

	val, ok := data.(float64)
	if !ok {
		return 0, fmt.Errorf("property %s: expected float64, got %T", name, data)
	}
	return val, nil
}

// sanitizeMediaTarget rejects targets that could be read as flags or carry control characters.
func sanitizeMediaTarget(link string) (string, error) {
	l := strings.TrimSpace(link)
	if l == "" {
		return "", fmt.Errorf("empty URL")
	}

	if strings.ContainsAny(l, "\x00\n\r") {
		return "", fmt.Errorf("invalid control characters in URL")
	}

	if strings.HasPrefix(l, "-") {
		return "", fmt.Errorf("url must not start with '-' (looks like a flag)")
	}

	if strings.Contains(l, "://") {
		u, err := url.Parse(l)
		if err != nil {
			return "", fmt.Errorf("invalid URL: %w", err)
		}
		switch strings.ToLower(u.Scheme) {
		case "http", "https", "file":
			return l, nil
		default:
			return "", fmt.Errorf("unsupported URL scheme: %s", u.Scheme)
		}
	}

	return filepath.Clean(l), nil
}

func sanitizeTitle(title string) string {
	t := strings.NewReplacer("\n", " ", "\r", " ", "\t", " ", "\x00", "").Replace(title)
	return strings.TrimSpace(t)
}
