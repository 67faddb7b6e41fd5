package player

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/dashreel/dashreel/log"
)

// EventCallback receives property changes (name, value) and named events (name, whole payload).
type EventCallback func(name string, data any)

// EventListener keeps a dedicated IPC connection open and forwards what mpv pushes on it.
type EventListener struct {
	socketPath string
	properties []string
	callback   EventCallback

	mu        sync.Mutex
	conn      net.Conn
	stopCh    chan struct{}
	listening bool
}

func NewEventListener(socketPath string, properties []string, callback EventCallback) *EventListener {
	return &EventListener{
		socketPath: socketPath,
		properties: properties,
		callback:   callback,
		stopCh:     make(chan struct{}),
	}
}

// Start connects and subscribes. observe_property is scoped to the client connection,
// so the subscriptions are sent on the same connection the read loop uses.
func (el *EventListener) Start() error {
	el.mu.Lock()
	defer el.mu.Unlock()

	if el.listening {
		return nil
	}

	conn, err := net.Dial("unix", el.socketPath)
	if err != nil {
		return fmt.Errorf("event listener connect: %w", err)
	}

	for i, name := range el.properties {
		payload, err := json.Marshal(ipcCommand{Command: []any{"observe_property", i + 1, name}})
		if err != nil {
			conn.Close()
			return fmt.Errorf("marshal observe %s: %w", name, err)
		}
		if _, err := conn.Write(append(payload, '\n')); err != nil {
			conn.Close()
			return fmt.Errorf("observe %s: %w", name, err)
		}
	}

	el.conn = conn
	el.listening = true
	go el.readLoop()

	log.Debugf("mpv event listener started on %s (observing: %s)", el.socketPath, strings.Join(el.properties, ", "))
	return nil
}

func (el *EventListener) Stop() {
	el.mu.Lock()
	defer el.mu.Unlock()

	if !el.listening {
		return
	}

	close(el.stopCh)
	if el.conn != nil {
		el.conn.Close()
	}
	el.listening = false
}

func (el *EventListener) readLoop() {
	defer func() {
		el.mu.Lock()
		el.listening = false
		el.mu.Unlock()
	}()

	buf := make([]byte, readBufSize)
	var remainder []byte

	for {
		select {
		case <-el.stopCh:
			return
		default:
		}

		if err := el.conn.SetReadDeadline(time.Now().Add(5 * time.Second)); err != nil {
			return
		}

		n, err := el.conn.Read(buf)
		if err != nil {
			if errors.Is(err, os.ErrDeadlineExceeded) {
				continue
			}
			select {
			case <-el.stopCh:
			default:
				log.Warnf("event listener read error: %v", err)
			}
			return
		}

		var lines []string
		lines, remainder = splitLines(append(remainder, buf[:n]...))
		for _, line := range lines {
			el.processEvent(line)
		}
	}
}

// splitLines returns the complete newline-terminated lines of data and the unterminated rest.
func splitLines(data []byte) (lines []string, rest []byte) {
	parts := strings.Split(string(data), "\n")
	for _, line := range parts[:len(parts)-1] {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}

	if last := parts[len(parts)-1]; last != "" {
		rest = []byte(last)
	}
	return lines, rest
}

func (el *EventListener) processEvent(line string) {
	if el.callback == nil {
		return
	}

	var event map[string]any
	if err := json.Unmarshal([]byte(line), &event); err != nil {
		return
	}

	eventType, ok := event["event"].(string)
	if !ok {
		return
	}

	if eventType == "property-change" {
		if name, _ := event["name"].(string); name != "" {
			el.callback(name, event["data"])
		}
		return
	}

	el.callback(eventType, event)
}
