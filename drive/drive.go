// Package drive tracks whether the vehicle is moving. The state is process-wide:
// Init starts polling the configured signal file and Teardown stops it.
package drive

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dashreel/dashreel/config"
	"github.com/dashreel/dashreel/filesystem"
	"github.com/dashreel/dashreel/key"
	"github.com/dashreel/dashreel/log"
	"github.com/spf13/viper"
)

var ErrAlreadyInitialized = errors.New("driving state already initialized")

var (
	mu          sync.Mutex
	driving     bool
	subscribers = make(map[int]chan bool)
	nextID      int
	cancelPoll  context.CancelFunc
	polling     sync.WaitGroup
)

// Init starts polling drive.signal_path when it is set.
func Init(ctx context.Context) error {
	mu.Lock()
	defer mu.Unlock()

	if cancelPoll != nil {
		return ErrAlreadyInitialized
	}

	ctx, cancel := context.WithCancel(ctx)
	cancelPoll = cancel

	path := viper.GetString(key.DriveSignalPath)
	if path == "" {
		return nil
	}

	interval := config.Millis(key.DrivePollInterval)
	if interval <= 0 {
		interval = time.Second
	}

	polling.Add(1)
	go func() {
		defer polling.Done()
		poll(ctx, path, interval)
	}()
	return nil
}

// Teardown stops polling and forgets the state and subscribers.
func Teardown() {
	mu.Lock()
	cancel := cancelPoll
	cancelPoll = nil
	mu.Unlock()

	if cancel != nil {
		cancel()
	}
	polling.Wait()

	mu.Lock()
	defer mu.Unlock()
	driving = false
	for id, ch := range subscribers {
		close(ch)
		delete(subscribers, id)
	}
}

func poll(ctx context.Context, path string, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var lastErr string
	for {
		content, err := filesystem.ReadTrimmed(path)
		if err == nil {
			var state bool
			if state, err = Parse(content); err == nil {
				Set(state)
			}
		}
		switch {
		case err == nil:
			lastErr = ""
		case err.Error() != lastErr:
			log.Warnf("drive: %s", err)
			lastErr = err.Error()
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Parse reads a signal file value.
func Parse(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "on", "drive", "driving", "d":
		return true, nil
	case "0", "false", "off", "park", "parked", "p", "":
		return false, nil
	default:
		return false, fmt.Errorf("unrecognised driving state %q", s)
	}
}

// Set changes the state and notifies subscribers when it differs.
func Set(state bool) {
	mu.Lock()
	defer mu.Unlock()

	if state == driving {
		return
	}
	driving = state
	log.Infof("drive: driving=%t", state)

	for _, ch := range subscribers {
		publish(ch, state)
	}
}

func Driving() bool {
	mu.Lock()
	defer mu.Unlock()
	return driving
}

// Subscribe returns a channel that yields the current state, then every change.
// Slow readers only see the latest state.
func Subscribe() (<-chan bool, func()) {
	mu.Lock()
	defer mu.Unlock()

	id := nextID
	nextID++
	ch := make(chan bool, 1)
	ch <- driving
	subscribers[id] = ch

	return ch, func() {
		mu.Lock()
		defer mu.Unlock()
		if ch, ok := subscribers[id]; ok {
			close(ch)
			delete(subscribers, id)
		}
	}
}

func publish(ch chan bool, state bool) {
	select {
	case <-ch:
	default:
	}
	ch <- state
}

// Source hands the process-wide state to a playback session.
type Source struct{}

func (Source) Subscribe() (<-chan bool, func()) {
	return Subscribe()
}
