// Package queue holds the ordered items of a playback session.
package queue

import (
	"fmt"
	"sync"

	"github.com/dashreel/dashreel/media"
	"github.com/samber/lo"
)

type Mode string

const (
	Sequential Mode = "sequential"
	Loop       Mode = "loop"
	Shuffle    Mode = "shuffle"
)

// ParseMode accepts the values of queue.mode.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case Sequential, Loop, Shuffle:
		return m, nil
	default:
		return "", fmt.Errorf("unknown queue mode %q", s)
	}
}

// Queue is a cursor over items. Shuffle permutes the items once, at creation.
type Queue struct {
	mu    sync.Mutex
	mode  Mode
	items []*media.Item
	pos   int
}

func New(items []*media.Item, mode Mode) *Queue {
	items = append([]*media.Item(nil), items...)
	if mode == Shuffle {
		items = lo.Shuffle(items)
	}
	return &Queue{mode: mode, items: items, pos: -1}
}

// Next moves to the following item. In loop mode it wraps around.
func (q *Queue) Next() (*media.Item, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		return nil, false
	}

	switch {
	case q.pos+1 < len(q.items):
		q.pos++
	case q.mode == Loop:
		q.pos = 0
	default:
		q.pos = len(q.items)
		return nil, false
	}
	return q.items[q.pos], true
}

// Previous moves back one item. In loop mode it wraps around.
func (q *Queue) Previous() (*media.Item, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		return nil, false
	}

	switch {
	case q.pos > 0:
		q.pos--
	case q.mode == Loop:
		q.pos = len(q.items) - 1
	default:
		return nil, false
	}
	return q.items[q.pos], true
}

// Len is the number of items, not the number left.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

func (q *Queue) Mode() Mode {
	return q.mode
}

func (q *Queue) Items() []*media.Item {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]*media.Item(nil), q.items...)
}
