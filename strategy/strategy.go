// Package strategy decides, from item metadata alone, which decode backend attempts a video first.
package strategy

import (
	"errors"
	"fmt"
	"sort"

	"github.com/dashreel/dashreel/media"
	"github.com/samber/lo"
)

// Backend identifiers known to the chain.
const (
	// RobustBackend bundles its own software decoders.
	RobustBackend = "mpv"
	// PlatformBackend relies on the decoders the platform exposes.
	PlatformBackend = "gstreamer"
)

var (
	ErrEmptyChain      = errors.New("strategy chain needs at least one strategy")
	ErrUnknownBackend  = errors.New("unknown backend")
	ErrNoAlternate     = errors.New("backend has no alternate")
	ErrTooManyBackends = errors.New("strategy chain supports exactly two backends")
)

// Descriptor is the static identity of a backend inside the chain.
type Descriptor struct {
	ID       string `json:"id"`
	Priority int    `json:"priority"`
	Fallback bool   `json:"fallback"`
}

// Matcher inspects item metadata and says whether its backend should attempt the item.
// Implementations must not fail: missing metadata means "no opinion".
type Matcher interface {
	CanHandle(item *media.Item) bool
}

// MatcherFunc adapts a function to Matcher.
type MatcherFunc func(item *media.Item) bool

func (f MatcherFunc) CanHandle(item *media.Item) bool {
	return f(item)
}

// Strategy binds a matcher to the backend it votes for.
type Strategy struct {
	Descriptor
	Matcher Matcher
	// Source names where the strategy came from, for diagnostics.
	Source string
}

// Chain evaluates strategies in ascending priority and falls back to a designated backend.
type Chain struct {
	strategies []Strategy
	fallback   Descriptor
}

// NewChain orders strategies by priority (stable for equal priorities) and resolves the fallback:
// the first flagged strategy, or the last one when none is flagged.
func NewChain(strategies ...Strategy) (*Chain, error) {
	if len(strategies) == 0 {
		return nil, ErrEmptyChain
	}

	ordered := make([]Strategy, len(strategies))
	copy(ordered, strategies)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Priority < ordered[j].Priority
	})

	ids := lo.Uniq(lo.Map(ordered, func(s Strategy, _ int) string { return s.ID }))
	if len(ids) > 2 {
		return nil, fmt.Errorf("%w: got %v", ErrTooManyBackends, ids)
	}

	for i, s := range ordered {
		if s.Matcher == nil {
			return nil, fmt.Errorf("strategy %d (%s) has no matcher", i, s.ID)
		}
	}

	fallback, ok := lo.Find(ordered, func(s Strategy) bool { return s.Fallback })
	if !ok {
		fallback = ordered[len(ordered)-1]
	}

	return &Chain{strategies: ordered, fallback: fallback.Descriptor}, nil
}

// Select returns the first strategy whose matcher accepts the item, else the fallback.
// It never fails.
func (c *Chain) Select(item *media.Item) Descriptor {
	for _, s := range c.strategies {
		if s.Matcher.CanHandle(item) {
			return s.Descriptor
		}
	}
	return c.fallback
}

// Fallback returns the designated fallback backend.
func (c *Chain) Fallback() Descriptor {
	return c.fallback
}

// Lookup returns the descriptor of the highest priority strategy for a backend.
func (c *Chain) Lookup(id string) (Descriptor, bool) {
	s, ok := lo.Find(c.strategies, func(s Strategy) bool { return s.ID == id })
	return s.Descriptor, ok
}

// Alternate returns the other backend of the binary choice.
func (c *Chain) Alternate(id string) (Descriptor, error) {
	if _, ok := c.Lookup(id); !ok {
		return Descriptor{}, fmt.Errorf("%w: %s", ErrUnknownBackend, id)
	}

	s, ok := lo.Find(c.strategies, func(s Strategy) bool { return s.ID != id })
	if !ok {
		return Descriptor{}, fmt.Errorf("%w: %s", ErrNoAlternate, id)
	}
	return s.Descriptor, nil
}

// Backends lists the distinct backend ids in priority order.
func (c *Chain) Backends() []string {
	return lo.Uniq(lo.Map(c.strategies, func(s Strategy, _ int) string { return s.ID }))
}

// Strategies returns the ordered strategies.
func (c *Chain) Strategies() []Strategy {
	return lo.Map(c.strategies, func(s Strategy, _ int) Strategy { return s })
}
