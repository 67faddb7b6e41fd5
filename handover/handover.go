// Package handover decides what to do after each classified backend event,
// including the one-shot switch to the alternate backend.
package handover

import (
	"fmt"

	"github.com/dashreel/dashreel/attempt"
	"github.com/dashreel/dashreel/key"
	"github.com/dashreel/dashreel/monitor"
	"github.com/dashreel/dashreel/strategy"
	"github.com/spf13/viper"
)

// Kind of action requested from the session.
type Kind string

const (
	Continue Kind = "continue"
	Retry    Kind = "retry"
	Switch   Kind = "switch"
	Advance  Kind = "advance"
	Abort    Kind = "abort"
)

// Action is the controller's decision.
type Action struct {
	Kind   Kind
	Reason string
	// Target is the backend to switch to.
	Target strategy.Descriptor
}

func (a Action) String() string {
	switch {
	case a.Kind == Switch:
		return fmt.Sprintf("%s to %s: %s", a.Kind, a.Target.ID, a.Reason)
	case a.Reason != "":
		return fmt.Sprintf("%s: %s", a.Kind, a.Reason)
	default:
		return string(a.Kind)
	}
}

// Ends reports whether the action terminates the item's attempt.
func (a Action) Ends() bool {
	return a.Kind == Advance || a.Kind == Abort
}

// Alternator knows the other backend of the binary choice.
type Alternator interface {
	Alternate(id string) (strategy.Descriptor, error)
}

// Budgets bound how many failures are tolerated before handing over.
type Budgets struct {
	// PerBackend is the decode failure budget keyed by backend id.
	PerBackend map[string]int
	// Default applies to backends missing from PerBackend.
	Default int
	// Anomaly is the budget for ends without Ready.
	Anomaly int
}

// DefaultBudgets reads the budgets from the configuration.
func DefaultBudgets() Budgets {
	return Budgets{
		PerBackend: map[string]int{
			strategy.RobustBackend:   viper.GetInt(key.HandoverRobustRetries),
			strategy.PlatformBackend: viper.GetInt(key.HandoverPlatformRetries),
		},
		Default: 1,
		Anomaly: viper.GetInt(key.HandoverAnomalyRetries),
	}
}

func (b Budgets) decode(id string) int {
	if n, ok := b.PerBackend[id]; ok {
		return n
	}
	return b.Default
}

// Controller maps classifications to actions.
type Controller struct {
	chain   Alternator
	budgets Budgets
}

func New(chain Alternator, budgets Budgets) *Controller {
	return &Controller{chain: chain, budgets: budgets}
}

// Decide returns the action for a classification. It updates the attempt's retry
// counter and closes the handover latch before a switch is returned; a switch is
// never returned for an attempt whose latch is already closed.
func (c *Controller) Decide(cl monitor.Classification, s *attempt.State, queueLen int) Action {
	switch cl.Kind {
	case monitor.Progress, monitor.Stall:
		return Action{Kind: Continue}

	case monitor.EndOfItem:
		if cl.Anomalous {
			return Action{Kind: Advance, Reason: "ended before playing, treated as a short clip"}
		}
		return Action{Kind: Advance, Reason: "end of item"}

	case monitor.FormatIncompatible:
		if s.HandedOver() {
			return Action{Kind: Abort, Reason: fmt.Sprintf("no backend can decode it: %s", cl.Cause)}
		}
		return c.handover(s, "format incompatible: "+cl.Cause, Abort)

	case monitor.DecodeFailure:
		if cl.Anomalous {
			return c.anomaly(s, queueLen)
		}
		return c.decodeFailure(s, cl)
	}

	return Action{Kind: Continue}
}

func (c *Controller) decodeFailure(s *attempt.State, cl monitor.Classification) Action {
	budget := c.budgets.decode(s.Backend.ID)
	if n := s.Retries + 1; n < budget {
		s.Retries = n
		s.Conservative = true
		return Action{Kind: Retry, Reason: fmt.Sprintf("decode failure %d/%d: %s", n, budget, cl.Cause)}
	}
	return c.handover(s, fmt.Sprintf("decode failures exhausted the %s budget of %d: %s", s.Backend.ID, budget, cl.Cause), Advance)
}

// anomaly handles a suspicious end without Ready. The monitor already counted it.
func (c *Controller) anomaly(s *attempt.State, queueLen int) Action {
	switch {
	case s.Anomalies >= c.budgets.Anomaly:
		return c.handover(s, fmt.Sprintf("ended immediately %d times", s.Anomalies), Advance)
	case queueLen <= 1 && s.Anomalies == 1:
		return c.handover(s, "ended immediately in a single item queue", Advance)
	default:
		s.Conservative = true
		return Action{Kind: Retry, Reason: fmt.Sprintf("ended immediately %d/%d", s.Anomalies, c.budgets.Anomaly)}
	}
}

// handover switches to the alternate backend once per item. When the item already
// switched, or there is nothing to switch to, it returns the fallback kind instead.
func (c *Controller) handover(s *attempt.State, reason string, fallback Kind) Action {
	target, err := c.chain.Alternate(s.Backend.ID)
	if err != nil {
		return Action{Kind: fallback, Reason: fmt.Sprintf("%s, %s", reason, err)}
	}

	if !s.Latch() {
		return Action{Kind: Advance, Reason: reason + " after handover"}
	}
	return Action{Kind: Switch, Target: target, Reason: reason}
}
