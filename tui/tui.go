// Package tui shows the state of a playback session and lets the user steer it.
package tui

import (
	"context"
	"errors"

	"github.com/dashreel/dashreel/queue"
	"github.com/dashreel/dashreel/session"
	tea "github.com/charmbracelet/bubbletea"
)

// Options wire the view to a running session.
type Options struct {
	Session *session.Session
	Queue   *queue.Queue
	// QuitOnDone closes the view when the queue is exhausted.
	QuitOnDone bool
}

// Run blocks until the user quits, the session ends with QuitOnDone, or ctx is done.
func Run(ctx context.Context, options *Options) error {
	bubble := newBubble(options)

	_, err := tea.NewProgram(bubble, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
