package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/dashreel/dashreel/history"
	"github.com/dashreel/dashreel/icon"
	"github.com/dashreel/dashreel/media"
	"github.com/dashreel/dashreel/style"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/lipgloss"
)

// listItem wraps queue items and history entries for the list component.
type listItem struct {
	internal any
	current  bool
}

func (t *listItem) Title() (title string) {
	switch e := t.internal.(type) {
	case *media.Item:
		kind := icon.Get(icon.Video)
		if !e.IsVideo() {
			kind = icon.Get(icon.Image)
		}
		title = fmt.Sprintf("%s %s", kind, e.Name)
	case *history.Record:
		title = e.Name
	case *history.Report:
		title = fmt.Sprintf("%s %s", icon.Get(icon.Fail), e.Name)
	default:
		title = t.FilterValue()
	}

	if t.current {
		title = fmt.Sprintf("%s %s", title, lipgloss.NewStyle().Bold(true).Foreground(style.AccentColor).Render(icon.Get(icon.Play)))
	}
	return
}

func (t *listItem) Description() (description string) {
	switch e := t.internal.(type) {
	case *media.Item:
		var parts []string
		if codec, ok := e.Codec.Get(); ok {
			parts = append(parts, codec)
		} else if mime, ok := e.MIME.Get(); ok {
			parts = append(parts, mime)
		}
		parts = append(parts, e.Path)
		description = strings.Join(parts, " • ")
	case *history.Record:
		description = fmt.Sprintf("%s • %s • %dx", e.PlayedAt.Format(time.DateTime), e.Backend, e.Plays)
	case *history.Report:
		description = lipgloss.NewStyle().Foreground(style.ErrorColor).Render(fmt.Sprintf("%s • tried %s", e.Reason, strings.Join(e.Tried, ", ")))
	}
	return
}

func (t *listItem) FilterValue() string {
	switch e := t.internal.(type) {
	case *media.Item:
		return e.Name
	case *history.Record:
		return e.Name
	case *history.Report:
		return e.Name
	default:
		return ""
	}
}

func queueItems(items []*media.Item) []list.Item {
	out := make([]list.Item, len(items))
	for i, item := range items {
		out[i] = &listItem{internal: item}
	}
	return out
}
