package tui

import (
	"github.com/dashreel/dashreel/history"
	"github.com/dashreel/dashreel/session"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/samber/lo"
)

type (
	snapshotMsg    session.Snapshot
	noticeMsg      session.Notice
	sessionDoneMsg struct{}
	historyMsg     []list.Item
	errorMsg       struct{ err error }
)

func (b *statefulBubble) waitForUpdate() tea.Cmd {
	s := b.options.Session
	if s == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case snap := <-s.Updates():
			return snapshotMsg(snap)
		case <-s.Done():
			return sessionDoneMsg{}
		}
	}
}

func (b *statefulBubble) waitForNotice() tea.Cmd {
	s := b.options.Session
	if s == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case n := <-s.Notices():
			return noticeMsg(n)
		case <-s.Done():
			return nil
		}
	}
}

func (b *statefulBubble) loadHistory() tea.Cmd {
	return func() tea.Msg {
		records, err := history.Recent()
		if err != nil {
			return errorMsg{err}
		}
		reports, err := history.Unplayable()
		if err != nil {
			return errorMsg{err}
		}

		items := lo.Map(records, func(r *history.Record, _ int) list.Item { return &listItem{internal: r} })
		for i := len(reports) - 1; i >= 0; i-- {
			items = append(items, &listItem{internal: reports[i]})
		}
		return historyMsg(items)
	}
}

func (b *statefulBubble) removeHistory(item *listItem) tea.Cmd {
	record, ok := item.internal.(*history.Record)
	if !ok {
		return nil
	}
	return func() tea.Msg {
		if err := history.Remove(record); err != nil {
			return errorMsg{err}
		}
		return b.loadHistory()()
	}
}

// markCurrent flags the queue entry being played.
func (b *statefulBubble) markCurrent() {
	for i, it := range b.queueC.Items() {
		item := it.(*listItem)
		item.current = b.snapshot.Item != nil && item.internal == b.snapshot.Item
		if item.current && b.state != queueState {
			b.queueC.Select(i)
		}
	}
}
