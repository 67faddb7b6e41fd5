package tui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dashreel/dashreel/session"
)

func (b *statefulBubble) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		b.resize(msg.Width, msg.Height)
		return b, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, b.keymap.forceQuit):
			return b, tea.Quit
		case key.Matches(msg, b.keymap.back) && b.state != playingState:
			b.previousState()
			return b, nil
		}

	case snapshotMsg:
		b.snapshot = session.Snapshot(msg)
		b.markCurrent()
		return b, b.waitForUpdate()

	case noticeMsg:
		b.addNotice(session.Notice(msg))
		return b, b.waitForNotice()

	case sessionDoneMsg:
		b.finished = true
		if b.options.QuitOnDone {
			return b, tea.Quit
		}
		return b, nil

	case historyMsg:
		cmd := b.historyC.SetItems(msg)
		return b, cmd

	case errorMsg:
		b.raiseError(msg.err)
		return b, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		b.spinnerC, cmd = b.spinnerC.Update(msg)
		return b, cmd

	case progress.FrameMsg:
		model, cmd := b.progressC.Update(msg)
		b.progressC = model.(progress.Model)
		return b, cmd
	}

	switch b.state {
	case playingState:
		return b.updatePlaying(msg)
	case queueState:
		return b.updateQueue(msg)
	case historyState:
		return b.updateHistory(msg)
	case errorState:
		return b.updateError(msg)
	}

	return b, nil
}

func (b *statefulBubble) updatePlaying(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return b, nil
	}

	s := b.options.Session
	switch {
	case key.Matches(keyMsg, b.keymap.quit):
		return b, tea.Quit
	case key.Matches(keyMsg, b.keymap.showQueue):
		b.newState(queueState)
	case key.Matches(keyMsg, b.keymap.showHistory):
		b.newState(historyState)
		return b, b.loadHistory()
	case s == nil || b.finished:
	case key.Matches(keyMsg, b.keymap.playPause):
		s.TogglePause()
	case key.Matches(keyMsg, b.keymap.next):
		s.Next()
	case key.Matches(keyMsg, b.keymap.previous):
		s.Previous()
	}

	return b, nil
}

func (b *statefulBubble) updateQueue(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	b.queueC, cmd = b.queueC.Update(msg)
	return b, cmd
}

func (b *statefulBubble) updateHistory(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && key.Matches(keyMsg, b.keymap.remove) {
		if item, ok := b.historyC.SelectedItem().(*listItem); ok {
			return b, b.removeHistory(item)
		}
		return b, nil
	}

	var cmd tea.Cmd
	b.historyC, cmd = b.historyC.Update(msg)
	return b, cmd
}

func (b *statefulBubble) updateError(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && key.Matches(keyMsg, b.keymap.quit) {
		return b, tea.Quit
	}
	return b, nil
}

var _ list.Item = (*listItem)(nil)
