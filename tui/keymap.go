package tui

import (
	"github.com/dashreel/dashreel/color"
	"github.com/dashreel/dashreel/style"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
)

type statefulKeymap struct {
	state state

	quit, forceQuit,
	next, previous, playPause,
	showQueue, showHistory,
	remove,
	back,
	up, down, left, right,
	top, bottom,
	showHelp key.Binding
}

func (k *statefulKeymap) setState(newState state) {
	k.state = newState
}

// bind makes a binding whose help label is its first key unless one is given.
func bind(desc string, keys ...string) key.Binding {
	return key.NewBinding(key.WithKeys(keys...), key.WithHelp(keys[0], desc))
}

func newStatefulKeymap() *statefulKeymap {
	k := &statefulKeymap{
		quit:        bind("quit", "q"),
		forceQuit:   bind("quit", "ctrl+c", "ctrl+d"),
		next:        bind("next", "n", "right"),
		previous:    bind("previous", "p", "left"),
		showQueue:   bind("queue", "u"),
		showHistory: bind("history", "H"),
		remove:      bind("remove", "d"),
		back:        bind("back", "esc"),
		top:         bind("top", "g"),
		bottom:      bind("bottom", "G"),
		showHelp:    bind("help", "?"),
	}

	// arrows read better than the key names
	k.up = key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑", "up"))
	k.down = key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓", "down"))
	k.left = key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←", "left"))
	k.right = key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→", "right"))

	orange := style.Fg(color.Orange)
	k.playPause = key.NewBinding(key.WithKeys(" "), key.WithHelp(orange("space"), orange("pause/resume")))

	return k
}

func (k *statefulKeymap) help() ([]key.Binding, []key.Binding) {
	h := func(bindings ...key.Binding) []key.Binding {
		return bindings
	}

	to2 := func(a []key.Binding) ([]key.Binding, []key.Binding) {
		return a, a
	}

	switch k.state {
	case playingState:
		return h(k.playPause, k.next, k.previous, k.quit), h(k.playPause, k.next, k.previous, k.showQueue, k.showHistory, k.quit)
	case queueState:
		return to2(h(k.back))
	case historyState:
		return to2(h(k.remove, k.back))
	case errorState:
		return to2(h(k.back, k.quit))
	default:
		return to2(h())
	}
}

func (k *statefulKeymap) ShortHelp() []key.Binding {
	short, _ := k.help()
	return short
}

func (k *statefulKeymap) FullHelp() [][]key.Binding {
	_, full := k.help()
	return [][]key.Binding{full}
}

func (k *statefulKeymap) forList() list.KeyMap {
	return list.KeyMap{
		CursorUp:             k.up,
		CursorDown:           k.down,
		NextPage:             k.right,
		PrevPage:             k.left,
		GoToStart:            k.top,
		GoToEnd:              k.bottom,
		ClearFilter:          k.back,
		CancelWhileFiltering: k.back,
		ShowFullHelp:         k.showHelp,
		CloseFullHelp:        k.showHelp,
		Quit:                 k.quit,
		ForceQuit:            k.forceQuit,
	}
}
