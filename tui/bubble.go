package tui

import (
	"time"

	"github.com/dashreel/dashreel/session"
	"github.com/dashreel/dashreel/style"
	"github.com/dashreel/dashreel/util"
	"github.com/charmbracelet/bubbles/help"
	bubblesKey "github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/lipgloss"
)

const keptNotices = 5

type statefulBubble struct {
	state         state
	statesHistory util.Stack[state]

	keymap *statefulKeymap

	// components
	spinnerC  spinner.Model
	queueC    list.Model
	historyC  list.Model
	progressC progress.Model
	helpC     help.Model

	snapshot session.Snapshot
	notices  []session.Notice
	finished bool
	lastErr  error

	width, height int

	options *Options
}

func (b *statefulBubble) raiseError(err error) {
	b.lastErr = err
	b.newState(errorState)
}

func (b *statefulBubble) setState(s state) {
	b.state = s
	b.keymap.setState(s)
}

func (b *statefulBubble) newState(s state) {
	if b.state == s {
		return
	}
	b.statesHistory.Push(b.state)
	b.setState(s)
}

func (b *statefulBubble) previousState() {
	if b.statesHistory.Len() > 0 {
		b.setState(b.statesHistory.Pop())
	}
}

func (b *statefulBubble) resize(width, height int) {
	x, y := paddingStyle.GetFrameSize()
	xx, yy := listExtraPaddingStyle.GetFrameSize()

	listWidth := width - xx
	listHeight := height - yy

	b.queueC.SetSize(listWidth, listHeight)
	b.queueC.Help.Width = listWidth

	b.historyC.SetSize(listWidth, listHeight)
	b.historyC.Help.Width = listWidth

	b.progressC.Width = listWidth
	b.helpC.Width = listWidth

	b.width = width - x
	b.height = height - y
}

func (b *statefulBubble) addNotice(n session.Notice) {
	b.notices = append(b.notices, n)
	if len(b.notices) > keptNotices {
		b.notices = b.notices[len(b.notices)-keptNotices:]
	}
}

func newBubble(options *Options) *statefulBubble {
	keymap := newStatefulKeymap()
	bubble := statefulBubble{
		statesHistory: util.Stack[state]{},
		keymap:        keymap,
		options:       options,
	}

	makeList := func(title string, titleStyle lipgloss.Style) list.Model {
		delegate := list.NewDefaultDelegate()
		delegate.Styles.SelectedTitle = lipgloss.NewStyle().
			Border(lipgloss.ThickBorder(), false, false, false, true).
			BorderForeground(style.AccentColor).
			Foreground(style.AccentColor).
			Padding(0, 0, 0, 1)
		delegate.Styles.SelectedDesc = delegate.Styles.SelectedTitle

		listC := list.New([]list.Item{}, delegate, 0, 0)
		listC.KeyMap = bubble.keymap.forList()
		listC.AdditionalShortHelpKeys = bubble.keymap.ShortHelp
		listC.AdditionalFullHelpKeys = func() []bubblesKey.Binding {
			return bubble.keymap.FullHelp()[0]
		}
		listC.Title = title
		listC.Styles.Title = titleStyle
		listC.Styles.NoItems = paddingStyle
		listC.StatusMessageLifetime = time.Second * 3
		listC.SetShowPagination(false)
		listC.SetFilteringEnabled(false)
		return listC
	}

	bubble.helpC = help.New()

	bubble.spinnerC = spinner.New()
	bubble.spinnerC.Spinner = spinner.Dot
	bubble.spinnerC.Style = lipgloss.NewStyle().Foreground(style.AccentColor)

	bubble.progressC = progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage())

	bubble.queueC = makeList("Queue", lipgloss.NewStyle().Foreground(style.Base).Background(style.Lavender).Padding(0, 1))
	bubble.queueC.SetStatusBarItemName("item", "items")

	bubble.historyC = makeList("History", lipgloss.NewStyle().Foreground(style.Base).Background(style.Yellow).Padding(0, 1))
	bubble.historyC.SetStatusBarItemName("entry", "entries")

	if options.Queue != nil {
		bubble.queueC.SetItems(queueItems(options.Queue.Items()))
	}

	if w, h, err := util.TerminalSize(); err == nil {
		bubble.resize(w, h)
	}

	return &bubble
}
