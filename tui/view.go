package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/dashreel/dashreel/attempt"
	"github.com/dashreel/dashreel/color"
	"github.com/dashreel/dashreel/handover"
	"github.com/dashreel/dashreel/icon"
	"github.com/dashreel/dashreel/style"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/reflow/wrap"
)

var (
	listExtraPaddingStyle = lipgloss.NewStyle().Padding(1, 2, 1, 0)
	paddingStyle          = lipgloss.NewStyle().Padding(1, 2)
)

func (b *statefulBubble) View() string {
	switch b.state {
	case playingState:
		return b.viewPlaying()
	case queueState:
		return listExtraPaddingStyle.Render(b.queueC.View())
	case historyState:
		return listExtraPaddingStyle.Render(b.historyC.View())
	case errorState:
		return b.viewError()
	default:
		return "Unknown state"
	}
}

func (b *statefulBubble) viewPlaying() string {
	snap := b.snapshot
	fit := func(s string) string { return truncate.StringWithTail(s, uint(max(b.width, 10)), "…") }

	if snap.Item == nil {
		status := b.spinnerC.View() + " starting"
		if b.finished {
			status = icon.Get(icon.Success) + " queue finished"
		}
		return b.renderLines(true, []string{style.Title("Now Playing"), "", status})
	}

	kind := icon.Get(icon.Video)
	if !snap.Item.IsVideo() {
		kind = icon.Get(icon.Image)
	}

	lines := []string{
		style.Title("Now Playing"),
		"",
		fit(fmt.Sprintf("%s %s", kind, style.Fg(color.Purple)(snap.Item.Name))),
		"",
		b.viewStatus(),
	}

	if snap.Duration > 0 {
		lines = append(lines,
			"",
			b.progressC.ViewAs(min(float64(snap.Position)/float64(snap.Duration), 1)),
			style.Faint(fmt.Sprintf("%s / %s", clock(snap.Position), clock(snap.Duration))),
		)
	}

	if len(b.notices) > 0 {
		lines = append(lines, "")
		for _, n := range b.notices {
			lines = append(lines, fit(style.Faint(fmt.Sprintf("%s %s: %s", noticeIcon(n.Kind), n.Item.Name, n.Reason))))
		}
	}

	return b.renderLines(true, lines)
}

func (b *statefulBubble) viewStatus() string {
	snap := b.snapshot
	var parts []string

	if snap.Backend != "" {
		parts = append(parts, style.Tag(style.Base, style.Lavender)(snap.Backend))
	}

	switch {
	case snap.Paused:
		parts = append(parts, icon.Get(icon.Pause)+" paused")
	case snap.State == attempt.Ready:
		parts = append(parts, style.Fg(style.PlayingColor)(icon.Get(icon.Play)+" playing"))
	case snap.State == attempt.Buffering, snap.State == attempt.Idle:
		parts = append(parts, b.spinnerC.View()+" "+string(snap.State))
	default:
		parts = append(parts, string(snap.State))
	}

	if snap.HandedOver {
		parts = append(parts, style.Fg(style.WarningColor)(icon.Get(icon.Handover)+" handed over"))
	}
	if snap.Retries > 0 {
		parts = append(parts, style.Fg(style.WarningColor)(fmt.Sprintf("retry %d", snap.Retries)))
	}
	if snap.Driving {
		parts = append(parts, icon.Get(icon.Driving)+" driving")
	}

	return strings.Join(parts, "  ")
}

func (b *statefulBubble) viewError() string {
	errorStyle := lipgloss.NewStyle().Foreground(style.ErrorColor).Bold(true)
	errorMsg := wrap.String(errorStyle.Render(b.lastErr.Error()), b.width)
	return b.renderLines(
		true,
		[]string{
			style.ErrorTitle("Error"),
			"",
			icon.Get(icon.Fail) + " An error occurred:",
			"",
			errorMsg,
		},
	)
}

func (b *statefulBubble) renderLines(addHelp bool, lines []string) string {
	h := len(lines)
	l := strings.Join(lines, "\n")
	if addHelp {
		if b.height > h {
			l += strings.Repeat("\n", b.height-h)
		}
		l += b.helpC.View(b.keymap)
	}

	return paddingStyle.Render(l)
}

func noticeIcon(kind handover.Kind) string {
	switch kind {
	case handover.Abort:
		return icon.Get(icon.Fail)
	case handover.Switch:
		return icon.Get(icon.Handover)
	default:
		return icon.Get(icon.Success)
	}
}

func clock(d time.Duration) string {
	d = d.Round(time.Second)
	h, m, s := int(d.Hours()), int(d.Minutes())%60, int(d.Seconds())%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
