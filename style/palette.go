package style

import "github.com/charmbracelet/lipgloss"

var (
	Base     = lipgloss.Color("#1e1e2e")
	Text     = lipgloss.Color("#cdd6f4")
	Subtext  = lipgloss.Color("#a6adc8")
	Mauve    = lipgloss.Color("#cba6f7")
	Red      = lipgloss.Color("#f38ba8")
	Yellow   = lipgloss.Color("#f9e2af")
	Green    = lipgloss.Color("#a6e3a1")
	Lavender = lipgloss.Color("#b4befe")
)

// Semantic colors of the player view.
var (
	AccentColor  = Mauve
	WarningColor = Yellow
	ErrorColor   = Red
	HiRed        = Red
	// PlayingColor marks a video that reached Ready.
	PlayingColor = Green
)
