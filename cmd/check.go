package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"

	"github.com/dashreel/dashreel/icon"
	"github.com/dashreel/dashreel/key"
	"github.com/dashreel/dashreel/log"
	"github.com/dashreel/dashreel/strategy"
	"github.com/dashreel/dashreel/style"
	"github.com/charmbracelet/lipgloss"
	"github.com/samber/lo"
	"github.com/spf13/viper"
)

// backendBinaries maps a backend to the config key of its executable.
var backendBinaries = map[string]string{
	strategy.RobustBackend:   key.PlayerMPVBinary,
	strategy.PlatformBackend: key.PlayerGstBinary,
}

// CheckDependencies warns about every backend whose executable is missing
// and exits when none of them can run.
func CheckDependencies(backends []string) {
	missing := lo.Filter(backends, func(id string, _ int) bool {
		k, ok := backendBinaries[id]
		if !ok {
			return false
		}
		_, err := exec.LookPath(viper.GetString(k))
		return err != nil
	})

	for _, id := range missing {
		binary := viper.GetString(backendBinaries[id])
		log.Warnf("backend %s unavailable: %s not found", id, binary)
		printMissingDependency(binary, installHint(id))
	}

	if len(missing) > 0 && len(missing) == len(backends) {
		os.Exit(1)
	}
}

func installHint(backend string) string {
	packages := map[string]map[string]string{
		strategy.RobustBackend: {
			"darwin":  "brew install mpv",
			"linux":   "sudo apt install mpv",
			"windows": "scoop install mpv",
		},
		strategy.PlatformBackend: {
			"darwin":  "brew install gstreamer",
			"linux":   "sudo apt install gstreamer1.0-tools gstreamer1.0-plugins-good gstreamer1.0-libav",
			"windows": "scoop install gstreamer",
		},
	}
	return packages[backend][runtime.GOOS]
}

func printMissingDependency(dep, installCmd string) {
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(style.HiRed).
		Padding(1, 2).
		Margin(1, 0)

	title := style.New().Bold(true).Foreground(style.HiRed).Render(fmt.Sprintf("%s Missing Dependency", icon.Get(icon.Warn)))
	body := style.New().Foreground(style.Text).Render(fmt.Sprintf("'%s' was not found in your PATH.", dep))

	suggestion := ""
	if installCmd != "" {
		suggestion = fmt.Sprintf("\n\nTo install it, try running:\n  %s", style.New().Foreground(style.AccentColor).Bold(true).Render(installCmd))
	}

	fmt.Println(box.Render(
		lipgloss.JoinVertical(lipgloss.Left,
			title,
			"\n",
			body,
			suggestion,
		),
	))
}
