package version

import (
	"context"
	"fmt"
	"time"

	"github.com/dashreel/dashreel/color"
	"github.com/dashreel/dashreel/constant"
	"github.com/dashreel/dashreel/icon"
	"github.com/dashreel/dashreel/key"
	"github.com/dashreel/dashreel/style"
	"github.com/dashreel/dashreel/util"
	"github.com/spf13/viper"
)

// Notify displays a terminal alert if a more recent stable application version is available.
func Notify() {
	if !viper.GetBool(key.CliVersionCheck) {
		return
	}

	erase := util.PrintErasable(fmt.Sprintf("%s Checking if new version is available...", icon.Get(icon.Progress)))
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	version, err := Latest(ctx)
	erase()
	if err == nil {
		comp, err := Compare(version, constant.Version)
		if err == nil && comp <= 0 {
			return
		}
	}

	fmt.Printf(`
%s New version is available %s %s
%s

`,
		style.Fg(color.Green)("▇▇▇"),
		style.Bold(version),
		style.Faint(fmt.Sprintf("(You're on %s)", constant.Version)),
		style.Faint("https://github.com/dashreel/dashreel/releases/tag/v"+version),
	)

}
