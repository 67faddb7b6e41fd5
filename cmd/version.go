package cmd

import (
	"os"
	"os/exec"
	"runtime"
	"strings"
	"text/template"

	"github.com/dashreel/dashreel/color"
	"github.com/dashreel/dashreel/constant"
	"github.com/dashreel/dashreel/strategy"
	"github.com/dashreel/dashreel/style"
	"github.com/dashreel/dashreel/version"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.AddCommand(versionCmd)
	versionCmd.SetOut(os.Stdout)
	versionCmd.Flags().BoolP("short", "s", false, "Display only the version string without metadata")
}

type backendInfo struct {
	ID     string
	Binary string
	Found  bool
}

func backendInfos() []backendInfo {
	return lo.Map([]string{strategy.RobustBackend, strategy.PlatformBackend}, func(id string, _ int) backendInfo {
		info := backendInfo{ID: id, Binary: viper.GetString(backendBinaries[id])}
		if path, err := exec.LookPath(info.Binary); err == nil {
			info.Binary, info.Found = path, true
		}
		return info
	})
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version, build and backend information",
	Run: func(cmd *cobra.Command, args []string) {
		if lo.Must(cmd.Flags().GetBool("short")) {
			cmd.Println(constant.Version)
			return
		}

		defer version.Notify()

		versionInfo := struct {
			App      string
			Version  string
			OS       string
			Arch     string
			BuiltAt  string
			BuiltBy  string
			Revision string
			Backends []backendInfo
		}{
			App:      constant.Dashreel,
			Version:  constant.Version,
			OS:       runtime.GOOS,
			Arch:     runtime.GOARCH,
			BuiltAt:  strings.TrimSpace(constant.BuiltAt),
			BuiltBy:  constant.BuiltBy,
			Revision: constant.Revision,
			Backends: backendInfos(),
		}

		t, err := template.New("version").Funcs(map[string]any{
			"faint":   style.Faint,
			"bold":    style.Bold,
			"magenta": style.Fg(color.Purple),
			"green":   style.Fg(color.Green),
			"red":     style.Fg(color.Red),
		}).Parse(`{{ magenta "▇▇▇" }} {{ magenta .App }}

  {{ faint "Version" }}         {{ bold .Version }}
  {{ faint "Git Commit" }}      {{ bold .Revision }}
  {{ faint "Build Date" }}      {{ bold .BuiltAt }}
  {{ faint "Built By" }}        {{ bold .BuiltBy }}
  {{ faint "Platform" }}        {{ bold .OS }}/{{ bold .Arch }}

{{ range .Backends }}  {{ faint (printf "%-16s" .ID) }}{{ if .Found }}{{ green .Binary }}{{ else }}{{ red (printf "%s not found" .Binary) }}{{ end }}
{{ end }}`)
		handleErr(err)
		handleErr(t.Execute(cmd.OutOrStdout(), versionInfo))
	},
}
