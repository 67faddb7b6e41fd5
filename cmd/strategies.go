package cmd

import (
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/dashreel/dashreel/color"
	"github.com/dashreel/dashreel/constant"
	"github.com/dashreel/dashreel/filesystem"
	"github.com/dashreel/dashreel/icon"
	"github.com/dashreel/dashreel/media"
	"github.com/dashreel/dashreel/strategy"
	"github.com/dashreel/dashreel/style"
	"github.com/dashreel/dashreel/util"
	"github.com/dashreel/dashreel/where"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(strategiesCmd)
}

var strategiesCmd = &cobra.Command{
	Use:     "strategies",
	Aliases: []string{"strategy"},
	Short:   "Manage the strategies that pick a backend for each item",
}

func init() {
	strategiesCmd.AddCommand(strategiesListCmd)

	strategiesListCmd.Flags().BoolP("raw", "r", false, "Print only the strategy sources")
	strategiesListCmd.SetOut(os.Stdout)
}

var strategiesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the strategy chain in the order it is evaluated",
	Run: func(cmd *cobra.Command, args []string) {
		chain, err := strategy.Default()
		handleErr(err)

		if lo.Must(cmd.Flags().GetBool("raw")) {
			for _, s := range chain.Strategies() {
				cmd.Println(s.Source)
			}
			return
		}

		fallback := chain.Fallback()
		for _, s := range chain.Strategies() {
			source := style.Faint(s.Source)
			if filepath.Ext(s.Source) == ".lua" {
				source = icon.Get(icon.Lua) + " " + source
			}

			line := fmt.Sprintf(
				"%s %s %s",
				style.Fg(color.Yellow)(fmt.Sprintf("%3d", s.Priority)),
				style.Fg(color.Purple)(s.ID),
				source,
			)
			if s.Descriptor == fallback {
				line += " " + style.Fg(color.Green)("fallback")
			}
			cmd.Println(line)
		}
	},
}

func init() {
	strategiesCmd.AddCommand(strategiesRemoveCmd)

	strategiesRemoveCmd.Flags().StringArrayP("name", "n", []string{}, "Name of the Lua strategy to remove")
	lo.Must0(strategiesRemoveCmd.RegisterFlagCompletionFunc("name", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		scripts, err := filesystem.API().ReadDir(where.Strategies())
		if err != nil {
			return nil, cobra.ShellCompDirectiveError
		}

		return lo.FilterMap(scripts, func(item os.FileInfo, _ int) (string, bool) {
			name := item.Name()
			if !strings.HasSuffix(name, ".lua") {
				return "", false
			}

			return util.FileStem(name), true
		}), cobra.ShellCompDirectiveNoFileComp
	}))
}

var strategiesRemoveCmd = &cobra.Command{
	Use:   "remove",
	Short: "Remove Lua strategies",
	Run: func(cmd *cobra.Command, args []string) {
		for _, name := range lo.Must(cmd.Flags().GetStringArray("name")) {
			path := filepath.Join(where.Strategies(), name+".lua")
			handleErr(filesystem.API().Remove(path))
			fmt.Printf("%s removed %s\n", icon.Get(icon.Success), style.Fg(color.Yellow)(name))
		}
	},
}

func init() {
	strategiesCmd.AddCommand(strategiesGenCmd)

	strategiesGenCmd.Flags().StringP("name", "n", "", "Name of the new strategy")
	strategiesGenCmd.Flags().StringP("backend", "b", strategy.RobustBackend, "Backend the strategy votes for")
	strategiesGenCmd.Flags().IntP("priority", "p", 5, "Priority in the chain, lower is evaluated first")

	lo.Must0(strategiesGenCmd.MarkFlagRequired("name"))
	lo.Must0(strategiesGenCmd.RegisterFlagCompletionFunc("backend", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{strategy.RobustBackend, strategy.PlatformBackend}, cobra.ShellCompDirectiveNoFileComp
	}))
}

var strategiesGenCmd = &cobra.Command{
	Use:   "gen",
	Short: "Scaffold a Lua strategy",
	Long: `Generate a Lua strategy in the strategies directory.
The script sets BACKEND and PRIORITY and decides in CanHandle(item) whether its backend attempts an item.`,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.SetOut(os.Stdout)

		var author string
		usr, err := user.Current()
		if err == nil {
			author = usr.Username
		} else {
			author = "Anonymous"
		}

		backend := lo.Must(cmd.Flags().GetString("backend"))
		if backend != strategy.RobustBackend && backend != strategy.PlatformBackend {
			handleErr(fmt.Errorf("%w: %s", strategy.ErrUnknownBackend, backend))
		}

		s := struct {
			Name        string
			Author      string
			Backend     string
			Priority    int
			BackendVar  string
			PriorityVar string
			FallbackVar string
			MatchFn     string
		}{
			Name:        lo.Must(cmd.Flags().GetString("name")),
			Author:      author,
			Backend:     backend,
			Priority:    lo.Must(cmd.Flags().GetInt("priority")),
			BackendVar:  constant.StrategyBackendVar,
			PriorityVar: constant.StrategyPriorityVar,
			FallbackVar: constant.StrategyFallbackVar,
			MatchFn:     constant.StrategyMatchFn,
		}

		funcMap := template.FuncMap{
			"repeat": strings.Repeat,
			"plus":   func(a, b int) int { return a + b },
			"max":    util.Max[int],
		}

		tmpl, err := template.New("strategy").Funcs(funcMap).Parse(constant.StrategyTemplate)
		handleErr(err)

		target := filepath.Join(where.Strategies(), util.SanitizeFilename(s.Name)+".lua")
		f, err := filesystem.API().Create(target)
		handleErr(err)

		defer util.Ignore(f.Close)

		handleErr(tmpl.Execute(f, s))
		cmd.Println(target)
	},
}

func init() {
	strategiesCmd.AddCommand(strategiesTestCmd)

	strategiesTestCmd.Flags().String("mime", "", "Declared MIME type of the items")
	strategiesTestCmd.Flags().String("codec", "", "Declared codec tag of the items")
	strategiesTestCmd.SetOut(os.Stdout)
}

var strategiesTestCmd = &cobra.Command{
	Use:     "test [file] [paths...]",
	Short:   "Load a Lua strategy and show which items it accepts",
	Args:    cobra.MinimumNArgs(2),
	Example: "  dashreel strategies test ./hevc.lua clip.mp4 https://host/clip.ts",
	Run: func(cmd *cobra.Command, args []string) {
		s, err := strategy.LoadScript(args[0], []string{strategy.RobustBackend, strategy.PlatformBackend})
		handleErr(err)

		var (
			mime  = lo.Must(cmd.Flags().GetString("mime"))
			codec = lo.Must(cmd.Flags().GetString("codec"))
		)

		cmd.Printf("%s %s %s\n", style.Fg(color.Purple)(s.ID), style.Faint(fmt.Sprintf("priority %d", s.Priority)), style.Faint(s.Source))
		for _, path := range args[1:] {
			item := media.New(path).WithMIME(mime).WithCodec(codec)
			if s.Matcher.CanHandle(item) {
				cmd.Printf("%s %s\n", style.Fg(color.Green)(icon.Get(icon.Success)), item.Name)
			} else {
				cmd.Printf("%s %s\n", style.Faint(icon.Get(icon.Fail)), item.Name)
			}
		}
	},
}
