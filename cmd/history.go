package cmd

import (
	"encoding/json"
	"os"
	"strings"
	"time"

	"github.com/AlecAivazis/survey/v2"
	"github.com/dashreel/dashreel/color"
	"github.com/dashreel/dashreel/history"
	"github.com/dashreel/dashreel/icon"
	"github.com/dashreel/dashreel/style"
	"github.com/dashreel/dashreel/util"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().BoolP("unplayable", "u", false, "List the items no backend could play")
	historyCmd.Flags().BoolP("json", "j", false, "Format the output as JSON")
	historyCmd.Flags().IntP("limit", "n", 0, "Show at most this many entries")

	historyCmd.SetOut(os.Stdout)
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List played items, most recent first",
	Run: func(cmd *cobra.Command, args []string) {
		var (
			asJson = lo.Must(cmd.Flags().GetBool("json"))
			limit  = lo.Must(cmd.Flags().GetInt("limit"))
		)

		if lo.Must(cmd.Flags().GetBool("unplayable")) {
			reports, err := history.Unplayable()
			handleErr(err)
			reports = lo.Reverse(append([]*history.Report(nil), reports...))
			if limit > 0 {
				reports = lo.Slice(reports, 0, limit)
			}

			if asJson {
				handleErr(json.NewEncoder(cmd.OutOrStdout()).Encode(reports))
				return
			}

			for _, r := range reports {
				cmd.Printf("%s %s %s\n", style.Fg(color.Red)(icon.Get(icon.Fail)), r.Name, style.Faint(r.At.Format(time.DateTime)))
				cmd.Printf("   %s %s\n", style.Faint("tried "+strings.Join(r.Tried, ", ")+":"), r.Reason)
			}
			return
		}

		records, err := history.Recent()
		handleErr(err)
		if limit > 0 {
			records = lo.Slice(records, 0, limit)
		}

		if asJson {
			handleErr(json.NewEncoder(cmd.OutOrStdout()).Encode(records))
			return
		}

		if len(records) == 0 {
			cmd.Println(style.Faint("nothing played yet"))
			return
		}

		for _, r := range records {
			cmd.Printf(
				"%s %s %s %s\n",
				icon.Get(icon.Play),
				r.Name,
				style.Fg(color.Purple)(r.Backend),
				style.Faint(r.PlayedAt.Format(time.DateTime)+", "+util.Quantify(r.Plays, "play", "plays")),
			)
		}
	},
}

func init() {
	historyCmd.AddCommand(historyClearCmd)
	historyClearCmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Forget every played and unplayable item",
	Run: func(cmd *cobra.Command, args []string) {
		if !lo.Must(cmd.Flags().GetBool("yes")) {
			confirm := survey.Confirm{
				Message: "Clear the playback history?",
				Default: false,
			}
			var response bool
			handleErr(survey.AskOne(&confirm, &response))

			if !response {
				return
			}
		}

		handleErr(history.Clear())
		cmd.Printf("%s history cleared\n", style.Fg(color.Green)(icon.Get(icon.Success)))
	},
}
