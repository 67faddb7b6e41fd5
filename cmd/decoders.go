package cmd

import (
	"context"
	"encoding/json"
	"os"

	"github.com/dashreel/dashreel/color"
	"github.com/dashreel/dashreel/decoder"
	"github.com/dashreel/dashreel/key"
	"github.com/dashreel/dashreel/style"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.AddCommand(decodersCmd)

	decodersCmd.Flags().StringP("codec", "c", "video/hevc", "Codec MIME or tag to rank decoders for")
	decodersCmd.Flags().BoolP("json", "j", false, "Format the output as JSON")
	decodersCmd.Flags().Bool("conservative", false, "Show the ranks used when retrying without hardware decoding")

	decodersCmd.SetOut(os.Stdout)
}

var decodersCmd = &cobra.Command{
	Use:   "decoders",
	Short: "List the platform decoders for a codec in the order they are tried",
	Run: func(cmd *cobra.Command, args []string) {
		var (
			codec        = lo.Must(cmd.Flags().GetString("codec"))
			conservative = lo.Must(cmd.Flags().GetBool("conservative"))
			classifier   = decoder.DefaultClassifier()
			inventory    = &decoder.GstInspect{Binary: viper.GetString(key.PlayerGstInspect), Classifier: classifier}
		)

		candidates, err := inventory.Decoders(context.Background(), codec)
		handleErr(err)

		ranked := classifier.Rank(codec, candidates)

		if lo.Must(cmd.Flags().GetBool("json")) {
			handleErr(json.NewEncoder(cmd.OutOrStdout()).Encode(ranked))
			return
		}

		if len(ranked) == 0 {
			cmd.Println(style.Faint("no decoders found for " + codec))
			return
		}

		for i, c := range ranked {
			cmd.Printf("%2d. %s %s\n", i+1, style.Bold(c.Name), tierLabel(classifier, c))
		}

		cmd.Println()
		cmd.Println(style.Faint("GST_PLUGIN_FEATURE_RANK=" + decoder.RankEnv(ranked, conservative)))
	},
}

func tierLabel(classifier decoder.Classifier, c decoder.Candidate) string {
	switch {
	case classifier.IsBundled(c.Name):
		return style.Fg(color.Green)("bundled software")
	case c.Software:
		return style.Fg(color.Cyan)("software")
	case c.Hardware:
		return style.Fg(color.Yellow)("hardware")
	default:
		return style.Faint("unclassified")
	}
}
