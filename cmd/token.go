package cmd

import (
	"errors"
	"os"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/dashreel/dashreel/auth"
	"github.com/dashreel/dashreel/color"
	"github.com/dashreel/dashreel/icon"
	"github.com/dashreel/dashreel/style"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/zalando/go-keyring"
)

func init() {
	rootCmd.AddCommand(tokenCmd)
	tokenCmd.SetOut(os.Stdout)
}

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Manage the access token appended to remote links",
}

func init() {
	tokenCmd.AddCommand(tokenSetCmd)
}

var tokenSetCmd = &cobra.Command{
	Use:   "set [token]",
	Short: "Store the access token in the system keyring",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		var token string
		if len(args) == 1 {
			token = args[0]
		} else {
			handleErr(survey.AskOne(&survey.Password{Message: "Access token"}, &token))
		}

		token = strings.TrimSpace(token)
		if token == "" {
			handleErr(errors.New("empty token"))
		}

		handleErr(auth.SetToken(token))
		cmd.Printf("%s token saved\n", style.Fg(color.Green)(icon.Get(icon.Success)))
	},
}

func init() {
	tokenCmd.AddCommand(tokenGetCmd)
	tokenGetCmd.Flags().BoolP("reveal", "r", false, "Print the whole token")
}

var tokenGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Print the access token in use",
	Run: func(cmd *cobra.Command, args []string) {
		token, err := auth.Token()
		handleErr(err)

		if token == "" {
			cmd.Println(style.Faint("no token set"))
			return
		}

		if lo.Must(cmd.Flags().GetBool("reveal")) {
			cmd.Println(token)
			return
		}
		cmd.Println(maskToken(token))
	},
}

func maskToken(token string) string {
	if len(token) <= 4 {
		return strings.Repeat("*", len(token))
	}
	return strings.Repeat("*", len(token)-4) + token[len(token)-4:]
}

func init() {
	tokenCmd.AddCommand(tokenDeleteCmd)
}

var tokenDeleteCmd = &cobra.Command{
	Use:     "delete",
	Short:   "Remove the access token from the system keyring",
	Aliases: []string{"remove"},
	Run: func(cmd *cobra.Command, args []string) {
		err := auth.DeleteToken()
		if errors.Is(err, keyring.ErrNotFound) {
			cmd.Println(style.Faint("no token stored"))
			return
		}
		handleErr(err)
		cmd.Printf("%s token deleted\n", style.Fg(color.Green)(icon.Get(icon.Success)))
	},
}
