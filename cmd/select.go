package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"reflect"

	"github.com/dashreel/dashreel/color"
	"github.com/dashreel/dashreel/decoder"
	"github.com/dashreel/dashreel/icon"
	"github.com/dashreel/dashreel/media"
	"github.com/dashreel/dashreel/strategy"
	"github.com/dashreel/dashreel/style"
	"github.com/invopop/jsonschema"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

// Selection is the chain's verdict for one item.
type Selection struct {
	Item      string               `json:"item" jsonschema:"description=Path or link of the item."`
	Kind      media.Kind           `json:"kind" jsonschema:"enum=video,enum=image"`
	MIME      string               `json:"mime,omitempty" jsonschema:"description=Declared MIME type."`
	Codec     string               `json:"codec,omitempty" jsonschema:"description=Declared codec tag."`
	Fragile   bool                 `json:"fragile" jsonschema:"description=Whether the codec belongs to the family platform decoders often reject."`
	Backend   *strategy.Descriptor `json:"backend,omitempty" jsonschema:"description=Backend that attempts the item first. Absent for images."`
	Alternate *strategy.Descriptor `json:"alternate,omitempty" jsonschema:"description=Backend the item is handed over to on failure."`
}

func init() {
	rootCmd.AddCommand(selectCmd)

	selectCmd.Flags().String("mime", "", "Declared MIME type of the items")
	selectCmd.Flags().String("codec", "", "Declared codec tag of the items (e.g. hvc1.1.6.L93)")
	selectCmd.Flags().BoolP("json", "j", false, "Format the output as JSON")
	selectCmd.Flags().Bool("schema", false, "Print the JSON schema of the output and exit")

	selectCmd.SetOut(os.Stdout)
}

var selectCmd = &cobra.Command{
	Use:   "select [paths or urls...]",
	Short: "Show which backend would play each item",
	Run: func(cmd *cobra.Command, args []string) {
		if lo.Must(cmd.Flags().GetBool("schema")) {
			reflector := new(jsonschema.Reflector)
			reflector.Anonymous = true
			reflector.Namer = func(t reflect.Type) string {
				return t.Name()
			}
			handleErr(json.NewEncoder(cmd.OutOrStdout()).Encode(reflector.Reflect([]Selection{})))
			return
		}

		if len(args) == 0 {
			handleErr(cmd.Help())
			return
		}

		chain, err := strategy.Default()
		handleErr(err)

		var (
			mime  = lo.Must(cmd.Flags().GetString("mime"))
			codec = lo.Must(cmd.Flags().GetString("codec"))
		)

		selections := lo.Map(args, func(arg string, _ int) Selection {
			item := media.New(arg).WithMIME(mime).WithCodec(codec)
			return selectFor(chain, item)
		})

		if lo.Must(cmd.Flags().GetBool("json")) {
			handleErr(json.NewEncoder(cmd.OutOrStdout()).Encode(selections))
			return
		}

		for _, s := range selections {
			if s.Backend == nil {
				cmd.Printf("%s %s %s\n", icon.Get(icon.Image), s.Item, style.Faint("shown for a while, no backend"))
				continue
			}

			line := fmt.Sprintf("%s %s %s %s", icon.Get(icon.Video), s.Item, style.Faint("->"), style.Fg(color.Purple)(s.Backend.ID))
			if s.Alternate != nil {
				line += style.Faint(" then " + s.Alternate.ID)
			}
			if s.Fragile {
				line += " " + style.Fg(color.Yellow)("fragile")
			}
			cmd.Println(line)
		}
	},
}

func selectFor(chain *strategy.Chain, item *media.Item) Selection {
	s := Selection{
		Item:  item.Path,
		Kind:  item.Kind,
		MIME:  item.MIME.OrEmpty(),
		Codec: item.Codec.OrEmpty(),
	}
	s.Fragile = decoder.IsFragile(s.Codec) || decoder.IsFragile(s.MIME)

	if !item.IsVideo() {
		return s
	}

	backend := chain.Select(item)
	s.Backend = &backend
	if alternate, err := chain.Alternate(backend.ID); err == nil {
		s.Alternate = &alternate
	}
	return s
}
