// Package icon renders status symbols as emoji, nerd-font glyphs, plain ASCII,
// kaomoji or colored squares.
package icon

import (
	"github.com/dashreel/dashreel/key"
	"github.com/spf13/viper"
)

const (
	emoji   = "emoji"
	nerd    = "nerd"
	plain   = "plain"
	kaomoji = "kaomoji"
	squares = "squares"
)

func AvailableVariants() []string {
	return []string{emoji, nerd, plain, kaomoji, squares}
}

type iconDef struct {
	emoji   string
	nerd    string
	plain   string
	kaomoji string
	squares string
}

func (d *iconDef) variant(name string) string {
	switch name {
	case emoji:
		return d.emoji
	case nerd:
		return d.nerd
	case kaomoji:
		return d.kaomoji
	case squares:
		return d.squares
	default:
		// head units often lack emoji fonts
		return d.plain
	}
}

// Get renders i in the configured variant. Unknown variants render as plain text.
func Get(i Icon) string {
	def, ok := icons[i]
	if !ok {
		return ""
	}
	return def.variant(viper.GetString(key.IconsVariant))
}
