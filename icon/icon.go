// Package icon renders status symbols in the variant chosen by icons.variant.
package icon

import (
	"github.com/playspan/playspan/key"
	"github.com/spf13/viper"
)

const (
	emoji   = "emoji"
	nerd    = "nerd"
	plain   = "plain"
	squares = "squares"
)

// AvailableVariants returns every supported icon variant.
func AvailableVariants() []string {
	return []string{emoji, nerd, plain, squares}
}

// Icon identifies a symbol in the registry.
type Icon int

const (
	Success Icon = iota
	Fail
	Progress
	Mark
	Chapter
	Clock
	Play
	Dump
)

type iconDef struct {
	emoji   string
	nerd    string
	plain   string
	squares string
}

func (d iconDef) get() string {
	switch viper.GetString(key.IconsVariant) {
	case emoji:
		return d.emoji
	case nerd:
		return d.nerd
	case plain:
		return d.plain
	case squares:
		return d.squares
	default:
		return ""
	}
}

var icons = map[Icon]iconDef{
	Success:  {emoji: "🎉", nerd: "", plain: "✓", squares: "🟩"},
	Fail:     {emoji: "💀", nerd: "", plain: "✗", squares: "🟥"},
	Progress: {emoji: "⏳", nerd: "", plain: "…", squares: "🟦"},
	Mark:     {emoji: "👉", nerd: "", plain: ">", squares: "🟪"},
	Chapter:  {emoji: "📖", nerd: "", plain: "#", squares: "🟨"},
	Clock:    {emoji: "🕒", nerd: "", plain: "@", squares: "🟧"},
	Play:     {emoji: "▶️", nerd: "", plain: "▶", squares: "🟩"},
	Dump:     {emoji: "💾", nerd: "", plain: "↓", squares: "🟫"},
}

// Get returns the symbol for i in the configured variant, or "" for an unknown variant.
func Get(i Icon) string {
	return icons[i].get()
}
