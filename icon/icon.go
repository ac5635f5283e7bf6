// Package icon renders status symbols in the variant chosen by icons.variant.
package icon

import (
	"github.com/playctl/playctl/key"
	"github.com/spf13/viper"
)

const (
	emoji   = "emoji"
	nerd    = "nerd"
	plain   = "plain"
	kaomoji = "kaomoji"
	squares = "squares"
)

// AvailableVariants lists the accepted icons.variant values.
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

func (d *iconDef) render(variant string) string {
	switch variant {
	case emoji:
		return d.emoji
	case nerd:
		return d.nerd
	case kaomoji:
		return d.kaomoji
	case squares:
		return d.squares
	default:
		return d.plain
	}
}

// Get renders i. Unknown variants render as plain.
func Get(i Icon) string {
	d, ok := icons[i]
	if !ok {
		return ""
	}
	return d.render(viper.GetString(key.IconsVariant))
}

// Icon identifies a registered UI symbol.
type Icon int

// Registered icons.
const (
	Success Icon = iota
	Fail
	Progress
	Warn
	Skip
	Chapter
	Live
	Next
	Play
)

var icons = map[Icon]*iconDef{
	Success:  {emoji: "✅", nerd: "\uf00c", plain: "✓", kaomoji: "(ᵔ◡ᵔ)", squares: "🟩"},
	Fail:     {emoji: "❌", nerd: "\uf00d", plain: "✖", kaomoji: "(╥﹏╥)", squares: "🟥"},
	Progress: {emoji: "⏳", nerd: "\uf110", plain: "…", kaomoji: "( ˘▽˘)っ", squares: "🟦"},
	Warn:     {emoji: "⚠️", nerd: "\uf071", plain: "!", kaomoji: "(・_・;)", squares: "🟨"},
	Skip:     {emoji: "⏭️", nerd: "\uf051", plain: ">>", kaomoji: "ε=ε=┌( >_<)┘", squares: "🟪"},
	Chapter:  {emoji: "📖", nerd: "\uf02d", plain: "#", kaomoji: "φ(．．)", squares: "🟫"},
	Live:     {emoji: "🔴", nerd: "\uf111", plain: "*", kaomoji: "(⊙_⊙)", squares: "🟥"},
	Next:     {emoji: "🔜", nerd: "\uf050", plain: "->", kaomoji: "(ﾉ◕ヮ◕)ﾉ", squares: "🟧"},
	Play:     {emoji: "▶️", nerd: "\uf04b", plain: ">", kaomoji: "ヽ(•‿•)ノ", squares: "🟩"},
}
