// Package color names the terminal colors playctl renders with.
package color

import "github.com/charmbracelet/lipgloss"

// ANSI colors follow the user's terminal theme.
var (
	Red      = lipgloss.Color("1")
	Green    = lipgloss.Color("2")
	Yellow   = lipgloss.Color("3")
	Blue     = lipgloss.Color("4")
	Purple   = lipgloss.Color("5")
	Cyan     = lipgloss.Color("6")
	HiRed    = lipgloss.Color("9")
	HiPurple = lipgloss.Color("13")
)

// Colors of playback status lines.
var (
	Text    = lipgloss.Color("#cdd6f4")
	Accent  = lipgloss.Color("#cba6f7")
	Warning = lipgloss.Color("#f9e2af")
	Live    = lipgloss.Color("#89dceb")
	Error   = lipgloss.Color("#f38ba8")
)
