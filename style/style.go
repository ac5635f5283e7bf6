// Package style renders terminal text with lipgloss.
package style

import "github.com/charmbracelet/lipgloss"

func New() lipgloss.Style {
	return lipgloss.NewStyle()
}

// Fg returns a renderer that colors the foreground.
func Fg(c lipgloss.Color) func(string) string {
	st := New().Foreground(c)
	return func(s string) string { return st.Render(s) }
}

// Badge returns a renderer for short inverted labels such as LIVE.
func Badge(c lipgloss.Color) func(string) string {
	st := New().Bold(true).Foreground(lipgloss.Color("0")).Background(c).Padding(0, 1)
	return func(s string) string { return st.Render(s) }
}

var (
	Faint = New().Faint(true).Render
	Bold  = New().Bold(true).Render
)
