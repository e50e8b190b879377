package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/dgallion1/stepdeck/internal/theme"
)

// Theme holds the terminal colours and styles for the presenter view.
type Theme struct {
	Renderer *lipgloss.Renderer
	Gradient theme.Gradient

	Primary lipgloss.AdaptiveColor
	Subtext lipgloss.AdaptiveColor
	Muted   lipgloss.AdaptiveColor
	Border  lipgloss.AdaptiveColor
	Accent  lipgloss.AdaptiveColor

	Title    lipgloss.Style
	Counter  lipgloss.Style
	Sidebar  lipgloss.Style
	Selected lipgloss.Style
	Status   lipgloss.Style
	Hint     lipgloss.Style
}

// NewTheme builds the view theme around a deck gradient. The gradient's
// first stop doubles as the accent colour.
func NewTheme(r *lipgloss.Renderer, g theme.Gradient) Theme {
	t := Theme{
		Renderer: r,
		Gradient: g,

		Primary: lipgloss.AdaptiveColor{Light: "#7D56F4", Dark: "#BD93F9"},
		Subtext: lipgloss.AdaptiveColor{Light: "#999999", Dark: "#BFBFBF"},
		Muted:   lipgloss.AdaptiveColor{Light: "#AAAAAA", Dark: "#6272A4"},
		Border:  lipgloss.AdaptiveColor{Light: "#DDDDDD", Dark: "#44475A"},
		Accent:  lipgloss.AdaptiveColor{Light: g.From, Dark: g.From},
	}

	t.Title = r.NewStyle().Bold(true).Foreground(t.Primary)
	t.Counter = r.NewStyle().Foreground(t.Subtext)
	t.Sidebar = r.NewStyle().
		Border(lipgloss.NormalBorder(), false, true, false, false).
		BorderForeground(t.Border).
		PaddingRight(1)
	t.Selected = r.NewStyle().Bold(true).Foreground(t.Accent)
	t.Status = r.NewStyle().Foreground(t.Accent)
	t.Hint = r.NewStyle().Foreground(t.Muted)
	return t
}
