package views

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/dendrite-io/dendrite-echo/internal/theme"
)

type styles struct {
	title   lipgloss.Style
	muted   lipgloss.Style
	success lipgloss.Style
	danger  lipgloss.Style
	panel   lipgloss.Style
}

func newStyles(renderer *lipgloss.Renderer) styles {
	palette := theme.DefaultPalette()

	return styles{
		title:   renderer.NewStyle().Bold(true).Foreground(palette.Accent),
		muted:   renderer.NewStyle().Foreground(palette.Muted),
		success: renderer.NewStyle().Foreground(palette.Success),
		danger:  renderer.NewStyle().Foreground(palette.Danger),
		panel: renderer.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(palette.Border).
			Padding(0, 1),
	}
}
