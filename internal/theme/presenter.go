package theme

import "github.com/charmbracelet/lipgloss"

// LipglossPresenter applies the resolved theme to a lipgloss renderer, so
// adaptive colors rendered through it pick their light or dark variant.
type LipglossPresenter struct {
	renderer *lipgloss.Renderer
}

// NewLipglossPresenter wraps renderer, or the default renderer when nil.
func NewLipglossPresenter(renderer *lipgloss.Renderer) *LipglossPresenter {
	if renderer == nil {
		renderer = lipgloss.DefaultRenderer()
	}

	return &LipglossPresenter{renderer: renderer}
}

// SetDark implements Presenter.
func (p *LipglossPresenter) SetDark(dark bool) {
	p.renderer.SetHasDarkBackground(dark)
}

// Dark reports whether the renderer is in dark mode.
func (p *LipglossPresenter) Dark() bool {
	return p.renderer.HasDarkBackground()
}

// Renderer returns the wrapped renderer.
func (p *LipglossPresenter) Renderer() *lipgloss.Renderer {
	return p.renderer
}

// Palette holds the adaptive colors of the views.
type Palette struct {
	Accent  lipgloss.AdaptiveColor
	Text    lipgloss.AdaptiveColor
	Muted   lipgloss.AdaptiveColor
	Success lipgloss.AdaptiveColor
	Danger  lipgloss.AdaptiveColor
	Border  lipgloss.AdaptiveColor
}

// DefaultPalette returns the dashboard colors.
func DefaultPalette() Palette {
	return Palette{
		Accent:  lipgloss.AdaptiveColor{Light: "#4338CA", Dark: "#A5B4FC"},
		Text:    lipgloss.AdaptiveColor{Light: "#111827", Dark: "#F3F4F6"},
		Muted:   lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#9CA3AF"},
		Success: lipgloss.AdaptiveColor{Light: "#047857", Dark: "#6EE7B7"},
		Danger:  lipgloss.AdaptiveColor{Light: "#B91C1C", Dark: "#FCA5A5"},
		Border:  lipgloss.AdaptiveColor{Light: "#D1D5DB", Dark: "#374151"},
	}
}
