package views

import (
	"github.com/charmbracelet/lipgloss"
)

// ComingSoonView is the placeholder of sections that are not built yet.
type ComingSoonView struct {
	title  string
	styles styles
}

// NewComingSoonView creates a placeholder titled title.
func NewComingSoonView(title string, renderer *lipgloss.Renderer) *ComingSoonView {
	return &ComingSoonView{title: title, styles: newStyles(renderer)}
}

// Title implements View.
func (v *ComingSoonView) Title() string {
	return v.title
}

// Render implements View.
func (v *ComingSoonView) Render() string {
	return lipgloss.JoinVertical(lipgloss.Left,
		v.styles.title.Render(v.title),
		v.styles.panel.Render(v.styles.muted.Render("This section is coming soon.")),
	)
}
