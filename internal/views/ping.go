package views

import (
	"encoding/json"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/dendrite-io/dendrite-echo/internal/constants"
	"github.com/dendrite-io/dendrite-echo/pkg/api"
)

// PingView renders a ping response as indented JSON.
type PingView struct {
	response *api.PingResponse
	styles   styles
}

// NewPingView creates the view for response.
func NewPingView(response *api.PingResponse, renderer *lipgloss.Renderer) *PingView {
	return &PingView{response: response, styles: newStyles(renderer)}
}

// Title implements View.
func (v *PingView) Title() string {
	return "API Response"
}

// JSON returns the response indented with two spaces.
func (v *PingView) JSON() (string, error) {
	data, err := json.MarshalIndent(v.response, "", constants.JSONIndent)
	if err != nil {
		return "", fmt.Errorf("encoding ping response: %w", err)
	}

	return string(data), nil
}

// Render implements View.
func (v *PingView) Render() string {
	body, err := v.JSON()
	if err != nil {
		body = err.Error()
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		v.styles.title.Render(v.Title()),
		v.styles.panel.Render(body),
	)
}
