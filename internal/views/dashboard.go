package views

import (
	"context"

	"github.com/charmbracelet/lipgloss"
	"github.com/dendrite-io/dendrite-echo/internal/ui"
	"github.com/dendrite-io/dendrite-echo/pkg/api"
)

// Status lines of the dashboard.
const (
	StatusChecking  = "Checking API..."
	StatusReachable = "API reachable"
)

// DashboardView shows the API status. It pings when created and again every
// time the dashboard is reopened through the store.
type DashboardView struct {
	call        *ui.Call[api.PingResponse]
	styles      styles
	unsubscribe func()
}

// NewDashboardView creates the view and performs the first ping.
func NewDashboardView(ctx context.Context, client api.HealthClient, store *ui.Store, renderer *lipgloss.Renderer) *DashboardView {
	view := &DashboardView{
		styles: newStyles(renderer),
		call:   ui.NewCall[api.PingResponse](ctx, client.Ping, ui.CallOptions{Immediate: true}),
	}

	view.unsubscribe = store.OnDashboardOpen(func(uint64) {
		view.call.Execute(ctx)
	})

	return view
}

// Title implements View.
func (v *DashboardView) Title() string {
	return "Dashboard"
}

// Status returns the API status line.
func (v *DashboardView) Status() string {
	state := v.call.State()

	switch {
	case state.Loading:
		return StatusChecking
	case state.Error != "":
		return "Unable to reach the API (" + state.Error + ")"
	case state.Data != nil:
		return StatusReachable
	default:
		return StatusChecking
	}
}

// Reachable reports whether the last ping succeeded.
func (v *DashboardView) Reachable() bool {
	return v.call.Data() != nil
}

// Render implements View.
func (v *DashboardView) Render() string {
	status := v.styles.muted.Render(v.Status())

	switch {
	case v.Reachable():
		status = v.styles.success.Render(v.Status())
	case v.call.Err() != "":
		status = v.styles.danger.Render(v.Status())
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		v.styles.title.Render(v.Title()),
		v.styles.panel.Render(v.styles.muted.Render("The dashboard is coming soon.")),
		status,
	)
}

// Close stops reacting to dashboard-open events.
func (v *DashboardView) Close() {
	if v.unsubscribe != nil {
		v.unsubscribe()
	}
}
