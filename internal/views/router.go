// Package views renders the routed screens of the dashboard in the terminal.
package views

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/dendrite-io/dendrite-echo/internal/ui"
	"github.com/dendrite-io/dendrite-echo/pkg/api"
)

// ErrRouteNotFound is returned for paths outside the route table.
var ErrRouteNotFound = errors.New("route not found")

// Route names.
const (
	RouteDashboard  = "dashboard"
	RouteFiles      = "files"
	RouteCommands   = "commands"
	RouteConsole    = "console"
	RouteMonitoring = "monitoring"
)

// Route is an entry of the route table. A route with Redirect set has no view.
type Route struct {
	Path     string `json:"path"               yaml:"path"`
	Name     string `json:"name,omitempty"     yaml:"name,omitempty"`
	Title    string `json:"title,omitempty"    yaml:"title,omitempty"`
	Redirect string `json:"redirect,omitempty" yaml:"redirect,omitempty"`
}

// DefaultRoutes returns the route table of the dashboard.
func DefaultRoutes() []Route {
	return []Route{
		{Path: "/", Redirect: "/dashboard"},
		{Path: "/dashboard", Name: RouteDashboard, Title: "Dashboard"},
		{Path: "/files", Name: RouteFiles, Title: "Files"},
		{Path: "/commands", Name: RouteCommands, Title: "Commands"},
		{Path: "/console", Name: RouteConsole, Title: "Console"},
		{Path: "/monitoring", Name: RouteMonitoring, Title: "Monitoring"},
	}
}

// View is a rendered screen.
type View interface {
	Title() string
	Render() string
}

// Router maps paths to views. The dashboard view is created on first open
// and reused; opening it again re-checks the API.
type Router struct {
	routes   []Route
	client   api.HealthClient
	store    *ui.Store
	renderer *lipgloss.Renderer

	mu        sync.Mutex
	dashboard *DashboardView
}

// NewRouter creates a router over the default routes.
func NewRouter(client api.HealthClient, store *ui.Store, renderer *lipgloss.Renderer) *Router {
	if renderer == nil {
		renderer = lipgloss.DefaultRenderer()
	}

	return &Router{
		routes:   DefaultRoutes(),
		client:   client,
		store:    store,
		renderer: renderer,
	}
}

// Routes returns the route table.
func (r *Router) Routes() []Route {
	out := make([]Route, len(r.routes))
	copy(out, r.routes)

	return out
}

// Resolve finds the route for path, following redirects.
func (r *Router) Resolve(path string) (Route, error) {
	path = normalizePath(path)

	for i := 0; i < len(r.routes)+1; i++ {
		route, ok := r.lookup(path)
		if !ok {
			return Route{}, fmt.Errorf("%w: %s", ErrRouteNotFound, path)
		}

		if route.Redirect == "" {
			return route, nil
		}

		path = route.Redirect
	}

	return Route{}, fmt.Errorf("%w: redirect loop at %s", ErrRouteNotFound, path)
}

// Open resolves path and returns its view.
func (r *Router) Open(ctx context.Context, path string) (View, error) {
	route, err := r.Resolve(path)
	if err != nil {
		return nil, err
	}

	if route.Name != RouteDashboard {
		return NewComingSoonView(route.Title, r.renderer), nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.dashboard == nil {
		r.dashboard = NewDashboardView(ctx, r.client, r.store, r.renderer)

		return r.dashboard, nil
	}

	r.store.MarkDashboardOpen()

	return r.dashboard, nil
}

// Close releases the dashboard view.
func (r *Router) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.dashboard != nil {
		r.dashboard.Close()
		r.dashboard = nil
	}
}

func (r *Router) lookup(path string) (Route, bool) {
	for _, route := range r.routes {
		if route.Path == path {
			return route, true
		}
	}

	return Route{}, false
}

func normalizePath(path string) string {
	path = strings.TrimSpace(path)
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	if len(path) > 1 {
		path = strings.TrimSuffix(path, "/")
	}

	return path
}
