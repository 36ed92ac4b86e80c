package commands

import (
	"fmt"

	"github.com/dendrite-io/dendrite-echo/internal/constants"
	"github.com/dendrite-io/dendrite-echo/internal/views"
	"github.com/spf13/cobra"
)

// viewResult is the structured form of an opened view.
type viewResult struct {
	Path      string `json:"path"                yaml:"path"`
	Route     string `json:"route"               yaml:"route"`
	Title     string `json:"title"               yaml:"title"`
	Status    string `json:"status,omitempty"    yaml:"status,omitempty"`
	Reachable *bool  `json:"reachable,omitempty" yaml:"reachable,omitempty"`
}

// NewViewsCommand creates the views command group.
func NewViewsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "views",
		Aliases: []string{"view"},
		Short:   "List and open dashboard views",
		Long:    "List the routes of the dashboard and render a view by path",
	}

	cmd.AddCommand(newViewsListCommand())
	cmd.AddCommand(newViewsOpenCommand())

	return cmd
}

func newViewsListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List routes",
		Long:  "List every route of the dashboard, including redirects",
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := outputFormat()
			if err != nil {
				return err
			}

			routes := views.DefaultRoutes()

			if format != constants.FormatTable {
				return writeStructured(cmd.OutOrStdout(), format, routes)
			}

			rows := make([][]string, 0, len(routes))
			for _, route := range routes {
				rows = append(rows, []string{route.Path, route.Name, route.Title, route.Redirect})
			}

			return renderTable(cmd.OutOrStdout(), []string{"Path", "Name", "Title", "Redirect"}, rows)
		},
	}
}

func newViewsOpenCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "open PATH",
		Short: "Render a view",
		Long:  "Resolve PATH through the router and render the view it leads to",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := outputFormat()
			if err != nil {
				return err
			}

			s, err := newSession(cmd)
			if err != nil {
				return err
			}

			defer func() { _ = s.Close() }()

			client, err := s.client()
			if err != nil {
				return err
			}

			router := views.NewRouter(client, s.store, s.renderer)
			defer router.Close()

			route, err := router.Resolve(args[0])
			if err != nil {
				return err
			}

			view, err := router.Open(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if format == constants.FormatTable {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), view.Render())

				return err
			}

			return writeStructured(cmd.OutOrStdout(), format, describeView(args[0], route, view))
		},
	}
}

func describeView(path string, route views.Route, view views.View) viewResult {
	result := viewResult{
		Path:  path,
		Route: route.Path,
		Title: view.Title(),
	}

	if dashboard, ok := view.(*views.DashboardView); ok {
		reachable := dashboard.Reachable()
		result.Status = dashboard.Status()
		result.Reachable = &reachable
	}

	return result
}
