package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/dendrite-io/dendrite-echo/internal/constants"
	"github.com/dendrite-io/dendrite-echo/internal/storage"
	"github.com/dendrite-io/dendrite-echo/internal/theme"
	"github.com/dendrite-io/dendrite-echo/internal/ui"
	"github.com/dendrite-io/dendrite-echo/internal/views"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const dashboardPath = "/dashboard"

// NewDashboardCommand creates the dashboard command.
func NewDashboardCommand() *cobra.Command {
	var watch time.Duration

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Show the dashboard",
		Long:  "Open the dashboard and show the API status. With --watch the dashboard is reopened at every interval until interrupted, and theme changes made to the preferences file by other processes are applied",
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

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			if watch > 0 {
				err = followThemeChanges(ctx, s.storage, s.store, s.logger)
				if err != nil {
					s.logger.WithError(err).Warn("failed to watch preferences file")
				}
			}

			return watchDashboard(ctx, cmd.OutOrStdout(), router, format, watch)
		},
	}

	cmd.Flags().DurationVarP(&watch, "watch", "w", 0, "reopen the dashboard at this interval (e.g. 30s)")

	return cmd
}

func watchDashboard(ctx context.Context, out io.Writer, router *views.Router, format string, interval time.Duration) error {
	route, err := router.Resolve(dashboardPath)
	if err != nil {
		return err
	}

	show := func() error {
		view, err := router.Open(ctx, dashboardPath)
		if err != nil {
			return err
		}

		if format != constants.FormatTable {
			return writeStructured(out, format, describeView(dashboardPath, route, view))
		}

		_, err = fmt.Fprintln(out, view.Render())

		return err
	}

	err = show()
	if err != nil || interval <= 0 {
		return err
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			err = show()
			if err != nil {
				return err
			}
		}
	}
}

// followThemeChanges applies theme preferences written to the preferences
// file by other processes until ctx is done. Only the file backend can be
// followed; other backends are ignored.
func followThemeChanges(ctx context.Context, backend storage.Storage, store *ui.Store, logger *log.Logger) error {
	file, ok := backend.(*storage.File)
	if !ok {
		return nil
	}

	return file.Watch(ctx, func(items map[string]string) {
		value, found := items[constants.ThemeStorageKey]
		if !found {
			return
		}

		preference, err := theme.ParsePreference(value)
		if err != nil {
			logger.WithError(err).Debug("ignoring stored theme preference")

			return
		}

		if preference == store.ThemePreference() {
			return
		}

		err = store.SetTheme(ctx, preference)
		if err != nil {
			logger.WithError(err).Warn("failed to apply theme change")

			return
		}

		logger.WithField("preference", preference).Info("theme preference changed")
	})
}
