package commands

import (
	"fmt"

	"github.com/dendrite-io/dendrite-echo/internal/constants"
	"github.com/dendrite-io/dendrite-echo/internal/views"
	"github.com/dendrite-io/dendrite-echo/pkg/api"
	"github.com/dendrite-io/dendrite-echo/pkg/pulse"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

const metricsNamespace = "dendrite_echo"

// NewPingCommand creates the ping command.
func NewPingCommand() *cobra.Command {
	var metricsFile string

	cmd := &cobra.Command{
		Use:   "ping",
		Short: "Ping the API",
		Long:  "Call the backend health endpoint and print the API response",
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

			var opts []pulse.Option

			registry := prometheus.NewRegistry()

			if metricsFile != "" {
				collector, err := api.NewMetricsCollector(metricsNamespace, registry)
				if err != nil {
					return fmt.Errorf("failed to create metrics collector: %w", err)
				}

				opts = append(opts, pulse.WithMetrics(collector))
			}

			client, err := s.client(opts...)
			if err != nil {
				return err
			}

			response, pingErr := client.Ping(cmd.Context())

			if metricsFile != "" {
				err = prometheus.WriteToTextfile(metricsFile, registry)
				if err != nil {
					s.logger.WithError(err).Warn("failed to write metrics file")
				}
			}

			if pingErr != nil {
				return fmt.Errorf("ping failed: %w", pingErr)
			}

			if format != constants.FormatTable {
				return writeStructured(cmd.OutOrStdout(), format, response)
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), views.NewPingView(response, s.renderer).Render())

			return err
		},
	}

	cmd.Flags().StringVar(&metricsFile, "metrics-file", "", "write Prometheus metrics of the call to this file")

	return cmd
}
