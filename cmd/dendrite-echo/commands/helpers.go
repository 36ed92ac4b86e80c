package commands

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/dendrite-io/dendrite-echo/internal/constants"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

func validOutput(format string) bool {
	switch format {
	case constants.FormatTable, constants.FormatJSON, constants.FormatYAML:
		return true
	default:
		return false
	}
}

// outputFormat returns the configured output format.
func outputFormat() (string, error) {
	format := viper.GetString("output")
	if format == "" {
		return constants.FormatTable, nil
	}

	if !validOutput(format) {
		return "", fmt.Errorf("%w: %s", constants.ErrInvalidOutput, format)
	}

	return format, nil
}

// writeStructured encodes v as JSON or YAML.
func writeStructured(w io.Writer, format string, v interface{}) error {
	switch format {
	case constants.FormatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", constants.JSONIndent)

		err := encoder.Encode(v)
		if err != nil {
			return fmt.Errorf("failed to encode JSON: %w", err)
		}

		return nil
	case constants.FormatYAML:
		encoder := yaml.NewEncoder(w)

		err := encoder.Encode(v)
		if err != nil {
			return fmt.Errorf("failed to encode YAML: %w", err)
		}

		return encoder.Close()
	default:
		return fmt.Errorf("%w: %s", constants.ErrInvalidOutput, format)
	}
}

func renderTable(w io.Writer, header []string, rows [][]string) error {
	table := tablewriter.NewWriter(w)
	cells := make([]interface{}, len(header))
	for i, cell := range header {
		cells[i] = cell
	}

	table.Header(cells...)

	for _, row := range rows {
		_ = table.Append(row)
	}

	err := table.Render()
	if err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}
