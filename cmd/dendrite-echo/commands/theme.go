package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dendrite-io/dendrite-echo/internal/constants"
	"github.com/dendrite-io/dendrite-echo/internal/theme"
	"github.com/spf13/cobra"
)

// themeInfo is the structured form of the theme state.
type themeInfo struct {
	Preference  theme.Preference `json:"preference"  yaml:"preference"`
	Resolved    theme.Resolved   `json:"resolved"    yaml:"resolved"`
	Interactive bool             `json:"interactive" yaml:"interactive"`
}

// NewThemeCommand creates the theme command group.
func NewThemeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "theme",
		Short: "Manage the color theme",
		Long:  "Show, change and resolve the light, dark or auto theme preference",
	}

	cmd.AddCommand(newThemeGetCommand())
	cmd.AddCommand(newThemeSetCommand())
	cmd.AddCommand(newThemeResolveCommand())

	return cmd
}

func newThemeGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get",
		Short: "Show the theme preference",
		Long:  "Show the stored theme preference and the theme it resolves to",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd)
			if err != nil {
				return err
			}

			defer func() { _ = s.Close() }()

			return outputTheme(cmd, s)
		},
	}
}

func newThemeSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:       "set " + preferenceUsage(),
		Short:     "Change the theme preference",
		Long:      "Persist the theme preference and apply it to the terminal",
		Args:      cobra.ExactArgs(1),
		ValidArgs: preferenceNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			preference, err := theme.ParsePreference(args[0])
			if err != nil {
				return err
			}

			s, err := newSession(cmd)
			if err != nil {
				return err
			}

			defer func() { _ = s.Close() }()

			err = s.store.SetTheme(cmd.Context(), preference)
			if err != nil {
				return fmt.Errorf("failed to set theme: %w", err)
			}

			if !s.themes.Interactive() {
				s.logger.Warn("preference storage is disabled, the theme was not persisted")
			}

			return outputTheme(cmd, s)
		},
	}
}

func newThemeResolveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve [" + preferenceUsage() + "]",
		Short: "Resolve a theme preference",
		Long:  "Print the theme a preference resolves to. Without an argument the stored preference is resolved",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd)
			if err != nil {
				return err
			}

			defer func() { _ = s.Close() }()

			preference := s.store.ThemePreference()

			if len(args) == 1 {
				preference, err = theme.ParsePreference(args[0])
				if err != nil {
					return err
				}
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), s.themes.ResolveTheme(preference))

			return err
		},
	}
}

func outputTheme(cmd *cobra.Command, s *session) error {
	format, err := outputFormat()
	if err != nil {
		return err
	}

	info := themeInfo{
		Preference:  s.store.ThemePreference(),
		Resolved:    s.store.ResolvedTheme(),
		Interactive: s.themes.Interactive(),
	}

	if format != constants.FormatTable {
		return writeStructured(cmd.OutOrStdout(), format, info)
	}

	return renderTable(cmd.OutOrStdout(), []string{"Property", "Value"}, [][]string{
		{"Preference", string(info.Preference)},
		{"Resolved", string(info.Resolved)},
		{"Interactive", strconv.FormatBool(info.Interactive)},
	})
}

func preferenceNames() []string {
	names := make([]string, 0, len(theme.Preferences()))
	for _, p := range theme.Preferences() {
		names = append(names, string(p))
	}

	return names
}

func preferenceUsage() string {
	return strings.Join(preferenceNames(), "|")
}
