package commands

import (
	"fmt"
	"runtime"

	"github.com/dendrite-io/dendrite-echo/internal/constants"
	"github.com/spf13/cobra"
)

// VersionInfo describes the build.
type VersionInfo struct {
	Version string `json:"version" yaml:"version"`
	Commit  string `json:"commit"  yaml:"commit"`
	Built   string `json:"built"   yaml:"built"`
	Go      string `json:"go"      yaml:"go"`
}

var buildInfo = VersionInfo{Version: "dev", Commit: "none", Built: "unknown", Go: runtime.Version()}

// SetBuildInfo records the values injected at link time.
func SetBuildInfo(version, commit, date string) {
	buildInfo.Version = version
	buildInfo.Commit = commit
	buildInfo.Built = date
}

func userAgent() string {
	return fmt.Sprintf("%s/%s", constants.AppName, buildInfo.Version)
}

// NewVersionCommand creates the version command.
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Display version information",
		Long:  "Display detailed version information about the dendrite-echo CLI",
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := outputFormat()
			if err != nil {
				return err
			}

			if format != constants.FormatTable {
				return writeStructured(cmd.OutOrStdout(), format, buildInfo)
			}

			return renderTable(cmd.OutOrStdout(), []string{"Property", "Value"}, [][]string{
				{"Version", buildInfo.Version},
				{"Commit", buildInfo.Commit},
				{"Built", buildInfo.Built},
				{"Go", buildInfo.Go},
			})
		},
	}
}
