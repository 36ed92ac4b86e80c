package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dendrite-io/dendrite-echo/internal/constants"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// NewRootCommand creates the dendrite-echo command tree.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   constants.AppName,
		Short: "Terminal dashboard for the dendrite-pulse API",
		Long: `A terminal dashboard for the dendrite-pulse backend.

It checks the API health, renders the dashboard views and keeps the
light, dark or auto theme preference.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cobra.OnInitialize(initConfig)

	// Global flags
	flags := rootCmd.PersistentFlags()
	flags.StringP("config", "c", "", "config file (default is $HOME/.dendrite-echo/config.yml)")
	flags.StringP("api", "a", "", "API endpoint URL (default "+constants.DefaultEndpoint+")")
	flags.String("base-path", "", "API base path (default "+constants.DefaultBasePath+")")
	flags.StringP("output", "o", constants.FormatTable, "output format (table, json, yaml)")
	flags.BoolP("verbose", "v", false, "verbose output")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	flags.String("storage", "", "preference storage (memory, file, redis, nats, none)")

	// Bind flags to viper
	_ = viper.BindPFlag("config", flags.Lookup("config"))
	_ = viper.BindPFlag("api", flags.Lookup("api"))
	_ = viper.BindPFlag("base_path", flags.Lookup("base-path"))
	_ = viper.BindPFlag("output", flags.Lookup("output"))
	_ = viper.BindPFlag("verbose", flags.Lookup("verbose"))
	_ = viper.BindPFlag("log_level", flags.Lookup("log-level"))
	_ = viper.BindPFlag("storage.type", flags.Lookup("storage"))

	rootCmd.AddCommand(NewVersionCommand())
	rootCmd.AddCommand(NewConfigCommand())
	rootCmd.AddCommand(NewPingCommand())
	rootCmd.AddCommand(NewDashboardCommand())
	rootCmd.AddCommand(NewViewsCommand())
	rootCmd.AddCommand(NewThemeCommand())

	return rootCmd
}

func initConfig() {
	SetDefaults()

	cfgFile := viper.GetString("config")

	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		configDir, err := configDir()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		// Search config in ~/.dendrite-echo/config.yml
		viper.AddConfigPath(configDir)
		viper.SetConfigType("yml")
		viper.SetConfigName(constants.ConfigFileName)
	}

	// Read in environment variables that match, e.g. DENDRITE_ECHO_STORAGE_TYPE
	viper.SetEnvPrefix(constants.EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	// If a config file is found, read it in
	if err := viper.ReadInConfig(); err == nil {
		if viper.GetBool("verbose") {
			fmt.Fprintln(os.Stderr, "Using config file:", filepath.Clean(viper.ConfigFileUsed()))
		}
	}
}
