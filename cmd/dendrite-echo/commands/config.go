package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/dendrite-io/dendrite-echo/internal/constants"
	"github.com/dendrite-io/dendrite-echo/internal/storage"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const redacted = "********"

// Config represents the CLI configuration.
type Config struct {
	API       string         `json:"api"                  yaml:"api"`
	BasePath  string         `json:"base_path"            yaml:"base_path"`
	Output    string         `json:"output"               yaml:"output"`
	LogLevel  string         `json:"log_level,omitempty"  yaml:"log_level,omitempty"`
	LogFormat string         `json:"log_format,omitempty" yaml:"log_format,omitempty"`
	LogFile   string         `json:"log_file,omitempty"   yaml:"log_file,omitempty"`
	RetryMax  int            `json:"retry_max"            yaml:"retry_max"`
	Timeout   time.Duration  `json:"timeout,omitempty"    yaml:"timeout,omitempty"`
	Storage   storage.Config `json:"storage"              yaml:"storage"`
}

// SetDefaults registers the default configuration values with viper.
func SetDefaults() {
	viper.SetDefault("api", constants.DefaultEndpoint)
	viper.SetDefault("base_path", constants.DefaultBasePath)
	viper.SetDefault("output", constants.FormatTable)
	viper.SetDefault("log_level", "warn")
	viper.SetDefault("log_format", "text")
	viper.SetDefault("storage.type", string(storage.TypeFile))
	viper.SetDefault("storage.redis.prefix", constants.DefaultRedisPrefix)
	viper.SetDefault("storage.nats.bucket", constants.DefaultNATSBucket)

	if dir, err := configDir(); err == nil {
		viper.SetDefault("storage.file.path", filepath.Join(dir, constants.PreferencesFileName))
	}
}

// NewConfigCommand creates the config command group.
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration",
		Long:  "Show and update the dendrite-echo configuration file",
	}

	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigSetCommand())

	return cmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Long:  "Display the effective configuration after flags, environment and config file are merged",
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()

			format, err := outputFormat()
			if err != nil {
				return err
			}

			config = config.redacted()

			if format != constants.FormatTable {
				return writeStructured(cmd.OutOrStdout(), format, config)
			}

			return renderTable(cmd.OutOrStdout(), []string{"Property", "Value"}, configRows(config))
		},
	}
}

func newConfigSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Set a configuration value",
		Long:  "Set a configuration value and write it to the config file. Only that key is written; values coming from flags or the environment stay out of the file. Keys: " + configKeyList(),
		Args:  cobra.ExactArgs(2), //nolint:mnd // key and value
		RunE: func(cmd *cobra.Command, args []string) error {
			key, value := args[0], args[1]

			parsed, err := parseConfigValue(key, value)
			if err != nil {
				return err
			}

			path, err := saveConfigValue(key, parsed)
			if err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Set %s to %s in %s\n", key, value, path)

			return err
		},
	}
}

func loadConfig() *Config {
	config := &Config{
		API:       viper.GetString("api"),
		BasePath:  viper.GetString("base_path"),
		Output:    viper.GetString("output"),
		LogLevel:  viper.GetString("log_level"),
		LogFormat: viper.GetString("log_format"),
		LogFile:   viper.GetString("log_file"),
		RetryMax:  viper.GetInt("retry_max"),
		Timeout:   viper.GetDuration("timeout"),
		// Read leaf by leaf: flags, env and defaults are not merged into
		// nested maps returned for a parent key.
		Storage: storage.Config{
			Type: storage.Type(viper.GetString("storage.type")),
			File: storage.FileConfig{Path: viper.GetString("storage.file.path")},
			Redis: storage.RedisConfig{
				Addr:     viper.GetString("storage.redis.addr"),
				Password: viper.GetString("storage.redis.password"),
				DB:       viper.GetInt("storage.redis.db"),
				Prefix:   viper.GetString("storage.redis.prefix"),
			},
			NATS: storage.NATSConfig{
				URL:    viper.GetString("storage.nats.url"),
				Bucket: viper.GetString("storage.nats.bucket"),
			},
		},
	}

	return config
}

// redacted returns a copy of the configuration that is safe to print.
func (c *Config) redacted() *Config {
	out := *c
	if out.Storage.Redis.Password != "" {
		out.Storage.Redis.Password = redacted
	}

	return &out
}

type configParser func(string) (interface{}, error)

// configHandlers maps the settable keys to their parsers.
func configHandlers() map[string]configParser {
	str := func(v string) (interface{}, error) { return v, nil }

	integer := func(key string) configParser {
		return func(v string) (interface{}, error) {
			n, err := strconv.Atoi(v)
			if err != nil {
				return nil, fmt.Errorf("invalid %s %q: %w", key, v, err)
			}

			return n, nil
		}
	}

	return map[string]configParser{
		"api":        str,
		"base_path":  str,
		"log_level":  str,
		"log_format": str,
		"log_file":   str,
		"output": func(v string) (interface{}, error) {
			if !validOutput(v) {
				return nil, fmt.Errorf("%w: %s", constants.ErrInvalidOutput, v)
			}

			return v, nil
		},
		"retry_max": integer("retry_max"),
		"timeout": func(v string) (interface{}, error) {
			d, err := time.ParseDuration(v)
			if err != nil {
				return nil, fmt.Errorf("invalid timeout %q: %w", v, err)
			}

			return d.String(), nil
		},
		"storage.type": func(v string) (interface{}, error) {
			switch storage.Type(v) {
			case storage.TypeMemory, storage.TypeFile, storage.TypeRedis, storage.TypeNATS, storage.TypeNone:
				return v, nil
			default:
				return nil, fmt.Errorf("%w: %s", constants.ErrUnknownStorageType, v)
			}
		},
		"storage.file.path":      str,
		"storage.redis.addr":     str,
		"storage.redis.password": str,
		"storage.redis.prefix":   str,
		"storage.redis.db":       integer("storage.redis.db"),
		"storage.nats.url":       str,
		"storage.nats.bucket":    str,
	}
}

func configKeyList() string {
	keys := make([]string, 0, len(configHandlers()))
	for key := range configHandlers() {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	return strings.Join(keys, ", ")
}

func parseConfigValue(key, value string) (interface{}, error) {
	parse, ok := configHandlers()[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", constants.ErrUnknownConfigKey, key)
	}

	return parse(value)
}

func configRows(config *Config) [][]string {
	rows := [][]string{
		{"API", config.API},
		{"Base Path", config.BasePath},
		{"Output", config.Output},
		{"Log Level", config.LogLevel},
		{"Log Format", config.LogFormat},
		{"Retry Max", strconv.Itoa(config.RetryMax)},
		{"Storage", string(config.Storage.Type)},
	}

	if config.LogFile != "" {
		rows = append(rows, []string{"Log File", config.LogFile})
	}

	if config.Timeout > 0 {
		rows = append(rows, []string{"Timeout", config.Timeout.String()})
	}

	switch config.Storage.Type {
	case storage.TypeFile:
		rows = append(rows, []string{"Preferences File", config.Storage.File.Path})
	case storage.TypeRedis:
		rows = append(rows, []string{"Redis Address", config.Storage.Redis.Addr})
	case storage.TypeNATS:
		rows = append(rows, []string{"NATS URL", config.Storage.NATS.URL})
	case storage.TypeMemory, storage.TypeNone:
	}

	return rows
}

func configDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(home, constants.ConfigDirName), nil
}

// saveConfigValue writes key to the config file, keeping what the file
// already holds. A separate viper instance is used so values coming from
// flags, environment or defaults are not written.
func saveConfigValue(key string, value interface{}) (string, error) {
	configFile := viper.ConfigFileUsed()
	if configFile == "" {
		dir, err := configDir()
		if err != nil {
			return "", err
		}

		configFile = filepath.Join(dir, constants.ConfigFileName+".yml")
	}

	err := os.MkdirAll(filepath.Dir(configFile), constants.ConfigDirPerm)
	if err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	file := viper.New()
	file.SetConfigFile(configFile)
	file.SetConfigPermissions(constants.ConfigFilePerm)

	if _, statErr := os.Stat(configFile); statErr == nil {
		err = file.ReadInConfig()
		if err != nil {
			return "", fmt.Errorf("failed to read config file: %w", err)
		}
	}

	file.Set(key, value)

	err = file.WriteConfigAs(configFile)
	if err != nil {
		return "", fmt.Errorf("failed to write config file: %w", err)
	}

	return configFile, nil
}
