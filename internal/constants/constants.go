package constants

import "time"

// File and directory permissions.
const (
	// ConfigDirPerm is the permission for configuration directories.
	ConfigDirPerm = 0750

	// ConfigFilePerm is the permission for configuration and preference files.
	ConfigFilePerm = 0600
)

// Application identity.
const (
	// AppName is the CLI and metrics namespace name.
	AppName = "dendrite-echo"

	// ConfigDirName is the directory under $HOME holding config and preferences.
	ConfigDirName = ".dendrite-echo"

	// ConfigFileName is the viper config name (without extension).
	ConfigFileName = "config"

	// PreferencesFileName is the file used by the file storage backend.
	PreferencesFileName = "preferences.yml"

	// EnvPrefix is the prefix of environment variables read by viper.
	EnvPrefix = "DENDRITE_ECHO"
)

// API defaults.
const (
	// DefaultEndpoint is the backend origin used when none is configured.
	DefaultEndpoint = "http://localhost:8080"

	// DefaultBasePath is prefixed to every API path.
	DefaultBasePath = "/api/v1"

	// PingPath is the health-check endpoint relative to the base path.
	PingPath = "/ping"

	// MediaTypeJSON is the default content type of requests and responses.
	MediaTypeJSON = "application/json"

	// MediaTypeJSONAPI is the JSON:API media type.
	MediaTypeJSONAPI = "application/vnd.api+json"

	// HeaderRequestID carries the per-request correlation id.
	HeaderRequestID = "X-Request-ID"
)

// Retry defaults, used only when retries are enabled.
const (
	// DefaultRetryWaitMin is the minimum wait time between retries.
	DefaultRetryWaitMin = 1 * time.Second

	// DefaultRetryWaitMax is the maximum wait time between retries.
	DefaultRetryWaitMax = 10 * time.Second
)

// HTTP status codes commonly used.
const (
	// HTTPStatusBadRequest represents a client error.
	HTTPStatusBadRequest = 400

	// HTTPStatusInternalServerError represents server errors.
	HTTPStatusInternalServerError = 500
)

// Circuit breaker states and defaults.
const (
	// StatusOpen indicates an open state.
	StatusOpen = "open"

	// StatusHalfOpen indicates a half-open state.
	StatusHalfOpen = "half-open"

	// StatusClosed indicates a closed state.
	StatusClosed = "closed"

	// CircuitBreakerThreshold is the failure threshold for circuit breaker.
	CircuitBreakerThreshold = 5

	// CircuitBreakerSuccessThreshold is the success threshold for circuit breaker.
	CircuitBreakerSuccessThreshold = 2

	// CircuitBreakerTimeout is the timeout for circuit breaker.
	CircuitBreakerTimeout = 30 * time.Second
)

// Format constants.
const (
	// FormatJSON for JSON output format.
	FormatJSON = "json"

	// FormatYAML for YAML output format.
	FormatYAML = "yaml"

	// FormatTable for table output format.
	FormatTable = "table"

	// JSONIndent is the indent used for pretty-printed JSON.
	JSONIndent = "  "
)

// Theme storage.
const (
	// ThemeStorageKey is the storage key of the theme preference.
	ThemeStorageKey = "dendrite-echo-theme"

	// DefaultRedisPrefix prefixes keys of the Redis storage backend.
	DefaultRedisPrefix = "dendrite-echo:"

	// DefaultNATSBucket is the JetStream key-value bucket of the NATS backend.
	DefaultNATSBucket = "dendrite_echo"

	// WatchDebounce coalesces bursts of file events from editors.
	WatchDebounce = 100 * time.Millisecond

	// DefaultStorageTimeout bounds connection checks of remote backends.
	DefaultStorageTimeout = 5 * time.Second
)
