// Package logging configures logrus and adapts it to the logger interfaces
// used by the API client and its transport.
package logging

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dendrite-io/dendrite-echo/internal/constants"
	log "github.com/sirupsen/logrus"
)

// Supported log formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// ErrUnknownFormat is returned for a log format other than text or json.
var ErrUnknownFormat = errors.New("unknown log format")

// Options configures a logger.
type Options struct {
	// Level is a logrus level name; empty means "info".
	Level string
	// Format is "text" (default) or "json".
	Format string
	// Output defaults to stderr so command output on stdout stays parseable.
	Output io.Writer
	// File, when set, receives a copy of every entry.
	File string
}

// New builds a logrus logger from opts. The returned close function releases
// the log file, if any.
func New(opts Options) (*log.Logger, func() error, error) {
	logger := log.New()
	noop := func() error { return nil }

	level := log.InfoLevel

	if opts.Level != "" {
		parsed, err := log.ParseLevel(opts.Level)
		if err != nil {
			return nil, noop, fmt.Errorf("parsing log level: %w", err)
		}

		level = parsed
	}

	logger.SetLevel(level)

	switch strings.ToLower(opts.Format) {
	case "", FormatText:
		logger.SetFormatter(&log.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.RFC3339Nano,
		})
	case FormatJSON:
		logger.SetFormatter(&log.JSONFormatter{TimestampFormat: time.RFC3339Nano})
	default:
		return nil, noop, fmt.Errorf("%w: %s", ErrUnknownFormat, opts.Format)
	}

	output := opts.Output
	if output == nil {
		output = os.Stderr
	}

	if opts.File == "" {
		logger.SetOutput(output)

		return logger, noop, nil
	}

	err := os.MkdirAll(filepath.Dir(opts.File), constants.ConfigDirPerm)
	if err != nil {
		return nil, noop, fmt.Errorf("create log directory: %w", err)
	}

	file, err := os.OpenFile(opts.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, constants.ConfigFilePerm)
	if err != nil {
		return nil, noop, fmt.Errorf("open log file: %w", err)
	}

	logger.SetOutput(io.MultiWriter(output, file))

	return logger, file.Close, nil
}
