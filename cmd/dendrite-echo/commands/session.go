package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/dendrite-io/dendrite-echo/internal/logging"
	"github.com/dendrite-io/dendrite-echo/internal/storage"
	"github.com/dendrite-io/dendrite-echo/internal/theme"
	"github.com/dendrite-io/dendrite-echo/internal/ui"
	"github.com/dendrite-io/dendrite-echo/pkg/api"
	"github.com/dendrite-io/dendrite-echo/pkg/pulse"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// session holds what a command needs for one invocation: the logger, the
// preference storage, the theme manager and the UI store.
type session struct {
	config    *Config
	logger    *log.Logger
	storage   storage.Storage
	renderer  *lipgloss.Renderer
	themes    *theme.Manager
	store     *ui.Store
	closeLogs func() error
}

// newSession loads the configuration and applies the stored theme.
func newSession(cmd *cobra.Command) (*session, error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	config := loadConfig()

	level := config.LogLevel
	if viper.GetBool("verbose") {
		level = log.DebugLevel.String()
	}

	logger, closeLogs, err := logging.New(logging.Options{
		Level:  level,
		Format: config.LogFormat,
		Output: cmd.ErrOrStderr(),
		File:   config.LogFile,
	})
	if err != nil {
		return nil, err
	}

	backend, err := storage.NewFromConfig(ctx, &config.Storage)
	if err != nil {
		_ = closeLogs()

		return nil, fmt.Errorf("failed to open preference storage: %w", err)
	}

	renderer := lipgloss.NewRenderer(cmd.OutOrStdout())
	env := theme.Environment{
		Detector: theme.DefaultDetector(outputFile(cmd.OutOrStdout())),
		Logger:   logger,
	}

	// A nil backend must stay a nil interface so the host reads as headless.
	if backend != nil {
		env.Storage = backend
		env.Presenter = theme.NewLipglossPresenter(renderer)
	}

	themes := theme.NewManager(env)

	err = themes.ApplyTheme(ctx, themes.GetStoredTheme(ctx))
	if err != nil {
		logger.WithError(err).Warn("failed to apply stored theme")
	}

	return &session{
		config:    config,
		logger:    logger,
		storage:   backend,
		renderer:  renderer,
		themes:    themes,
		store:     ui.NewStore(ctx, themes),
		closeLogs: closeLogs,
	}, nil
}

// outputFile returns w when it is a file, so the terminal detector looks at
// the stream the command actually writes to.
func outputFile(w io.Writer) *os.File {
	file, ok := w.(*os.File)
	if !ok {
		return nil
	}

	return file
}

// client creates an API client from the configuration.
func (s *session) client(opts ...pulse.Option) (api.Client, error) {
	debug := viper.GetBool("verbose")

	config := &api.Config{
		Endpoint:    s.config.API,
		BasePath:    s.config.BasePath,
		HTTPTimeout: s.config.Timeout,
		RetryMax:    s.config.RetryMax,
		Debug:       debug,
		Logger:      logging.NewAPILogger(s.logger),
		UserAgent:   userAgent(),
	}

	opts = append([]pulse.Option{
		pulse.WithRequestID(),
		pulse.WithTransportLogger(logging.NewLeveledLogger(s.logger)),
	}, opts...)

	client, err := pulse.New(config, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create API client: %w", err)
	}

	return client, nil
}

// Close releases the storage and the log file.
func (s *session) Close() error {
	var errs []error

	if s.storage != nil {
		errs = append(errs, s.storage.Close())
	}

	errs = append(errs, s.closeLogs())

	return errors.Join(errs...)
}
