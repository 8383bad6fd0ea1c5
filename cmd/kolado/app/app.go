// Package app provides the application context and dependency management
// for the kolado CLI. It centralizes configuration, logging and the
// construction of sync clients, and owns the root cobra command.
package app

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	kolado "github.com/GustavoBertuzzi/API-Kolado"
	"github.com/GustavoBertuzzi/API-Kolado/cmd/application"
	"github.com/GustavoBertuzzi/API-Kolado/pkg/errors"
)

// App represents the kolado application with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string
	builtBy string

	config *Config
	logger *zerolog.Logger

	// client replaces every client built by Client, for tests
	mu     sync.RWMutex
	client kolado.Client
}

var _ application.Application = (*App)(nil)

// New creates a new App instance with the given version information.
// Configuration is loaded from the default locations and can be
// replaced using functional options.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
	}

	config, err := LoadConfig("")
	if err != nil {
		return nil, err
	}
	app.config = config

	logger := NewLogger(config)
	app.logger = &logger

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	return app, nil
}

// Version returns the version information.
func (a *App) Version() string {
	return a.version
}

// Commit returns the git commit hash.
func (a *App) Commit() string {
	return a.commit
}

// Date returns the build date.
func (a *App) Date() string {
	return a.date
}

// BuiltBy returns the build system identifier.
func (a *App) BuiltBy() string {
	return a.builtBy
}

// Config returns the application configuration.
func (a *App) Config() *Config {
	return a.config
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// OutputFormat returns the --format value, or "" to auto-detect.
func (a *App) OutputFormat() string {
	return a.config.Format
}

// Client builds a sync client from the configuration. Each call returns a
// new client since commands pass different run options.
func (a *App) Client(opts ...kolado.Option) (kolado.Client, error) {
	a.mu.RLock()
	injected := a.client
	a.mu.RUnlock()
	if injected != nil {
		return injected, nil
	}

	all := append(a.clientOptions(), opts...)
	client, err := kolado.New(a.config.Kolado, all...)
	if err != nil {
		if errors.IsConfigError(err) {
			return nil, err
		}
		return nil, errors.WrapConfig("client", err)
	}
	return client, nil
}

// Shutdown performs graceful shutdown of the application. Runs hold no
// resources past their return, so only the logger is flushed.
func (a *App) Shutdown(_ context.Context) error {
	a.logger.Debug().Msg("Shutting down")
	return nil
}

// clientOptions maps the run tuning of the configuration to client options.
func (a *App) clientOptions() []kolado.Option {
	var opts []kolado.Option

	if a.config.Workers > 0 {
		opts = append(opts, kolado.WithWorkers(a.config.Workers))
	}
	if a.config.HTTPTimeout > 0 {
		opts = append(opts, kolado.WithHTTPTimeout(a.config.HTTPTimeout))
	}
	if a.config.KeyPrefix != "" {
		opts = append(opts, kolado.WithKeyPrefix(a.config.KeyPrefix))
	}
	if a.config.PushgatewayURL != "" {
		opts = append(opts, kolado.WithPushgateway(a.config.PushgatewayURL, a.config.MetricsJob))
	}

	return opts
}

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithConfig sets a custom configuration.
func WithConfig(config *Config) Option {
	return func(a *App) error {
		a.config = config
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		return nil
	}
}

// WithClient sets a client returned by every Client call (useful for testing).
func WithClient(client kolado.Client) Option {
	return func(a *App) error {
		a.client = client
		return nil
	}
}
