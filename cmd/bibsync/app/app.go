// Package app provides the application context and dependency management
// for the bibsync CLI. It centralizes settings, configuration, logging and
// the lazily connected sync client.
package app

import (
	"context"
	"io"
	"os"
	"sync"

	"github.com/rs/zerolog"

	"github.com/agentstation/bibsync"
	"github.com/agentstation/bibsync/internal/cmd/output"
	"github.com/agentstation/bibsync/internal/config"
	"github.com/agentstation/bibsync/pkg/remote"
)

// App represents the bibsync application with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string
	builtBy string

	settings *Settings
	logger   *zerolog.Logger
	out      io.Writer

	mu      sync.RWMutex
	config  *config.Config
	service remote.Service
	client  bibsync.Client
}

// New creates a new App instance with the given version information.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	app := &App{
		version:  version,
		commit:   commit,
		date:     date,
		builtBy:  builtBy,
		settings: LoadSettings(),
		out:      os.Stdout,
	}

	logger := NewLogger(app.settings)
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

// Settings returns the global flag settings.
func (a *App) Settings() *Settings {
	return a.settings
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// OutputFormat returns the --format flag.
func (a *App) OutputFormat() string {
	return a.settings.Format
}

// Out returns where command results are written.
func (a *App) Out() io.Writer {
	return a.out
}

// Color reports whether status lines may be colored.
func (a *App) Color() bool {
	return !a.settings.NoColor && output.IsTerminal(a.out)
}

// Config returns the loaded configuration, loading it on first use.
func (a *App) Config() (*config.Config, error) {
	a.mu.RLock()
	cfg := a.config
	a.mu.RUnlock()
	if cfg != nil {
		return cfg, nil
	}
	return a.loadConfig()
}

// loadConfig reads the configuration using the current flags.
func (a *App) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(
		config.WithFile(a.settings.ConfigFile),
		config.WithToken(a.settings.Token),
	)
	if err != nil {
		return nil, err
	}
	for _, c := range cfg.InvalidColors() {
		a.logger.Warn().Str("color", c).Msg("Unknown option color, using default")
	}
	if cfg.File != "" {
		a.logger.Debug().Str("file", cfg.File).Msg("Loaded configuration")
	}

	a.mu.Lock()
	a.config = cfg
	a.client = nil
	a.mu.Unlock()
	return cfg, nil
}

// Client returns the sync client, creating it on first use.
func (a *App) Client(ctx context.Context) (bibsync.Client, error) {
	a.mu.RLock()
	if a.client != nil {
		c := a.client
		a.mu.RUnlock()
		return c, nil
	}
	a.mu.RUnlock()

	cfg, err := a.Config()
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	// Double-check after acquiring write lock
	if a.client != nil {
		return a.client, nil
	}

	c, err := a.newClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a.client = c
	return c, nil
}

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithConfig sets the configuration instead of loading it.
func WithConfig(cfg *config.Config) Option {
	return func(a *App) error {
		a.config = cfg
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

// WithService connects the client to service instead of Notion.
func WithService(service remote.Service) Option {
	return func(a *App) error {
		a.service = service
		return nil
	}
}

// WithOutput redirects command results.
func WithOutput(w io.Writer) Option {
	return func(a *App) error {
		a.out = w
		return nil
	}
}
