// Package app provides the application context and dependency management
// for the rubrica CLI. It centralizes configuration, logging and the lazily
// built store, resolver and importer shared by every command.
package app

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/agentstation/rubrica/internal/assistant"
	"github.com/agentstation/rubrica/internal/cmd/application"
	"github.com/agentstation/rubrica/internal/config"
	"github.com/agentstation/rubrica/internal/contact"
	"github.com/agentstation/rubrica/internal/importer"
	"github.com/agentstation/rubrica/internal/notion"
	"github.com/agentstation/rubrica/internal/resolver"
	"github.com/agentstation/rubrica/pkg/errors"
)

// App represents the rubrica application with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string
	builtBy string

	config *Config
	logger *zerolog.Logger

	// Lazily built clients
	mu       sync.RWMutex
	notion   *notion.Client
	resolver *resolver.Resolver
	importer *importer.Importer
}

// New creates a new App instance with the given version information.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
	}

	cfg, err := LoadConfig()
	if err != nil {
		return nil, errors.NewConfigError("app", "loading config", err)
	}
	app.config = cfg

	logger := NewLogger(cfg)
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

// OutputFormat returns the --format flag value, empty when unset.
func (a *App) OutputFormat() string {
	return a.config.Format
}

// Workspace returns the store client used for connection checks.
func (a *App) Workspace() (application.Workspace, error) {
	c, err := a.Notion()
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Notion returns the store client, creating it lazily if needed.
func (a *App) Notion() (*notion.Client, error) {
	a.mu.RLock()
	if a.notion != nil {
		c := a.notion
		a.mu.RUnlock()
		return c, nil
	}
	a.mu.RUnlock()

	a.mu.Lock()
	defer a.mu.Unlock()
	return a.notionLocked()
}

// Resolver returns the municipality resolver, creating it lazily if needed.
func (a *App) Resolver() (application.Resolver, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	res, err := a.resolverLocked()
	if err != nil {
		return nil, err
	}
	return res, nil
}

// Importer returns the batch importer, creating it lazily if needed.
func (a *App) Importer() (application.Importer, error) {
	a.mu.RLock()
	if a.importer != nil {
		imp := a.importer
		a.mu.RUnlock()
		return imp, nil
	}
	a.mu.RUnlock()

	a.mu.Lock()
	defer a.mu.Unlock()

	// Double-check after acquiring write lock
	if a.importer != nil {
		return a.importer, nil
	}

	store, err := a.notionLocked()
	if err != nil {
		return nil, err
	}
	res, err := a.resolverLocked()
	if err != nil {
		return nil, err
	}

	a.importer = importer.New(
		contact.NewMapper(res, store),
		importer.WithBatchSize(a.config.BatchSize),
		importer.WithPause(a.config.BatchPause),
		importer.WithLogger(a.logger),
	)
	return a.importer, nil
}

// notionLocked builds the store client. Callers hold a.mu.
func (a *App) notionLocked() (*notion.Client, error) {
	if a.notion != nil {
		return a.notion, nil
	}
	cfg, err := config.LoadNotion()
	if err != nil {
		return nil, err
	}
	a.notion = notion.New(cfg)
	a.logger.Debug().Str("base_url", cfg.BaseURL).Msg("Notion client created")
	return a.notion, nil
}

// resolverLocked builds the resolver. Callers hold a.mu.
func (a *App) resolverLocked() (*resolver.Resolver, error) {
	if a.resolver != nil {
		return a.resolver, nil
	}
	store, err := a.notionLocked()
	if err != nil {
		return nil, err
	}

	opts := []resolver.Option{resolver.WithLogger(a.logger)}
	cfg, err := config.LoadAssistant()
	if err != nil {
		a.logger.Warn().Err(err).Msg("Assistant disabled")
	}
	if s := assistant.New(cfg); s != nil {
		opts = append(opts, resolver.WithSuggester(s))
		a.logger.Debug().Str("provider", cfg.Provider).Str("model", cfg.Model).Msg("Assistant enabled")
	}

	a.resolver = resolver.New(store, opts...)
	return a.resolver, nil
}

// Shutdown releases the lazily built clients.
func (a *App) Shutdown(_ context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.importer = nil
	a.resolver = nil
	a.notion = nil
	a.logger.Debug().Msg("Application shut down")
	return nil
}

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithConfig sets a custom configuration.
func WithConfig(cfg *Config) Option {
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

// WithNotion sets a prebuilt store client (useful for testing).
func WithNotion(c *notion.Client) Option {
	return func(a *App) error {
		a.notion = c
		return nil
	}
}

// Ensure App implements application.Application at compile time.
var _ application.Application = (*App)(nil)
