// Package bootstrap wires configuration, the schema catalog, metrics and the
// HTTP channel into a runnable application.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/artpar/fieldresolver/adapters/metrics"
	"github.com/artpar/fieldresolver/adapters/sqlite"
	"github.com/artpar/fieldresolver/config"
	httpchannel "github.com/artpar/fieldresolver/core/channel/http"
	"github.com/artpar/fieldresolver/core/schema"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

// App represents the running application.
type App struct {
	Logger     zerolog.Logger
	Config     *config.Holder
	Metrics    *metrics.Collector
	Channel    *httpchannel.Channel
	HTTPServer *http.Server

	catalog  atomic.Pointer[schema.Catalog]
	reloadMu sync.Mutex
}

// Options provides optional configuration for application initialization.
type Options struct {
	// ConfigPath is the YAML config file. When it does not exist the
	// configuration comes from FIELDRESOLVER_* environment variables.
	ConfigPath string

	// Registerer receives the Prometheus metrics. Defaults to the global registry.
	Registerer prometheus.Registerer

	// LogOutput defaults to os.Stdout.
	LogOutput io.Writer
}

// New loads the configuration and the initial catalog and builds the HTTP server.
func New(opts Options) (*App, error) {
	cfg, err := config.LoadWithFallback(opts.ConfigPath)
	if err != nil {
		return nil, err
	}

	out := opts.LogOutput
	if out == nil {
		out = os.Stdout
	}
	logger := NewLogger(cfg.Logging, out)

	var holder *config.Holder
	if _, statErr := os.Stat(opts.ConfigPath); opts.ConfigPath != "" && statErr == nil {
		holder, err = config.NewHolder(opts.ConfigPath, logger)
		if err != nil {
			return nil, err
		}
	} else {
		holder = config.NewStaticHolder(cfg, logger)
	}

	return NewWithHolder(holder, logger, opts.Registerer)
}

// NewWithHolder builds the application around an existing config holder.
func NewWithHolder(holder *config.Holder, logger zerolog.Logger, reg prometheus.Registerer) (*App, error) {
	cfg := holder.Get()

	logger.Info().
		Str("schema_source", cfg.Schema.Source).
		Msg("initializing fieldresolver")

	a := &App{
		Logger: logger,
		Config: holder,
	}

	if cfg.Metrics.Enabled {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		a.Metrics = metrics.NewWithRegistry(reg)
		logger.Info().Str("path", cfg.Metrics.Path).Msg("prometheus metrics enabled")
	}

	cat, err := LoadCatalog(context.Background(), cfg.Schema)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	a.setCatalog(cat, false)

	a.Channel = httpchannel.New(a, httpchannel.Options{
		Logger:      logger,
		Metrics:     a.Metrics,
		MetricsPath: cfg.Metrics.Path,
	})
	a.HTTPServer = &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      a.Channel.Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	holder.OnChange(a.applyConfig)
	holder.OnSchemaChange(func() {
		if err := a.ReloadCatalog(context.Background()); err != nil {
			a.Logger.Error().Err(err).Msg("schema change reload failed")
		}
	})

	return a, nil
}

// Catalog returns the active catalog.
func (a *App) Catalog() *schema.Catalog {
	return a.catalog.Load()
}

// ReloadCatalog rebuilds the catalog from the configured source and swaps it
// in. On failure the previous catalog stays active.
func (a *App) ReloadCatalog(ctx context.Context) error {
	a.reloadMu.Lock()
	defer a.reloadMu.Unlock()

	cat, err := LoadCatalog(ctx, a.Config.Get().Schema)
	if err != nil {
		if a.Metrics != nil {
			a.Metrics.CatalogReloadErrors.Inc()
		}
		a.Logger.Error().Err(err).Msg("catalog reload failed, keeping previous catalog")
		return fmt.Errorf("reload catalog: %w", err)
	}

	a.setCatalog(cat, true)
	return nil
}

func (a *App) setCatalog(cat *schema.Catalog, reload bool) {
	a.catalog.Store(cat)
	if a.Metrics != nil {
		a.Metrics.RecordCatalog(cat, reload)
	}
	a.Logger.Info().
		Int("entity_types", len(cat.EntityTypes())).
		Int("resource_types", len(cat.ResourceTypes())).
		Bool("reload", reload).
		Msg("catalog loaded")
}

// applyConfig runs after a config reload.
func (a *App) applyConfig(cfg *config.Config) {
	if level, err := zerolog.ParseLevel(cfg.Logging.Level); err == nil {
		zerolog.SetGlobalLevel(level)
	}
	if err := a.ReloadCatalog(context.Background()); err != nil {
		a.Logger.Error().Err(err).Msg("config change reload failed")
	}
}

// Run starts watchers and the HTTP server and blocks until ctx is done, a
// SIGINT/SIGTERM arrives or the server fails.
func (a *App) Run(ctx context.Context) error {
	cfg := a.Config.Get()

	a.Config.WatchSignals()
	if a.Config.Path() != "" {
		if err := a.Config.WatchFile(); err != nil {
			a.Logger.Warn().Err(err).Msg("config file watch disabled")
		}
	}
	if cfg.Schema.Watch {
		if err := a.Config.WatchSchema(); err != nil {
			a.Logger.Warn().Err(err).Msg("schema watch disabled")
		}
	}

	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info().
			Str("addr", a.HTTPServer.Addr).
			Msg("starting http server")
		if err := a.HTTPServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errCh:
		a.Config.Stop()
		return fmt.Errorf("server error: %w", err)
	case sig := <-quit:
		a.Logger.Info().Str("signal", sig.String()).Msg("shutting down")
	case <-ctx.Done():
		a.Logger.Info().Msg("context cancelled, shutting down")
	}

	return a.Shutdown()
}

// Shutdown gracefully stops the application.
func (a *App) Shutdown() error {
	timeout := a.Config.Get().Server.ShutdownTimeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	a.Config.Stop()

	if a.HTTPServer != nil {
		if err := a.HTTPServer.Shutdown(ctx); err != nil {
			a.Logger.Error().Err(err).Msg("http server shutdown error")
			return err
		}
	}

	a.Logger.Info().Msg("shutdown complete")
	return nil
}

// LoadCatalog builds a catalog from the configured schema source.
func LoadCatalog(ctx context.Context, cfg config.SchemaConfig) (*schema.Catalog, error) {
	switch cfg.Source {
	case config.SourceSQLite:
		db, err := sqlite.Open(cfg.DSN)
		if err != nil {
			return nil, err
		}
		defer db.Close()

		if err := db.MigrateContext(ctx); err != nil {
			return nil, fmt.Errorf("migrate: %w", err)
		}
		return sqlite.NewSchemaStore(db).Load(ctx)
	default:
		return schema.LoadDir(cfg.Dir)
	}
}

// NewLogger creates the application logger and sets the global level.
func NewLogger(cfg config.LoggingConfig, out io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Format == "console" {
		output := zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
		return zerolog.New(output).With().Timestamp().Logger()
	}

	return zerolog.New(out).With().Timestamp().Logger()
}
