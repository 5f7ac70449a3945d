package config

import (
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// Holder provides thread-safe access to configuration with hot reload support.
// It also watches the YAML schema directory and notifies listeners so the
// catalog can be rebuilt.
type Holder struct {
	mu             sync.RWMutex
	config         *Config
	path           string
	logger         zerolog.Logger
	watcher        *fsnotify.Watcher
	schemaWatcher  *fsnotify.Watcher
	onChange       []func(*Config)
	onSchemaChange []func()
	stopCh         chan struct{}
	stopOnce       sync.Once
}

// NewHolder creates a new config holder and loads the initial configuration.
func NewHolder(path string, logger zerolog.Logger) (*Holder, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("absolute path: %w", err)
	}

	return &Holder{
		config: cfg,
		path:   absPath,
		logger: logger,
		stopCh: make(chan struct{}),
	}, nil
}

// NewStaticHolder wraps an already loaded configuration. Reload is a no-op
// for holders without a file.
func NewStaticHolder(cfg *Config, logger zerolog.Logger) *Holder {
	return &Holder{
		config: cfg,
		logger: logger,
		stopCh: make(chan struct{}),
	}
}

// Get returns the current configuration (thread-safe).
func (h *Holder) Get() *Config {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.config
}

// Path returns the absolute config file path, empty for static holders.
func (h *Holder) Path() string {
	return h.path
}

// Reload reloads the configuration from disk.
// Returns error if loading fails (keeps old config).
func (h *Holder) Reload() error {
	if h.path == "" {
		return nil
	}

	h.logger.Info().Str("path", h.path).Msg("reloading configuration")

	newCfg, err := Load(h.path)
	if err != nil {
		h.logger.Error().Err(err).Msg("config reload failed, keeping old config")
		return fmt.Errorf("reload config: %w", err)
	}

	h.mu.Lock()
	oldCfg := h.config
	h.config = newCfg
	listeners := append([]func(*Config){}, h.onChange...)
	h.mu.Unlock()

	h.logChanges(oldCfg, newCfg)

	for _, fn := range listeners {
		fn(newCfg)
	}

	h.logger.Info().Msg("configuration reloaded successfully")
	return nil
}

// OnChange registers a callback to be called when config changes.
func (h *Holder) OnChange(fn func(*Config)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onChange = append(h.onChange, fn)
}

// OnSchemaChange registers a callback to be called when a schema file changes.
func (h *Holder) OnSchemaChange(fn func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onSchemaChange = append(h.onSchemaChange, fn)
}

// WatchFile starts watching the config file for changes.
// Changes trigger automatic reload.
func (h *Holder) WatchFile() error {
	if h.path == "" {
		return fmt.Errorf("watch config: holder has no file")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	h.watcher = watcher

	// Watch the directory (more reliable for editors that do atomic saves)
	dir := filepath.Dir(h.path)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return fmt.Errorf("watch directory: %w", err)
	}

	go h.watchLoop()

	h.logger.Info().Str("path", h.path).Msg("watching config file for changes")
	return nil
}

// WatchSchema starts watching the schema directory and its subdirectories.
// Any change to a .yaml or .yml file notifies OnSchemaChange listeners.
func (h *Holder) WatchSchema() error {
	dir := h.Get().Schema.Dir

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create schema watcher: %w", err)
	}

	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return watcher.Add(path)
		}
		return nil
	})
	if err != nil {
		watcher.Close()
		return fmt.Errorf("watch schema directory: %w", err)
	}
	h.schemaWatcher = watcher

	go h.schemaLoop()

	h.logger.Info().Str("dir", dir).Msg("watching schema directory for changes")
	return nil
}

// WatchSignals starts listening for SIGHUP to trigger reload.
// A SIGHUP reloads the configuration and rebuilds the catalog.
func (h *Holder) WatchSignals() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGHUP)

	go func() {
		for {
			select {
			case <-sigCh:
				h.logger.Info().Msg("received SIGHUP, reloading config")
				if err := h.Reload(); err != nil {
					h.logger.Error().Err(err).Msg("SIGHUP reload failed")
				}
				h.notifySchema()
			case <-h.stopCh:
				signal.Stop(sigCh)
				return
			}
		}
	}()

	h.logger.Info().Msg("listening for SIGHUP to reload config")
}

// Stop stops watching for file changes and signals.
func (h *Holder) Stop() {
	h.stopOnce.Do(func() {
		close(h.stopCh)
		if h.watcher != nil {
			h.watcher.Close()
		}
		if h.schemaWatcher != nil {
			h.schemaWatcher.Close()
		}
	})
}

func (h *Holder) watchLoop() {
	filename := filepath.Base(h.path)

	for {
		select {
		case event, ok := <-h.watcher.Events:
			if !ok {
				return
			}

			// Only react to our config file
			if filepath.Base(event.Name) != filename {
				continue
			}

			// React to write or create (atomic save = create)
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				h.logger.Debug().
					Str("event", event.Op.String()).
					Str("file", event.Name).
					Msg("config file changed")

				if err := h.Reload(); err != nil {
					h.logger.Error().Err(err).Msg("file watch reload failed")
				}
			}

		case err, ok := <-h.watcher.Errors:
			if !ok {
				return
			}
			h.logger.Error().Err(err).Msg("file watcher error")

		case <-h.stopCh:
			return
		}
	}
}

func (h *Holder) schemaLoop() {
	for {
		select {
		case event, ok := <-h.schemaWatcher.Events:
			if !ok {
				return
			}

			// New subdirectories are watched as they appear.
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := h.schemaWatcher.Add(event.Name); err != nil {
						h.logger.Error().Err(err).Str("dir", event.Name).Msg("watch schema subdirectory")
					}
					continue
				}
			}

			if !isSchemaFile(event.Name) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}

			h.logger.Debug().
				Str("event", event.Op.String()).
				Str("file", event.Name).
				Msg("schema file changed")
			h.notifySchema()

		case err, ok := <-h.schemaWatcher.Errors:
			if !ok {
				return
			}
			h.logger.Error().Err(err).Msg("schema watcher error")

		case <-h.stopCh:
			return
		}
	}
}

func (h *Holder) notifySchema() {
	h.mu.RLock()
	listeners := append([]func(){}, h.onSchemaChange...)
	h.mu.RUnlock()

	for _, fn := range listeners {
		fn()
	}
}

func isSchemaFile(name string) bool {
	return strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml")
}

func (h *Holder) logChanges(old, new *Config) {
	if old.Logging.Level != new.Logging.Level {
		h.logger.Info().
			Str("old", old.Logging.Level).
			Str("new", new.Logging.Level).
			Msg("log level changed")
	}

	if old.Schema != new.Schema {
		h.logger.Info().
			Str("old_source", old.Schema.Source).
			Str("new_source", new.Schema.Source).
			Msg("schema location changed")
	}

	if old.Server.Addr() != new.Server.Addr() {
		h.logger.Warn().
			Str("old", old.Server.Addr()).
			Str("new", new.Server.Addr()).
			Msg("server address changed, restart required")
	}
}

// ReloadableFields returns which fields can be changed without restart.
func ReloadableFields() []string {
	return []string{
		"schema.source",
		"schema.dir",
		"schema.dsn",
		"logging.level",
	}
}

// NonReloadableFields returns which fields require a restart.
func NonReloadableFields() []string {
	return []string{
		"server.host",
		"server.port",
		"schema.watch",
		"logging.format",
		"metrics.enabled",
		"metrics.path",
	}
}
