// Package config provides configuration loading and validation.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// Schema sources.
const (
	SourceYAML   = "yaml"
	SourceSQLite = "sqlite"
)

// Config is the root configuration structure.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Schema  SchemaConfig  `yaml:"schema"`
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// SchemaConfig configures where the entity catalog is loaded from.
// Use "yaml" to read definitions from Dir or "sqlite" to read the store at DSN.
type SchemaConfig struct {
	Source string `yaml:"source"` // "yaml" or "sqlite"
	Dir    string `yaml:"dir"`    // YAML definitions directory
	DSN    string `yaml:"dsn"`    // SQLite database path
	Watch  bool   `yaml:"watch"`  // Rebuild the catalog when files in Dir change
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "console"
}

// MetricsConfig configures Prometheus metrics.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"` // Enable /metrics endpoint
	Path    string `yaml:"path"`    // Custom path (default: /metrics)
}

// Load reads configuration from a YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	// Expand environment variables
	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	applyEnvOverrides(&cfg)

	setDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// LoadFromEnv creates configuration entirely from environment variables.
//
// Environment variables:
//
//	FIELDRESOLVER_SERVER_HOST     - Server host (default: 0.0.0.0)
//	FIELDRESOLVER_SERVER_PORT     - Server port (default: 8080)
//	FIELDRESOLVER_SCHEMA_SOURCE   - Schema source: yaml or sqlite (default: yaml)
//	FIELDRESOLVER_SCHEMA_DIR      - YAML schema directory (default: schema)
//	FIELDRESOLVER_SCHEMA_DSN      - SQLite schema store (default: fieldresolver.db)
//	FIELDRESOLVER_SCHEMA_WATCH    - Rebuild catalog on schema file changes
//	FIELDRESOLVER_LOG_LEVEL       - Log level: debug, info, warn, error (default: info)
//	FIELDRESOLVER_LOG_FORMAT      - Log format: json or console (default: json)
//	FIELDRESOLVER_METRICS_ENABLED - Enable /metrics endpoint
func LoadFromEnv() (*Config, error) {
	var cfg Config

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// LoadWithFallback loads the file at path when it exists and falls back to
// environment variables otherwise.
func LoadWithFallback(path string) (*Config, error) {
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
	}

	if HasEnvConfig() {
		return LoadFromEnv()
	}

	return nil, fmt.Errorf("no configuration found: provide config file or set FIELDRESOLVER_SCHEMA_DIR or FIELDRESOLVER_SCHEMA_DSN")
}

// HasEnvConfig returns true if a schema location is set in the environment.
func HasEnvConfig() bool {
	return os.Getenv("FIELDRESOLVER_SCHEMA_DIR") != "" || os.Getenv("FIELDRESOLVER_SCHEMA_DSN") != ""
}

// applyEnvOverrides applies FIELDRESOLVER_* environment variables to the config.
// Environment variables always override file-based configuration.
func applyEnvOverrides(cfg *Config) {
	// Server configuration
	if v := os.Getenv("FIELDRESOLVER_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("FIELDRESOLVER_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("FIELDRESOLVER_SERVER_READ_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Server.ReadTimeout = d
		}
	}
	if v := os.Getenv("FIELDRESOLVER_SERVER_WRITE_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Server.WriteTimeout = d
		}
	}

	// Schema configuration
	if v := os.Getenv("FIELDRESOLVER_SCHEMA_SOURCE"); v != "" {
		cfg.Schema.Source = v
	}
	if v := os.Getenv("FIELDRESOLVER_SCHEMA_DIR"); v != "" {
		cfg.Schema.Dir = v
	}
	if v := os.Getenv("FIELDRESOLVER_SCHEMA_DSN"); v != "" {
		cfg.Schema.DSN = v
	}
	if v := os.Getenv("FIELDRESOLVER_SCHEMA_WATCH"); v != "" {
		cfg.Schema.Watch = parseBool(v)
	}

	// Logging configuration
	if v := os.Getenv("FIELDRESOLVER_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("FIELDRESOLVER_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}

	// Metrics configuration
	if v := os.Getenv("FIELDRESOLVER_METRICS_ENABLED"); v != "" {
		cfg.Metrics.Enabled = parseBool(v)
	}
	if v := os.Getenv("FIELDRESOLVER_METRICS_PATH"); v != "" {
		cfg.Metrics.Path = v
	}
}

// parseBool parses a boolean from common string values.
func parseBool(v string) bool {
	v = strings.ToLower(strings.TrimSpace(v))
	return v == "true" || v == "1" || v == "yes" || v == "on"
}

func setDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 15 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 15 * time.Second
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10 * time.Second
	}

	if cfg.Schema.Source == "" {
		cfg.Schema.Source = SourceYAML
	}
	if cfg.Schema.Dir == "" {
		cfg.Schema.Dir = "schema"
	}
	if cfg.Schema.DSN == "" {
		cfg.Schema.DSN = "fieldresolver.db"
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}

	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}
}

func validate(cfg *Config) error {
	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", cfg.Server.Port)
	}

	switch cfg.Schema.Source {
	case SourceYAML:
		if cfg.Schema.Dir == "" {
			return fmt.Errorf("schema.dir is required when schema.source is 'yaml'")
		}
	case SourceSQLite:
		if cfg.Schema.DSN == "" {
			return fmt.Errorf("schema.dsn is required when schema.source is 'sqlite'")
		}
		if cfg.Schema.Watch {
			return fmt.Errorf("schema.watch is only supported when schema.source is 'yaml'")
		}
	default:
		return fmt.Errorf("schema.source must be 'yaml' or 'sqlite', got %q", cfg.Schema.Source)
	}

	if _, err := zerolog.ParseLevel(cfg.Logging.Level); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[cfg.Logging.Format] {
		return fmt.Errorf("logging.format must be 'json' or 'console', got %q", cfg.Logging.Format)
	}

	if !strings.HasPrefix(cfg.Metrics.Path, "/") {
		return fmt.Errorf("metrics.path must start with '/', got %q", cfg.Metrics.Path)
	}

	return nil
}
