package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/artpar/fieldresolver/config"
)

func TestLoad_ValidConfig(t *testing.T) {
	content := `
server:
  host: "127.0.0.1"
  port: 9090
  read_timeout: 5s

schema:
  source: "yaml"
  dir: "./definitions"
  watch: true

logging:
  level: "debug"
  format: "console"

metrics:
  enabled: true
  path: "/internal/metrics"
`

	cfg := writeAndLoad(t, content)

	if cfg.Server.Host != "127.0.0.1" {
		t.Errorf("Host = %s, want 127.0.0.1", cfg.Server.Host)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Server.ReadTimeout != 5*time.Second {
		t.Errorf("ReadTimeout = %v, want 5s", cfg.Server.ReadTimeout)
	}
	if cfg.Server.Addr() != "127.0.0.1:9090" {
		t.Errorf("Addr() = %s, want 127.0.0.1:9090", cfg.Server.Addr())
	}
	if cfg.Schema.Dir != "./definitions" {
		t.Errorf("Schema.Dir = %s, want ./definitions", cfg.Schema.Dir)
	}
	if !cfg.Schema.Watch {
		t.Error("Schema.Watch = false, want true")
	}
	if cfg.Logging.Format != "console" {
		t.Errorf("Logging.Format = %s, want console", cfg.Logging.Format)
	}
	if !cfg.Metrics.Enabled || cfg.Metrics.Path != "/internal/metrics" {
		t.Errorf("Metrics = %+v", cfg.Metrics)
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg := writeAndLoad(t, "{}\n")

	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("default Host = %s, want 0.0.0.0", cfg.Server.Host)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("default Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Server.ShutdownTimeout != 10*time.Second {
		t.Errorf("default ShutdownTimeout = %v, want 10s", cfg.Server.ShutdownTimeout)
	}
	if cfg.Schema.Source != config.SourceYAML {
		t.Errorf("default Schema.Source = %s, want yaml", cfg.Schema.Source)
	}
	if cfg.Schema.Dir != "schema" {
		t.Errorf("default Schema.Dir = %s, want schema", cfg.Schema.Dir)
	}
	if cfg.Schema.DSN != "fieldresolver.db" {
		t.Errorf("default Schema.DSN = %s, want fieldresolver.db", cfg.Schema.DSN)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("default Logging.Level = %s, want info", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("default Logging.Format = %s, want json", cfg.Logging.Format)
	}
	if cfg.Metrics.Path != "/metrics" {
		t.Errorf("default Metrics.Path = %s, want /metrics", cfg.Metrics.Path)
	}
}

func TestLoad_EnvExpansion(t *testing.T) {
	t.Setenv("TEST_SCHEMA_DIR", "/srv/schema")

	content := `
schema:
  dir: "${TEST_SCHEMA_DIR}"
`

	cfg := writeAndLoad(t, content)

	if cfg.Schema.Dir != "/srv/schema" {
		t.Errorf("Schema.Dir = %s, want /srv/schema", cfg.Schema.Dir)
	}
}

func TestLoad_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "invalid source",
			content: "schema:\n  source: postgres\n",
			wantErr: "schema.source must be 'yaml' or 'sqlite'",
		},
		{
			name:    "watch with sqlite",
			content: "schema:\n  source: sqlite\n  watch: true\n",
			wantErr: "schema.watch is only supported",
		},
		{
			name:    "invalid port",
			content: "server:\n  port: 70000\n",
			wantErr: "server.port must be between",
		},
		{
			name:    "invalid log level",
			content: "logging:\n  level: loud\n",
			wantErr: "logging.level",
		},
		{
			name:    "invalid log format",
			content: "logging:\n  format: xml\n",
			wantErr: "logging.format must be",
		},
		{
			name:    "relative metrics path",
			content: "metrics:\n  path: metrics\n",
			wantErr: "metrics.path must start with '/'",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.content)
			_, err := config.Load(path)
			if err == nil {
				t.Fatalf("Load() expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Load() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoad_SQLiteSource(t *testing.T) {
	content := `
schema:
  source: sqlite
  dsn: /var/lib/fieldresolver/schema.db
`
	cfg := writeAndLoad(t, content)

	if cfg.Schema.Source != config.SourceSQLite {
		t.Errorf("Schema.Source = %s, want sqlite", cfg.Schema.Source)
	}
	if cfg.Schema.DSN != "/var/lib/fieldresolver/schema.db" {
		t.Errorf("Schema.DSN = %s", cfg.Schema.DSN)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("FIELDRESOLVER_SCHEMA_SOURCE", "sqlite")
	t.Setenv("FIELDRESOLVER_SCHEMA_DSN", "/tmp/env-test.db")
	t.Setenv("FIELDRESOLVER_SERVER_PORT", "9999")
	t.Setenv("FIELDRESOLVER_LOG_LEVEL", "debug")
	t.Setenv("FIELDRESOLVER_METRICS_ENABLED", "true")

	cfg, err := config.LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv error: %v", err)
	}

	if cfg.Schema.Source != config.SourceSQLite {
		t.Errorf("Schema.Source = %s, want sqlite", cfg.Schema.Source)
	}
	if cfg.Schema.DSN != "/tmp/env-test.db" {
		t.Errorf("Schema.DSN = %s, want /tmp/env-test.db", cfg.Schema.DSN)
	}
	if cfg.Server.Port != 9999 {
		t.Errorf("Server.Port = %d, want 9999", cfg.Server.Port)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %s, want debug", cfg.Logging.Level)
	}
	if !cfg.Metrics.Enabled {
		t.Error("Metrics.Enabled = false, want true")
	}
}

func TestEnvOverridesFile(t *testing.T) {
	t.Setenv("FIELDRESOLVER_SERVER_PORT", "7777")
	t.Setenv("FIELDRESOLVER_LOG_LEVEL", "error")

	content := `
server:
  port: 8080
schema:
  dir: ./schema
logging:
  level: "info"
`

	cfg := writeAndLoad(t, content)

	if cfg.Server.Port != 7777 {
		t.Errorf("Server.Port = %d, want 7777 (env override)", cfg.Server.Port)
	}
	if cfg.Logging.Level != "error" {
		t.Errorf("Logging.Level = %s, want error (env override)", cfg.Logging.Level)
	}
	if cfg.Schema.Dir != "./schema" {
		t.Errorf("Schema.Dir = %s, want ./schema", cfg.Schema.Dir)
	}
}

func TestEnvOverrides_InvalidValuesIgnored(t *testing.T) {
	t.Setenv("FIELDRESOLVER_SERVER_PORT", "not-a-port")
	t.Setenv("FIELDRESOLVER_SERVER_READ_TIMEOUT", "soon")

	cfg := writeAndLoad(t, "server:\n  port: 8181\n")

	if cfg.Server.Port != 8181 {
		t.Errorf("Server.Port = %d, want 8181", cfg.Server.Port)
	}
	if cfg.Server.ReadTimeout != 15*time.Second {
		t.Errorf("ReadTimeout = %v, want default 15s", cfg.Server.ReadTimeout)
	}
}

func TestLoadWithFallback_FileExists(t *testing.T) {
	path := writeConfig(t, "schema:\n  dir: /from/file\n")

	cfg, err := config.LoadWithFallback(path)
	if err != nil {
		t.Fatalf("LoadWithFallback error: %v", err)
	}
	if cfg.Schema.Dir != "/from/file" {
		t.Errorf("Schema.Dir = %s, want /from/file", cfg.Schema.Dir)
	}
}

func TestLoadWithFallback_EnvOnly(t *testing.T) {
	t.Setenv("FIELDRESOLVER_SCHEMA_DIR", "/from/env")

	cfg, err := config.LoadWithFallback("/nonexistent/config.yaml")
	if err != nil {
		t.Fatalf("LoadWithFallback error: %v", err)
	}
	if cfg.Schema.Dir != "/from/env" {
		t.Errorf("Schema.Dir = %s, want /from/env", cfg.Schema.Dir)
	}
}

func TestLoadWithFallback_NoConfig(t *testing.T) {
	t.Setenv("FIELDRESOLVER_SCHEMA_DIR", "")
	t.Setenv("FIELDRESOLVER_SCHEMA_DSN", "")

	if _, err := config.LoadWithFallback("/nonexistent/config.yaml"); err == nil {
		t.Fatal("expected error when no config available")
	}
}

func TestHasEnvConfig(t *testing.T) {
	t.Setenv("FIELDRESOLVER_SCHEMA_DIR", "")
	t.Setenv("FIELDRESOLVER_SCHEMA_DSN", "")
	if config.HasEnvConfig() {
		t.Error("HasEnvConfig() = true with no schema env")
	}

	t.Setenv("FIELDRESOLVER_SCHEMA_DSN", "schema.db")
	if !config.HasEnvConfig() {
		t.Error("HasEnvConfig() = false with FIELDRESOLVER_SCHEMA_DSN set")
	}
}

func TestParseBoolValues(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"true", true},
		{"TRUE", true},
		{"1", true},
		{"yes", true},
		{" on ", true},
		{"false", false},
		{"0", false},
		{"nope", false},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			t.Setenv("FIELDRESOLVER_METRICS_ENABLED", tt.value)
			cfg, err := config.LoadFromEnv()
			if err != nil {
				t.Fatalf("LoadFromEnv error: %v", err)
			}
			if cfg.Metrics.Enabled != tt.want {
				t.Errorf("Metrics.Enabled = %v for %q, want %v", cfg.Metrics.Enabled, tt.value, tt.want)
			}
		})
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "server: [unclosed\n")
	if _, err := config.Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLoad_FileNotFound(t *testing.T) {
	if _, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func writeAndLoad(t *testing.T, content string) *config.Config {
	t.Helper()
	cfg, err := config.Load(writeConfig(t, content))
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	return cfg
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}
