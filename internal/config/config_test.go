package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cfg := newDefaults()

	if cfg.Server.Port != 8080 {
		t.Errorf("default port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Database.Path != "data/facet.db" {
		t.Errorf("default db path = %q", cfg.Database.Path)
	}
	if cfg.Assistant.Model != "gpt-4o-mini" {
		t.Errorf("default model = %q", cfg.Assistant.Model)
	}
	if time.Duration(cfg.Worker.RetentionInterval) != 24*time.Hour {
		t.Errorf("default retention interval = %v", cfg.Worker.RetentionInterval)
	}
	if time.Duration(cfg.Worker.RetentionMaxAge) != 30*24*time.Hour {
		t.Errorf("default retention max age = %v", cfg.Worker.RetentionMaxAge)
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "json" {
		t.Errorf("default log config = %+v", cfg.Log)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "facet.yaml")
	yaml := `
server:
  port: 9090
  shutdown_timeout: 5s
database:
  path: /tmp/test.db
assistant:
  model: gpt-4o
worker:
  retention_interval: 1h
  retention_max_age: 168h
log:
  level: debug
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile() error = %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("port = %d, want 9090", cfg.Server.Port)
	}
	if time.Duration(cfg.Server.ShutdownTimeout) != 5*time.Second {
		t.Errorf("shutdown timeout = %v", cfg.Server.ShutdownTimeout)
	}
	if cfg.Database.Path != "/tmp/test.db" {
		t.Errorf("db path = %q", cfg.Database.Path)
	}
	if cfg.Assistant.Model != "gpt-4o" {
		t.Errorf("model = %q", cfg.Assistant.Model)
	}
	if time.Duration(cfg.Worker.RetentionMaxAge) != 168*time.Hour {
		t.Errorf("retention max age = %v", cfg.Worker.RetentionMaxAge)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("log level = %q", cfg.Log.Level)
	}
	// Untouched fields keep defaults
	if time.Duration(cfg.Server.ReadTimeout) != 30*time.Second {
		t.Errorf("read timeout = %v, want default 30s", cfg.Server.ReadTimeout)
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	if _, err := LoadFromFile("/nonexistent/facet.yaml"); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("FACET_PORT", "3000")
	t.Setenv("FACET_DB_PATH", "/var/lib/facet/facet.db")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("FACET_API_KEY", "local-secret")
	t.Setenv("FACET_RETENTION_INTERVAL", "6h")
	t.Setenv("FACET_LOG_LEVEL", "warn")

	cfg := newDefaults()
	applyEnvOverrides(cfg)

	if cfg.Server.Port != 3000 {
		t.Errorf("port = %d, want 3000", cfg.Server.Port)
	}
	if cfg.Database.Path != "/var/lib/facet/facet.db" {
		t.Errorf("db path = %q", cfg.Database.Path)
	}
	if cfg.Assistant.APIKey != "sk-test" {
		t.Errorf("assistant key = %q", cfg.Assistant.APIKey)
	}
	if cfg.Auth.APIKey != "local-secret" {
		t.Errorf("auth key = %q", cfg.Auth.APIKey)
	}
	if time.Duration(cfg.Worker.RetentionInterval) != 6*time.Hour {
		t.Errorf("retention interval = %v", cfg.Worker.RetentionInterval)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("log level = %q", cfg.Log.Level)
	}
}

func TestEnvOverridesIgnoreMalformed(t *testing.T) {
	t.Setenv("FACET_PORT", "not-a-number")
	t.Setenv("FACET_RETENTION_INTERVAL", "soon")

	cfg := newDefaults()
	applyEnvOverrides(cfg)

	if cfg.Server.Port != 8080 {
		t.Errorf("port = %d, want default preserved", cfg.Server.Port)
	}
	if time.Duration(cfg.Worker.RetentionInterval) != 24*time.Hour {
		t.Errorf("retention interval = %v, want default preserved", cfg.Worker.RetentionInterval)
	}
}

func TestAPIKeysAreEnvOnly(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("FACET_API_KEY", "")
	dir := t.TempDir()
	path := filepath.Join(dir, "facet.yaml")
	yaml := `
assistant:
  apikey: from-yaml
auth:
  apikey: from-yaml
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile() error = %v", err)
	}
	if cfg.Assistant.APIKey != "" || cfg.Auth.APIKey != "" {
		t.Error("API keys must not be settable from YAML")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid defaults", func(c *Config) {}, ""},
		{"bad port", func(c *Config) { c.Server.Port = 0 }, "invalid port"},
		{"empty db path", func(c *Config) { c.Database.Path = "" }, "database path"},
		{"zero retention interval", func(c *Config) { c.Worker.RetentionInterval = 0 }, "retention interval"},
		{"negative max age", func(c *Config) { c.Worker.RetentionMaxAge = Duration(-time.Hour) }, "retention max age"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := newDefaults()
			tt.mutate(cfg)
			err := cfg.validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("validate() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestDurationYAMLRoundTrip(t *testing.T) {
	d := Duration(90 * time.Minute)
	out, err := d.MarshalYAML()
	if err != nil {
		t.Fatalf("MarshalYAML() error = %v", err)
	}
	if out != "1h30m0s" {
		t.Errorf("MarshalYAML() = %v", out)
	}
}
