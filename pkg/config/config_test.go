package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
rulebook:
  path: rules/
taxonomy:
  path: rules/reasons.json
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.ListenAddress != ":8080" {
		t.Errorf("listen address = %q, want :8080", cfg.Server.ListenAddress)
	}
	if cfg.Server.ShutdownTimeout != 15*time.Second {
		t.Errorf("shutdown timeout = %v", cfg.Server.ShutdownTimeout)
	}
	if cfg.Rulebook.Path != "rules/" {
		t.Errorf("rulebook path = %q", cfg.Rulebook.Path)
	}
	if cfg.Engine.SubmissionWindowDays != 30 {
		t.Errorf("submission window = %d", cfg.Engine.SubmissionWindowDays)
	}
	if cfg.History.Backend != "memory" {
		t.Errorf("history backend = %q", cfg.History.Backend)
	}
	if cfg.Telemetry.Logging.Level != "info" || cfg.Telemetry.Logging.Format != "json" {
		t.Errorf("logging = %s/%s", cfg.Telemetry.Logging.Level, cfg.Telemetry.Logging.Format)
	}
}

func TestLoadExplicitValues(t *testing.T) {
	path := writeConfig(t, `
server:
  listen_address: ":9090"
  read_timeout: 5s
rulebook:
  path: /etc/ruler/rules
  watch: true
taxonomy:
  path: /etc/ruler/reasons.json
engine:
  submission_window_days: 60
  currencies: [JPY]
history:
  enabled: true
  backend: sqlite
  sqlite_path: /var/lib/ruler/history.db
  prune_schedule: "0 3 * * *"
telemetry:
  logging:
    level: debug
    format: text
  metrics:
    enabled: true
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.ListenAddress != ":9090" || cfg.Server.ReadTimeout != 5*time.Second {
		t.Errorf("server = %+v", cfg.Server)
	}
	if !cfg.Rulebook.Watch {
		t.Error("watch should be enabled")
	}
	if cfg.Engine.SubmissionWindowDays != 60 {
		t.Errorf("submission window = %d", cfg.Engine.SubmissionWindowDays)
	}
	if len(cfg.Engine.Currencies) != 1 || cfg.Engine.Currencies[0] != "JPY" {
		t.Errorf("currencies = %v", cfg.Engine.Currencies)
	}
	if cfg.History.Backend != "sqlite" || cfg.History.PruneSchedule != "0 3 * * *" {
		t.Errorf("history = %+v", cfg.History)
	}
	if !cfg.Telemetry.Metrics.Enabled || cfg.Telemetry.Metrics.Path != "/metrics" {
		t.Errorf("metrics = %+v", cfg.Telemetry.Metrics)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
server:
  listen_address: ":8080"
`)

	t.Setenv("RULER_SERVER_LISTEN_ADDRESS", ":7070")
	t.Setenv("RULER_HISTORY_BACKEND", "sqlite")
	t.Setenv("RULER_TELEMETRY_LOGGING_LEVEL", "warn")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.ListenAddress != ":7070" {
		t.Errorf("env override lost: listen address = %q", cfg.Server.ListenAddress)
	}
	if cfg.History.Backend != "sqlite" {
		t.Errorf("history backend = %q", cfg.History.Backend)
	}
	if cfg.Telemetry.Logging.Level != "warn" {
		t.Errorf("logging level = %q", cfg.Telemetry.Logging.Level)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad history backend", func(c *Config) { c.History.Backend = "redis" }},
		{"bad logging level", func(c *Config) { c.Telemetry.Logging.Level = "verbose" }},
		{"bad logging format", func(c *Config) { c.Telemetry.Logging.Format = "xml" }},
		{"empty rulebook path", func(c *Config) { c.Rulebook.Path = "" }},
		{"zero submission window", func(c *Config) { c.Engine.SubmissionWindowDays = -1 }},
		{"metrics path without slash", func(c *Config) {
			c.Telemetry.Metrics.Enabled = true
			c.Telemetry.Metrics.Path = "metrics"
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := Validate(cfg); err == nil {
				t.Error("Validate() should fail")
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/config.yaml"); err == nil {
		t.Error("Load() should fail for a missing file")
	}
}

func TestLoadOrDefaultWithoutPath(t *testing.T) {
	cfg, err := LoadOrDefault("")
	if err != nil {
		t.Fatalf("LoadOrDefault() error = %v", err)
	}
	if cfg.Server.ListenAddress != ":8080" {
		t.Errorf("listen address = %q", cfg.Server.ListenAddress)
	}
}
