package config

import (
	"fmt"
	"strings"
)

// Validate checks the configuration for values the service cannot run
// with. It is called after defaults and environment overrides are
// applied.
func Validate(cfg *Config) error {
	var problems []string

	if cfg.Server.ListenAddress == "" {
		problems = append(problems, "server.listen_address cannot be empty")
	}
	if cfg.Server.ReadTimeout < 0 || cfg.Server.WriteTimeout < 0 || cfg.Server.IdleTimeout < 0 {
		problems = append(problems, "server timeouts cannot be negative")
	}
	if cfg.Server.MaxRequestBytes <= 0 {
		problems = append(problems, "server.max_request_bytes must be positive")
	}

	if cfg.Rulebook.Path == "" {
		problems = append(problems, "rulebook.path cannot be empty")
	}
	if cfg.Rulebook.MaxFileSize <= 0 {
		problems = append(problems, "rulebook.max_file_size must be positive")
	}
	if cfg.Rulebook.MaxTreeDepth <= 0 {
		problems = append(problems, "rulebook.max_tree_depth must be positive")
	}

	if cfg.Taxonomy.Path == "" {
		problems = append(problems, "taxonomy.path cannot be empty")
	}

	if cfg.Engine.SubmissionWindowDays <= 0 {
		problems = append(problems, "engine.submission_window_days must be positive")
	}
	if len(cfg.Engine.Currencies) == 0 {
		problems = append(problems, "engine.currencies cannot be empty")
	}

	switch cfg.History.Backend {
	case "memory", "sqlite":
	default:
		problems = append(problems, fmt.Sprintf("history.backend must be memory or sqlite, got %q", cfg.History.Backend))
	}
	if cfg.History.Backend == "sqlite" && cfg.History.SQLitePath == "" {
		problems = append(problems, "history.sqlite_path cannot be empty with the sqlite backend")
	}
	if cfg.History.RetentionDays <= 0 {
		problems = append(problems, "history.retention_days must be positive")
	}

	switch cfg.Telemetry.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		problems = append(problems, fmt.Sprintf("telemetry.logging.level must be debug, info, warn, or error, got %q", cfg.Telemetry.Logging.Level))
	}
	switch cfg.Telemetry.Logging.Format {
	case "json", "text":
	default:
		problems = append(problems, fmt.Sprintf("telemetry.logging.format must be json or text, got %q", cfg.Telemetry.Logging.Format))
	}
	if cfg.Telemetry.Metrics.Enabled && !strings.HasPrefix(cfg.Telemetry.Metrics.Path, "/") {
		problems = append(problems, "telemetry.metrics.path must start with /")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}
