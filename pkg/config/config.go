package config

import "time"

// Config is the root service configuration.
type Config struct {
	// Server configures the HTTP API.
	Server ServerConfig `yaml:"server"`

	// Rulebook configures rulebook loading.
	Rulebook RulebookConfig `yaml:"rulebook"`

	// Taxonomy configures the reason taxonomy document.
	Taxonomy TaxonomyConfig `yaml:"taxonomy"`

	// Engine configures evaluation defaults and allow-lists.
	Engine EngineConfig `yaml:"engine"`

	// History configures submission-history tracking.
	History HistoryConfig `yaml:"history"`

	// Telemetry configures logging and metrics.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	// ListenAddress is the host:port the server binds to.
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout bounds request reading.
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout bounds response writing.
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout bounds keep-alive idle connections.
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// MaxRequestBytes caps evaluate-request bodies.
	MaxRequestBytes int64 `yaml:"max_request_bytes"`
}

// RulebookConfig configures rulebook loading.
type RulebookConfig struct {
	// Path is a rulebook file or a directory of rulebook files.
	Path string `yaml:"path"`

	// Watch enables hot reload on file changes.
	Watch bool `yaml:"watch"`

	// MaxFileSize caps individual rulebook files, in bytes.
	MaxFileSize int64 `yaml:"max_file_size"`

	// MaxTreeDepth caps constraint-tree nesting.
	MaxTreeDepth int `yaml:"max_tree_depth"`
}

// TaxonomyConfig configures the reason taxonomy document.
type TaxonomyConfig struct {
	// Path is the reason taxonomy JSON file.
	Path string `yaml:"path"`
}

// EngineConfig configures evaluation defaults and allow-lists.
type EngineConfig struct {
	// SubmissionWindowDays is the default submission window.
	SubmissionWindowDays int `yaml:"submission_window_days"`

	// Currencies is the accepted currency allow-list.
	Currencies []string `yaml:"currencies"`

	// FileFormats is the accepted receipt file-format allow-list.
	FileFormats []string `yaml:"file_formats"`

	// ReceiptTypes is the accepted receipt-type allow-list.
	ReceiptTypes []string `yaml:"receipt_types"`

	// Approvers is the accepted approver-role allow-list.
	Approvers []string `yaml:"approvers"`

	// DefaultThreshold is the default amount threshold for diagnostics.
	DefaultThreshold float64 `yaml:"default_threshold"`

	// DefaultLimit is the default amount ceiling for diagnostics.
	DefaultLimit float64 `yaml:"default_limit"`
}

// HistoryConfig configures submission-history tracking.
type HistoryConfig struct {
	// Enabled turns frequency counting on. When false, frequency
	// constraints pass structurally.
	Enabled bool `yaml:"enabled"`

	// Backend selects the store: "memory" or "sqlite".
	Backend string `yaml:"backend"`

	// SQLitePath is the database file for the sqlite backend.
	SQLitePath string `yaml:"sqlite_path"`

	// RetentionDays is how long submissions are kept.
	RetentionDays int `yaml:"retention_days"`

	// PruneSchedule is a cron expression for retention pruning. Empty
	// disables scheduled pruning.
	PruneSchedule string `yaml:"prune_schedule"`
}

// TelemetryConfig configures logging and metrics.
type TelemetryConfig struct {
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	// Level is debug, info, warn, or error.
	Level string `yaml:"level"`

	// Format is json or text.
	Format string `yaml:"format"`
}

// MetricsConfig configures Prometheus metrics exposure.
type MetricsConfig struct {
	// Enabled turns the /metrics endpoint on.
	Enabled bool `yaml:"enabled"`

	// Path is the metrics endpoint path.
	Path string `yaml:"path"`
}
