package config

import "time"

// ApplyDefaults fills zero-valued fields with sensible defaults. Explicit
// values from the YAML file or environment are never overwritten.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.ListenAddress == "" {
		cfg.Server.ListenAddress = ":8080"
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 10 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 10 * time.Second
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = 60 * time.Second
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 15 * time.Second
	}
	if cfg.Server.MaxRequestBytes == 0 {
		cfg.Server.MaxRequestBytes = 1 << 20 // 1 MB
	}

	if cfg.Rulebook.Path == "" {
		cfg.Rulebook.Path = "rulebook.json"
	}
	if cfg.Rulebook.MaxFileSize == 0 {
		cfg.Rulebook.MaxFileSize = 10 * 1024 * 1024
	}
	if cfg.Rulebook.MaxTreeDepth == 0 {
		cfg.Rulebook.MaxTreeDepth = 32
	}

	if cfg.Taxonomy.Path == "" {
		cfg.Taxonomy.Path = "reasons.json"
	}

	if cfg.Engine.SubmissionWindowDays == 0 {
		cfg.Engine.SubmissionWindowDays = 30
	}
	if len(cfg.Engine.Currencies) == 0 {
		cfg.Engine.Currencies = []string{"JPY", "USD", "EUR"}
	}
	if len(cfg.Engine.FileFormats) == 0 {
		cfg.Engine.FileFormats = []string{"JPEG", "PNG", "PDF"}
	}
	if len(cfg.Engine.ReceiptTypes) == 0 {
		cfg.Engine.ReceiptTypes = []string{"receipt", "invoice", "credit_card"}
	}
	if len(cfg.Engine.Approvers) == 0 {
		cfg.Engine.Approvers = []string{"manager", "director", "vp"}
	}
	if cfg.Engine.DefaultThreshold == 0 {
		cfg.Engine.DefaultThreshold = 1000
	}
	if cfg.Engine.DefaultLimit == 0 {
		cfg.Engine.DefaultLimit = 1000000
	}

	if cfg.History.Backend == "" {
		cfg.History.Backend = "memory"
	}
	if cfg.History.SQLitePath == "" {
		cfg.History.SQLitePath = "history.db"
	}
	if cfg.History.RetentionDays == 0 {
		cfg.History.RetentionDays = 400
	}

	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = "info"
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = "json"
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = "/metrics"
	}
}

// Default returns a configuration with every default applied, used when
// no configuration file is given.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}
