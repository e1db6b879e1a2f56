package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"mercator-hq/ruler/pkg/cli"
	"mercator-hq/ruler/pkg/config"
	"mercator-hq/ruler/pkg/engine"
	"mercator-hq/ruler/pkg/engine/history"
	"mercator-hq/ruler/pkg/rulebook/parser"
	"mercator-hq/ruler/pkg/rulebook/store"
	"mercator-hq/ruler/pkg/server"
	"mercator-hq/ruler/pkg/taxonomy"
	"mercator-hq/ruler/pkg/telemetry/logging"
	"mercator-hq/ruler/pkg/telemetry/metrics"
)

var runFlags struct {
	listenAddress string
	logLevel      string
	dryRun        bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the ruler evaluation server",
	Long: `Start the ruler server with the specified configuration.

The server loads the rulebook and reason taxonomy, then serves rule
inspection and expense evaluation over HTTP.

Examples:
  # Start with default config
  ruler run

  # Start with custom config
  ruler run --config /etc/ruler/config.yaml

  # Override listen address
  ruler run --listen 0.0.0.0:8080

  # Validate config without starting the server
  ruler run --dry-run`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override listen address")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting server")
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}

	// Apply flag overrides
	if runFlags.listenAddress != "" {
		cfg.Server.ListenAddress = runFlags.listenAddress
	}
	if runFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	}
	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}

	logger, err := logging.Setup(cfg.Telemetry.Logging)
	if err != nil {
		return cli.NewConfigError("telemetry.logging", err.Error())
	}

	if runFlags.dryRun {
		fmt.Println("✓ Configuration valid")
		return nil
	}

	fmt.Printf("Ruler v%s\n", Version)
	fmt.Println("✓ Configuration loaded")

	// Reason taxonomy
	tax, err := taxonomy.Load(cfg.Taxonomy.Path)
	if err != nil {
		return cli.NewCommandError("run", fmt.Errorf("failed to load taxonomy: %w", err))
	}
	fmt.Printf("✓ Reason taxonomy loaded (%d reasons)\n", tax.Len())

	// Metrics
	var collector *metrics.Collector
	if cfg.Telemetry.Metrics.Enabled {
		collector = metrics.NewCollector()
	}

	// Rulebook store
	var rules *store.Store
	rules, err = store.New(store.Options{
		Path: cfg.Rulebook.Path,
		Parser: parser.New(&parser.Config{
			MaxFileSize:  cfg.Rulebook.MaxFileSize,
			MaxTreeDepth: cfg.Rulebook.MaxTreeDepth,
		}),
		Logger: logger,
		OnReload: func(success bool) {
			collector.RecordReload(success)
			if success {
				collector.SetRulesLoaded(rules.Registry().Count())
			}
		},
	})
	if err != nil {
		return cli.NewCommandError("run", err)
	}
	if err := rules.Load(); err != nil {
		return cli.NewCommandError("run", fmt.Errorf("failed to load rulebook: %w", err))
	}
	fmt.Printf("✓ Rulebook loaded (%d rules)\n", rules.Registry().Count())
	collector.SetRulesLoaded(rules.Registry().Count())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Rulebook.Watch {
		go func() {
			if err := rules.Watch(ctx); err != nil {
				slog.Error("rulebook watcher stopped", "error", err)
			}
		}()
		fmt.Println("✓ Rulebook hot reload enabled")
	}

	// Submission history (frequency constraints)
	var counter *history.Counter
	var histStore history.Store
	if cfg.History.Enabled {
		switch cfg.History.Backend {
		case "sqlite":
			histStore, err = history.NewSQLiteStore(cfg.History.SQLitePath)
			if err != nil {
				return cli.NewCommandError("run", fmt.Errorf("failed to open history store: %w", err))
			}
		case "memory":
			histStore = history.NewMemoryStore()
		default:
			return cli.NewConfigError("history.backend", fmt.Sprintf("unsupported backend: %s", cfg.History.Backend))
		}
		defer histStore.Close()

		counter = history.NewCounter(histStore, engine.SystemClock())

		if cfg.History.PruneSchedule != "" {
			scheduler := history.NewScheduler(histStore, history.RetentionConfig{
				RetentionDays: cfg.History.RetentionDays,
				PruneSchedule: cfg.History.PruneSchedule,
			})
			if err := scheduler.Start(ctx); err != nil {
				slog.Warn("failed to start retention scheduler", "error", err)
			} else {
				defer scheduler.Stop()
			}
		}

		fmt.Printf("✓ Submission history initialized (%s)\n", cfg.History.Backend)
	}

	// Evaluation engine
	engineCfg := engine.DefaultConfig()
	engineCfg.SubmissionWindowDays = cfg.Engine.SubmissionWindowDays
	engineCfg.MaxTreeDepth = cfg.Rulebook.MaxTreeDepth
	engineCfg.Currencies = cfg.Engine.Currencies
	engineCfg.FileFormats = cfg.Engine.FileFormats
	engineCfg.ReceiptTypes = cfg.Engine.ReceiptTypes
	engineCfg.Approvers = cfg.Engine.Approvers
	engineCfg.DefaultThreshold = cfg.Engine.DefaultThreshold
	engineCfg.DefaultLimit = cfg.Engine.DefaultLimit

	engineOpts := []engine.Option{engine.WithLogger(logger)}
	if counter != nil {
		engineOpts = append(engineOpts, engine.WithFrequencyCounter(counter))
	}
	evaluator, err := engine.New(tax, engineCfg, engineOpts...)
	if err != nil {
		return cli.NewCommandError("run", fmt.Errorf("failed to create evaluator: %w", err))
	}
	fmt.Println("✓ Evaluation engine ready")

	// HTTP server
	srv, err := server.New(server.Options{
		Config:    cfg.Server,
		Metrics:   cfg.Telemetry.Metrics,
		Store:     rules,
		Evaluator: evaluator,
		Collector: collector,
		History:   histStore,
		Logger:    logger,
	})
	if err != nil {
		return cli.NewCommandError("run", err)
	}

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start(ctx)
	}()

	fmt.Println()
	fmt.Printf("✓ Server listening on %s\n", cfg.Server.ListenAddress)
	fmt.Printf("✓ Health endpoint: http://%s/health\n", cfg.Server.ListenAddress)
	if cfg.Telemetry.Metrics.Enabled {
		fmt.Printf("✓ Metrics endpoint: http://%s%s\n", cfg.Server.ListenAddress, cfg.Telemetry.Metrics.Path)
	}
	fmt.Println("\nPress Ctrl+C to stop")

	sigChan := cli.WaitForShutdown()

	select {
	case err := <-errChan:
		if err != nil {
			return cli.NewCommandError("run", err)
		}
		return nil
	case sig := <-sigChan:
		fmt.Printf("\nReceived signal %s, shutting down gracefully...\n", sig)
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown failed", "error", err)
			return cli.NewCommandError("run", err)
		}

		fmt.Println("✓ Server stopped")
		return nil
	}
}

// loadConfig loads the config file, falling back to defaults when the
// default config path does not exist and was not set explicitly.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path := cfgFile
	if !cmd.Flags().Changed("config") {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			path = ""
		}
	}
	return config.LoadOrDefault(path)
}
