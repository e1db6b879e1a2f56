package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"mercator-hq/ruler/pkg/config"
	"mercator-hq/ruler/pkg/engine"
	"mercator-hq/ruler/pkg/engine/history"
	"mercator-hq/ruler/pkg/rulebook/store"
	"mercator-hq/ruler/pkg/telemetry/metrics"
)

// Server is the ruler HTTP API server.
type Server struct {
	config     config.ServerConfig
	metricsCfg config.MetricsConfig
	store      *store.Store
	evaluator  *engine.Evaluator
	collector  *metrics.Collector
	history    history.Store
	logger     *slog.Logger

	httpServer   *http.Server
	shutdownOnce sync.Once
	mu           sync.RWMutex
	running      bool
}

// Options bundles the server dependencies.
type Options struct {
	Config    config.ServerConfig
	Metrics   config.MetricsConfig
	Store     *store.Store
	Evaluator *engine.Evaluator

	// Collector may be nil when metrics are disabled.
	Collector *metrics.Collector

	// History records accepted submissions so frequency constraints see
	// them on later evaluations. May be nil when history is disabled.
	History history.Store

	// Logger defaults to slog.Default.
	Logger *slog.Logger
}

// New creates a Server. The store must already be loaded.
func New(opts Options) (*Server, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("rulebook store is required")
	}
	if opts.Evaluator == nil {
		return nil, fmt.Errorf("evaluator is required")
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	return &Server{
		config:     opts.Config,
		metricsCfg: opts.Metrics,
		store:      opts.Store,
		evaluator:  opts.Evaluator,
		collector:  opts.Collector,
		history:    opts.History,
		logger:     opts.Logger.With("component", "server"),
	}, nil
}

// Start starts the HTTP server and blocks until the context is cancelled
// or a shutdown signal arrives.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("server is already running")
	}
	s.running = true
	s.mu.Unlock()

	s.httpServer = &http.Server{
		Addr:         s.config.ListenAddress,
		Handler:      s.Handler(),
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("starting http server", "address", s.config.ListenAddress)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case <-ctx.Done():
		s.logger.Info("context cancelled, initiating shutdown")
		return s.Shutdown(context.Background())
	case sig := <-sigChan:
		s.logger.Info("received shutdown signal", "signal", sig.String())
		return s.Shutdown(context.Background())
	case err := <-errChan:
		return err
	}
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.mu.Lock()
		if !s.running {
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()

		s.logger.Info("initiating graceful shutdown", "timeout", s.config.ShutdownTimeout.String())

		shutdownCtx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
		defer cancel()

		if s.httpServer != nil {
			if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
				s.logger.Error("error during server shutdown", "error", err)
				shutdownErr = fmt.Errorf("server shutdown error: %w", err)
			}
		}

		s.mu.Lock()
		s.running = false
		s.mu.Unlock()

		s.logger.Info("http server stopped")
	})

	return shutdownErr
}

// IsRunning reports whether the server is serving.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// Handler builds the routed handler with the middleware chain applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /rules", s.handleListRules)
	mux.HandleFunc("GET /rules/{clause_id}", s.handleGetRule)
	mux.HandleFunc("POST /rules/evaluate", s.handleEvaluate)

	if s.metricsCfg.Enabled && s.collector != nil {
		mux.Handle("GET "+s.metricsCfg.Path, s.collector.Handler())
	}

	var handler http.Handler = mux
	handler = s.metricsMiddleware(handler)
	handler = s.loggingMiddleware(handler)
	handler = requestIDMiddleware(handler)
	handler = s.recoveryMiddleware(handler)
	return handler
}
