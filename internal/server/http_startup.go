package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tailorpipe/internal/ai"
	"tailorpipe/internal/analysis"
	tperrors "tailorpipe/internal/errors"
	"tailorpipe/internal/observability"
	"tailorpipe/internal/pipeline"
	"tailorpipe/internal/rules"
)

// Start starts the HTTP server with all configured components
func (s *Server) Start() error {
	om, err := s.initializeObservability()
	if err != nil {
		return err
	}
	defer s.shutdownObservability(om)

	if err := s.buildPipeline(om); err != nil {
		return err
	}

	httpServer, err := s.setupHTTPServer(om)
	if err != nil {
		return err
	}

	if err := s.configureTLS(httpServer, om); err != nil {
		return err
	}

	s.displayServerInfo()

	return s.startWithGracefulShutdown(httpServer)
}

// initializeObservability sets up observability components
func (s *Server) initializeObservability() (*observability.ObservabilityManager, error) {
	obsConfig := observability.GetObservabilityConfig(s.AppConfig, s.Version)

	om, err := observability.NewObservabilityManager(obsConfig, s.AppConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize observability: %w", err)
	}

	return om, nil
}

// shutdownObservability handles observability cleanup
func (s *Server) shutdownObservability(om *observability.ObservabilityManager) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := om.Shutdown(ctx); err != nil {
		s.Logger.LogError(err, "Failed to shutdown observability")
	}
}

// buildPipeline assembles the tailoring pipeline shared by all requests. The
// deterministic stages are always available; a missing rewriter is tolerated
// so that runs without rewrite targets keep working.
func (s *Server) buildPipeline(om *observability.ObservabilityManager) error {
	companies := analysis.NewCompanyChecker(
		s.AppConfig.Pipeline.WellKnownCompanies,
		nil,
		s.AppConfig.Pipeline.CompanyLookupTimeout,
	)
	s.Analyzer = analysis.NewPreAnalyzer(companies, s.Logger)

	rewriteCfg := s.AppConfig.GetRewriteConfig()
	svc, err := ai.NewService(&rewriteCfg, s.Logger)
	switch {
	case err == nil:
		s.Rewriter = svc.Rewriter
	case tperrors.CodeOf(err) == tperrors.ErrCodeAINotConfigured:
		s.Logger.Warn("No rewriter configured; runs that queue rewrite targets will fail",
			"code", tperrors.ErrCodeAINotConfigured)
	default:
		return fmt.Errorf("failed to create rewriter: %w", err)
	}

	s.Pipeline = pipeline.New(s.Analyzer, rules.New(), s.Rewriter, pipeline.Options{
		Budget:  s.AppConfig.Pipeline.Budget,
		Metrics: om.PipelineRecorder(),
	}, s.Logger)

	return nil
}

// setupHTTPServer creates and configures the HTTP server
func (s *Server) setupHTTPServer(om *observability.ObservabilityManager) (*http.Server, error) {
	mux := s.setupRoutes(om)
	handler := om.HTTPMiddleware()(mux)
	addr := fmt.Sprintf("%s:%s", s.Host, s.Port)

	return &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  s.ReadTimeout,
		WriteTimeout: s.WriteTimeout,
		IdleTimeout:  s.IdleTimeout,
	}, nil
}

// startWithGracefulShutdown starts the HTTP server and handles graceful shutdown
func (s *Server) startWithGracefulShutdown(server *http.Server) error {
	// Channel to receive OS signals
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// Channel to receive server errors
	serverErrors := make(chan error, 1)

	// Start the server in a goroutine
	go func() {
		s.Logger.Info("Starting HTTP server",
			"address", server.Addr,
			"tls_enabled", server.TLSConfig != nil)

		var err error
		if server.TLSConfig != nil {
			// With certificate content the certificates are already loaded
			// in the TLS config, so the file arguments stay empty
			if s.TLSConfig.CertContent != "" || s.TLSConfig.KeyContent != "" {
				err = server.ListenAndServeTLS("", "")
			} else {
				err = server.ListenAndServeTLS(s.TLSConfig.CertFile, s.TLSConfig.KeyFile)
			}
		} else {
			err = server.ListenAndServe()
		}

		if err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	// Wait for either a signal or server error
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server failed to start: %w", err)
	case sig := <-quit:
		s.Logger.Info("Received shutdown signal, starting graceful shutdown",
			"signal", sig.String())

		return s.performGracefulShutdown(server)
	}
}

// performGracefulShutdown handles the graceful shutdown process
func (s *Server) performGracefulShutdown(server *http.Server) error {
	// Create a context with timeout for graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Stop certificate reloading if running
	if s.CertReloader != nil {
		if err := s.CertReloader.Stop(); err != nil {
			s.Logger.LogError(err, "Failed to stop certificate reloader")
		}
	}

	// Clean up rate limiter if enabled
	s.cleanupRateLimiter()

	// Release the rewriter client
	if s.Rewriter != nil {
		if err := s.Rewriter.Close(); err != nil {
			s.Logger.LogError(err, "Failed to close rewriter")
		}
	}

	// Attempt graceful shutdown of HTTP server
	s.Logger.Info("Shutting down HTTP server...")
	if err := server.Shutdown(shutdownCtx); err != nil {
		s.Logger.LogError(err, "Failed to shutdown server gracefully, forcing close")
		return server.Close()
	}

	s.Logger.Info("Server shutdown completed successfully")
	return nil
}

// cleanupRateLimiter cleans up the rate limiter resources
func (s *Server) cleanupRateLimiter() {
	if s.RateLimiter != nil {
		s.RateLimiter.Close()
		s.Logger.Info("Rate limiter cleaned up")
	}
}
