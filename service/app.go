package service

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"blogapi/app/config"
	"blogapi/app/database"
	"blogapi/app/routes"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

// RunAppServer opens the configured store and serves the blog API until ctx
// is cancelled, then shuts down gracefully.
func RunAppServer(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	handle, err := database.Open(cfg.Storage, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := handle.Close(); err != nil {
			logger.Error("Failed to close storage", zap.Error(err))
		}
	}()

	srv := NewServer(cfg, handle, logger)

	ln, err := net.Listen("tcp", cfg.Addr())
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", cfg.Addr(), err)
	}

	logger.Info("Starting blog API server",
		zap.String("addr", ln.Addr().String()),
		zap.String("env", cfg.Server.Env),
		zap.String("storage", cfg.Storage.Driver),
	)
	return Serve(ctx, srv, ln, time.Duration(cfg.Server.ShutdownTimeout)*time.Second, logger)
}

// NewServer builds the HTTP server for an open storage handle.
func NewServer(cfg *config.Config, handle *database.Handle, logger *zap.Logger) *http.Server {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	router := routes.SetupRoutes(routes.Options{
		Store:    handle.Store,
		Logger:   logger,
		Registry: registry,
		Ping:     handle.Ping,
	})

	return &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}

// Serve runs srv on ln until ctx is done, then waits up to timeout for
// in-flight requests.
func Serve(ctx context.Context, srv *http.Server, ln net.Listener, timeout time.Duration, logger *zap.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down server", zap.Duration("timeout", timeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return <-errCh
}
