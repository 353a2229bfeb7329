package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/foxzi/emailbuilder/internal/api"
	"github.com/foxzi/emailbuilder/internal/config"
	"github.com/foxzi/emailbuilder/internal/metrics"
	"github.com/foxzi/emailbuilder/internal/relay"
	"github.com/foxzi/emailbuilder/internal/template"
	"github.com/foxzi/emailbuilder/internal/web"
	"github.com/foxzi/emailbuilder/internal/workspace"
)

// App is the main application
type App struct {
	config        *config.Config
	store         template.Store
	apiServer     *api.Server
	metrics       *metrics.Metrics
	metricsServer *metrics.Server
	logger        *slog.Logger
}

// New creates a new application
func New(ctx context.Context, cfg *config.Config, version string) (*App, error) {
	logger := setupLogger(cfg.Logging)

	store, err := template.Open(ctx, cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("failed to open template store: %w", err)
	}
	logger.Info("template store ready", "driver", cfg.Store.Driver)

	backend, err := relay.NewBackend(cfg.Images, logger)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to create image backend: %w", err)
	}
	logger.Info("image backend ready", "provider", cfg.Images.Provider, "folder", cfg.Images.Folder)

	ws := workspace.NewOS(cfg.Paths.UploadDir, cfg.Paths.DownloadDir)
	imageRelay := relay.New(backend, cfg.Images.Provider, ws, cfg.Images.Folder, logger)

	a := &App{
		config: cfg,
		store:  store,
		logger: logger,
	}

	if cfg.Metrics.Enabled {
		a.metrics = metrics.New()
		metrics.SetGlobal(a.metrics)
		a.metricsServer = metrics.NewServer(
			a.metrics,
			cfg.Metrics.ListenAddr,
			cfg.Metrics.Path,
			cfg.Metrics.AllowedIPs,
			logger,
		)
		logger.Info("metrics enabled", "addr", cfg.Metrics.ListenAddr, "path", cfg.Metrics.Path)
	}

	a.apiServer = api.NewServer(api.ServerOptions{
		Store:     store,
		Relay:     imageRelay,
		Workspace: ws,
		Config:    &cfg.Server,
		UI:        web.Handler(),
		Version:   version,
		Logger:    logger,
	})

	return a, nil
}

// Run starts all components and waits for shutdown
func (a *App) Run(ctx context.Context) error {
	logAttrs := []any{
		"addr", a.config.Server.ListenAddr,
		"store", a.config.Store.Driver,
		"images", a.config.Images.Provider,
	}
	if a.metricsServer != nil {
		logAttrs = append(logAttrs, "metrics_addr", a.config.Metrics.ListenAddr)
	}
	a.logger.Info("starting emailbuilder", logAttrs...)

	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	errCh := make(chan error, 2)

	go func() {
		if err := a.apiServer.ListenAndServe(); err != nil {
			errCh <- fmt.Errorf("api server: %w", err)
		}
	}()

	if a.metricsServer != nil {
		go a.metrics.RunSystemGauges(ctx, 15*time.Second)
		go func() {
			if err := a.metricsServer.ListenAndServe(); err != nil {
				errCh <- fmt.Errorf("metrics server: %w", err)
			}
		}()
	}

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		a.logger.Error("server error", "error", err)
		cancel()
	}

	return a.Shutdown(context.Background())
}

// Shutdown gracefully shuts down all components
func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := a.apiServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("api server shutdown error", "error", err)
	}

	if a.metricsServer != nil {
		if err := a.metricsServer.Shutdown(shutdownCtx); err != nil {
			a.logger.Error("metrics server shutdown error", "error", err)
		}
	}

	if err := a.store.Close(); err != nil {
		a.logger.Error("store close error", "error", err)
	}

	a.logger.Info("shutdown complete")
	return nil
}

// setupLogger creates a logger based on configuration
func setupLogger(cfg config.LoggingConfig) *slog.Logger {
	var handler slog.Handler

	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
