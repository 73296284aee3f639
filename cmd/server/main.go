package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dojosmash/dojo-smash/internal/api"
	"github.com/dojosmash/dojo-smash/internal/config"
	"github.com/dojosmash/dojo-smash/internal/factory"
)

// sessionSweepInterval is how often expired admin sessions are dropped
const sessionSweepInterval = 10 * time.Minute

func main() {
	os.Exit(run())
}

func run() int {
	// DOJO_CONFIG points at an explicit config file; otherwise config.yaml is optional
	cfg, err := config.Load(os.Getenv("DOJO_CONFIG"))
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		return 1
	}

	logger := cfg.Log.NewLogger()
	slog.SetDefault(logger)

	// Handle graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	appCfg, err := factory.ConfigFrom(cfg, logger)
	if err != nil {
		logger.Error("invalid configuration", slog.String("error", err.Error()))
		return 1
	}

	app, err := factory.New(ctx, appCfg)
	if err != nil {
		logger.Error("failed to create application", slog.String("error", err.Error()))
		return 1
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Warn("close failed", slog.String("error", err.Error()))
		}
	}()

	router := api.NewRouter(api.ConfigForApp(app, logger, cfg.Server.AllowedOrigins))
	server := api.NewServer(router, api.ServerConfigFrom(cfg.Server), logger)

	go sweepSessions(ctx, app, logger)

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	// Wait for shutdown or error
	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", slog.String("error", err.Error()))
			return 1
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		if err := server.Shutdown(context.Background()); err != nil {
			logger.Error("shutdown error", slog.String("error", err.Error()))
		}
	}

	logger.Info("server stopped")
	return 0
}

func sweepSessions(ctx context.Context, app *factory.App, logger *slog.Logger) {
	ticker := time.NewTicker(sessionSweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := app.AuthService.CleanExpiredSessions(); n > 0 {
				logger.Debug("expired sessions removed", slog.Int("count", n))
			}
		}
	}
}
