package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"spendwise/internal/cli"
	apphttp "spendwise/internal/http"
)

func main() {
	cfg := cli.LoadAndValidateConfig()
	logger := cli.SetupLogger(cfg)
	logger.Info("Starting spendwise API", "port", cfg.Port, "env", cfg.AppEnv)

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	ctx, stop := cli.SignalContext()
	defer stop()

	notifier, err := cli.NewNotifier(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize notifier", "error", err, "transport", cfg.NotifyTransport)
		os.Exit(1)
	}
	defer func() {
		if err := notifier.Cleanup(); err != nil {
			logger.Warn("Notifier cleanup failed", "error", err)
		}
	}()

	svc := cli.NewServices(repo, notifier.Notifier)
	srv := apphttp.NewServer(apphttp.Deps{
		Store:      repo,
		Users:      svc.Users,
		Categories: svc.Categories,
		Expenses:   svc.Expenses,
		Imports:    svc.Imports,
		Analytics:  svc.Analytics,
		Reports:    svc.Reports,
		Alerts:     svc.Alerts,
	}, apphttp.Options{
		Addr:               ":" + cfg.Port,
		ReportsDir:         cfg.ReportsDir,
		Development:        cfg.IsDevelopment(),
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		Logger:             logger,
	})

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case err := <-errCh:
		if err != nil {
			logger.Error("HTTP server failed", "error", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown failed", "error", err)
	}
	logger.Info("Server stopped")
}
