package main

import (
	"context"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"spendwise/internal/cache"
	"spendwise/internal/cli"
	"spendwise/internal/services"
)

// lifecycle is the Start/Stop surface shared by the background jobs.
type lifecycle interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Done() <-chan struct{}
}

func main() {
	cfg := cli.LoadAndValidateConfig()
	logger := cli.SetupLogger(cfg)
	logger.Info("Starting spendwise-worker")

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	ctx, stop := cli.SignalContext()
	defer stop()

	notifier, err := cli.NewNotifier(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize notifier", "error", err, "transport", cfg.NotifyTransport)
		os.Exit(1)
	}
	defer notifier.Cleanup()

	publisher, err := cli.NewReportPublisher(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize report publisher", "error", err)
		os.Exit(1)
	}

	svc := cli.NewServices(repo, notifier.Notifier)

	cacheManager := cache.NewManager()
	cacheManager.Register(svc.Cache)
	cacheManager.StartCleanup(10 * time.Minute)
	defer cacheManager.Stop()

	jobs := []lifecycle{
		services.NewBudgetAlertSweeper(repo, notifier.Notifier, services.BudgetAlertSweeperConfig{
			Interval:         cfg.AlertSweepInterval,
			ThresholdPercent: cfg.AlertThresholdPercent,
		}),
		services.NewMonthlyEmailJob(repo, svc.Reports, notifier.Notifier, services.MonthlyEmailJobConfig{
			Schedule: cfg.MonthlyEmailSchedule,
			Throttle: cfg.MonthlyEmailThrottle,
		}),
		services.NewReportJobProcessor(repo, svc.Reports, publisher, services.ReportJobProcessorConfig{
			PollInterval: cfg.ReportPollInterval,
			BatchSize:    cfg.ReportBatchSize,
			ReportsDir:   cfg.ReportsDir,
		}),
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, job := range jobs {
		if err := job.Start(gctx); err != nil {
			logger.Error("Failed to start background job", "error", err)
			stop()
			break
		}
		g.Go(func() error {
			select {
			case <-job.Done():
			case <-gctx.Done():
			}
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			return job.Stop(shutdownCtx)
		})
	}

	logger.Info("Background jobs running",
		"alert_sweep_interval", cfg.AlertSweepInterval,
		"report_poll_interval", cfg.ReportPollInterval,
		"monthly_email_schedule", cfg.MonthlyEmailSchedule)

	if err := g.Wait(); err != nil {
		logger.Error("Background job shutdown failed", "error", err)
	}
	logger.Info("spendwise-worker stopped")
}
