package main

import (
	"context"
	"errors"
	"os"

	"spendwise/internal/amqp"
	"spendwise/internal/cli"
	"spendwise/internal/email"
	"spendwise/internal/worker"
)

func main() {
	cfg := cli.LoadAndValidateConfig()
	logger := cli.SetupLogger(cfg)
	logger.Info("Starting notify-worker", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)

	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required by notify-worker")
		os.Exit(1)
	}

	sender, err := email.NewSender(cfg.SMTP)
	if err != nil {
		logger.Error("Failed to initialize SMTP sender", "error", err)
		os.Exit(1)
	}

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to connect to AMQP broker", "error", err)
		os.Exit(1)
	}
	defer client.Close()

	ctx, stop := cli.SignalContext()
	defer stop()

	w := worker.NewNotificationWorker(sender)
	if err := client.ConsumeNotifications(ctx, w.Handle); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Notification consumer stopped", "error", err)
		os.Exit(1)
	}
	logger.Info("notify-worker stopped")
}
