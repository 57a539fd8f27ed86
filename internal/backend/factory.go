package backend

import (
	"context"
	"fmt"
	"log/slog"

	"spendwise/internal/adapters"
	"spendwise/internal/amqp"
	"spendwise/internal/email"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
}

// NewFactory creates a new notifier factory
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{
		logger: logger,
	}
}

// CreateNotifier implements Factory.CreateNotifier
func (f *DefaultFactory) CreateNotifier(ctx context.Context, config Config) (*NotifierResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Transport {
	case SMTPTransport:
		return f.createSMTPNotifier(config)
	case AMQPTransport:
		return f.createAMQPNotifier(config)
	case LogTransport:
		return f.createLogNotifier()
	default:
		return nil, fmt.Errorf("unsupported notify transport: %s", config.Transport)
	}
}

func (f *DefaultFactory) createSMTPNotifier(config Config) (*NotifierResult, error) {
	sender, err := email.NewSender(config.SMTP)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SMTP sender: %w", err)
	}

	f.logger.Info("Using SMTP notifier",
		"host", config.SMTP.Host,
		"port", config.SMTP.Port,
		"implicit_tls", config.SMTP.ImplicitTLS)

	return &NotifierResult{
		Notifier: sender,
		Cleanup:  func() error { return nil },
	}, nil
}

func (f *DefaultFactory) createAMQPNotifier(config Config) (*NotifierResult, error) {
	client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize AMQP client: %w", err)
	}

	f.logger.Info("Using AMQP notifier",
		"exchange", config.AMQPExchange,
		"queue", config.AMQPQueue)

	return &NotifierResult{
		Notifier: adapters.NewAMQPNotifier(client),
		Cleanup: func() error {
			f.logger.Info("Closing AMQP connection")
			return client.Close()
		},
	}, nil
}

func (f *DefaultFactory) createLogNotifier() (*NotifierResult, error) {
	f.logger.Warn("Using log notifier; notifications are logged, not delivered")

	return &NotifierResult{
		Notifier: adapters.NewLogNotifier(f.logger),
		Cleanup:  func() error { return nil },
	}, nil
}
