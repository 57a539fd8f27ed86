package backend

import (
	"context"

	"spendwise/internal/config"
	"spendwise/internal/services"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// NotifierResult contains the notifier and an optional cleanup function
type NotifierResult struct {
	Notifier services.Notifier
	Cleanup  CleanupFunc
}

// Factory creates notifiers based on configuration
type Factory interface {
	// CreateNotifier creates a notifier for the configured transport
	CreateNotifier(ctx context.Context, config Config) (*NotifierResult, error)
}

// Config holds configuration for notifier creation
type Config struct {
	Transport Transport

	// AMQP specific
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// SMTP specific
	SMTP config.SMTPConfig
}

// Transport selects how notifications leave the process.
type Transport string

const (
	SMTPTransport Transport = "smtp"
	AMQPTransport Transport = "amqp"
	LogTransport  Transport = "log"
)

// String implements fmt.Stringer
func (t Transport) String() string {
	return string(t)
}

// IsValid returns true if the transport is known
func (t Transport) IsValid() bool {
	switch t {
	case SMTPTransport, AMQPTransport, LogTransport:
		return true
	default:
		return false
	}
}
