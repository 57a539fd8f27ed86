// Package worker turns queued notification envelopes into deliveries.
package worker

import (
	"context"
	"log/slog"

	"spendwise/internal/amqp"
	"spendwise/internal/services"
)

// NotificationWorker delivers envelopes consumed from the broker through
// a concrete Notifier, normally the SMTP sender.
type NotificationWorker struct {
	notifier services.Notifier
}

func NewNotificationWorker(n services.Notifier) *NotificationWorker {
	return &NotificationWorker{notifier: n}
}

// Handle is an amqp.Handler. Transport failures come back as
// *core.TransportError so the consumer requeues the delivery.
func (w *NotificationWorker) Handle(ctx context.Context, msg *amqp.NotificationMessage) error {
	if err := msg.Validate(); err != nil {
		return err
	}

	slog.InfoContext(ctx, "Processing notification",
		"component", "worker",
		"message_id", msg.ID,
		"kind", msg.Kind,
		"to", msg.Recipient())

	var err error
	switch msg.Kind {
	case amqp.KindBudgetAlert:
		err = w.notifier.SendBudgetAlert(ctx, *msg.BudgetAlert)
	case amqp.KindMonthlyReport:
		err = w.notifier.SendMonthlyReport(ctx, *msg.MonthlyReport)
	case amqp.KindExpenseReport:
		err = w.notifier.SendExpenseReport(ctx, *msg.ExpenseReport)
	case amqp.KindNotice:
		err = w.notifier.SendNotification(ctx, *msg.Notice)
	}
	if err != nil {
		slog.ErrorContext(ctx, "Notification delivery failed",
			"component", "worker",
			"message_id", msg.ID,
			"kind", msg.Kind,
			"error", err)
		return err
	}

	slog.InfoContext(ctx, "Notification delivered",
		"component", "worker",
		"message_id", msg.ID,
		"kind", msg.Kind)
	return nil
}
