package adapters

import (
	"context"

	"spendwise/internal/amqp"
	"spendwise/internal/core"
)

// Publisher is the slice of *amqp.Client the notifier needs.
type Publisher interface {
	PublishNotification(ctx context.Context, msg *amqp.NotificationMessage) error
}

// AMQPNotifier hands notifications to the broker; cmd/notify-worker
// delivers them. A publish failure is already a *core.TransportError.
type AMQPNotifier struct {
	publisher Publisher
}

func NewAMQPNotifier(p Publisher) *AMQPNotifier {
	return &AMQPNotifier{publisher: p}
}

func (n *AMQPNotifier) SendBudgetAlert(ctx context.Context, notice core.BudgetAlertNotice) error {
	return n.publisher.PublishNotification(ctx, amqp.NewBudgetAlertMessage(notice))
}

func (n *AMQPNotifier) SendMonthlyReport(ctx context.Context, notice core.MonthlyReportNotice) error {
	return n.publisher.PublishNotification(ctx, amqp.NewMonthlyReportMessage(notice))
}

func (n *AMQPNotifier) SendExpenseReport(ctx context.Context, notice core.ExpenseReportNotice) error {
	return n.publisher.PublishNotification(ctx, amqp.NewExpenseReportMessage(notice))
}

func (n *AMQPNotifier) SendNotification(ctx context.Context, notice core.Notice) error {
	return n.publisher.PublishNotification(ctx, amqp.NewNoticeMessage(notice))
}
