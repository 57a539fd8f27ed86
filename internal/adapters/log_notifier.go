package adapters

import (
	"context"
	"log/slog"

	"spendwise/internal/core"
)

// LogNotifier writes notifications to the log instead of delivering
// them. It is the development transport.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger.With("component", "email", "transport", "log")}
}

func (n *LogNotifier) SendBudgetAlert(ctx context.Context, notice core.BudgetAlertNotice) error {
	n.logger.InfoContext(ctx, "Budget alert",
		"to", notice.To,
		"category", notice.CategoryName,
		"month_key", notice.Month,
		"spent", notice.Spent.String(),
		"budget", notice.Budget.String(),
		"percentage", notice.Percentage.StringFixed(2))
	return nil
}

func (n *LogNotifier) SendMonthlyReport(ctx context.Context, notice core.MonthlyReportNotice) error {
	n.logger.InfoContext(ctx, "Monthly report",
		"to", notice.To,
		"year", notice.Year,
		"month", notice.Month,
		"file", notice.Attachment.FileName,
		"bytes", len(notice.Attachment.Data))
	return nil
}

func (n *LogNotifier) SendExpenseReport(ctx context.Context, notice core.ExpenseReportNotice) error {
	n.logger.InfoContext(ctx, "Expense report",
		"to", notice.To,
		"period", notice.Period.String(),
		"file", notice.Attachment.FileName,
		"bytes", len(notice.Attachment.Data))
	return nil
}

func (n *LogNotifier) SendNotification(ctx context.Context, notice core.Notice) error {
	n.logger.InfoContext(ctx, "Notification", "to", notice.To, "subject", notice.Subject)
	return nil
}
