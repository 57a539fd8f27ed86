package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"spendwise/internal/core"
)

// InsertAlert claims the (category, month) slot in the alert ledger. When
// another writer already holds it the error wraps core.ErrConstraintViolation.
func (r *SQLiteRepository) InsertAlert(ctx context.Context, a *core.BudgetAlert) error {
	if a.AlertSentAt.IsZero() {
		a.AlertSentAt = time.Now().UTC()
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO budget_alerts (user_id, category_id, month, percentage_used, alert_sent_at)
		 VALUES (?, ?, ?, ?, ?)`,
		a.UserID, a.CategoryID, a.Month, a.PercentageUsed.String(), formatTime(a.AlertSentAt))
	if err != nil {
		return fmt.Errorf("insert budget alert: %w", mapError(err))
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("read alert id: %w", err)
	}
	a.ID = id

	slog.DebugContext(ctx, "Budget alert recorded",
		"component", "storage",
		"alert_id", id,
		"category_id", a.CategoryID,
		"month", a.Month)
	return nil
}

// DeleteAlert releases a claimed slot so a later sweep can retry it. It is
// only called for an alert whose notification failed to send; delivered
// alerts are never updated or removed.
func (r *SQLiteRepository) DeleteAlert(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM budget_alerts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete budget alert %d: %w", id, err)
	}
	return requireAffected(res, "budget alert", id)
}

// AlertExists reports whether an alert at or above minPct was recorded
// for the category in month.
func (r *SQLiteRepository) AlertExists(ctx context.Context, categoryID int64, month string, minPct decimal.Decimal) (bool, error) {
	var pct string
	err := r.db.QueryRowContext(ctx,
		`SELECT percentage_used FROM budget_alerts WHERE category_id = ? AND month = ?`,
		categoryID, month).Scan(&pct)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("check budget alert: %w", err)
	}
	recorded, err := parseDecimal(pct)
	if err != nil {
		return false, err
	}
	return recorded.GreaterThanOrEqual(minPct), nil
}

// ListAlerts returns a user's alerts, most recent first.
func (r *SQLiteRepository) ListAlerts(ctx context.Context, userID int64, limit int) ([]core.BudgetAlert, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, category_id, month, percentage_used, alert_sent_at
		 FROM budget_alerts WHERE user_id = ?
		 ORDER BY alert_sent_at DESC, id DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list budget alerts: %w", err)
	}
	defer rows.Close()

	alerts := []core.BudgetAlert{}
	for rows.Next() {
		var (
			a         core.BudgetAlert
			pct, sent string
		)
		if err := rows.Scan(&a.ID, &a.UserID, &a.CategoryID, &a.Month, &pct, &sent); err != nil {
			return nil, fmt.Errorf("scan budget alert: %w", err)
		}
		if a.PercentageUsed, err = parseDecimal(pct); err != nil {
			return nil, err
		}
		if a.AlertSentAt, err = parseTime(sent); err != nil {
			return nil, err
		}
		alerts = append(alerts, a)
	}
	return alerts, rows.Err()
}
