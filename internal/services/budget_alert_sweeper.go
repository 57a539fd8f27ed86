package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"spendwise/internal/core"
)

// BudgetAlertSweeperConfig holds configuration for the budget alert sweeper
type BudgetAlertSweeperConfig struct {
	// Interval between sweep cycles (default: 6h)
	Interval time.Duration

	// ThresholdPercent of the monthly budget that triggers an alert (default: 80)
	ThresholdPercent decimal.Decimal
}

// DefaultBudgetAlertSweeperConfig returns sensible defaults
func DefaultBudgetAlertSweeperConfig() BudgetAlertSweeperConfig {
	return BudgetAlertSweeperConfig{
		Interval:         6 * time.Hour,
		ThresholdPercent: decimal.NewFromInt(80),
	}
}

// SweepResult counts what one sweep cycle did.
type SweepResult struct {
	Month           string `json:"month"`
	Checked         int    `json:"checked"`
	OverThreshold   int    `json:"overThreshold"`
	Alerted         int    `json:"alerted"`
	AlreadyNotified int    `json:"alreadyNotified"`
	Failed          int    `json:"failed"`
}

// BudgetAlertSweeper periodically compares month-to-date spend against each
// budgeted category and notifies the owner at most once per category per
// month.
type BudgetAlertSweeper struct {
	processor
	store    AlertStore
	notifier Notifier
	config   BudgetAlertSweeperConfig
	now      func() time.Time
}

func NewBudgetAlertSweeper(store AlertStore, notifier Notifier, config BudgetAlertSweeperConfig) *BudgetAlertSweeper {
	return &BudgetAlertSweeper{
		processor: processor{name: "budget alert sweeper"},
		store:     store,
		notifier:  notifier,
		config:    config,
		now:       time.Now,
	}
}

// Start begins the sweep loop. Returns an error if already running.
func (s *BudgetAlertSweeper) Start(ctx context.Context) error {
	if err := s.start(ctx, func(ctx context.Context, stop <-chan struct{}) {
		tickLoop(ctx, stop, s.config.Interval, s.cycle)
	}); err != nil {
		return err
	}

	slog.InfoContext(ctx, "Budget alert sweeper started",
		"component", "sweeper",
		"interval", s.config.Interval,
		"threshold_percent", s.config.ThresholdPercent.String())
	return nil
}

func (s *BudgetAlertSweeper) cycle(ctx context.Context) {
	if _, err := s.SweepOnce(ctx, s.now()); err != nil && !errors.Is(err, context.Canceled) {
		slog.ErrorContext(ctx, "Budget alert sweep failed", "component", "sweeper", "error", err)
	}
}

// SweepOnce runs a single sweep for the calendar month containing now.
// Failures are isolated per category; only a failure to list the
// categories aborts the sweep.
func (s *BudgetAlertSweeper) SweepOnce(ctx context.Context, now time.Time) (SweepResult, error) {
	now = now.UTC()
	month := core.MonthKey(now.Year(), int(now.Month()))
	period := core.MonthBounds(now.Year(), int(now.Month()))
	result := SweepResult{Month: month}

	slog.DebugContext(ctx, "Starting budget alert sweep", "component", "sweeper", "month_key", month)

	categories, err := s.store.ListBudgetedCategories(ctx)
	if err != nil {
		return result, fmt.Errorf("list budgeted categories: %w", err)
	}

	for _, cat := range categories {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		s.sweepCategory(ctx, cat, month, period, &result)
	}

	slog.InfoContext(ctx, "Budget alert sweep completed",
		"component", "sweeper",
		"month_key", month,
		"checked", result.Checked,
		"over_threshold", result.OverThreshold,
		"alerted", result.Alerted,
		"already_notified", result.AlreadyNotified,
		"failed", result.Failed)
	return result, nil
}

func (s *BudgetAlertSweeper) sweepCategory(ctx context.Context, cat core.BudgetedCategory, month string, period core.Period, result *SweepResult) {
	logFailure := func(msg string, err error) {
		result.Failed++
		slog.ErrorContext(ctx, msg,
			"component", "sweeper",
			"category_id", cat.ID,
			"user_id", cat.UserID,
			"month_key", month,
			"error", err)
	}

	spent, err := s.store.SumCategorySpend(ctx, cat.ID, period)
	if err != nil {
		logFailure("Failed to compute category spend", err)
		return
	}
	result.Checked++

	pct, reached := core.BudgetUsage(spent, cat.MonthlyBudget, s.config.ThresholdPercent)
	slog.DebugContext(ctx, "Category budget usage",
		"component", "sweeper",
		"category_id", cat.ID,
		"spent", spent.String(),
		"budget", cat.MonthlyBudget.String(),
		"percentage_used", pct.String())
	if !reached {
		return
	}
	result.OverThreshold++

	exists, err := s.store.AlertExists(ctx, cat.ID, month, s.config.ThresholdPercent)
	if err != nil {
		logFailure("Failed to check alert ledger", err)
		return
	}
	if exists {
		result.AlreadyNotified++
		return
	}

	if cat.OwnerEmail == "" {
		logFailure("Category owner has no email address", errors.New("missing recipient"))
		return
	}

	// Claim the (category, month) slot before sending so that concurrent
	// sweeps cannot both notify.
	alert := core.BudgetAlert{
		UserID:         cat.UserID,
		CategoryID:     cat.ID,
		Month:          month,
		PercentageUsed: pct,
		AlertSentAt:    s.now().UTC(),
	}
	if err := s.store.InsertAlert(ctx, &alert); err != nil {
		if errors.Is(err, core.ErrConstraintViolation) {
			result.AlreadyNotified++
			return
		}
		logFailure("Failed to record budget alert", err)
		return
	}

	err = s.notifier.SendBudgetAlert(ctx, core.BudgetAlertNotice{
		To:            cat.OwnerEmail,
		RecipientName: cat.OwnerName,
		CategoryName:  cat.Name,
		Month:         month,
		Spent:         spent,
		Budget:        cat.MonthlyBudget,
		Percentage:    pct,
	})
	if err != nil {
		// Release the slot so the next cycle retries.
		if delErr := s.store.DeleteAlert(ctx, alert.ID); delErr != nil {
			slog.ErrorContext(ctx, "Failed to release budget alert after send failure",
				"component", "sweeper",
				"category_id", cat.ID,
				"alert_id", alert.ID,
				"error", delErr)
		}
		logFailure("Failed to send budget alert", err)
		return
	}

	result.Alerted++
	slog.InfoContext(ctx, "Budget alert sent",
		"component", "sweeper",
		"category_id", cat.ID,
		"user_id", cat.UserID,
		"month_key", month,
		"percentage_used", pct.String())
}
