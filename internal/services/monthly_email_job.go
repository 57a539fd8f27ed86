package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"spendwise/internal/core"
)

// MonthlyEmailJobConfig holds configuration for the monthly email job
type MonthlyEmailJobConfig struct {
	// Schedule is a standard five-field cron expression evaluated in UTC
	// (default: 09:00 on the 1st)
	Schedule string

	// Throttle is the pause between two users (default: 2s)
	Throttle time.Duration
}

func DefaultMonthlyEmailJobConfig() MonthlyEmailJobConfig {
	return MonthlyEmailJobConfig{
		Schedule: "0 9 1 * *",
		Throttle: 2 * time.Second,
	}
}

// MonthlyEmailResult counts the outcome of one run.
type MonthlyEmailResult struct {
	Month   string `json:"month"`
	Users   int    `json:"users"`
	Sent    int    `json:"sent"`
	Skipped int    `json:"skipped"`
	Failed  int    `json:"failed"`
}

// MonthlyEmailJob mails every user with activity a workbook covering the
// previous calendar month.
type MonthlyEmailJob struct {
	processor
	store    MonthlyEmailStore
	reports  *ReportService
	notifier Notifier
	config   MonthlyEmailJobConfig
	now      func() time.Time
}

func NewMonthlyEmailJob(store MonthlyEmailStore, reports *ReportService, notifier Notifier, config MonthlyEmailJobConfig) *MonthlyEmailJob {
	return &MonthlyEmailJob{
		processor: processor{name: "monthly email job"},
		store:     store,
		reports:   reports,
		notifier:  notifier,
		config:    config,
		now:       time.Now,
	}
}

// Start registers the cron schedule. Returns an error if already running
// or if the schedule does not parse.
func (j *MonthlyEmailJob) Start(ctx context.Context) error {
	schedule, err := cron.ParseStandard(j.config.Schedule)
	if err != nil {
		return fmt.Errorf("parse monthly email schedule: %w", err)
	}

	if err := j.start(ctx, func(ctx context.Context, stop <-chan struct{}) {
		c := cron.New(cron.WithLocation(time.UTC))
		c.Schedule(schedule, cron.FuncJob(func() {
			year, month := core.PreviousMonth(j.now())
			if _, err := j.run(ctx, stop, year, month); err != nil {
				slog.ErrorContext(ctx, "Monthly email run failed", "component", "scheduler", "error", err)
			}
		}))
		c.Start()

		select {
		case <-stop:
		case <-ctx.Done():
		}
		// Wait for a run in progress; it observes stop between users.
		<-c.Stop().Done()
	}); err != nil {
		return err
	}

	slog.InfoContext(ctx, "Monthly email job scheduled",
		"component", "scheduler",
		"schedule", j.config.Schedule,
		"next_run", schedule.Next(j.now().UTC()))
	return nil
}

// RunForMonth sends the reports for year/month immediately.
func (j *MonthlyEmailJob) RunForMonth(ctx context.Context, year, month int) (MonthlyEmailResult, error) {
	return j.run(ctx, nil, year, month)
}

func (j *MonthlyEmailJob) run(ctx context.Context, stop <-chan struct{}, year, month int) (MonthlyEmailResult, error) {
	monthKey := core.MonthKey(year, month)
	period := core.MonthBounds(year, month)
	result := MonthlyEmailResult{Month: monthKey}

	slog.InfoContext(ctx, "Generating monthly reports",
		"component", "scheduler",
		"month_key", monthKey,
		"period", period.String())

	users, err := j.store.ListUsersWithEmail(ctx)
	if err != nil {
		return result, fmt.Errorf("list users: %w", err)
	}
	result.Users = len(users)

	for i, u := range users {
		if stopped(ctx, stop) {
			return result, context.Canceled
		}
		if i > 0 && !sleepCtx(ctx, stop, j.config.Throttle) {
			return result, context.Canceled
		}

		sent, err := j.sendOne(ctx, u, year, month, period)
		switch {
		case err != nil:
			result.Failed++
			slog.ErrorContext(ctx, "Failed to send monthly report",
				"component", "scheduler",
				"user_id", u.ID,
				"month_key", monthKey,
				"error", err)
		case sent:
			result.Sent++
		default:
			result.Skipped++
		}
	}

	slog.InfoContext(ctx, "Monthly email report generation completed",
		"component", "scheduler",
		"month_key", monthKey,
		"sent", result.Sent,
		"skipped", result.Skipped,
		"failed", result.Failed)
	return result, nil
}

func (j *MonthlyEmailJob) sendOne(ctx context.Context, u core.User, year, month int, period core.Period) (bool, error) {
	has, err := j.store.HasExpenses(ctx, u.ID, period)
	if err != nil {
		return false, err
	}
	if !has {
		slog.DebugContext(ctx, "User has no expenses for month, skipping",
			"component", "scheduler", "user_id", u.ID, "month_key", core.MonthKey(year, month))
		return false, nil
	}

	file, _, err := j.reports.RenderMonthly(ctx, u.ID, year, month)
	if err != nil {
		return false, err
	}
	if len(file.Data) == 0 {
		return false, fmt.Errorf("generated report is empty")
	}
	if err := j.notifier.SendMonthlyReport(ctx, monthlyNotice(u, year, month, file)); err != nil {
		return false, err
	}
	return true, nil
}
