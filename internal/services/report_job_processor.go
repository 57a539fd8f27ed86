package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"spendwise/internal/core"
	applog "spendwise/internal/log"
	"spendwise/internal/sheets"
)

// ErrEmptyReport marks a job whose period holds no expenses.
var ErrEmptyReport = errors.New("No expenses found for the selected period")

// ReportJobProcessorConfig holds configuration for the report job processor
type ReportJobProcessorConfig struct {
	// PollInterval is how often pending jobs are fetched (default: 30s)
	PollInterval time.Duration

	// BatchSize is the maximum number of jobs handled per cycle (default: 10)
	BatchSize int

	// ReportsDir receives generated xlsx files
	ReportsDir string
}

func DefaultReportJobProcessorConfig() ReportJobProcessorConfig {
	return ReportJobProcessorConfig{
		PollInterval: 30 * time.Second,
		BatchSize:    10,
		ReportsDir:   "./data/reports",
	}
}

// ReportJobProcessor drains the report job queue.
type ReportJobProcessor struct {
	processor
	store     ReportJobStore
	reports   *ReportService
	publisher sheets.ReportPublisher
	config    ReportJobProcessorConfig
	now       func() time.Time
}

// NewReportJobProcessor wires the processor. publisher may be nil, in which
// case jobs in the sheets format fail.
func NewReportJobProcessor(store ReportJobStore, reports *ReportService, publisher sheets.ReportPublisher, config ReportJobProcessorConfig) *ReportJobProcessor {
	return &ReportJobProcessor{
		processor: processor{name: "report job processor"},
		store:     store,
		reports:   reports,
		publisher: publisher,
		config:    config,
		now:       time.Now,
	}
}

// Start resets jobs abandoned in the processing state and begins polling.
func (p *ReportJobProcessor) Start(ctx context.Context) error {
	if p.IsRunning() {
		return fmt.Errorf("%s is already running", p.name)
	}
	if _, err := p.store.ResetStaleReportJobs(ctx); err != nil {
		return fmt.Errorf("reset stale jobs: %w", err)
	}
	if err := os.MkdirAll(p.config.ReportsDir, 0o755); err != nil {
		return fmt.Errorf("create reports dir: %w", err)
	}

	if err := p.start(ctx, func(ctx context.Context, stop <-chan struct{}) {
		tickLoop(ctx, stop, p.config.PollInterval, func(ctx context.Context) {
			if _, err := p.ProcessPending(ctx); err != nil {
				slog.ErrorContext(ctx, "Report job cycle failed", "component", "report", "error", err)
			}
		})
	}); err != nil {
		return err
	}

	slog.InfoContext(ctx, "Report job processor started",
		"component", "report",
		"poll_interval", p.config.PollInterval,
		"batch_size", p.config.BatchSize)
	return nil
}

// ProcessPending handles one batch of pending jobs and returns how many
// reached a terminal state.
func (p *ReportJobProcessor) ProcessPending(ctx context.Context) (int, error) {
	jobs, err := p.store.ListPendingReportJobs(ctx, p.config.BatchSize)
	if err != nil {
		return 0, fmt.Errorf("list pending jobs: %w", err)
	}
	if len(jobs) == 0 {
		return 0, nil
	}

	slog.DebugContext(ctx, "Processing report jobs", "component", "report", "count", len(jobs))

	done := 0
	for _, job := range jobs {
		if ctx.Err() != nil {
			return done, ctx.Err()
		}
		claimed, err := p.store.ClaimReportJob(ctx, job.ID)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to claim report job", "component", "report", "job_id", job.ID, "error", err)
			continue
		}
		if !claimed {
			continue
		}
		if p.process(ctx, job) {
			done++
		}
	}
	return done, nil
}

func (p *ReportJobProcessor) process(ctx context.Context, job core.ReportJob) bool {
	url, err := p.run(ctx, job)
	at := p.now().UTC()

	if err != nil {
		applog.NewStructuredLogger(applog.FromContext(ctx)).LogError(ctx, "Report job failed", err,
			applog.ComponentReport, applog.OpExport,
			applog.NewFields().WithJobID(job.ID).WithUserID(job.UserID))
		if ferr := p.store.FailReportJob(ctx, job.ID, err.Error(), at); ferr != nil {
			slog.ErrorContext(ctx, "Failed to mark report job failed", "component", "report", "job_id", job.ID, "error", ferr)
			return false
		}
		return true
	}

	if err := p.store.CompleteReportJob(ctx, job.ID, url, at); err != nil {
		slog.ErrorContext(ctx, "Failed to mark report job completed", "component", "report", "job_id", job.ID, "error", err)
		return false
	}
	slog.InfoContext(ctx, "Report job completed",
		"component", "report",
		"job_id", job.ID,
		"user_id", job.UserID,
		"file_url", url)
	return true
}

func (p *ReportJobProcessor) run(ctx context.Context, job core.ReportJob) (string, error) {
	reportType := job.ReportType.Normalize()
	period := core.PeriodFor(reportType, p.now().UTC())
	title := fmt.Sprintf("%s Expense Report", titleCase(string(reportType)))

	report, err := p.reports.BuildReport(ctx, job.UserID, title, period)
	if err != nil {
		return "", err
	}
	if report.IsEmpty() {
		return "", ErrEmptyReport
	}

	switch job.Format {
	case core.FormatSheets:
		if p.publisher == nil {
			return "", errors.New("Google Sheets publishing is not configured")
		}
		url, err := p.publisher.PublishReport(ctx, report)
		if err != nil {
			return "", core.NewTransportError("publish sheet", err)
		}
		return url, nil
	default:
		return p.writeFile(job, report)
	}
}

func (p *ReportJobProcessor) writeFile(job core.ReportJob, report core.ExpenseReport) (string, error) {
	data, err := p.reports.renderer.Render(report)
	if err != nil {
		return "", fmt.Errorf("render report: %w", err)
	}
	name := fmt.Sprintf("report_%d_%s.xlsx", job.ID, p.now().UTC().Format("20060102_150405"))
	if err := os.WriteFile(filepath.Join(p.config.ReportsDir, name), data, 0o644); err != nil {
		return "", core.NewTransportError("write report file", err)
	}
	return "/reports/" + name, nil
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
