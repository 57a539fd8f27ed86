package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"spendwise/internal/core"
)

const maxExportDays = 365

// ReportFile is a rendered workbook ready to be served or attached.
type ReportFile struct {
	Name string
	Data []byte
}

// EmailReportResult describes a sent on-demand report.
type EmailReportResult struct {
	Message      string    `json:"message"`
	EmailSentTo  string    `json:"emailSentTo"`
	ReportPeriod string    `json:"reportPeriod"`
	FileName     string    `json:"fileName"`
	SentAt       time.Time `json:"sentAt"`
}

// ReportService builds expense reports and renders or mails them.
type ReportService struct {
	expenses ExpenseReader
	users    UserStore
	jobs     ReportJobStore
	renderer Renderer
	notifier Notifier
	now      func() time.Time
}

func NewReportService(expenses ExpenseReader, users UserStore, jobs ReportJobStore, renderer Renderer, notifier Notifier) *ReportService {
	return &ReportService{
		expenses: expenses,
		users:    users,
		jobs:     jobs,
		renderer: renderer,
		notifier: notifier,
		now:      time.Now,
	}
}

// BuildReport loads the user's expenses in p and aggregates them.
func (s *ReportService) BuildReport(ctx context.Context, userID int64, title string, p core.Period) (core.ExpenseReport, error) {
	expenses, err := s.expenses.QueryExpenses(ctx, core.ExpenseQuery{UserID: userID, From: &p.Start, To: &p.End})
	if err != nil {
		return core.ExpenseReport{}, fmt.Errorf("query expenses: %w", err)
	}
	return core.BuildExpenseReport(title, userID, p, expenses, s.now()), nil
}

// RenderMonthly builds and renders the workbook for one calendar month.
func (s *ReportService) RenderMonthly(ctx context.Context, userID int64, year, month int) (ReportFile, core.ExpenseReport, error) {
	report, err := s.BuildReport(ctx, userID, "Monthly Expense Report", core.MonthBounds(year, month))
	if err != nil {
		return ReportFile{}, core.ExpenseReport{}, err
	}
	data, err := s.renderer.Render(report)
	if err != nil {
		return ReportFile{}, core.ExpenseReport{}, fmt.Errorf("render report: %w", err)
	}
	return ReportFile{Name: MonthlyReportFileName(year, month), Data: data}, report, nil
}

// ExportExcel renders the expenses between start and end.
func (s *ReportService) ExportExcel(ctx context.Context, userID int64, start, end core.Date) (ReportFile, error) {
	if userID <= 0 {
		return ReportFile{}, core.NewValidationError("userId", "Invalid user ID")
	}
	if start.After(end.Time) {
		return ReportFile{}, core.NewValidationError("startDate", "Start date cannot be after end date")
	}
	if end.After(s.now().UTC().AddDate(0, 0, 1)) {
		return ReportFile{}, core.NewValidationError("endDate", "End date cannot be in the future")
	}
	if end.Sub(start.Time) > maxExportDays*24*time.Hour {
		return ReportFile{}, core.NewValidationError("endDate", "Date range cannot exceed 365 days")
	}

	report, err := s.BuildReport(ctx, userID, "Expense Report", core.Period{Start: start, End: end})
	if err != nil {
		return ReportFile{}, err
	}
	data, err := s.renderer.Render(report)
	if err != nil {
		return ReportFile{}, fmt.Errorf("render report: %w", err)
	}

	slog.InfoContext(ctx, "Excel report generated",
		"component", "report",
		"user_id", userID,
		"expense_count", report.ExpenseCount,
		"size_bytes", len(data))
	return ReportFile{
		Name: fmt.Sprintf("expense_report_%s_%s.xlsx", start.Format("20060102"), end.Format("20060102")),
		Data: data,
	}, nil
}

// EmailMonthlyReport mails the workbook for year/month to the user.
func (s *ReportService) EmailMonthlyReport(ctx context.Context, userID int64, year, month int) (EmailReportResult, error) {
	if userID <= 0 {
		return EmailReportResult{}, core.NewValidationError("userId", "Invalid user ID")
	}
	if year < minReportYear || year > s.now().UTC().Year()+1 {
		return EmailReportResult{}, core.NewValidationError("year", "Invalid year")
	}
	if month < 1 || month > 12 {
		return EmailReportResult{}, core.NewValidationError("month", "Invalid month")
	}

	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return EmailReportResult{}, err
	}
	if user.Email == "" {
		return EmailReportResult{}, core.NewValidationError("email", "User has no email address configured")
	}

	file, _, err := s.RenderMonthly(ctx, userID, year, month)
	if err != nil {
		return EmailReportResult{}, err
	}
	if err := s.notifier.SendMonthlyReport(ctx, monthlyNotice(user, year, month, file)); err != nil {
		return EmailReportResult{}, err
	}

	slog.InfoContext(ctx, "Monthly report email sent",
		"component", "report",
		"user_id", userID,
		"month_key", core.MonthKey(year, month))
	return EmailReportResult{
		Message:      "Monthly report email sent successfully",
		EmailSentTo:  user.Email,
		ReportPeriod: MonthLabel(year, month),
		FileName:     file.Name,
		SentAt:       s.now().UTC(),
	}, nil
}

// CreateJob validates and enqueues a report job for userID.
func (s *ReportService) CreateJob(ctx context.Context, userID int64, reportType core.ReportType, format core.ReportFormat) (core.ReportJob, error) {
	if userID <= 0 {
		return core.ReportJob{}, core.NewValidationError("userId", "Invalid user ID")
	}
	if format == "" {
		format = core.FormatXLSX
	}
	if !format.IsValid() {
		return core.ReportJob{}, core.NewValidationError("format", "Format must be 'xlsx' or 'sheets'")
	}
	if _, err := s.users.GetUser(ctx, userID); err != nil {
		return core.ReportJob{}, err
	}

	job := core.ReportJob{
		UserID:     userID,
		ReportType: core.ReportType(strings.ToLower(string(reportType))).Normalize(),
		Format:     format,
	}
	if err := s.jobs.CreateReportJob(ctx, &job); err != nil {
		return core.ReportJob{}, err
	}
	return job, nil
}

// GetJob returns a job owned by userID.
func (s *ReportService) GetJob(ctx context.Context, id, userID int64) (core.ReportJob, error) {
	job, err := s.jobs.GetReportJob(ctx, id)
	if err != nil {
		return core.ReportJob{}, err
	}
	if job.UserID != userID {
		return core.ReportJob{}, fmt.Errorf("report job %d: %w", id, core.ErrNotFound)
	}
	return job, nil
}

// ListJobs returns the user's report jobs, newest first.
func (s *ReportService) ListJobs(ctx context.Context, userID int64) ([]core.ReportJob, error) {
	if userID <= 0 {
		return nil, core.NewValidationError("userId", "Invalid user ID")
	}
	return s.jobs.ListReportJobs(ctx, userID)
}

// EmailExpenseReport mails the workbook for an arbitrary date range.
func (s *ReportService) EmailExpenseReport(ctx context.Context, userID int64, start, end core.Date) (EmailReportResult, error) {
	file, err := s.ExportExcel(ctx, userID, start, end)
	if err != nil {
		return EmailReportResult{}, err
	}
	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return EmailReportResult{}, err
	}
	if user.Email == "" {
		return EmailReportResult{}, core.NewValidationError("email", "User has no email address configured")
	}

	period := core.Period{Start: start, End: end}
	name := user.FullName
	if name == "" {
		name = user.Email
	}
	err = s.notifier.SendExpenseReport(ctx, core.ExpenseReportNotice{
		To:            user.Email,
		RecipientName: name,
		Title:         "Expense Report",
		Period:        period,
		Attachment:    core.Attachment{FileName: file.Name, ContentType: core.XLSXContentType, Data: file.Data},
	})
	if err != nil {
		return EmailReportResult{}, err
	}
	return EmailReportResult{
		Message:      "Expense report email sent successfully",
		EmailSentTo:  user.Email,
		ReportPeriod: period.String(),
		FileName:     file.Name,
		SentAt:       s.now().UTC(),
	}, nil
}

// MonthlyReportFileName names the attachment of a monthly report email.
func MonthlyReportFileName(year, month int) string {
	return fmt.Sprintf("Monthly_Expense_Report_%04d_%02d.xlsx", year, month)
}

// MonthLabel formats a month as "January 2006".
func MonthLabel(year, month int) string {
	return time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC).Format("January 2006")
}

func monthlyNotice(u core.User, year, month int, file ReportFile) core.MonthlyReportNotice {
	name := u.FullName
	if name == "" {
		name = u.Email
	}
	return core.MonthlyReportNotice{
		To:            u.Email,
		RecipientName: name,
		Year:          year,
		Month:         month,
		Attachment: core.Attachment{
			FileName:    file.Name,
			ContentType: core.XLSXContentType,
			Data:        file.Data,
		},
	}
}
