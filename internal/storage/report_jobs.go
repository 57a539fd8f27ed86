package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"spendwise/internal/core"
)

const reportJobColumns = `id, user_id, report_type, format, status, file_url, error, created_at, completed_at`

func scanReportJob(row rowScanner) (core.ReportJob, error) {
	var (
		j         core.ReportJob
		created   string
		completed sql.NullString
	)
	if err := row.Scan(&j.ID, &j.UserID, &j.ReportType, &j.Format, &j.Status,
		&j.FileURL, &j.Error, &created, &completed); err != nil {
		return core.ReportJob{}, err
	}
	t, err := parseTime(created)
	if err != nil {
		return core.ReportJob{}, err
	}
	j.CreatedAt = t
	if completed.Valid && completed.String != "" {
		ct, err := parseTime(completed.String)
		if err != nil {
			return core.ReportJob{}, err
		}
		j.CompletedAt = &ct
	}
	return j, nil
}

// CreateReportJob enqueues j in the pending state.
func (r *SQLiteRepository) CreateReportJob(ctx context.Context, j *core.ReportJob) error {
	j.Status = core.JobPending
	if j.CreatedAt.IsZero() {
		j.CreatedAt = time.Now().UTC()
	}
	if j.Format == "" {
		j.Format = core.FormatXLSX
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO report_jobs (user_id, report_type, format, status, created_at) VALUES (?, ?, ?, ?, ?)`,
		j.UserID, string(j.ReportType), string(j.Format), string(j.Status), formatTime(j.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert report job: %w", mapError(err))
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("read report job id: %w", err)
	}
	j.ID = id

	slog.InfoContext(ctx, "Report job queued",
		"component", "storage",
		"job_id", id,
		"user_id", j.UserID,
		"report_type", j.ReportType)
	return nil
}

func (r *SQLiteRepository) GetReportJob(ctx context.Context, id int64) (core.ReportJob, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+reportJobColumns+` FROM report_jobs WHERE id = ?`, id)
	j, err := scanReportJob(row)
	if err != nil {
		return core.ReportJob{}, fmt.Errorf("get report job %d: %w", id, mapError(err))
	}
	return j, nil
}

// ListPendingReportJobs returns up to limit pending jobs, oldest first.
func (r *SQLiteRepository) ListPendingReportJobs(ctx context.Context, limit int) ([]core.ReportJob, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+reportJobColumns+` FROM report_jobs
		 WHERE status = ? ORDER BY created_at, id LIMIT ?`, string(core.JobPending), limit)
	if err != nil {
		return nil, fmt.Errorf("list pending report jobs: %w", err)
	}
	defer rows.Close()

	var jobs []core.ReportJob
	for rows.Next() {
		j, err := scanReportJob(rows)
		if err != nil {
			return nil, fmt.Errorf("scan report job: %w", err)
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

// ListReportJobs returns a user's jobs, newest first.
func (r *SQLiteRepository) ListReportJobs(ctx context.Context, userID int64) ([]core.ReportJob, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+reportJobColumns+` FROM report_jobs
		 WHERE user_id = ? ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list report jobs: %w", err)
	}
	defer rows.Close()

	jobs := []core.ReportJob{}
	for rows.Next() {
		j, err := scanReportJob(rows)
		if err != nil {
			return nil, fmt.Errorf("scan report job: %w", err)
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

// ClaimReportJob moves a pending job to processing. It returns false when
// another processor claimed it first.
func (r *SQLiteRepository) ClaimReportJob(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE report_jobs SET status = ? WHERE id = ? AND status = ?`,
		string(core.JobProcessing), id, string(core.JobPending))
	if err != nil {
		return false, fmt.Errorf("claim report job %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n == 1, nil
}

func (r *SQLiteRepository) CompleteReportJob(ctx context.Context, id int64, fileURL string, at time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE report_jobs SET status = ?, file_url = ?, error = '', completed_at = ? WHERE id = ?`,
		string(core.JobCompleted), fileURL, formatTime(at), id)
	if err != nil {
		return fmt.Errorf("complete report job %d: %w", id, err)
	}
	return requireAffected(res, "report job", id)
}

func (r *SQLiteRepository) FailReportJob(ctx context.Context, id int64, reason string, at time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE report_jobs SET status = ?, error = ?, completed_at = ? WHERE id = ?`,
		string(core.JobFailed), reason, formatTime(at), id)
	if err != nil {
		return fmt.Errorf("fail report job %d: %w", id, err)
	}
	return requireAffected(res, "report job", id)
}

// ResetStaleReportJobs returns jobs left in processing by a crashed
// processor to the pending state.
func (r *SQLiteRepository) ResetStaleReportJobs(ctx context.Context) (int, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE report_jobs SET status = ? WHERE status = ?`,
		string(core.JobPending), string(core.JobProcessing))
	if err != nil {
		return 0, fmt.Errorf("reset stale report jobs: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	if n > 0 {
		slog.WarnContext(ctx, "Reset stale report jobs", "component", "storage", "count", n)
	}
	return int(n), nil
}
