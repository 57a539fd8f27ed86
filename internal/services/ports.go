package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"spendwise/internal/core"
)

// Consumer-side views of the store. *storage.SQLiteRepository satisfies
// all of them.
type (
	UserStore interface {
		CreateUser(ctx context.Context, u *core.User) error
		GetUser(ctx context.Context, id int64) (core.User, error)
		UpdateUser(ctx context.Context, u core.User) error
	}

	CategoryStore interface {
		CreateCategory(ctx context.Context, c *core.Category) error
		GetCategory(ctx context.Context, id int64) (core.Category, error)
		FindActiveCategoryByName(ctx context.Context, userID int64, name string) (core.Category, error)
		ListCategories(ctx context.Context, userID int64) ([]core.Category, error)
		UpdateCategoryBudget(ctx context.Context, id int64, budget decimal.Decimal) error
		CountCategoryExpenses(ctx context.Context, id int64) (int, error)
		DeleteCategory(ctx context.Context, id int64, cascade bool) (int, error)
	}

	ExpenseStore interface {
		CreateExpense(ctx context.Context, e *core.Expense) error
		GetExpense(ctx context.Context, id int64) (core.Expense, error)
		UpdateExpense(ctx context.Context, e *core.Expense) error
		DeleteExpense(ctx context.Context, id int64) error
		QueryExpenses(ctx context.Context, q core.ExpenseQuery) ([]core.Expense, error)
		CountExpenses(ctx context.Context, q core.ExpenseQuery) (int, error)
	}

	// ExpenseReader is all the analytics and report paths need.
	ExpenseReader interface {
		QueryExpenses(ctx context.Context, q core.ExpenseQuery) ([]core.Expense, error)
	}

	AlertStore interface {
		ListBudgetedCategories(ctx context.Context) ([]core.BudgetedCategory, error)
		SumCategorySpend(ctx context.Context, categoryID int64, p core.Period) (decimal.Decimal, error)
		AlertExists(ctx context.Context, categoryID int64, month string, minPct decimal.Decimal) (bool, error)
		InsertAlert(ctx context.Context, a *core.BudgetAlert) error
		DeleteAlert(ctx context.Context, id int64) error
	}

	MonthlyEmailStore interface {
		ListUsersWithEmail(ctx context.Context) ([]core.User, error)
		HasExpenses(ctx context.Context, userID int64, p core.Period) (bool, error)
	}

	ReportJobStore interface {
		CreateReportJob(ctx context.Context, j *core.ReportJob) error
		GetReportJob(ctx context.Context, id int64) (core.ReportJob, error)
		ListPendingReportJobs(ctx context.Context, limit int) ([]core.ReportJob, error)
		ListReportJobs(ctx context.Context, userID int64) ([]core.ReportJob, error)
		ClaimReportJob(ctx context.Context, id int64) (bool, error)
		CompleteReportJob(ctx context.Context, id int64, fileURL string, at time.Time) error
		FailReportJob(ctx context.Context, id int64, reason string, at time.Time) error
		ResetStaleReportJobs(ctx context.Context) (int, error)
	}
)

// Notifier delivers user-facing notifications. Implementations return a
// *core.TransportError when delivery fails.
type Notifier interface {
	SendBudgetAlert(ctx context.Context, n core.BudgetAlertNotice) error
	SendMonthlyReport(ctx context.Context, n core.MonthlyReportNotice) error
	SendExpenseReport(ctx context.Context, n core.ExpenseReportNotice) error
	SendNotification(ctx context.Context, n core.Notice) error
}

// Renderer turns a report into a workbook.
type Renderer interface {
	Render(r core.ExpenseReport) ([]byte, error)
}
