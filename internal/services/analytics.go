package services

import (
	"context"
	"fmt"
	"time"

	"spendwise/internal/cache"
	"spendwise/internal/core"
)

// Read-through TTLs per endpoint.
const (
	CategoriesTTL        = 15 * time.Minute
	CategoryBreakdownTTL = 30 * time.Minute
	MonthlyReportTTL     = time.Hour
	YearlyTrendsTTL      = 6 * time.Hour

	// breakdownDefaultDays is the trailing window used when the caller
	// gives no dates.
	breakdownDefaultDays = 30
	minReportYear        = 2000
)

func categoriesKey(userID int64) string {
	return fmt.Sprintf("categories_%d", userID)
}

func breakdownKey(userID int64, p core.Period) string {
	return fmt.Sprintf("category_breakdown_%d_%s_%s", userID, p.Start.Format("20060102"), p.End.Format("20060102"))
}

func monthlyReportKey(userID int64, year, month int) string {
	return fmt.Sprintf("monthly_report_%d_%d_%d", userID, year, month)
}

func yearlyTrendsKey(userID int64, year int) string {
	return fmt.Sprintf("yearly_trends_%d_%d", userID, year)
}

// AnalyticsService serves the cached aggregate views over a user's expenses.
type AnalyticsService struct {
	expenses ExpenseReader
	cache    *cache.Store
	now      func() time.Time
}

func NewAnalyticsService(expenses ExpenseReader, c *cache.Store) *AnalyticsService {
	return &AnalyticsService{
		expenses: expenses,
		cache:    c,
		now:      time.Now,
	}
}

// CategoryBreakdown aggregates the user's expenses between start and end.
// A missing bound defaults to the trailing 30 day window.
func (s *AnalyticsService) CategoryBreakdown(ctx context.Context, userID int64, start, end *core.Date) (core.CategoryBreakdown, error) {
	if userID <= 0 {
		return core.CategoryBreakdown{}, core.NewValidationError("userId", "Invalid user ID")
	}
	period := core.TrailingDays(s.now(), breakdownDefaultDays)
	if start != nil {
		period.Start = *start
	}
	if end != nil {
		period.End = *end
	}
	if period.Start.After(period.End.Time) {
		return core.CategoryBreakdown{}, core.NewValidationError("startDate", "Start date must be before or equal to end date")
	}

	return cache.GetOrCompute(ctx, s.cache, breakdownKey(userID, period), CategoryBreakdownTTL,
		func(ctx context.Context) (core.CategoryBreakdown, error) {
			expenses, err := s.expenses.QueryExpenses(ctx, core.ExpenseQuery{UserID: userID, From: &period.Start, To: &period.End})
			if err != nil {
				return core.CategoryBreakdown{}, fmt.Errorf("query expenses: %w", err)
			}
			return core.BuildCategoryBreakdown(period, expenses), nil
		})
}

// MonthlyReport summarizes one calendar month.
func (s *AnalyticsService) MonthlyReport(ctx context.Context, userID int64, year, month int) (core.MonthlyReport, error) {
	if userID <= 0 {
		return core.MonthlyReport{}, core.NewValidationError("userId", "Invalid user ID")
	}
	if err := s.validateYear(year); err != nil {
		return core.MonthlyReport{}, err
	}
	if month < 1 || month > 12 {
		return core.MonthlyReport{}, core.NewValidationError("month", "Month must be between 1 and 12")
	}

	return cache.GetOrCompute(ctx, s.cache, monthlyReportKey(userID, year, month), MonthlyReportTTL,
		func(ctx context.Context) (core.MonthlyReport, error) {
			p := core.MonthBounds(year, month)
			expenses, err := s.expenses.QueryExpenses(ctx, core.ExpenseQuery{UserID: userID, From: &p.Start, To: &p.End})
			if err != nil {
				return core.MonthlyReport{}, fmt.Errorf("query expenses: %w", err)
			}
			return core.BuildMonthlyReport(year, month, expenses), nil
		})
}

// YearlyTrends returns month-by-month totals and the top categories of a year.
func (s *AnalyticsService) YearlyTrends(ctx context.Context, userID int64, year int) (core.YearlyTrends, error) {
	if userID <= 0 {
		return core.YearlyTrends{}, core.NewValidationError("userId", "Invalid user ID")
	}
	if err := s.validateYear(year); err != nil {
		return core.YearlyTrends{}, err
	}

	return cache.GetOrCompute(ctx, s.cache, yearlyTrendsKey(userID, year), YearlyTrendsTTL,
		func(ctx context.Context) (core.YearlyTrends, error) {
			p := core.YearBounds(year)
			expenses, err := s.expenses.QueryExpenses(ctx, core.ExpenseQuery{UserID: userID, From: &p.Start, To: &p.End})
			if err != nil {
				return core.YearlyTrends{}, fmt.Errorf("query expenses: %w", err)
			}
			return core.BuildYearlyTrends(year, expenses), nil
		})
}

func (s *AnalyticsService) validateYear(year int) error {
	if year < minReportYear || year > s.now().UTC().Year()+1 {
		return core.NewValidationError("year", fmt.Sprintf("Year must be between %d and %d", minReportYear, s.now().UTC().Year()+1))
	}
	return nil
}
