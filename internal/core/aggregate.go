package core

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// TopCategoryLimit caps the yearly top-categories ranking.
const TopCategoryLimit = 5

type categoryGroup struct {
	ref    CategoryRef
	amount decimal.Decimal
	count  int
}

// groupByCategory buckets expenses by category id, preserving the order in
// which categories are first seen.
func groupByCategory(expenses []Expense) []*categoryGroup {
	index := make(map[int64]*categoryGroup)
	var groups []*categoryGroup
	for _, e := range expenses {
		g, ok := index[e.CategoryID]
		if !ok {
			ref := e.Category
			ref.ID = e.CategoryID
			g = &categoryGroup{ref: ref, amount: decimal.Zero}
			index[e.CategoryID] = g
			groups = append(groups, g)
		}
		g.amount = g.amount.Add(e.Amount)
		g.count++
	}
	return groups
}

// Total sums expense amounts at full precision.
func Total(expenses []Expense) decimal.Decimal {
	total := decimal.Zero
	for _, e := range expenses {
		total = total.Add(e.Amount)
	}
	return total
}

// BreakdownByCategory computes per-category shares against the sum of the
// input.
func BreakdownByCategory(expenses []Expense) []CategoryShare {
	return BreakdownByCategoryOver(expenses, Total(expenses))
}

// BreakdownByCategoryOver computes per-category shares against an explicit
// total. Shares are ordered by amount descending; ties keep discovery order.
// Categories whose amount sums to zero are left out.
func BreakdownByCategoryOver(expenses []Expense, total decimal.Decimal) []CategoryShare {
	groups := groupByCategory(expenses)
	shares := make([]CategoryShare, 0, len(groups))
	for _, g := range groups {
		if g.amount.IsZero() {
			continue
		}
		shares = append(shares, CategoryShare{
			CategoryID:     g.ref.ID,
			CategoryName:   g.ref.Name,
			ColorHex:       g.ref.ColorHex,
			Amount:         g.amount,
			ExpenseCount:   g.count,
			Percentage:     Percentage(g.amount, total),
			AverageExpense: Average(g.amount, g.count),
		})
	}
	sort.SliceStable(shares, func(i, j int) bool {
		return shares[i].Amount.GreaterThan(shares[j].Amount)
	})
	return shares
}

// BuildCategoryBreakdown assembles the breakdown response for a period.
func BuildCategoryBreakdown(period Period, expenses []Expense) CategoryBreakdown {
	total := Total(expenses)
	return CategoryBreakdown{
		Period:        period,
		TotalAmount:   total,
		TotalExpenses: len(expenses),
		Categories:    BreakdownByCategoryOver(expenses, total),
	}
}

// BuildMonthlyReport summarizes the expenses of one month. Category lines
// follow discovery order.
func BuildMonthlyReport(year, month int, expenses []Expense) MonthlyReport {
	groups := groupByCategory(expenses)
	lines := make([]CategoryTotal, 0, len(groups))
	for _, g := range groups {
		lines = append(lines, CategoryTotal{
			Category: g.ref.Name,
			Amount:   g.amount,
			Count:    g.count,
		})
	}
	return MonthlyReport{
		Month:             MonthKey(year, month),
		TotalAmount:       Total(expenses),
		ExpenseCount:      len(expenses),
		CategoryBreakdown: lines,
	}
}

// BuildYearlyTrends buckets a year of expenses by month. Only months with
// at least one expense appear, in ascending order.
func BuildYearlyTrends(year int, expenses []Expense) YearlyTrends {
	var buckets [12]struct {
		amount decimal.Decimal
		count  int
	}
	for _, e := range expenses {
		b := &buckets[int(e.Date.Month())-1]
		b.amount = b.amount.Add(e.Amount)
		b.count++
	}

	trends := make([]MonthTrend, 0, 12)
	for i, b := range buckets {
		if b.count == 0 {
			continue
		}
		trends = append(trends, MonthTrend{
			Month:         i + 1,
			MonthName:     time.Month(i + 1).String(),
			TotalAmount:   b.amount,
			ExpenseCount:  b.count,
			AverageAmount: Average(b.amount, b.count),
		})
	}

	total := Total(expenses)
	shares := BreakdownByCategoryOver(expenses, total)
	if len(shares) > TopCategoryLimit {
		shares = shares[:TopCategoryLimit]
	}
	top := make([]TopCategory, 0, len(shares))
	for _, s := range shares {
		top = append(top, TopCategory{
			Category:   s.CategoryName,
			Amount:     s.Amount,
			Percentage: s.Percentage,
		})
	}

	return YearlyTrends{
		Year:          year,
		TotalAmount:   total,
		TotalExpenses: len(expenses),
		MonthlyTrends: trends,
		TopCategories: top,
	}
}

// BuildExpenseReport assembles the document model for an export.
// Expenses are rendered in date order.
func BuildExpenseReport(title string, userID int64, period Period, expenses []Expense, now time.Time) ExpenseReport {
	sorted := make([]Expense, len(expenses))
	copy(sorted, expenses)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date.Time)
	})

	total := Total(sorted)
	return ExpenseReport{
		Title:          title,
		UserID:         userID,
		Period:         period,
		GeneratedAt:    now.UTC(),
		Expenses:       sorted,
		TotalAmount:    total,
		ExpenseCount:   len(sorted),
		AverageExpense: Average(total, len(sorted)),
		Categories:     BreakdownByCategoryOver(sorted, total),
	}
}

// BudgetUsage reports how much of a budget has been spent. The threshold
// check compares exact values; the returned percentage is rounded.
func BudgetUsage(spent, budget, thresholdPercent decimal.Decimal) (pct decimal.Decimal, reached bool) {
	if !budget.IsPositive() {
		return decimal.Zero, false
	}
	pct = Percentage(spent, budget)
	reached = spent.Mul(hundred).GreaterThanOrEqual(budget.Mul(thresholdPercent))
	return pct, reached
}
