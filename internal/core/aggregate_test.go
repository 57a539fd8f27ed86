package core

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	food      = CategoryRef{ID: 1, Name: "Food", ColorHex: "#ff0000"}
	transport = CategoryRef{ID: 2, Name: "Transport", ColorHex: "#00ff00"}
)

func expense(cat CategoryRef, amount string, d Date) Expense {
	return Expense{
		CategoryID: cat.ID,
		Category:   cat,
		Amount:     decimal.RequireFromString(amount),
		Date:       d,
	}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestBreakdownByCategoryExample(t *testing.T) {
	day := NewDate(2025, 3, 1)
	expenses := []Expense{
		expense(food, "30", day),
		expense(food, "20", day),
		expense(transport, "50", day),
	}

	got := BuildCategoryBreakdown(Period{Start: day, End: day}, expenses)

	assert.True(t, got.TotalAmount.Equal(dec("100")))
	assert.Equal(t, 3, got.TotalExpenses)
	require.Len(t, got.Categories, 2)

	assert.Equal(t, "Food", got.Categories[0].CategoryName)
	assert.True(t, got.Categories[0].Amount.Equal(dec("50")))
	assert.True(t, got.Categories[0].Percentage.Equal(dec("50.00")))
	assert.Equal(t, 2, got.Categories[0].ExpenseCount)
	assert.True(t, got.Categories[0].AverageExpense.Equal(dec("25")))

	assert.Equal(t, "Transport", got.Categories[1].CategoryName)
	assert.True(t, got.Categories[1].Amount.Equal(dec("50")))
	assert.True(t, got.Categories[1].Percentage.Equal(dec("50.00")))
	assert.Equal(t, 1, got.Categories[1].ExpenseCount)
	assert.True(t, got.Categories[1].AverageExpense.Equal(dec("50")))
}

func TestBreakdownByCategoryOrdersDescending(t *testing.T) {
	day := NewDate(2025, 3, 1)
	other := CategoryRef{ID: 3, Name: "Fun"}
	shares := BreakdownByCategory([]Expense{
		expense(food, "10", day),
		expense(transport, "70", day),
		expense(other, "20", day),
	})

	require.Len(t, shares, 3)
	assert.Equal(t, []string{"Transport", "Fun", "Food"},
		[]string{shares[0].CategoryName, shares[1].CategoryName, shares[2].CategoryName})
}

func TestBreakdownPercentagesReconcile(t *testing.T) {
	day := NewDate(2025, 3, 1)
	cats := []CategoryRef{food, transport, {ID: 3, Name: "Fun"}, {ID: 4, Name: "Rent"}}
	amounts := []string{"10.01", "33.33", "7", "0.5", "19.99", "100", "3.14"}

	var expenses []Expense
	for i, a := range amounts {
		expenses = append(expenses, expense(cats[i%len(cats)], a, day))
	}

	shares := BreakdownByCategory(expenses)
	sum := decimal.Zero
	amountSum := decimal.Zero
	for _, s := range shares {
		sum = sum.Add(s.Percentage)
		amountSum = amountSum.Add(s.Amount)
	}
	epsilon := dec("0.01").Mul(decimal.NewFromInt(int64(len(shares))))
	assert.True(t, sum.Sub(dec("100")).Abs().LessThanOrEqual(epsilon), "percentages sum to %s", sum)
	assert.True(t, amountSum.Equal(Total(expenses)))
}

func TestBreakdownEmptyInput(t *testing.T) {
	got := BuildCategoryBreakdown(TrailingDays(time.Now(), 30), nil)

	assert.True(t, got.TotalAmount.IsZero())
	assert.Equal(t, 0, got.TotalExpenses)
	assert.Empty(t, got.Categories)
}

func TestBreakdownZeroTotalOverride(t *testing.T) {
	shares := BreakdownByCategoryOver([]Expense{expense(food, "5", NewDate(2025, 1, 1))}, decimal.Zero)

	require.Len(t, shares, 1)
	assert.True(t, shares[0].Percentage.IsZero())
}

func TestBreakdownExcludesZeroSumCategory(t *testing.T) {
	day := NewDate(2025, 1, 1)
	shares := BreakdownByCategory([]Expense{
		expense(food, "5", day),
		expense(transport, "0", day),
	})

	require.Len(t, shares, 1)
	assert.Equal(t, "Food", shares[0].CategoryName)
}

func TestBuildMonthlyReportKeepsDiscoveryOrder(t *testing.T) {
	day := NewDate(2024, 2, 10)
	report := BuildMonthlyReport(2024, 2, []Expense{
		expense(food, "5", day),
		expense(transport, "50", day),
		expense(food, "1.5", day),
	})

	assert.Equal(t, "2024-02", report.Month)
	assert.True(t, report.TotalAmount.Equal(dec("56.5")))
	assert.Equal(t, 3, report.ExpenseCount)
	require.Len(t, report.CategoryBreakdown, 2)
	assert.Equal(t, "Food", report.CategoryBreakdown[0].Category)
	assert.True(t, report.CategoryBreakdown[0].Amount.Equal(dec("6.5")))
	assert.Equal(t, 2, report.CategoryBreakdown[0].Count)
	assert.Equal(t, "Transport", report.CategoryBreakdown[1].Category)
}

func TestBuildMonthlyReportEmpty(t *testing.T) {
	report := BuildMonthlyReport(2023, 11, nil)

	assert.Equal(t, "2023-11", report.Month)
	assert.True(t, report.TotalAmount.IsZero())
	assert.Equal(t, 0, report.ExpenseCount)
	assert.Empty(t, report.CategoryBreakdown)
}

func TestBuildYearlyTrends(t *testing.T) {
	var expenses []Expense
	expenses = append(expenses,
		expense(food, "10", NewDate(2024, 3, 5)),
		expense(food, "30", NewDate(2024, 3, 20)),
		expense(transport, "60", NewDate(2024, 1, 2)),
	)
	for i := 0; i < 6; i++ {
		cat := CategoryRef{ID: int64(10 + i), Name: string(rune('A' + i))}
		expenses = append(expenses, expense(cat, decimal.NewFromInt(int64(i+1)).String(), NewDate(2024, 7, 1)))
	}

	trends := BuildYearlyTrends(2024, expenses)

	assert.Equal(t, 2024, trends.Year)
	assert.Equal(t, len(expenses), trends.TotalExpenses)
	assert.True(t, trends.TotalAmount.Equal(dec("121")))

	require.Len(t, trends.MonthlyTrends, 3)
	assert.Equal(t, 1, trends.MonthlyTrends[0].Month)
	assert.Equal(t, "January", trends.MonthlyTrends[0].MonthName)
	assert.Equal(t, 3, trends.MonthlyTrends[1].Month)
	assert.True(t, trends.MonthlyTrends[1].TotalAmount.Equal(dec("40")))
	assert.Equal(t, 2, trends.MonthlyTrends[1].ExpenseCount)
	assert.True(t, trends.MonthlyTrends[1].AverageAmount.Equal(dec("20")))
	assert.Equal(t, 7, trends.MonthlyTrends[2].Month)

	require.Len(t, trends.TopCategories, TopCategoryLimit)
	assert.Equal(t, "Transport", trends.TopCategories[0].Category)
	assert.Equal(t, "Food", trends.TopCategories[1].Category)
	for i := 1; i < len(trends.TopCategories); i++ {
		assert.True(t, trends.TopCategories[i-1].Amount.GreaterThanOrEqual(trends.TopCategories[i].Amount))
	}
	assert.True(t, trends.TopCategories[0].Percentage.Equal(Percentage(dec("60"), dec("121"))))
}

func TestBuildYearlyTrendsEmpty(t *testing.T) {
	trends := BuildYearlyTrends(2020, nil)

	assert.True(t, trends.TotalAmount.IsZero())
	assert.Empty(t, trends.MonthlyTrends)
	assert.Empty(t, trends.TopCategories)
}

func TestBuildExpenseReportSortsByDate(t *testing.T) {
	now := time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC)
	report := BuildExpenseReport("March", 7, MonthBounds(2025, 3), []Expense{
		expense(food, "3", NewDate(2025, 3, 20)),
		expense(transport, "9", NewDate(2025, 3, 2)),
	}, now)

	require.Len(t, report.Expenses, 2)
	assert.Equal(t, NewDate(2025, 3, 2), report.Expenses[0].Date)
	assert.True(t, report.TotalAmount.Equal(dec("12")))
	assert.True(t, report.AverageExpense.Equal(dec("6")))
	assert.Equal(t, "Transport", report.Categories[0].CategoryName)
	assert.False(t, report.IsEmpty())
}

func TestBudgetUsage(t *testing.T) {
	threshold := dec("80")
	cases := []struct {
		spent, budget string
		pct           string
		reached       bool
	}{
		{"160", "200", "80", true},
		{"159.99", "200", "80", false},
		{"70", "100", "70", false},
		{"85", "100", "85", true},
		{"250", "200", "125", true},
		{"10", "0", "0", false},
	}
	for _, tc := range cases {
		pct, reached := BudgetUsage(dec(tc.spent), dec(tc.budget), threshold)
		assert.True(t, pct.Equal(dec(tc.pct)), "spent %s budget %s pct %s", tc.spent, tc.budget, pct)
		assert.Equal(t, tc.reached, reached, "spent %s budget %s", tc.spent, tc.budget)
	}
}
