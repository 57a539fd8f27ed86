package sheets

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spendwise/internal/core"
)

func sampleReport() core.ExpenseReport {
	food := core.CategoryRef{ID: 1, Name: "Food"}
	expenses := []core.Expense{
		{Category: food, Amount: decimal.RequireFromString("12.5"), Description: "Lunch", Date: core.NewDate(2024, 3, 2)},
		{Category: food, Amount: decimal.RequireFromString("7.5"), Description: "Coffee", Date: core.NewDate(2024, 3, 9)},
	}
	now := time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC)
	return core.BuildExpenseReport("Monthly Expense Report", 7, core.MonthBounds(2024, 3), expenses, now)
}

func TestTabName(t *testing.T) {
	assert.Equal(t, "2024 Report 7 2024-03-01_2024-03-31", TabName(sampleReport()))
}

func TestRowsLayout(t *testing.T) {
	rows := Rows(sampleReport())

	assert.Equal(t, []any{"Monthly Expense Report"}, rows[0])
	assert.Equal(t, []any{"Period", "2024-03-01 to 2024-03-31"}, rows[1])
	assert.Equal(t, []any{"Generated", "2024-04-01 09:00:00"}, rows[2])
	assert.Equal(t, []any{"Date", "Category", "Description", "Amount"}, rows[4])
	assert.Equal(t, []any{"2024-03-02", "Food", "Lunch", "12.50"}, rows[5])
	assert.Equal(t, []any{"2024-03-09", "Food", "Coffee", "7.50"}, rows[6])
	assert.Equal(t, []any{"Total Amount", "", "", "20.00"}, rows[8])
	assert.Equal(t, []any{"Total Expenses", "", "", 2}, rows[9])
	assert.Equal(t, []any{"Average Expense", "", "", "10.00"}, rows[10])

	last := rows[len(rows)-1]
	require.Len(t, last, 4)
	assert.Equal(t, "Food", last[0])
	assert.Equal(t, "100.00%", last[3])
}

func TestRowsEmptyReport(t *testing.T) {
	r := core.BuildExpenseReport("Empty", 1, core.MonthBounds(2024, 1), nil, time.Now())
	rows := Rows(r)
	assert.Equal(t, []any{"Date", "Category", "Description", "Amount"}, rows[4])
	assert.Equal(t, []any{"Category", "Amount", "Count", "Percentage"}, rows[len(rows)-1])
}
