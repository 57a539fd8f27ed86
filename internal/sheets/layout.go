package sheets

import (
	"time"

	"spendwise/internal/core"
)

// Rows lays a report out as spreadsheet values: a title block, one row
// per expense, totals, then the category breakdown. Numbers are written
// as plain strings so USER_ENTERED input parses them.
func Rows(r core.ExpenseReport) [][]any {
	rows := [][]any{
		{r.Title},
		{"Period", r.Period.String()},
		{"Generated", r.GeneratedAt.UTC().Format(time.DateTime)},
		{},
		{"Date", "Category", "Description", "Amount"},
	}
	for _, e := range r.Expenses {
		rows = append(rows, []any{e.Date.String(), e.Category.Name, e.Description, core.FormatMoney(e.Amount)})
	}

	rows = append(rows,
		[]any{},
		[]any{"Total Amount", "", "", core.FormatMoney(r.TotalAmount)},
		[]any{"Total Expenses", "", "", r.ExpenseCount},
		[]any{"Average Expense", "", "", core.FormatMoney(r.AverageExpense)},
		[]any{},
		[]any{"Category Breakdown"},
		[]any{"Category", "Amount", "Count", "Percentage"},
	)
	for _, c := range r.Categories {
		rows = append(rows, []any{c.CategoryName, core.FormatMoney(c.Amount), c.ExpenseCount, c.Percentage.StringFixed(2) + "%"})
	}
	return rows
}
