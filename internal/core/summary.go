package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// CategoryShare is one category's slice of a breakdown.
type CategoryShare struct {
	CategoryID     int64           `json:"categoryId"`
	CategoryName   string          `json:"categoryName"`
	ColorHex       string          `json:"colorHex"`
	Amount         decimal.Decimal `json:"amount"`
	ExpenseCount   int             `json:"expenseCount"`
	Percentage     decimal.Decimal `json:"percentage"`
	AverageExpense decimal.Decimal `json:"averageExpense"`
}

// CategoryBreakdown is the response of the category breakdown endpoint.
type CategoryBreakdown struct {
	Period        Period          `json:"period"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
	TotalExpenses int             `json:"totalExpenses"`
	Categories    []CategoryShare `json:"categories"`
}

// CategoryTotal is a per-category line in a monthly report.
type CategoryTotal struct {
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
	Count    int             `json:"count"`
}

type MonthlyReport struct {
	Month             string          `json:"month"`
	TotalAmount       decimal.Decimal `json:"totalAmount"`
	ExpenseCount      int             `json:"expenseCount"`
	CategoryBreakdown []CategoryTotal `json:"categoryBreakdown"`
}

type MonthTrend struct {
	Month         int             `json:"month"`
	MonthName     string          `json:"monthName"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
	ExpenseCount  int             `json:"expenseCount"`
	AverageAmount decimal.Decimal `json:"averageAmount"`
}

type TopCategory struct {
	Category   string          `json:"category"`
	Amount     decimal.Decimal `json:"amount"`
	Percentage decimal.Decimal `json:"percentage"`
}

type YearlyTrends struct {
	Year          int             `json:"year"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
	TotalExpenses int             `json:"totalExpenses"`
	MonthlyTrends []MonthTrend    `json:"monthlyTrends"`
	TopCategories []TopCategory   `json:"topCategories"`
}

// ExpenseReport is the document model rendered to Excel or Sheets.
type ExpenseReport struct {
	Title          string
	UserID         int64
	Period         Period
	GeneratedAt    time.Time
	Expenses       []Expense
	TotalAmount    decimal.Decimal
	ExpenseCount   int
	AverageExpense decimal.Decimal
	Categories     []CategoryShare
}

// IsEmpty reports whether the report has no expenses to render.
func (r ExpenseReport) IsEmpty() bool {
	return len(r.Expenses) == 0
}
