// Package report renders expense reports as Excel workbooks.
package report

import (
	"bytes"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"spendwise/internal/core"
)

const (
	expensesSheet = "Expenses"
	summarySheet  = "Summary"
	noDataSheet   = "No Data"

	// NoDataMessage fills the single sheet of an empty report.
	NoDataMessage = "No expenses found for the selected period"

	moneyFormat   = "$#,##0.00"
	percentFormat = "0.00%"
	headerFill    = "#DCE6F1"

	breakdownHeaderRow = 12
)

var decimal100 = decimal.NewFromInt(100)

// ExcelRenderer turns an ExpenseReport into an xlsx workbook.
type ExcelRenderer struct{}

func NewExcelRenderer() *ExcelRenderer {
	return &ExcelRenderer{}
}

// Render returns the workbook bytes. A report without expenses yields a
// single "No Data" sheet.
func (ExcelRenderer) Render(r core.ExpenseReport) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	first := f.GetSheetName(0)
	var err error
	if r.IsEmpty() {
		err = renderEmpty(f, first)
	} else {
		err = renderReport(f, first, r)
	}
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func renderEmpty(f *excelize.File, first string) error {
	if err := f.SetSheetName(first, noDataSheet); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}
	return f.SetCellValue(noDataSheet, "A1", NoDataMessage)
}

type styles struct {
	header, bold, money, boldMoney, date, percent int
}

func newStyles(f *excelize.File) (styles, error) {
	var (
		s   styles
		err error
	)
	money := moneyFormat
	percent := percentFormat
	dateFmt := "yyyy-mm-dd"

	if s.header, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{headerFill}, Pattern: 1},
	}); err != nil {
		return s, err
	}
	if s.bold, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err != nil {
		return s, err
	}
	if s.money, err = f.NewStyle(&excelize.Style{CustomNumFmt: &money}); err != nil {
		return s, err
	}
	if s.boldMoney, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}, CustomNumFmt: &money}); err != nil {
		return s, err
	}
	if s.date, err = f.NewStyle(&excelize.Style{CustomNumFmt: &dateFmt}); err != nil {
		return s, err
	}
	if s.percent, err = f.NewStyle(&excelize.Style{CustomNumFmt: &percent}); err != nil {
		return s, err
	}
	return s, nil
}

func renderReport(f *excelize.File, first string, r core.ExpenseReport) error {
	if err := f.SetSheetName(first, expensesSheet); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}
	if _, err := f.NewSheet(summarySheet); err != nil {
		return fmt.Errorf("add summary sheet: %w", err)
	}
	st, err := newStyles(f)
	if err != nil {
		return fmt.Errorf("create styles: %w", err)
	}

	if err := writeExpenses(f, st, r); err != nil {
		return fmt.Errorf("write expenses: %w", err)
	}
	if err := writeSummary(f, st, r); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}
	f.SetActiveSheet(0)
	return nil
}

func writeExpenses(f *excelize.File, st styles, r core.ExpenseReport) error {
	const sheet = expensesSheet
	if err := f.SetSheetRow(sheet, "A1", &[]any{"Date", "Category", "Description", "Amount"}); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", "D1", st.header); err != nil {
		return err
	}

	for i, e := range r.Expenses {
		row := i + 2
		amount, _ := e.Amount.Float64()
		if err := f.SetSheetRow(sheet, cell("A", row), &[]any{e.Date.Time, e.Category.Name, e.Description, amount}); err != nil {
			return err
		}
	}

	last := len(r.Expenses) + 1
	if err := f.SetCellStyle(sheet, "A2", cell("A", last), st.date); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "D2", cell("D", last), st.money); err != nil {
		return err
	}

	totalRow := len(r.Expenses) + 3
	total, _ := r.TotalAmount.Float64()
	if err := f.SetCellValue(sheet, cell("C", totalRow), "Total"); err != nil {
		return err
	}
	if err := f.SetCellValue(sheet, cell("D", totalRow), total); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, cell("C", totalRow), cell("C", totalRow), st.bold); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, cell("D", totalRow), cell("D", totalRow), st.boldMoney); err != nil {
		return err
	}

	if err := f.SetColWidth(sheet, "A", "A", 12); err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "B", "B", 20); err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "C", "C", 40); err != nil {
		return err
	}
	return f.SetColWidth(sheet, "D", "D", 14)
}

func writeSummary(f *excelize.File, st styles, r core.ExpenseReport) error {
	const sheet = summarySheet
	total, _ := r.TotalAmount.Float64()
	avg, _ := r.AverageExpense.Round(2).Float64()

	cells := []struct {
		ref   string
		value any
	}{
		{"A1", r.Title},
		{"A2", r.Period.String()},
		{"A3", "Generated: " + r.GeneratedAt.UTC().Format("2006-01-02 15:04:05") + " UTC"},
		{"A5", "Total Amount"},
		{"B5", total},
		{"A6", "Total Expenses"},
		{"B6", r.ExpenseCount},
		{"A7", "Average Expense"},
		{"B7", avg},
	}
	for _, c := range cells {
		if err := f.SetCellValue(sheet, c.ref, c.value); err != nil {
			return err
		}
	}
	if err := f.SetCellStyle(sheet, "A1", "A1", st.bold); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "B5", "B5", st.money); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "B7", "B7", st.money); err != nil {
		return err
	}

	if err := f.SetCellValue(sheet, cell("A", breakdownHeaderRow-1), "Category Breakdown"); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, cell("A", breakdownHeaderRow-1), cell("A", breakdownHeaderRow-1), st.bold); err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell("A", breakdownHeaderRow), &[]any{"Category", "Amount", "Count", "Percentage"}); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, cell("A", breakdownHeaderRow), cell("D", breakdownHeaderRow), st.header); err != nil {
		return err
	}

	for i, c := range r.Categories {
		row := breakdownHeaderRow + 1 + i
		amount, _ := c.Amount.Float64()
		// Percentages are stored as fractions for the 0.00% format.
		fraction, _ := c.Percentage.Div(decimal100).Float64()
		if err := f.SetSheetRow(sheet, cell("A", row), &[]any{c.CategoryName, amount, c.ExpenseCount, fraction}); err != nil {
			return err
		}
	}
	if n := len(r.Categories); n > 0 {
		from, to := breakdownHeaderRow+1, breakdownHeaderRow+n
		if err := f.SetCellStyle(sheet, cell("B", from), cell("B", to), st.money); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, cell("D", from), cell("D", to), st.percent); err != nil {
			return err
		}
	}

	if err := f.SetColWidth(sheet, "A", "A", 24); err != nil {
		return err
	}
	return f.SetColWidth(sheet, "B", "D", 14)
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
