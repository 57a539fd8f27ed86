package sheets

import (
	"context"
	"fmt"

	"spendwise/internal/core"
)

// Narrow ports for spreadsheet sinks.
type (
	// ReportPublisher writes a report to a spreadsheet and returns a link
	// to it.
	ReportPublisher interface {
		PublishReport(ctx context.Context, r core.ExpenseReport) (url string, err error)
	}
)

// TabName is the worksheet title a report is published under, e.g.
// "2024 Report 7 2024-03-01_2024-03-31".
func TabName(r core.ExpenseReport) string {
	return fmt.Sprintf("%d Report %d %s_%s", r.Period.Start.Year(), r.UserID, r.Period.Start, r.Period.End)
}
