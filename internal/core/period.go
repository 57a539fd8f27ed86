package core

import (
	"fmt"
	"time"
)

// Period is an inclusive range of calendar days.
type Period struct {
	Start Date `json:"startDate"`
	End   Date `json:"endDate"`
}

// PreviousMonth returns the calendar month before the one containing now (UTC).
func PreviousMonth(now time.Time) (year, month int) {
	now = now.UTC()
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -1, 0)
	return first.Year(), int(first.Month())
}

// MonthKey formats the alert ledger key for a month, e.g. "2024-02".
func MonthKey(year, month int) string {
	return fmt.Sprintf("%04d-%02d", year, month)
}

// MonthBounds returns the first and last calendar day of a month.
func MonthBounds(year, month int) Period {
	start := NewDate(year, month, 1)
	// Day 0 of the next month is the last day of this one.
	end := NewDate(year, month+1, 0)
	return Period{Start: start, End: end}
}

// YearBounds returns January 1 through December 31.
func YearBounds(year int) Period {
	return Period{Start: NewDate(year, 1, 1), End: NewDate(year, 12, 31)}
}

// TrailingDays returns [today-days, today].
func TrailingDays(now time.Time, days int) Period {
	today := DateOf(now)
	return Period{Start: today.AddDays(-days), End: today}
}

// PeriodFor returns the period a report job of the given type covers,
// relative to now.
func PeriodFor(t ReportType, now time.Time) Period {
	today := DateOf(now)
	y, m := today.Year(), int(today.Month())

	switch t.Normalize() {
	case ReportYearly:
		return YearBounds(y)
	case ReportQuarterly:
		first := ((m-1)/3)*3 + 1
		return Period{Start: NewDate(y, first, 1), End: NewDate(y, first+3, 0)}
	case ReportWeekly:
		// Weeks start on Monday.
		offset := (int(today.Weekday()) + 6) % 7
		start := today.AddDays(-offset)
		return Period{Start: start, End: start.AddDays(6)}
	default:
		return MonthBounds(y, m)
	}
}

// Days returns the number of days between start and end.
func (p Period) Days() int {
	return int(p.End.Sub(p.Start.Time).Hours() / 24)
}

func (p Period) Contains(d Date) bool {
	return !d.Before(p.Start.Time) && !d.After(p.End.Time)
}

func (p Period) String() string {
	return fmt.Sprintf("%s to %s", p.Start, p.End)
}
