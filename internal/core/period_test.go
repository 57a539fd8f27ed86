package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMonthBoundsLeapYear(t *testing.T) {
	leap := MonthBounds(2024, 2)
	assert.Equal(t, NewDate(2024, 2, 1), leap.Start)
	assert.Equal(t, NewDate(2024, 2, 29), leap.End)

	common := MonthBounds(2023, 2)
	assert.Equal(t, NewDate(2023, 2, 28), common.End)

	december := MonthBounds(2023, 12)
	assert.Equal(t, NewDate(2023, 12, 31), december.End)
}

func TestMonthKey(t *testing.T) {
	assert.Equal(t, "2024-02", MonthKey(2024, 2))
	assert.Equal(t, "0999-12", MonthKey(999, 12))
}

func TestPreviousMonth(t *testing.T) {
	tests := []struct {
		now         time.Time
		year, month int
	}{
		{time.Date(2025, 3, 31, 9, 0, 0, 0, time.UTC), 2025, 2},
		{time.Date(2025, 5, 31, 9, 0, 0, 0, time.UTC), 2025, 4},
		{time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), 2024, 12},
		{time.Date(2024, 3, 29, 23, 0, 0, 0, time.UTC), 2024, 2},
	}
	for _, tt := range tests {
		t.Run(tt.now.Format(time.DateOnly), func(t *testing.T) {
			y, m := PreviousMonth(tt.now)
			assert.Equal(t, tt.year, y)
			assert.Equal(t, tt.month, m)
		})
	}
}

func TestTrailingDays(t *testing.T) {
	p := TrailingDays(time.Date(2025, 3, 15, 18, 0, 0, 0, time.UTC), 30)
	assert.Equal(t, NewDate(2025, 2, 13), p.Start)
	assert.Equal(t, NewDate(2025, 3, 15), p.End)
	assert.Equal(t, 30, p.Days())
}

func TestPeriodFor(t *testing.T) {
	// Thursday
	now := time.Date(2025, 5, 15, 10, 0, 0, 0, time.UTC)
	tests := []struct {
		typ        ReportType
		start, end Date
	}{
		{ReportMonthly, NewDate(2025, 5, 1), NewDate(2025, 5, 31)},
		{ReportQuarterly, NewDate(2025, 4, 1), NewDate(2025, 6, 30)},
		{ReportYearly, NewDate(2025, 1, 1), NewDate(2025, 12, 31)},
		{ReportWeekly, NewDate(2025, 5, 12), NewDate(2025, 5, 18)},
		{ReportType("bogus"), NewDate(2025, 5, 1), NewDate(2025, 5, 31)},
	}
	for _, tt := range tests {
		t.Run(string(tt.typ), func(t *testing.T) {
			p := PeriodFor(tt.typ, now)
			assert.Equal(t, tt.start, p.Start)
			assert.Equal(t, tt.end, p.End)
		})
	}
}

func TestPeriodForWeekOnSunday(t *testing.T) {
	sunday := time.Date(2025, 5, 18, 10, 0, 0, 0, time.UTC)
	p := PeriodFor(ReportWeekly, sunday)
	assert.Equal(t, NewDate(2025, 5, 12), p.Start)
	assert.Equal(t, NewDate(2025, 5, 18), p.End)
}

func TestPeriodContains(t *testing.T) {
	p := MonthBounds(2024, 2)
	assert.True(t, p.Contains(NewDate(2024, 2, 1)))
	assert.True(t, p.Contains(NewDate(2024, 2, 29)))
	assert.False(t, p.Contains(NewDate(2024, 3, 1)))
}
