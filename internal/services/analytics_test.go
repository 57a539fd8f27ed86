package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spendwise/internal/cache"
	"spendwise/internal/core"
)

var analyticsNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func newAnalyticsFixture() (*memStore, *AnalyticsService) {
	store := newMemStore()
	svc := NewAnalyticsService(store, cache.NewStore(100))
	svc.now = fixedClock(analyticsNow)
	return store, svc
}

func TestCategoryBreakdownDefaultsToTrailingWindow(t *testing.T) {
	store, svc := newAnalyticsFixture()
	u := store.addUser("ana@example.com", "Ana")
	food := store.addCategory(u.ID, "Food", "0")
	store.addExpense(u.ID, food.ID, "10", core.NewDate(2024, 5, 16))
	store.addExpense(u.ID, food.ID, "99", core.NewDate(2024, 5, 15))

	got, err := svc.CategoryBreakdown(context.Background(), u.ID, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, core.NewDate(2024, 5, 16), got.Period.Start)
	assert.Equal(t, core.NewDate(2024, 6, 15), got.Period.End)
	assert.Equal(t, "10", got.TotalAmount.String())
}

func TestCategoryBreakdownRejectsInvertedRange(t *testing.T) {
	_, svc := newAnalyticsFixture()
	start, end := core.NewDate(2024, 6, 2), core.NewDate(2024, 6, 1)
	_, err := svc.CategoryBreakdown(context.Background(), 1, &start, &end)
	assert.True(t, core.IsValidationError(err))

	_, err = svc.CategoryBreakdown(context.Background(), 0, nil, nil)
	assert.True(t, core.IsValidationError(err))
}

func TestMonthlyReportIsCached(t *testing.T) {
	store, svc := newAnalyticsFixture()
	u := store.addUser("ana@example.com", "Ana")
	food := store.addCategory(u.ID, "Food", "0")
	store.addExpense(u.ID, food.ID, "10", core.NewDate(2024, 2, 1))

	ctx := context.Background()
	first, err := svc.MonthlyReport(ctx, u.ID, 2024, 2)
	require.NoError(t, err)
	store.addExpense(u.ID, food.ID, "5", core.NewDate(2024, 2, 2))
	second, err := svc.MonthlyReport(ctx, u.ID, 2024, 2)
	require.NoError(t, err)

	assert.Equal(t, first.TotalAmount.String(), second.TotalAmount.String(), "second read is served from cache")
	assert.Equal(t, 1, store.queries)
}

func TestConcurrentReportMissesCollapse(t *testing.T) {
	store, svc := newAnalyticsFixture()
	u := store.addUser("ana@example.com", "Ana")

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.YearlyTrends(context.Background(), u.ID, 2024)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	store.mu.Lock()
	defer store.mu.Unlock()
	assert.LessOrEqual(t, store.queries, 10)
	assert.GreaterOrEqual(t, store.queries, 1)
}

func TestReportValidation(t *testing.T) {
	_, svc := newAnalyticsFixture()
	ctx := context.Background()

	tests := []struct {
		name  string
		year  int
		month int
	}{
		{"year too early", 1999, 1},
		{"year too late", 2026, 1},
		{"month zero", 2024, 0},
		{"month thirteen", 2024, 13},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.MonthlyReport(ctx, 1, tt.year, tt.month)
			assert.True(t, core.IsValidationError(err), "got %v", err)
		})
	}

	_, err := svc.YearlyTrends(ctx, 1, 2025)
	assert.NoError(t, err, "next year is accepted")
}
