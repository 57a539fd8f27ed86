package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spendwise/internal/core"
)

var sweepNow = time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

func newSweeperFixture() (*memStore, *fakeNotifier, *BudgetAlertSweeper) {
	store := newMemStore()
	notifier := &fakeNotifier{}
	sweeper := NewBudgetAlertSweeper(store, notifier, DefaultBudgetAlertSweeperConfig())
	sweeper.now = fixedClock(sweepNow)
	return store, notifier, sweeper
}

func TestDefaultBudgetAlertSweeperConfig(t *testing.T) {
	config := DefaultBudgetAlertSweeperConfig()
	assert.Equal(t, 6*time.Hour, config.Interval)
	assert.True(t, config.ThresholdPercent.Equal(decimal.NewFromInt(80)))
}

func TestSweepThresholdBoundary(t *testing.T) {
	tests := []struct {
		name    string
		spent   string
		alerted int
	}{
		{"just below", "159.99", 0},
		{"exactly at threshold", "160.00", 1},
		{"over budget", "250", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, notifier, sweeper := newSweeperFixture()
			u := store.addUser("ana@example.com", "Ana")
			food := store.addCategory(u.ID, "Food", "200")
			store.addExpense(u.ID, food.ID, tt.spent, core.NewDate(2024, 3, 2))

			result, err := sweeper.SweepOnce(context.Background(), sweepNow)
			require.NoError(t, err)
			assert.Equal(t, "2024-03", result.Month)
			assert.Equal(t, 1, result.Checked)
			assert.Equal(t, tt.alerted, result.Alerted)
			assert.Len(t, notifier.alerts, tt.alerted)
			assert.Equal(t, tt.alerted, store.alertCount())
		})
	}
}

func TestSweepNoticeContents(t *testing.T) {
	store, notifier, sweeper := newSweeperFixture()
	u := store.addUser("ana@example.com", "Ana")
	food := store.addCategory(u.ID, "Food", "200")
	store.addExpense(u.ID, food.ID, "100", core.NewDate(2024, 3, 1))
	store.addExpense(u.ID, food.ID, "70.50", core.NewDate(2024, 3, 31))
	// Outside the month.
	store.addExpense(u.ID, food.ID, "500", core.NewDate(2024, 2, 29))

	_, err := sweeper.SweepOnce(context.Background(), sweepNow)
	require.NoError(t, err)
	require.Len(t, notifier.alerts, 1)

	n := notifier.alerts[0]
	assert.Equal(t, "ana@example.com", n.To)
	assert.Equal(t, "Ana", n.RecipientName)
	assert.Equal(t, "Food", n.CategoryName)
	assert.Equal(t, "2024-03", n.Month)
	assert.Equal(t, "170.5", n.Spent.String())
	assert.Equal(t, "85.25", n.Percentage.String())
}

func TestSweepNotifiesOncePerMonth(t *testing.T) {
	store, notifier, sweeper := newSweeperFixture()
	u := store.addUser("ana@example.com", "Ana")
	food := store.addCategory(u.ID, "Food", "100")
	store.addExpense(u.ID, food.ID, "90", core.NewDate(2024, 3, 3))

	first, err := sweeper.SweepOnce(context.Background(), sweepNow)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Alerted)

	store.addExpense(u.ID, food.ID, "50", core.NewDate(2024, 3, 10))
	second, err := sweeper.SweepOnce(context.Background(), sweepNow.Add(6*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 0, second.Alerted)
	assert.Equal(t, 1, second.AlreadyNotified)
	assert.Len(t, notifier.alerts, 1)

	// A new month opens a new slot.
	store.addExpense(u.ID, food.ID, "95", core.NewDate(2024, 4, 1))
	april, err := sweeper.SweepOnce(context.Background(), time.Date(2024, 4, 2, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 1, april.Alerted)
	assert.Len(t, notifier.alerts, 2)
}

func TestSweepSendFailureReleasesSlot(t *testing.T) {
	store, notifier, sweeper := newSweeperFixture()
	u := store.addUser("ana@example.com", "Ana")
	food := store.addCategory(u.ID, "Food", "100")
	store.addExpense(u.ID, food.ID, "100", core.NewDate(2024, 3, 3))

	notifier.err = errSMTPDown
	result, err := sweeper.SweepOnce(context.Background(), sweepNow)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, 0, result.Alerted)
	assert.Equal(t, 0, store.alertCount(), "failed send must not leave a ledger row")

	notifier.err = nil
	result, err = sweeper.SweepOnce(context.Background(), sweepNow)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Alerted)
	assert.Equal(t, 1, store.alertCount())
}

func TestSweepLostInsertRaceCountsAsNotified(t *testing.T) {
	store, notifier, sweeper := newSweeperFixture()
	u := store.addUser("ana@example.com", "Ana")
	food := store.addCategory(u.ID, "Food", "100")
	store.addExpense(u.ID, food.ID, "100", core.NewDate(2024, 3, 3))
	store.insertErr = fmt.Errorf("insert budget alert: %w", core.ErrConstraintViolation)

	result, err := sweeper.SweepOnce(context.Background(), sweepNow)
	require.NoError(t, err)
	assert.Equal(t, 1, result.AlreadyNotified)
	assert.Equal(t, 0, result.Failed)
	assert.Empty(t, notifier.alerts)
}

func TestSweepIsolatesCategoryFailures(t *testing.T) {
	store, notifier, sweeper := newSweeperFixture()
	u := store.addUser("ana@example.com", "Ana")
	broken := store.addCategory(u.ID, "Broken", "100")
	food := store.addCategory(u.ID, "Food", "100")
	store.addExpense(u.ID, food.ID, "80", core.NewDate(2024, 3, 3))
	store.sumErr[broken.ID] = errors.New("database is locked")

	noMail := store.addUser("", "Ghost")
	ghost := store.addCategory(noMail.ID, "Ghost", "10")
	store.addExpense(noMail.ID, ghost.ID, "10", core.NewDate(2024, 3, 3))

	result, err := sweeper.SweepOnce(context.Background(), sweepNow)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Failed)
	assert.Equal(t, 1, result.Alerted)
	require.Len(t, notifier.alerts, 1)
	assert.Equal(t, "Food", notifier.alerts[0].CategoryName)
}

func TestSweepSkipsZeroBudget(t *testing.T) {
	store, notifier, sweeper := newSweeperFixture()
	u := store.addUser("ana@example.com", "Ana")
	free := store.addCategory(u.ID, "Free", "0")
	store.addExpense(u.ID, free.ID, "1000", core.NewDate(2024, 3, 3))

	result, err := sweeper.SweepOnce(context.Background(), sweepNow)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Checked)
	assert.Empty(t, notifier.alerts)
}

func TestSweepStopsOnCancelledContext(t *testing.T) {
	store, _, sweeper := newSweeperFixture()
	u := store.addUser("ana@example.com", "Ana")
	store.addCategory(u.ID, "Food", "100")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := sweeper.SweepOnce(ctx, sweepNow)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBudgetAlertSweeperLifecycle(t *testing.T) {
	store, notifier, sweeper := newSweeperFixture()
	sweeper.config.Interval = time.Hour
	u := store.addUser("ana@example.com", "Ana")
	food := store.addCategory(u.ID, "Food", "100")
	store.addExpense(u.ID, food.ID, "100", core.NewDate(2024, 3, 3))

	ctx := context.Background()
	assert.False(t, sweeper.IsRunning())
	require.NoError(t, sweeper.Start(ctx))
	assert.True(t, sweeper.IsRunning())
	assert.Error(t, sweeper.Start(ctx), "second start must fail")

	// The first cycle runs immediately rather than after one interval.
	require.Eventually(t, func() bool { return store.alertCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	stopCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	require.NoError(t, sweeper.Stop(stopCtx))
	assert.False(t, sweeper.IsRunning())
	assert.Len(t, notifier.alerts, 1)

	select {
	case <-sweeper.Done():
	default:
		t.Fatal("Done should be closed after Stop")
	}
	assert.NoError(t, sweeper.Stop(ctx), "stopping a stopped sweeper is a no-op")
}
