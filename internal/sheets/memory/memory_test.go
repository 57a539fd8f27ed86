package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spendwise/internal/core"
)

func TestPublishReplacesTab(t *testing.T) {
	p := New()
	r := core.ExpenseReport{
		Title:  "Monthly Expense Report",
		UserID: 3,
		Period: core.MonthBounds(2024, 3),
	}

	url, err := p.PublishReport(context.Background(), r)
	require.NoError(t, err)
	assert.Equal(t, "mem:2024 Report 3 2024-03-01_2024-03-31", url)

	rows, ok := p.Tab("2024 Report 3 2024-03-01_2024-03-31")
	require.True(t, ok)
	assert.Equal(t, "Monthly Expense Report", rows[0][0])

	r.Title = "Again"
	_, err = p.PublishReport(context.Background(), r)
	require.NoError(t, err)
	rows, _ = p.Tab("2024 Report 3 2024-03-01_2024-03-31")
	assert.Equal(t, "Again", rows[0][0])
}

func TestPublishCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New().PublishReport(ctx, core.ExpenseReport{})
	assert.ErrorIs(t, err, context.Canceled)
}
