package services

import (
	"context"

	"spendwise/internal/core"
)

const defaultAlertListLimit = 100

// AlertLister reads the alert ledger.
type AlertLister interface {
	ListAlerts(ctx context.Context, userID int64, limit int) ([]core.BudgetAlert, error)
}

// AlertService exposes the alerts already sent to a user.
type AlertService struct {
	store AlertLister
}

func NewAlertService(store AlertLister) *AlertService {
	return &AlertService{store: store}
}

// List returns the user's alerts, newest first.
func (s *AlertService) List(ctx context.Context, userID int64) ([]core.BudgetAlert, error) {
	if userID <= 0 {
		return nil, core.NewValidationError("userId", "Invalid user ID")
	}
	return s.store.ListAlerts(ctx, userID, defaultAlertListLimit)
}
