package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"spendwise/internal/core"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// ExpenseService validates and persists expenses on behalf of a user.
type ExpenseService struct {
	store      ExpenseStore
	categories CategoryStore
	now        func() time.Time
}

func NewExpenseService(store ExpenseStore, categories CategoryStore) *ExpenseService {
	return &ExpenseService{
		store:      store,
		categories: categories,
		now:        time.Now,
	}
}

// Page is one page of a listing.
type Page[T any] struct {
	Data            []T  `json:"data"`
	Page            int  `json:"page"`
	PageSize        int  `json:"pageSize"`
	Total           int  `json:"total"`
	TotalPages      int  `json:"totalPages"`
	HasNextPage     bool `json:"hasNextPage"`
	HasPreviousPage bool `json:"hasPreviousPage"`
}

// NormalizePaging clamps page and pageSize to their accepted ranges.
func NormalizePaging(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > maxPageSize {
		pageSize = defaultPageSize
	}
	return page, pageSize
}

func (s *ExpenseService) Create(ctx context.Context, e core.Expense) (core.Expense, error) {
	if err := e.Validate(s.now()); err != nil {
		return core.Expense{}, err
	}
	cat, err := s.ownedCategory(ctx, e.CategoryID, e.UserID)
	if err != nil {
		return core.Expense{}, err
	}

	if err := s.store.CreateExpense(ctx, &e); err != nil {
		return core.Expense{}, fmt.Errorf("save expense: %w", err)
	}
	e.Category = core.CategoryRef{ID: cat.ID, Name: cat.Name, ColorHex: cat.ColorHex}

	slog.InfoContext(ctx, "Created expense",
		"component", "expense",
		"expense_id", e.ID,
		"user_id", e.UserID,
		"amount", e.Amount.String())
	return e, nil
}

// Get returns an expense owned by userID.
func (s *ExpenseService) Get(ctx context.Context, id, userID int64) (core.Expense, error) {
	e, err := s.store.GetExpense(ctx, id)
	if err != nil {
		return core.Expense{}, err
	}
	if e.UserID != userID {
		return core.Expense{}, fmt.Errorf("expense %d: %w", id, core.ErrNotFound)
	}
	return e, nil
}

// Update replaces the mutable fields of an expense the user owns.
func (s *ExpenseService) Update(ctx context.Context, id int64, in core.Expense) (core.Expense, error) {
	if err := in.Validate(s.now()); err != nil {
		return core.Expense{}, err
	}
	existing, err := s.Get(ctx, id, in.UserID)
	if err != nil {
		return core.Expense{}, err
	}
	cat, err := s.ownedCategory(ctx, in.CategoryID, in.UserID)
	if err != nil {
		return core.Expense{}, err
	}

	existing.CategoryID = in.CategoryID
	existing.Amount = in.Amount
	existing.Description = in.Description
	existing.Date = in.Date
	if err := s.store.UpdateExpense(ctx, &existing); err != nil {
		return core.Expense{}, fmt.Errorf("update expense: %w", err)
	}
	existing.Category = core.CategoryRef{ID: cat.ID, Name: cat.Name, ColorHex: cat.ColorHex}

	slog.InfoContext(ctx, "Updated expense", "component", "expense", "expense_id", id, "user_id", in.UserID)
	return existing, nil
}

func (s *ExpenseService) Delete(ctx context.Context, id, userID int64) error {
	if userID <= 0 {
		return core.NewValidationError("userId", "Invalid user ID")
	}
	if _, err := s.Get(ctx, id, userID); err != nil {
		return err
	}
	if err := s.store.DeleteExpense(ctx, id); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Deleted expense", "component", "expense", "expense_id", id, "user_id", userID)
	return nil
}

// List pages through a user's expenses, newest first.
func (s *ExpenseService) List(ctx context.Context, q core.ExpenseQuery, page, pageSize int) (Page[core.Expense], error) {
	if q.UserID <= 0 {
		return Page[core.Expense]{}, core.NewValidationError("userId", "Invalid user ID")
	}
	page, pageSize = NormalizePaging(page, pageSize)

	total, err := s.store.CountExpenses(ctx, q)
	if err != nil {
		return Page[core.Expense]{}, err
	}
	q.Limit = pageSize
	q.Offset = (page - 1) * pageSize
	items, err := s.store.QueryExpenses(ctx, q)
	if err != nil {
		return Page[core.Expense]{}, err
	}

	totalPages := (total + pageSize - 1) / pageSize
	return Page[core.Expense]{
		Data:            items,
		Page:            page,
		PageSize:        pageSize,
		Total:           total,
		TotalPages:      totalPages,
		HasNextPage:     page < totalPages,
		HasPreviousPage: page > 1,
	}, nil
}

func (s *ExpenseService) ownedCategory(ctx context.Context, categoryID, userID int64) (core.Category, error) {
	cat, err := s.categories.GetCategory(ctx, categoryID)
	if err != nil {
		return core.Category{}, err
	}
	if cat.UserID != userID {
		return core.Category{}, fmt.Errorf("category %d: %w", categoryID, core.ErrNotFound)
	}
	return cat, nil
}
