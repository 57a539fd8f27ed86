package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"spendwise/internal/cache"
	"spendwise/internal/core"
)

// CategoryService owns category writes and keeps the per-user category
// list cache coherent with them.
type CategoryService struct {
	store CategoryStore
	users UserStore
	cache *cache.Store
}

func NewCategoryService(store CategoryStore, users UserStore, c *cache.Store) *CategoryService {
	return &CategoryService{store: store, users: users, cache: c}
}

// DeleteResult describes what a category deletion removed.
type DeleteResult struct {
	Message         string `json:"message"`
	CategoryID      int64  `json:"categoryId"`
	DeletedExpenses int    `json:"deletedExpenses"`
	Action          string `json:"action"`
}

// List returns the user's active categories through the read-through cache.
func (s *CategoryService) List(ctx context.Context, userID int64) ([]core.Category, error) {
	if userID <= 0 {
		return nil, core.NewValidationError("userId", "Invalid user ID")
	}
	return cache.GetOrCompute(ctx, s.cache, categoriesKey(userID), CategoriesTTL,
		func(ctx context.Context) ([]core.Category, error) {
			return s.store.ListCategories(ctx, userID)
		})
}

func (s *CategoryService) Create(ctx context.Context, c core.Category) (core.Category, error) {
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}
	if _, err := s.users.GetUser(ctx, c.UserID); err != nil {
		return core.Category{}, err
	}

	if err := s.store.CreateCategory(ctx, &c); err != nil {
		if errors.Is(err, core.ErrConstraintViolation) {
			return core.Category{}, fmt.Errorf("category '%s' already exists for this user: %w", c.Name, core.ErrConflict)
		}
		return core.Category{}, err
	}
	s.invalidate(c.UserID)

	slog.InfoContext(ctx, "Created category",
		"component", "category",
		"category_id", c.ID,
		"user_id", c.UserID,
		"name", c.Name)
	return c, nil
}

// UpdateBudget sets a new monthly budget on a category the user owns.
func (s *CategoryService) UpdateBudget(ctx context.Context, id, userID int64, budget decimal.Decimal) (core.Category, error) {
	if userID <= 0 {
		return core.Category{}, core.NewValidationError("userId", "Invalid user ID")
	}
	if budget.IsNegative() {
		return core.Category{}, core.NewValidationError("monthlyBudget", "Monthly budget cannot be negative")
	}
	c, err := s.owned(ctx, id, userID)
	if err != nil {
		return core.Category{}, err
	}

	if err := s.store.UpdateCategoryBudget(ctx, id, budget); err != nil {
		return core.Category{}, err
	}
	c.MonthlyBudget = budget
	s.invalidate(userID)

	slog.InfoContext(ctx, "Updated category budget",
		"component", "category",
		"category_id", id,
		"user_id", userID,
		"budget", budget.String())
	return c, nil
}

// Delete removes a category. A category that still has expenses is only
// removed when force is set, and its expenses go with it.
func (s *CategoryService) Delete(ctx context.Context, id, userID int64, force bool) (DeleteResult, error) {
	c, err := s.owned(ctx, id, userID)
	if err != nil {
		return DeleteResult{}, err
	}

	count, err := s.store.CountCategoryExpenses(ctx, id)
	if err != nil {
		return DeleteResult{}, err
	}
	if count > 0 && !force {
		return DeleteResult{}, core.NewValidationError("force",
			fmt.Sprintf("Category '%s' has %d associated expenses. Set 'force' to true to delete category and all its expenses.", c.Name, count))
	}
	if count > 0 {
		slog.WarnContext(ctx, "Force deleting category with expenses",
			"component", "category",
			"category_id", id,
			"user_id", userID,
			"expense_count", count)
	}

	deleted, err := s.store.DeleteCategory(ctx, id, force)
	if err != nil {
		return DeleteResult{}, err
	}
	s.invalidate(userID)

	res := DeleteResult{
		Message:         fmt.Sprintf("Category '%s' has been deleted", c.Name),
		CategoryID:      id,
		DeletedExpenses: deleted,
		Action:          "delete",
	}
	if force {
		res.Action = "force_delete"
		if deleted > 0 {
			res.Message = fmt.Sprintf("Category '%s' and %d associated expenses have been deleted", c.Name, deleted)
		}
	}
	return res, nil
}

// owned loads a category and hides it from anyone but its owner.
func (s *CategoryService) owned(ctx context.Context, id, userID int64) (core.Category, error) {
	c, err := s.store.GetCategory(ctx, id)
	if err != nil {
		return core.Category{}, err
	}
	if c.UserID != userID {
		return core.Category{}, fmt.Errorf("category %d: %w", id, core.ErrNotFound)
	}
	return c, nil
}

func (s *CategoryService) invalidate(userID int64) {
	s.cache.Invalidate(categoriesKey(userID))
}
