package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"spendwise/internal/core"
)

const categoryColumns = `c.id, c.user_id, c.name, c.icon, c.color_hex, c.monthly_budget, c.is_active`

func scanCategory(row rowScanner, extra ...any) (core.Category, error) {
	var (
		c      core.Category
		budget string
	)
	dest := append([]any{&c.ID, &c.UserID, &c.Name, &c.Icon, &c.ColorHex, &budget, &c.IsActive}, extra...)
	if err := row.Scan(dest...); err != nil {
		return core.Category{}, err
	}
	b, err := parseDecimal(budget)
	if err != nil {
		return core.Category{}, err
	}
	c.MonthlyBudget = b
	return c, nil
}

// CreateCategory inserts c and sets its ID. A duplicate active name for
// the same user surfaces as core.ErrConstraintViolation.
func (r *SQLiteRepository) CreateCategory(ctx context.Context, c *core.Category) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO categories (user_id, name, icon, color_hex, monthly_budget, is_active) VALUES (?, ?, ?, ?, ?, 1)`,
		c.UserID, c.Name, c.Icon, c.ColorHex, c.MonthlyBudget.String())
	if err != nil {
		return fmt.Errorf("insert category: %w", mapError(err))
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("read category id: %w", err)
	}
	c.ID = id
	c.IsActive = true

	slog.InfoContext(ctx, "Category saved to SQLite",
		"component", "storage",
		"category_id", id,
		"user_id", c.UserID,
		"name", c.Name)
	return nil
}

func (r *SQLiteRepository) GetCategory(ctx context.Context, id int64) (core.Category, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+categoryColumns+` FROM categories c WHERE c.id = ?`, id)
	c, err := scanCategory(row)
	if err != nil {
		return core.Category{}, fmt.Errorf("get category %d: %w", id, mapError(err))
	}
	return c, nil
}

// FindActiveCategoryByName looks a category up by case-insensitive name.
func (r *SQLiteRepository) FindActiveCategoryByName(ctx context.Context, userID int64, name string) (core.Category, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+categoryColumns+` FROM categories c
		 WHERE c.user_id = ? AND c.is_active = 1 AND c.name = ? COLLATE NOCASE
		 LIMIT 1`, userID, name)
	c, err := scanCategory(row)
	if err != nil {
		return core.Category{}, fmt.Errorf("find category %q: %w", name, mapError(err))
	}
	return c, nil
}

// ListCategories returns the active categories of a user ordered by name.
func (r *SQLiteRepository) ListCategories(ctx context.Context, userID int64) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+categoryColumns+` FROM categories c
		 WHERE c.user_id = ? AND c.is_active = 1
		 ORDER BY c.name COLLATE NOCASE`, userID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	categories := []core.Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// ListBudgetedCategories returns every active category with a positive
// monthly budget, joined with its owner's contact details.
func (r *SQLiteRepository) ListBudgetedCategories(ctx context.Context) ([]core.BudgetedCategory, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+categoryColumns+`, u.email, u.full_name
		 FROM categories c
		 JOIN users u ON u.id = c.user_id
		 WHERE c.is_active = 1 AND CAST(c.monthly_budget AS REAL) > 0
		 ORDER BY c.id`)
	if err != nil {
		return nil, fmt.Errorf("list budgeted categories: %w", err)
	}
	defer rows.Close()

	var out []core.BudgetedCategory
	for rows.Next() {
		var bc core.BudgetedCategory
		c, err := scanCategory(rows, &bc.OwnerEmail, &bc.OwnerName)
		if err != nil {
			return nil, fmt.Errorf("scan budgeted category: %w", err)
		}
		// Text budgets are re-checked exactly after the numeric cast.
		if !c.MonthlyBudget.IsPositive() {
			continue
		}
		bc.Category = c
		out = append(out, bc)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) UpdateCategoryBudget(ctx context.Context, id int64, budget decimal.Decimal) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE categories SET monthly_budget = ? WHERE id = ?`, budget.String(), id)
	if err != nil {
		return fmt.Errorf("update category budget %d: %w", id, mapError(err))
	}
	return requireAffected(res, "category", id)
}

func (r *SQLiteRepository) CountCategoryExpenses(ctx context.Context, id int64) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM expenses WHERE category_id = ?`, id).Scan(&n); err != nil {
		return 0, fmt.Errorf("count category expenses: %w", err)
	}
	return n, nil
}

// DeleteCategory removes a category. With cascade set its expenses are
// removed in the same transaction; the number removed is returned.
func (r *SQLiteRepository) DeleteCategory(ctx context.Context, id int64, cascade bool) (int, error) {
	var deleted int
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		if cascade {
			res, err := tx.ExecContext(ctx, `DELETE FROM expenses WHERE category_id = ?`, id)
			if err != nil {
				return fmt.Errorf("delete category expenses: %w", err)
			}
			n, _ := res.RowsAffected()
			deleted = int(n)
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("delete category %d: %w", id, mapError(err))
		}
		return requireAffected(res, "category", id)
	})
	if err != nil {
		return 0, err
	}

	slog.InfoContext(ctx, "Category deleted from SQLite",
		"component", "storage",
		"category_id", id,
		"deleted_expenses", deleted)
	return deleted, nil
}
