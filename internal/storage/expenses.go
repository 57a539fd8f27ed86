package storage

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"spendwise/internal/core"
)

const expenseSelect = `SELECT e.id, e.user_id, e.category_id, c.name, c.color_hex,
	e.amount, e.description, e.expense_date, e.created_at, e.updated_at
	FROM expenses e
	JOIN categories c ON c.id = e.category_id`

func scanExpense(row rowScanner) (core.Expense, error) {
	var (
		e                              core.Expense
		amount, date, created, updated string
	)
	if err := row.Scan(&e.ID, &e.UserID, &e.CategoryID, &e.Category.Name, &e.Category.ColorHex,
		&amount, &e.Description, &date, &created, &updated); err != nil {
		return core.Expense{}, err
	}
	e.Category.ID = e.CategoryID

	var err error
	if e.Amount, err = parseDecimal(amount); err != nil {
		return core.Expense{}, err
	}
	if e.Date, err = parseDate(date); err != nil {
		return core.Expense{}, err
	}
	if e.CreatedAt, err = parseTime(created); err != nil {
		return core.Expense{}, err
	}
	if e.UpdatedAt, err = parseTime(updated); err != nil {
		return core.Expense{}, err
	}
	return e, nil
}

// CreateExpense inserts e and sets its ID and timestamps.
func (r *SQLiteRepository) CreateExpense(ctx context.Context, e *core.Expense) error {
	now := time.Now().UTC()
	e.CreatedAt, e.UpdatedAt = now, now

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO expenses (user_id, category_id, amount, description, expense_date, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.UserID, e.CategoryID, e.Amount.String(), e.Description, e.Date.String(),
		formatTime(now), formatTime(now))
	if err != nil {
		return fmt.Errorf("insert expense: %w", mapError(err))
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("read expense id: %w", err)
	}
	e.ID = id

	slog.DebugContext(ctx, "Expense saved to SQLite",
		"component", "storage",
		"expense_id", id,
		"user_id", e.UserID,
		"category_id", e.CategoryID,
		"amount", e.Amount.String())
	return nil
}

func (r *SQLiteRepository) GetExpense(ctx context.Context, id int64) (core.Expense, error) {
	row := r.db.QueryRowContext(ctx, expenseSelect+` WHERE e.id = ?`, id)
	e, err := scanExpense(row)
	if err != nil {
		return core.Expense{}, fmt.Errorf("get expense %d: %w", id, mapError(err))
	}
	return e, nil
}

// UpdateExpense rewrites the mutable fields of e and bumps updated_at.
func (r *SQLiteRepository) UpdateExpense(ctx context.Context, e *core.Expense) error {
	e.UpdatedAt = time.Now().UTC()
	res, err := r.db.ExecContext(ctx,
		`UPDATE expenses SET category_id = ?, amount = ?, description = ?, expense_date = ?, updated_at = ?
		 WHERE id = ?`,
		e.CategoryID, e.Amount.String(), e.Description, e.Date.String(), formatTime(e.UpdatedAt), e.ID)
	if err != nil {
		return fmt.Errorf("update expense %d: %w", e.ID, mapError(err))
	}
	return requireAffected(res, "expense", e.ID)
}

func (r *SQLiteRepository) DeleteExpense(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete expense %d: %w", id, mapError(err))
	}
	return requireAffected(res, "expense", id)
}

func expenseFilter(q core.ExpenseQuery) (string, []any) {
	clauses := []string{"e.user_id = ?"}
	args := []any{q.UserID}
	if q.From != nil {
		clauses = append(clauses, "e.expense_date >= ?")
		args = append(args, q.From.String())
	}
	if q.To != nil {
		clauses = append(clauses, "e.expense_date <= ?")
		args = append(args, q.To.String())
	}
	if q.CategoryID != nil {
		clauses = append(clauses, "e.category_id = ?")
		args = append(args, *q.CategoryID)
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

// QueryExpenses returns the expenses matching q, newest first. A zero
// Limit returns every match.
func (r *SQLiteRepository) QueryExpenses(ctx context.Context, q core.ExpenseQuery) ([]core.Expense, error) {
	where, args := expenseFilter(q)
	query := expenseSelect + where + ` ORDER BY e.expense_date DESC, e.id DESC`
	if q.Limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, q.Limit, q.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query expenses: %w", err)
	}
	defer rows.Close()

	expenses := []core.Expense{}
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}

func (r *SQLiteRepository) CountExpenses(ctx context.Context, q core.ExpenseQuery) (int, error) {
	where, args := expenseFilter(q)
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM expenses e`+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count expenses: %w", err)
	}
	return n, nil
}

// SumCategorySpend totals the expenses of a category within p. Amounts are
// summed as decimals so no precision is lost to floating point.
func (r *SQLiteRepository) SumCategorySpend(ctx context.Context, categoryID int64, p core.Period) (decimal.Decimal, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT amount FROM expenses
		 WHERE category_id = ? AND expense_date >= ? AND expense_date <= ?`,
		categoryID, p.Start.String(), p.End.String())
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum category spend: %w", err)
	}
	defer rows.Close()

	total := decimal.Zero
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return decimal.Zero, fmt.Errorf("scan amount: %w", err)
		}
		amount, err := parseDecimal(s)
		if err != nil {
			return decimal.Zero, err
		}
		total = total.Add(amount)
	}
	return total, rows.Err()
}

// HasExpenses reports whether the user recorded anything within p.
func (r *SQLiteRepository) HasExpenses(ctx context.Context, userID int64, p core.Period) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM expenses WHERE user_id = ? AND expense_date >= ? AND expense_date <= ?)`,
		userID, p.Start.String(), p.End.String()).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check expenses: %w", err)
	}
	return exists, nil
}
