package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"spendwise/internal/core"
)

const userColumns = `id, email, full_name, currency_code, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (core.User, error) {
	var (
		u       core.User
		created string
	)
	if err := row.Scan(&u.ID, &u.Email, &u.FullName, &u.CurrencyCode, &created); err != nil {
		return core.User{}, err
	}
	t, err := parseTime(created)
	if err != nil {
		return core.User{}, err
	}
	u.CreatedAt = t
	return u, nil
}

// CreateUser inserts u and sets its ID. A duplicate email surfaces as
// core.ErrConstraintViolation.
func (r *SQLiteRepository) CreateUser(ctx context.Context, u *core.User) error {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO users (email, full_name, currency_code, created_at) VALUES (?, ?, ?, ?)`,
		u.Email, u.FullName, u.CurrencyCode, formatTime(u.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert user: %w", mapError(err))
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("read user id: %w", err)
	}
	u.ID = id

	slog.InfoContext(ctx, "User saved to SQLite", "component", "storage", "user_id", id)
	return nil
}

func (r *SQLiteRepository) GetUser(ctx context.Context, id int64) (core.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	u, err := scanUser(row)
	if err != nil {
		return core.User{}, fmt.Errorf("get user %d: %w", id, mapError(err))
	}
	return u, nil
}

func (r *SQLiteRepository) GetUserByEmail(ctx context.Context, email string) (core.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	u, err := scanUser(row)
	if err != nil {
		return core.User{}, fmt.Errorf("get user by email: %w", mapError(err))
	}
	return u, nil
}

// UpdateUser writes the mutable profile fields.
func (r *SQLiteRepository) UpdateUser(ctx context.Context, u core.User) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET full_name = ?, currency_code = ? WHERE id = ?`,
		u.FullName, u.CurrencyCode, u.ID)
	if err != nil {
		return fmt.Errorf("update user %d: %w", u.ID, mapError(err))
	}
	return requireAffected(res, "user", u.ID)
}

// ListUsersWithEmail returns every user that can receive mail.
func (r *SQLiteRepository) ListUsersWithEmail(ctx context.Context) ([]core.User, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email <> '' ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []core.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
