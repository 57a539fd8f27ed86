package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"spendwise/internal/core"
)

type UserService struct {
	store UserStore
}

func NewUserService(store UserStore) *UserService {
	return &UserService{store: store}
}

func (s *UserService) Create(ctx context.Context, u core.User) (core.User, error) {
	if err := u.Validate(); err != nil {
		return core.User{}, err
	}
	if err := s.store.CreateUser(ctx, &u); err != nil {
		if errors.Is(err, core.ErrConstraintViolation) {
			return core.User{}, fmt.Errorf("user with email %s already exists: %w", u.Email, core.ErrConflict)
		}
		return core.User{}, err
	}
	slog.InfoContext(ctx, "Created user", "component", "user", "user_id", u.ID)
	return u, nil
}

func (s *UserService) Get(ctx context.Context, id int64) (core.User, error) {
	if id <= 0 {
		return core.User{}, core.NewValidationError("id", "Invalid user ID")
	}
	return s.store.GetUser(ctx, id)
}

// UpdateProfile changes a user's name and currency. Only the user may
// update their own profile; anyone else sees NotFound.
func (s *UserService) UpdateProfile(ctx context.Context, id, requestingUserID int64, fullName, currency string) (core.User, error) {
	if id != requestingUserID {
		return core.User{}, fmt.Errorf("user %d: %w", id, core.ErrNotFound)
	}
	u, err := s.store.GetUser(ctx, id)
	if err != nil {
		return core.User{}, err
	}
	u.FullName = fullName
	u.CurrencyCode = currency
	if err := u.ValidateProfile(); err != nil {
		return core.User{}, err
	}
	if err := s.store.UpdateUser(ctx, u); err != nil {
		return core.User{}, err
	}
	slog.InfoContext(ctx, "Updated user profile", "component", "user", "user_id", id)
	return u, nil
}
