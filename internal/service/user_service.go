package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mmynk/billmap/internal/auth"
	"github.com/mmynk/billmap/internal/models"
	"github.com/mmynk/billmap/internal/storage"
)

// UserService implements registration, authentication, and profile
// lifecycle over user records.
type UserService struct {
	store  storage.Store
	hasher auth.Hasher
}

// NewUserService creates a new UserService with the given storage backend
// and credential verifier.
func NewUserService(store storage.Store, hasher auth.Hasher) *UserService {
	return &UserService{store: store, hasher: hasher}
}

// NormalizeEmail lowercases and trims an email address. Uniqueness is
// checked against the normalized form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a new user account with a hashed password. Fails with
// storage.ErrDuplicateEmail if an active user already holds the email.
func (s *UserService) Register(ctx context.Context, firstName, lastName, email, password string) (*models.User, error) {
	if err := s.hasher.ValidatePassword(password); err != nil {
		return nil, err
	}

	email = NormalizeEmail(email)

	// Pre-check for a friendlier failure; the partial unique index in the
	// store is the actual source of truth under concurrency.
	if _, err := s.store.GetUserByEmail(ctx, email); err == nil {
		return nil, storage.ErrDuplicateEmail
	} else if err != storage.ErrNotFound {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		FirstName:    firstName,
		LastName:     lastName,
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	slog.Info("user registered", "user_id", user.ID, "email", user.Email)
	return user, nil
}

// Authenticate verifies the email and password, returning the user if
// valid. An unknown email and a wrong password produce the same error.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.store.GetUserByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		return nil, auth.ErrInvalidCredentials
	}

	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		return nil, auth.ErrInvalidCredentials
	}

	return user, nil
}

// GetByID retrieves an active user by ID.
func (s *UserService) GetByID(ctx context.Context, id string) (*models.User, error) {
	return s.store.GetUserByID(ctx, id)
}

// GetByEmail retrieves an active user by email.
func (s *UserService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.store.GetUserByEmail(ctx, NormalizeEmail(email))
}

// UserPatch enumerates the updatable profile fields. Nil fields are left
// unchanged.
type UserPatch struct {
	FirstName *string
	LastName  *string
	Email     *string
}

// Update applies the supplied fields to an active user. A changed email
// is re-checked for uniqueness against active users, excluding the user
// itself.
func (s *UserService) Update(ctx context.Context, id string, patch UserPatch) (*models.User, error) {
	user, err := s.store.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.FirstName != nil {
		user.FirstName = *patch.FirstName
	}
	if patch.LastName != nil {
		user.LastName = *patch.LastName
	}
	if patch.Email != nil {
		email := NormalizeEmail(*patch.Email)
		if email != user.Email {
			if existing, err := s.store.GetUserByEmail(ctx, email); err == nil && existing.ID != user.ID {
				return nil, storage.ErrDuplicateEmail
			} else if err != nil && err != storage.ErrNotFound {
				return nil, fmt.Errorf("failed to check email: %w", err)
			}
			user.Email = email
		}
	}

	if err := s.store.UpdateUser(ctx, user); err != nil {
		return nil, err
	}

	slog.Info("user updated", "user_id", user.ID)
	return user, nil
}

// SoftDelete marks a user deleted and returns the final record. Owned
// bills and reminders are not cascaded.
func (s *UserService) SoftDelete(ctx context.Context, id string) (*models.User, error) {
	user, err := s.store.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.store.SoftDeleteUser(ctx, id); err != nil {
		return nil, err
	}

	slog.Info("user soft-deleted", "user_id", id)
	return user, nil
}

// ListActive returns all active users.
func (s *UserService) ListActive(ctx context.Context) ([]*models.User, error) {
	return s.store.ListUsers(ctx)
}
