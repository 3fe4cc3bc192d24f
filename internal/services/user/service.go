// Package user manages accounts: sign-up, sign-in and self-service profile
// changes.
package user

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/taskflow-dev/taskflow/internal/auth"
	"github.com/taskflow-dev/taskflow/internal/models"
	"github.com/taskflow-dev/taskflow/internal/perrors"
	"github.com/taskflow-dev/taskflow/internal/repository"
)

type TokenIssuer interface {
	GenerateToken(userID string) (string, error)
}

type SignUpInput struct {
	Name     string
	Email    string
	Password string
}

type UpdateInput struct {
	Name            string
	Email           string
	CurrentPassword string
	NewPassword     string
}

type Service struct {
	store  *repository.Store
	tokens TokenIssuer
}

func NewService(store *repository.Store, tokens TokenIssuer) *Service {
	return &Service{store: store, tokens: tokens}
}

// SignUp creates the account and returns it with a fresh token.
func (s *Service) SignUp(ctx context.Context, input SignUpInput) (*models.User, string, error) {
	email := normalizeEmail(input.Email)

	if _, err := s.store.Users.GetByEmail(ctx, email); err == nil {
		return nil, "", perrors.NewErrEmailTaken("Email already exists")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, "", perrors.NewErrUnexpected("Failed to check existing user", err)
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, "", perrors.NewErrUnexpected("Failed to hash password", err)
	}

	user := &models.User{
		Name:         strings.TrimSpace(input.Name),
		Email:        email,
		PasswordHash: hash,
	}

	if err := s.store.Users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, "", perrors.NewErrEmailTaken("Email already exists")
		}
		return nil, "", perrors.NewErrUnexpected("Failed to create user", err)
	}

	token, err := s.tokens.GenerateToken(user.ID)
	if err != nil {
		return nil, "", perrors.NewErrUnexpected("Failed to generate token", err)
	}

	slog.InfoContext(ctx, "User signed up", slog.String("user_id", user.ID))

	return user, token, nil
}

func (s *Service) SignIn(ctx context.Context, email, password string) (*models.User, string, error) {
	user, err := s.store.Users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, "", perrors.NewErrUnauthorized("Invalid email or password")
		}
		return nil, "", perrors.NewErrUnexpected("Failed to retrieve user", err)
	}

	if !auth.CheckPassword(user.PasswordHash, password) {
		return nil, "", perrors.NewErrUnauthorized("Invalid email or password")
	}

	token, err := s.tokens.GenerateToken(user.ID)
	if err != nil {
		return nil, "", perrors.NewErrUnexpected("Failed to generate token", err)
	}

	return user, token, nil
}

func (s *Service) Get(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.store.Users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, perrors.NewErrNotFound("User not found")
		}
		return nil, perrors.NewErrUnexpected("Failed to retrieve user", err)
	}
	return user, nil
}

func (s *Service) List(ctx context.Context) ([]models.User, error) {
	users, err := s.store.Users.List(ctx)
	if err != nil {
		return nil, perrors.NewErrUnexpected("Failed to retrieve users", err)
	}
	return users, nil
}

// Update changes the caller's own profile. A new password requires the
// current one.
func (s *Service) Update(ctx context.Context, userID string, input UpdateInput) (*models.User, error) {
	user, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})

	if name := strings.TrimSpace(input.Name); name != "" {
		updates["name"] = name
	}

	if input.Email != "" {
		email := normalizeEmail(input.Email)
		if email != user.Email {
			if _, err := s.store.Users.GetByEmail(ctx, email); err == nil {
				return nil, perrors.NewErrEmailTaken("Email already exists")
			} else if !errors.Is(err, repository.ErrNotFound) {
				return nil, perrors.NewErrUnexpected("Failed to check existing email", err)
			}
		}
		updates["email"] = email
	}

	if input.NewPassword != "" {
		if input.CurrentPassword == "" {
			return nil, perrors.NewErrInvalidInput("Current password is required to change password",
				perrors.FieldError{Field: "current_password", Message: "current_password is required"})
		}
		if !auth.CheckPassword(user.PasswordHash, input.CurrentPassword) {
			return nil, perrors.NewErrInvalidInput("Current password is incorrect",
				perrors.FieldError{Field: "current_password", Message: "current_password is incorrect"})
		}

		hash, err := auth.HashPassword(input.NewPassword)
		if err != nil {
			return nil, perrors.NewErrUnexpected("Failed to hash password", err)
		}
		updates["password_hash"] = hash
	}

	if len(updates) == 0 {
		return nil, perrors.NewErrInvalidInput("No valid fields to update")
	}

	if err := s.store.Users.Update(ctx, userID, updates); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			return nil, perrors.NewErrEmailTaken("Email already exists")
		case errors.Is(err, repository.ErrNotFound):
			return nil, perrors.NewErrNotFound("User not found")
		}
		return nil, perrors.NewErrUnexpected("Failed to update user", err)
	}

	slog.InfoContext(ctx, "User updated", slog.String("user_id", userID))

	return s.Get(ctx, userID)
}

// Delete removes the caller's account after checking the password. Their
// memberships go with it and tasks assigned to them become unassigned.
func (s *Service) Delete(ctx context.Context, userID, password string) error {
	user, err := s.Get(ctx, userID)
	if err != nil {
		return err
	}

	if !auth.CheckPassword(user.PasswordHash, password) {
		return perrors.NewErrInvalidInput("Incorrect password",
			perrors.FieldError{Field: "password", Message: "password is incorrect"})
	}

	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		if err := tx.Tasks.Unassign(ctx, userID); err != nil {
			return err
		}
		if err := tx.Memberships.DeleteByUser(ctx, userID); err != nil {
			return err
		}
		return tx.Users.Delete(ctx, userID)
	})
	if err != nil {
		return perrors.NewErrUnexpected("Failed to delete user", err)
	}

	slog.InfoContext(ctx, "User deleted", slog.String("user_id", userID))

	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
