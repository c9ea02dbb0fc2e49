package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/jaysurani18/smart-society/internal/auth"
	"github.com/jaysurani18/smart-society/internal/domain"
	"github.com/jaysurani18/smart-society/internal/repository"

	"go.uber.org/zap"
)

// SeedAdmin makes sure an active administrator with the given email exists.
// An existing account with that email is left untouched.
func SeedAdmin(ctx context.Context, accounts repository.AccountsRepository, hasher *auth.PasswordHasher, email, password string, logger *zap.Logger) error {
	email = normalizeEmail(email)
	if email == "" {
		return nil
	}
	if err := validatePassword(password); err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}

	_, err := accounts.GetAccountByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("seed admin lookup: %w", err)
	}

	hash, err := hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	account, err := accounts.CreateAccount(ctx, &domain.Account{
		Name:         "Administrator",
		Email:        email,
		Role:         domain.RoleAdmin,
		PasswordHash: hash,
		IsSetup:      true,
	})
	if errors.Is(err, repository.ErrDuplicate) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	logger.Info("Seeded administrator account",
		zap.String("user_id", account.ID),
		zap.String("email", account.Email),
	)
	return nil
}
