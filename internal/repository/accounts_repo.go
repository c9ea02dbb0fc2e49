package repository

import (
	"context"
	"time"

	"github.com/jaysurani18/smart-society/internal/domain"
)

// AccountsRepository credential store (users table)
type AccountsRepository interface {
	GetAccount(ctx context.Context, id string) (*domain.Account, error)
	GetAccountByEmail(ctx context.Context, email string) (*domain.Account, error)
	ListAccounts(ctx context.Context, filters AccountFilters) ([]*domain.Account, error)
	CountAccounts(ctx context.Context, filters AccountFilters) (int, error)
	CreateAccount(ctx context.Context, account *domain.Account) (*domain.Account, error)

	// CreateFirstAdmin inserts account as admin only while no admin exists.
	// Concurrent callers are serialized; all but the first get ErrAdminExists.
	CreateFirstAdmin(ctx context.Context, account *domain.Account) (*domain.Account, error)

	UpdateProfile(ctx context.Context, id string, update ProfileUpdate) (*domain.Account, error)
	UpdateRole(ctx context.Context, id string, role domain.Role) (*domain.Account, error)

	// ActivateAccount consumes a pending invitation in one conditional write:
	// it matches only a not-yet-setup account whose token hash equals tokenHash
	// and whose invitation has not expired at now. ErrNotFound otherwise.
	ActivateAccount(ctx context.Context, tokenHash, passwordHash string, now time.Time) (*domain.Account, error)

	DeleteAccount(ctx context.Context, id string) error
}

// AccountFilters listing filters; zero value lists everyone.
type AccountFilters struct {
	Role domain.Role
}

// ProfileUpdate nil fields are left unchanged. Email and role are not editable here.
type ProfileUpdate struct {
	Name       *string
	Wing       *string
	FlatNumber *string
}
