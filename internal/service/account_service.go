package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jaysurani18/smart-society/internal/domain"
	"github.com/jaysurani18/smart-society/internal/repository"

	"go.uber.org/zap"
)

// AccountService profile and administrator account management
type AccountService interface {
	GetProfile(ctx context.Context, caller Caller) (*AccountDTO, error)
	UpdateProfile(ctx context.Context, caller Caller, req UpdateProfileRequest) (*AccountDTO, error)
	ListAccounts(ctx context.Context, caller Caller) ([]*AccountDTO, error)
	ListResidents(ctx context.Context, caller Caller) ([]*ResidentOption, error)
	DeleteAccount(ctx context.Context, caller Caller, id string) error
	ChangeRole(ctx context.Context, caller Caller, id string, role string) (*AccountDTO, error)
}

type accountService struct {
	accounts repository.AccountsRepository
	revoker  SessionRevoker
	policy   *Policy
	logger   *zap.Logger
	now      func() time.Time
}

// NewAccountService revoker may be nil.
func NewAccountService(accounts repository.AccountsRepository, revoker SessionRevoker, policy *Policy, logger *zap.Logger) AccountService {
	return &accountService{
		accounts: accounts,
		revoker:  revoker,
		policy:   policy,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *accountService) GetProfile(ctx context.Context, caller Caller) (*AccountDTO, error) {
	if err := s.policy.Authorize(caller, OpViewProfile); err != nil {
		return nil, err
	}
	a, err := s.accounts.GetAccount(ctx, caller.ID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return toAccountDTO(a), nil
}

// UpdateProfileRequest nil fields stay unchanged.
type UpdateProfileRequest struct {
	Name       *string
	Wing       *string
	FlatNumber *string
}

// UpdateProfile edits the caller's own name and address. Email and role are not editable here.
func (s *accountService) UpdateProfile(ctx context.Context, caller Caller, req UpdateProfileRequest) (*AccountDTO, error) {
	if err := s.policy.Authorize(caller, OpUpdateProfile); err != nil {
		return nil, err
	}
	update := repository.ProfileUpdate{Wing: req.Wing, FlatNumber: req.FlatNumber}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, validationError("Name cannot be empty")
		}
		if err := checkLength("Name", name, maxNameLength); err != nil {
			return nil, err
		}
		update.Name = &name
	}
	if req.Wing != nil {
		if err := checkLength("Wing", strings.TrimSpace(*req.Wing), maxAddressLength); err != nil {
			return nil, err
		}
	}
	if req.FlatNumber != nil {
		if err := checkLength("Flat number", strings.TrimSpace(*req.FlatNumber), maxAddressLength); err != nil {
			return nil, err
		}
	}

	a, err := s.accounts.UpdateProfile(ctx, caller.ID, update)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, wrapStoreError("update profile", err)
	}
	return toAccountDTO(a), nil
}

// ListAccounts every account ordered by wing, then flat number.
func (s *accountService) ListAccounts(ctx context.Context, caller Caller) ([]*AccountDTO, error) {
	if err := s.policy.Authorize(caller, OpListAccounts); err != nil {
		return nil, err
	}
	list, err := s.accounts.ListAccounts(ctx, repository.AccountFilters{})
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	out := make([]*AccountDTO, 0, len(list))
	for _, a := range list {
		out = append(out, toAccountDTO(a))
	}
	return out, nil
}

func (s *accountService) ListResidents(ctx context.Context, caller Caller) ([]*ResidentOption, error) {
	if err := s.policy.Authorize(caller, OpListResidents); err != nil {
		return nil, err
	}
	list, err := s.accounts.ListAccounts(ctx, repository.AccountFilters{Role: domain.RoleResident})
	if err != nil {
		return nil, fmt.Errorf("list residents: %w", err)
	}
	out := make([]*ResidentOption, 0, len(list))
	for _, a := range list {
		out = append(out, &ResidentOption{ID: a.ID, Name: a.Name, Email: a.Email})
	}
	return out, nil
}

// DeleteAccount hard-deletes the account with its bills and complaints.
func (s *accountService) DeleteAccount(ctx context.Context, caller Caller, id string) error {
	if err := s.policy.Authorize(caller, OpDeleteAccount); err != nil {
		return err
	}
	if id == caller.ID {
		return validationError("You cannot remove your own account")
	}
	err := s.accounts.DeleteAccount(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrAccountNotFound
	}
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	s.revokeAll(ctx, id)
	s.logger.Info("Account deleted",
		zap.String("account_id", id),
		zap.String("deleted_by", caller.ID),
	)
	return nil
}

// ChangeRole switches between admin and resident. Outstanding sessions of
// the account are revoked so the new role takes effect at next login.
func (s *accountService) ChangeRole(ctx context.Context, caller Caller, id string, role string) (*AccountDTO, error) {
	if err := s.policy.Authorize(caller, OpChangeRole); err != nil {
		return nil, err
	}
	parsed, ok := domain.ParseRole(strings.ToLower(strings.TrimSpace(role)))
	if !ok {
		return nil, validationError("Invalid role")
	}
	if id == caller.ID {
		return nil, validationError("You cannot change your own role")
	}

	a, err := s.accounts.UpdateRole(ctx, id, parsed)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("change role: %w", err)
	}
	s.revokeAll(ctx, id)
	s.logger.Info("Account role changed",
		zap.String("account_id", id),
		zap.String("role", string(parsed)),
		zap.String("changed_by", caller.ID),
	)
	return toAccountDTO(a), nil
}

func (s *accountService) revokeAll(ctx context.Context, accountID string) {
	if s.revoker == nil {
		return
	}
	if err := s.revoker.RevokeAccount(ctx, accountID, s.now()); err != nil {
		s.logger.Warn("Failed to revoke account sessions",
			zap.String("account_id", accountID),
			zap.Error(err),
		)
	}
}
