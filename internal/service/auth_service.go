package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/jaysurani18/smart-society/internal/auth"
	"github.com/jaysurani18/smart-society/internal/domain"
	"github.com/jaysurani18/smart-society/internal/repository"

	"go.uber.org/zap"
)

const minPasswordLength = 6

// AuthService credentials, sessions and invitations
type AuthService interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
	Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error)
	Invite(ctx context.Context, caller Caller, req InviteRequest) (*InviteResult, error)
	Activate(ctx context.Context, req ActivateRequest) (*ActivateResult, error)
	Logout(ctx context.Context, caller Caller) error
}

// SessionRevoker is the optional server-side revocation list.
type SessionRevoker interface {
	Revoke(ctx context.Context, sessionID string, expiresAt time.Time) error
	RevokeAccount(ctx context.Context, accountID string, at time.Time) error
}

// AuthSettings tunables taken from config
type AuthSettings struct {
	InviteTTL     time.Duration
	InviteBaseURL string
}

type authService struct {
	accounts repository.AccountsRepository
	hasher   *auth.PasswordHasher
	issuer   *auth.TokenIssuer
	notifier InviteNotifier
	revoker  SessionRevoker
	policy   *Policy
	settings AuthSettings
	logger   *zap.Logger
	now      func() time.Time
}

// NewAuthService revoker may be nil when no session registry is configured.
func NewAuthService(
	accounts repository.AccountsRepository,
	hasher *auth.PasswordHasher,
	issuer *auth.TokenIssuer,
	notifier InviteNotifier,
	revoker SessionRevoker,
	policy *Policy,
	settings AuthSettings,
	logger *zap.Logger,
) AuthService {
	return &authService{
		accounts: accounts,
		hasher:   hasher,
		issuer:   issuer,
		notifier: notifier,
		revoker:  revoker,
		policy:   policy,
		settings: settings,
		logger:   logger,
		now:      time.Now,
	}
}

type LoginRequest struct {
	Email     string
	Password  string
	IPAddress string // for logs only
}

type LoginResponse struct {
	Token string      `json:"token"`
	User  SessionUser `json:"user"`
}

// Login maps every failure to ErrInvalidCredentials; the reason goes to the log only.
func (s *authService) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	email := normalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		s.logger.Warn("User login failed: missing credentials",
			zap.String("ip_address", req.IPAddress),
			zap.String("reason", "missing_credentials"),
		)
		return nil, ErrInvalidCredentials
	}

	// 1. lookup
	account, err := s.accounts.GetAccountByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		s.logger.Warn("User login failed: invalid credentials",
			zap.String("ip_address", req.IPAddress),
			zap.String("reason", "unknown_email"),
		)
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("login lookup: %w", err)
	}

	// 2. an invited account has no usable password until activation
	if !account.HasPassword() {
		s.logger.Warn("User login failed: account not activated",
			zap.String("user_id", account.ID),
			zap.String("ip_address", req.IPAddress),
			zap.String("reason", "not_activated"),
		)
		return nil, ErrInvalidCredentials
	}

	// 3. verify
	if !s.hasher.Matches(account.PasswordHash, req.Password) {
		s.logger.Warn("User login failed: invalid credentials",
			zap.String("user_id", account.ID),
			zap.String("ip_address", req.IPAddress),
			zap.String("reason", "wrong_password"),
		)
		return nil, ErrInvalidCredentials
	}

	// 4. issue
	token, _, err := s.issuer.Issue(account.ID, account.Name, account.Role)
	if err != nil {
		return nil, err
	}
	s.logger.Info("User logged in",
		zap.String("user_id", account.ID),
		zap.String("role", string(account.Role)),
		zap.String("ip_address", req.IPAddress),
	)
	return &LoginResponse{
		Token: token,
		User: SessionUser{
			ID:    account.ID,
			Name:  account.Name,
			Email: account.Email,
			Role:  account.Role,
		},
	}, nil
}

type RegisterRequest struct {
	Name       string
	Email      string
	Password   string
	Role       string // optional; admin only for the first administrator
	Wing       string
	FlatNumber string
}

type RegisterResponse struct {
	Token string `json:"token"`
}

// Register self-serve signup; the account is active immediately.
func (s *authService) Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error) {
	name := strings.TrimSpace(req.Name)
	email := normalizeEmail(req.Email)
	if name == "" {
		return nil, validationError("Name is required")
	}
	if err := checkLength("Name", name, maxNameLength); err != nil {
		return nil, err
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword(req.Password); err != nil {
		return nil, err
	}
	if err := checkAddress(strings.TrimSpace(req.Wing), strings.TrimSpace(req.FlatNumber)); err != nil {
		return nil, err
	}

	role := domain.RoleResident
	if r := strings.ToLower(strings.TrimSpace(req.Role)); r != "" {
		parsed, ok := domain.ParseRole(r)
		if !ok {
			return nil, validationError("Invalid role")
		}
		role = parsed
	}
	if role == domain.RoleAdmin {
		admins, err := s.accounts.CountAccounts(ctx, repository.AccountFilters{Role: domain.RoleAdmin})
		if err != nil {
			return nil, fmt.Errorf("count admins: %w", err)
		}
		if admins > 0 {
			return nil, ErrForbidden
		}
	}

	if _, err := s.accounts.GetAccountByEmail(ctx, email); err == nil {
		return nil, ErrDuplicateEmail
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("register lookup: %w", err)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	create := s.accounts.CreateAccount
	if role == domain.RoleAdmin {
		// the count above is advisory; this insert is the authoritative check
		create = s.accounts.CreateFirstAdmin
	}
	account, err := create(ctx, &domain.Account{
		Name:         name,
		Email:        email,
		Role:         role,
		Wing:         optionalString(req.Wing),
		FlatNumber:   optionalString(req.FlatNumber),
		PasswordHash: hash,
		IsSetup:      true,
	})
	switch {
	case errors.Is(err, repository.ErrAdminExists):
		return nil, ErrForbidden
	case errors.Is(err, repository.ErrDuplicate):
		return nil, ErrDuplicateEmail
	case err != nil:
		return nil, wrapStoreError("create account", err)
	}

	token, _, err := s.issuer.Issue(account.ID, account.Name, account.Role)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Account registered",
		zap.String("user_id", account.ID),
		zap.String("role", string(account.Role)),
	)
	return &RegisterResponse{Token: token}, nil
}

type InviteRequest struct {
	Name       string
	Email      string
	Role       string
	Wing       string
	FlatNumber string
}

// InviteResult Link is for out-of-band delivery only; handlers must not echo it.
type InviteResult struct {
	AccountID string
	Link      string
	ExpiresAt time.Time
}

// Invite creates an inactive account and delivers a single-use activation link.
func (s *authService) Invite(ctx context.Context, caller Caller, req InviteRequest) (*InviteResult, error) {
	if err := s.policy.Authorize(caller, OpInvite); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	email := normalizeEmail(req.Email)
	if name == "" {
		return nil, validationError("Name is required")
	}
	if err := checkLength("Name", name, maxNameLength); err != nil {
		return nil, err
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := checkAddress(strings.TrimSpace(req.Wing), strings.TrimSpace(req.FlatNumber)); err != nil {
		return nil, err
	}
	role := domain.RoleResident
	if r := strings.ToLower(strings.TrimSpace(req.Role)); r != "" {
		parsed, ok := domain.ParseRole(r)
		if !ok {
			return nil, validationError("Invalid role")
		}
		role = parsed
	}

	if _, err := s.accounts.GetAccountByEmail(ctx, email); err == nil {
		return nil, ErrDuplicateEmail
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("invite lookup: %w", err)
	}

	token, tokenHash, err := auth.NewInvitationToken()
	if err != nil {
		return nil, err
	}
	expiresAt := s.now().Add(s.settings.InviteTTL)

	account, err := s.accounts.CreateAccount(ctx, &domain.Account{
		Name:                name,
		Email:               email,
		Role:                role,
		Wing:                optionalString(req.Wing),
		FlatNumber:          optionalString(req.FlatNumber),
		PasswordHash:        domain.PasswordNotSet,
		InvitationTokenHash: sql.NullString{String: tokenHash, Valid: true},
		InvitationExpiresAt: sql.NullTime{Time: expiresAt, Valid: true},
		IsSetup:             false,
	})
	if errors.Is(err, repository.ErrDuplicate) {
		return nil, ErrDuplicateEmail
	}
	if err != nil {
		return nil, wrapStoreError("create invited account", err)
	}

	link := s.settings.InviteBaseURL + "/setup-password/" + token
	inv := Invitation{
		AccountID: account.ID,
		Name:      account.Name,
		Email:     account.Email,
		Link:      link,
		ExpiresAt: expiresAt,
	}
	// the account stays; a failed delivery is recovered by deleting and re-inviting
	if err := s.notifier.DeliverInvitation(ctx, inv); err != nil {
		s.logger.Error("Invitation delivery failed",
			zap.String("account_id", account.ID),
			zap.String("invited_by", caller.ID),
			zap.Error(err),
		)
	}

	s.logger.Info("Account invited",
		zap.String("account_id", account.ID),
		zap.String("invited_by", caller.ID),
		zap.String("role", string(role)),
	)
	return &InviteResult{AccountID: account.ID, Link: link, ExpiresAt: expiresAt}, nil
}

type ActivateRequest struct {
	Token    string
	Password string
}

type ActivateResult struct {
	AccountID string `json:"-"`
	Message   string `json:"message"`
}

// Activate consumes an invitation token and sets the first password.
func (s *authService) Activate(ctx context.Context, req ActivateRequest) (*ActivateResult, error) {
	token := strings.TrimSpace(req.Token)
	if token == "" {
		return nil, ErrInvalidOrExpiredToken
	}
	if err := validatePassword(req.Password); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	account, err := s.accounts.ActivateAccount(ctx, auth.HashInvitationToken(token), hash, s.now())
	if errors.Is(err, repository.ErrNotFound) {
		s.logger.Warn("Account activation rejected", zap.String("reason", "invalid_or_expired_token"))
		return nil, ErrInvalidOrExpiredToken
	}
	if err != nil {
		return nil, fmt.Errorf("activate account: %w", err)
	}

	s.logger.Info("Account activated", zap.String("user_id", account.ID))
	return &ActivateResult{AccountID: account.ID, Message: "Account activated! You can now login."}, nil
}

// Logout revokes the caller's current session when a registry is configured.
func (s *authService) Logout(ctx context.Context, caller Caller) error {
	if err := s.policy.Authorize(caller, OpLogout); err != nil {
		return err
	}
	if s.revoker == nil {
		return nil
	}
	if err := s.revoker.Revoke(ctx, caller.SessionID, caller.SessionExpiresAt); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	s.logger.Info("User logged out", zap.String("user_id", caller.ID))
	return nil
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func validateEmail(email string) error {
	if email == "" {
		return validationError("Email is required")
	}
	if err := checkLength("Email", email, maxEmailLength); err != nil {
		return err
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return validationError("Invalid email address")
	}
	return nil
}

func validatePassword(p string) error {
	if len(p) < minPasswordLength {
		return validationError("Password must be at least %d characters", minPasswordLength)
	}
	if len(p) > auth.MaxPasswordBytes {
		return validationError("Password must be at most %d bytes", auth.MaxPasswordBytes)
	}
	return nil
}

func optionalString(s string) sql.NullString {
	s = strings.TrimSpace(s)
	return sql.NullString{String: s, Valid: s != ""}
}
