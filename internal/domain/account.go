package domain

import (
	"database/sql"
	"time"
)

// Role is the closed set of account roles.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleResident Role = "resident"
)

// PasswordNotSet is stored in password_hash for invited accounts that have
// not chosen a password yet. It never matches any bcrypt hash.
const PasswordNotSet = "NOT_SET"

// ParseRole accepts only the known role names (case-insensitive callers
// should lower-case first).
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleAdmin, RoleResident:
		return Role(s), true
	}
	return "", false
}

func (r Role) Valid() bool {
	_, ok := ParseRole(string(r))
	return ok
}

// Account maps the users table.
type Account struct {
	ID    string `db:"id"`
	Name  string `db:"name"`
	Email string `db:"email"` // lower-cased, unique
	Role  Role   `db:"role"`

	// address inside the society
	Wing       sql.NullString `db:"wing"`
	FlatNumber sql.NullString `db:"flat_number"`

	// credentials
	PasswordHash        string         `db:"password_hash"`         // bcrypt hash or PasswordNotSet
	InvitationTokenHash sql.NullString `db:"invitation_token_hash"` // sha-256 hex of the pending invitation token
	InvitationExpiresAt sql.NullTime   `db:"invitation_expires_at"`
	IsSetup             bool           `db:"is_setup"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// HasPassword reports whether the account can authenticate with a password.
func (a *Account) HasPassword() bool {
	return a.IsSetup && a.PasswordHash != "" && a.PasswordHash != PasswordNotSet
}

// PendingInvitation reports whether the account is still waiting for activation.
func (a *Account) PendingInvitation() bool {
	return !a.IsSetup && a.InvitationTokenHash.Valid
}
