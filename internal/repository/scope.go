package repository

import "github.com/jaysurani18/smart-society/internal/domain"

// Scope restricts listings to the rows a caller may see.
type Scope struct {
	All     bool
	OwnerID string
}

// ScopeFor admins see everything, anyone else only their own rows.
func ScopeFor(callerID string, role domain.Role) Scope {
	if role == domain.RoleAdmin {
		return Scope{All: true}
	}
	return Scope{OwnerID: callerID}
}

// OwnedBy limits to one account regardless of role.
func OwnedBy(accountID string) Scope {
	return Scope{OwnerID: accountID}
}

func (s Scope) Unrestricted() bool { return s.All }

// includes is the in-memory form of the predicate. A non-admin scope with
// no owner matches nothing.
func (s Scope) includes(ownerID string) bool {
	if s.All {
		return true
	}
	return s.OwnerID != "" && s.OwnerID == ownerID
}
