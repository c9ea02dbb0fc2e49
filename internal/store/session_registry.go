package store

import (
	"context"
	"errors"
	"strconv"
	"time"
)

const (
	revokedSessionPrefix = "session:revoked:"
	revokedAccountPrefix = "session:account-revoked:"
)

// SessionRegistry records revoked session tokens in the KV store so a signed
// token can be rejected before it expires. Keys expire with the tokens they cover.
type SessionRegistry struct {
	kv       KV
	tokenTTL time.Duration
	now      func() time.Time
}

// NewSessionRegistry tokenTTL bounds how long an account-wide revocation must be kept.
func NewSessionRegistry(kv KV, tokenTTL time.Duration) *SessionRegistry {
	return &SessionRegistry{kv: kv, tokenTTL: tokenTTL, now: time.Now}
}

// Revoke rejects one session until its expiry.
func (r *SessionRegistry) Revoke(ctx context.Context, sessionID string, expiresAt time.Time) error {
	if sessionID == "" {
		return nil
	}
	ttl := expiresAt.Sub(r.now())
	if ttl <= 0 {
		return nil
	}
	return r.kv.Set(ctx, revokedSessionPrefix+sessionID, "1", ttl)
}

// RevokeAccount rejects every session of the account issued at or before at,
// compared in milliseconds.
func (r *SessionRegistry) RevokeAccount(ctx context.Context, accountID string, at time.Time) error {
	if accountID == "" {
		return nil
	}
	return r.kv.Set(ctx, revokedAccountPrefix+accountID, strconv.FormatInt(at.UnixMilli(), 10), r.tokenTTL)
}

// IsRevoked checks both the session key and the account-wide cutoff.
func (r *SessionRegistry) IsRevoked(ctx context.Context, sessionID, accountID string, issuedAt time.Time) (bool, error) {
	if sessionID != "" {
		_, err := r.kv.Get(ctx, revokedSessionPrefix+sessionID)
		switch {
		case err == nil:
			return true, nil
		case !errors.Is(err, ErrMiss):
			return false, err
		}
	}

	cutoff, err := r.kv.Get(ctx, revokedAccountPrefix+accountID)
	if errors.Is(err, ErrMiss) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	cutoffMillis, err := strconv.ParseInt(cutoff, 10, 64)
	if err != nil {
		return false, nil
	}
	// a token without millisecond iat is truncated to the second, so it still
	// falls on or before a cutoff in the same second
	return issuedAt.UnixMilli() <= cutoffMillis, nil
}
