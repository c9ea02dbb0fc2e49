package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jaysurani18/smart-society/internal/domain"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims carried by a session token. Subject-like "id" is the account id;
// RegisteredClaims.ID (jti) identifies the session for revocation.
type Claims struct {
	AccountID string `json:"id"`
	Name      string `json:"name"`
	Role      string `json:"role"`
	// IssuedAtMillis refines iat, which the JWT encoding truncates to seconds.
	IssuedAtMillis int64 `json:"iat_ms,omitempty"`
	jwt.RegisteredClaims
}

// SessionID returns the jti.
func (c *Claims) SessionID() string { return c.RegisteredClaims.ID }

// IssuedTime is the issue instant at millisecond precision when the token carries
// it, otherwise iat. Zero when neither is present.
func (c *Claims) IssuedTime() time.Time {
	if c.IssuedAtMillis > 0 {
		return time.UnixMilli(c.IssuedAtMillis)
	}
	if c.IssuedAt != nil {
		return c.IssuedAt.Time
	}
	return time.Time{}
}

// TokenIssuer signs and verifies HS256 session tokens with one process-wide secret.
type TokenIssuer struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenIssuer(secret, issuer string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
		now:    time.Now,
	}
}

// Issue signs a token for the account.
func (i *TokenIssuer) Issue(accountID, name string, role domain.Role) (string, *Claims, error) {
	now := i.now()
	claims := &Claims{
		AccountID:      accountID,
		Name:           name,
		Role:           string(role),
		IssuedAtMillis: now.UnixMilli(),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    i.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}
	return token, claims, nil
}

// Verify returns the claims only when signature, algorithm, issuer and expiry check out.
func (i *TokenIssuer) Verify(tokenStr string) (*Claims, error) {
	claims := new(Claims)
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(i.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	token, err := parser.ParseWithClaims(tokenStr, claims, func(*jwt.Token) (any, error) {
		return i.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.AccountID == "" || !domain.Role(claims.Role).Valid() {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
