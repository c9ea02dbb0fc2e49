package httpapi

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/jaysurani18/smart-society/internal/auth"
	"github.com/jaysurani18/smart-society/internal/domain"
	"github.com/jaysurani18/smart-society/internal/service"

	"go.uber.org/zap"
)

// TokenVerifier checks a session token's signature and expiry.
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// RevocationChecker reports whether a verified session was revoked early.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, sessionID, accountID string, issuedAt time.Time) (bool, error)
}

func extractToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	if cookie, err := r.Cookie("token"); err == nil {
		return cookie.Value
	}
	return ""
}

// AuthGate rejects requests without a valid session token and attaches the
// caller to the context. It does not check roles. revocations may be nil.
// A registry outage lets verified tokens through.
func AuthGate(verifier TokenVerifier, revocations RevocationChecker, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractToken(r)
			if token == "" {
				writeMessage(w, http.StatusUnauthorized, "Not authorized, no token")
				return
			}
			claims, err := verifier.Verify(token)
			if err != nil {
				writeMessage(w, http.StatusUnauthorized, "Not authorized, token failed")
				return
			}

			issuedAt := claims.IssuedTime()
			var expiresAt time.Time
			if claims.ExpiresAt != nil {
				expiresAt = claims.ExpiresAt.Time
			}

			if revocations != nil {
				revoked, err := revocations.IsRevoked(r.Context(), claims.SessionID(), claims.AccountID, issuedAt)
				if err != nil {
					logger.Warn("Session registry unavailable", zap.Error(err))
				} else if revoked {
					writeMessage(w, http.StatusUnauthorized, "Not authorized, token revoked")
					return
				}
			}

			caller := service.Caller{
				ID:               claims.AccountID,
				Name:             claims.Name,
				Role:             domain.Role(claims.Role),
				SessionID:        claims.SessionID(),
				SessionExpiresAt: expiresAt,
			}
			next.ServeHTTP(w, r.WithContext(service.WithCaller(r.Context(), caller)))
		})
	}
}

// RequireOp rejects callers the policy does not allow to perform op. It runs
// after AuthGate and before the handler reads the request body.
func RequireOp(policy *service.Policy, op service.Operation, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := policy.Authorize(callerFrom(r), op); err != nil {
				writeError(w, logger, r, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// callerFrom is only called behind AuthGate.
func callerFrom(r *http.Request) service.Caller {
	c, _ := service.CallerFrom(r.Context())
	return c
}
