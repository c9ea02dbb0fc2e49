package service

import (
	"context"
	"time"

	"github.com/jaysurani18/smart-society/internal/domain"
)

// Caller is the authenticated identity attached to a request.
type Caller struct {
	ID   string
	Name string
	Role domain.Role

	// session the request was made with, used by logout
	SessionID        string
	SessionExpiresAt time.Time
}

func (c Caller) IsAdmin() bool { return c.Role == domain.RoleAdmin }

type callerKey struct{}

func WithCaller(ctx context.Context, c Caller) context.Context {
	return context.WithValue(ctx, callerKey{}, c)
}

func CallerFrom(ctx context.Context) (Caller, bool) {
	c, ok := ctx.Value(callerKey{}).(Caller)
	return c, ok && c.ID != ""
}
