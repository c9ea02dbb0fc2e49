package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jaysurani18/smart-society/internal/auth"
	"github.com/jaysurani18/smart-society/internal/domain"
	"github.com/jaysurani18/smart-society/internal/repository"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// captureNotifier keeps delivered invitations for assertions.
type captureNotifier struct {
	mu   sync.Mutex
	sent []Invitation
	err  error
}

func (n *captureNotifier) DeliverInvitation(_ context.Context, inv Invitation) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, inv)
	return n.err
}

func (n *captureNotifier) last(t *testing.T) Invitation {
	t.Helper()
	n.mu.Lock()
	defer n.mu.Unlock()
	require.NotEmpty(t, n.sent, "no invitation delivered")
	return n.sent[len(n.sent)-1]
}

// recordingRevoker stands in for the session registry.
type recordingRevoker struct {
	sessions []string
	accounts []string
}

func (r *recordingRevoker) Revoke(_ context.Context, sessionID string, _ time.Time) error {
	r.sessions = append(r.sessions, sessionID)
	return nil
}

func (r *recordingRevoker) RevokeAccount(_ context.Context, accountID string, _ time.Time) error {
	r.accounts = append(r.accounts, accountID)
	return nil
}

type testEnv struct {
	store      *repository.MemoryStore
	issuer     *auth.TokenIssuer
	notifier   *captureNotifier
	revoker    *recordingRevoker
	auth       AuthService
	accounts   AccountService
	bills      BillService
	complaints ComplaintService
	notices    NoticeService
	stats      StatsService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := zap.NewNop()
	policy := DefaultPolicy()
	store := repository.NewMemoryStore()
	hasher := auth.NewPasswordHasher(10)
	issuer := auth.NewTokenIssuer("test-secret", "society-data", time.Hour)
	notifier := &captureNotifier{}
	revoker := &recordingRevoker{}

	return &testEnv{
		store:    store,
		issuer:   issuer,
		notifier: notifier,
		revoker:  revoker,
		auth: NewAuthService(store, hasher, issuer, notifier, revoker, policy, AuthSettings{
			InviteTTL:     7 * 24 * time.Hour,
			InviteBaseURL: "http://localhost:5173",
		}, logger),
		accounts:   NewAccountService(store, revoker, policy, logger),
		bills:      NewBillService(store, store, policy, logger),
		complaints: NewComplaintService(store, nil, policy, logger),
		notices:    NewNoticeService(store, nil, policy, logger),
		stats:      NewStatsService(store, policy, logger),
	}
}

// register signs up an account and returns it as a Caller.
func (e *testEnv) register(t *testing.T, name, email, role string) Caller {
	t.Helper()
	resp, err := e.auth.Register(context.Background(), RegisterRequest{
		Name:     name,
		Email:    email,
		Password: "secret123",
		Role:     role,
		Wing:     "A",
	})
	require.NoError(t, err)
	claims, err := e.issuer.Verify(resp.Token)
	require.NoError(t, err)
	return Caller{
		ID:               claims.AccountID,
		Name:             claims.Name,
		Role:             domain.Role(claims.Role),
		SessionID:        claims.SessionID(),
		SessionExpiresAt: claims.ExpiresAt.Time,
	}
}

func (e *testEnv) admin(t *testing.T) Caller {
	return e.register(t, "Admin", "admin@society.test", "admin")
}
