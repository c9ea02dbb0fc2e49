package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jaysurani18/smart-society/internal/domain"
	"github.com/jaysurani18/smart-society/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func inviteToken(t *testing.T, link string) string {
	t.Helper()
	const marker = "/setup-password/"
	i := strings.Index(link, marker)
	require.GreaterOrEqual(t, i, 0, "unexpected link %q", link)
	return link[i+len(marker):]
}

func TestAuthService_RegisterThenLogin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.register(t, "Asha", "Asha@Example.com ", "")

	resp, err := env.auth.Login(ctx, LoginRequest{Email: "asha@example.com", Password: "secret123"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "Asha", resp.User.Name)
	assert.Equal(t, "asha@example.com", resp.User.Email)
	assert.Equal(t, domain.RoleResident, resp.User.Role)

	claims, err := env.issuer.Verify(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.AccountID)

	_, err = env.auth.Login(ctx, LoginRequest{Email: "asha@example.com", Password: "wrong-pass"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = env.auth.Login(ctx, LoginRequest{Email: "nobody@example.com", Password: "secret123"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_RegisterValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	cases := []struct {
		name string
		req  RegisterRequest
	}{
		{"missing name", RegisterRequest{Email: "a@b.com", Password: "secret123"}},
		{"bad email", RegisterRequest{Name: "A", Email: "not-an-email", Password: "secret123"}},
		{"short password", RegisterRequest{Name: "A", Email: "a@b.com", Password: "12345"}},
		{"unknown role", RegisterRequest{Name: "A", Email: "a@b.com", Password: "secret123", Role: "owner"}},
		{"long name", RegisterRequest{Name: strings.Repeat("n", 256), Email: "a@b.com", Password: "secret123"}},
		{"long email", RegisterRequest{Name: "A", Email: strings.Repeat("e", 250) + "@b.com", Password: "secret123"}},
		{"long wing", RegisterRequest{Name: "A", Email: "a@b.com", Password: "secret123", Wing: strings.Repeat("W", 33)}},
		{"long flat", RegisterRequest{Name: "A", Email: "a@b.com", Password: "secret123", FlatNumber: strings.Repeat("9", 33)}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := env.auth.Register(ctx, tc.req)
			require.Error(t, err)
			assert.Equal(t, KindValidation, KindOf(err))
		})
	}
}

func TestAuthService_RegisterDuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "Asha", "asha@example.com", "")

	_, err := env.auth.Register(context.Background(), RegisterRequest{
		Name: "Other", Email: "ASHA@example.com", Password: "secret123",
	})
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestAuthService_RegisterAdminOnlyWhenNoneExists(t *testing.T) {
	env := newTestEnv(t)
	admin := env.admin(t)
	assert.Equal(t, domain.RoleAdmin, admin.Role)

	_, err := env.auth.Register(context.Background(), RegisterRequest{
		Name: "Mallory", Email: "mallory@example.com", Password: "secret123", Role: "admin",
	})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestAuthService_ConcurrentAdminRegistrationCreatesOne(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	const n = 8
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = env.auth.Register(ctx, RegisterRequest{
				Name:     "Admin",
				Email:    fmt.Sprintf("admin%d@society.test", i),
				Password: "secret123",
				Role:     "admin",
			})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, ErrForbidden)
	}
	assert.Equal(t, 1, succeeded)

	admins, err := env.store.CountAccounts(ctx, repository.AccountFilters{Role: domain.RoleAdmin})
	require.NoError(t, err)
	assert.Equal(t, 1, admins)
}

func TestAuthService_InviteValidatesLengths(t *testing.T) {
	env := newTestEnv(t)
	admin := env.admin(t)

	_, err := env.auth.Invite(context.Background(), admin, InviteRequest{Name: strings.Repeat("n", 256), Email: "x@example.com"})
	assert.Equal(t, KindValidation, KindOf(err))

	_, err = env.auth.Invite(context.Background(), admin, InviteRequest{Name: "X", Email: "x@example.com", Wing: strings.Repeat("W", 33)})
	assert.Equal(t, KindValidation, KindOf(err))
	assert.Empty(t, env.notifier.sent)
}

func TestAuthService_InviteActivateLogin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.admin(t)

	res, err := env.auth.Invite(ctx, admin, InviteRequest{
		Name: "Ravi", Email: "ravi@example.com", Wing: "B", FlatNumber: "204",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccountID)
	assert.True(t, strings.HasPrefix(res.Link, "http://localhost:5173/setup-password/"))
	assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), res.ExpiresAt, time.Minute)

	sent := env.notifier.last(t)
	assert.Equal(t, res.Link, sent.Link)
	assert.Equal(t, "ravi@example.com", sent.Email)

	token := inviteToken(t, res.Link)
	assert.Len(t, token, 64)

	// the raw token is never stored
	stored, err := env.store.GetAccount(ctx, res.AccountID)
	require.NoError(t, err)
	assert.False(t, stored.IsSetup)
	assert.Equal(t, domain.PasswordNotSet, stored.PasswordHash)
	assert.NotEqual(t, token, stored.InvitationTokenHash.String)

	// invited accounts cannot log in, not even with the sentinel
	for _, pw := range []string{"", domain.PasswordNotSet, "anything123"} {
		_, err = env.auth.Login(ctx, LoginRequest{Email: "ravi@example.com", Password: pw})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	}

	act, err := env.auth.Activate(ctx, ActivateRequest{Token: token, Password: "newpass1"})
	require.NoError(t, err)
	assert.Equal(t, res.AccountID, act.AccountID)
	assert.Equal(t, "Account activated! You can now login.", act.Message)

	login, err := env.auth.Login(ctx, LoginRequest{Email: "ravi@example.com", Password: "newpass1"})
	require.NoError(t, err)
	assert.Equal(t, res.AccountID, login.User.ID)

	_, err = env.auth.Activate(ctx, ActivateRequest{Token: token, Password: "another1"})
	assert.ErrorIs(t, err, ErrInvalidOrExpiredToken)

	// the second attempt did not overwrite the password
	_, err = env.auth.Login(ctx, LoginRequest{Email: "ravi@example.com", Password: "newpass1"})
	assert.NoError(t, err)
}

func TestAuthService_ActivateRejectsUnknownAndExpired(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.admin(t)

	_, err := env.auth.Activate(ctx, ActivateRequest{Token: "", Password: "secret123"})
	assert.ErrorIs(t, err, ErrInvalidOrExpiredToken)
	_, err = env.auth.Activate(ctx, ActivateRequest{Token: strings.Repeat("ab", 32), Password: "secret123"})
	assert.ErrorIs(t, err, ErrInvalidOrExpiredToken)

	svc := env.auth.(*authService)
	svc.now = func() time.Time { return time.Now().Add(-8 * 24 * time.Hour) }
	res, err := env.auth.Invite(ctx, admin, InviteRequest{Name: "Late", Email: "late@example.com"})
	require.NoError(t, err)
	svc.now = time.Now

	_, err = env.auth.Activate(ctx, ActivateRequest{Token: inviteToken(t, res.Link), Password: "secret123"})
	assert.ErrorIs(t, err, ErrInvalidOrExpiredToken)
}

func TestAuthService_DuplicateInviteCreatesNothing(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.admin(t)

	_, err := env.auth.Invite(ctx, admin, InviteRequest{Name: "Ravi", Email: "ravi@example.com"})
	require.NoError(t, err)
	before, err := env.store.CountAccounts(ctx, repository.AccountFilters{})
	require.NoError(t, err)

	_, err = env.auth.Invite(ctx, admin, InviteRequest{Name: "Ravi again", Email: "Ravi@example.com"})
	assert.ErrorIs(t, err, ErrDuplicateEmail)

	after, err := env.store.CountAccounts(ctx, repository.AccountFilters{})
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.Len(t, env.notifier.sent, 1)
}

func TestAuthService_InviteRequiresAdmin(t *testing.T) {
	env := newTestEnv(t)
	resident := env.register(t, "Asha", "asha@example.com", "")

	_, err := env.auth.Invite(context.Background(), resident, InviteRequest{Name: "X", Email: "x@example.com"})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = env.auth.Invite(context.Background(), Caller{}, InviteRequest{Name: "X", Email: "x@example.com"})
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestAuthService_InviteSurvivesDeliveryFailure(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.admin(t)
	env.notifier.err = assert.AnError

	res, err := env.auth.Invite(ctx, admin, InviteRequest{Name: "Ravi", Email: "ravi@example.com"})
	require.NoError(t, err)
	_, err = env.store.GetAccount(ctx, res.AccountID)
	assert.NoError(t, err)
}

func TestAuthService_Logout(t *testing.T) {
	env := newTestEnv(t)
	resident := env.register(t, "Asha", "asha@example.com", "")

	require.NoError(t, env.auth.Logout(context.Background(), resident))
	assert.Equal(t, []string{resident.SessionID}, env.revoker.sessions)
}
