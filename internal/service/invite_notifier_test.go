package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func sampleInvitation() Invitation {
	return Invitation{
		AccountID: "acc-1",
		Name:      "Ravi",
		Email:     "ravi@example.com",
		Link:      "http://localhost:5173/setup-password/abc",
		ExpiresAt: time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC),
	}
}

func TestWebhookInviteNotifier(t *testing.T) {
	var got Invitation
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	n := NewWebhookInviteNotifier(srv.URL, 2*time.Second)
	require.NoError(t, n.DeliverInvitation(context.Background(), sampleInvitation()))
	assert.Equal(t, "ravi@example.com", got.Email)
	assert.Equal(t, "http://localhost:5173/setup-password/abc", got.Link)
}

func TestWebhookInviteNotifier_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	n := NewWebhookInviteNotifier(srv.URL, 2*time.Second)
	assert.Error(t, n.DeliverInvitation(context.Background(), sampleInvitation()))
}

func TestStreamInviteNotifier(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	n := NewStreamInviteNotifier(client, "society:invitations")
	require.NoError(t, n.DeliverInvitation(context.Background(), sampleInvitation()))

	msgs, err := client.XRange(context.Background(), "society:invitations", "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, msgs, 1)

	var got Invitation
	require.NoError(t, json.Unmarshal([]byte(msgs[0].Values["data"].(string)), &got))
	assert.Equal(t, "acc-1", got.AccountID)
}

func TestLogInviteNotifier(t *testing.T) {
	n := NewLogInviteNotifier(zap.NewNop())
	assert.NoError(t, n.DeliverInvitation(context.Background(), sampleInvitation()))
}

func TestDefaultPolicy(t *testing.T) {
	p := DefaultPolicy()
	assert.True(t, p.Allows("admin", OpMarkBillPaid))
	assert.False(t, p.Allows("resident", OpMarkBillPaid))
	assert.True(t, p.Allows("resident", OpFileComplaint))
	assert.False(t, p.Allows("admin", Operation("unknown.op")))

	assert.ErrorIs(t, p.Authorize(Caller{ID: "x", Role: "resident"}, OpCreateNotice), ErrForbidden)
	assert.ErrorIs(t, p.Authorize(Caller{Role: "admin"}, OpCreateNotice), ErrUnauthenticated)
	assert.NoError(t, p.Authorize(Caller{ID: "x", Role: "admin"}, OpCreateNotice))
}
