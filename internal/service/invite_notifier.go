package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/go-resty/resty/v2"
	commonredis "github.com/jaysurani18/smart-society/common/redis"
	"go.uber.org/zap"
)

// Invitation is what an out-of-band channel needs to reach the invitee.
type Invitation struct {
	AccountID string    `json:"accountId"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Link      string    `json:"link"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// InviteNotifier delivers activation links.
type InviteNotifier interface {
	DeliverInvitation(ctx context.Context, inv Invitation) error
}

// LogInviteNotifier writes the link to the operator log.
type LogInviteNotifier struct {
	logger *zap.Logger
}

func NewLogInviteNotifier(logger *zap.Logger) *LogInviteNotifier {
	return &LogInviteNotifier{logger: logger}
}

func (n *LogInviteNotifier) DeliverInvitation(_ context.Context, inv Invitation) error {
	n.logger.Info("Invitation link generated",
		zap.String("account_id", inv.AccountID),
		zap.String("email", inv.Email),
		zap.String("link", inv.Link),
		zap.Time("expires_at", inv.ExpiresAt),
	)
	return nil
}

// WebhookInviteNotifier POSTs the invitation as JSON, e.g. to a mail relay.
type WebhookInviteNotifier struct {
	client *resty.Client
	url    string
}

func NewWebhookInviteNotifier(url string, timeout time.Duration) *WebhookInviteNotifier {
	client := resty.New().
		SetTimeout(timeout).
		SetRetryCount(2).
		SetRetryWaitTime(200 * time.Millisecond).
		SetHeader("Content-Type", "application/json")
	return &WebhookInviteNotifier{client: client, url: url}
}

func (n *WebhookInviteNotifier) DeliverInvitation(ctx context.Context, inv Invitation) error {
	resp, err := n.client.R().
		SetContext(ctx).
		SetBody(inv).
		Post(n.url)
	if err != nil {
		return fmt.Errorf("invite webhook: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("invite webhook: status %d", resp.StatusCode())
	}
	return nil
}

// StreamInviteNotifier appends the invitation to a redis stream for a mailer worker.
type StreamInviteNotifier struct {
	client *redis.Client
	stream string
}

func NewStreamInviteNotifier(client *redis.Client, stream string) *StreamInviteNotifier {
	return &StreamInviteNotifier{client: client, stream: stream}
}

func (n *StreamInviteNotifier) DeliverInvitation(ctx context.Context, inv Invitation) error {
	if _, err := commonredis.PublishJSONToStream(ctx, n.client, n.stream, inv, 10000); err != nil {
		return fmt.Errorf("invite stream: %w", err)
	}
	return nil
}
