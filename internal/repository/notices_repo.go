package repository

import (
	"context"

	"github.com/jaysurani18/smart-society/internal/domain"
)

// NoticesRepository notices table
type NoticesRepository interface {
	CreateNotice(ctx context.Context, notice *domain.Notice) (*domain.Notice, error)
	ListNotices(ctx context.Context) ([]*domain.Notice, error)
	DeleteNotice(ctx context.Context, id string) error
}
