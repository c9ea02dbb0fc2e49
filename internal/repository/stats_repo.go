package repository

import (
	"context"

	"github.com/jaysurani18/smart-society/internal/domain"
)

// StatsRepository read-only aggregates for the dashboard
type StatsRepository interface {
	AdminStats(ctx context.Context) (*domain.AdminStats, error)
	ResidentStats(ctx context.Context, accountID string) (*domain.ResidentStats, error)
}
