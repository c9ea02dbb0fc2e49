package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jaysurani18/smart-society/internal/domain"
)

// PostgresStatsRepository dashboard aggregates
type PostgresStatsRepository struct {
	db *sql.DB
}

func NewPostgresStatsRepository(db *sql.DB) *PostgresStatsRepository {
	return &PostgresStatsRepository{db: db}
}

var _ StatsRepository = (*PostgresStatsRepository)(nil)

func (r *PostgresStatsRepository) AdminStats(ctx context.Context) (*domain.AdminStats, error) {
	var s domain.AdminStats
	err := r.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM users WHERE role = 'resident'),
			(SELECT COUNT(*) FROM complaints WHERE status = 'pending'),
			(SELECT COALESCE(SUM(amount), 0) FROM maintenance_bills WHERE status = 'paid'),
			(SELECT COALESCE(SUM(amount), 0) FROM maintenance_bills WHERE status = 'pending')`,
	).Scan(&s.TotalResidents, &s.PendingComplaints, &s.TotalCollected, &s.TotalPending)
	if err != nil {
		return nil, mapError("admin stats", err)
	}
	return &s, nil
}

func (r *PostgresStatsRepository) ResidentStats(ctx context.Context, accountID string) (*domain.ResidentStats, error) {
	var s domain.ResidentStats
	if _, err := uuid.Parse(accountID); err != nil {
		return &s, nil
	}

	err := r.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COALESCE(SUM(amount), 0) FROM maintenance_bills WHERE user_id = $1 AND status = 'pending'),
			(SELECT COUNT(*) FROM complaints WHERE user_id = $1 AND status = 'pending')`,
		accountID,
	).Scan(&s.MyBalance, &s.PendingComplaints)
	if err != nil {
		return nil, mapError("resident stats", err)
	}

	var amount domain.Money
	var at time.Time
	err = r.db.QueryRowContext(ctx, `
		SELECT amount, updated_at
		FROM maintenance_bills
		WHERE user_id = $1 AND status = 'paid'
		ORDER BY updated_at DESC, id DESC
		LIMIT 1`,
		accountID,
	).Scan(&amount, &at)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return nil, mapError("last payment", err)
	default:
		s.LastPayment = amount
		s.LastPaymentDate = &at
	}
	return &s, nil
}
