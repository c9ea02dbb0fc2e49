package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jaysurani18/smart-society/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminStats(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewPostgresStatsRepository(db)

	mock.ExpectQuery(`SELECT`).
		WillReturnRows(sqlmock.NewRows([]string{"residents", "pending", "collected", "outstanding"}).
			AddRow(int64(12), int64(3), "10500.00", "2500.50"))

	s, err := repo.AdminStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 12, s.TotalResidents)
	assert.Equal(t, 3, s.PendingComplaints)
	assert.Equal(t, domain.Money(1050000), s.TotalCollected)
	assert.Equal(t, domain.Money(250050), s.TotalPending)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestResidentStats_NoPayments(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewPostgresStatsRepository(db)

	id := uuid.NewString()
	mock.ExpectQuery(`SELECT`).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"balance", "pending"}).AddRow("0", int64(0)))
	mock.ExpectQuery(`ORDER BY updated_at DESC, id DESC\s+LIMIT 1`).
		WithArgs(id).
		WillReturnError(sql.ErrNoRows)

	s, err := repo.ResidentStats(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, domain.Money(0), s.MyBalance)
	assert.Equal(t, domain.Money(0), s.LastPayment)
	assert.Nil(t, s.LastPaymentDate)
	assert.Equal(t, 0, s.PendingComplaints)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestResidentStats_LastPayment(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewPostgresStatsRepository(db)

	id := uuid.NewString()
	paidAt := time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT`).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"balance", "pending"}).AddRow("1200.00", int64(2)))
	mock.ExpectQuery(`FROM maintenance_bills`).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"amount", "updated_at"}).AddRow("2500.00", paidAt))

	s, err := repo.ResidentStats(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, domain.Money(120000), s.MyBalance)
	assert.Equal(t, domain.Money(250000), s.LastPayment)
	require.NotNil(t, s.LastPaymentDate)
	assert.True(t, paidAt.Equal(*s.LastPaymentDate))
	assert.Equal(t, 2, s.PendingComplaints)
	require.NoError(t, mock.ExpectationsWereMet())
}
