package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jaysurani18/smart-society/internal/domain"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var accountColumnNames = []string{
	"id", "name", "email", "role", "wing", "flat_number",
	"password_hash", "invitation_token_hash", "invitation_expires_at", "is_setup",
	"created_at", "updated_at",
}

func setupMockAccountsDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock, *PostgresAccountsRepository) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	return db, mock, NewPostgresAccountsRepository(db)
}

func TestGetAccountByEmail_Success(t *testing.T) {
	db, mock, repo := setupMockAccountsDB(t)
	defer db.Close()

	id := uuid.NewString()
	now := time.Now()
	rows := sqlmock.NewRows(accountColumnNames).AddRow(
		id, "Asha Rao", "asha@example.com", "resident", "A", "101",
		"$2a$10$hash", nil, nil, true,
		now, now,
	)
	mock.ExpectQuery(`SELECT .* FROM users WHERE email = \$1`).
		WithArgs("asha@example.com").
		WillReturnRows(rows)

	a, err := repo.GetAccountByEmail(context.Background(), "  Asha@Example.com ")
	require.NoError(t, err)
	assert.Equal(t, id, a.ID)
	assert.Equal(t, domain.RoleResident, a.Role)
	assert.Equal(t, "A", a.Wing.String)
	assert.True(t, a.HasPassword())
	assert.False(t, a.InvitationTokenHash.Valid)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetAccountByEmail_NotFound(t *testing.T) {
	db, mock, repo := setupMockAccountsDB(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT .* FROM users WHERE email = \$1`).
		WithArgs("ghost@example.com").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetAccountByEmail(context.Background(), "ghost@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetAccount_InvalidIDSkipsQuery(t *testing.T) {
	db, mock, repo := setupMockAccountsDB(t)
	defer db.Close()

	_, err := repo.GetAccount(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateAccount_DuplicateEmail(t *testing.T) {
	db, mock, repo := setupMockAccountsDB(t)
	defer db.Close()

	mock.ExpectQuery(`INSERT INTO users`).
		WillReturnError(&pq.Error{Code: "23505", Message: "duplicate key value violates unique constraint"})

	_, err := repo.CreateAccount(context.Background(), &domain.Account{
		Name:         "Asha",
		Email:        "asha@example.com",
		Role:         domain.RoleResident,
		PasswordHash: domain.PasswordNotSet,
	})
	assert.ErrorIs(t, err, ErrDuplicate)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateAccount_LowercasesEmail(t *testing.T) {
	db, mock, repo := setupMockAccountsDB(t)
	defer db.Close()

	now := time.Now()
	expires := now.Add(time.Hour)
	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs(sqlmock.AnyArg(), "Ravi", "ravi@example.com", "resident",
			sqlmock.AnyArg(), sqlmock.AnyArg(), domain.PasswordNotSet,
			sqlmock.AnyArg(), sqlmock.AnyArg(), false).
		WillReturnRows(sqlmock.NewRows(accountColumnNames).AddRow(
			uuid.NewString(), "Ravi", "ravi@example.com", "resident", nil, nil,
			domain.PasswordNotSet, "abc", expires, false, now, now,
		))

	a, err := repo.CreateAccount(context.Background(), &domain.Account{
		Name:                "Ravi",
		Email:               "Ravi@Example.com",
		Role:                domain.RoleResident,
		PasswordHash:        domain.PasswordNotSet,
		InvitationTokenHash: sql.NullString{String: "abc", Valid: true},
		InvitationExpiresAt: sql.NullTime{Time: expires, Valid: true},
	})
	require.NoError(t, err)
	assert.True(t, a.PendingInvitation())
	assert.False(t, a.HasPassword())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateAccount_ValueTooLong(t *testing.T) {
	db, mock, repo := setupMockAccountsDB(t)
	defer db.Close()

	mock.ExpectQuery(`INSERT INTO users`).
		WillReturnError(&pq.Error{Code: "22001", Message: "value too long for type character varying(32)"})

	_, err := repo.CreateAccount(context.Background(), &domain.Account{
		Name:         "Asha",
		Email:        "asha@example.com",
		Role:         domain.RoleResident,
		PasswordHash: domain.PasswordNotSet,
	})
	assert.ErrorIs(t, err, ErrInvalidValue)
	assert.NotErrorIs(t, err, ErrDuplicate)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateFirstAdmin_InsertsUnderLock(t *testing.T) {
	db, mock, repo := setupMockAccountsDB(t)
	defer db.Close()

	now := time.Now()
	mock.ExpectBegin()
	mock.ExpectExec(`SELECT pg_advisory_xact_lock\(\$1\)`).
		WithArgs(firstAdminLockKey).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM users WHERE role = \$1`).
		WithArgs("admin").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs(sqlmock.AnyArg(), "Admin", "admin@society.test", "admin",
			sqlmock.AnyArg(), sqlmock.AnyArg(), "$2a$10$hash",
			sqlmock.AnyArg(), sqlmock.AnyArg(), true).
		WillReturnRows(sqlmock.NewRows(accountColumnNames).AddRow(
			uuid.NewString(), "Admin", "admin@society.test", "admin", nil, nil,
			"$2a$10$hash", nil, nil, true, now, now,
		))
	mock.ExpectCommit()

	a, err := repo.CreateFirstAdmin(context.Background(), &domain.Account{
		Name:         "Admin",
		Email:        "admin@society.test",
		Role:         domain.RoleAdmin,
		PasswordHash: "$2a$10$hash",
		IsSetup:      true,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, a.Role)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateFirstAdmin_AdminExists(t *testing.T) {
	db, mock, repo := setupMockAccountsDB(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`SELECT pg_advisory_xact_lock`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM users WHERE role = \$1`).
		WithArgs("admin").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectRollback()

	_, err := repo.CreateFirstAdmin(context.Background(), &domain.Account{
		Name:  "Mallory",
		Email: "mallory@example.com",
		Role:  domain.RoleAdmin,
	})
	assert.ErrorIs(t, err, ErrAdminExists)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestActivateAccount_ConsumesToken(t *testing.T) {
	db, mock, repo := setupMockAccountsDB(t)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`UPDATE users\s+SET password_hash = \$2`).
		WithArgs("tokenhash", "$2a$10$new", now).
		WillReturnRows(sqlmock.NewRows(accountColumnNames).AddRow(
			uuid.NewString(), "Ravi", "ravi@example.com", "resident", nil, nil,
			"$2a$10$new", nil, nil, true, now, now,
		))

	a, err := repo.ActivateAccount(context.Background(), "tokenhash", "$2a$10$new", now)
	require.NoError(t, err)
	assert.True(t, a.IsSetup)
	assert.False(t, a.InvitationTokenHash.Valid)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestActivateAccount_ZeroRows(t *testing.T) {
	db, mock, repo := setupMockAccountsDB(t)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`UPDATE users`).
		WithArgs("used", "$2a$10$new", now).
		WillReturnRows(sqlmock.NewRows(accountColumnNames))

	_, err := repo.ActivateAccount(context.Background(), "used", "$2a$10$new", now)
	assert.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListAccounts_RoleFilter(t *testing.T) {
	db, mock, repo := setupMockAccountsDB(t)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`FROM users WHERE role = \$1 ORDER BY wing ASC, flat_number ASC`).
		WithArgs("resident").
		WillReturnRows(sqlmock.NewRows(accountColumnNames).
			AddRow(uuid.NewString(), "A", "a@x.io", "resident", "A", "101", "h", nil, nil, true, now, now).
			AddRow(uuid.NewString(), "B", "b@x.io", "resident", "B", "201", "h", nil, nil, true, now, now))

	list, err := repo.ListAccounts(context.Background(), AccountFilters{Role: domain.RoleResident})
	require.NoError(t, err)
	assert.Len(t, list, 2)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteAccount(t *testing.T) {
	db, mock, repo := setupMockAccountsDB(t)
	defer db.Close()

	id := uuid.NewString()
	mock.ExpectExec(`DELETE FROM users WHERE id = \$1`).
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM users WHERE id = \$1`).
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.DeleteAccount(context.Background(), id))
	assert.ErrorIs(t, repo.DeleteAccount(context.Background(), id), ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}
