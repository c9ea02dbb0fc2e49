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

var complaintColumnNames = []string{
	"id", "user_id", "title", "description", "image_url", "status",
	"created_at", "updated_at",
}

var complaintOwnerColumnNames = append(append([]string{}, complaintColumnNames...), "name", "wing", "flat_number")

func setupMockComplaintsDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock, *PostgresComplaintsRepository) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	return db, mock, NewPostgresComplaintsRepository(db)
}

func TestCreateComplaint_DefaultsToPending(t *testing.T) {
	db, mock, repo := setupMockComplaintsDB(t)
	defer db.Close()

	userID := uuid.NewString()
	now := time.Now()
	mock.ExpectQuery(`INSERT INTO complaints AS c`).
		WithArgs(sqlmock.AnyArg(), userID, "Leak", "Ceiling drips", nil, "pending").
		WillReturnRows(sqlmock.NewRows(complaintColumnNames).AddRow(
			uuid.NewString(), userID, "Leak", "Ceiling drips", nil, "pending", now, now,
		))

	c, err := repo.CreateComplaint(context.Background(), &domain.Complaint{
		UserID:      userID,
		Title:       "Leak",
		Description: "Ceiling drips",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.ComplaintPending, c.Status)
	assert.False(t, c.ImageURL.Valid)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateComplaint_TitleTooLong(t *testing.T) {
	db, mock, repo := setupMockComplaintsDB(t)
	defer db.Close()

	mock.ExpectQuery(`INSERT INTO complaints AS c`).
		WillReturnError(&pq.Error{Code: "22001", Message: "value too long for type character varying(255)"})

	_, err := repo.CreateComplaint(context.Background(), &domain.Complaint{UserID: uuid.NewString(), Title: "x"})
	assert.ErrorIs(t, err, ErrInvalidValue)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListComplaints_ResidentScope(t *testing.T) {
	db, mock, repo := setupMockComplaintsDB(t)
	defer db.Close()

	userID := uuid.NewString()
	now := time.Now()
	mock.ExpectQuery(`JOIN users u ON u.id = c.user_id WHERE c.user_id = \$1 ORDER BY c.created_at DESC, c.id DESC`).
		WithArgs(userID).
		WillReturnRows(sqlmock.NewRows(complaintOwnerColumnNames).AddRow(
			uuid.NewString(), userID, "Noise", "", "http://localhost:5000/uploads/a.png", "in-progress", now, now,
			"Asha", "A", nil,
		))

	list, err := repo.ListComplaints(context.Background(), ScopeFor(userID, domain.RoleResident))
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Asha", list[0].OwnerName)
	assert.Equal(t, "A", list[0].OwnerWing.String)
	assert.False(t, list[0].OwnerFlatNumber.Valid)
	assert.Equal(t, domain.ComplaintInProgress, list[0].Status)
	assert.True(t, list[0].ImageURL.Valid)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListComplaints_AdminScopeHasNoPredicate(t *testing.T) {
	db, mock, repo := setupMockComplaintsDB(t)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`JOIN users u ON u.id = c.user_id ORDER BY c.created_at DESC, c.id DESC`).
		WillReturnRows(sqlmock.NewRows(complaintOwnerColumnNames).
			AddRow(uuid.NewString(), uuid.NewString(), "Lift", "", nil, "pending", now, now, "Ravi", "B", "202").
			AddRow(uuid.NewString(), uuid.NewString(), "Leak", "", nil, "resolved", now, now, "Asha", "A", "101"))

	list, err := repo.ListComplaints(context.Background(), ScopeFor(uuid.NewString(), domain.RoleAdmin))
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Ravi", list[0].OwnerName)
	assert.Equal(t, "Asha", list[1].OwnerName)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListComplaints_InvalidOwnerSkipsQuery(t *testing.T) {
	db, mock, repo := setupMockComplaintsDB(t)
	defer db.Close()

	list, err := repo.ListComplaints(context.Background(), OwnedBy("not-a-uuid"))
	require.NoError(t, err)
	assert.Empty(t, list)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateComplaintStatus(t *testing.T) {
	db, mock, repo := setupMockComplaintsDB(t)
	defer db.Close()

	id := uuid.NewString()
	now := time.Now()
	mock.ExpectQuery(`UPDATE complaints AS c SET status = \$2`).
		WithArgs(id, "resolved").
		WillReturnRows(sqlmock.NewRows(complaintColumnNames).AddRow(
			id, uuid.NewString(), "Leak", "", nil, "resolved", now, now,
		))

	c, err := repo.UpdateComplaintStatus(context.Background(), id, domain.ComplaintResolved)
	require.NoError(t, err)
	assert.Equal(t, domain.ComplaintResolved, c.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateComplaintStatus_NotFound(t *testing.T) {
	db, mock, repo := setupMockComplaintsDB(t)
	defer db.Close()

	id := uuid.NewString()
	mock.ExpectQuery(`UPDATE complaints AS c`).
		WithArgs(id, "resolved").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.UpdateComplaintStatus(context.Background(), id, domain.ComplaintResolved)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = repo.UpdateComplaintStatus(context.Background(), "missing", domain.ComplaintResolved)
	assert.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteComplaint(t *testing.T) {
	db, mock, repo := setupMockComplaintsDB(t)
	defer db.Close()

	id := uuid.NewString()
	mock.ExpectExec(`DELETE FROM complaints WHERE id = \$1`).
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM complaints WHERE id = \$1`).
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.DeleteComplaint(context.Background(), id))
	assert.ErrorIs(t, repo.DeleteComplaint(context.Background(), id), ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}
