package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jaysurani18/smart-society/internal/domain"
)

// PostgresComplaintsRepository ComplaintsRepository over complaints
type PostgresComplaintsRepository struct {
	db *sql.DB
}

func NewPostgresComplaintsRepository(db *sql.DB) *PostgresComplaintsRepository {
	return &PostgresComplaintsRepository{db: db}
}

var _ ComplaintsRepository = (*PostgresComplaintsRepository)(nil)

const complaintColumns = `
	c.id::text,
	c.user_id::text,
	c.title,
	c.description,
	c.image_url,
	c.status,
	c.created_at,
	c.updated_at`

func scanComplaint(row rowScanner, extra ...any) (*domain.Complaint, error) {
	var c domain.Complaint
	var status string
	dest := []any{
		&c.ID,
		&c.UserID,
		&c.Title,
		&c.Description,
		&c.ImageURL,
		&status,
		&c.CreatedAt,
		&c.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	c.Status = domain.ComplaintStatus(status)
	return &c, nil
}

func (r *PostgresComplaintsRepository) CreateComplaint(ctx context.Context, complaint *domain.Complaint) (*domain.Complaint, error) {
	if complaint.ID == "" {
		complaint.ID = uuid.NewString()
	}
	if complaint.Status == "" {
		complaint.Status = domain.ComplaintPending
	}
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO complaints AS c (id, user_id, title, description, image_url, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+complaintColumns,
		complaint.ID,
		complaint.UserID,
		complaint.Title,
		complaint.Description,
		complaint.ImageURL,
		string(complaint.Status),
	)
	c, err := scanComplaint(row)
	if err != nil {
		return nil, mapError("create complaint", err)
	}
	return c, nil
}

func (r *PostgresComplaintsRepository) GetComplaint(ctx context.Context, id string) (*domain.Complaint, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	row := r.db.QueryRowContext(ctx, `SELECT `+complaintColumns+` FROM complaints c WHERE c.id = $1`, id)
	c, err := scanComplaint(row)
	if err != nil {
		return nil, mapError("get complaint", err)
	}
	return c, nil
}

func (r *PostgresComplaintsRepository) ListComplaints(ctx context.Context, scope Scope) ([]*domain.ComplaintWithOwner, error) {
	query := `
		SELECT ` + complaintColumns + `, u.name, u.wing, u.flat_number
		FROM complaints c
		JOIN users u ON u.id = c.user_id`
	var args []any
	if !scope.Unrestricted() {
		if _, err := uuid.Parse(scope.OwnerID); err != nil {
			return []*domain.ComplaintWithOwner{}, nil
		}
		query += ` WHERE c.user_id = $1`
		args = append(args, scope.OwnerID)
	}
	query += ` ORDER BY c.created_at DESC, c.id DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError("list complaints", err)
	}
	defer rows.Close()

	out := []*domain.ComplaintWithOwner{}
	for rows.Next() {
		var name string
		var wing, flat sql.NullString
		c, err := scanComplaint(rows, &name, &wing, &flat)
		if err != nil {
			return nil, mapError("scan complaint", err)
		}
		out = append(out, &domain.ComplaintWithOwner{
			Complaint:       *c,
			OwnerName:       name,
			OwnerWing:       wing,
			OwnerFlatNumber: flat,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("list complaints", err)
	}
	return out, nil
}

func (r *PostgresComplaintsRepository) UpdateComplaintStatus(ctx context.Context, id string, status domain.ComplaintStatus) (*domain.Complaint, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	row := r.db.QueryRowContext(ctx, `
		UPDATE complaints AS c
		SET status = $2, updated_at = now()
		WHERE c.id = $1
		RETURNING `+complaintColumns,
		id, string(status),
	)
	c, err := scanComplaint(row)
	if err != nil {
		return nil, mapError("update complaint status", err)
	}
	return c, nil
}

func (r *PostgresComplaintsRepository) DeleteComplaint(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrNotFound
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM complaints WHERE id = $1`, id)
	if err != nil {
		return mapError("delete complaint", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return mapError("delete complaint", err)
	} else if n == 0 {
		return ErrNotFound
	}
	return nil
}
