package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jaysurani18/smart-society/internal/domain"
)

// PostgresNoticesRepository NoticesRepository over notices
type PostgresNoticesRepository struct {
	db *sql.DB
}

func NewPostgresNoticesRepository(db *sql.DB) *PostgresNoticesRepository {
	return &PostgresNoticesRepository{db: db}
}

var _ NoticesRepository = (*PostgresNoticesRepository)(nil)

const noticeColumns = `id::text, title, description, type, date, created_at`

func scanNotice(row rowScanner) (*domain.Notice, error) {
	var n domain.Notice
	var typ string
	if err := row.Scan(&n.ID, &n.Title, &n.Description, &typ, &n.Date, &n.CreatedAt); err != nil {
		return nil, err
	}
	n.Type = domain.NoticeType(typ)
	return &n, nil
}

func (r *PostgresNoticesRepository) CreateNotice(ctx context.Context, notice *domain.Notice) (*domain.Notice, error) {
	if notice.ID == "" {
		notice.ID = uuid.NewString()
	}
	if notice.Type == "" {
		notice.Type = domain.NoticeAlert
	}
	// date falls back to the column default (today) when unset
	var date any
	if !notice.Date.IsZero() {
		date = notice.Date.Format(domain.DateLayout)
	}
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO notices (id, title, description, type, date)
		VALUES ($1, $2, $3, $4, COALESCE($5::date, CURRENT_DATE))
		RETURNING `+noticeColumns,
		notice.ID, notice.Title, notice.Description, string(notice.Type), date,
	)
	n, err := scanNotice(row)
	if err != nil {
		return nil, mapError("create notice", err)
	}
	return n, nil
}

func (r *PostgresNoticesRepository) ListNotices(ctx context.Context) ([]*domain.Notice, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+noticeColumns+` FROM notices ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, mapError("list notices", err)
	}
	defer rows.Close()

	out := []*domain.Notice{}
	for rows.Next() {
		n, err := scanNotice(rows)
		if err != nil {
			return nil, mapError("scan notice", err)
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("list notices", err)
	}
	return out, nil
}

func (r *PostgresNoticesRepository) DeleteNotice(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrNotFound
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM notices WHERE id = $1`, id)
	if err != nil {
		return mapError("delete notice", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return mapError("delete notice", err)
	} else if n == 0 {
		return ErrNotFound
	}
	return nil
}
