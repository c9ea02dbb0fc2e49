package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jaysurani18/smart-society/internal/domain"
)

// PostgresBillsRepository BillsRepository over maintenance_bills
type PostgresBillsRepository struct {
	db *sql.DB
}

func NewPostgresBillsRepository(db *sql.DB) *PostgresBillsRepository {
	return &PostgresBillsRepository{db: db}
}

var _ BillsRepository = (*PostgresBillsRepository)(nil)

const billColumns = `
	b.id::text,
	b.user_id::text,
	b.amount,
	b.month,
	b.due_date,
	b.penalty,
	b.status,
	b.created_at,
	b.updated_at,
	b.paid_at`

func scanBill(row rowScanner, extra ...any) (*domain.Bill, error) {
	var b domain.Bill
	var status string
	dest := []any{
		&b.ID,
		&b.UserID,
		&b.Amount,
		&b.Month,
		&b.DueDate,
		&b.Penalty,
		&status,
		&b.CreatedAt,
		&b.UpdatedAt,
		&b.PaidAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	b.Status = domain.BillStatus(status)
	return &b, nil
}

func (r *PostgresBillsRepository) CreateBill(ctx context.Context, bill *domain.Bill) (*domain.Bill, error) {
	if bill.ID == "" {
		bill.ID = uuid.NewString()
	}
	if bill.Status == "" {
		bill.Status = domain.BillPending
	}
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO maintenance_bills AS b (id, user_id, amount, month, due_date, penalty, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+billColumns,
		bill.ID,
		bill.UserID,
		bill.Amount,
		bill.Month,
		bill.DueDate.Format(domain.DateLayout),
		bill.Penalty,
		string(bill.Status),
	)
	b, err := scanBill(row)
	if err != nil {
		return nil, mapError("create bill", err)
	}
	return b, nil
}

func (r *PostgresBillsRepository) GetBill(ctx context.Context, id string) (*domain.Bill, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	row := r.db.QueryRowContext(ctx, `SELECT `+billColumns+` FROM maintenance_bills b WHERE b.id = $1`, id)
	b, err := scanBill(row)
	if err != nil {
		return nil, mapError("get bill", err)
	}
	return b, nil
}

func (r *PostgresBillsRepository) ListBills(ctx context.Context, scope Scope) ([]*domain.BillWithOwner, error) {
	query := `
		SELECT ` + billColumns + `, u.name, u.email
		FROM maintenance_bills b
		JOIN users u ON u.id = b.user_id`
	var args []any
	if !scope.Unrestricted() {
		if _, err := uuid.Parse(scope.OwnerID); err != nil {
			return []*domain.BillWithOwner{}, nil
		}
		query += ` WHERE b.user_id = $1`
		args = append(args, scope.OwnerID)
	}
	query += ` ORDER BY b.created_at DESC, b.id DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError("list bills", err)
	}
	defer rows.Close()

	out := []*domain.BillWithOwner{}
	for rows.Next() {
		var name, email string
		b, err := scanBill(rows, &name, &email)
		if err != nil {
			return nil, mapError("scan bill", err)
		}
		out = append(out, &domain.BillWithOwner{Bill: *b, OwnerName: name, OwnerEmail: email})
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("list bills", err)
	}
	return out, nil
}

func (r *PostgresBillsRepository) MarkBillPaid(ctx context.Context, id string, now time.Time) (*domain.Bill, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	row := r.db.QueryRowContext(ctx, `
		UPDATE maintenance_bills AS b
		SET status = 'paid', paid_at = $2, updated_at = $2
		WHERE b.id = $1
		RETURNING `+billColumns,
		id, now,
	)
	b, err := scanBill(row)
	if err != nil {
		return nil, mapError("mark bill paid", err)
	}
	return b, nil
}
