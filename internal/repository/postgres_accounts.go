package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jaysurani18/smart-society/internal/domain"
)

// PostgresAccountsRepository AccountsRepository over the users table
type PostgresAccountsRepository struct {
	db *sql.DB
}

func NewPostgresAccountsRepository(db *sql.DB) *PostgresAccountsRepository {
	return &PostgresAccountsRepository{db: db}
}

var _ AccountsRepository = (*PostgresAccountsRepository)(nil)

const accountColumns = `
	id::text,
	name,
	email,
	role,
	wing,
	flat_number,
	password_hash,
	invitation_token_hash,
	invitation_expires_at,
	is_setup,
	created_at,
	updated_at`

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (*domain.Account, error) {
	var a domain.Account
	var role string
	err := row.Scan(
		&a.ID,
		&a.Name,
		&a.Email,
		&role,
		&a.Wing,
		&a.FlatNumber,
		&a.PasswordHash,
		&a.InvitationTokenHash,
		&a.InvitationExpiresAt,
		&a.IsSetup,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	a.Role = domain.Role(role)
	return &a, nil
}

func (r *PostgresAccountsRepository) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	row := r.db.QueryRowContext(ctx, `SELECT `+accountColumns+` FROM users WHERE id = $1`, id)
	a, err := scanAccount(row)
	if err != nil {
		return nil, mapError("get account", err)
	}
	return a, nil
}

func (r *PostgresAccountsRepository) GetAccountByEmail(ctx context.Context, email string) (*domain.Account, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, ErrNotFound
	}
	row := r.db.QueryRowContext(ctx, `SELECT `+accountColumns+` FROM users WHERE email = $1`, email)
	a, err := scanAccount(row)
	if err != nil {
		return nil, mapError("get account by email", err)
	}
	return a, nil
}

func (r *PostgresAccountsRepository) ListAccounts(ctx context.Context, filters AccountFilters) ([]*domain.Account, error) {
	where, args := accountWhere(filters)
	query := `SELECT ` + accountColumns + ` FROM users` + where +
		` ORDER BY wing ASC, flat_number ASC, name ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError("list accounts", err)
	}
	defer rows.Close()

	out := []*domain.Account{}
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, mapError("scan account", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("list accounts", err)
	}
	return out, nil
}

func (r *PostgresAccountsRepository) CountAccounts(ctx context.Context, filters AccountFilters) (int, error) {
	where, args := accountWhere(filters)
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`+where, args...).Scan(&n); err != nil {
		return 0, mapError("count accounts", err)
	}
	return n, nil
}

func accountWhere(filters AccountFilters) (string, []any) {
	var conds []string
	var args []any
	if filters.Role != "" {
		args = append(args, string(filters.Role))
		conds = append(conds, fmt.Sprintf("role = $%d", len(args)))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// queryRower is satisfied by *sql.DB and *sql.Tx.
type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// firstAdminLockKey advisory lock serializing first-admin registration.
const firstAdminLockKey int64 = 0x736f63696574790a

func insertAccount(ctx context.Context, q queryRower, account *domain.Account) (*domain.Account, error) {
	if account.ID == "" {
		account.ID = uuid.NewString()
	}
	row := q.QueryRowContext(ctx, `
		INSERT INTO users (
			id, name, email, role, wing, flat_number,
			password_hash, invitation_token_hash, invitation_expires_at, is_setup
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING `+accountColumns,
		account.ID,
		account.Name,
		strings.ToLower(strings.TrimSpace(account.Email)),
		string(account.Role),
		account.Wing,
		account.FlatNumber,
		account.PasswordHash,
		account.InvitationTokenHash,
		account.InvitationExpiresAt,
		account.IsSetup,
	)
	return scanAccount(row)
}

func (r *PostgresAccountsRepository) CreateAccount(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	a, err := insertAccount(ctx, r.db, account)
	if err != nil {
		return nil, mapError("create account", err)
	}
	return a, nil
}

func (r *PostgresAccountsRepository) CreateFirstAdmin(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("create first admin: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	// released on commit or rollback
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, firstAdminLockKey); err != nil {
		return nil, fmt.Errorf("create first admin: lock: %w", err)
	}
	var admins int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE role = $1`, string(domain.RoleAdmin)).Scan(&admins); err != nil {
		return nil, fmt.Errorf("create first admin: count: %w", err)
	}
	if admins > 0 {
		return nil, ErrAdminExists
	}

	account.Role = domain.RoleAdmin
	a, err := insertAccount(ctx, tx, account)
	if err != nil {
		return nil, mapError("create first admin", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("create first admin: commit: %w", err)
	}
	return a, nil
}

func (r *PostgresAccountsRepository) UpdateProfile(ctx context.Context, id string, update ProfileUpdate) (*domain.Account, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}

	sets := []string{"updated_at = now()"}
	args := []any{id}
	if update.Name != nil {
		args = append(args, *update.Name)
		sets = append(sets, fmt.Sprintf("name = $%d", len(args)))
	}
	if update.Wing != nil {
		args = append(args, nullString(*update.Wing))
		sets = append(sets, fmt.Sprintf("wing = $%d", len(args)))
	}
	if update.FlatNumber != nil {
		args = append(args, nullString(*update.FlatNumber))
		sets = append(sets, fmt.Sprintf("flat_number = $%d", len(args)))
	}

	row := r.db.QueryRowContext(ctx,
		`UPDATE users SET `+strings.Join(sets, ", ")+` WHERE id = $1 RETURNING `+accountColumns,
		args...,
	)
	a, err := scanAccount(row)
	if err != nil {
		return nil, mapError("update profile", err)
	}
	return a, nil
}

func (r *PostgresAccountsRepository) UpdateRole(ctx context.Context, id string, role domain.Role) (*domain.Account, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	row := r.db.QueryRowContext(ctx,
		`UPDATE users SET role = $2, updated_at = now() WHERE id = $1 RETURNING `+accountColumns,
		id, string(role),
	)
	a, err := scanAccount(row)
	if err != nil {
		return nil, mapError("update role", err)
	}
	return a, nil
}

func (r *PostgresAccountsRepository) ActivateAccount(ctx context.Context, tokenHash, passwordHash string, now time.Time) (*domain.Account, error) {
	if tokenHash == "" {
		return nil, ErrNotFound
	}
	row := r.db.QueryRowContext(ctx, `
		UPDATE users
		SET password_hash = $2,
		    invitation_token_hash = NULL,
		    invitation_expires_at = NULL,
		    is_setup = TRUE,
		    updated_at = $3
		WHERE invitation_token_hash = $1
		  AND is_setup = FALSE
		  AND (invitation_expires_at IS NULL OR invitation_expires_at > $3)
		RETURNING `+accountColumns,
		tokenHash, passwordHash, now,
	)
	a, err := scanAccount(row)
	if err != nil {
		return nil, mapError("activate account", err)
	}
	return a, nil
}

func (r *PostgresAccountsRepository) DeleteAccount(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrNotFound
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return mapError("delete account", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return mapError("delete account", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func nullString(s string) sql.NullString {
	s = strings.TrimSpace(s)
	return sql.NullString{String: s, Valid: s != ""}
}
