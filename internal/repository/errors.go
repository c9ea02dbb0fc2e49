package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
	// ErrAdminExists first-admin registration lost to an existing admin.
	ErrAdminExists = errors.New("admin already exists")
	// ErrInvalidValue the store rejected a value (SQLSTATE class 22: too long, out of range).
	ErrInvalidValue = errors.New("invalid value")
)

const (
	pqUniqueViolation = "23505"
	pqDataException   = "22"
)

// mapError translates driver errors into the repository sentinels.
func mapError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch {
		case pqErr.Code == pqUniqueViolation:
			return fmt.Errorf("%s: %w", op, ErrDuplicate)
		case pqErr.Code.Class() == pqDataException:
			return fmt.Errorf("%s: %w: %s", op, ErrInvalidValue, pqErr.Message)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
