package domain

import (
	"database/sql"
	"time"
)

// BillStatus maintenance bill state. Transitions are admin-driven only.
type BillStatus string

const (
	BillPending BillStatus = "pending"
	BillPaid    BillStatus = "paid"
	BillOverdue BillStatus = "overdue"
)

// DateLayout is the wire and column format for calendar dates.
const DateLayout = "2006-01-02"

// Bill maps the maintenance_bills table.
type Bill struct {
	ID      string     `db:"id"`
	UserID  string     `db:"user_id"`
	Amount  Money      `db:"amount"`
	Month   string     `db:"month"` // free text, e.g. "March 2026"
	DueDate time.Time  `db:"due_date"`
	Penalty Money      `db:"penalty"`
	Status  BillStatus `db:"status"`

	CreatedAt time.Time    `db:"created_at"`
	UpdatedAt time.Time    `db:"updated_at"`
	PaidAt    sql.NullTime `db:"paid_at"`
}

// BillWithOwner is a bill joined with its owner's name and email.
type BillWithOwner struct {
	Bill
	OwnerName  string
	OwnerEmail string
}
