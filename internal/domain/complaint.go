package domain

import (
	"database/sql"
	"time"
)

// ComplaintStatus complaint lifecycle
type ComplaintStatus string

const (
	ComplaintPending    ComplaintStatus = "pending"
	ComplaintInProgress ComplaintStatus = "in-progress"
	ComplaintResolved   ComplaintStatus = "resolved"
)

func ParseComplaintStatus(s string) (ComplaintStatus, bool) {
	switch ComplaintStatus(s) {
	case ComplaintPending, ComplaintInProgress, ComplaintResolved:
		return ComplaintStatus(s), true
	}
	return "", false
}

// Complaint maps the complaints table.
type Complaint struct {
	ID          string          `db:"id"`
	UserID      string          `db:"user_id"`
	Title       string          `db:"title"`
	Description string          `db:"description"`
	ImageURL    sql.NullString  `db:"image_url"`
	Status      ComplaintStatus `db:"status"`
	CreatedAt   time.Time       `db:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at"`
}

// ComplaintWithOwner adds the filer's display fields.
type ComplaintWithOwner struct {
	Complaint
	OwnerName       string
	OwnerWing       sql.NullString
	OwnerFlatNumber sql.NullString
}
