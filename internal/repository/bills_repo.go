package repository

import (
	"context"
	"time"

	"github.com/jaysurani18/smart-society/internal/domain"
)

// BillsRepository maintenance_bills table
type BillsRepository interface {
	CreateBill(ctx context.Context, bill *domain.Bill) (*domain.Bill, error)
	GetBill(ctx context.Context, id string) (*domain.Bill, error)
	// ListBills newest first, joined with the owner's name and email.
	ListBills(ctx context.Context, scope Scope) ([]*domain.BillWithOwner, error)
	// MarkBillPaid sets status=paid and paid_at=now. ErrNotFound for unknown ids.
	MarkBillPaid(ctx context.Context, id string, now time.Time) (*domain.Bill, error)
}
