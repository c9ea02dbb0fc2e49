package repository

import (
	"context"

	"github.com/jaysurani18/smart-society/internal/domain"
)

// ComplaintsRepository complaints table
type ComplaintsRepository interface {
	CreateComplaint(ctx context.Context, complaint *domain.Complaint) (*domain.Complaint, error)
	GetComplaint(ctx context.Context, id string) (*domain.Complaint, error)
	// ListComplaints newest first, joined with the filer's name, wing and flat.
	ListComplaints(ctx context.Context, scope Scope) ([]*domain.ComplaintWithOwner, error)
	UpdateComplaintStatus(ctx context.Context, id string, status domain.ComplaintStatus) (*domain.Complaint, error)
	DeleteComplaint(ctx context.Context, id string) error
}
