package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/jaysurani18/smart-society/internal/domain"
	"github.com/jaysurani18/smart-society/internal/repository"
	"github.com/jaysurani18/smart-society/internal/store"

	"go.uber.org/zap"
)

// ImageStore persists complaint attachments and returns their public URL.
type ImageStore interface {
	SaveImage(ctx context.Context, originalName string, r io.Reader) (string, error)
	RemoveImage(ctx context.Context, url string) error
}

// ComplaintService resident complaints
type ComplaintService interface {
	File(ctx context.Context, caller Caller, req FileComplaintRequest) (*ComplaintDTO, error)
	List(ctx context.Context, caller Caller) ([]*ComplaintDTO, error)
	UpdateStatus(ctx context.Context, caller Caller, id string, status string) (*ComplaintDTO, error)
	Delete(ctx context.Context, caller Caller, id string) error
}

type complaintService struct {
	complaints repository.ComplaintsRepository
	images     ImageStore
	policy     *Policy
	logger     *zap.Logger
}

// NewComplaintService images may be nil, in which case attachments are rejected.
func NewComplaintService(complaints repository.ComplaintsRepository, images ImageStore, policy *Policy, logger *zap.Logger) ComplaintService {
	return &complaintService{
		complaints: complaints,
		images:     images,
		policy:     policy,
		logger:     logger,
	}
}

// FileComplaintRequest Image is optional; ImageName is the client-side filename.
type FileComplaintRequest struct {
	Title       string
	Description string
	Image       io.Reader
	ImageName   string
}

func (s *complaintService) File(ctx context.Context, caller Caller, req FileComplaintRequest) (*ComplaintDTO, error) {
	if err := s.policy.Authorize(caller, OpFileComplaint); err != nil {
		return nil, err
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, validationError("Title is required")
	}
	if err := checkLength("Title", title, maxTitleLength); err != nil {
		return nil, err
	}

	var imageURL sql.NullString
	if req.Image != nil {
		if s.images == nil {
			return nil, validationError("Image uploads are disabled")
		}
		url, err := s.images.SaveImage(ctx, req.ImageName, req.Image)
		switch {
		case errors.Is(err, store.ErrUnsupportedImage):
			return nil, validationError("Only jpg, png, gif and webp images are allowed")
		case errors.Is(err, store.ErrImageTooLarge):
			return nil, validationError("Image is too large")
		case err != nil:
			return nil, fmt.Errorf("save complaint image: %w", err)
		}
		imageURL = sql.NullString{String: url, Valid: true}
	}

	c, err := s.complaints.CreateComplaint(ctx, &domain.Complaint{
		UserID:      caller.ID,
		Title:       title,
		Description: strings.TrimSpace(req.Description),
		ImageURL:    imageURL,
		Status:      domain.ComplaintPending,
	})
	if err != nil {
		if imageURL.Valid {
			// the row was never written, so nothing references the file
			if rmErr := s.images.RemoveImage(ctx, imageURL.String); rmErr != nil {
				s.logger.Warn("Failed to remove orphaned complaint image",
					zap.String("image_url", imageURL.String),
					zap.Error(rmErr),
				)
			}
		}
		return nil, wrapStoreError("file complaint", err)
	}

	s.logger.Info("Complaint filed",
		zap.String("complaint_id", c.ID),
		zap.String("user_id", caller.ID),
		zap.Bool("has_image", imageURL.Valid),
	)
	return toComplaintDTO(c), nil
}

// List admins see every complaint, residents only their own.
func (s *complaintService) List(ctx context.Context, caller Caller) ([]*ComplaintDTO, error) {
	if err := s.policy.Authorize(caller, OpListComplaints); err != nil {
		return nil, err
	}
	rows, err := s.complaints.ListComplaints(ctx, repository.ScopeFor(caller.ID, caller.Role))
	if err != nil {
		return nil, fmt.Errorf("list complaints: %w", err)
	}
	out := make([]*ComplaintDTO, 0, len(rows))
	for _, row := range rows {
		dto := toComplaintDTO(&row.Complaint)
		dto.User = &ComplaintOwnerDTO{
			Name:       row.OwnerName,
			Wing:       nullableString(row.OwnerWing.String, row.OwnerWing.Valid),
			FlatNumber: nullableString(row.OwnerFlatNumber.String, row.OwnerFlatNumber.Valid),
		}
		out = append(out, dto)
	}
	return out, nil
}

func (s *complaintService) UpdateStatus(ctx context.Context, caller Caller, id string, status string) (*ComplaintDTO, error) {
	if err := s.policy.Authorize(caller, OpUpdateComplaintStatus); err != nil {
		return nil, err
	}
	parsed, ok := domain.ParseComplaintStatus(strings.TrimSpace(status))
	if !ok {
		return nil, validationError("Invalid status")
	}

	c, err := s.complaints.UpdateComplaintStatus(ctx, id, parsed)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrComplaintNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update complaint status: %w", err)
	}

	s.logger.Info("Complaint status updated",
		zap.String("complaint_id", c.ID),
		zap.String("status", string(c.Status)),
		zap.String("updated_by", caller.ID),
	)
	return toComplaintDTO(c), nil
}

func (s *complaintService) Delete(ctx context.Context, caller Caller, id string) error {
	if err := s.policy.Authorize(caller, OpDeleteComplaint); err != nil {
		return err
	}
	err := s.complaints.DeleteComplaint(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrComplaintNotFound
	}
	if err != nil {
		return fmt.Errorf("delete complaint: %w", err)
	}
	return nil
}
