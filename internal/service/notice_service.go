package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jaysurani18/smart-society/internal/domain"
	"github.com/jaysurani18/smart-society/internal/repository"

	"go.uber.org/zap"
)

// NoticeService society notice board
type NoticeService interface {
	List(ctx context.Context, caller Caller) ([]*NoticeDTO, error)
	Create(ctx context.Context, caller Caller, req CreateNoticeRequest) (*NoticeDTO, error)
	Delete(ctx context.Context, caller Caller, id string) error
}

type noticeService struct {
	notices   repository.NoticesRepository
	publisher NoticePublisher
	policy    *Policy
	logger    *zap.Logger
}

// NewNoticeService publisher may be nil.
func NewNoticeService(notices repository.NoticesRepository, publisher NoticePublisher, policy *Policy, logger *zap.Logger) NoticeService {
	return &noticeService{
		notices:   notices,
		publisher: publisher,
		policy:    policy,
		logger:    logger,
	}
}

func (s *noticeService) List(ctx context.Context, caller Caller) ([]*NoticeDTO, error) {
	if err := s.policy.Authorize(caller, OpListNotices); err != nil {
		return nil, err
	}
	list, err := s.notices.ListNotices(ctx)
	if err != nil {
		return nil, fmt.Errorf("list notices: %w", err)
	}
	out := make([]*NoticeDTO, 0, len(list))
	for _, n := range list {
		out = append(out, toNoticeDTO(n))
	}
	return out, nil
}

// CreateNoticeRequest Type defaults to alert, Date (YYYY-MM-DD) to today.
type CreateNoticeRequest struct {
	Title       string
	Description string
	Type        string
	Date        string
}

func (s *noticeService) Create(ctx context.Context, caller Caller, req CreateNoticeRequest) (*NoticeDTO, error) {
	if err := s.policy.Authorize(caller, OpCreateNotice); err != nil {
		return nil, err
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, validationError("Title is required")
	}
	if err := checkLength("Title", title, maxTitleLength); err != nil {
		return nil, err
	}

	noticeType := domain.NoticeAlert
	if t := strings.ToLower(strings.TrimSpace(req.Type)); t != "" {
		parsed, ok := domain.ParseNoticeType(t)
		if !ok {
			return nil, validationError("Invalid notice type")
		}
		noticeType = parsed
	}

	notice := &domain.Notice{
		Title:       title,
		Description: strings.TrimSpace(req.Description),
		Type:        noticeType,
	}
	if d := strings.TrimSpace(req.Date); d != "" {
		date, err := time.Parse(domain.DateLayout, d)
		if err != nil {
			return nil, validationError("Date must be YYYY-MM-DD")
		}
		notice.Date = date
	}

	created, err := s.notices.CreateNotice(ctx, notice)
	if err != nil {
		return nil, wrapStoreError("create notice", err)
	}
	dto := toNoticeDTO(created)

	s.logger.Info("Notice posted",
		zap.String("notice_id", created.ID),
		zap.String("type", string(created.Type)),
		zap.String("created_by", caller.ID),
	)

	if s.publisher != nil {
		if err := s.publisher.PublishNotice(ctx, dto); err != nil {
			s.logger.Warn("Failed to broadcast notice",
				zap.String("notice_id", created.ID),
				zap.Error(err),
			)
		}
	}
	return dto, nil
}

func (s *noticeService) Delete(ctx context.Context, caller Caller, id string) error {
	if err := s.policy.Authorize(caller, OpDeleteNotice); err != nil {
		return err
	}
	err := s.notices.DeleteNotice(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNoticeNotFound
	}
	if err != nil {
		return fmt.Errorf("delete notice: %w", err)
	}
	return nil
}
