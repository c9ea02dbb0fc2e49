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

// BillService maintenance bills
type BillService interface {
	MyBills(ctx context.Context, caller Caller) ([]*BillDTO, error)
	ListAll(ctx context.Context, caller Caller) ([]*BillDTO, error)
	Create(ctx context.Context, caller Caller, req CreateBillRequest) (*BillDTO, error)
	MarkPaid(ctx context.Context, caller Caller, id string) (*BillDTO, error)
}

type billService struct {
	bills    repository.BillsRepository
	accounts repository.AccountsRepository
	policy   *Policy
	logger   *zap.Logger
	now      func() time.Time
}

func NewBillService(bills repository.BillsRepository, accounts repository.AccountsRepository, policy *Policy, logger *zap.Logger) BillService {
	return &billService{
		bills:    bills,
		accounts: accounts,
		policy:   policy,
		logger:   logger,
		now:      time.Now,
	}
}

// MyBills the caller's own bills, newest first, whatever the role.
func (s *billService) MyBills(ctx context.Context, caller Caller) ([]*BillDTO, error) {
	if err := s.policy.Authorize(caller, OpListOwnBills); err != nil {
		return nil, err
	}
	return s.list(ctx, repository.OwnedBy(caller.ID), false)
}

// ListAll every bill with its owner's name and email.
func (s *billService) ListAll(ctx context.Context, caller Caller) ([]*BillDTO, error) {
	if err := s.policy.Authorize(caller, OpListAllBills); err != nil {
		return nil, err
	}
	return s.list(ctx, repository.ScopeFor(caller.ID, caller.Role), true)
}

func (s *billService) list(ctx context.Context, scope repository.Scope, withOwner bool) ([]*BillDTO, error) {
	rows, err := s.bills.ListBills(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("list bills: %w", err)
	}
	out := make([]*BillDTO, 0, len(rows))
	for _, row := range rows {
		dto := toBillDTO(&row.Bill)
		if withOwner {
			dto.User = &BillOwnerDTO{Name: row.OwnerName, Email: row.OwnerEmail}
		}
		out = append(out, dto)
	}
	return out, nil
}

type CreateBillRequest struct {
	UserID  string
	Amount  domain.Money
	Month   string
	DueDate string // YYYY-MM-DD
	Penalty domain.Money
}

// Create issues a pending bill to an existing account.
func (s *billService) Create(ctx context.Context, caller Caller, req CreateBillRequest) (*BillDTO, error) {
	if err := s.policy.Authorize(caller, OpCreateBill); err != nil {
		return nil, err
	}

	month := strings.TrimSpace(req.Month)
	switch {
	case strings.TrimSpace(req.UserID) == "":
		return nil, validationError("Resident is required")
	case req.Amount <= 0:
		return nil, validationError("Amount must be greater than zero")
	case req.Amount > maxAmount:
		return nil, validationError("Amount cannot exceed %s", maxAmount)
	case req.Penalty < 0:
		return nil, validationError("Penalty cannot be negative")
	case req.Penalty > maxAmount:
		return nil, validationError("Penalty cannot exceed %s", maxAmount)
	case month == "":
		return nil, validationError("Month is required")
	}
	if err := checkLength("Month", month, maxMonthLength); err != nil {
		return nil, err
	}
	due, err := time.Parse(domain.DateLayout, strings.TrimSpace(req.DueDate))
	if err != nil {
		return nil, validationError("Due date must be YYYY-MM-DD")
	}

	if _, err := s.accounts.GetAccount(ctx, req.UserID); errors.Is(err, repository.ErrNotFound) {
		return nil, ErrAccountNotFound
	} else if err != nil {
		return nil, fmt.Errorf("create bill lookup: %w", err)
	}

	bill, err := s.bills.CreateBill(ctx, &domain.Bill{
		UserID:  req.UserID,
		Amount:  req.Amount,
		Month:   month,
		DueDate: due,
		Penalty: req.Penalty,
		Status:  domain.BillPending,
	})
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, wrapStoreError("create bill", err)
	}

	s.logger.Info("Bill generated",
		zap.String("bill_id", bill.ID),
		zap.String("user_id", bill.UserID),
		zap.String("amount", bill.Amount.String()),
		zap.String("created_by", caller.ID),
	)
	return toBillDTO(bill), nil
}

// MarkPaid is idempotent: an already paid bill is returned unchanged.
func (s *billService) MarkPaid(ctx context.Context, caller Caller, id string) (*BillDTO, error) {
	if err := s.policy.Authorize(caller, OpMarkBillPaid); err != nil {
		return nil, err
	}

	current, err := s.bills.GetBill(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrBillNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get bill: %w", err)
	}
	if current.Status == domain.BillPaid {
		return toBillDTO(current), nil
	}

	bill, err := s.bills.MarkBillPaid(ctx, id, s.now())
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrBillNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("mark bill paid: %w", err)
	}

	s.logger.Info("Bill marked as paid",
		zap.String("bill_id", bill.ID),
		zap.String("user_id", bill.UserID),
		zap.String("marked_by", caller.ID),
	)
	return toBillDTO(bill), nil
}
