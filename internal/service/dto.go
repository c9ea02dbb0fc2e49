package service

import (
	"time"

	"github.com/jaysurani18/smart-society/internal/domain"
)

// AccountDTO is the client view of an account. Credentials never leave the service.
type AccountDTO struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Email      string      `json:"email"`
	Role       domain.Role `json:"role"`
	Wing       *string     `json:"wing"`
	FlatNumber *string     `json:"flatNumber"`
	IsSetup    bool        `json:"isSetup"`
	CreatedAt  time.Time   `json:"createdAt"`
	UpdatedAt  time.Time   `json:"updatedAt"`
}

func toAccountDTO(a *domain.Account) *AccountDTO {
	return &AccountDTO{
		ID:         a.ID,
		Name:       a.Name,
		Email:      a.Email,
		Role:       a.Role,
		Wing:       nullableString(a.Wing.String, a.Wing.Valid),
		FlatNumber: nullableString(a.FlatNumber.String, a.FlatNumber.Valid),
		IsSetup:    a.IsSetup,
		CreatedAt:  a.CreatedAt,
		UpdatedAt:  a.UpdatedAt,
	}
}

// SessionUser is the identity echoed back on login.
type SessionUser struct {
	ID    string      `json:"id"`
	Name  string      `json:"name"`
	Email string      `json:"email"`
	Role  domain.Role `json:"role"`
}

// ResidentOption is one entry of the bill-creation picker.
type ResidentOption struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type BillOwnerDTO struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type BillDTO struct {
	ID        string            `json:"id"`
	UserID    string            `json:"userId"`
	Amount    domain.Money      `json:"amount"`
	Month     string            `json:"month"`
	DueDate   string            `json:"dueDate"`
	Penalty   domain.Money      `json:"penalty"`
	Status    domain.BillStatus `json:"status"`
	PaidAt    *time.Time        `json:"paidAt"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt"`
	User      *BillOwnerDTO     `json:"User,omitempty"`
}

func toBillDTO(b *domain.Bill) *BillDTO {
	dto := &BillDTO{
		ID:        b.ID,
		UserID:    b.UserID,
		Amount:    b.Amount,
		Month:     b.Month,
		DueDate:   b.DueDate.Format(domain.DateLayout),
		Penalty:   b.Penalty,
		Status:    b.Status,
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
	if b.PaidAt.Valid {
		t := b.PaidAt.Time
		dto.PaidAt = &t
	}
	return dto
}

type ComplaintOwnerDTO struct {
	Name       string  `json:"name"`
	Wing       *string `json:"wing"`
	FlatNumber *string `json:"flatNumber"`
}

type ComplaintDTO struct {
	ID          string                 `json:"id"`
	UserID      string                 `json:"userId"`
	Title       string                 `json:"title"`
	Description string                 `json:"description"`
	ImageURL    *string                `json:"imageUrl"`
	Status      domain.ComplaintStatus `json:"status"`
	CreatedAt   time.Time              `json:"createdAt"`
	UpdatedAt   time.Time              `json:"updatedAt"`
	User        *ComplaintOwnerDTO     `json:"User,omitempty"`
}

func toComplaintDTO(c *domain.Complaint) *ComplaintDTO {
	return &ComplaintDTO{
		ID:          c.ID,
		UserID:      c.UserID,
		Title:       c.Title,
		Description: c.Description,
		ImageURL:    nullableString(c.ImageURL.String, c.ImageURL.Valid),
		Status:      c.Status,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

type NoticeDTO struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Type        domain.NoticeType `json:"type"`
	Date        string            `json:"date"`
	CreatedAt   time.Time         `json:"createdAt"`
}

func toNoticeDTO(n *domain.Notice) *NoticeDTO {
	return &NoticeDTO{
		ID:          n.ID,
		Title:       n.Title,
		Description: n.Description,
		Type:        n.Type,
		Date:        n.Date.Format(domain.DateLayout),
		CreatedAt:   n.CreatedAt,
	}
}

func nullableString(s string, valid bool) *string {
	if !valid {
		return nil
	}
	return &s
}
