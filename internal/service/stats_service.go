package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jaysurani18/smart-society/internal/domain"
	"github.com/jaysurani18/smart-society/internal/repository"

	"go.uber.org/zap"
)

// StatsService dashboard aggregates
type StatsService interface {
	Dashboard(ctx context.Context, caller Caller) (*Dashboard, error)
}

type AdminDashboard struct {
	Type           string       `json:"type"`
	TotalResidents int          `json:"totalResidents"`
	ActiveIssues   int          `json:"activeIssues"`
	TotalCollected domain.Money `json:"totalCollected"`
	TotalPending   domain.Money `json:"totalPending"`
}

type ResidentDashboard struct {
	Type            string       `json:"type"`
	MyBalance       domain.Money `json:"myBalance"`
	LastPayment     domain.Money `json:"lastPayment"`
	LastPaymentDate *time.Time   `json:"lastPaymentDate"`
	ActiveIssues    int          `json:"activeIssues"`
}

// Dashboard holds exactly one of Admin or Resident, chosen by the caller's role.
type Dashboard struct {
	Admin    *AdminDashboard
	Resident *ResidentDashboard
}

// MarshalJSON flattens the populated variant.
func (d *Dashboard) MarshalJSON() ([]byte, error) {
	if d.Admin != nil {
		return json.Marshal(d.Admin)
	}
	if d.Resident != nil {
		return json.Marshal(d.Resident)
	}
	return []byte("null"), nil
}

type statsService struct {
	stats  repository.StatsRepository
	policy *Policy
	logger *zap.Logger
}

func NewStatsService(stats repository.StatsRepository, policy *Policy, logger *zap.Logger) StatsService {
	return &statsService{stats: stats, policy: policy, logger: logger}
}

func (s *statsService) Dashboard(ctx context.Context, caller Caller) (*Dashboard, error) {
	if err := s.policy.Authorize(caller, OpViewDashboard); err != nil {
		return nil, err
	}

	if caller.IsAdmin() {
		st, err := s.stats.AdminStats(ctx)
		if err != nil {
			return nil, fmt.Errorf("admin stats: %w", err)
		}
		return &Dashboard{Admin: &AdminDashboard{
			Type:           string(domain.RoleAdmin),
			TotalResidents: st.TotalResidents,
			ActiveIssues:   st.PendingComplaints,
			TotalCollected: st.TotalCollected,
			TotalPending:   st.TotalPending,
		}}, nil
	}

	st, err := s.stats.ResidentStats(ctx, caller.ID)
	if err != nil {
		return nil, fmt.Errorf("resident stats: %w", err)
	}
	return &Dashboard{Resident: &ResidentDashboard{
		Type:            string(domain.RoleResident),
		MyBalance:       st.MyBalance,
		LastPayment:     st.LastPayment,
		LastPaymentDate: st.LastPaymentDate,
		ActiveIssues:    st.PendingComplaints,
	}}, nil
}
