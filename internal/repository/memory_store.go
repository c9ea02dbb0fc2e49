package repository

import (
	"context"
	"database/sql"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jaysurani18/smart-society/internal/domain"
)

// MemoryStore backs every repository interface with process memory.
// Used when no database is configured (local dev) and by service tests.
type MemoryStore struct {
	mu         sync.RWMutex
	seq        int64
	order      map[string]int64 // insertion order, newest-first tie breaker
	accounts   map[string]*domain.Account
	bills      map[string]*domain.Bill
	complaints map[string]*domain.Complaint
	notices    map[string]*domain.Notice
	now        func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		order:      map[string]int64{},
		accounts:   map[string]*domain.Account{},
		bills:      map[string]*domain.Bill{},
		complaints: map[string]*domain.Complaint{},
		notices:    map[string]*domain.Notice{},
		now:        time.Now,
	}
}

var (
	_ AccountsRepository   = (*MemoryStore)(nil)
	_ BillsRepository      = (*MemoryStore)(nil)
	_ ComplaintsRepository = (*MemoryStore)(nil)
	_ NoticesRepository    = (*MemoryStore)(nil)
	_ StatsRepository      = (*MemoryStore)(nil)
)

func (m *MemoryStore) track(id string) {
	m.seq++
	m.order[id] = m.seq
}

// newerFirst orders by timestamp desc, then insertion desc.
func (m *MemoryStore) newerFirst(ta, tb time.Time, ida, idb string) bool {
	if !ta.Equal(tb) {
		return ta.After(tb)
	}
	return m.order[ida] > m.order[idb]
}

// --- accounts ---

func (m *MemoryStore) GetAccount(_ context.Context, id string) (*domain.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.accounts[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *MemoryStore) GetAccountByEmail(_ context.Context, email string) (*domain.Account, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, a := range m.accounts {
		if a.Email == email {
			cp := *a
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) ListAccounts(_ context.Context, filters AccountFilters) ([]*domain.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []*domain.Account{}
	for _, a := range m.accounts {
		if filters.Role != "" && a.Role != filters.Role {
			continue
		}
		cp := *a
		out = append(out, &cp)
	}
	// NULL wing/flat sort last, as in postgres ASC order
	sort.Slice(out, func(i, j int) bool {
		if c := compareNullable(out[i].Wing, out[j].Wing); c != 0 {
			return c < 0
		}
		if c := compareNullable(out[i].FlatNumber, out[j].FlatNumber); c != 0 {
			return c < 0
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func compareNullable(a, b sql.NullString) int {
	switch {
	case a.Valid && b.Valid:
		return strings.Compare(a.String, b.String)
	case a.Valid:
		return -1
	case b.Valid:
		return 1
	}
	return 0
}

func (m *MemoryStore) CountAccounts(ctx context.Context, filters AccountFilters) (int, error) {
	list, err := m.ListAccounts(ctx, filters)
	if err != nil {
		return 0, err
	}
	return len(list), nil
}

func (m *MemoryStore) CreateAccount(_ context.Context, account *domain.Account) (*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.insertAccountLocked(account)
}

func (m *MemoryStore) CreateFirstAdmin(_ context.Context, account *domain.Account) (*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.accounts {
		if a.Role == domain.RoleAdmin {
			return nil, ErrAdminExists
		}
	}
	cp := *account
	cp.Role = domain.RoleAdmin
	return m.insertAccountLocked(&cp)
}

// insertAccountLocked caller holds m.mu.
func (m *MemoryStore) insertAccountLocked(account *domain.Account) (*domain.Account, error) {
	email := strings.ToLower(strings.TrimSpace(account.Email))
	for _, a := range m.accounts {
		if a.Email == email {
			return nil, ErrDuplicate
		}
		if account.InvitationTokenHash.Valid && a.InvitationTokenHash == account.InvitationTokenHash {
			return nil, ErrDuplicate
		}
	}

	cp := *account
	if cp.ID == "" {
		cp.ID = uuid.NewString()
	}
	cp.Email = email
	now := m.now()
	cp.CreatedAt, cp.UpdatedAt = now, now
	m.accounts[cp.ID] = &cp
	m.track(cp.ID)

	out := cp
	return &out, nil
}

func (m *MemoryStore) UpdateProfile(_ context.Context, id string, update ProfileUpdate) (*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[id]
	if !ok {
		return nil, ErrNotFound
	}
	if update.Name != nil {
		a.Name = *update.Name
	}
	if update.Wing != nil {
		a.Wing = nullString(*update.Wing)
	}
	if update.FlatNumber != nil {
		a.FlatNumber = nullString(*update.FlatNumber)
	}
	a.UpdatedAt = m.now()
	cp := *a
	return &cp, nil
}

func (m *MemoryStore) UpdateRole(_ context.Context, id string, role domain.Role) (*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[id]
	if !ok {
		return nil, ErrNotFound
	}
	a.Role = role
	a.UpdatedAt = m.now()
	cp := *a
	return &cp, nil
}

func (m *MemoryStore) ActivateAccount(_ context.Context, tokenHash, passwordHash string, now time.Time) (*domain.Account, error) {
	if tokenHash == "" {
		return nil, ErrNotFound
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.accounts {
		if a.IsSetup || !a.InvitationTokenHash.Valid || a.InvitationTokenHash.String != tokenHash {
			continue
		}
		if a.InvitationExpiresAt.Valid && !a.InvitationExpiresAt.Time.After(now) {
			return nil, ErrNotFound
		}
		a.PasswordHash = passwordHash
		a.InvitationTokenHash = sql.NullString{}
		a.InvitationExpiresAt = sql.NullTime{}
		a.IsSetup = true
		a.UpdatedAt = now
		cp := *a
		return &cp, nil
	}
	return nil, ErrNotFound
}

// DeleteAccount cascades to the account's bills and complaints.
func (m *MemoryStore) DeleteAccount(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.accounts[id]; !ok {
		return ErrNotFound
	}
	delete(m.accounts, id)
	for bid, b := range m.bills {
		if b.UserID == id {
			delete(m.bills, bid)
		}
	}
	for cid, c := range m.complaints {
		if c.UserID == id {
			delete(m.complaints, cid)
		}
	}
	return nil
}

// --- bills ---

func (m *MemoryStore) CreateBill(_ context.Context, bill *domain.Bill) (*domain.Bill, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.accounts[bill.UserID]; !ok {
		return nil, ErrNotFound
	}
	cp := *bill
	if cp.ID == "" {
		cp.ID = uuid.NewString()
	}
	if cp.Status == "" {
		cp.Status = domain.BillPending
	}
	now := m.now()
	cp.CreatedAt, cp.UpdatedAt = now, now
	m.bills[cp.ID] = &cp
	m.track(cp.ID)
	out := cp
	return &out, nil
}

func (m *MemoryStore) GetBill(_ context.Context, id string) (*domain.Bill, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.bills[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (m *MemoryStore) ListBills(_ context.Context, scope Scope) ([]*domain.BillWithOwner, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []*domain.BillWithOwner{}
	for _, b := range m.bills {
		if !scope.includes(b.UserID) {
			continue
		}
		item := &domain.BillWithOwner{Bill: *b}
		if a, ok := m.accounts[b.UserID]; ok {
			item.OwnerName = a.Name
			item.OwnerEmail = a.Email
		}
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool {
		return m.newerFirst(out[i].CreatedAt, out[j].CreatedAt, out[i].ID, out[j].ID)
	})
	return out, nil
}

func (m *MemoryStore) MarkBillPaid(_ context.Context, id string, now time.Time) (*domain.Bill, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bills[id]
	if !ok {
		return nil, ErrNotFound
	}
	b.Status = domain.BillPaid
	b.PaidAt = sql.NullTime{Time: now, Valid: true}
	b.UpdatedAt = now
	cp := *b
	return &cp, nil
}

// --- complaints ---

func (m *MemoryStore) CreateComplaint(_ context.Context, complaint *domain.Complaint) (*domain.Complaint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.accounts[complaint.UserID]; !ok {
		return nil, ErrNotFound
	}
	cp := *complaint
	if cp.ID == "" {
		cp.ID = uuid.NewString()
	}
	if cp.Status == "" {
		cp.Status = domain.ComplaintPending
	}
	now := m.now()
	cp.CreatedAt, cp.UpdatedAt = now, now
	m.complaints[cp.ID] = &cp
	m.track(cp.ID)
	out := cp
	return &out, nil
}

func (m *MemoryStore) GetComplaint(_ context.Context, id string) (*domain.Complaint, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.complaints[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *MemoryStore) ListComplaints(_ context.Context, scope Scope) ([]*domain.ComplaintWithOwner, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []*domain.ComplaintWithOwner{}
	for _, c := range m.complaints {
		if !scope.includes(c.UserID) {
			continue
		}
		item := &domain.ComplaintWithOwner{Complaint: *c}
		if a, ok := m.accounts[c.UserID]; ok {
			item.OwnerName = a.Name
			item.OwnerWing = a.Wing
			item.OwnerFlatNumber = a.FlatNumber
		}
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool {
		return m.newerFirst(out[i].CreatedAt, out[j].CreatedAt, out[i].ID, out[j].ID)
	})
	return out, nil
}

func (m *MemoryStore) UpdateComplaintStatus(_ context.Context, id string, status domain.ComplaintStatus) (*domain.Complaint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.complaints[id]
	if !ok {
		return nil, ErrNotFound
	}
	c.Status = status
	c.UpdatedAt = m.now()
	cp := *c
	return &cp, nil
}

func (m *MemoryStore) DeleteComplaint(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.complaints[id]; !ok {
		return ErrNotFound
	}
	delete(m.complaints, id)
	return nil
}

// --- notices ---

func (m *MemoryStore) CreateNotice(_ context.Context, notice *domain.Notice) (*domain.Notice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *notice
	if cp.ID == "" {
		cp.ID = uuid.NewString()
	}
	if cp.Type == "" {
		cp.Type = domain.NoticeAlert
	}
	now := m.now()
	if cp.Date.IsZero() {
		y, mo, d := now.Date()
		cp.Date = time.Date(y, mo, d, 0, 0, 0, 0, time.UTC)
	}
	cp.CreatedAt = now
	m.notices[cp.ID] = &cp
	m.track(cp.ID)
	out := cp
	return &out, nil
}

func (m *MemoryStore) ListNotices(_ context.Context) ([]*domain.Notice, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []*domain.Notice{}
	for _, n := range m.notices {
		cp := *n
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		return m.newerFirst(out[i].CreatedAt, out[j].CreatedAt, out[i].ID, out[j].ID)
	})
	return out, nil
}

func (m *MemoryStore) DeleteNotice(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.notices[id]; !ok {
		return ErrNotFound
	}
	delete(m.notices, id)
	return nil
}

// --- stats ---

func (m *MemoryStore) AdminStats(_ context.Context) (*domain.AdminStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var s domain.AdminStats
	for _, a := range m.accounts {
		if a.Role == domain.RoleResident {
			s.TotalResidents++
		}
	}
	for _, c := range m.complaints {
		if c.Status == domain.ComplaintPending {
			s.PendingComplaints++
		}
	}
	for _, b := range m.bills {
		switch b.Status {
		case domain.BillPaid:
			s.TotalCollected += b.Amount
		case domain.BillPending:
			s.TotalPending += b.Amount
		}
	}
	return &s, nil
}

func (m *MemoryStore) ResidentStats(_ context.Context, accountID string) (*domain.ResidentStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var s domain.ResidentStats
	var last *domain.Bill
	for _, b := range m.bills {
		if b.UserID != accountID {
			continue
		}
		switch b.Status {
		case domain.BillPending:
			s.MyBalance += b.Amount
		case domain.BillPaid:
			if last == nil || b.UpdatedAt.After(last.UpdatedAt) ||
				(b.UpdatedAt.Equal(last.UpdatedAt) && b.ID > last.ID) {
				last = b
			}
		}
	}
	if last != nil {
		at := last.UpdatedAt
		s.LastPayment = last.Amount
		s.LastPaymentDate = &at
	}
	for _, c := range m.complaints {
		if c.UserID == accountID && c.Status == domain.ComplaintPending {
			s.PendingComplaints++
		}
	}
	return &s, nil
}
