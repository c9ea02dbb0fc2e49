package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/jaysurani18/smart-society/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedAccount(t *testing.T, m *MemoryStore, name, email string, role domain.Role) *domain.Account {
	t.Helper()
	a, err := m.CreateAccount(context.Background(), &domain.Account{
		Name:         name,
		Email:        email,
		Role:         role,
		PasswordHash: "hash",
		IsSetup:      true,
	})
	require.NoError(t, err)
	return a
}

func TestMemoryStore_UniqueEmail(t *testing.T) {
	m := NewMemoryStore()
	seedAccount(t, m, "Asha", "asha@example.com", domain.RoleResident)

	_, err := m.CreateAccount(context.Background(), &domain.Account{Name: "Other", Email: "ASHA@example.com"})
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestMemoryStore_CreateFirstAdmin(t *testing.T) {
	m := NewMemoryStore()
	ctx := context.Background()

	a, err := m.CreateFirstAdmin(ctx, &domain.Account{Name: "Admin", Email: "admin@society.test", Role: domain.RoleResident})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, a.Role)

	_, err = m.CreateFirstAdmin(ctx, &domain.Account{Name: "Second", Email: "second@society.test"})
	assert.ErrorIs(t, err, ErrAdminExists)

	n, err := m.CountAccounts(ctx, AccountFilters{})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestMemoryStore_ActivateOnce(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	now := time.Now()
	_, err := m.CreateAccount(ctx, &domain.Account{
		Name:                "Ravi",
		Email:               "ravi@example.com",
		Role:                domain.RoleResident,
		PasswordHash:        domain.PasswordNotSet,
		InvitationTokenHash: sql.NullString{String: "h1", Valid: true},
		InvitationExpiresAt: sql.NullTime{Time: now.Add(time.Hour), Valid: true},
	})
	require.NoError(t, err)

	a, err := m.ActivateAccount(ctx, "h1", "bcrypt", now)
	require.NoError(t, err)
	assert.True(t, a.IsSetup)
	assert.Equal(t, "bcrypt", a.PasswordHash)
	assert.False(t, a.InvitationTokenHash.Valid)

	_, err = m.ActivateAccount(ctx, "h1", "other", now)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_ActivateExpired(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	now := time.Now()
	_, err := m.CreateAccount(ctx, &domain.Account{
		Name:                "Ravi",
		Email:               "ravi@example.com",
		Role:                domain.RoleResident,
		PasswordHash:        domain.PasswordNotSet,
		InvitationTokenHash: sql.NullString{String: "h1", Valid: true},
		InvitationExpiresAt: sql.NullTime{Time: now.Add(-time.Minute), Valid: true},
	})
	require.NoError(t, err)

	_, err = m.ActivateAccount(ctx, "h1", "bcrypt", now)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_ScopedListings(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	admin := seedAccount(t, m, "Admin", "admin@example.com", domain.RoleAdmin)
	r1 := seedAccount(t, m, "R1", "r1@example.com", domain.RoleResident)
	r2 := seedAccount(t, m, "R2", "r2@example.com", domain.RoleResident)

	for _, owner := range []string{r1.ID, r2.ID, r2.ID} {
		_, err := m.CreateBill(ctx, &domain.Bill{UserID: owner, Amount: 100, Month: "Jan"})
		require.NoError(t, err)
		_, err = m.CreateComplaint(ctx, &domain.Complaint{UserID: owner, Title: "Leak"})
		require.NoError(t, err)
	}

	bills, err := m.ListBills(ctx, ScopeFor(r1.ID, domain.RoleResident))
	require.NoError(t, err)
	require.Len(t, bills, 1)
	assert.Equal(t, r1.ID, bills[0].UserID)
	assert.Equal(t, "R1", bills[0].OwnerName)

	bills, err = m.ListBills(ctx, ScopeFor(admin.ID, domain.RoleAdmin))
	require.NoError(t, err)
	assert.Len(t, bills, 3)

	complaints, err := m.ListComplaints(ctx, ScopeFor(r2.ID, domain.RoleResident))
	require.NoError(t, err)
	assert.Len(t, complaints, 2)
	for _, c := range complaints {
		assert.Equal(t, r2.ID, c.UserID)
	}

	complaints, err = m.ListComplaints(ctx, ScopeFor("", domain.RoleResident))
	require.NoError(t, err)
	assert.Empty(t, complaints)
}

func TestMemoryStore_DeleteCascades(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	r := seedAccount(t, m, "R1", "r1@example.com", domain.RoleResident)
	_, err := m.CreateBill(ctx, &domain.Bill{UserID: r.ID, Amount: 100, Month: "Jan"})
	require.NoError(t, err)
	_, err = m.CreateComplaint(ctx, &domain.Complaint{UserID: r.ID, Title: "Noise"})
	require.NoError(t, err)

	require.NoError(t, m.DeleteAccount(ctx, r.ID))

	bills, _ := m.ListBills(ctx, Scope{All: true})
	complaints, _ := m.ListComplaints(ctx, Scope{All: true})
	assert.Empty(t, bills)
	assert.Empty(t, complaints)
	assert.ErrorIs(t, m.DeleteAccount(ctx, r.ID), ErrNotFound)
}

func TestMemoryStore_ListAccountsOrder(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	b := seedAccount(t, m, "B", "b@example.com", domain.RoleResident)
	a := seedAccount(t, m, "A", "a@example.com", domain.RoleResident)
	seedAccount(t, m, "NoFlat", "n@example.com", domain.RoleAdmin)

	wingB, flat := "B", "101"
	_, err := m.UpdateProfile(ctx, b.ID, ProfileUpdate{Wing: &wingB, FlatNumber: &flat})
	require.NoError(t, err)
	wingA := "A"
	_, err = m.UpdateProfile(ctx, a.ID, ProfileUpdate{Wing: &wingA, FlatNumber: &flat})
	require.NoError(t, err)

	list, err := m.ListAccounts(ctx, AccountFilters{})
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "A", list[0].Name)
	assert.Equal(t, "B", list[1].Name)
	assert.Equal(t, "NoFlat", list[2].Name)

	n, err := m.CountAccounts(ctx, AccountFilters{Role: domain.RoleAdmin})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestMemoryStore_Stats(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	r := seedAccount(t, m, "R1", "r1@example.com", domain.RoleResident)

	s, err := m.ResidentStats(ctx, r.ID)
	require.NoError(t, err)
	assert.Nil(t, s.LastPaymentDate)
	assert.Zero(t, s.MyBalance)

	b1, err := m.CreateBill(ctx, &domain.Bill{UserID: r.ID, Amount: 250000, Month: "March 2026"})
	require.NoError(t, err)
	_, err = m.CreateBill(ctx, &domain.Bill{UserID: r.ID, Amount: 1000, Month: "April 2026"})
	require.NoError(t, err)

	paidAt := time.Now()
	_, err = m.MarkBillPaid(ctx, b1.ID, paidAt)
	require.NoError(t, err)

	s, err = m.ResidentStats(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.Money(1000), s.MyBalance)
	assert.Equal(t, domain.Money(250000), s.LastPayment)
	require.NotNil(t, s.LastPaymentDate)
	assert.True(t, paidAt.Equal(*s.LastPaymentDate))

	as, err := m.AdminStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, as.TotalResidents)
	assert.Equal(t, domain.Money(250000), as.TotalCollected)
	assert.Equal(t, domain.Money(1000), as.TotalPending)
}
