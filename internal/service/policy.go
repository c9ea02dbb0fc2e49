package service

import "github.com/jaysurani18/smart-society/internal/domain"

// Operation names an authorization-checked action.
type Operation string

const (
	OpViewProfile   Operation = "account.view_profile"
	OpUpdateProfile Operation = "account.update_profile"
	OpInvite        Operation = "account.invite"
	OpListAccounts  Operation = "account.list"
	OpDeleteAccount Operation = "account.delete"
	OpChangeRole    Operation = "account.change_role"
	OpLogout        Operation = "account.logout"

	OpListOwnBills  Operation = "bill.list_own"
	OpListResidents Operation = "bill.list_residents"
	OpCreateBill    Operation = "bill.create"
	OpListAllBills  Operation = "bill.list_all"
	OpMarkBillPaid  Operation = "bill.mark_paid"

	OpFileComplaint         Operation = "complaint.file"
	OpListComplaints        Operation = "complaint.list"
	OpUpdateComplaintStatus Operation = "complaint.update_status"
	OpDeleteComplaint       Operation = "complaint.delete"

	OpListNotices  Operation = "notice.list"
	OpCreateNotice Operation = "notice.create"
	OpDeleteNotice Operation = "notice.delete"

	OpViewDashboard Operation = "stats.dashboard"
)

var (
	anyRole   = []domain.Role{domain.RoleAdmin, domain.RoleResident}
	adminOnly = []domain.Role{domain.RoleAdmin}
)

// Policy maps each operation to the roles allowed to perform it.
// Operations missing from the table are denied.
type Policy struct {
	rules map[Operation][]domain.Role
}

func DefaultPolicy() *Policy {
	return &Policy{rules: map[Operation][]domain.Role{
		OpViewProfile:   anyRole,
		OpUpdateProfile: anyRole,
		OpLogout:        anyRole,
		OpInvite:        adminOnly,
		OpListAccounts:  adminOnly,
		OpDeleteAccount: adminOnly,
		OpChangeRole:    adminOnly,

		OpListOwnBills:  anyRole,
		OpListResidents: adminOnly,
		OpCreateBill:    adminOnly,
		OpListAllBills:  adminOnly,
		OpMarkBillPaid:  adminOnly,

		OpFileComplaint:         anyRole,
		OpListComplaints:        anyRole, // rows are ownership-scoped
		OpUpdateComplaintStatus: adminOnly,
		OpDeleteComplaint:       adminOnly,

		OpListNotices:  anyRole,
		OpCreateNotice: adminOnly,
		OpDeleteNotice: adminOnly,

		OpViewDashboard: anyRole,
	}}
}

func (p *Policy) Allows(role domain.Role, op Operation) bool {
	for _, r := range p.rules[op] {
		if r == role {
			return true
		}
	}
	return false
}

// Authorize fails with ErrUnauthenticated for an empty caller and ErrForbidden
// when the caller's role may not perform op.
func (p *Policy) Authorize(c Caller, op Operation) error {
	if c.ID == "" {
		return ErrUnauthenticated
	}
	if !p.Allows(c.Role, op) {
		return ErrForbidden
	}
	return nil
}
