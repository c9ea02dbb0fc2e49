package domain

import "time"

// AdminStats society-wide totals
type AdminStats struct {
	TotalResidents    int
	PendingComplaints int
	TotalCollected    Money // sum of paid bills
	TotalPending      Money // sum of pending bills
}

// ResidentStats totals for one account
type ResidentStats struct {
	MyBalance         Money      // sum of own pending bills
	LastPayment       Money      // amount of the most recently updated paid bill
	LastPaymentDate   *time.Time // nil when nothing was paid yet
	PendingComplaints int
}
