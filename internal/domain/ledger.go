package domain

import "time"

// TransactionStatus tracks the lifecycle of a recorded sale.
type TransactionStatus string

const (
	TransactionStatusCompleted TransactionStatus = "completed"
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusCancelled TransactionStatus = "cancelled"
)

// Transaction is a sale recorded by a business for a customer, with the
// cashback credited for it.
type Transaction struct {
	ID             string
	CustomerID     string
	BusinessID     string
	Amount         float64
	CashbackAmount float64
	Status         TransactionStatus
	CreatedAt      time.Time
}

// CustomerBalance aggregates a customer's cashback position with one business.
type CustomerBalance struct {
	ID               string
	CustomerID       string
	BusinessID       string
	AvailableBalance float64
	TotalEarned      float64
	TotalRedeemed    float64
	UpdatedAt        time.Time
}

// ReferralEarning is a commission row paid to an upstream referrer. Rows are
// written by the settlement pipeline outside this service; here they are only
// read and aggregated.
type ReferralEarning struct {
	ID                 string
	ReferrerCustomerID string
	ReferredCustomerID string
	BusinessID         string
	TransactionID      string
	Level              int
	Amount             float64
	CreatedAt          time.Time
}
