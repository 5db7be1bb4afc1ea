package domain

import "time"

// Customer is the loyalty-program participant record tied to an identity.
type Customer struct {
	ID                   string
	UserID               string
	FirstName            string
	LastName             string
	Phone                string
	ReferralCode         string
	ReferredByCode       *string
	ReferredByCustomerID *string
	CreatedAt            time.Time
	UpdatedAt            time.Time
}
