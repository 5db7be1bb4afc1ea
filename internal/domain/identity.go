package domain

import "time"

// UserType classifies how an identity signed up.
type UserType string

const (
	UserTypeCustomer UserType = "customer"
	UserTypeBusiness UserType = "business"
)

// Identity is the authenticated account record. Profile data lives in the
// type-specific tables (businesses, customers).
type Identity struct {
	ID           string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Profile links an identity to its declared user type.
type Profile struct {
	ID        string
	UserID    string
	UserType  UserType
	CreatedAt time.Time
}
