package domain

import "time"

// Business models a merchant account on the platform.
type Business struct {
	ID                 string
	OwnerUserID        string
	Name               string
	BusinessType       string
	Phone              string
	Address            string
	Email              string
	SubscriptionPlan   string
	CashbackPercentage float64
	ReferralLevel1Pct  float64
	ReferralLevel2Pct  float64
	ReferralLevel3Pct  float64
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Membership is a business_users row: one identity operating one business
// under a given role.
type Membership struct {
	ID         string
	BusinessID string
	UserID     string
	Role       BusinessRole
	CreatedAt  time.Time
}
