package events

import (
	"time"

	"github.com/fidelipromo/loyalty-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventCustomerRegistered     EventType = "customer_registered"
	EventBusinessRegistered     EventType = "business_registered"
	EventTeamMemberInvited      EventType = "team_member_invited"
	EventTeamMemberRemoved      EventType = "team_member_removed"
	EventTransactionRecorded    EventType = "transaction_recorded"
	EventPasswordResetRequested EventType = "password_reset_requested"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	UserID string `json:"user_id"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// CustomerRegisteredPayload payload.
type CustomerRegisteredPayload struct {
	CustomerID           string  `json:"customer_id"`
	ReferralCode         string  `json:"referral_code"`
	ReferredByCustomerID *string `json:"referred_by_customer_id,omitempty"`
}

// BusinessRegisteredPayload payload.
type BusinessRegisteredPayload struct {
	BusinessID       string `json:"business_id"`
	BusinessName     string `json:"business_name"`
	SubscriptionPlan string `json:"subscription_plan"`
}

// TeamMemberInvitedPayload payload.
type TeamMemberInvitedPayload struct {
	BusinessID string              `json:"business_id"`
	UserID     string              `json:"user_id"`
	Email      string              `json:"email"`
	Role       domain.BusinessRole `json:"role"`
}

// TeamMemberRemovedPayload payload.
type TeamMemberRemovedPayload struct {
	BusinessID string `json:"business_id"`
	UserID     string `json:"user_id"`
}

// TransactionRecordedPayload payload.
type TransactionRecordedPayload struct {
	TransactionID  string  `json:"transaction_id"`
	BusinessID     string  `json:"business_id"`
	CustomerID     string  `json:"customer_id"`
	Amount         float64 `json:"amount"`
	CashbackAmount float64 `json:"cashback_amount"`
}

// PasswordResetRequestedPayload payload.
type PasswordResetRequestedPayload struct {
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expires_at"`
}
