package dto

import (
	"time"

	"github.com/fidelipromo/loyalty-service/internal/domain"
)

// CustomerProfileResponse is the customer's own profile view.
type CustomerProfileResponse struct {
	ID             string  `json:"id"`
	FirstName      string  `json:"first_name"`
	LastName       string  `json:"last_name"`
	Phone          string  `json:"phone,omitempty"`
	ReferralCode   string  `json:"referral_code"`
	ReferredByCode *string `json:"referred_by_code,omitempty"`
}

// BalanceResponse is one per-business balance row.
type BalanceResponse struct {
	BusinessID       string  `json:"business_id"`
	BusinessName     string  `json:"business_name"`
	AvailableBalance float64 `json:"available_balance"`
	TotalEarned      float64 `json:"total_earned"`
	TotalRedeemed    float64 `json:"total_redeemed"`
}

// BalancesResponse bundles rows with dashboard totals.
type BalancesResponse struct {
	Balances       []BalanceResponse `json:"balances"`
	TotalAvailable float64           `json:"total_available"`
	TotalEarned    float64           `json:"total_earned"`
}

// TransactionResponse is one transaction history row.
type TransactionResponse struct {
	ID             string                   `json:"id"`
	BusinessID     string                   `json:"business_id"`
	BusinessName   string                   `json:"business_name,omitempty"`
	Amount         float64                  `json:"amount"`
	CashbackAmount float64                  `json:"cashback_amount"`
	Status         domain.TransactionStatus `json:"status"`
	CreatedAt      time.Time                `json:"created_at"`
}

// ReferralStatsResponse summarizes referral activity.
type ReferralStatsResponse struct {
	DirectReferrals int64   `json:"direct_referrals"`
	TotalEarnings   float64 `json:"total_earnings"`
}
