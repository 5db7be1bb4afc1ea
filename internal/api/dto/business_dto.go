package dto

// BusinessResponse is the merchant's own account view.
type BusinessResponse struct {
	ID                 string  `json:"id"`
	Name               string  `json:"business_name"`
	BusinessType       string  `json:"business_type,omitempty"`
	Phone              string  `json:"phone,omitempty"`
	Address            string  `json:"address,omitempty"`
	Email              string  `json:"email"`
	SubscriptionPlan   string  `json:"subscription_plan"`
	CashbackPercentage float64 `json:"cashback_percentage"`
}

// RecordTransactionRequest payload for POST /business/transactions. The
// customer is identified by the referral code they present at purchase.
type RecordTransactionRequest struct {
	CustomerCode string  `json:"customer_code" validate:"required"`
	Amount       float64 `json:"amount" validate:"required,gt=0"`
}

// EnrolledCustomerResponse is one row of the business customer list.
type EnrolledCustomerResponse struct {
	CustomerID       string  `json:"customer_id"`
	FirstName        string  `json:"first_name"`
	LastName         string  `json:"last_name"`
	ReferralCode     string  `json:"referral_code"`
	AvailableBalance float64 `json:"available_balance"`
	TotalEarned      float64 `json:"total_earned"`
}
