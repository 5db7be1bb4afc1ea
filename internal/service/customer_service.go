package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/fidelipromo/loyalty-service/internal/domain"
	"github.com/fidelipromo/loyalty-service/internal/repository"
	apperrors "github.com/fidelipromo/loyalty-service/pkg/util/errorutil"
)

// BalanceTotals aggregates a customer's position across all businesses.
type BalanceTotals struct {
	TotalAvailable float64
	TotalEarned    float64
}

// ReferralStats summarizes a customer's referral activity.
type ReferralStats struct {
	DirectReferrals int64
	TotalEarnings   float64
}

// CustomerService exposes the customer-side read surface: profile, balances,
// transaction history and referral stats.
type CustomerService struct {
	customers repository.CustomerRepository
	ledger    repository.LedgerRepository
}

// NewCustomerService builds the service.
func NewCustomerService(customers repository.CustomerRepository, ledger repository.LedgerRepository) *CustomerService {
	return &CustomerService{customers: customers, ledger: ledger}
}

// Profile returns the customer record.
func (s *CustomerService) Profile(ctx context.Context, customerID string) (*domain.Customer, error) {
	customer, err := s.customers.GetByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("customer", nil)
		}
		return nil, err
	}
	return customer, nil
}

// Balances returns per-business balances plus the totals shown on the
// customer dashboard.
func (s *CustomerService) Balances(ctx context.Context, customerID string) ([]repository.BalanceRecord, BalanceTotals, error) {
	balances, err := s.ledger.ListBalancesByCustomer(ctx, customerID)
	if err != nil {
		return nil, BalanceTotals{}, err
	}

	var totals BalanceTotals
	for _, b := range balances {
		totals.TotalAvailable += b.AvailableBalance
		totals.TotalEarned += b.TotalEarned
	}
	return balances, totals, nil
}

// Transactions returns the customer's transaction history, newest first.
func (s *CustomerService) Transactions(ctx context.Context, customerID string) ([]repository.TransactionRecord, error) {
	return s.ledger.ListTransactionsByCustomer(ctx, customerID)
}

// Referrals returns the direct referral count and summed referral earnings.
func (s *CustomerService) Referrals(ctx context.Context, customerID string) (ReferralStats, error) {
	count, err := s.customers.CountReferredBy(ctx, customerID)
	if err != nil {
		return ReferralStats{}, err
	}
	earnings, err := s.ledger.SumReferralEarnings(ctx, customerID)
	if err != nil {
		return ReferralStats{}, err
	}
	return ReferralStats{DirectReferrals: count, TotalEarnings: earnings}, nil
}
