package service

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/fidelipromo/loyalty-service/internal/domain"
	"github.com/fidelipromo/loyalty-service/internal/events"
	"github.com/fidelipromo/loyalty-service/internal/repository"
	apperrors "github.com/fidelipromo/loyalty-service/pkg/util/errorutil"
)

// BusinessService exposes the merchant-side operations: recording sales with
// cashback crediting and listing enrolled customers.
type BusinessService struct {
	businesses repository.BusinessRepository
	customers  repository.CustomerRepository
	ledger     repository.LedgerRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewBusinessService builds the service.
func NewBusinessService(businesses repository.BusinessRepository, customers repository.CustomerRepository, ledger repository.LedgerRepository, dispatcher events.Dispatcher, logger *zap.Logger) *BusinessService {
	return &BusinessService{
		businesses: businesses,
		customers:  customers,
		ledger:     ledger,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// GetBusiness returns the merchant record.
func (s *BusinessService) GetBusiness(ctx context.Context, businessID string) (*domain.Business, error) {
	business, err := s.businesses.GetByID(ctx, businessID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("business", nil)
		}
		return nil, err
	}
	return business, nil
}

// RecordTransaction registers a sale for the customer identified by their
// referral code and credits the cashback configured for the business.
// Referral commissions for upstream referrers are settled by the earnings
// pipeline, not here.
func (s *BusinessService) RecordTransaction(ctx context.Context, actorUserID, businessID, customerReferralCode string, amount float64) (*domain.Transaction, error) {
	if amount <= 0 {
		return nil, apperrors.NewValidationError("amount must be positive", nil)
	}

	customer, err := s.customers.GetByReferralCode(ctx, customerReferralCode)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("customer", map[string]any{"referral_code": customerReferralCode})
		}
		return nil, err
	}

	business, err := s.businesses.GetByID(ctx, businessID)
	if err != nil {
		return nil, err
	}

	cashback := roundCurrency(amount * business.CashbackPercentage / 100)
	tx := &domain.Transaction{
		CustomerID:     customer.ID,
		BusinessID:     businessID,
		Amount:         amount,
		CashbackAmount: cashback,
		Status:         domain.TransactionStatusCompleted,
	}
	if err := s.ledger.CreateTransaction(ctx, tx); err != nil {
		return nil, err
	}
	if err := s.ledger.CreditBalance(ctx, customer.ID, businessID, cashback); err != nil {
		return nil, err
	}

	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventTransactionRecorded,
			Actor:     events.Actor{UserID: actorUserID},
			Timestamp: time.Now(),
			Payload: events.TransactionRecordedPayload{
				TransactionID:  tx.ID,
				BusinessID:     businessID,
				CustomerID:     customer.ID,
				Amount:         amount,
				CashbackAmount: cashback,
			},
		})
	}
	return tx, nil
}

// ListCustomers returns the customers holding a balance with the business.
func (s *BusinessService) ListCustomers(ctx context.Context, businessID string) ([]repository.EnrolledCustomer, error) {
	return s.ledger.ListCustomersByBusiness(ctx, businessID)
}

func roundCurrency(v float64) float64 {
	return math.Round(v*100) / 100
}
