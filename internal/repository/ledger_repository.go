package repository

import (
	"context"

	"github.com/fidelipromo/loyalty-service/internal/domain"
)

// BalanceRecord is a customer balance joined with the business it belongs to.
type BalanceRecord struct {
	domain.CustomerBalance
	BusinessName string
}

// TransactionRecord is a transaction joined with the business name.
type TransactionRecord struct {
	domain.Transaction
	BusinessName string
}

// EnrolledCustomer is a customer as seen from a business: identity fields plus
// the balance position held with that business.
type EnrolledCustomer struct {
	CustomerID       string
	FirstName        string
	LastName         string
	ReferralCode     string
	AvailableBalance float64
	TotalEarned      float64
}

// LedgerRepository manages transactions, balances and referral earnings.
type LedgerRepository interface {
	CreateTransaction(ctx context.Context, tx *domain.Transaction) error
	ListTransactionsByCustomer(ctx context.Context, customerID string) ([]TransactionRecord, error)
	CreditBalance(ctx context.Context, customerID, businessID string, cashback float64) error
	ListBalancesByCustomer(ctx context.Context, customerID string) ([]BalanceRecord, error)
	ListCustomersByBusiness(ctx context.Context, businessID string) ([]EnrolledCustomer, error)
	SumReferralEarnings(ctx context.Context, referrerCustomerID string) (float64, error)
}

type ledgerRepository struct {
	db DB
}

// NewLedgerRepository constructs repository.
func NewLedgerRepository(db DB) LedgerRepository {
	return &ledgerRepository{db: db}
}

func (r *ledgerRepository) CreateTransaction(ctx context.Context, tx *domain.Transaction) error {
	const query = `
        INSERT INTO transactions (customer_id, business_id, amount, cashback_amount, status)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at`
	return r.db.QueryRow(ctx, query,
		tx.CustomerID,
		tx.BusinessID,
		tx.Amount,
		tx.CashbackAmount,
		tx.Status,
	).Scan(&tx.ID, &tx.CreatedAt)
}

func (r *ledgerRepository) ListTransactionsByCustomer(ctx context.Context, customerID string) ([]TransactionRecord, error) {
	const query = `
        SELECT t.id, t.customer_id, t.business_id, t.amount, t.cashback_amount, t.status, t.created_at,
               b.business_name
        FROM transactions t
        JOIN businesses b ON b.id = t.business_id
        WHERE t.customer_id=$1
        ORDER BY t.created_at DESC`
	rows, err := r.db.Query(ctx, query, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []TransactionRecord
	for rows.Next() {
		var rec TransactionRecord
		if err := rows.Scan(
			&rec.ID,
			&rec.CustomerID,
			&rec.BusinessID,
			&rec.Amount,
			&rec.CashbackAmount,
			&rec.Status,
			&rec.CreatedAt,
			&rec.BusinessName,
		); err != nil {
			return nil, err
		}
		result = append(result, rec)
	}
	return result, rows.Err()
}

// CreditBalance adds earned cashback to the per-business balance row,
// creating it on first contact with the business.
func (r *ledgerRepository) CreditBalance(ctx context.Context, customerID, businessID string, cashback float64) error {
	const query = `
        INSERT INTO customer_balances (customer_id, business_id, available_balance, total_earned, total_redeemed)
        VALUES ($1,$2,$3,$3,0)
        ON CONFLICT (customer_id, business_id) DO UPDATE SET
            available_balance = customer_balances.available_balance + EXCLUDED.available_balance,
            total_earned = customer_balances.total_earned + EXCLUDED.total_earned,
            updated_at = NOW()`
	_, err := r.db.Exec(ctx, query, customerID, businessID, cashback)
	return err
}

func (r *ledgerRepository) ListBalancesByCustomer(ctx context.Context, customerID string) ([]BalanceRecord, error) {
	const query = `
        SELECT cb.id, cb.customer_id, cb.business_id, cb.available_balance, cb.total_earned, cb.total_redeemed,
               cb.updated_at, b.business_name
        FROM customer_balances cb
        JOIN businesses b ON b.id = cb.business_id
        WHERE cb.customer_id=$1
        ORDER BY b.business_name`
	rows, err := r.db.Query(ctx, query, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []BalanceRecord
	for rows.Next() {
		var rec BalanceRecord
		if err := rows.Scan(
			&rec.ID,
			&rec.CustomerID,
			&rec.BusinessID,
			&rec.AvailableBalance,
			&rec.TotalEarned,
			&rec.TotalRedeemed,
			&rec.UpdatedAt,
			&rec.BusinessName,
		); err != nil {
			return nil, err
		}
		result = append(result, rec)
	}
	return result, rows.Err()
}

func (r *ledgerRepository) ListCustomersByBusiness(ctx context.Context, businessID string) ([]EnrolledCustomer, error) {
	const query = `
        SELECT c.id, c.first_name, c.last_name, c.referral_code,
               cb.available_balance, cb.total_earned
        FROM customer_balances cb
        JOIN customers c ON c.id = cb.customer_id
        WHERE cb.business_id=$1
        ORDER BY cb.total_earned DESC`
	rows, err := r.db.Query(ctx, query, businessID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []EnrolledCustomer
	for rows.Next() {
		var rec EnrolledCustomer
		if err := rows.Scan(
			&rec.CustomerID,
			&rec.FirstName,
			&rec.LastName,
			&rec.ReferralCode,
			&rec.AvailableBalance,
			&rec.TotalEarned,
		); err != nil {
			return nil, err
		}
		result = append(result, rec)
	}
	return result, rows.Err()
}

func (r *ledgerRepository) SumReferralEarnings(ctx context.Context, referrerCustomerID string) (float64, error) {
	const query = `
        SELECT COALESCE(SUM(amount), 0)
        FROM referral_earnings WHERE referrer_customer_id=$1`
	var total float64
	if err := r.db.QueryRow(ctx, query, referrerCustomerID).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}
