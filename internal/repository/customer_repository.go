package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/fidelipromo/loyalty-service/internal/domain"
)

// CustomerRepository manages persistence for loyalty-program customers.
type CustomerRepository interface {
	Create(ctx context.Context, customer *domain.Customer) error
	Update(ctx context.Context, customer *domain.Customer) error
	GetByID(ctx context.Context, id string) (*domain.Customer, error)
	GetByUserID(ctx context.Context, userID string) (*domain.Customer, error)
	GetByReferralCode(ctx context.Context, code string) (*domain.Customer, error)
	CountReferredBy(ctx context.Context, customerID string) (int64, error)
	DeleteByUserID(ctx context.Context, userID string) error
}

type customerRepository struct {
	db DB
}

// NewCustomerRepository constructs repository.
func NewCustomerRepository(db DB) CustomerRepository {
	return &customerRepository{db: db}
}

const customerColumns = `
        id, user_id, first_name, last_name, phone, referral_code,
        referred_by_code, referred_by_customer_id, created_at, updated_at`

func (r *customerRepository) Create(ctx context.Context, customer *domain.Customer) error {
	const query = `
        INSERT INTO customers (user_id, first_name, last_name, phone, referral_code, referred_by_code, referred_by_customer_id)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, created_at, updated_at`
	return r.db.QueryRow(ctx, query,
		customer.UserID,
		customer.FirstName,
		customer.LastName,
		customer.Phone,
		customer.ReferralCode,
		customer.ReferredByCode,
		customer.ReferredByCustomerID,
	).Scan(&customer.ID, &customer.CreatedAt, &customer.UpdatedAt)
}

func (r *customerRepository) Update(ctx context.Context, customer *domain.Customer) error {
	const query = `
        UPDATE customers SET first_name=$1, last_name=$2, phone=$3, updated_at=NOW()
        WHERE id=$4`
	cmd, err := r.db.Exec(ctx, query,
		customer.FirstName,
		customer.LastName,
		customer.Phone,
		customer.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *customerRepository) GetByID(ctx context.Context, id string) (*domain.Customer, error) {
	const query = `SELECT` + customerColumns + `
        FROM customers WHERE id=$1`
	return r.scanCustomer(r.db.QueryRow(ctx, query, id))
}

func (r *customerRepository) GetByUserID(ctx context.Context, userID string) (*domain.Customer, error) {
	const query = `SELECT` + customerColumns + `
        FROM customers WHERE user_id=$1`
	return r.scanCustomer(r.db.QueryRow(ctx, query, userID))
}

func (r *customerRepository) GetByReferralCode(ctx context.Context, code string) (*domain.Customer, error) {
	const query = `SELECT` + customerColumns + `
        FROM customers WHERE referral_code=$1`
	return r.scanCustomer(r.db.QueryRow(ctx, query, code))
}

func (r *customerRepository) CountReferredBy(ctx context.Context, customerID string) (int64, error) {
	const query = `SELECT COUNT(*) FROM customers WHERE referred_by_customer_id=$1`
	var count int64
	if err := r.db.QueryRow(ctx, query, customerID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *customerRepository) DeleteByUserID(ctx context.Context, userID string) error {
	const query = `DELETE FROM customers WHERE user_id=$1`
	_, err := r.db.Exec(ctx, query, userID)
	return err
}

func (r *customerRepository) scanCustomer(row pgx.Row) (*domain.Customer, error) {
	var customer domain.Customer
	if err := row.Scan(
		&customer.ID,
		&customer.UserID,
		&customer.FirstName,
		&customer.LastName,
		&customer.Phone,
		&customer.ReferralCode,
		&customer.ReferredByCode,
		&customer.ReferredByCustomerID,
		&customer.CreatedAt,
		&customer.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &customer, nil
}
