package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/fidelipromo/loyalty-service/internal/domain"
)

// BusinessRepository manages persistence for merchant accounts.
type BusinessRepository interface {
	Create(ctx context.Context, business *domain.Business) error
	Update(ctx context.Context, business *domain.Business) error
	GetByID(ctx context.Context, id string) (*domain.Business, error)
	GetByOwnerUserID(ctx context.Context, userID string) (*domain.Business, error)
	DeleteByOwnerUserID(ctx context.Context, userID string) error
}

type businessRepository struct {
	db DB
}

// NewBusinessRepository constructs repository.
func NewBusinessRepository(db DB) BusinessRepository {
	return &businessRepository{db: db}
}

const businessColumns = `
        id, user_id, business_name, business_type, phone, address, email,
        subscription_plan, cashback_percentage,
        referral_level_1_percentage, referral_level_2_percentage, referral_level_3_percentage,
        created_at, updated_at`

func (r *businessRepository) Create(ctx context.Context, business *domain.Business) error {
	const query = `
        INSERT INTO businesses (user_id, business_name, business_type, phone, address, email, subscription_plan)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, cashback_percentage,
                  referral_level_1_percentage, referral_level_2_percentage, referral_level_3_percentage,
                  created_at, updated_at`
	return r.db.QueryRow(ctx, query,
		business.OwnerUserID,
		business.Name,
		business.BusinessType,
		business.Phone,
		business.Address,
		business.Email,
		business.SubscriptionPlan,
	).Scan(
		&business.ID,
		&business.CashbackPercentage,
		&business.ReferralLevel1Pct,
		&business.ReferralLevel2Pct,
		&business.ReferralLevel3Pct,
		&business.CreatedAt,
		&business.UpdatedAt,
	)
}

func (r *businessRepository) Update(ctx context.Context, business *domain.Business) error {
	const query = `
        UPDATE businesses SET business_name=$1, business_type=$2, phone=$3, address=$4,
               subscription_plan=$5, cashback_percentage=$6, updated_at=NOW()
        WHERE id=$7`
	cmd, err := r.db.Exec(ctx, query,
		business.Name,
		business.BusinessType,
		business.Phone,
		business.Address,
		business.SubscriptionPlan,
		business.CashbackPercentage,
		business.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *businessRepository) GetByID(ctx context.Context, id string) (*domain.Business, error) {
	const query = `SELECT` + businessColumns + `
        FROM businesses WHERE id=$1`
	return r.scanBusiness(r.db.QueryRow(ctx, query, id))
}

func (r *businessRepository) GetByOwnerUserID(ctx context.Context, userID string) (*domain.Business, error) {
	const query = `SELECT` + businessColumns + `
        FROM businesses WHERE user_id=$1`
	return r.scanBusiness(r.db.QueryRow(ctx, query, userID))
}

func (r *businessRepository) DeleteByOwnerUserID(ctx context.Context, userID string) error {
	const query = `DELETE FROM businesses WHERE user_id=$1`
	_, err := r.db.Exec(ctx, query, userID)
	return err
}

func (r *businessRepository) scanBusiness(row pgx.Row) (*domain.Business, error) {
	var business domain.Business
	if err := row.Scan(
		&business.ID,
		&business.OwnerUserID,
		&business.Name,
		&business.BusinessType,
		&business.Phone,
		&business.Address,
		&business.Email,
		&business.SubscriptionPlan,
		&business.CashbackPercentage,
		&business.ReferralLevel1Pct,
		&business.ReferralLevel2Pct,
		&business.ReferralLevel3Pct,
		&business.CreatedAt,
		&business.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &business, nil
}
