package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/fidelipromo/loyalty-service/internal/domain"
)

// TeamMemberRecord is a membership joined with the member's email for
// team-list rendering.
type TeamMemberRecord struct {
	UserID   string
	Email    string
	Role     domain.BusinessRole
	JoinedAt time.Time
}

// MembershipRepository manages business_users rows: which identities operate
// which businesses and under which role.
type MembershipRepository interface {
	Create(ctx context.Context, membership *domain.Membership) error
	ListByBusiness(ctx context.Context, businessID string) ([]domain.Membership, error)
	ListTeamByBusiness(ctx context.Context, businessID string) ([]TeamMemberRecord, error)
	ListBusinessContexts(ctx context.Context, userID string) ([]domain.AppContext, error)
	Get(ctx context.Context, businessID, userID string) (*domain.Membership, error)
	Delete(ctx context.Context, businessID, userID string) error
	DeleteByUser(ctx context.Context, userID string) error
}

type membershipRepository struct {
	db DB
}

// NewMembershipRepository constructs repository.
func NewMembershipRepository(db DB) MembershipRepository {
	return &membershipRepository{db: db}
}

func (r *membershipRepository) Create(ctx context.Context, membership *domain.Membership) error {
	const query = `
        INSERT INTO business_users (business_id, user_id, role)
        VALUES ($1,$2,$3)
        RETURNING id, created_at`
	return r.db.QueryRow(ctx, query,
		membership.BusinessID,
		membership.UserID,
		membership.Role,
	).Scan(&membership.ID, &membership.CreatedAt)
}

func (r *membershipRepository) ListByBusiness(ctx context.Context, businessID string) ([]domain.Membership, error) {
	const query = `
        SELECT id, business_id, user_id, role, created_at
        FROM business_users WHERE business_id=$1
        ORDER BY created_at`
	rows, err := r.db.Query(ctx, query, businessID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Membership
	for rows.Next() {
		var m domain.Membership
		if err := rows.Scan(&m.ID, &m.BusinessID, &m.UserID, &m.Role, &m.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, m)
	}
	return result, rows.Err()
}

// ListTeamByBusiness lists the team of a business with member emails.
func (r *membershipRepository) ListTeamByBusiness(ctx context.Context, businessID string) ([]TeamMemberRecord, error) {
	const query = `
        SELECT bu.user_id, i.email, bu.role, bu.created_at
        FROM business_users bu
        JOIN identities i ON i.id = bu.user_id
        WHERE bu.business_id=$1
        ORDER BY bu.created_at`
	rows, err := r.db.Query(ctx, query, businessID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []TeamMemberRecord
	for rows.Next() {
		var rec TeamMemberRecord
		if err := rows.Scan(&rec.UserID, &rec.Email, &rec.Role, &rec.JoinedAt); err != nil {
			return nil, err
		}
		result = append(result, rec)
	}
	return result, rows.Err()
}

// ListBusinessContexts resolves every business the identity can operate,
// carrying the business name so the chooser can label it.
func (r *membershipRepository) ListBusinessContexts(ctx context.Context, userID string) ([]domain.AppContext, error) {
	const query = `
        SELECT b.id, b.business_name, bu.role
        FROM business_users bu
        JOIN businesses b ON b.id = bu.business_id
        WHERE bu.user_id=$1
        ORDER BY bu.created_at`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.AppContext
	for rows.Next() {
		appCtx := domain.AppContext{Type: domain.ContextTypeBusiness}
		if err := rows.Scan(&appCtx.ID, &appCtx.Name, &appCtx.Role); err != nil {
			return nil, err
		}
		result = append(result, appCtx)
	}
	return result, rows.Err()
}

func (r *membershipRepository) Get(ctx context.Context, businessID, userID string) (*domain.Membership, error) {
	const query = `
        SELECT id, business_id, user_id, role, created_at
        FROM business_users WHERE business_id=$1 AND user_id=$2`
	var m domain.Membership
	if err := r.db.QueryRow(ctx, query, businessID, userID).Scan(
		&m.ID,
		&m.BusinessID,
		&m.UserID,
		&m.Role,
		&m.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *membershipRepository) Delete(ctx context.Context, businessID, userID string) error {
	const query = `DELETE FROM business_users WHERE business_id=$1 AND user_id=$2`
	cmd, err := r.db.Exec(ctx, query, businessID, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *membershipRepository) DeleteByUser(ctx context.Context, userID string) error {
	const query = `DELETE FROM business_users WHERE user_id=$1`
	_, err := r.db.Exec(ctx, query, userID)
	return err
}
