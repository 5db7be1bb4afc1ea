package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/fidelipromo/loyalty-service/internal/domain"
)

// IdentityRepository defines persistence access for identities and their
// user-type profiles.
type IdentityRepository interface {
	Create(ctx context.Context, identity *domain.Identity) error
	Update(ctx context.Context, identity *domain.Identity) error
	GetByID(ctx context.Context, id string) (*domain.Identity, error)
	GetByEmail(ctx context.Context, email string) (*domain.Identity, error)
	Delete(ctx context.Context, id string) error

	CreateProfile(ctx context.Context, profile *domain.Profile) error
	GetProfile(ctx context.Context, userID string) (*domain.Profile, error)
	DeleteProfile(ctx context.Context, userID string) error
}

type identityRepository struct {
	db DB
}

// NewIdentityRepository returns a Postgres-backed implementation.
func NewIdentityRepository(db DB) IdentityRepository {
	return &identityRepository{db: db}
}

func (r *identityRepository) Create(ctx context.Context, identity *domain.Identity) error {
	const query = `
        INSERT INTO identities (email, password_hash)
        VALUES ($1, $2)
        RETURNING id, created_at, updated_at`

	return r.db.QueryRow(ctx, query,
		identity.Email,
		identity.PasswordHash,
	).Scan(&identity.ID, &identity.CreatedAt, &identity.UpdatedAt)
}

func (r *identityRepository) Update(ctx context.Context, identity *domain.Identity) error {
	const query = `
        UPDATE identities SET email=$1, password_hash=$2, updated_at=NOW()
        WHERE id=$3`

	cmd, err := r.db.Exec(ctx, query,
		identity.Email,
		identity.PasswordHash,
		identity.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *identityRepository) GetByID(ctx context.Context, id string) (*domain.Identity, error) {
	const query = `
        SELECT id, email, password_hash, created_at, updated_at
        FROM identities WHERE id=$1`

	var identity domain.Identity
	if err := r.db.QueryRow(ctx, query, id).Scan(
		&identity.ID,
		&identity.Email,
		&identity.PasswordHash,
		&identity.CreatedAt,
		&identity.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &identity, nil
}

func (r *identityRepository) GetByEmail(ctx context.Context, email string) (*domain.Identity, error) {
	const query = `
        SELECT id, email, password_hash, created_at, updated_at
        FROM identities WHERE email=$1`

	var identity domain.Identity
	if err := r.db.QueryRow(ctx, query, email).Scan(
		&identity.ID,
		&identity.Email,
		&identity.PasswordHash,
		&identity.CreatedAt,
		&identity.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &identity, nil
}

func (r *identityRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM identities WHERE id=$1`
	_, err := r.db.Exec(ctx, query, id)
	return err
}

func (r *identityRepository) CreateProfile(ctx context.Context, profile *domain.Profile) error {
	const query = `
        INSERT INTO user_profiles (user_id, user_type)
        VALUES ($1, $2)
        RETURNING id, created_at`

	return r.db.QueryRow(ctx, query,
		profile.UserID,
		profile.UserType,
	).Scan(&profile.ID, &profile.CreatedAt)
}

func (r *identityRepository) GetProfile(ctx context.Context, userID string) (*domain.Profile, error) {
	const query = `
        SELECT id, user_id, user_type, created_at
        FROM user_profiles WHERE user_id=$1`

	var profile domain.Profile
	if err := r.db.QueryRow(ctx, query, userID).Scan(
		&profile.ID,
		&profile.UserID,
		&profile.UserType,
		&profile.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *identityRepository) DeleteProfile(ctx context.Context, userID string) error {
	const query = `DELETE FROM user_profiles WHERE user_id=$1`
	_, err := r.db.Exec(ctx, query, userID)
	return err
}
