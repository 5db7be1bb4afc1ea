package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/fidelipromo/loyalty-service/internal/auth"
	"github.com/fidelipromo/loyalty-service/internal/config"
	"github.com/fidelipromo/loyalty-service/internal/domain"
	"github.com/fidelipromo/loyalty-service/internal/events"
	"github.com/fidelipromo/loyalty-service/internal/repository"
	"github.com/fidelipromo/loyalty-service/internal/session"
)

// CustomerSignUp carries customer registration input.
type CustomerSignUp struct {
	Email        string
	Password     string
	FirstName    string
	LastName     string
	Phone        string
	ReferralCode string
}

// BusinessSignUp carries business registration input.
type BusinessSignUp struct {
	Email            string
	Password         string
	BusinessName     string
	BusinessType     string
	Phone            string
	Address          string
	SubscriptionPlan string
}

// AuthService coordinates registration, login, logout and password reset.
// Sign-up is a multi-step provisioning sequence; when a later step fails the
// earlier writes are compensated so no half-provisioned account survives.
type AuthService struct {
	identities  repository.IdentityRepository
	businesses  repository.BusinessRepository
	memberships repository.MembershipRepository
	customers   repository.CustomerRepository
	resets      repository.PasswordResetRepository
	contexts    *ContextService
	sessions    session.Store
	dispatcher  events.Dispatcher
	tokenMgr    *auth.TokenManager
	bcryptCost  int
	resetTTL    time.Duration
	sessionTTL  time.Duration
	logger      *zap.Logger
}

// AuthDependencies encapsulates requirements for the auth service.
type AuthDependencies struct {
	IdentityRepo      repository.IdentityRepository
	BusinessRepo      repository.BusinessRepository
	MembershipRepo    repository.MembershipRepository
	CustomerRepo      repository.CustomerRepository
	PasswordResetRepo repository.PasswordResetRepository
	Contexts          *ContextService
	Sessions          session.Store
	Dispatcher        events.Dispatcher
	Logger            *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	return &AuthService{
		identities:  deps.IdentityRepo,
		businesses:  deps.BusinessRepo,
		memberships: deps.MembershipRepo,
		customers:   deps.CustomerRepo,
		resets:      deps.PasswordResetRepo,
		contexts:    deps.Contexts,
		sessions:    deps.Sessions,
		dispatcher:  deps.Dispatcher,
		tokenMgr:    auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
		bcryptCost:  cfg.Auth.BcryptCost,
		resetTTL:    time.Duration(cfg.Auth.PasswordResetTTLMinutes) * time.Minute,
		sessionTTL:  cfg.Session.TTL(),
		logger:      deps.Logger,
	}
}

// SignIn authenticates an identity, resolves its contexts and opens a session.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (*session.Session, string, time.Time, error) {
	identity, err := s.identities.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", time.Time{}, errors.New("invalid credentials")
		}
		return nil, "", time.Time{}, err
	}
	if err := auth.ComparePassword(identity.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, errors.New("invalid credentials")
	}

	profile, err := s.identities.GetProfile(ctx, identity.ID)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	sess, err := s.openSession(ctx, identity, profile.UserType)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	token, exp, err := s.tokenMgr.GenerateToken(identity.ID, profile.UserType)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return sess, token, exp, nil
}

// SignUpCustomer provisions a customer account: identity, profile and
// customer record. A supplied referral code is resolved to the referring
// customer; an unknown code is dropped silently and registration proceeds.
func (s *AuthService) SignUpCustomer(ctx context.Context, input CustomerSignUp) (*domain.Customer, *session.Session, string, time.Time, error) {
	identity, compensate, err := s.provisionIdentity(ctx, input.Email, input.Password, domain.UserTypeCustomer)
	if err != nil {
		return nil, nil, "", time.Time{}, err
	}

	code, err := generateReferralCode()
	if err != nil {
		compensate()
		return nil, nil, "", time.Time{}, err
	}

	customer := &domain.Customer{
		UserID:       identity.ID,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Phone:        input.Phone,
		ReferralCode: code,
	}

	if input.ReferralCode != "" {
		referrer, err := s.customers.GetByReferralCode(ctx, input.ReferralCode)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			compensate()
			return nil, nil, "", time.Time{}, err
		}
		if referrer != nil {
			customer.ReferredByCode = &input.ReferralCode
			customer.ReferredByCustomerID = &referrer.ID
		} else {
			s.logger.Info("referral code not found, registering without referrer",
				zap.String("referral_code", input.ReferralCode))
		}
	}

	if err := s.customers.Create(ctx, customer); err != nil {
		compensate()
		return nil, nil, "", time.Time{}, err
	}

	s.publish(ctx, events.EventCustomerRegistered, identity.ID, events.CustomerRegisteredPayload{
		CustomerID:           customer.ID,
		ReferralCode:         customer.ReferralCode,
		ReferredByCustomerID: customer.ReferredByCustomerID,
	})

	sess, token, exp, err := s.openSessionWithToken(ctx, identity, domain.UserTypeCustomer)
	if err != nil {
		return nil, nil, "", time.Time{}, err
	}
	return customer, sess, token, exp, nil
}

// SignUpBusiness provisions a business account: identity, profile, business
// record and the owner's admin membership.
func (s *AuthService) SignUpBusiness(ctx context.Context, input BusinessSignUp) (*domain.Business, *session.Session, string, time.Time, error) {
	identity, compensate, err := s.provisionIdentity(ctx, input.Email, input.Password, domain.UserTypeBusiness)
	if err != nil {
		return nil, nil, "", time.Time{}, err
	}

	plan := input.SubscriptionPlan
	if plan == "" {
		plan = "starter"
	}
	business := &domain.Business{
		OwnerUserID:      identity.ID,
		Name:             input.BusinessName,
		BusinessType:     input.BusinessType,
		Phone:            input.Phone,
		Address:          input.Address,
		Email:            input.Email,
		SubscriptionPlan: plan,
	}
	if err := s.businesses.Create(ctx, business); err != nil {
		compensate()
		return nil, nil, "", time.Time{}, err
	}

	membership := &domain.Membership{
		BusinessID: business.ID,
		UserID:     identity.ID,
		Role:       domain.BusinessRoleAdmin,
	}
	if err := s.memberships.Create(ctx, membership); err != nil {
		if delErr := s.businesses.DeleteByOwnerUserID(ctx, identity.ID); delErr != nil {
			s.logger.Error("compensation failed: business row left behind",
				zap.String("identity_id", identity.ID), zap.Error(delErr))
		}
		compensate()
		return nil, nil, "", time.Time{}, err
	}

	s.publish(ctx, events.EventBusinessRegistered, identity.ID, events.BusinessRegisteredPayload{
		BusinessID:       business.ID,
		BusinessName:     business.Name,
		SubscriptionPlan: business.SubscriptionPlan,
	})

	sess, token, exp, err := s.openSessionWithToken(ctx, identity, domain.UserTypeBusiness)
	if err != nil {
		return nil, nil, "", time.Time{}, err
	}
	return business, sess, token, exp, nil
}

// SignOut deletes the session record. Idempotent.
func (s *AuthService) SignOut(ctx context.Context, identityID string) error {
	err := s.sessions.Delete(ctx, identityID)
	if errors.Is(err, session.ErrNotFound) {
		return nil
	}
	return err
}

// RequestPasswordReset creates a reset token when the email is registered.
// The caller always receives generic success so addresses cannot be probed.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	identity, err := s.identities.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		return err
	}

	token := &repository.PasswordResetToken{
		UserID:    identity.ID,
		Token:     uuid.NewString(),
		ExpiresAt: time.Now().Add(s.resetTTL),
	}
	if err := s.resets.Create(ctx, token); err != nil {
		return err
	}

	s.publish(ctx, events.EventPasswordResetRequested, identity.ID, events.PasswordResetRequestedPayload{
		UserID:    identity.ID,
		Email:     identity.Email,
		ExpiresAt: token.ExpiresAt,
	})
	return nil
}

// ConfirmPasswordReset validates the reset token and updates the password.
func (s *AuthService) ConfirmPasswordReset(ctx context.Context, tokenStr, newPassword string) error {
	token, err := s.resets.GetByToken(ctx, tokenStr)
	if err != nil {
		return err
	}
	if token.UsedAt != nil || time.Now().After(token.ExpiresAt) {
		return errors.New("token expired or used")
	}

	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return err
	}

	identity, err := s.identities.GetByID(ctx, token.UserID)
	if err != nil {
		return err
	}
	identity.PasswordHash = hash
	if err := s.identities.Update(ctx, identity); err != nil {
		return err
	}

	return s.resets.MarkUsed(ctx, token.ID)
}

// Session returns the current session with its contexts recomputed.
func (s *AuthService) Session(ctx context.Context, identityID string) (*session.Session, error) {
	sess, err := s.sessions.Get(ctx, identityID)
	if err != nil {
		return nil, err
	}
	if err := s.contexts.Refresh(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

// provisionIdentity runs the shared first steps of sign-up and returns a
// compensation func that tears them down in reverse order.
func (s *AuthService) provisionIdentity(ctx context.Context, email, password string, userType domain.UserType) (*domain.Identity, func(), error) {
	if _, err := s.identities.GetByEmail(ctx, email); err == nil {
		return nil, nil, errors.New("email already registered")
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, nil, err
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, nil, err
	}

	identity := &domain.Identity{Email: email, PasswordHash: hash}
	if err := s.identities.Create(ctx, identity); err != nil {
		return nil, nil, err
	}

	profile := &domain.Profile{UserID: identity.ID, UserType: userType}
	if err := s.identities.CreateProfile(ctx, profile); err != nil {
		s.compensateIdentity(ctx, identity.ID, false)
		return nil, nil, err
	}

	compensate := func() {
		s.compensateIdentity(ctx, identity.ID, true)
	}
	return identity, compensate, nil
}

func (s *AuthService) compensateIdentity(ctx context.Context, identityID string, withProfile bool) {
	if withProfile {
		if err := s.identities.DeleteProfile(ctx, identityID); err != nil {
			s.logger.Error("compensation failed: profile row left behind",
				zap.String("identity_id", identityID), zap.Error(err))
		}
	}
	if err := s.identities.Delete(ctx, identityID); err != nil {
		s.logger.Error("compensation failed: identity row left behind",
			zap.String("identity_id", identityID), zap.Error(err))
	}
}

func (s *AuthService) openSession(ctx context.Context, identity *domain.Identity, userType domain.UserType) (*session.Session, error) {
	// A fresh sign-in supersedes any in-flight work on the previous session.
	generation := uint64(1)
	if existing, err := s.sessions.Get(ctx, identity.ID); err == nil {
		generation = existing.Generation + 1
	}

	sess := NewSession(identity, userType, s.sessionTTL, generation)
	if err := s.contexts.Refresh(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

func (s *AuthService) openSessionWithToken(ctx context.Context, identity *domain.Identity, userType domain.UserType) (*session.Session, string, time.Time, error) {
	sess, err := s.openSession(ctx, identity, userType)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	token, exp, err := s.tokenMgr.GenerateToken(identity.ID, userType)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return sess, token, exp, nil
}

func (s *AuthService) publish(ctx context.Context, eventType events.EventType, actorUserID string, payload interface{}) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Actor:     events.Actor{UserID: actorUserID},
		Timestamp: time.Now(),
		Payload:   payload,
	})
}
