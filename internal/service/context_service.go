package service

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/fidelipromo/loyalty-service/internal/domain"
	"github.com/fidelipromo/loyalty-service/internal/repository"
	"github.com/fidelipromo/loyalty-service/internal/session"
	apperrors "github.com/fidelipromo/loyalty-service/pkg/util/errorutil"
)

// Next destinations handed to clients after context resolution. They mirror
// the web app's route names.
const (
	NextLogin         = "login"
	NextDashboard     = "dashboard"
	NextCustomerApp   = "customer"
	NextSelectContext = "select-context"
)

// ContextService resolves the operating contexts of an identity and manages
// context selection on the session record.
type ContextService struct {
	memberships repository.MembershipRepository
	customers   repository.CustomerRepository
	sessions    session.Store
	logger      *zap.Logger
}

// NewContextService builds the service.
func NewContextService(memberships repository.MembershipRepository, customers repository.CustomerRepository, sessions session.Store, logger *zap.Logger) *ContextService {
	return &ContextService{
		memberships: memberships,
		customers:   customers,
		sessions:    sessions,
		logger:      logger,
	}
}

// Resolve recomputes every context the identity can operate: one business
// context per membership plus a customer context when a customer record
// exists. The result is derived from storage on every call.
func (s *ContextService) Resolve(ctx context.Context, userID string) ([]domain.AppContext, error) {
	contexts, err := s.memberships.ListBusinessContexts(ctx, userID)
	if err != nil {
		return nil, err
	}

	customer, err := s.customers.GetByUserID(ctx, userID)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	if customer != nil {
		contexts = append(contexts, domain.AppContext{
			Type: domain.ContextTypeCustomer,
			ID:   customer.ID,
		})
	}

	return contexts, nil
}

// Refresh recomputes the session's context set, bumping the generation so a
// concurrently completing older refresh cannot overwrite this one. A previous
// selection survives only while it remains among the resolved contexts;
// exactly one resolved context is selected automatically.
func (s *ContextService) Refresh(ctx context.Context, sess *session.Session) error {
	contexts, err := s.Resolve(ctx, sess.IdentityID)
	if err != nil {
		return err
	}

	sess.Contexts = contexts
	sess.Generation++

	switch {
	case sess.SelectedContext != nil && sess.HasContext(*sess.SelectedContext):
		// keep the explicit selection
	case len(contexts) == 1:
		sess.SelectedContext = &contexts[0]
	default:
		sess.SelectedContext = nil
	}

	if err := s.sessions.Put(ctx, sess); err != nil {
		if errors.Is(err, session.ErrStaleWrite) {
			s.logger.Warn("discarding superseded context refresh", zap.String("identity_id", sess.IdentityID))
			return nil
		}
		return err
	}
	return nil
}

// Select records the user's explicit context choice. The ref must be one of
// the contexts resolved for the session; the stored context (with its name
// and role) is what gets selected, never the client-supplied copy.
func (s *ContextService) Select(ctx context.Context, identityID string, ref domain.AppContext) (*session.Session, error) {
	sess, err := s.sessions.Get(ctx, identityID)
	if err != nil {
		return nil, err
	}

	var chosen *domain.AppContext
	for i := range sess.Contexts {
		if sess.Contexts[i].Equal(ref) {
			chosen = &sess.Contexts[i]
			break
		}
	}
	if chosen == nil {
		return nil, apperrors.NewForbidden("context not available for this identity")
	}

	sess.SelectedContext = chosen
	sess.Generation++
	if err := s.sessions.Put(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// Next maps the session's context state to the client's destination:
// zero contexts stay on login, one routes straight to its area, several
// require an explicit choice.
func Next(sess *session.Session) string {
	if sess.SelectedContext != nil {
		if sess.SelectedContext.Type == domain.ContextTypeBusiness {
			return NextDashboard
		}
		return NextCustomerApp
	}
	if len(sess.Contexts) == 0 {
		return NextLogin
	}
	return NextSelectContext
}

// NewSession builds a fresh session record for an identity.
func NewSession(identity *domain.Identity, userType domain.UserType, ttl time.Duration, generation uint64) *session.Session {
	now := time.Now()
	return &session.Session{
		IdentityID: identity.ID,
		Email:      identity.Email,
		UserType:   userType,
		Generation: generation,
		CreatedAt:  now,
		ExpiresAt:  now.Add(ttl),
	}
}
