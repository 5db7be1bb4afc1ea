package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/fidelipromo/loyalty-service/internal/domain"
	"github.com/fidelipromo/loyalty-service/internal/events"
	"github.com/fidelipromo/loyalty-service/internal/repository"
	apperrors "github.com/fidelipromo/loyalty-service/pkg/util/errorutil"
)

// TeamService manages the membership list of a business: listing, inviting
// existing identities and removing members.
type TeamService struct {
	memberships repository.MembershipRepository
	identities  repository.IdentityRepository
	dispatcher  events.Dispatcher
	logger      *zap.Logger
}

// NewTeamService builds the service.
func NewTeamService(memberships repository.MembershipRepository, identities repository.IdentityRepository, dispatcher events.Dispatcher, logger *zap.Logger) *TeamService {
	return &TeamService{
		memberships: memberships,
		identities:  identities,
		dispatcher:  dispatcher,
		logger:      logger,
	}
}

// ListMembers returns the team of a business with member emails.
func (s *TeamService) ListMembers(ctx context.Context, businessID string) ([]repository.TeamMemberRecord, error) {
	return s.memberships.ListTeamByBusiness(ctx, businessID)
}

// Invite adds an existing platform identity to the business team. Unknown
// emails are reported as an error result; inviting twice is a conflict.
func (s *TeamService) Invite(ctx context.Context, actorUserID, businessID, email string, role domain.BusinessRole) (*domain.Membership, error) {
	identity, err := s.identities.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", map[string]any{"email": email})
		}
		return nil, err
	}

	if _, err := s.memberships.Get(ctx, businessID, identity.ID); err == nil {
		return nil, apperrors.NewConflict("user is already a team member", nil)
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	membership := &domain.Membership{
		BusinessID: businessID,
		UserID:     identity.ID,
		Role:       role,
	}
	if err := s.memberships.Create(ctx, membership); err != nil {
		return nil, err
	}

	s.publish(ctx, events.EventTeamMemberInvited, actorUserID, events.TeamMemberInvitedPayload{
		BusinessID: businessID,
		UserID:     identity.ID,
		Email:      email,
		Role:       role,
	})
	return membership, nil
}

// RemoveMember deletes a membership. Removing yourself is rejected before any
// storage access.
func (s *TeamService) RemoveMember(ctx context.Context, actorUserID, businessID, targetUserID string) error {
	if targetUserID == actorUserID {
		return apperrors.NewForbidden("cannot remove yourself from the team")
	}

	if err := s.memberships.Delete(ctx, businessID, targetUserID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("team member", nil)
		}
		return err
	}

	s.publish(ctx, events.EventTeamMemberRemoved, actorUserID, events.TeamMemberRemovedPayload{
		BusinessID: businessID,
		UserID:     targetUserID,
	})
	return nil
}

func (s *TeamService) publish(ctx context.Context, eventType events.EventType, actorUserID string, payload interface{}) {
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
