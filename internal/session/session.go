package session

import (
	"context"
	"errors"
	"time"

	"github.com/fidelipromo/loyalty-service/internal/domain"
)

// ErrNotFound indicates no session record exists for the identity.
var ErrNotFound = errors.New("session not found")

// ErrStaleWrite indicates the write carried a generation older than the
// stored record. Late-arriving results of superseded auth operations are
// discarded this way instead of clobbering fresher state.
var ErrStaleWrite = errors.New("stale session write")

// Session is the server-side record of an authenticated identity: who they
// are, every context they may operate, and which one is active. The context
// set is recomputed from storage on every session check, never trusted from
// the client.
type Session struct {
	IdentityID      string              `json:"identity_id"`
	Email           string              `json:"email"`
	UserType        domain.UserType     `json:"user_type"`
	Contexts        []domain.AppContext `json:"contexts"`
	SelectedContext *domain.AppContext  `json:"selected_context,omitempty"`
	Generation      uint64              `json:"generation"`
	CreatedAt       time.Time           `json:"created_at"`
	ExpiresAt       time.Time           `json:"expires_at"`
}

// Expired reports whether the record is past its lifetime.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}

// HasContext reports whether ref is one of the session's resolved contexts.
func (s *Session) HasContext(ref domain.AppContext) bool {
	for _, c := range s.Contexts {
		if c.Equal(ref) {
			return true
		}
	}
	return false
}

// Store holds session records keyed by identity id. Put is the only mutation
// path; implementations must reject writes with a stale generation.
type Store interface {
	Get(ctx context.Context, identityID string) (*Session, error)
	Put(ctx context.Context, sess *Session) error
	Delete(ctx context.Context, identityID string) error
}
