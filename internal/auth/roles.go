package auth

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/fidelipromo/loyalty-service/internal/domain"
	"github.com/fidelipromo/loyalty-service/internal/session"
	apperrors "github.com/fidelipromo/loyalty-service/pkg/util/errorutil"
)

const sessionKey = "active_session"

// RequireBusinessContext ensures the caller has an active session whose
// selected context is a business, optionally restricted to the given roles.
func RequireBusinessContext(sessions session.Store, allowed ...domain.BusinessRole) fiber.Handler {
	allowedSet := make(map[domain.BusinessRole]struct{}, len(allowed))
	for _, role := range allowed {
		allowedSet[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		sess, err := loadSession(c, sessions)
		if err != nil {
			return err
		}
		if sess.SelectedContext == nil || sess.SelectedContext.Type != domain.ContextTypeBusiness {
			return apperrors.NewForbidden("business context required")
		}
		if len(allowedSet) > 0 {
			if _, exists := allowedSet[sess.SelectedContext.Role]; !exists {
				return apperrors.NewForbidden("insufficient role")
			}
		}
		c.Locals(sessionKey, sess)
		return c.Next()
	}
}

// RequireCustomerContext ensures the selected context is a customer account.
func RequireCustomerContext(sessions session.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, err := loadSession(c, sessions)
		if err != nil {
			return err
		}
		if sess.SelectedContext == nil || sess.SelectedContext.Type != domain.ContextTypeCustomer {
			return apperrors.NewForbidden("customer context required")
		}
		c.Locals(sessionKey, sess)
		return c.Next()
	}
}

// SessionFromContext retrieves the active session loaded by a context guard.
func SessionFromContext(c *fiber.Ctx) (*session.Session, bool) {
	val := c.Locals(sessionKey)
	if val == nil {
		return nil, false
	}
	sess, ok := val.(*session.Session)
	return sess, ok
}

func loadSession(c *fiber.Ctx, sessions session.Store) (*session.Session, error) {
	principal, ok := PrincipalFromContext(c)
	if !ok {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	sess, err := sessions.Get(c.Context(), principal.Identity.ID)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return nil, apperrors.NewUnauthorized("no active session")
		}
		return nil, apperrors.MapError(err)
	}
	return sess, nil
}
