package dto

import (
	"time"

	"github.com/fidelipromo/loyalty-service/internal/domain"
	"github.com/fidelipromo/loyalty-service/internal/session"
)

// LoginRequest payload for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// CustomerRegisterRequest payload for POST /auth/register.
type CustomerRegisterRequest struct {
	Email        string `json:"email" validate:"required,email"`
	Password     string `json:"password" validate:"required,min=6"`
	FirstName    string `json:"first_name" validate:"required"`
	LastName     string `json:"last_name"`
	Phone        string `json:"phone"`
	ReferralCode string `json:"referral_code"`
}

// BusinessRegisterRequest payload for POST /auth/register/business.
type BusinessRegisterRequest struct {
	Email        string `json:"email" validate:"required,email"`
	Password     string `json:"password" validate:"required,min=6"`
	BusinessName string `json:"business_name" validate:"required"`
	BusinessType string `json:"business_type"`
	Phone        string `json:"phone"`
	Address      string `json:"address"`
	Plan         string `json:"plan"`
}

// PasswordResetRequest payload for POST /auth/password/reset/request.
type PasswordResetRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// PasswordResetConfirmRequest payload for POST /auth/password/reset/confirm.
type PasswordResetConfirmRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=6"`
}

// SelectContextRequest payload for POST /auth/context/select.
type SelectContextRequest struct {
	Type string `json:"type" validate:"required,oneof=business customer"`
	ID   string `json:"id" validate:"required"`
}

// AuthResponse carries issued token info.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// SessionResponse reflects the session record plus the routing hint.
type SessionResponse struct {
	IdentityID      string              `json:"identity_id"`
	Email           string              `json:"email"`
	UserType        domain.UserType     `json:"user_type"`
	Contexts        []domain.AppContext `json:"contexts"`
	SelectedContext *domain.AppContext  `json:"selected_context,omitempty"`
	Next            string              `json:"next"`
}

// NewSessionResponse maps a session record and routing hint to the response.
func NewSessionResponse(sess *session.Session, next string) SessionResponse {
	return SessionResponse{
		IdentityID:      sess.IdentityID,
		Email:           sess.Email,
		UserType:        sess.UserType,
		Contexts:        sess.Contexts,
		SelectedContext: sess.SelectedContext,
		Next:            next,
	}
}
