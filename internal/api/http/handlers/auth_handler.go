package handlers

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/fidelipromo/loyalty-service/internal/api/dto"
	"github.com/fidelipromo/loyalty-service/internal/auth"
	"github.com/fidelipromo/loyalty-service/internal/domain"
	"github.com/fidelipromo/loyalty-service/internal/service"
	"github.com/fidelipromo/loyalty-service/internal/session"
	apperrors "github.com/fidelipromo/loyalty-service/pkg/util/errorutil"
)

// AuthHandler exposes registration, login, session and context endpoints.
type AuthHandler struct {
	authService *service.AuthService
	contexts    *service.ContextService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService, contexts *service.ContextService) *AuthHandler {
	return &AuthHandler{authService: authService, contexts: contexts}
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	sess, token, exp, err := h.authService.SignIn(c.Context(), req.Email, req.Password)
	if err != nil {
		return fiber.NewError(http.StatusUnauthorized, err.Error())
	}

	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"session": dto.NewSessionResponse(sess, service.Next(sess)),
			"auth":    dto.AuthResponse{Token: token, ExpiresAt: exp},
		},
	})
}

// RegisterCustomer handles POST /auth/register.
func (h *AuthHandler) RegisterCustomer(c *fiber.Ctx) error {
	var req dto.CustomerRegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	customer, sess, token, exp, err := h.authService.SignUpCustomer(c.Context(), service.CustomerSignUp{
		Email:        req.Email,
		Password:     req.Password,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Phone:        req.Phone,
		ReferralCode: req.ReferralCode,
	})
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data": fiber.Map{
			"customer": fiber.Map{
				"id":            customer.ID,
				"referral_code": customer.ReferralCode,
			},
			"session": dto.NewSessionResponse(sess, service.Next(sess)),
			"auth":    dto.AuthResponse{Token: token, ExpiresAt: exp},
		},
	})
}

// RegisterBusiness handles POST /auth/register/business.
func (h *AuthHandler) RegisterBusiness(c *fiber.Ctx) error {
	var req dto.BusinessRegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	business, sess, token, exp, err := h.authService.SignUpBusiness(c.Context(), service.BusinessSignUp{
		Email:            req.Email,
		Password:         req.Password,
		BusinessName:     req.BusinessName,
		BusinessType:     req.BusinessType,
		Phone:            req.Phone,
		Address:          req.Address,
		SubscriptionPlan: req.Plan,
	})
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data": fiber.Map{
			"business": fiber.Map{
				"id":                business.ID,
				"business_name":     business.Name,
				"subscription_plan": business.SubscriptionPlan,
			},
			"session": dto.NewSessionResponse(sess, service.Next(sess)),
			"auth":    dto.AuthResponse{Token: token, ExpiresAt: exp},
		},
	})
}

// Logout handles POST /auth/logout.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	if err := h.authService.SignOut(c.Context(), principal.Identity.ID); err != nil {
		return apperrors.MapError(err)
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"status": "signed_out"}})
}

// Session handles GET /auth/session. Contexts are recomputed on every call.
func (h *AuthHandler) Session(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	sess, err := h.authService.Session(c.Context(), principal.Identity.ID)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return apperrors.NewUnauthorized("no active session")
		}
		return apperrors.MapError(err)
	}

	return c.JSON(fiber.Map{"data": dto.NewSessionResponse(sess, service.Next(sess))})
}

// SelectContext handles POST /auth/context/select.
func (h *AuthHandler) SelectContext(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var req dto.SelectContextRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	sess, err := h.contexts.Select(c.Context(), principal.Identity.ID, domain.AppContext{
		Type: domain.ContextType(req.Type),
		ID:   req.ID,
	})
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return apperrors.NewUnauthorized("no active session")
		}
		return apperrors.MapError(err)
	}

	return c.JSON(fiber.Map{"data": dto.NewSessionResponse(sess, service.Next(sess))})
}

// RequestPasswordReset handles POST /auth/password/reset/request. The reply
// is the same whether or not the email is registered.
func (h *AuthHandler) RequestPasswordReset(c *fiber.Ctx) error {
	var req dto.PasswordResetRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	if err := h.authService.RequestPasswordReset(c.Context(), req.Email); err != nil {
		return apperrors.MapError(err)
	}
	return c.Status(http.StatusAccepted).JSON(fiber.Map{
		"data": fiber.Map{
			"status": "accepted",
			"detail": "if the email is registered, a reset message has been sent",
		},
	})
}

// ConfirmPasswordReset handles POST /auth/password/reset/confirm.
func (h *AuthHandler) ConfirmPasswordReset(c *fiber.Ctx) error {
	var req dto.PasswordResetConfirmRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	if err := h.authService.ConfirmPasswordReset(c.Context(), req.Token, req.NewPassword); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"status": "password_reset"}})
}
