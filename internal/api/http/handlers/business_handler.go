package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/fidelipromo/loyalty-service/internal/api/dto"
	"github.com/fidelipromo/loyalty-service/internal/auth"
	"github.com/fidelipromo/loyalty-service/internal/service"
	apperrors "github.com/fidelipromo/loyalty-service/pkg/util/errorutil"
)

// BusinessHandler exposes merchant-side endpoints for the active business.
type BusinessHandler struct {
	businesses *service.BusinessService
}

// NewBusinessHandler constructs handler.
func NewBusinessHandler(businesses *service.BusinessService) *BusinessHandler {
	return &BusinessHandler{businesses: businesses}
}

// Get handles GET /business.
func (h *BusinessHandler) Get(c *fiber.Ctx) error {
	sess, ok := auth.SessionFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("business context required")
	}

	business, err := h.businesses.GetBusiness(c.Context(), sess.SelectedContext.ID)
	if err != nil {
		return apperrors.MapError(err)
	}

	return c.JSON(fiber.Map{"data": dto.BusinessResponse{
		ID:                 business.ID,
		Name:               business.Name,
		BusinessType:       business.BusinessType,
		Phone:              business.Phone,
		Address:            business.Address,
		Email:              business.Email,
		SubscriptionPlan:   business.SubscriptionPlan,
		CashbackPercentage: business.CashbackPercentage,
	}})
}

// RecordTransaction handles POST /business/transactions.
func (h *BusinessHandler) RecordTransaction(c *fiber.Ctx) error {
	sess, ok := auth.SessionFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("business context required")
	}

	var req dto.RecordTransactionRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	tx, err := h.businesses.RecordTransaction(c.Context(), sess.IdentityID, sess.SelectedContext.ID, req.CustomerCode, req.Amount)
	if err != nil {
		return apperrors.MapError(err)
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.TransactionResponse{
		ID:             tx.ID,
		BusinessID:     tx.BusinessID,
		Amount:         tx.Amount,
		CashbackAmount: tx.CashbackAmount,
		Status:         tx.Status,
		CreatedAt:      tx.CreatedAt,
	}})
}

// ListCustomers handles GET /business/customers.
func (h *BusinessHandler) ListCustomers(c *fiber.Ctx) error {
	sess, ok := auth.SessionFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("business context required")
	}

	customers, err := h.businesses.ListCustomers(c.Context(), sess.SelectedContext.ID)
	if err != nil {
		return apperrors.MapError(err)
	}

	resp := make([]dto.EnrolledCustomerResponse, 0, len(customers))
	for _, cust := range customers {
		resp = append(resp, dto.EnrolledCustomerResponse{
			CustomerID:       cust.CustomerID,
			FirstName:        cust.FirstName,
			LastName:         cust.LastName,
			ReferralCode:     cust.ReferralCode,
			AvailableBalance: cust.AvailableBalance,
			TotalEarned:      cust.TotalEarned,
		})
	}
	return c.JSON(fiber.Map{"data": resp})
}
