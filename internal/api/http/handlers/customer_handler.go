package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/fidelipromo/loyalty-service/internal/api/dto"
	"github.com/fidelipromo/loyalty-service/internal/auth"
	"github.com/fidelipromo/loyalty-service/internal/service"
	apperrors "github.com/fidelipromo/loyalty-service/pkg/util/errorutil"
)

// CustomerHandler exposes the customer dashboard endpoints.
type CustomerHandler struct {
	customers *service.CustomerService
}

// NewCustomerHandler constructs handler.
func NewCustomerHandler(customers *service.CustomerService) *CustomerHandler {
	return &CustomerHandler{customers: customers}
}

// Profile handles GET /customer/profile.
func (h *CustomerHandler) Profile(c *fiber.Ctx) error {
	sess, ok := auth.SessionFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("customer context required")
	}

	customer, err := h.customers.Profile(c.Context(), sess.SelectedContext.ID)
	if err != nil {
		return apperrors.MapError(err)
	}

	return c.JSON(fiber.Map{"data": dto.CustomerProfileResponse{
		ID:             customer.ID,
		FirstName:      customer.FirstName,
		LastName:       customer.LastName,
		Phone:          customer.Phone,
		ReferralCode:   customer.ReferralCode,
		ReferredByCode: customer.ReferredByCode,
	}})
}

// Balances handles GET /customer/balances.
func (h *CustomerHandler) Balances(c *fiber.Ctx) error {
	sess, ok := auth.SessionFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("customer context required")
	}

	balances, totals, err := h.customers.Balances(c.Context(), sess.SelectedContext.ID)
	if err != nil {
		return apperrors.MapError(err)
	}

	rows := make([]dto.BalanceResponse, 0, len(balances))
	for _, b := range balances {
		rows = append(rows, dto.BalanceResponse{
			BusinessID:       b.BusinessID,
			BusinessName:     b.BusinessName,
			AvailableBalance: b.AvailableBalance,
			TotalEarned:      b.TotalEarned,
			TotalRedeemed:    b.TotalRedeemed,
		})
	}
	return c.JSON(fiber.Map{"data": dto.BalancesResponse{
		Balances:       rows,
		TotalAvailable: totals.TotalAvailable,
		TotalEarned:    totals.TotalEarned,
	}})
}

// Transactions handles GET /customer/transactions.
func (h *CustomerHandler) Transactions(c *fiber.Ctx) error {
	sess, ok := auth.SessionFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("customer context required")
	}

	transactions, err := h.customers.Transactions(c.Context(), sess.SelectedContext.ID)
	if err != nil {
		return apperrors.MapError(err)
	}

	resp := make([]dto.TransactionResponse, 0, len(transactions))
	for _, tx := range transactions {
		resp = append(resp, dto.TransactionResponse{
			ID:             tx.ID,
			BusinessID:     tx.BusinessID,
			BusinessName:   tx.BusinessName,
			Amount:         tx.Amount,
			CashbackAmount: tx.CashbackAmount,
			Status:         tx.Status,
			CreatedAt:      tx.CreatedAt,
		})
	}
	return c.JSON(fiber.Map{"data": resp})
}

// Referrals handles GET /customer/referrals.
func (h *CustomerHandler) Referrals(c *fiber.Ctx) error {
	sess, ok := auth.SessionFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("customer context required")
	}

	stats, err := h.customers.Referrals(c.Context(), sess.SelectedContext.ID)
	if err != nil {
		return apperrors.MapError(err)
	}

	return c.JSON(fiber.Map{"data": dto.ReferralStatsResponse{
		DirectReferrals: stats.DirectReferrals,
		TotalEarnings:   stats.TotalEarnings,
	}})
}
