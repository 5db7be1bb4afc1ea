package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/fidelipromo/loyalty-service/internal/api/dto"
	"github.com/fidelipromo/loyalty-service/internal/auth"
	"github.com/fidelipromo/loyalty-service/internal/domain"
	"github.com/fidelipromo/loyalty-service/internal/service"
	apperrors "github.com/fidelipromo/loyalty-service/pkg/util/errorutil"
)

// TeamHandler exposes team management endpoints for the active business.
type TeamHandler struct {
	teams *service.TeamService
}

// NewTeamHandler constructs handler.
func NewTeamHandler(teams *service.TeamService) *TeamHandler {
	return &TeamHandler{teams: teams}
}

// List handles GET /business/team.
func (h *TeamHandler) List(c *fiber.Ctx) error {
	sess, ok := auth.SessionFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("business context required")
	}

	members, err := h.teams.ListMembers(c.Context(), sess.SelectedContext.ID)
	if err != nil {
		return apperrors.MapError(err)
	}

	resp := make([]dto.TeamMemberResponse, 0, len(members))
	for _, m := range members {
		resp = append(resp, dto.TeamMemberResponse{
			UserID:   m.UserID,
			Email:    m.Email,
			Role:     m.Role,
			JoinedAt: m.JoinedAt,
		})
	}
	return c.JSON(fiber.Map{"data": resp})
}

// Invite handles POST /business/team/invite.
func (h *TeamHandler) Invite(c *fiber.Ctx) error {
	sess, ok := auth.SessionFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("business context required")
	}

	var req dto.InviteRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	membership, err := h.teams.Invite(c.Context(), sess.IdentityID, sess.SelectedContext.ID, req.Email, domain.BusinessRole(req.Role))
	if err != nil {
		return apperrors.MapError(err)
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data": fiber.Map{
			"user_id": membership.UserID,
			"role":    membership.Role,
		},
	})
}

// Remove handles DELETE /business/team/:userID.
func (h *TeamHandler) Remove(c *fiber.Ctx) error {
	sess, ok := auth.SessionFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("business context required")
	}

	targetUserID := c.Params("userID")
	if targetUserID == "" {
		return fiber.NewError(http.StatusBadRequest, "user id required")
	}

	if err := h.teams.RemoveMember(c.Context(), sess.IdentityID, sess.SelectedContext.ID, targetUserID); err != nil {
		return apperrors.MapError(err)
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"status": "removed"}})
}
