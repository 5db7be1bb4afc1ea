package dto

import (
	"time"

	"github.com/fidelipromo/loyalty-service/internal/domain"
)

// InviteRequest payload for POST /business/team/invite. The email format is
// checked before any lookup happens.
type InviteRequest struct {
	Email string `json:"email" validate:"required,email"`
	Role  string `json:"role" validate:"required,oneof=admin operator"`
}

// TeamMemberResponse is one row of the team list.
type TeamMemberResponse struct {
	UserID   string              `json:"user_id"`
	Email    string              `json:"email"`
	Role     domain.BusinessRole `json:"role"`
	JoinedAt time.Time           `json:"joined_at"`
}
