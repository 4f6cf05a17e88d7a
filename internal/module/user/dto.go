package user

import (
	"time"

	"github.com/simp-lee/blogapi/internal/domain"
)

// UpdateProfileRequest represents the input for changing the caller's display name.
type UpdateProfileRequest struct {
	Name string `json:"name" form:"name" binding:"required,min=2,max=100"`
}

// ProfileResponse is the caller's own account view.
type ProfileResponse struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func toProfileResponse(u *domain.User) ProfileResponse {
	return ProfileResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
