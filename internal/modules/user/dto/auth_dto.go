package dto

import "anoa.com/kudoswall/internal/entity"

type RegisterInput struct {
	Email       string  `json:"email" binding:"required,email"`
	Password    string  `json:"password" binding:"required,min=6"`
	DisplayName string  `json:"display_name" binding:"omitempty,max=100"`
	Department  string  `json:"department" binding:"omitempty,max=100"`
	Role        *string `json:"role" binding:"omitempty,oneof=member manager"`
}

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresIn   int64        `json:"expires_in"`
	User        *entity.User `json:"user"`
}

// TeamMember is the public view of a user used by pickers and listings.
type TeamMember struct {
	ID          string  `json:"id"`
	Email       string  `json:"email"`
	DisplayName string  `json:"display_name"`
	Role        string  `json:"role"`
	Department  string  `json:"department"`
	AvatarURL   *string `json:"avatar_url,omitempty"`
}

func NewTeamMember(u *entity.User) TeamMember {
	return TeamMember{
		ID:          u.ID.String(),
		Email:       u.Email,
		DisplayName: u.DisplayName,
		Role:        u.Role,
		Department:  u.Department,
		AvatarURL:   u.AvatarURL,
	}
}
