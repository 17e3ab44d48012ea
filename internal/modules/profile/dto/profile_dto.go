package dto

import (
	"anoa.com/kudoswall/internal/entity"
	badgeDto "anoa.com/kudoswall/internal/modules/badge/dto"
	leaderboard "anoa.com/kudoswall/internal/modules/leaderboard/service"
)

// UpdateProfileInput is a partial update; nil fields are left untouched.
type UpdateProfileInput struct {
	DisplayName *string `json:"display_name" binding:"omitempty,max=100"`
	Bio         *string `json:"bio" binding:"omitempty,max=500"`
	Department  *string `json:"department" binding:"omitempty,max=100"`
	Role        *string `json:"role" binding:"omitempty,oneof=member manager"`
}

type ProfileResponse struct {
	User          *entity.User                  `json:"user"`
	AvatarOptions entity.AvatarOptions          `json:"avatar_options"`
	Badges        []badgeDto.UserBadgeResponse  `json:"badges"`
	KudosReceived int64                         `json:"kudos_received"`
	KudosSent     int64                         `json:"kudos_sent"`
	Recognition   leaderboard.RecognitionStatus `json:"recognition"`
}
