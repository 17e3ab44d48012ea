package dto

import (
	"time"

	"anoa.com/kudoswall/internal/entity"
	"github.com/google/uuid"
)

type BadgeResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	ImageURL    string    `json:"image_url"`
	Criteria    string    `json:"criteria"`
}

type UserBadgeResponse struct {
	BadgeResponse
	EarnedAt time.Time `json:"earned_at"`
}

// DefinitionResponse is a catalog entry as shown before anyone has earned it.
type DefinitionResponse struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`
	Criteria    string `json:"criteria"`
}

func NewBadgeResponse(b entity.Badge) BadgeResponse {
	return BadgeResponse{
		ID:          b.ID,
		Name:        b.Name,
		Description: b.Description,
		ImageURL:    b.ImageURL,
		Criteria:    b.Criteria,
	}
}

func NewBadgeResponses(badges []entity.Badge) []BadgeResponse {
	out := make([]BadgeResponse, 0, len(badges))
	for _, b := range badges {
		out = append(out, NewBadgeResponse(b))
	}
	return out
}

func NewUserBadgeResponses(entries []entity.UserBadge) []UserBadgeResponse {
	out := make([]UserBadgeResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, UserBadgeResponse{
			BadgeResponse: NewBadgeResponse(e.Badge),
			EarnedAt:      e.EarnedAt,
		})
	}
	return out
}
