package dto

import (
	"time"

	"anoa.com/kudoswall/internal/entity"
	badgeDto "anoa.com/kudoswall/internal/modules/badge/dto"
	commonDto "anoa.com/kudoswall/pkg/dto"
	"github.com/google/uuid"
)

type SendKudosRequest struct {
	ReceiverID uuid.UUID `json:"receiver_id" binding:"required"`
	Message    string    `json:"message" binding:"required,max=1000"`
	Category   string    `json:"category" binding:"required"`
}

type UserSummary struct {
	ID          uuid.UUID `json:"id"`
	DisplayName string    `json:"display_name"`
	AvatarURL   *string   `json:"avatar_url,omitempty"`
}

type KudosResponse struct {
	ID         uuid.UUID    `json:"id"`
	SenderID   uuid.UUID    `json:"sender_id"`
	ReceiverID uuid.UUID    `json:"receiver_id"`
	Sender     *UserSummary `json:"sender,omitempty"`
	Receiver   *UserSummary `json:"receiver,omitempty"`
	// Message is HTML-escaped text (tags stripped, entities kept); render it as HTML.
	Message    string       `json:"message"`
	Category   string       `json:"category"`
	CreatedAt  time.Time    `json:"created_at"`
}

type SendKudosResponse struct {
	Kudos     KudosResponse            `json:"kudos"`
	NewBadges []badgeDto.BadgeResponse `json:"new_badges"`
}

type KudosListResponse struct {
	Data []KudosResponse          `json:"data"`
	Meta commonDto.PaginationMeta `json:"meta"`
}

type SearchQuery struct {
	Query string `form:"q" binding:"required,max=200"`
	Limit int    `form:"limit" binding:"omitempty,min=1,max=100"`
}

func summary(u *entity.User) *UserSummary {
	if u == nil || u.ID == uuid.Nil {
		return nil
	}
	return &UserSummary{ID: u.ID, DisplayName: u.DisplayName, AvatarURL: u.AvatarURL}
}

func NewKudosResponse(k *entity.Kudos) KudosResponse {
	return KudosResponse{
		ID:         k.ID,
		SenderID:   k.SenderID,
		ReceiverID: k.ReceiverID,
		Sender:     summary(k.Sender),
		Receiver:   summary(k.Receiver),
		Message:    k.Message,
		Category:   k.Category,
		CreatedAt:  k.CreatedAt,
	}
}

func NewKudosResponses(records []entity.Kudos) []KudosResponse {
	out := make([]KudosResponse, 0, len(records))
	for i := range records {
		out = append(out, NewKudosResponse(&records[i]))
	}
	return out
}
