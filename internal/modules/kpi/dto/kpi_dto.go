package dto

import (
	"time"

	"anoa.com/kudoswall/internal/entity"
	"github.com/google/uuid"
)

type CreateKPIRequest struct {
	Title       string    `json:"title" binding:"required,max=200"`
	Description string    `json:"description" binding:"max=2000"`
	Target      float64   `json:"target" binding:"required,gt=0"`
	Current     float64   `json:"current" binding:"gte=0"`
	Unit        string    `json:"unit" binding:"max=30"`
	StartDate   time.Time `json:"start_date" binding:"required"`
	EndDate     time.Time `json:"end_date" binding:"required"`
}

// UpdateKPIRequest is a partial update; nil fields are left untouched.
type UpdateKPIRequest struct {
	Title       *string    `json:"title" binding:"omitempty,min=1,max=200"`
	Description *string    `json:"description" binding:"omitempty,max=2000"`
	Target      *float64   `json:"target" binding:"omitempty,gt=0"`
	Current     *float64   `json:"current" binding:"omitempty,gte=0"`
	Unit        *string    `json:"unit" binding:"omitempty,max=30"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
}

type KPIResponse struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Target      float64   `json:"target"`
	Current     float64   `json:"current"`
	Unit        string    `json:"unit"`
	Progress    float64   `json:"progress"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func NewKPIResponse(k *entity.KPI) KPIResponse {
	return KPIResponse{
		ID:          k.ID,
		UserID:      k.UserID,
		Title:       k.Title,
		Description: k.Description,
		Target:      k.Target,
		Current:     k.Current,
		Unit:        k.Unit,
		Progress:    k.Progress(),
		StartDate:   k.StartDate,
		EndDate:     k.EndDate,
		CreatedAt:   k.CreatedAt,
		UpdatedAt:   k.UpdatedAt,
	}
}

func NewKPIResponses(kpis []entity.KPI) []KPIResponse {
	out := make([]KPIResponse, 0, len(kpis))
	for i := range kpis {
		out = append(out, NewKPIResponse(&kpis[i]))
	}
	return out
}
