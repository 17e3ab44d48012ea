package dto

import "github.com/google/uuid"

const (
	TimeframeWeekly  = "weekly"
	TimeframeAllTime = "all_time"
)

type LeaderboardQuery struct {
	Timeframe string `form:"timeframe" binding:"omitempty,oneof=weekly all_time"`
	Limit     int    `form:"limit" binding:"omitempty,min=1,max=50"`
}

// LeaderboardEntry is one ranked receiver. Position is 1-based.
type LeaderboardEntry struct {
	Position    int       `json:"position"`
	UserID      uuid.UUID `json:"user_id"`
	DisplayName string    `json:"display_name"`
	Department  string    `json:"department,omitempty"`
	AvatarURL   *string   `json:"avatar_url,omitempty"`
	KudosCount  int64     `json:"kudos_count"`
	Tier        string    `json:"tier"`
	WeeklyLabel string    `json:"weekly_label,omitempty"`
}
