package dto

import (
	badgeDto "anoa.com/kudoswall/internal/modules/badge/dto"
	kpiDto "anoa.com/kudoswall/internal/modules/kpi/dto"
	kudosDto "anoa.com/kudoswall/internal/modules/kudos/dto"
	leaderboardDto "anoa.com/kudoswall/internal/modules/leaderboard/dto"
)

type KudosSummary struct {
	Total  int64                    `json:"total"`
	Latest []kudosDto.KudosResponse `json:"latest"`
}

type DashboardResponse struct {
	KPIs          []kpiDto.KPIResponse             `json:"kpis"`
	Received      KudosSummary                     `json:"received"`
	Sent          KudosSummary                     `json:"sent"`
	Badges        []badgeDto.UserBadgeResponse     `json:"badges"`
	TeamMembers   int64                            `json:"team_members"`
	WeeklyTopUser *leaderboardDto.LeaderboardEntry `json:"weekly_top_user"`
}
