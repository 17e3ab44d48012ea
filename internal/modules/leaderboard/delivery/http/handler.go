package http

import (
	"net/http"

	"anoa.com/kudoswall/internal/modules/leaderboard/dto"
	leaderboardService "anoa.com/kudoswall/internal/modules/leaderboard/service"
	"anoa.com/kudoswall/pkg/response"
	"github.com/gin-gonic/gin"
)

type LeaderboardHandler struct {
	service leaderboardService.LeaderboardService
}

func NewLeaderboardHandler(service leaderboardService.LeaderboardService) *LeaderboardHandler {
	return &LeaderboardHandler{service: service}
}

func (h *LeaderboardHandler) GetLeaderboard(c *gin.Context) {
	var q dto.LeaderboardQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BindingError(c, err)
		return
	}
	if q.Timeframe == "" {
		q.Timeframe = dto.TimeframeWeekly
	}

	leaderboard, err := h.service.GetLeaderboard(c.Request.Context(), q)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"timeframe": q.Timeframe, "data": leaderboard})
}
