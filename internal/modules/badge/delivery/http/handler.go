package handler

import (
	"net/http"

	"anoa.com/kudoswall/internal/modules/badge/dto"
	badge "anoa.com/kudoswall/internal/modules/badge/service"
	"anoa.com/kudoswall/pkg/response"
	"github.com/gin-gonic/gin"
)

type BadgeHandler struct {
	service badge.BadgeService
}

func NewBadgeHandler(service badge.BadgeService) *BadgeHandler {
	return &BadgeHandler{service: service}
}

func (h *BadgeHandler) GetCatalog(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": h.service.Catalog()})
}

func (h *BadgeHandler) GetMyBadges(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	badges, err := h.service.GetUserBadges(c.Request.Context(), userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": badges})
}

func (h *BadgeHandler) GetUserBadges(c *gin.Context) {
	userID, err := response.ParamUUID(c, "id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	badges, err := h.service.GetUserBadges(c.Request.Context(), userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": badges})
}

// Evaluate backfills the caller's badges against every stored kudos.
func (h *BadgeHandler) Evaluate(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	badges, err := h.service.EvaluateUser(c.Request.Context(), userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"new_badges": dto.NewBadgeResponses(badges)})
}
