package handler

import (
	"net/http"

	avatarService "anoa.com/kudoswall/internal/modules/avatar/service"
	"anoa.com/kudoswall/pkg/response"
	"github.com/gin-gonic/gin"
)

type AvatarHandler struct {
	service avatarService.AvatarService
}

func NewAvatarHandler(service avatarService.AvatarService) *AvatarHandler {
	return &AvatarHandler{service: service}
}

func (h *AvatarHandler) GetAvatar(c *gin.Context) {
	svg, err := h.service.Render(c.Request.Context(), c.Param("options"))
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.Header("Cache-Control", "public, max-age=31536000")
	c.Data(http.StatusOK, "image/svg+xml", svg)
}
