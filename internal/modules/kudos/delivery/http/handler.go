package handler

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"

	"anoa.com/kudoswall/internal/modules/kudos/dto"
	kudos "anoa.com/kudoswall/internal/modules/kudos/service"
	"anoa.com/kudoswall/pkg/apperror"
	commonDto "anoa.com/kudoswall/pkg/dto"
	"anoa.com/kudoswall/pkg/ratelimit"
	"anoa.com/kudoswall/pkg/response"
	"github.com/gin-gonic/gin"
)

type KudosHandler struct {
	service   kudos.KudosService
	retryHint string
}

func NewKudosHandler(service kudos.KudosService, rateWindow time.Duration) *KudosHandler {
	return &KudosHandler{service: service, retryHint: seconds(rateWindow)}
}

func seconds(d time.Duration) string {
	return fmt.Sprintf("%.0f", math.Ceil(d.Seconds()))
}

func (h *KudosHandler) retryAfter(err error) string {
	var rl *ratelimit.Error
	if errors.As(err, &rl) && rl.RetryAfter > 0 {
		return seconds(rl.RetryAfter)
	}
	return h.retryHint
}

func (h *KudosHandler) SendKudos(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req dto.SendKudosRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindingError(c, err)
		return
	}

	res, err := h.service.SendKudos(c.Request.Context(), userID, req)
	if err != nil {
		if errors.Is(err, apperror.ErrRateLimitExceeded) {
			c.Header("Retry-After", h.retryAfter(err))
		}
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, res)
}

func (h *KudosHandler) GetWall(c *gin.Context) {
	var q commonDto.PageQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BindingError(c, err)
		return
	}

	res, err := h.service.ListAll(c.Request.Context(), q)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *KudosHandler) GetReceived(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	records, err := h.service.ListReceived(c.Request.Context(), userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": records})
}

func (h *KudosHandler) GetSent(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	records, err := h.service.ListSent(c.Request.Context(), userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": records})
}

// GetUserKudos lists what another user has received.
func (h *KudosHandler) GetUserKudos(c *gin.Context) {
	userID, err := response.ParamUUID(c, "id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	records, err := h.service.ListReceived(c.Request.Context(), userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": records})
}

func (h *KudosHandler) Search(c *gin.Context) {
	var q dto.SearchQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BindingError(c, err)
		return
	}

	records, err := h.service.Search(c.Request.Context(), q)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": records})
}
