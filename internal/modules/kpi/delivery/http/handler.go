package handler

import (
	"net/http"

	"anoa.com/kudoswall/internal/modules/kpi/dto"
	kpiService "anoa.com/kudoswall/internal/modules/kpi/service"
	"anoa.com/kudoswall/pkg/response"
	"github.com/gin-gonic/gin"
)

type KPIHandler struct {
	service kpiService.KPIService
}

func NewKPIHandler(service kpiService.KPIService) *KPIHandler {
	return &KPIHandler{service: service}
}

func (h *KPIHandler) ListKPIs(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	kpis, err := h.service.ListByUser(c.Request.Context(), userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": kpis})
}

func (h *KPIHandler) CreateKPI(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req dto.CreateKPIRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindingError(c, err)
		return
	}

	kpi, err := h.service.Create(c.Request.Context(), userID, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, kpi)
}

func (h *KPIHandler) UpdateKPI(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	id, err := response.ParamUUID(c, "id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req dto.UpdateKPIRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindingError(c, err)
		return
	}

	kpi, err := h.service.Update(c.Request.Context(), userID, id, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, kpi)
}

func (h *KPIHandler) DeleteKPI(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	id, err := response.ParamUUID(c, "id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	if err := h.service.Delete(c.Request.Context(), userID, id); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "KPI deleted"})
}
