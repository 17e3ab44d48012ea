package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"anoa.com/kudoswall/internal/modules/kpi/dto"
	"anoa.com/kudoswall/pkg/apperror"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockKPIService struct {
	mock.Mock
}

func (m *mockKPIService) Create(ctx context.Context, userID uuid.UUID, req dto.CreateKPIRequest) (*dto.KPIResponse, error) {
	args := m.Called(ctx, userID, req)
	if r := args.Get(0); r != nil {
		return r.(*dto.KPIResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockKPIService) ListByUser(ctx context.Context, userID uuid.UUID) ([]dto.KPIResponse, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]dto.KPIResponse), args.Error(1)
}

func (m *mockKPIService) Update(ctx context.Context, userID, id uuid.UUID, req dto.UpdateKPIRequest) (*dto.KPIResponse, error) {
	args := m.Called(ctx, userID, id, req)
	if r := args.Get(0); r != nil {
		return r.(*dto.KPIResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockKPIService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return m.Called(ctx, userID, id).Error(0)
}

func router(svc *mockKPIService, userID uuid.UUID) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewKPIHandler(svc)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("user_id", userID.String())
		c.Next()
	})
	r.POST("/kpis", h.CreateKPI)
	r.DELETE("/kpis/:id", h.DeleteKPI)
	return r
}

func TestKPIHandler(t *testing.T) {
	userID := uuid.New()

	t.Run("Create rejects non-positive target", func(t *testing.T) {
		svc := new(mockKPIService)
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/kpis", bytes.NewBufferString(
			`{"title":"Ship","target":0,"start_date":"2026-01-01T00:00:00Z","end_date":"2026-02-01T00:00:00Z"}`))
		req.Header.Set("Content-Type", "application/json")
		router(svc, userID).ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		svc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Create", func(t *testing.T) {
		svc := new(mockKPIService)
		svc.On("Create", mock.Anything, userID, mock.AnythingOfType("dto.CreateKPIRequest")).
			Return(&dto.KPIResponse{ID: uuid.New(), Title: "Ship", Target: 4}, nil).Once()

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/kpis", bytes.NewBufferString(
			`{"title":"Ship","target":4,"start_date":"2026-01-01T00:00:00Z","end_date":"2026-02-01T00:00:00Z"}`))
		req.Header.Set("Content-Type", "application/json")
		router(svc, userID).ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
		svc.AssertExpectations(t)
	})

	t.Run("Delete forbidden", func(t *testing.T) {
		id := uuid.New()
		svc := new(mockKPIService)
		svc.On("Delete", mock.Anything, userID, id).
			Return(apperror.New(http.StatusForbidden, "you can only modify your own KPIs", apperror.ErrForbidden)).Once()

		w := httptest.NewRecorder()
		router(svc, userID).ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/kpis/"+id.String(), nil))

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.JSONEq(t, `{"error":"you can only modify your own KPIs"}`, w.Body.String())
	})
}
