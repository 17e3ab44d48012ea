package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"anoa.com/kudoswall/internal/modules/leaderboard/dto"
	leaderboardService "anoa.com/kudoswall/internal/modules/leaderboard/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockLeaderboardService struct {
	mock.Mock
}

func (m *mockLeaderboardService) GetLeaderboard(ctx context.Context, q dto.LeaderboardQuery) ([]dto.LeaderboardEntry, error) {
	args := m.Called(ctx, q)
	return args.Get(0).([]dto.LeaderboardEntry), args.Error(1)
}

func (m *mockLeaderboardService) GetWeeklyLeaderboard(ctx context.Context, limit int) ([]dto.LeaderboardEntry, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]dto.LeaderboardEntry), args.Error(1)
}

func (m *mockLeaderboardService) GetAllTimeLeaderboard(ctx context.Context, limit int) ([]dto.LeaderboardEntry, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]dto.LeaderboardEntry), args.Error(1)
}

func (m *mockLeaderboardService) GetRecognitionStatus(ctx context.Context, userID uuid.UUID) (leaderboardService.RecognitionStatus, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(leaderboardService.RecognitionStatus), args.Error(1)
}

func TestLeaderboardHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)

	serve := func(svc *mockLeaderboardService, target string) *httptest.ResponseRecorder {
		r := gin.New()
		r.GET("/leaderboard", NewLeaderboardHandler(svc).GetLeaderboard)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
		return w
	}

	t.Run("Defaults to weekly", func(t *testing.T) {
		svc := new(mockLeaderboardService)
		svc.On("GetLeaderboard", mock.Anything, dto.LeaderboardQuery{Timeframe: dto.TimeframeWeekly}).
			Return([]dto.LeaderboardEntry{}, nil).Once()

		w := serve(svc, "/leaderboard")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"timeframe":"weekly","data":[]}`, w.Body.String())
		svc.AssertExpectations(t)
	})

	t.Run("Rejects unknown timeframe", func(t *testing.T) {
		w := serve(new(mockLeaderboardService), "/leaderboard?timeframe=monthly")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Rejects oversized limit", func(t *testing.T) {
		w := serve(new(mockLeaderboardService), "/leaderboard?limit=51")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
