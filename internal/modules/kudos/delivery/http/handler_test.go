package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"anoa.com/kudoswall/internal/modules/kudos/dto"
	"anoa.com/kudoswall/pkg/apperror"
	commonDto "anoa.com/kudoswall/pkg/dto"
	"anoa.com/kudoswall/pkg/ratelimit"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockKudosService struct {
	mock.Mock
}

func (m *mockKudosService) SendKudos(ctx context.Context, senderID uuid.UUID, req dto.SendKudosRequest) (*dto.SendKudosResponse, error) {
	args := m.Called(ctx, senderID, req)
	if r := args.Get(0); r != nil {
		return r.(*dto.SendKudosResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockKudosService) ListReceived(ctx context.Context, userID uuid.UUID) ([]dto.KudosResponse, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]dto.KudosResponse), args.Error(1)
}

func (m *mockKudosService) ListSent(ctx context.Context, userID uuid.UUID) ([]dto.KudosResponse, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]dto.KudosResponse), args.Error(1)
}

func (m *mockKudosService) ListAll(ctx context.Context, q commonDto.PageQuery) (*dto.KudosListResponse, error) {
	args := m.Called(ctx, q)
	return args.Get(0).(*dto.KudosListResponse), args.Error(1)
}

func (m *mockKudosService) Search(ctx context.Context, q dto.SearchQuery) ([]dto.KudosResponse, error) {
	args := m.Called(ctx, q)
	return args.Get(0).([]dto.KudosResponse), args.Error(1)
}

func router(h *KudosHandler, userID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if userID != "" {
			c.Set("user_id", userID)
		}
		c.Next()
	})
	r.POST("/kudos", h.SendKudos)
	r.GET("/kudos/search", h.Search)
	return r
}

func post(r *gin.Engine, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/kudos", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestKudosHandler_SendKudos(t *testing.T) {
	sender := uuid.New()
	receiver := uuid.New()
	body := `{"receiver_id":"` + receiver.String() + `","message":"thanks","category":"teamwork"}`

	t.Run("Unauthenticated", func(t *testing.T) {
		w := post(router(NewKudosHandler(new(mockKudosService), 5*time.Second), ""), body)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Missing message", func(t *testing.T) {
		svc := new(mockKudosService)
		w := post(router(NewKudosHandler(svc, 5*time.Second), sender.String()), `{"receiver_id":"`+receiver.String()+`","category":"teamwork"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		svc.AssertNotCalled(t, "SendKudos", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Created", func(t *testing.T) {
		svc := new(mockKudosService)
		svc.On("SendKudos", mock.Anything, sender, dto.SendKudosRequest{ReceiverID: receiver, Message: "thanks", Category: "teamwork"}).
			Return(&dto.SendKudosResponse{}, nil).Once()
		w := post(router(NewKudosHandler(svc, 5*time.Second), sender.String()), body)
		assert.Equal(t, http.StatusCreated, w.Code)
		svc.AssertExpectations(t)
	})

	t.Run("Rate limited", func(t *testing.T) {
		svc := new(mockKudosService)
		svc.On("SendKudos", mock.Anything, sender, mock.Anything).
			Return(nil, apperror.New(http.StatusTooManyRequests, "slow down", apperror.ErrRateLimitExceeded)).Once()
		w := post(router(NewKudosHandler(svc, 5*time.Second), sender.String()), body)
		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.Equal(t, "5", w.Header().Get("Retry-After"))
	})

	t.Run("Rate limited with remaining lock time", func(t *testing.T) {
		svc := new(mockKudosService)
		svc.On("SendKudos", mock.Anything, sender, mock.Anything).
			Return(nil, &ratelimit.Error{Message: "please wait 3 seconds", RetryAfter: 2500 * time.Millisecond}).Once()
		w := post(router(NewKudosHandler(svc, 5*time.Second), sender.String()), body)
		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.Equal(t, "3", w.Header().Get("Retry-After"))
		assert.Contains(t, w.Body.String(), "please wait 3 seconds")
	})
}

func TestKudosHandler_Search(t *testing.T) {
	svc := new(mockKudosService)
	r := router(NewKudosHandler(svc, 5*time.Second), uuid.NewString())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/kudos/search", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	svc.On("Search", mock.Anything, dto.SearchQuery{Query: "launch"}).Return([]dto.KudosResponse{}, nil).Once()
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/kudos/search?q=launch", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
