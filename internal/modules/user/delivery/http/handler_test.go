package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"anoa.com/kudoswall/internal/modules/user/dto"
	"anoa.com/kudoswall/pkg/apperror"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockAuthService struct {
	mock.Mock
}

func (m *mockAuthService) Register(ctx context.Context, input dto.RegisterInput) (*dto.AuthResponse, error) {
	args := m.Called(ctx, input)
	if r := args.Get(0); r != nil {
		return r.(*dto.AuthResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAuthService) Login(ctx context.Context, input dto.LoginInput) (*dto.AuthResponse, error) {
	args := m.Called(ctx, input)
	if r := args.Get(0); r != nil {
		return r.(*dto.AuthResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAuthService) GoogleLogin(state string) string {
	return m.Called(state).String(0)
}

func (m *mockAuthService) GoogleCallback(ctx context.Context, code string) (*dto.AuthResponse, error) {
	args := m.Called(ctx, code)
	if r := args.Get(0); r != nil {
		return r.(*dto.AuthResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockUserService struct {
	mock.Mock
}

func (m *mockUserService) ListTeamMembers(ctx context.Context) ([]dto.TeamMember, error) {
	args := m.Called(ctx)
	return args.Get(0).([]dto.TeamMember), args.Error(1)
}

func (m *mockUserService) GetUser(ctx context.Context, id uuid.UUID) (*dto.TeamMember, error) {
	args := m.Called(ctx, id)
	if r := args.Get(0); r != nil {
		return r.(*dto.TeamMember), args.Error(1)
	}
	return nil, args.Error(1)
}

func init() {
	gin.SetMode(gin.TestMode)
}

func TestAuthHandler_Register(t *testing.T) {
	svc := new(mockAuthService)
	h := NewAuthHandler(svc, "http://front")
	r := gin.New()
	r.POST("/register", h.Register)

	t.Run("Validation error", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/register", bytes.NewBufferString(`{"email":"nope","password":"123"}`))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		svc.AssertNotCalled(t, "Register", mock.Anything, mock.Anything)
	})

	t.Run("Conflict", func(t *testing.T) {
		svc.On("Register", mock.Anything, mock.Anything).
			Return(nil, apperror.New(http.StatusConflict, "email already registered", apperror.ErrConflict)).Once()

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/register", bytes.NewBufferString(`{"email":"a@example.com","password":"secret1"}`))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
		var body map[string]string
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "email already registered", body["error"])
	})
}

func stateCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == oauthStateCookie {
			return c
		}
	}
	t.Fatalf("no %s cookie set", oauthStateCookie)
	return nil
}

func TestAuthHandler_GoogleLogin(t *testing.T) {
	svc := new(mockAuthService)
	h := NewAuthHandler(svc, "http://front")
	r := gin.New()
	r.GET("/login", h.GoogleLogin)

	svc.On("GoogleLogin", mock.AnythingOfType("string")).Return("https://accounts.example/consent").Twice()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/login", nil))
	require.Equal(t, http.StatusTemporaryRedirect, w.Code)
	assert.Equal(t, "https://accounts.example/consent", w.Header().Get("Location"))

	first := stateCookie(t, w)
	assert.True(t, first.HttpOnly)
	assert.NotEmpty(t, first.Value)
	svc.AssertCalled(t, "GoogleLogin", first.Value)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/login", nil))
	assert.NotEqual(t, first.Value, stateCookie(t, w).Value)
}

func TestAuthHandler_GoogleCallback(t *testing.T) {
	callback := func(svc *mockAuthService, query, cookie string) *httptest.ResponseRecorder {
		h := NewAuthHandler(svc, "http://front")
		r := gin.New()
		r.GET("/callback", h.GoogleCallback)

		req := httptest.NewRequest(http.MethodGet, "/callback?"+query, nil)
		if cookie != "" {
			req.AddCookie(&http.Cookie{Name: oauthStateCookie, Value: cookie})
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	t.Run("Matching state", func(t *testing.T) {
		svc := new(mockAuthService)
		svc.On("GoogleCallback", mock.Anything, "abc").Return(&dto.AuthResponse{AccessToken: "tok"}, nil).Once()

		w := callback(svc, "code=abc&state=s1", "s1")
		assert.Equal(t, http.StatusTemporaryRedirect, w.Code)
		assert.Equal(t, "http://front/auth/google/callback?token=tok", w.Header().Get("Location"))
		assert.Equal(t, -1, stateCookie(t, w).MaxAge)
	})

	t.Run("Missing cookie", func(t *testing.T) {
		svc := new(mockAuthService)
		w := callback(svc, "code=abc&state=s1", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		svc.AssertNotCalled(t, "GoogleCallback", mock.Anything, mock.Anything)
	})

	t.Run("Mismatched state", func(t *testing.T) {
		svc := new(mockAuthService)
		w := callback(svc, "code=abc&state=forged", "s1")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		svc.AssertNotCalled(t, "GoogleCallback", mock.Anything, mock.Anything)
	})
}

func TestUserHandler_GetUser(t *testing.T) {
	svc := new(mockUserService)
	h := NewUserHandler(svc)
	r := gin.New()
	r.GET("/users/:id", h.GetUser)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/users/not-a-uuid", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	id := uuid.New()
	svc.On("GetUser", mock.Anything, id).Return(nil, apperror.NotFound("user not found")).Once()
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/users/"+id.String(), nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
