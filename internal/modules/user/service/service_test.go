package service

import (
	"context"
	"testing"
	"time"

	"anoa.com/kudoswall/internal/entity"
	"anoa.com/kudoswall/internal/modules/user/dto"
	"anoa.com/kudoswall/pkg/apperror"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) Create(ctx context.Context, user *entity.User) error {
	args := m.Called(ctx, user)
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *mockUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	args := m.Called(ctx, id)
	if u := args.Get(0); u != nil {
		return u.(*entity.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.User, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]entity.User), args.Error(1)
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	args := m.Called(ctx, email)
	if u := args.Get(0); u != nil {
		return u.(*entity.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserRepo) FindAll(ctx context.Context) ([]entity.User, error) {
	args := m.Called(ctx)
	return args.Get(0).([]entity.User), args.Error(1)
}

func (m *mockUserRepo) Update(ctx context.Context, user *entity.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *mockUserRepo) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

const testSecret = "test-secret"

func newAuth(repo *mockUserRepo) *authService {
	svc := NewAuthService(repo, AuthConfig{Secret: testSecret, TokenTTL: time.Hour}, zap.NewNop()).(*authService)
	svc.now = func() time.Time { return time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC) }
	return svc
}

func subject(t *testing.T, token string) string {
	t.Helper()
	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(*jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	}, jwt.WithTimeFunc(func() time.Time { return time.Date(2026, 3, 4, 10, 30, 0, 0, time.UTC) }))
	require.NoError(t, err)
	sub, err := parsed.Claims.GetSubject()
	require.NoError(t, err)
	return sub
}

func TestAuthService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		repo := new(mockUserRepo)
		svc := newAuth(repo)
		repo.On("Create", ctx, mock.MatchedBy(func(u *entity.User) bool {
			return u.Email == "ana@example.com" && u.Role == entity.RoleMember &&
				bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("secret1")) == nil
		})).Return(nil).Once()

		res, err := svc.Register(ctx, dto.RegisterInput{Email: "ana@example.com", Password: "secret1", DisplayName: " Ana "})

		require.NoError(t, err)
		assert.Equal(t, "Bearer", res.TokenType)
		assert.Equal(t, "Ana", res.User.DisplayName)
		assert.Empty(t, res.User.PasswordHash)
		assert.Equal(t, res.User.ID.String(), subject(t, res.AccessToken))
		repo.AssertExpectations(t)
	})

	t.Run("Duplicate email", func(t *testing.T) {
		repo := new(mockUserRepo)
		svc := newAuth(repo)
		repo.On("Create", ctx, mock.Anything).Return(apperror.New(409, "email already registered", apperror.ErrConflict)).Once()

		_, err := svc.Register(ctx, dto.RegisterInput{Email: "ana@example.com", Password: "secret1"})

		assert.ErrorIs(t, err, apperror.ErrConflict)
	})
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()
	hash, err := bcrypt.GenerateFromPassword([]byte("secret1"), bcrypt.MinCost)
	require.NoError(t, err)
	user := &entity.User{ID: uuid.New(), Email: "ana@example.com", PasswordHash: string(hash)}

	t.Run("Success", func(t *testing.T) {
		repo := new(mockUserRepo)
		repo.On("FindByEmail", ctx, "ana@example.com").Return(user, nil).Once()

		res, err := newAuth(repo).Login(ctx, dto.LoginInput{Email: " Ana@Example.com", Password: "secret1"})

		require.NoError(t, err)
		assert.Equal(t, user.ID.String(), subject(t, res.AccessToken))
		assert.Equal(t, time.Date(2026, 3, 4, 11, 0, 0, 0, time.UTC).Unix(), res.ExpiresIn)
	})

	t.Run("Wrong password", func(t *testing.T) {
		repo := new(mockUserRepo)
		u := *user
		repo.On("FindByEmail", ctx, "ana@example.com").Return(&u, nil).Once()

		_, err := newAuth(repo).Login(ctx, dto.LoginInput{Email: "ana@example.com", Password: "nope"})

		assert.ErrorIs(t, err, apperror.ErrUnauthorized)
	})

	t.Run("Unknown email", func(t *testing.T) {
		repo := new(mockUserRepo)
		repo.On("FindByEmail", ctx, "who@example.com").Return(nil, apperror.NotFound("user not found")).Once()

		_, err := newAuth(repo).Login(ctx, dto.LoginInput{Email: "who@example.com", Password: "x"})

		assert.ErrorIs(t, err, apperror.ErrUnauthorized)
		assert.Equal(t, 401, apperror.MapErrorToStatus(err))
	})
}

func TestAuthService_GoogleUser(t *testing.T) {
	ctx := context.Background()

	t.Run("First login creates the user", func(t *testing.T) {
		repo := new(mockUserRepo)
		repo.On("FindByEmail", ctx, "lee@example.com").Return(nil, apperror.NotFound("user not found")).Once()
		repo.On("Create", ctx, mock.MatchedBy(func(u *entity.User) bool {
			return u.GoogleID != nil && *u.GoogleID == "g-1" && u.DisplayName == "Lee"
		})).Return(nil).Once()

		res, err := newAuth(repo).loginGoogleUser(ctx, googleUser{ID: "g-1", Email: "Lee@example.com", Name: "Lee"})

		require.NoError(t, err)
		assert.NotEmpty(t, res.AccessToken)
		repo.AssertExpectations(t)
	})

	t.Run("Existing user gets linked", func(t *testing.T) {
		repo := new(mockUserRepo)
		existing := &entity.User{ID: uuid.New(), Email: "lee@example.com"}
		repo.On("FindByEmail", ctx, "lee@example.com").Return(existing, nil).Once()
		repo.On("Update", ctx, mock.MatchedBy(func(u *entity.User) bool {
			return u.GoogleID != nil && *u.GoogleID == "g-1"
		})).Return(nil).Once()

		res, err := newAuth(repo).loginGoogleUser(ctx, googleUser{ID: "g-1", Email: "lee@example.com"})

		require.NoError(t, err)
		assert.Equal(t, existing.ID.String(), subject(t, res.AccessToken))
		repo.AssertExpectations(t)
	})

	t.Run("Missing email", func(t *testing.T) {
		_, err := newAuth(new(mockUserRepo)).loginGoogleUser(ctx, googleUser{ID: "g-1"})
		assert.ErrorIs(t, err, apperror.ErrUnauthorized)
	})
}

func TestUserService(t *testing.T) {
	ctx := context.Background()
	repo := new(mockUserRepo)
	svc := NewUserService(repo)
	a := entity.User{ID: uuid.New(), Email: "a@example.com", DisplayName: "A"}
	b := entity.User{ID: uuid.New(), Email: "b@example.com", DisplayName: "B"}

	repo.On("FindAll", ctx).Return([]entity.User{a, b}, nil).Once()
	members, err := svc.ListTeamMembers(ctx)
	require.NoError(t, err)
	require.Len(t, members, 2)
	assert.Equal(t, a.ID.String(), members[0].ID)

	missing := uuid.New()
	repo.On("FindByID", ctx, missing).Return(nil, apperror.NotFound("user not found")).Once()
	_, err = svc.GetUser(ctx, missing)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}
