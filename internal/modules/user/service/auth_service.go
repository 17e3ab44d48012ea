package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"anoa.com/kudoswall/internal/entity"
	"anoa.com/kudoswall/internal/modules/user/dto"
	"anoa.com/kudoswall/internal/modules/user/repository"
	"anoa.com/kudoswall/pkg/apperror"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

var errInvalidCredentials = apperror.New(http.StatusUnauthorized, "invalid credentials", apperror.ErrUnauthorized)

type AuthService interface {
	Register(ctx context.Context, input dto.RegisterInput) (*dto.AuthResponse, error)
	Login(ctx context.Context, input dto.LoginInput) (*dto.AuthResponse, error)
	// GoogleLogin returns the consent URL carrying state.
	GoogleLogin(state string) string
	GoogleCallback(ctx context.Context, code string) (*dto.AuthResponse, error)
}

type AuthConfig struct {
	Secret             string
	TokenTTL           time.Duration
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
}

type authService struct {
	repo         repository.UserRepository
	secret       []byte
	tokenTTL     time.Duration
	googleConfig *oauth2.Config
	log          *zap.Logger
	now          func() time.Time
}

func NewAuthService(repo repository.UserRepository, cfg AuthConfig, log *zap.Logger) AuthService {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = time.Hour
	}

	googleConfig := &oauth2.Config{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RedirectURL:  cfg.GoogleRedirectURL,
		Scopes: []string{
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		},
		Endpoint: google.Endpoint,
	}

	return &authService{
		repo:         repo,
		secret:       []byte(cfg.Secret),
		tokenTTL:     cfg.TokenTTL,
		googleConfig: googleConfig,
		log:          log.Named("auth"),
		now:          time.Now,
	}
}

func (s *authService) Register(ctx context.Context, input dto.RegisterInput) (*dto.AuthResponse, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &entity.User{
		Email:        input.Email,
		PasswordHash: string(hashed),
		DisplayName:  strings.TrimSpace(input.DisplayName),
		Department:   strings.TrimSpace(input.Department),
		Role:         entity.RoleMember,
	}
	if input.Role != nil && *input.Role != "" {
		user.Role = *input.Role
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.log.Info("user registered", zap.String("user_id", user.ID.String()))
	return s.buildAuthResponse(user)
}

func (s *authService) Login(ctx context.Context, input dto.LoginInput) (*dto.AuthResponse, error) {
	user, err := s.repo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(input.Email)))
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, errInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, errInvalidCredentials
	}

	return s.buildAuthResponse(user)
}

func (s *authService) GoogleLogin(state string) string {
	return s.googleConfig.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

type googleUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

func (s *authService) GoogleCallback(ctx context.Context, code string) (*dto.AuthResponse, error) {
	token, err := s.googleConfig.Exchange(ctx, code)
	if err != nil {
		return nil, apperror.New(http.StatusUnauthorized, "failed to exchange token", err)
	}

	resp, err := s.googleConfig.Client(ctx, token).Get(googleUserInfoURL)
	if err != nil {
		return nil, apperror.New(http.StatusBadGateway, "failed to get user info", err)
	}
	defer resp.Body.Close()

	var info googleUser
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, apperror.New(http.StatusBadGateway, "failed to decode user info", err)
	}

	return s.loginGoogleUser(ctx, info)
}

func (s *authService) loginGoogleUser(ctx context.Context, info googleUser) (*dto.AuthResponse, error) {
	if info.Email == "" {
		return nil, apperror.New(http.StatusUnauthorized, "google account has no email", apperror.ErrUnauthorized)
	}

	user, err := s.repo.FindByEmail(ctx, strings.ToLower(info.Email))
	switch {
	case errors.Is(err, apperror.ErrNotFound):
		// Google users never log in with a password, so the hash is of a random value.
		hashed, err := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		googleID := info.ID
		user = &entity.User{
			Email:        info.Email,
			PasswordHash: string(hashed),
			DisplayName:  info.Name,
			Role:         entity.RoleMember,
			GoogleID:     &googleID,
		}
		if err := s.repo.Create(ctx, user); err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	case user.GoogleID == nil || *user.GoogleID != info.ID:
		googleID := info.ID
		user.GoogleID = &googleID
		if err := s.repo.Update(ctx, user); err != nil {
			s.log.Warn("failed to link google account", zap.String("user_id", user.ID.String()), zap.Error(err))
		}
	}

	return s.buildAuthResponse(user)
}

func (s *authService) buildAuthResponse(user *entity.User) (*dto.AuthResponse, error) {
	token, expiresAt, err := s.generateToken(user)
	if err != nil {
		return nil, err
	}

	user.PasswordHash = ""

	return &dto.AuthResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   expiresAt,
		User:        user,
	}, nil
}

func (s *authService) generateToken(user *entity.User) (string, int64, error) {
	now := s.now()
	expiresAt := now.Add(s.tokenTTL)

	claims := jwt.RegisteredClaims{
		Subject:   user.ID.String(),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		IssuedAt:  jwt.NewNumericDate(now),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", 0, err
	}

	return signed, expiresAt.Unix(), nil
}
