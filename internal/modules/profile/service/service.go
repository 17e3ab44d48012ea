package profile

import (
	"context"
	"net/http"
	"path/filepath"
	"strings"

	"anoa.com/kudoswall/internal/entity"
	avatarService "anoa.com/kudoswall/internal/modules/avatar/service"
	badgeDto "anoa.com/kudoswall/internal/modules/badge/dto"
	leaderboard "anoa.com/kudoswall/internal/modules/leaderboard/service"
	profileDto "anoa.com/kudoswall/internal/modules/profile/dto"
	userRepo "anoa.com/kudoswall/internal/modules/user/repository"
	"anoa.com/kudoswall/pkg/apperror"
	commonDto "anoa.com/kudoswall/pkg/dto"
	"anoa.com/kudoswall/pkg/storage"
	"anoa.com/kudoswall/pkg/validator"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type BadgeReader interface {
	GetUserBadges(ctx context.Context, userID uuid.UUID) ([]badgeDto.UserBadgeResponse, error)
}

type KudosCounter interface {
	CountByReceiver(ctx context.Context, userID uuid.UUID) (int64, error)
	CountBySender(ctx context.Context, userID uuid.UUID) (int64, error)
}

type RecognitionReader interface {
	GetRecognitionStatus(ctx context.Context, userID uuid.UUID) (leaderboard.RecognitionStatus, error)
}

type ProfileService interface {
	GetMyProfile(ctx context.Context, userID uuid.UUID) (*profileDto.ProfileResponse, error)
	GetProfile(ctx context.Context, userID uuid.UUID) (*profileDto.ProfileResponse, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, input profileDto.UpdateProfileInput) (*profileDto.ProfileResponse, error)
	UpdateAvatarOptions(ctx context.Context, userID uuid.UUID, opts entity.AvatarOptions) (*profileDto.ProfileResponse, error)
	UploadAvatar(ctx context.Context, userID uuid.UUID, file commonDto.UploadFile) (*profileDto.ProfileResponse, error)
}

type profileService struct {
	repo          userRepo.UserRepository
	badges        BadgeReader
	kudos         KudosCounter
	recognition   RecognitionReader
	imageStorage  storage.ImageStorage
	publicBaseURL string
	log           *zap.Logger
}

// NewProfileService wires the profile aggregate. imageStorage may be nil, in
// which case uploads are rejected.
func NewProfileService(
	repo userRepo.UserRepository,
	badges BadgeReader,
	kudos KudosCounter,
	recognition RecognitionReader,
	imageStorage storage.ImageStorage,
	publicBaseURL string,
	log *zap.Logger,
) ProfileService {
	return &profileService{
		repo:          repo,
		badges:        badges,
		kudos:         kudos,
		recognition:   recognition,
		imageStorage:  imageStorage,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		log:           log.Named("profile"),
	}
}

var errUploadDisabled = apperror.New(http.StatusServiceUnavailable, "avatar upload is not configured", apperror.ErrUpstream)

var uploadExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true,
}

func (s *profileService) GetMyProfile(ctx context.Context, userID uuid.UUID) (*profileDto.ProfileResponse, error) {
	return s.GetProfile(ctx, userID)
}

func (s *profileService) GetProfile(ctx context.Context, userID uuid.UUID) (*profileDto.ProfileResponse, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.build(ctx, user)
}

func (s *profileService) build(ctx context.Context, user *entity.User) (*profileDto.ProfileResponse, error) {
	badges, err := s.badges.GetUserBadges(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	received, err := s.kudos.CountByReceiver(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	sent, err := s.kudos.CountBySender(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	res := &profileDto.ProfileResponse{
		User:          user,
		AvatarOptions: *user.AvatarOptions,
		Badges:        badges,
		KudosReceived: received,
		KudosSent:     sent,
	}

	if s.recognition != nil {
		status, err := s.recognition.GetRecognitionStatus(ctx, user.ID)
		if err != nil {
			s.log.Warn("recognition status unavailable", zap.String("user_id", user.ID.String()), zap.Error(err))
		}
		res.Recognition = status
	}
	if res.Recognition.Tier == "" {
		res.Recognition = leaderboard.GetRecognitionStatus(received, 0)
	}
	return res, nil
}

func (s *profileService) UpdateProfile(ctx context.Context, userID uuid.UUID, input profileDto.UpdateProfileInput) (*profileDto.ProfileResponse, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if input.DisplayName != nil {
		name := strings.TrimSpace(*input.DisplayName)
		if name == "" {
			return nil, apperror.Validation("display name must not be empty")
		}
		user.DisplayName = name
	}
	if input.Bio != nil {
		user.Bio = normalizeOptional(input.Bio)
	}
	if input.Department != nil {
		user.Department = strings.TrimSpace(*input.Department)
	}
	if input.Role != nil {
		user.Role = *input.Role
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	return s.build(ctx, user)
}

func (s *profileService) UpdateAvatarOptions(ctx context.Context, userID uuid.UUID, opts entity.AvatarOptions) (*profileDto.ProfileResponse, error) {
	if err := validator.Struct(opts); err != nil {
		return nil, apperror.Validation(validator.FormatValidationError(err))
	}

	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	previous := user.AvatarURL
	url := s.publicBaseURL + "/api/avatar/" + avatarService.EncodeOptions(opts)
	user.AvatarOptions = &opts
	user.AvatarURL = &url

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	s.deleteUploaded(ctx, previous)
	return s.build(ctx, user)
}

func (s *profileService) UploadAvatar(ctx context.Context, userID uuid.UUID, file commonDto.UploadFile) (*profileDto.ProfileResponse, error) {
	if s.imageStorage == nil {
		return nil, errUploadDisabled
	}
	if file.Reader == nil {
		return nil, apperror.Validation("avatar file is required")
	}
	if !uploadExtensions[strings.ToLower(filepath.Ext(file.FileName))] {
		return nil, apperror.Validation("avatar must be a jpg, png, gif or webp image")
	}

	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	url, err := s.imageStorage.UploadImage(ctx, file.Reader, "avatars", file.FileName)
	if err != nil {
		return nil, apperror.New(http.StatusBadGateway, "failed to upload avatar", err)
	}

	previous := user.AvatarURL
	user.AvatarURL = &url
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	s.deleteUploaded(ctx, previous)
	return s.build(ctx, user)
}

// deleteUploaded removes a previously uploaded image; failures are only logged.
func (s *profileService) deleteUploaded(ctx context.Context, previous *string) {
	if previous == nil || s.imageStorage == nil || !s.imageStorage.Owns(*previous) {
		return
	}
	if err := s.imageStorage.DeleteImage(ctx, *previous); err != nil {
		s.log.Warn("failed to delete previous avatar", zap.String("url", *previous), zap.Error(err))
	}
}

func normalizeOptional(value *string) *string {
	if value == nil {
		return nil
	}

	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}

	result := trimmed
	return &result
}
