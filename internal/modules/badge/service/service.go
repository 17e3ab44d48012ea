package service

import (
	"context"
	"fmt"
	"time"

	"anoa.com/kudoswall/internal/entity"
	"anoa.com/kudoswall/internal/modules/badge/dto"
	"anoa.com/kudoswall/internal/modules/badge/repository"
	kudosRepo "anoa.com/kudoswall/internal/modules/kudos/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Notifier receives one notification per newly awarded badge.
type Notifier interface {
	CreateNotification(ctx context.Context, notification *entity.Notification) error
}

type BadgeService interface {
	// Evaluate awards every badge userID newly qualifies for given records and
	// returns only the badges inserted by this call.
	Evaluate(ctx context.Context, userID uuid.UUID, records []entity.Kudos) ([]entity.Badge, error)
	// EvaluateUser is Evaluate over the full stored record set.
	EvaluateUser(ctx context.Context, userID uuid.UUID) ([]entity.Badge, error)
	GetUserBadges(ctx context.Context, userID uuid.UUID) ([]dto.UserBadgeResponse, error)
	Catalog() []dto.DefinitionResponse
	CurrentWeek() Window
	// AwardWeeklyStar evaluates the current week's top receiver, if any.
	AwardWeeklyStar(ctx context.Context) (uuid.UUID, []entity.Badge, error)
}

type Config struct {
	WeekStart time.Weekday
	Location  *time.Location
	Now       func() time.Time
}

type badgeService struct {
	repo      repository.BadgeRepository
	kudosRepo kudosRepo.KudosRepository
	notifier  Notifier
	cfg       Config
	log       *zap.Logger
}

func NewBadgeService(repo repository.BadgeRepository, kudosRepo kudosRepo.KudosRepository, notifier Notifier, cfg Config, log *zap.Logger) BadgeService {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &badgeService{
		repo:      repo,
		kudosRepo: kudosRepo,
		notifier:  notifier,
		cfg:       cfg,
		log:       log.Named("badge"),
	}
}

func (s *badgeService) CurrentWeek() Window {
	return WeekOf(s.cfg.Now(), s.cfg.WeekStart, s.cfg.Location)
}

func (s *badgeService) Evaluate(ctx context.Context, userID uuid.UUID, records []entity.Kudos) ([]entity.Badge, error) {
	awarded := []entity.Badge{}
	if userID == uuid.Nil {
		return awarded, nil
	}

	ledger, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load badge ledger: %w", err)
	}
	earned := make(map[string]bool, len(ledger))
	for _, entry := range ledger {
		if entry.Badge.ID != uuid.Nil {
			earned[entry.Badge.Name] = true
		}
	}

	in := Input{UserID: userID, All: records, Week: s.CurrentWeek()}
	for _, k := range records {
		if k.ReceiverID == userID {
			in.Received = append(in.Received, k)
		}
		if k.SenderID == userID {
			in.Sent = append(in.Sent, k)
		}
	}

	for _, def := range catalog {
		if earned[def.Name] || !def.Eligible(in) {
			continue
		}

		badge, inserted, err := s.award(ctx, userID, def)
		if err != nil {
			s.log.Warn("badge award failed",
				zap.String("user_id", userID.String()),
				zap.String("criteria", def.Criteria),
				zap.Error(err),
			)
			continue
		}
		if !inserted {
			continue
		}

		s.log.Info("badge awarded",
			zap.String("user_id", userID.String()),
			zap.String("criteria", def.Criteria),
		)
		awarded = append(awarded, *badge)
		s.notify(ctx, userID, badge)
	}

	return awarded, nil
}

func (s *badgeService) award(ctx context.Context, userID uuid.UUID, def Definition) (*entity.Badge, bool, error) {
	badge, err := s.repo.FindOrCreateBadge(ctx, def.Badge())
	if err != nil {
		return nil, false, err
	}
	inserted, err := s.repo.AwardBadge(ctx, userID, badge.ID, s.cfg.Now())
	if err != nil {
		return nil, false, err
	}
	return badge, inserted, nil
}

func (s *badgeService) notify(ctx context.Context, userID uuid.UUID, badge *entity.Badge) {
	if s.notifier == nil {
		return
	}
	n := &entity.Notification{
		UserID:     userID,
		ActorID:    userID,
		EntityID:   badge.ID,
		EntityType: "badge",
		Type:       entity.NotificationBadgeAwarded,
		Message:    fmt.Sprintf("You earned the %s badge!", badge.Name),
	}
	if err := s.notifier.CreateNotification(ctx, n); err != nil {
		s.log.Warn("badge notification failed", zap.String("user_id", userID.String()), zap.Error(err))
	}
}

func (s *badgeService) EvaluateUser(ctx context.Context, userID uuid.UUID) ([]entity.Badge, error) {
	if userID == uuid.Nil {
		return []entity.Badge{}, nil
	}
	records, err := s.kudosRepo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load kudos: %w", err)
	}
	return s.Evaluate(ctx, userID, records)
}

func (s *badgeService) GetUserBadges(ctx context.Context, userID uuid.UUID) ([]dto.UserBadgeResponse, error) {
	entries, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return dto.NewUserBadgeResponses(entries), nil
}

func (s *badgeService) Catalog() []dto.DefinitionResponse {
	out := make([]dto.DefinitionResponse, 0, len(catalog))
	for _, def := range catalog {
		out = append(out, dto.DefinitionResponse{
			Name:        def.Name,
			Description: def.Description,
			ImageURL:    def.ImageURL,
			Criteria:    def.Criteria,
		})
	}
	return out
}

func (s *badgeService) AwardWeeklyStar(ctx context.Context) (uuid.UUID, []entity.Badge, error) {
	records, err := s.kudosRepo.FindAll(ctx)
	if err != nil {
		return uuid.Nil, nil, fmt.Errorf("load kudos: %w", err)
	}

	top, ok := TopReceiver(records, s.CurrentWeek())
	if !ok {
		return uuid.Nil, nil, nil
	}

	badges, err := s.Evaluate(ctx, top.UserID, records)
	return top.UserID, badges, err
}
