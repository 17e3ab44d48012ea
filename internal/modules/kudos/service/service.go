package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"anoa.com/kudoswall/internal/entity"
	badgeDto "anoa.com/kudoswall/internal/modules/badge/dto"
	"anoa.com/kudoswall/internal/modules/kudos/dto"
	"anoa.com/kudoswall/internal/modules/kudos/repository"
	search "anoa.com/kudoswall/internal/modules/search/service"
	userRepo "anoa.com/kudoswall/internal/modules/user/repository"
	"anoa.com/kudoswall/pkg/apperror"
	commonDto "anoa.com/kudoswall/pkg/dto"
	"anoa.com/kudoswall/pkg/ratelimit"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	MaxMessageLength = 1000
	sendAction       = "send_kudos"
)

// BadgeEvaluator awards badges after a send.
type BadgeEvaluator interface {
	Evaluate(ctx context.Context, userID uuid.UUID, records []entity.Kudos) ([]entity.Badge, error)
}

// RateLimiter locks an action per user for a window.
type RateLimiter interface {
	Allow(ctx context.Context, userID uuid.UUID, action string, window time.Duration) (bool, error)
	TTL(ctx context.Context, userID uuid.UUID, action string) (time.Duration, error)
	Clear(ctx context.Context, userID uuid.UUID, action string) error
}

type Notifier interface {
	CreateNotification(ctx context.Context, notification *entity.Notification) error
}

type KudosService interface {
	SendKudos(ctx context.Context, senderID uuid.UUID, req dto.SendKudosRequest) (*dto.SendKudosResponse, error)
	ListReceived(ctx context.Context, userID uuid.UUID) ([]dto.KudosResponse, error)
	ListSent(ctx context.Context, userID uuid.UUID) ([]dto.KudosResponse, error)
	ListAll(ctx context.Context, q commonDto.PageQuery) (*dto.KudosListResponse, error)
	Search(ctx context.Context, q dto.SearchQuery) ([]dto.KudosResponse, error)
}

type Config struct {
	RateLimit time.Duration
	Now       func() time.Time
}

type kudosService struct {
	repo      repository.KudosRepository
	users     userRepo.UserRepository
	badges    BadgeEvaluator
	search    search.SearchService
	notifier  Notifier
	limiter   RateLimiter
	sanitizer *bluemonday.Policy
	cfg       Config
	log       *zap.Logger
}

func NewKudosService(
	repo repository.KudosRepository,
	users userRepo.UserRepository,
	badges BadgeEvaluator,
	searchSvc search.SearchService,
	notifier Notifier,
	limiter RateLimiter,
	cfg Config,
	log *zap.Logger,
) KudosService {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if limiter == nil {
		limiter = ratelimit.New(nil)
	}
	if searchSvc == nil {
		searchSvc = search.NewNoopSearchService()
	}
	return &kudosService{
		repo:      repo,
		users:     users,
		badges:    badges,
		search:    searchSvc,
		notifier:  notifier,
		limiter:   limiter,
		sanitizer: bluemonday.StrictPolicy(),
		cfg:       cfg,
		log:       log.Named("kudos"),
	}
}

func (s *kudosService) validate(senderID uuid.UUID, req *dto.SendKudosRequest) error {
	if senderID == uuid.Nil {
		return apperror.Validation("sender is required")
	}
	if req.ReceiverID == uuid.Nil {
		return apperror.Validation("receiver is required")
	}

	// The limit applies to what the sender typed; escaping may grow it.
	raw := strings.TrimSpace(req.Message)
	if utf8.RuneCountInString(raw) > MaxMessageLength {
		return apperror.Validation(fmt.Sprintf("message must be at most %d characters", MaxMessageLength))
	}
	// Stored as sanitized HTML text; entities stay escaped.
	req.Message = strings.TrimSpace(s.sanitizer.Sanitize(raw))
	if req.Message == "" {
		return apperror.Validation("message is required")
	}

	req.Category = strings.ToLower(strings.TrimSpace(req.Category))
	if req.Category == "" {
		return apperror.Validation("category is required")
	}
	if !entity.IsKudosCategory(req.Category) {
		return apperror.Validation("category must be one of: " + strings.Join(entity.KudosCategories, ", "))
	}

	if senderID == req.ReceiverID {
		return apperror.Validation("you cannot send kudos to yourself")
	}
	return nil
}

func (s *kudosService) SendKudos(ctx context.Context, senderID uuid.UUID, req dto.SendKudosRequest) (*dto.SendKudosResponse, error) {
	if err := s.validate(senderID, &req); err != nil {
		return nil, err
	}

	receiver, err := s.users.FindByID(ctx, req.ReceiverID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.NotFound("receiver not found")
		}
		return nil, err
	}

	allowed, err := s.limiter.Allow(ctx, senderID, sendAction, s.cfg.RateLimit)
	if err != nil {
		s.log.Warn("rate limit check failed", zap.Error(err))
	} else if !allowed {
		return nil, s.rateLimited(ctx, senderID)
	}

	kudos := &entity.Kudos{
		SenderID:   senderID,
		ReceiverID: req.ReceiverID,
		Message:    req.Message,
		Category:   req.Category,
		CreatedAt:  s.cfg.Now().UTC(),
	}
	if err := s.repo.Create(ctx, kudos); err != nil {
		if allowed {
			if clearErr := s.limiter.Clear(ctx, senderID, sendAction); clearErr != nil {
				s.log.Warn("failed to release rate limit", zap.String("sender_id", senderID.String()), zap.Error(clearErr))
			}
		}
		return nil, err
	}
	kudos.Receiver = receiver

	s.log.Info("kudos sent",
		zap.String("kudos_id", kudos.ID.String()),
		zap.String("sender_id", senderID.String()),
		zap.String("receiver_id", req.ReceiverID.String()),
		zap.String("category", kudos.Category),
	)

	newBadges := s.evaluateBoth(ctx, senderID, req.ReceiverID)

	if err := s.search.IndexKudos(ctx, kudos); err != nil {
		s.log.Warn("failed to index kudos", zap.String("kudos_id", kudos.ID.String()), zap.Error(err))
	}
	s.notifyReceiver(ctx, kudos)

	return &dto.SendKudosResponse{
		Kudos:     dto.NewKudosResponse(kudos),
		NewBadges: badgeDto.NewBadgeResponses(newBadges),
	}, nil
}

func (s *kudosService) rateLimited(ctx context.Context, senderID uuid.UUID) error {
	ttl, err := s.limiter.TTL(ctx, senderID, sendAction)
	if err != nil || ttl <= 0 {
		ttl = s.cfg.RateLimit
	}
	return &ratelimit.Error{
		Message:    fmt.Sprintf("you are sending kudos too fast, please wait %.0f seconds", math.Ceil(ttl.Seconds())),
		RetryAfter: ttl,
	}
}

// evaluateBoth runs the evaluator for sender and receiver concurrently and
// returns the sender's new badges. Failures are logged, never returned.
func (s *kudosService) evaluateBoth(ctx context.Context, senderID, receiverID uuid.UUID) []entity.Badge {
	if s.badges == nil {
		return nil
	}

	records, err := s.repo.FindAll(ctx)
	if err != nil {
		s.log.Error("failed to load kudos for badge evaluation", zap.Error(err))
		return nil
	}

	var (
		g            errgroup.Group
		senderBadges []entity.Badge
	)
	g.Go(func() error {
		badges, err := s.badges.Evaluate(ctx, senderID, records)
		if err != nil {
			s.log.Error("sender badge evaluation failed", zap.String("user_id", senderID.String()), zap.Error(err))
			return nil
		}
		senderBadges = badges
		return nil
	})
	g.Go(func() error {
		if _, err := s.badges.Evaluate(ctx, receiverID, records); err != nil {
			s.log.Error("receiver badge evaluation failed", zap.String("user_id", receiverID.String()), zap.Error(err))
		}
		return nil
	})
	_ = g.Wait()

	return senderBadges
}

func (s *kudosService) notifyReceiver(ctx context.Context, kudos *entity.Kudos) {
	if s.notifier == nil {
		return
	}

	senderName := "Someone"
	if sender, err := s.users.FindByID(ctx, kudos.SenderID); err == nil {
		senderName = sender.DisplayName
		kudos.Sender = sender
	}

	n := &entity.Notification{
		UserID:     kudos.ReceiverID,
		ActorID:    kudos.SenderID,
		EntityID:   kudos.ID,
		EntityType: "kudos",
		Type:       entity.NotificationKudosReceived,
		Message:    fmt.Sprintf("%s sent you kudos for %s", senderName, kudos.Category),
	}
	if err := s.notifier.CreateNotification(ctx, n); err != nil {
		s.log.Warn("failed to notify receiver", zap.String("kudos_id", kudos.ID.String()), zap.Error(err))
	}
}

func (s *kudosService) ListReceived(ctx context.Context, userID uuid.UUID) ([]dto.KudosResponse, error) {
	records, err := s.repo.FindByReceiver(ctx, userID, 0)
	if err != nil {
		return nil, err
	}
	return dto.NewKudosResponses(records), nil
}

func (s *kudosService) ListSent(ctx context.Context, userID uuid.UUID) ([]dto.KudosResponse, error) {
	records, err := s.repo.FindBySender(ctx, userID, 0)
	if err != nil {
		return nil, err
	}
	return dto.NewKudosResponses(records), nil
}

func (s *kudosService) ListAll(ctx context.Context, q commonDto.PageQuery) (*dto.KudosListResponse, error) {
	offset := q.Normalize()
	records, total, err := s.repo.FindPage(ctx, offset, q.Limit)
	if err != nil {
		return nil, err
	}
	return &dto.KudosListResponse{
		Data: dto.NewKudosResponses(records),
		Meta: commonDto.NewPaginationMeta(q.Page, q.Limit, total),
	}, nil
}

func (s *kudosService) Search(ctx context.Context, q dto.SearchQuery) ([]dto.KudosResponse, error) {
	ids, err := s.search.SearchKudos(ctx, strings.TrimSpace(q.Query), q.Limit)
	if err != nil {
		return nil, apperror.New(http.StatusBadGateway, "search is unavailable", fmt.Errorf("%w: %v", apperror.ErrUpstream, err))
	}
	if len(ids) == 0 {
		return []dto.KudosResponse{}, nil
	}

	records, err := s.repo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	// Keep the search engine's ranking.
	byID := make(map[uuid.UUID]entity.Kudos, len(records))
	for _, k := range records {
		byID[k.ID] = k
	}
	out := make([]dto.KudosResponse, 0, len(records))
	for _, id := range ids {
		if k, ok := byID[id]; ok {
			out = append(out, dto.NewKudosResponse(&k))
		}
	}
	return out, nil
}
