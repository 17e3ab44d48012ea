package service

import (
	"context"

	"anoa.com/kudoswall/internal/entity"
	badgeService "anoa.com/kudoswall/internal/modules/badge/service"
	"anoa.com/kudoswall/internal/modules/leaderboard/dto"
	lbRepo "anoa.com/kudoswall/internal/modules/leaderboard/repository"
	userRepo "anoa.com/kudoswall/internal/modules/user/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const DefaultLimit = 10

// WeekSource yields the current recognition week.
type WeekSource interface {
	CurrentWeek() badgeService.Window
}

type LeaderboardService interface {
	GetLeaderboard(ctx context.Context, q dto.LeaderboardQuery) ([]dto.LeaderboardEntry, error)
	GetWeeklyLeaderboard(ctx context.Context, limit int) ([]dto.LeaderboardEntry, error)
	GetAllTimeLeaderboard(ctx context.Context, limit int) ([]dto.LeaderboardEntry, error)
	GetRecognitionStatus(ctx context.Context, userID uuid.UUID) (RecognitionStatus, error)
}

type leaderboardService struct {
	repo  lbRepo.LeaderboardRepository
	users userRepo.UserRepository
	week  WeekSource
	log   *zap.Logger
}

func NewLeaderboardService(repo lbRepo.LeaderboardRepository, users userRepo.UserRepository, week WeekSource, log *zap.Logger) LeaderboardService {
	return &leaderboardService{repo: repo, users: users, week: week, log: log.Named("leaderboard")}
}

func (s *leaderboardService) currentPeriod() *lbRepo.Period {
	w := s.week.CurrentWeek()
	return &lbRepo.Period{Start: w.Start, End: w.End}
}

func (s *leaderboardService) GetLeaderboard(ctx context.Context, q dto.LeaderboardQuery) ([]dto.LeaderboardEntry, error) {
	if q.Timeframe == dto.TimeframeAllTime {
		return s.GetAllTimeLeaderboard(ctx, q.Limit)
	}
	return s.GetWeeklyLeaderboard(ctx, q.Limit)
}

func (s *leaderboardService) GetWeeklyLeaderboard(ctx context.Context, limit int) ([]dto.LeaderboardEntry, error) {
	week := s.currentPeriod()
	rows, err := s.repo.TopReceivers(ctx, week, clampLimit(limit))
	if err != nil {
		return nil, err
	}

	allTime, err := s.repo.CountsFor(ctx, receiverIDs(rows), nil)
	if err != nil {
		return nil, err
	}
	return s.entries(ctx, rows, func(r lbRepo.ReceiverCount) RecognitionStatus {
		return GetRecognitionStatus(allTime[r.UserID], r.Count)
	})
}

func (s *leaderboardService) GetAllTimeLeaderboard(ctx context.Context, limit int) ([]dto.LeaderboardEntry, error) {
	rows, err := s.repo.TopReceivers(ctx, nil, clampLimit(limit))
	if err != nil {
		return nil, err
	}

	weekly, err := s.repo.CountsFor(ctx, receiverIDs(rows), s.currentPeriod())
	if err != nil {
		return nil, err
	}
	return s.entries(ctx, rows, func(r lbRepo.ReceiverCount) RecognitionStatus {
		return GetRecognitionStatus(r.Count, weekly[r.UserID])
	})
}

func (s *leaderboardService) GetRecognitionStatus(ctx context.Context, userID uuid.UUID) (RecognitionStatus, error) {
	ids := []uuid.UUID{userID}
	allTime, err := s.repo.CountsFor(ctx, ids, nil)
	if err != nil {
		return RecognitionStatus{}, err
	}
	weekly, err := s.repo.CountsFor(ctx, ids, s.currentPeriod())
	if err != nil {
		return RecognitionStatus{}, err
	}
	return GetRecognitionStatus(allTime[userID], weekly[userID]), nil
}

func (s *leaderboardService) entries(ctx context.Context, rows []lbRepo.ReceiverCount, status func(lbRepo.ReceiverCount) RecognitionStatus) ([]dto.LeaderboardEntry, error) {
	users, err := s.users.FindByIDs(ctx, receiverIDs(rows))
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*entity.User, len(users))
	for i := range users {
		byID[users[i].ID] = &users[i]
	}

	entries := make([]dto.LeaderboardEntry, 0, len(rows))
	for _, row := range rows {
		st := status(row)
		entry := dto.LeaderboardEntry{
			Position:    len(entries) + 1,
			UserID:      row.UserID,
			KudosCount:  row.Count,
			Tier:        st.Tier,
			WeeklyLabel: st.WeeklyLabel,
		}
		if u, ok := byID[row.UserID]; ok {
			entry.DisplayName = u.DisplayName
			entry.Department = u.Department
			entry.AvatarURL = u.AvatarURL
		} else {
			s.log.Warn("leaderboard receiver has no user row", zap.String("user_id", row.UserID.String()))
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func receiverIDs(rows []lbRepo.ReceiverCount) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.UserID)
	}
	return ids
}

func clampLimit(limit int) int {
	if limit < 1 {
		return DefaultLimit
	}
	if limit > 50 {
		return 50
	}
	return limit
}
