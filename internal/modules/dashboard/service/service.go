package service

import (
	"context"

	badgeService "anoa.com/kudoswall/internal/modules/badge/service"
	"anoa.com/kudoswall/internal/modules/dashboard/dto"
	kpiService "anoa.com/kudoswall/internal/modules/kpi/service"
	kudosDto "anoa.com/kudoswall/internal/modules/kudos/dto"
	kudosRepo "anoa.com/kudoswall/internal/modules/kudos/repository"
	leaderboardService "anoa.com/kudoswall/internal/modules/leaderboard/service"
	userRepo "anoa.com/kudoswall/internal/modules/user/repository"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// LatestKudos is how many received and sent cards the dashboard shows.
const LatestKudos = 5

type DashboardService interface {
	GetDashboard(ctx context.Context, userID uuid.UUID) (*dto.DashboardResponse, error)
	GetTotalUsers(ctx context.Context) (int64, error)
}

type dashboardService struct {
	userRepo    userRepo.UserRepository
	kudosRepo   kudosRepo.KudosRepository
	kpis        kpiService.KPIService
	badges      badgeService.BadgeService
	leaderboard leaderboardService.LeaderboardService
}

func NewDashboardService(
	userRepo userRepo.UserRepository,
	kudosRepo kudosRepo.KudosRepository,
	kpis kpiService.KPIService,
	badges badgeService.BadgeService,
	leaderboard leaderboardService.LeaderboardService,
) DashboardService {
	return &dashboardService{
		userRepo:    userRepo,
		kudosRepo:   kudosRepo,
		kpis:        kpis,
		badges:      badges,
		leaderboard: leaderboard,
	}
}

func (s *dashboardService) GetTotalUsers(ctx context.Context) (int64, error) {
	return s.userRepo.Count(ctx)
}

func (s *dashboardService) GetDashboard(ctx context.Context, userID uuid.UUID) (*dto.DashboardResponse, error) {
	if _, err := s.userRepo.FindByID(ctx, userID); err != nil {
		return nil, err
	}

	res := &dto.DashboardResponse{}
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		res.KPIs, err = s.kpis.ListByUser(ctx, userID)
		return err
	})
	g.Go(func() error {
		latest, err := s.kudosRepo.FindByReceiver(ctx, userID, LatestKudos)
		if err != nil {
			return err
		}
		total, err := s.kudosRepo.CountByReceiver(ctx, userID)
		if err != nil {
			return err
		}
		res.Received = dto.KudosSummary{Total: total, Latest: kudosDto.NewKudosResponses(latest)}
		return nil
	})
	g.Go(func() error {
		latest, err := s.kudosRepo.FindBySender(ctx, userID, LatestKudos)
		if err != nil {
			return err
		}
		total, err := s.kudosRepo.CountBySender(ctx, userID)
		if err != nil {
			return err
		}
		res.Sent = dto.KudosSummary{Total: total, Latest: kudosDto.NewKudosResponses(latest)}
		return nil
	})
	g.Go(func() (err error) {
		res.Badges, err = s.badges.GetUserBadges(ctx, userID)
		return err
	})
	g.Go(func() (err error) {
		res.TeamMembers, err = s.userRepo.Count(ctx)
		return err
	})
	g.Go(func() error {
		top, err := s.leaderboard.GetWeeklyLeaderboard(ctx, 1)
		if err != nil {
			return err
		}
		if len(top) > 0 {
			res.WeeklyTopUser = &top[0]
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return res, nil
}
