package service

import (
	"context"
	"testing"
	"time"

	"anoa.com/kudoswall/internal/entity"
	badgeRepo "anoa.com/kudoswall/internal/modules/badge/repository"
	badgeService "anoa.com/kudoswall/internal/modules/badge/service"
	kpiRepo "anoa.com/kudoswall/internal/modules/kpi/repository"
	kpiService "anoa.com/kudoswall/internal/modules/kpi/service"
	kudosRepo "anoa.com/kudoswall/internal/modules/kudos/repository"
	lbRepo "anoa.com/kudoswall/internal/modules/leaderboard/repository"
	leaderboardService "anoa.com/kudoswall/internal/modules/leaderboard/service"
	userRepo "anoa.com/kudoswall/internal/modules/user/repository"
	"anoa.com/kudoswall/internal/testutil"
	"anoa.com/kudoswall/pkg/apperror"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestDashboardService_GetDashboard(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	now := time.Date(2026, 5, 6, 12, 0, 0, 0, time.UTC)
	log := zap.NewNop()

	users := userRepo.NewUserRepository(db)
	kudos := kudosRepo.NewKudosRepository(db)
	badges := badgeService.NewBadgeService(badgeRepo.NewBadgeRepository(db), kudos, nil,
		badgeService.Config{WeekStart: time.Sunday, Location: time.UTC, Now: func() time.Time { return now }}, log)
	kpis := kpiService.NewKPIService(kpiRepo.NewKPIRepository(db), log)
	board := leaderboardService.NewLeaderboardService(lbRepo.NewLeaderboardRepository(db), users, badges, log)
	svc := NewDashboardService(users, kudos, kpis, badges, board)

	me := testutil.SeedUser(t, db, "me@example.com")
	peer := testutil.SeedUser(t, db, "peer@example.com")
	testutil.SeedUser(t, db, "lurker@example.com")

	for i := 0; i < 7; i++ {
		testutil.SeedKudos(t, db, peer.ID, me.ID, now.Add(-time.Duration(i)*time.Hour))
	}
	testutil.SeedKudos(t, db, me.ID, peer.ID, now.Add(-time.Hour))
	require.NoError(t, db.Create(&entity.KPI{UserID: me.ID, Title: "Demo day", Target: 1, StartDate: now, EndDate: now}).Error)
	_, err := badges.EvaluateUser(ctx, me.ID)
	require.NoError(t, err)

	res, err := svc.GetDashboard(ctx, me.ID)
	require.NoError(t, err)

	assert.Len(t, res.KPIs, 1)
	assert.Equal(t, int64(7), res.Received.Total)
	assert.Len(t, res.Received.Latest, LatestKudos)
	assert.True(t, res.Received.Latest[0].CreatedAt.After(res.Received.Latest[1].CreatedAt))
	assert.Equal(t, int64(1), res.Sent.Total)
	assert.Len(t, res.Sent.Latest, 1)
	assert.Equal(t, int64(3), res.TeamMembers)
	assert.NotEmpty(t, res.Badges)
	require.NotNil(t, res.WeeklyTopUser)
	assert.Equal(t, me.ID, res.WeeklyTopUser.UserID)

	_, err = svc.GetDashboard(ctx, uuid.New())
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}
