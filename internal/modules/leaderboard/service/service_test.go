package service

import (
	"context"
	"testing"
	"time"

	badgeService "anoa.com/kudoswall/internal/modules/badge/service"
	"anoa.com/kudoswall/internal/modules/leaderboard/dto"
	lbRepo "anoa.com/kudoswall/internal/modules/leaderboard/repository"
	userRepo "anoa.com/kudoswall/internal/modules/user/repository"
	"anoa.com/kudoswall/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fixedWeek badgeService.Window

func (w fixedWeek) CurrentWeek() badgeService.Window { return badgeService.Window(w) }

func TestLeaderboardService(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	week := fixedWeek(badgeService.WeekOf(time.Date(2026, 5, 6, 12, 0, 0, 0, time.UTC), time.Sunday, time.UTC))
	svc := NewLeaderboardService(lbRepo.NewLeaderboardRepository(db), userRepo.NewUserRepository(db), week, zap.NewNop())

	giver := testutil.SeedUser(t, db, "giver@example.com")
	star := testutil.SeedUser(t, db, "star@example.com")
	veteran := testutil.SeedUser(t, db, "veteran@example.com")

	thisWeek := time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)
	longAgo := time.Date(2025, 11, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		testutil.SeedKudos(t, db, giver.ID, star.ID, thisWeek)
	}
	for i := 0; i < 6; i++ {
		testutil.SeedKudos(t, db, giver.ID, veteran.ID, longAgo)
	}

	t.Run("Weekly", func(t *testing.T) {
		entries, err := svc.GetLeaderboard(ctx, dto.LeaderboardQuery{})
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, 1, entries[0].Position)
		assert.Equal(t, star.ID, entries[0].UserID)
		assert.Equal(t, star.DisplayName, entries[0].DisplayName)
		assert.Equal(t, int64(3), entries[0].KudosCount)
		assert.Equal(t, "📈 Active", entries[0].WeeklyLabel)
	})

	t.Run("All time", func(t *testing.T) {
		entries, err := svc.GetLeaderboard(ctx, dto.LeaderboardQuery{Timeframe: dto.TimeframeAllTime, Limit: 5})
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, veteran.ID, entries[0].UserID)
		assert.Equal(t, "Appreciated", entries[0].Tier)
		assert.Empty(t, entries[0].WeeklyLabel)
		assert.Equal(t, 2, entries[1].Position)
	})

	t.Run("Recognition status", func(t *testing.T) {
		st, err := svc.GetRecognitionStatus(ctx, star.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(3), st.KudosReceived)
		assert.Equal(t, int64(3), st.WeeklyReceived)
		assert.Equal(t, "Newcomer", st.Tier)
	})
}
