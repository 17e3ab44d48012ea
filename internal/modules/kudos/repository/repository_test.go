package repository

import (
	"context"
	"testing"
	"time"

	"anoa.com/kudoswall/internal/entity"
	"anoa.com/kudoswall/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKudosRepository(t *testing.T) {
	db := testutil.DB(t)
	repo := NewKudosRepository(db)
	ctx := context.Background()

	ana := testutil.SeedUser(t, db, "ana@example.com")
	ben := testutil.SeedUser(t, db, "ben@example.com")
	base := time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)

	k := &entity.Kudos{
		SenderID:   ana.ID,
		ReceiverID: ben.ID,
		Message:    "Great job on the launch!",
		Category:   entity.CategoryAchievement,
		CreatedAt:  base,
	}
	require.NoError(t, repo.Create(ctx, k))
	assert.NotEqual(t, uuid.Nil, k.ID)
	testutil.SeedKudos(t, db, ben.ID, ana.ID, base.Add(time.Hour))
	testutil.SeedKudos(t, db, ana.ID, ben.ID, base.Add(2*time.Hour))

	t.Run("Round trip", func(t *testing.T) {
		got, err := repo.FindByIDs(ctx, []uuid.UUID{k.ID})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, k.SenderID, got[0].SenderID)
		assert.Equal(t, k.ReceiverID, got[0].ReceiverID)
		assert.Equal(t, k.Message, got[0].Message)
		assert.Equal(t, k.Category, got[0].Category)
		assert.True(t, k.CreatedAt.Equal(got[0].CreatedAt))
		require.NotNil(t, got[0].Sender)
		assert.Equal(t, "ana@example.com", got[0].Sender.Email)
	})

	t.Run("FindAll oldest first", func(t *testing.T) {
		all, err := repo.FindAll(ctx)
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.Equal(t, k.ID, all[0].ID)
	})

	t.Run("By receiver newest first", func(t *testing.T) {
		received, err := repo.FindByReceiver(ctx, ben.ID, 0)
		require.NoError(t, err)
		require.Len(t, received, 2)
		assert.True(t, received[0].CreatedAt.After(received[1].CreatedAt))

		limited, err := repo.FindBySender(ctx, ana.ID, 1)
		require.NoError(t, err)
		assert.Len(t, limited, 1)
	})

	t.Run("Counts", func(t *testing.T) {
		n, err := repo.CountByReceiver(ctx, ben.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)
		n, err = repo.CountBySender(ctx, ben.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
	})

	t.Run("Page", func(t *testing.T) {
		page, total, err := repo.FindPage(ctx, 1, 1)
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		require.Len(t, page, 1)
		assert.True(t, page[0].CreatedAt.Equal(base.Add(time.Hour)))
	})

	t.Run("Records are immutable", func(t *testing.T) {
		k.Message = "edited"
		err := db.WithContext(ctx).Save(k).Error
		assert.ErrorIs(t, err, entity.ErrImmutable)
	})
}
