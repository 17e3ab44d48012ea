package repository

import (
	"context"
	"fmt"
	"time"

	"anoa.com/kudoswall/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Period bounds an aggregate; a nil Period covers all time. Both ends are included.
type Period struct {
	Start time.Time
	End   time.Time
}

type ReceiverCount struct {
	UserID uuid.UUID `gorm:"column:user_id"`
	Count  int64     `gorm:"column:kudos_count"`
}

type LeaderboardRepository interface {
	// TopReceivers ranks receivers by count desc, then receiver id asc.
	TopReceivers(ctx context.Context, period *Period, limit int) ([]ReceiverCount, error)
	CountsFor(ctx context.Context, userIDs []uuid.UUID, period *Period) (map[uuid.UUID]int64, error)
}

type leaderboardRepository struct {
	db *gorm.DB
}

func NewLeaderboardRepository(db *gorm.DB) LeaderboardRepository {
	return &leaderboardRepository{db: db}
}

func (r *leaderboardRepository) received(ctx context.Context, period *Period) *gorm.DB {
	q := r.db.WithContext(ctx).
		Model(&entity.Kudos{}).
		Select("receiver_id AS user_id, COUNT(*) AS kudos_count")
	if period != nil {
		q = q.Where("created_at >= ? AND created_at <= ?", period.Start.UTC(), period.End.UTC())
	}
	return q.Group("receiver_id")
}

func (r *leaderboardRepository) TopReceivers(ctx context.Context, period *Period, limit int) ([]ReceiverCount, error) {
	var rows []ReceiverCount
	err := r.received(ctx, period).
		Order("kudos_count DESC").
		Order("receiver_id ASC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("rank receivers: %w", err)
	}
	return rows, nil
}

func (r *leaderboardRepository) CountsFor(ctx context.Context, userIDs []uuid.UUID, period *Period) (map[uuid.UUID]int64, error) {
	counts := make(map[uuid.UUID]int64, len(userIDs))
	if len(userIDs) == 0 {
		return counts, nil
	}

	var rows []ReceiverCount
	if err := r.received(ctx, period).Where("receiver_id IN ?", userIDs).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("count received kudos: %w", err)
	}
	for _, row := range rows {
		counts[row.UserID] = row.Count
	}
	return counts, nil
}
