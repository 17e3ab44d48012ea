package repository

import (
	"context"
	"fmt"
	"time"

	"anoa.com/kudoswall/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BadgeRepository interface {
	// FindByUser returns the user's ledger entries with their badge, newest first.
	FindByUser(ctx context.Context, userID uuid.UUID) ([]entity.UserBadge, error)
	// FindOrCreateBadge materializes a catalog entry keyed by (name, criteria) and
	// returns the stored row. Concurrent callers all get the same row.
	FindOrCreateBadge(ctx context.Context, badge entity.Badge) (*entity.Badge, error)
	// AwardBadge inserts a ledger entry unless one already exists for (user, badge).
	// It reports whether this call inserted the row.
	AwardBadge(ctx context.Context, userID, badgeID uuid.UUID, earnedAt time.Time) (bool, error)
}

type badgeRepository struct {
	db *gorm.DB
}

func NewBadgeRepository(db *gorm.DB) BadgeRepository {
	return &badgeRepository{db: db}
}

func (r *badgeRepository) FindByUser(ctx context.Context, userID uuid.UUID) ([]entity.UserBadge, error) {
	var entries []entity.UserBadge
	err := r.db.WithContext(ctx).
		Preload("Badge").
		Where("user_id = ?", userID).
		Order("earned_at desc").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("list user badges: %w", err)
	}
	return entries, nil
}

func (r *badgeRepository) FindOrCreateBadge(ctx context.Context, badge entity.Badge) (*entity.Badge, error) {
	db := r.db.WithContext(ctx)

	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}, {Name: "criteria"}},
		DoNothing: true,
	}).Create(&badge).Error
	if err != nil {
		return nil, fmt.Errorf("create badge %q: %w", badge.Criteria, err)
	}

	// Re-read so a losing racer gets the winner's id.
	var stored entity.Badge
	if err := db.Where("name = ? AND criteria = ?", badge.Name, badge.Criteria).First(&stored).Error; err != nil {
		return nil, fmt.Errorf("load badge %q: %w", badge.Criteria, err)
	}
	return &stored, nil
}

func (r *badgeRepository) AwardBadge(ctx context.Context, userID, badgeID uuid.UUID, earnedAt time.Time) (bool, error) {
	entry := entity.UserBadge{
		UserID:   userID,
		BadgeID:  badgeID,
		EarnedAt: earnedAt,
	}

	res := r.db.WithContext(ctx).
		Omit("Badge").
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "badge_id"}},
			DoNothing: true,
		}).
		Create(&entry)
	if res.Error != nil {
		return false, fmt.Errorf("award badge: %w", res.Error)
	}
	return res.RowsAffected == 1, nil
}
