package entity

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrImmutable = errors.New("record is immutable")

// Badge is a materialized catalog entry, created the first time anyone earns it.
type Badge struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string    `gorm:"size:100;not null;uniqueIndex:idx_badges_name_criteria,priority:1" json:"name"`
	Criteria    string    `gorm:"size:50;not null;uniqueIndex:idx_badges_name_criteria,priority:2" json:"criteria"`
	Description string    `gorm:"type:text" json:"description"`
	ImageURL    string    `gorm:"type:text" json:"image_url"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (b *Badge) BeforeCreate(tx *gorm.DB) (err error) {
	if b.ID == uuid.Nil {
		b.ID, err = uuid.NewV7()
	}
	return
}

// UserBadge is a badge ledger entry. At most one per (user, badge).
type UserBadge struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_user_badges_user_badge,priority:1" json:"user_id"`
	BadgeID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_user_badges_user_badge,priority:2" json:"badge_id"`
	Badge    Badge     `gorm:"foreignKey:BadgeID;constraint:OnDelete:CASCADE" json:"badge"`
	EarnedAt time.Time `gorm:"not null;index" json:"earned_at"`
}

func (UserBadge) TableName() string {
	return "user_badges"
}

func (ub *UserBadge) BeforeCreate(tx *gorm.DB) (err error) {
	if ub.ID == uuid.Nil {
		ub.ID, err = uuid.NewV7()
	}
	return
}
