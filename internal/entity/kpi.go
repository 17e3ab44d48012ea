package entity

import (
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type KPI struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	User        *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Title       string    `gorm:"size:200;not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	Target      float64   `gorm:"not null" json:"target"`
	Current     float64   `gorm:"not null;default:0" json:"current"`
	Unit        string    `gorm:"size:30" json:"unit"`
	StartDate   time.Time `gorm:"not null" json:"start_date"`
	EndDate     time.Time `gorm:"not null" json:"end_date"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (KPI) TableName() string {
	return "kpis"
}

func (k *KPI) BeforeCreate(tx *gorm.DB) (err error) {
	if k.ID == uuid.Nil {
		k.ID, err = uuid.NewV7()
	}
	return
}

// Progress is Current/Target as a percentage, capped at 100 and rounded to 2 decimals.
func (k *KPI) Progress() float64 {
	if k.Target <= 0 {
		return 0
	}
	p := k.Current / k.Target * 100
	if p > 100 {
		p = 100
	}
	if p < 0 {
		p = 0
	}
	return math.Round(p*100) / 100
}
