package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	CategoryTeamwork    = "teamwork"
	CategoryInnovation  = "innovation"
	CategoryLeadership  = "leadership"
	CategoryAchievement = "achievement"
	CategoryGeneral     = "general"
)

var KudosCategories = []string{
	CategoryTeamwork,
	CategoryInnovation,
	CategoryLeadership,
	CategoryAchievement,
	CategoryGeneral,
}

func IsKudosCategory(c string) bool {
	for _, known := range KudosCategories {
		if c == known {
			return true
		}
	}
	return false
}

// Kudos is a recognition card. Rows are append-only.
type Kudos struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	SenderID   uuid.UUID `gorm:"type:uuid;not null;index" json:"sender_id"`
	Sender     *User     `gorm:"foreignKey:SenderID;constraint:OnDelete:CASCADE" json:"sender,omitempty"`
	ReceiverID uuid.UUID `gorm:"type:uuid;not null;index" json:"receiver_id"`
	Receiver   *User     `gorm:"foreignKey:ReceiverID;constraint:OnDelete:CASCADE" json:"receiver,omitempty"`
	Message    string    `gorm:"type:text;not null" json:"message"`
	Category   string    `gorm:"size:20;not null;index" json:"category"`
	CreatedAt  time.Time `gorm:"not null;index" json:"created_at"`
}

func (Kudos) TableName() string {
	return "kudos_cards"
}

func (k *Kudos) BeforeCreate(tx *gorm.DB) (err error) {
	if k.ID == uuid.Nil {
		k.ID, err = uuid.NewV7()
	}
	return
}

// BeforeUpdate rejects writes to existing cards.
func (k *Kudos) BeforeUpdate(tx *gorm.DB) error {
	return ErrImmutable
}
