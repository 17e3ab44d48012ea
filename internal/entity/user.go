package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleMember  = "member"
	RoleManager = "manager"
)

// AvatarOptions are the feature indices understood by the avatar renderer.
type AvatarOptions struct {
	Face        int    `json:"face" validate:"gte=0"`
	Nose        int    `json:"nose" validate:"gte=0"`
	Mouth       int    `json:"mouth" validate:"gte=0"`
	Eyes        int    `json:"eyes" validate:"gte=0"`
	Eyebrows    int    `json:"eyebrows" validate:"gte=0"`
	Glasses     int    `json:"glasses" validate:"gte=0"`
	Hair        int    `json:"hair" validate:"gte=0"`
	Accessories int    `json:"accessories" validate:"gte=0"`
	Details     int    `json:"details" validate:"gte=0"`
	Beard       int    `json:"beard" validate:"gte=0"`
	Flip        int    `json:"flip" validate:"oneof=0 1"`
	Color       string `json:"color" validate:"max=32"`
	Shape       string `json:"shape" validate:"omitempty,oneof=circle square rounded none"`
}

func DefaultAvatarOptions() AvatarOptions {
	return AvatarOptions{Color: "#FFFFFF", Shape: "circle"}
}

type User struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Email         string         `gorm:"size:100;uniqueIndex;not null" json:"email"`
	PasswordHash  string         `gorm:"size:255;not null" json:"-"`
	DisplayName   string         `gorm:"size:100" json:"display_name"`
	Role          string         `gorm:"size:50" json:"role"`
	Department    string         `gorm:"size:100" json:"department"`
	Bio           *string        `gorm:"type:text" json:"bio,omitempty"`
	AvatarURL     *string        `gorm:"type:text" json:"avatar_url,omitempty"`
	AvatarOptions *AvatarOptions `gorm:"type:text;serializer:json" json:"avatar_options"`
	GoogleID      *string        `gorm:"size:100;uniqueIndex" json:"-"`
	CreatedAt     time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	return nil
}

// AfterFind fills the optional columns once, so nothing past the repository
// has to check for missing profile fields.
func (u *User) AfterFind(tx *gorm.DB) error {
	u.ApplyDefaults()
	return nil
}

func (u *User) ApplyDefaults() {
	if strings.TrimSpace(u.DisplayName) == "" {
		u.DisplayName = u.Email
		if at := strings.IndexByte(u.Email, '@'); at > 0 {
			u.DisplayName = u.Email[:at]
		}
	}
	if u.Role == "" {
		u.Role = RoleMember
	}
	if u.AvatarOptions == nil {
		opts := DefaultAvatarOptions()
		u.AvatarOptions = &opts
	}
}
