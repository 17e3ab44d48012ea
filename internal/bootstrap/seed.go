package bootstrap

import (
	"errors"

	"anoa.com/kudoswall/internal/entity"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	DemoManagerEmail    = "manager@kudoswall.local"
	demoManagerPassword = "manager123"
)

// Migrate creates the schema. Badge rows are not seeded; the award path
// creates each one the first time someone earns it.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(entity.Models()...)
}

// SeedDemoManager creates a manager account for local development.
func SeedDemoManager(db *gorm.DB, log *zap.Logger) error {
	var existing entity.User
	err := db.Where("email = ?", DemoManagerEmail).First(&existing).Error
	if err == nil {
		log.Debug("demo manager already exists, skipping seed")
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(demoManagerPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	manager := entity.User{
		Email:        DemoManagerEmail,
		PasswordHash: string(hash),
		DisplayName:  "Demo Manager",
		Role:         entity.RoleManager,
		Department:   "People Ops",
	}
	if err := db.Create(&manager).Error; err != nil {
		return err
	}

	log.Info("demo manager seeded", zap.String("email", DemoManagerEmail))
	return nil
}
