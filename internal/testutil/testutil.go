// Package testutil holds helpers shared by repository and service tests.
package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"anoa.com/kudoswall/internal/entity"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// DB opens a private in-memory SQLite database with every table migrated.
// A single connection keeps concurrent callers serialized, like a small pool
// under contention, without SQLite lock errors.
func DB(tb testing.TB) *gorm.DB {
	tb.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		tb.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		tb.Fatalf("sqlite handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	tb.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.AutoMigrate(entity.Models()...); err != nil {
		tb.Fatalf("migrate: %v", err)
	}
	return db
}

func SeedUser(tb testing.TB, db *gorm.DB, email string) *entity.User {
	tb.Helper()
	u := &entity.User{
		Email:        email,
		PasswordHash: "x",
		DisplayName:  email,
	}
	if err := db.WithContext(context.Background()).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedKudos(tb testing.TB, db *gorm.DB, sender, receiver uuid.UUID, at time.Time) *entity.Kudos {
	tb.Helper()
	k := &entity.Kudos{
		SenderID:   sender,
		ReceiverID: receiver,
		Message:    "thanks",
		Category:   entity.CategoryGeneral,
		CreatedAt:  at.UTC(),
	}
	if err := db.WithContext(context.Background()).Create(k).Error; err != nil {
		tb.Fatalf("seed kudos: %v", err)
	}
	return k
}

// Kudos builds count in-memory records from sender to receiver at the given time.
func Kudos(count int, sender, receiver uuid.UUID, at time.Time) []entity.Kudos {
	out := make([]entity.Kudos, 0, count)
	for i := 0; i < count; i++ {
		out = append(out, entity.Kudos{
			ID:         uuid.New(),
			SenderID:   sender,
			ReceiverID: receiver,
			Message:    "great work",
			Category:   entity.CategoryTeamwork,
			CreatedAt:  at,
		})
	}
	return out
}
