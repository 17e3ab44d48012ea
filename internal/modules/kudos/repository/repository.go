package repository

import (
	"context"
	"fmt"

	"anoa.com/kudoswall/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type KudosRepository interface {
	Create(ctx context.Context, kudos *entity.Kudos) error
	// FindAll returns every record, oldest first. The badge evaluator works over this set.
	FindAll(ctx context.Context) ([]entity.Kudos, error)
	FindPage(ctx context.Context, offset, limit int) ([]entity.Kudos, int64, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.Kudos, error)
	// FindByReceiver and FindBySender return newest first. A limit <= 0 means no limit.
	FindByReceiver(ctx context.Context, userID uuid.UUID, limit int) ([]entity.Kudos, error)
	FindBySender(ctx context.Context, userID uuid.UUID, limit int) ([]entity.Kudos, error)
	CountByReceiver(ctx context.Context, userID uuid.UUID) (int64, error)
	CountBySender(ctx context.Context, userID uuid.UUID) (int64, error)
}

type kudosRepository struct {
	db *gorm.DB
}

func NewKudosRepository(db *gorm.DB) KudosRepository {
	return &kudosRepository{db: db}
}

func (r *kudosRepository) Create(ctx context.Context, kudos *entity.Kudos) error {
	if err := r.db.WithContext(ctx).Omit("Sender", "Receiver").Create(kudos).Error; err != nil {
		return fmt.Errorf("create kudos: %w", err)
	}
	return nil
}

func (r *kudosRepository) FindAll(ctx context.Context) ([]entity.Kudos, error) {
	var records []entity.Kudos
	if err := r.db.WithContext(ctx).Order("created_at asc, id asc").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("list kudos: %w", err)
	}
	return records, nil
}

func (r *kudosRepository) withUsers(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Sender").Preload("Receiver")
}

func (r *kudosRepository) FindPage(ctx context.Context, offset, limit int) ([]entity.Kudos, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&entity.Kudos{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count kudos: %w", err)
	}

	var records []entity.Kudos
	err := r.withUsers(ctx).
		Order("created_at desc, id desc").
		Offset(offset).
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list kudos page: %w", err)
	}
	return records, total, nil
}

func (r *kudosRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.Kudos, error) {
	var records []entity.Kudos
	if len(ids) == 0 {
		return records, nil
	}
	if err := r.withUsers(ctx).Where("id IN ?", ids).Find(&records).Error; err != nil {
		return nil, fmt.Errorf("find kudos: %w", err)
	}
	return records, nil
}

func (r *kudosRepository) FindByReceiver(ctx context.Context, userID uuid.UUID, limit int) ([]entity.Kudos, error) {
	return r.findBy(ctx, "receiver_id", userID, limit)
}

func (r *kudosRepository) FindBySender(ctx context.Context, userID uuid.UUID, limit int) ([]entity.Kudos, error) {
	return r.findBy(ctx, "sender_id", userID, limit)
}

func (r *kudosRepository) findBy(ctx context.Context, column string, userID uuid.UUID, limit int) ([]entity.Kudos, error) {
	var records []entity.Kudos
	q := r.withUsers(ctx).Where(column+" = ?", userID).Order("created_at desc, id desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&records).Error; err != nil {
		return nil, fmt.Errorf("list kudos by %s: %w", column, err)
	}
	return records, nil
}

func (r *kudosRepository) CountByReceiver(ctx context.Context, userID uuid.UUID) (int64, error) {
	return r.countBy(ctx, "receiver_id", userID)
}

func (r *kudosRepository) CountBySender(ctx context.Context, userID uuid.UUID) (int64, error) {
	return r.countBy(ctx, "sender_id", userID)
}

func (r *kudosRepository) countBy(ctx context.Context, column string, userID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&entity.Kudos{}).Where(column+" = ?", userID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count kudos by %s: %w", column, err)
	}
	return count, nil
}
