package repository

import (
	"context"
	"errors"
	"fmt"

	"anoa.com/kudoswall/internal/entity"
	"anoa.com/kudoswall/pkg/apperror"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type KPIRepository interface {
	Create(ctx context.Context, kpi *entity.KPI) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.KPI, error)
	FindByUser(ctx context.Context, userID uuid.UUID) ([]entity.KPI, error)
	Update(ctx context.Context, kpi *entity.KPI) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type kpiRepository struct {
	db *gorm.DB
}

func NewKPIRepository(db *gorm.DB) KPIRepository {
	return &kpiRepository{db: db}
}

func (r *kpiRepository) Create(ctx context.Context, kpi *entity.KPI) error {
	if err := r.db.WithContext(ctx).Omit("User").Create(kpi).Error; err != nil {
		return fmt.Errorf("create kpi: %w", err)
	}
	return nil
}

func (r *kpiRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.KPI, error) {
	var kpi entity.KPI
	if err := r.db.WithContext(ctx).First(&kpi, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("kpi not found")
		}
		return nil, fmt.Errorf("find kpi: %w", err)
	}
	return &kpi, nil
}

func (r *kpiRepository) FindByUser(ctx context.Context, userID uuid.UUID) ([]entity.KPI, error) {
	var kpis []entity.KPI
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Order("id desc").
		Find(&kpis).Error
	if err != nil {
		return nil, fmt.Errorf("list kpis: %w", err)
	}
	return kpis, nil
}

func (r *kpiRepository) Update(ctx context.Context, kpi *entity.KPI) error {
	if err := r.db.WithContext(ctx).Omit("User").Save(kpi).Error; err != nil {
		return fmt.Errorf("update kpi: %w", err)
	}
	return nil
}

func (r *kpiRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&entity.KPI{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("delete kpi: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperror.NotFound("kpi not found")
	}
	return nil
}
