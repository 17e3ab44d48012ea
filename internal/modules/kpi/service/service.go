package service

import (
	"context"
	"net/http"
	"strings"

	"anoa.com/kudoswall/internal/entity"
	"anoa.com/kudoswall/internal/modules/kpi/dto"
	kpiRepo "anoa.com/kudoswall/internal/modules/kpi/repository"
	"anoa.com/kudoswall/pkg/apperror"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type KPIService interface {
	Create(ctx context.Context, userID uuid.UUID, req dto.CreateKPIRequest) (*dto.KPIResponse, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]dto.KPIResponse, error)
	Update(ctx context.Context, userID, id uuid.UUID, req dto.UpdateKPIRequest) (*dto.KPIResponse, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

type kpiService struct {
	repo kpiRepo.KPIRepository
	log  *zap.Logger
}

func NewKPIService(repo kpiRepo.KPIRepository, log *zap.Logger) KPIService {
	return &kpiService{repo: repo, log: log.Named("kpi")}
}

var errNotOwner = apperror.New(http.StatusForbidden, "you can only modify your own KPIs", apperror.ErrForbidden)

func validate(k *entity.KPI) error {
	if strings.TrimSpace(k.Title) == "" {
		return apperror.Validation("title is required")
	}
	if k.Target <= 0 {
		return apperror.Validation("target must be greater than 0")
	}
	if k.Current < 0 {
		return apperror.Validation("current must not be negative")
	}
	if k.EndDate.Before(k.StartDate) {
		return apperror.Validation("end_date must not be before start_date")
	}
	return nil
}

func (s *kpiService) Create(ctx context.Context, userID uuid.UUID, req dto.CreateKPIRequest) (*dto.KPIResponse, error) {
	kpi := &entity.KPI{
		UserID:      userID,
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		Target:      req.Target,
		Current:     req.Current,
		Unit:        strings.TrimSpace(req.Unit),
		StartDate:   req.StartDate.UTC(),
		EndDate:     req.EndDate.UTC(),
	}
	if err := validate(kpi); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, kpi); err != nil {
		return nil, err
	}

	res := dto.NewKPIResponse(kpi)
	return &res, nil
}

func (s *kpiService) ListByUser(ctx context.Context, userID uuid.UUID) ([]dto.KPIResponse, error) {
	kpis, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return dto.NewKPIResponses(kpis), nil
}

func (s *kpiService) owned(ctx context.Context, userID, id uuid.UUID) (*entity.KPI, error) {
	kpi, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if kpi.UserID != userID {
		return nil, errNotOwner
	}
	return kpi, nil
}

func (s *kpiService) Update(ctx context.Context, userID, id uuid.UUID, req dto.UpdateKPIRequest) (*dto.KPIResponse, error) {
	kpi, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		kpi.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		kpi.Description = strings.TrimSpace(*req.Description)
	}
	if req.Target != nil {
		kpi.Target = *req.Target
	}
	if req.Current != nil {
		kpi.Current = *req.Current
	}
	if req.Unit != nil {
		kpi.Unit = strings.TrimSpace(*req.Unit)
	}
	if req.StartDate != nil {
		kpi.StartDate = req.StartDate.UTC()
	}
	if req.EndDate != nil {
		kpi.EndDate = req.EndDate.UTC()
	}
	if err := validate(kpi); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, kpi); err != nil {
		return nil, err
	}

	res := dto.NewKPIResponse(kpi)
	return &res, nil
}

func (s *kpiService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if _, err := s.owned(ctx, userID, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Debug("kpi deleted", zap.String("kpi_id", id.String()), zap.String("user_id", userID.String()))
	return nil
}
