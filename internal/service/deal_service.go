package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/reachbase/reachbase-backend/internal/models"
	"github.com/reachbase/reachbase-backend/internal/repository"
	"github.com/reachbase/reachbase-backend/internal/validation"
)

// DealService инкапсулирует бизнес-логику сделок.
type DealService struct {
	repo *repository.DealRepository
}

// NewDealService создаёт сервис сделок.
func NewDealService(repo *repository.DealRepository) *DealService {
	return &DealService{repo: repo}
}

// ListDeals возвращает страницу сделок воркспейса.
func (s *DealService) ListDeals(ctx context.Context, workspaceID uuid.UUID, p repository.DealListParams) (*repository.DealListResult, error) {
	if p.Stage != "" {
		if err := validation.ValidateEnum("этап", p.Stage, models.ValidDealStages); err != nil {
			return nil, fmt.Errorf("deal service: %w", err)
		}
	}
	return s.repo.List(ctx, workspaceID, p)
}

// GetDeal возвращает сделку по идентификатору.
func (s *DealService) GetDeal(ctx context.Context, workspaceID, id uuid.UUID) (*models.Deal, error) {
	return s.repo.GetByID(ctx, workspaceID, id)
}

// CreateDeal создаёт сделку.
func (s *DealService) CreateDeal(ctx context.Context, workspaceID, ownerID uuid.UUID, deal *models.Deal) (*models.Deal, error) {
	if err := validation.ValidateNonEmpty("название сделки", deal.Name); err != nil {
		return nil, fmt.Errorf("deal service: %w", err)
	}
	if err := validation.ValidateLength("название сделки", deal.Name, 1, validation.MaxDealNameLength); err != nil {
		return nil, fmt.Errorf("deal service: %w", err)
	}
	if err := validation.ValidateDealAmount(deal.Amount); err != nil {
		return nil, fmt.Errorf("deal service: %w", err)
	}

	if deal.Stage == "" {
		deal.Stage = models.DealStageLead
	}
	if err := validation.ValidateEnum("этап", deal.Stage, models.ValidDealStages); err != nil {
		return nil, fmt.Errorf("deal service: %w", err)
	}

	deal.WorkspaceID = workspaceID
	deal.OwnerID = ownerID

	if err := s.repo.Create(ctx, deal); err != nil {
		return nil, err
	}
	return deal, nil
}

// UpdateDeal применяет частичное обновление сделки.
func (s *DealService) UpdateDeal(ctx context.Context, workspaceID, id uuid.UUID, upd repository.DealUpdate) (*models.Deal, error) {
	if upd.Stage != nil {
		if err := validation.ValidateEnum("этап", *upd.Stage, models.ValidDealStages); err != nil {
			return nil, fmt.Errorf("deal service: %w", err)
		}
	}
	if err := validation.ValidateDealAmount(upd.Amount); err != nil {
		return nil, fmt.Errorf("deal service: %w", err)
	}
	return s.repo.Update(ctx, workspaceID, id, upd)
}

// DeleteDeal удаляет сделку.
func (s *DealService) DeleteDeal(ctx context.Context, workspaceID, id uuid.UUID) error {
	return s.repo.Delete(ctx, workspaceID, id)
}

// GetPipelineSummary возвращает сводку воронки по этапам.
// Этапы без сделок включаются с нулями, порядок фиксирован.
func (s *DealService) GetPipelineSummary(ctx context.Context, workspaceID uuid.UUID) ([]models.StageSummary, error) {
	raw, err := s.repo.GetPipelineSummary(ctx, workspaceID)
	if err != nil {
		return nil, err
	}

	byStage := make(map[string]models.StageSummary, len(raw))
	for _, st := range raw {
		byStage[st.Stage] = st
	}

	summary := make([]models.StageSummary, 0, len(models.DealStageOrder))
	for _, stage := range models.DealStageOrder {
		if st, ok := byStage[stage]; ok {
			summary = append(summary, st)
		} else {
			summary = append(summary, models.StageSummary{Stage: stage})
		}
	}
	return summary, nil
}
