package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/reachbase/reachbase-backend/internal/models"
	"github.com/reachbase/reachbase-backend/internal/repository"
	"github.com/reachbase/reachbase-backend/internal/validation"
)

// AccountService инкапсулирует бизнес-логику компаний.
type AccountService struct {
	repo *repository.AccountRepository
}

// NewAccountService создаёт сервис компаний.
func NewAccountService(repo *repository.AccountRepository) *AccountService {
	return &AccountService{repo: repo}
}

// CreateAccountInput содержит данные новой компании.
type CreateAccountInput struct {
	Name        string
	Domain      *string
	Industry    *string
	CompanySize *string
}

// ListAccounts возвращает страницу компаний воркспейса.
func (s *AccountService) ListAccounts(ctx context.Context, workspaceID uuid.UUID, p repository.AccountListParams) (*repository.AccountListResult, error) {
	return s.repo.List(ctx, workspaceID, p)
}

// GetAccount возвращает компанию по идентификатору.
func (s *AccountService) GetAccount(ctx context.Context, workspaceID, id uuid.UUID) (*models.Account, error) {
	return s.repo.GetByID(ctx, workspaceID, id)
}

// CreateAccount создаёт компанию.
func (s *AccountService) CreateAccount(ctx context.Context, workspaceID, createdBy uuid.UUID, in CreateAccountInput) (*models.Account, error) {
	if err := validation.ValidateNonEmpty("название компании", in.Name); err != nil {
		return nil, fmt.Errorf("account service: %w", err)
	}
	if err := validation.ValidateLength("название компании", in.Name, 1, validation.MaxAccountNameLength); err != nil {
		return nil, fmt.Errorf("account service: %w", err)
	}

	account := &models.Account{
		WorkspaceID: workspaceID,
		CreatedBy:   createdBy,
		Name:        in.Name,
		Domain:      in.Domain,
		Industry:    in.Industry,
		CompanySize: in.CompanySize,
	}

	if err := s.repo.Create(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

// UpdateAccount применяет частичное обновление компании.
func (s *AccountService) UpdateAccount(ctx context.Context, workspaceID, id uuid.UUID, upd repository.AccountUpdate) (*models.Account, error) {
	if upd.Name != nil {
		if err := validation.ValidateNonEmpty("название компании", *upd.Name); err != nil {
			return nil, fmt.Errorf("account service: %w", err)
		}
	}
	return s.repo.Update(ctx, workspaceID, id, upd)
}

// DeleteAccount удаляет компанию.
func (s *AccountService) DeleteAccount(ctx context.Context, workspaceID, id uuid.UUID) error {
	return s.repo.Delete(ctx, workspaceID, id)
}
