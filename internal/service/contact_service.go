package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx/types"
	"github.com/lib/pq"

	"github.com/reachbase/reachbase-backend/internal/models"
	"github.com/reachbase/reachbase-backend/internal/repository"
	"github.com/reachbase/reachbase-backend/internal/validation"
)

// ContactService инкапсулирует бизнес-логику контактов.
type ContactService struct {
	repo *repository.ContactRepository
}

// NewContactService создаёт сервис контактов.
func NewContactService(repo *repository.ContactRepository) *ContactService {
	return &ContactService{repo: repo}
}

// CreateContactInput содержит данные нового контакта.
type CreateContactInput struct {
	AccountID    *uuid.UUID
	FirstName    string
	LastName     string
	Email        string
	Title        *string
	Phone        *string
	Status       string
	Tags         []string
	CustomFields types.JSONText
}

// ListContacts возвращает страницу контактов воркспейса.
func (s *ContactService) ListContacts(ctx context.Context, workspaceID uuid.UUID, p repository.ContactListParams) (*repository.ContactListResult, error) {
	return s.repo.List(ctx, workspaceID, p)
}

// GetContact возвращает контакт по идентификатору.
func (s *ContactService) GetContact(ctx context.Context, workspaceID, id uuid.UUID) (*models.Contact, error) {
	return s.repo.GetByID(ctx, workspaceID, id)
}

// CreateContact создаёт контакт.
func (s *ContactService) CreateContact(ctx context.Context, workspaceID, ownerID uuid.UUID, in CreateContactInput) (*models.Contact, error) {
	if err := validation.ValidateNonEmpty("имя", in.FirstName); err != nil {
		return nil, fmt.Errorf("contact service: %w", err)
	}
	if err := validation.ValidateNonEmpty("фамилия", in.LastName); err != nil {
		return nil, fmt.Errorf("contact service: %w", err)
	}
	if err := validation.ValidateEmail(in.Email); err != nil {
		return nil, fmt.Errorf("contact service: %w", err)
	}
	if err := validation.ValidateTags(in.Tags); err != nil {
		return nil, fmt.Errorf("contact service: %w", err)
	}

	status := in.Status
	if status == "" {
		status = models.ContactStatusActive
	}
	if err := validation.ValidateEnum("статус", status, models.ValidContactStatuses); err != nil {
		return nil, fmt.Errorf("contact service: %w", err)
	}

	tags := in.Tags
	if tags == nil {
		tags = []string{}
	}

	contact := &models.Contact{
		WorkspaceID:  workspaceID,
		AccountID:    in.AccountID,
		OwnerID:      ownerID,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Email:        in.Email,
		Title:        in.Title,
		Phone:        in.Phone,
		Status:       status,
		Tags:         pq.StringArray(tags),
		CustomFields: in.CustomFields,
	}

	if err := s.repo.Create(ctx, contact); err != nil {
		return nil, err
	}
	return contact, nil
}

// UpdateContact применяет частичное обновление контакта.
func (s *ContactService) UpdateContact(ctx context.Context, workspaceID, id uuid.UUID, upd repository.ContactUpdate) (*models.Contact, error) {
	if upd.Email != nil {
		if err := validation.ValidateEmail(*upd.Email); err != nil {
			return nil, fmt.Errorf("contact service: %w", err)
		}
	}
	if upd.Status != nil {
		if err := validation.ValidateEnum("статус", *upd.Status, models.ValidContactStatuses); err != nil {
			return nil, fmt.Errorf("contact service: %w", err)
		}
	}
	if upd.Tags != nil {
		if err := validation.ValidateTags(*upd.Tags); err != nil {
			return nil, fmt.Errorf("contact service: %w", err)
		}
	}

	return s.repo.Update(ctx, workspaceID, id, upd)
}

// DeleteContact удаляет контакт.
func (s *ContactService) DeleteContact(ctx context.Context, workspaceID, id uuid.UUID) error {
	return s.repo.Delete(ctx, workspaceID, id)
}
