package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/reachbase/reachbase-backend/internal/metrics"
	"github.com/reachbase/reachbase-backend/internal/models"
	"github.com/reachbase/reachbase-backend/internal/repository"
	"github.com/reachbase/reachbase-backend/internal/validation"
)

// SequenceStore описывает зависимости SequenceService от слоя хранилища.
type SequenceStore interface {
	List(ctx context.Context, workspaceID uuid.UUID, p repository.SequenceListParams) (*repository.SequenceListResult, error)
	GetByID(ctx context.Context, workspaceID, id uuid.UUID) (*models.Sequence, error)
	Create(ctx context.Context, s *models.Sequence) error
	Update(ctx context.Context, workspaceID, id uuid.UUID, upd repository.SequenceUpdate) (*models.Sequence, error)
	Delete(ctx context.Context, workspaceID, id uuid.UUID) error
	Enroll(ctx context.Context, e *models.SequenceEnrollment) error
	ListEnrollments(ctx context.Context, sequenceID uuid.UUID, status string) ([]models.SequenceEnrollment, error)
	UpdateEnrollmentStatus(ctx context.Context, workspaceID, enrollmentID uuid.UUID, status string) error
}

// ContactReader нужен сервису последовательностей для проверки контактов.
type ContactReader interface {
	GetByID(ctx context.Context, workspaceID, id uuid.UUID) (*models.Contact, error)
}

// SequenceService инкапсулирует бизнес-логику последовательностей.
type SequenceService struct {
	store    SequenceStore
	contacts ContactReader
}

// NewSequenceService создаёт сервис последовательностей.
func NewSequenceService(store SequenceStore, contacts ContactReader) *SequenceService {
	return &SequenceService{store: store, contacts: contacts}
}

// StepInput описывает один шаг последовательности.
type StepInput struct {
	TemplateID uuid.UUID
	StepNumber int
	DelayDays  int
}

// CreateSequenceInput содержит данные новой последовательности.
type CreateSequenceInput struct {
	Name            string
	MaxEmailsPerDay int
	Steps           []StepInput
}

// ListSequences возвращает страницу последовательностей.
func (s *SequenceService) ListSequences(ctx context.Context, workspaceID uuid.UUID, p repository.SequenceListParams) (*repository.SequenceListResult, error) {
	return s.store.List(ctx, workspaceID, p)
}

// GetSequence возвращает последовательность с шагами.
func (s *SequenceService) GetSequence(ctx context.Context, workspaceID, id uuid.UUID) (*models.Sequence, error) {
	return s.store.GetByID(ctx, workspaceID, id)
}

// CreateSequence создаёт последовательность вместе с шагами.
func (s *SequenceService) CreateSequence(ctx context.Context, workspaceID, createdBy uuid.UUID, in CreateSequenceInput) (*models.Sequence, error) {
	if err := validation.ValidateNonEmpty("название последовательности", in.Name); err != nil {
		return nil, fmt.Errorf("sequence service: %w", err)
	}
	if err := validation.ValidateLength("название последовательности", in.Name, 1, validation.MaxSequenceNameLength); err != nil {
		return nil, fmt.Errorf("sequence service: %w", err)
	}
	if err := validateSteps(in.Steps); err != nil {
		return nil, fmt.Errorf("sequence service: %w", err)
	}

	maxPerDay := in.MaxEmailsPerDay
	if maxPerDay <= 0 {
		maxPerDay = 50
	}

	seq := &models.Sequence{
		WorkspaceID:     workspaceID,
		CreatedBy:       createdBy,
		Name:            in.Name,
		Status:          models.SequenceStatusDraft,
		MaxEmailsPerDay: maxPerDay,
		Steps:           toSteps(in.Steps),
	}

	if err := s.store.Create(ctx, seq); err != nil {
		return nil, err
	}
	return seq, nil
}

// UpdateSequenceInput содержит частичное обновление последовательности.
type UpdateSequenceInput struct {
	Name            *string
	Status          *string
	MaxEmailsPerDay *int
	Steps           []StepInput
	ReplaceSteps    bool
}

// UpdateSequence применяет частичное обновление. Шаги при замене перезаписываются целиком.
func (s *SequenceService) UpdateSequence(ctx context.Context, workspaceID, id uuid.UUID, in UpdateSequenceInput) (*models.Sequence, error) {
	if in.Status != nil {
		if err := validation.ValidateEnum("статус", *in.Status, models.ValidSequenceStatuses); err != nil {
			return nil, fmt.Errorf("sequence service: %w", err)
		}
	}
	if in.ReplaceSteps {
		if err := validateSteps(in.Steps); err != nil {
			return nil, fmt.Errorf("sequence service: %w", err)
		}
	}

	return s.store.Update(ctx, workspaceID, id, repository.SequenceUpdate{
		Name:            in.Name,
		Status:          in.Status,
		MaxEmailsPerDay: in.MaxEmailsPerDay,
		Steps:           toSteps(in.Steps),
		ReplaceSteps:    in.ReplaceSteps,
	})
}

// DeleteSequence удаляет последовательность.
func (s *SequenceService) DeleteSequence(ctx context.Context, workspaceID, id uuid.UUID) error {
	return s.store.Delete(ctx, workspaceID, id)
}

// EnrollContact добавляет контакт в последовательность. Повторный вызов идемпотентен.
func (s *SequenceService) EnrollContact(ctx context.Context, workspaceID, enrolledBy, sequenceID, contactID uuid.UUID) (*models.SequenceEnrollment, error) {
	// Последовательность и контакт должны принадлежать одному воркспейсу.
	seq, err := s.store.GetByID(ctx, workspaceID, sequenceID)
	if err != nil {
		return nil, err
	}
	if seq.Status != models.SequenceStatusActive {
		return nil, fmt.Errorf("sequence service: %w", validation.Errorf("последовательность не активна"))
	}
	if _, err := s.contacts.GetByID(ctx, workspaceID, contactID); err != nil {
		return nil, err
	}

	enrollment := &models.SequenceEnrollment{
		SequenceID:  sequenceID,
		ContactID:   contactID,
		EnrolledBy:  enrolledBy,
		Status:      models.EnrollmentStatusActive,
		CurrentStep: 1,
	}

	if err := s.store.Enroll(ctx, enrollment); err != nil {
		return nil, err
	}

	if m := metrics.Global(); m != nil {
		m.EnrollmentsTotal.Inc()
	}

	return enrollment, nil
}

// ListEnrollments возвращает записи участников последовательности.
func (s *SequenceService) ListEnrollments(ctx context.Context, workspaceID, sequenceID uuid.UUID, status string) ([]models.SequenceEnrollment, error) {
	if _, err := s.store.GetByID(ctx, workspaceID, sequenceID); err != nil {
		return nil, err
	}
	if status != "" {
		if err := validation.ValidateEnum("статус", status, models.ValidEnrollmentStatuses); err != nil {
			return nil, fmt.Errorf("sequence service: %w", err)
		}
	}
	return s.store.ListEnrollments(ctx, sequenceID, status)
}

// PauseEnrollment приостанавливает участие контакта.
func (s *SequenceService) PauseEnrollment(ctx context.Context, workspaceID, enrollmentID uuid.UUID) error {
	return s.store.UpdateEnrollmentStatus(ctx, workspaceID, enrollmentID, models.EnrollmentStatusPaused)
}

// ResumeEnrollment возобновляет участие контакта.
func (s *SequenceService) ResumeEnrollment(ctx context.Context, workspaceID, enrollmentID uuid.UUID) error {
	return s.store.UpdateEnrollmentStatus(ctx, workspaceID, enrollmentID, models.EnrollmentStatusActive)
}

func validateSteps(steps []StepInput) error {
	numbers := make([]int, len(steps))
	delays := make([]int, len(steps))
	for i, st := range steps {
		if st.TemplateID == uuid.Nil {
			return validation.Errorf("шаг %d: шаблон обязателен", i+1)
		}
		numbers[i] = st.StepNumber
		delays[i] = st.DelayDays
	}
	return validation.ValidateSequenceSteps(numbers, delays)
}

func toSteps(in []StepInput) []models.SequenceStep {
	if in == nil {
		return nil
	}
	steps := make([]models.SequenceStep, len(in))
	for i, st := range in {
		steps[i] = models.SequenceStep{
			TemplateID: st.TemplateID,
			StepNumber: st.StepNumber,
			DelayDays:  st.DelayDays,
		}
	}
	return steps
}
