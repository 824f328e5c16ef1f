package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/reachbase/reachbase-backend/internal/models"
	"github.com/reachbase/reachbase-backend/internal/repository"
)

type mockSequenceStore struct {
	mock.Mock
}

func (m *mockSequenceStore) List(ctx context.Context, workspaceID uuid.UUID, p repository.SequenceListParams) (*repository.SequenceListResult, error) {
	args := m.Called(ctx, workspaceID, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.SequenceListResult), args.Error(1)
}

func (m *mockSequenceStore) GetByID(ctx context.Context, workspaceID, id uuid.UUID) (*models.Sequence, error) {
	args := m.Called(ctx, workspaceID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Sequence), args.Error(1)
}

func (m *mockSequenceStore) Create(ctx context.Context, s *models.Sequence) error {
	args := m.Called(ctx, s)
	if args.Error(0) == nil {
		s.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *mockSequenceStore) Update(ctx context.Context, workspaceID, id uuid.UUID, upd repository.SequenceUpdate) (*models.Sequence, error) {
	args := m.Called(ctx, workspaceID, id, upd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Sequence), args.Error(1)
}

func (m *mockSequenceStore) Delete(ctx context.Context, workspaceID, id uuid.UUID) error {
	args := m.Called(ctx, workspaceID, id)
	return args.Error(0)
}

func (m *mockSequenceStore) Enroll(ctx context.Context, e *models.SequenceEnrollment) error {
	args := m.Called(ctx, e)
	if args.Error(0) == nil {
		e.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *mockSequenceStore) ListEnrollments(ctx context.Context, sequenceID uuid.UUID, status string) ([]models.SequenceEnrollment, error) {
	args := m.Called(ctx, sequenceID, status)
	return args.Get(0).([]models.SequenceEnrollment), args.Error(1)
}

func (m *mockSequenceStore) UpdateEnrollmentStatus(ctx context.Context, workspaceID, enrollmentID uuid.UUID, status string) error {
	args := m.Called(ctx, workspaceID, enrollmentID, status)
	return args.Error(0)
}

type mockContactReader struct {
	mock.Mock
}

func (m *mockContactReader) GetByID(ctx context.Context, workspaceID, id uuid.UUID) (*models.Contact, error) {
	args := m.Called(ctx, workspaceID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Contact), args.Error(1)
}

func TestSequenceService_CreateSequence_Success(t *testing.T) {
	store := new(mockSequenceStore)
	contacts := new(mockContactReader)
	svc := NewSequenceService(store, contacts)
	ctx := context.Background()

	store.On("Create", ctx, mock.AnythingOfType("*models.Sequence")).Return(nil)

	seq, err := svc.CreateSequence(ctx, uuid.New(), uuid.New(), CreateSequenceInput{
		Name: "Знакомство",
		Steps: []StepInput{
			{TemplateID: uuid.New(), StepNumber: 1, DelayDays: 0},
			{TemplateID: uuid.New(), StepNumber: 2, DelayDays: 3},
		},
	})

	assert.NoError(t, err)
	assert.Equal(t, models.SequenceStatusDraft, seq.Status)
	assert.Equal(t, 50, seq.MaxEmailsPerDay)
	assert.Len(t, seq.Steps, 2)
}

func TestSequenceService_CreateSequence_BadStepNumbers(t *testing.T) {
	store := new(mockSequenceStore)
	svc := NewSequenceService(store, new(mockContactReader))

	_, err := svc.CreateSequence(context.Background(), uuid.New(), uuid.New(), CreateSequenceInput{
		Name: "Знакомство",
		Steps: []StepInput{
			{TemplateID: uuid.New(), StepNumber: 1},
			{TemplateID: uuid.New(), StepNumber: 3},
		},
	})

	assert.Error(t, err)
	store.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestSequenceService_EnrollContact_RequiresActiveSequence(t *testing.T) {
	store := new(mockSequenceStore)
	contacts := new(mockContactReader)
	svc := NewSequenceService(store, contacts)
	ctx := context.Background()

	workspaceID := uuid.New()
	sequenceID := uuid.New()

	store.On("GetByID", ctx, workspaceID, sequenceID).
		Return(&models.Sequence{ID: sequenceID, Status: models.SequenceStatusDraft}, nil)

	_, err := svc.EnrollContact(ctx, workspaceID, uuid.New(), sequenceID, uuid.New())

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "не активна")
	store.AssertNotCalled(t, "Enroll", mock.Anything, mock.Anything)
}

func TestSequenceService_EnrollContact_Success(t *testing.T) {
	store := new(mockSequenceStore)
	contacts := new(mockContactReader)
	svc := NewSequenceService(store, contacts)
	ctx := context.Background()

	workspaceID := uuid.New()
	sequenceID := uuid.New()
	contactID := uuid.New()
	userID := uuid.New()

	store.On("GetByID", ctx, workspaceID, sequenceID).
		Return(&models.Sequence{ID: sequenceID, Status: models.SequenceStatusActive}, nil)
	contacts.On("GetByID", ctx, workspaceID, contactID).
		Return(&models.Contact{ID: contactID}, nil)
	store.On("Enroll", ctx, mock.AnythingOfType("*models.SequenceEnrollment")).Return(nil)

	enrollment, err := svc.EnrollContact(ctx, workspaceID, userID, sequenceID, contactID)

	assert.NoError(t, err)
	assert.Equal(t, models.EnrollmentStatusActive, enrollment.Status)
	assert.Equal(t, 1, enrollment.CurrentStep)
}

func TestSequenceService_PauseEnrollment_ScopedToWorkspace(t *testing.T) {
	store := new(mockSequenceStore)
	svc := NewSequenceService(store, new(mockContactReader))
	ctx := context.Background()

	workspaceID := uuid.New()
	enrollmentID := uuid.New()

	store.On("UpdateEnrollmentStatus", ctx, workspaceID, enrollmentID, models.EnrollmentStatusPaused).
		Return(nil)

	err := svc.PauseEnrollment(ctx, workspaceID, enrollmentID)

	assert.NoError(t, err)
	store.AssertExpectations(t)
}

func TestSequenceService_ResumeEnrollment_ForeignWorkspace(t *testing.T) {
	store := new(mockSequenceStore)
	svc := NewSequenceService(store, new(mockContactReader))
	ctx := context.Background()

	workspaceID := uuid.New()
	enrollmentID := uuid.New()

	// Запись из чужого воркспейса не должна быть видна: хранилище не находит строку.
	store.On("UpdateEnrollmentStatus", ctx, workspaceID, enrollmentID, models.EnrollmentStatusActive).
		Return(repository.ErrEnrollmentNotFound)

	err := svc.ResumeEnrollment(ctx, workspaceID, enrollmentID)

	assert.ErrorIs(t, err, repository.ErrEnrollmentNotFound)
}

func TestSequenceService_EnrollContact_ContactFromOtherWorkspace(t *testing.T) {
	store := new(mockSequenceStore)
	contacts := new(mockContactReader)
	svc := NewSequenceService(store, contacts)
	ctx := context.Background()

	workspaceID := uuid.New()
	sequenceID := uuid.New()
	contactID := uuid.New()

	store.On("GetByID", ctx, workspaceID, sequenceID).
		Return(&models.Sequence{ID: sequenceID, Status: models.SequenceStatusActive}, nil)
	contacts.On("GetByID", ctx, workspaceID, contactID).
		Return(nil, repository.ErrContactNotFound)

	_, err := svc.EnrollContact(ctx, workspaceID, uuid.New(), sequenceID, contactID)

	assert.ErrorIs(t, err, repository.ErrContactNotFound)
	store.AssertNotCalled(t, "Enroll", mock.Anything, mock.Anything)
}
