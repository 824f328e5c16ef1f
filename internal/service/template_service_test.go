package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/reachbase/reachbase-backend/internal/models"
	"github.com/reachbase/reachbase-backend/internal/repository"
	"github.com/reachbase/reachbase-backend/internal/repository/common"
)

type mockTemplateStore struct {
	mock.Mock
}

func (m *mockTemplateStore) List(ctx context.Context, workspaceID, viewerID uuid.UUID, p repository.TemplateListParams) (*repository.TemplateListResult, error) {
	args := m.Called(ctx, workspaceID, viewerID, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.TemplateListResult), args.Error(1)
}

func (m *mockTemplateStore) GetByID(ctx context.Context, workspaceID, viewerID, id uuid.UUID) (*models.Template, error) {
	args := m.Called(ctx, workspaceID, viewerID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Template), args.Error(1)
}

func (m *mockTemplateStore) Create(ctx context.Context, t *models.Template) error {
	args := m.Called(ctx, t)
	if args.Error(0) == nil {
		t.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *mockTemplateStore) Update(ctx context.Context, workspaceID, id uuid.UUID, upd repository.TemplateUpdate) (*models.Template, error) {
	args := m.Called(ctx, workspaceID, id, upd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Template), args.Error(1)
}

func (m *mockTemplateStore) Delete(ctx context.Context, workspaceID, id uuid.UUID) error {
	args := m.Called(ctx, workspaceID, id)
	return args.Error(0)
}

func (m *mockTemplateStore) RecordUse(ctx context.Context, workspaceID, id uuid.UUID) error {
	args := m.Called(ctx, workspaceID, id)
	return args.Error(0)
}

func (m *mockTemplateStore) AddFavorite(ctx context.Context, userID, templateID uuid.UUID) error {
	args := m.Called(ctx, userID, templateID)
	return args.Error(0)
}

func (m *mockTemplateStore) RemoveFavorite(ctx context.Context, userID, templateID uuid.UUID) error {
	args := m.Called(ctx, userID, templateID)
	return args.Error(0)
}

func (m *mockTemplateStore) CreateCollection(ctx context.Context, c *models.TemplateCollection) error {
	args := m.Called(ctx, c)
	if args.Error(0) == nil {
		c.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *mockTemplateStore) ListCollections(ctx context.Context, workspaceID uuid.UUID) ([]models.TemplateCollection, error) {
	args := m.Called(ctx, workspaceID)
	return args.Get(0).([]models.TemplateCollection), args.Error(1)
}

func (m *mockTemplateStore) GetCollectionByID(ctx context.Context, workspaceID, id uuid.UUID) (*models.TemplateCollection, error) {
	args := m.Called(ctx, workspaceID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TemplateCollection), args.Error(1)
}

func (m *mockTemplateStore) DeleteCollection(ctx context.Context, workspaceID, id uuid.UUID) error {
	args := m.Called(ctx, workspaceID, id)
	return args.Error(0)
}

func (m *mockTemplateStore) AddToCollection(ctx context.Context, collectionID, templateID uuid.UUID) error {
	args := m.Called(ctx, collectionID, templateID)
	return args.Error(0)
}

func (m *mockTemplateStore) RemoveFromCollection(ctx context.Context, collectionID, templateID uuid.UUID) error {
	args := m.Called(ctx, collectionID, templateID)
	return args.Error(0)
}

func (m *mockTemplateStore) GetWorkspaceTemplateStats(ctx context.Context, workspaceID uuid.UUID) (map[string]int, error) {
	args := m.Called(ctx, workspaceID)
	return args.Get(0).(map[string]int), args.Error(1)
}

func (m *mockTemplateStore) UpsertPerformance(ctx context.Context, p *models.TemplatePerformance) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func TestTemplateService_CreateTemplate_Defaults(t *testing.T) {
	store := new(mockTemplateStore)
	svc := NewTemplateService(store)
	ctx := context.Background()

	store.On("Create", ctx, mock.AnythingOfType("*models.Template")).Return(nil)

	tmpl, err := svc.CreateTemplate(ctx, uuid.New(), uuid.New(), CreateTemplateInput{
		Name:        "Холодное письмо",
		SubjectLine: "Быстрый вопрос",
		BodyHTML:    "<p>Здравствуйте!</p>",
	})

	assert.NoError(t, err)
	assert.NotNil(t, tmpl)
	assert.Equal(t, models.DefaultTemplateLanguage, tmpl.Language)
	assert.Equal(t, models.TemplateStatusDraft, tmpl.Status)
	assert.Equal(t, models.AccessLevelPersonal, tmpl.AccessLevel)
	assert.NotNil(t, tmpl.Tags)
	assert.Len(t, tmpl.Tags, 0)
}

func TestTemplateService_CreateTemplate_MissingName(t *testing.T) {
	store := new(mockTemplateStore)
	svc := NewTemplateService(store)

	_, err := svc.CreateTemplate(context.Background(), uuid.New(), uuid.New(), CreateTemplateInput{
		SubjectLine: "Тема",
		BodyHTML:    "Тело",
	})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "название шаблона")
	store.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestTemplateService_CreateTemplate_InvalidStatus(t *testing.T) {
	store := new(mockTemplateStore)
	svc := NewTemplateService(store)

	_, err := svc.CreateTemplate(context.Background(), uuid.New(), uuid.New(), CreateTemplateInput{
		Name:        "Шаблон",
		SubjectLine: "Тема",
		BodyHTML:    "Тело",
		Status:      "published",
	})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "недопустимое значение")
}

func TestTemplateService_UpdateTemplate_StatusTransitionsUngated(t *testing.T) {
	store := new(mockTemplateStore)
	svc := NewTemplateService(store)
	ctx := context.Background()

	workspaceID := uuid.New()
	templateID := uuid.New()
	status := models.TemplateStatusDraft

	// Из archived можно вернуться сразу в draft, переходы не ограничены.
	store.On("Update", ctx, workspaceID, templateID, mock.AnythingOfType("repository.TemplateUpdate")).
		Return(&models.Template{ID: templateID, Status: status}, nil)

	tmpl, err := svc.UpdateTemplate(ctx, workspaceID, templateID, repository.TemplateUpdate{Status: &status})

	assert.NoError(t, err)
	assert.Equal(t, models.TemplateStatusDraft, tmpl.Status)
}

func TestTemplateService_UpdateTemplate_EmptyUpdatePassthrough(t *testing.T) {
	store := new(mockTemplateStore)
	svc := NewTemplateService(store)
	ctx := context.Background()

	workspaceID := uuid.New()
	templateID := uuid.New()

	store.On("Update", ctx, workspaceID, templateID, mock.AnythingOfType("repository.TemplateUpdate")).
		Return(nil, common.ErrNoFieldsToUpdate)

	_, err := svc.UpdateTemplate(ctx, workspaceID, templateID, repository.TemplateUpdate{})

	assert.ErrorIs(t, err, common.ErrNoFieldsToUpdate)
}

func TestTemplateService_AddFavorite_ChecksWorkspace(t *testing.T) {
	store := new(mockTemplateStore)
	svc := NewTemplateService(store)
	ctx := context.Background()

	workspaceID := uuid.New()
	userID := uuid.New()
	templateID := uuid.New()

	store.On("GetByID", ctx, workspaceID, userID, templateID).Return(nil, repository.ErrTemplateNotFound)

	err := svc.AddFavorite(ctx, workspaceID, userID, templateID)

	assert.ErrorIs(t, err, repository.ErrTemplateNotFound)
	store.AssertNotCalled(t, "AddFavorite", mock.Anything, mock.Anything, mock.Anything)
}

func TestTemplateService_RemoveFavorite_NoopWhenAbsent(t *testing.T) {
	store := new(mockTemplateStore)
	svc := NewTemplateService(store)
	ctx := context.Background()

	userID := uuid.New()
	templateID := uuid.New()

	store.On("RemoveFavorite", ctx, userID, templateID).Return(nil)

	assert.NoError(t, svc.RemoveFavorite(ctx, userID, templateID))
}

func TestTemplateService_RecordPerformance_NegativeCounters(t *testing.T) {
	store := new(mockTemplateStore)
	svc := NewTemplateService(store)

	err := svc.RecordPerformance(context.Background(), uuid.New(), uuid.New(), &models.TemplatePerformance{
		TemplateID: uuid.New(),
		Sends:      -1,
	})

	assert.Error(t, err)
	store.AssertNotCalled(t, "UpsertPerformance", mock.Anything, mock.Anything)
}

func TestTemplateService_ListTemplates_InvalidReplyRateRange(t *testing.T) {
	store := new(mockTemplateStore)
	svc := NewTemplateService(store)

	min := 0.8
	max := 0.2
	_, err := svc.ListTemplates(context.Background(), uuid.New(), uuid.New(), repository.TemplateListParams{
		ReplyRateMin: &min,
		ReplyRateMax: &max,
	})

	assert.Error(t, err)
	store.AssertNotCalled(t, "List", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
