package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx/types"
	"github.com/lib/pq"

	"github.com/reachbase/reachbase-backend/internal/metrics"
	"github.com/reachbase/reachbase-backend/internal/models"
	"github.com/reachbase/reachbase-backend/internal/repository"
	"github.com/reachbase/reachbase-backend/internal/validation"
)

// TemplateStore описывает зависимости TemplateService от слоя хранилища.
type TemplateStore interface {
	List(ctx context.Context, workspaceID, viewerID uuid.UUID, p repository.TemplateListParams) (*repository.TemplateListResult, error)
	GetByID(ctx context.Context, workspaceID, viewerID, id uuid.UUID) (*models.Template, error)
	Create(ctx context.Context, t *models.Template) error
	Update(ctx context.Context, workspaceID, id uuid.UUID, upd repository.TemplateUpdate) (*models.Template, error)
	Delete(ctx context.Context, workspaceID, id uuid.UUID) error
	RecordUse(ctx context.Context, workspaceID, id uuid.UUID) error
	AddFavorite(ctx context.Context, userID, templateID uuid.UUID) error
	RemoveFavorite(ctx context.Context, userID, templateID uuid.UUID) error
	CreateCollection(ctx context.Context, c *models.TemplateCollection) error
	ListCollections(ctx context.Context, workspaceID uuid.UUID) ([]models.TemplateCollection, error)
	GetCollectionByID(ctx context.Context, workspaceID, id uuid.UUID) (*models.TemplateCollection, error)
	DeleteCollection(ctx context.Context, workspaceID, id uuid.UUID) error
	AddToCollection(ctx context.Context, collectionID, templateID uuid.UUID) error
	RemoveFromCollection(ctx context.Context, collectionID, templateID uuid.UUID) error
	GetWorkspaceTemplateStats(ctx context.Context, workspaceID uuid.UUID) (map[string]int, error)
	UpsertPerformance(ctx context.Context, p *models.TemplatePerformance) error
}

// TemplateService инкапсулирует бизнес-логику библиотеки шаблонов.
type TemplateService struct {
	store TemplateStore
}

// NewTemplateService создаёт сервис шаблонов.
func NewTemplateService(store TemplateStore) *TemplateService {
	return &TemplateService{store: store}
}

// CreateTemplateInput содержит данные нового шаблона.
type CreateTemplateInput struct {
	Name         string
	SubjectLine  string
	BodyHTML     string
	BodyText     *string
	Category     *string
	Persona      *string
	Industry     *string
	CompanySize  *string
	SalesStage   *string
	Tone         *string
	Language     string
	Status       string
	AccessLevel  string
	Tags         []string
	CustomFields types.JSONText
}

// ListTemplates возвращает страницу шаблонов с учётом фильтров просматривающего.
func (s *TemplateService) ListTemplates(ctx context.Context, workspaceID, viewerID uuid.UUID, p repository.TemplateListParams) (*repository.TemplateListResult, error) {
	if err := validation.ValidateReplyRateRange(p.ReplyRateMin, p.ReplyRateMax); err != nil {
		return nil, fmt.Errorf("template service: %w", err)
	}
	return s.store.List(ctx, workspaceID, viewerID, p)
}

// GetTemplate возвращает шаблон с показателями рассылки.
func (s *TemplateService) GetTemplate(ctx context.Context, workspaceID, viewerID, id uuid.UUID) (*models.Template, error) {
	return s.store.GetByID(ctx, workspaceID, viewerID, id)
}

// CreateTemplate создаёт шаблон с дефолтами для незаполненных полей.
func (s *TemplateService) CreateTemplate(ctx context.Context, workspaceID, createdBy uuid.UUID, in CreateTemplateInput) (*models.Template, error) {
	if err := validation.ValidateTemplateName(in.Name); err != nil {
		return nil, fmt.Errorf("template service: %w", err)
	}
	if err := validation.ValidateSubjectLine(in.SubjectLine); err != nil {
		return nil, fmt.Errorf("template service: %w", err)
	}
	if err := validation.ValidateTemplateBody(in.BodyHTML); err != nil {
		return nil, fmt.Errorf("template service: %w", err)
	}
	if err := validation.ValidateTags(in.Tags); err != nil {
		return nil, fmt.Errorf("template service: %w", err)
	}

	language := in.Language
	if language == "" {
		language = models.DefaultTemplateLanguage
	}
	status := in.Status
	if status == "" {
		status = models.TemplateStatusDraft
	}
	accessLevel := in.AccessLevel
	if accessLevel == "" {
		accessLevel = models.AccessLevelPersonal
	}

	if err := validation.ValidateEnum("статус", status, models.ValidTemplateStatuses); err != nil {
		return nil, fmt.Errorf("template service: %w", err)
	}
	if err := validation.ValidateEnum("уровень доступа", accessLevel, models.ValidAccessLevels); err != nil {
		return nil, fmt.Errorf("template service: %w", err)
	}

	tags := in.Tags
	if tags == nil {
		tags = []string{}
	}

	tmpl := &models.Template{
		WorkspaceID:  workspaceID,
		CreatedBy:    createdBy,
		Name:         in.Name,
		SubjectLine:  in.SubjectLine,
		BodyHTML:     in.BodyHTML,
		BodyText:     in.BodyText,
		Category:     in.Category,
		Persona:      in.Persona,
		Industry:     in.Industry,
		CompanySize:  in.CompanySize,
		SalesStage:   in.SalesStage,
		Tone:         in.Tone,
		Language:     language,
		Status:       status,
		AccessLevel:  accessLevel,
		Tags:         pq.StringArray(tags),
		CustomFields: in.CustomFields,
	}

	if err := s.store.Create(ctx, tmpl); err != nil {
		return nil, err
	}

	if m := metrics.Global(); m != nil {
		m.TemplatesCreatedTotal.Inc()
	}

	return tmpl, nil
}

// UpdateTemplate применяет частичное обновление шаблона.
func (s *TemplateService) UpdateTemplate(ctx context.Context, workspaceID, id uuid.UUID, upd repository.TemplateUpdate) (*models.Template, error) {
	if upd.Name != nil {
		if err := validation.ValidateTemplateName(*upd.Name); err != nil {
			return nil, fmt.Errorf("template service: %w", err)
		}
	}
	if upd.SubjectLine != nil {
		if err := validation.ValidateSubjectLine(*upd.SubjectLine); err != nil {
			return nil, fmt.Errorf("template service: %w", err)
		}
	}
	if upd.BodyHTML != nil {
		if err := validation.ValidateTemplateBody(*upd.BodyHTML); err != nil {
			return nil, fmt.Errorf("template service: %w", err)
		}
	}
	if upd.Status != nil {
		if err := validation.ValidateEnum("статус", *upd.Status, models.ValidTemplateStatuses); err != nil {
			return nil, fmt.Errorf("template service: %w", err)
		}
	}
	if upd.AccessLevel != nil {
		if err := validation.ValidateEnum("уровень доступа", *upd.AccessLevel, models.ValidAccessLevels); err != nil {
			return nil, fmt.Errorf("template service: %w", err)
		}
	}
	if upd.Tags != nil {
		if err := validation.ValidateTags(*upd.Tags); err != nil {
			return nil, fmt.Errorf("template service: %w", err)
		}
	}

	return s.store.Update(ctx, workspaceID, id, upd)
}

// DeleteTemplate удаляет шаблон.
func (s *TemplateService) DeleteTemplate(ctx context.Context, workspaceID, id uuid.UUID) error {
	return s.store.Delete(ctx, workspaceID, id)
}

// RecordTemplateUse фиксирует использование шаблона.
func (s *TemplateService) RecordTemplateUse(ctx context.Context, workspaceID, id uuid.UUID) error {
	if err := s.store.RecordUse(ctx, workspaceID, id); err != nil {
		return err
	}
	if m := metrics.Global(); m != nil {
		m.TemplateUsesTotal.Inc()
	}
	return nil
}

// AddFavorite добавляет шаблон в избранное. Повторное добавление не ошибка.
func (s *TemplateService) AddFavorite(ctx context.Context, workspaceID, userID, templateID uuid.UUID) error {
	// Проверяем, что шаблон принадлежит воркспейсу пользователя.
	if _, err := s.store.GetByID(ctx, workspaceID, userID, templateID); err != nil {
		return err
	}
	return s.store.AddFavorite(ctx, userID, templateID)
}

// RemoveFavorite убирает шаблон из избранного. Отсутствие записи не ошибка.
func (s *TemplateService) RemoveFavorite(ctx context.Context, userID, templateID uuid.UUID) error {
	return s.store.RemoveFavorite(ctx, userID, templateID)
}

// CreateCollection создаёт подборку шаблонов.
func (s *TemplateService) CreateCollection(ctx context.Context, workspaceID, createdBy uuid.UUID, name string, description *string) (*models.TemplateCollection, error) {
	if err := validation.ValidateNonEmpty("название подборки", name); err != nil {
		return nil, fmt.Errorf("template service: %w", err)
	}
	if err := validation.ValidateLength("название подборки", name, 1, validation.MaxCollectionNameLength); err != nil {
		return nil, fmt.Errorf("template service: %w", err)
	}

	col := &models.TemplateCollection{
		WorkspaceID: workspaceID,
		CreatedBy:   createdBy,
		Name:        name,
		Description: description,
	}
	if err := s.store.CreateCollection(ctx, col); err != nil {
		return nil, err
	}
	return col, nil
}

// ListCollections возвращает подборки воркспейса.
func (s *TemplateService) ListCollections(ctx context.Context, workspaceID uuid.UUID) ([]models.TemplateCollection, error) {
	return s.store.ListCollections(ctx, workspaceID)
}

// DeleteCollection удаляет подборку.
func (s *TemplateService) DeleteCollection(ctx context.Context, workspaceID, id uuid.UUID) error {
	return s.store.DeleteCollection(ctx, workspaceID, id)
}

// AddToCollection добавляет шаблон в подборку. Повторное добавление не ошибка.
func (s *TemplateService) AddToCollection(ctx context.Context, workspaceID, userID, collectionID, templateID uuid.UUID) error {
	if _, err := s.store.GetCollectionByID(ctx, workspaceID, collectionID); err != nil {
		return err
	}
	if _, err := s.store.GetByID(ctx, workspaceID, userID, templateID); err != nil {
		return err
	}
	return s.store.AddToCollection(ctx, collectionID, templateID)
}

// RemoveFromCollection убирает шаблон из подборки.
func (s *TemplateService) RemoveFromCollection(ctx context.Context, workspaceID, collectionID, templateID uuid.UUID) error {
	if _, err := s.store.GetCollectionByID(ctx, workspaceID, collectionID); err != nil {
		return err
	}
	return s.store.RemoveFromCollection(ctx, collectionID, templateID)
}

// GetWorkspaceStats возвращает сводку по шаблонам воркспейса.
func (s *TemplateService) GetWorkspaceStats(ctx context.Context, workspaceID uuid.UUID) (map[string]int, error) {
	return s.store.GetWorkspaceTemplateStats(ctx, workspaceID)
}

// RecordPerformance обновляет агрегаты рассылки шаблона.
func (s *TemplateService) RecordPerformance(ctx context.Context, workspaceID, viewerID uuid.UUID, p *models.TemplatePerformance) error {
	if p.Sends < 0 || p.Opens < 0 || p.Clicks < 0 || p.Replies < 0 {
		return fmt.Errorf("template service: %w", validation.Errorf("счётчики рассылки не могут быть отрицательными"))
	}
	if _, err := s.store.GetByID(ctx, workspaceID, viewerID, p.TemplateID); err != nil {
		return err
	}
	return s.store.UpsertPerformance(ctx, p)
}
