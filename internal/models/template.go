package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx/types"
	"github.com/lib/pq"
)

// Template описывает email-шаблон воркспейса.
// Поля Performance и IsFavorite заполняются репозиторием при обогащении выборки,
// в таблице templates их нет.
type Template struct {
	ID           uuid.UUID      `db:"id" json:"id"`
	WorkspaceID  uuid.UUID      `db:"workspace_id" json:"workspace_id"`
	CreatedBy    uuid.UUID      `db:"created_by" json:"created_by"`
	Name         string         `db:"name" json:"name"`
	SubjectLine  string         `db:"subject_line" json:"subject_line"`
	BodyHTML     string         `db:"body_html" json:"body_html"`
	BodyText     *string        `db:"body_text" json:"body_text,omitempty"`
	Category     *string        `db:"category" json:"category,omitempty"`
	Persona      *string        `db:"persona" json:"persona,omitempty"`
	Industry     *string        `db:"industry" json:"industry,omitempty"`
	CompanySize  *string        `db:"company_size" json:"company_size,omitempty"`
	SalesStage   *string        `db:"sales_stage" json:"sales_stage,omitempty"`
	Tone         *string        `db:"tone" json:"tone,omitempty"`
	Language     string         `db:"language" json:"language"`
	Status       string         `db:"status" json:"status"`
	AccessLevel  string         `db:"access_level" json:"access_level"`
	Tags         pq.StringArray `db:"tags" json:"tags"`
	CustomFields types.JSONText `db:"custom_fields" json:"custom_fields,omitempty"`
	UseCount     int            `db:"use_count" json:"use_count"`
	LastUsedAt   *time.Time     `db:"last_used_at" json:"last_used_at,omitempty"`
	CreatedAt    time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at" json:"updated_at"`

	Performance *TemplatePerformance `db:"-" json:"performance,omitempty"`
	IsFavorite  bool                 `db:"-" json:"is_favorite"`
}

// TemplatePerformance хранит агрегированные метрики шаблона.
// Считается внешним сборщиком событий, отсюда данные только читаются.
type TemplatePerformance struct {
	TemplateID uuid.UUID `db:"template_id" json:"template_id"`
	Sends      int       `db:"sends" json:"sends"`
	Opens      int       `db:"opens" json:"opens"`
	Clicks     int       `db:"clicks" json:"clicks"`
	Replies    int       `db:"replies" json:"replies"`
	OpenRate   float64   `db:"open_rate" json:"open_rate"`
	ClickRate  float64   `db:"click_rate" json:"click_rate"`
	ReplyRate  float64   `db:"reply_rate" json:"reply_rate"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// TemplateFavorite — пара (пользователь, шаблон); само существование строки означает "в избранном".
type TemplateFavorite struct {
	UserID     uuid.UUID `db:"user_id" json:"user_id"`
	TemplateID uuid.UUID `db:"template_id" json:"template_id"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// TemplateCollection — именованная подборка шаблонов внутри воркспейса.
type TemplateCollection struct {
	ID          uuid.UUID `db:"id" json:"id"`
	WorkspaceID uuid.UUID `db:"workspace_id" json:"workspace_id"`
	CreatedBy   uuid.UUID `db:"created_by" json:"created_by"`
	Name        string    `db:"name" json:"name"`
	Description *string   `db:"description" json:"description,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// TemplateCollectionItem — членство шаблона в подборке.
type TemplateCollectionItem struct {
	CollectionID uuid.UUID `db:"collection_id" json:"collection_id"`
	TemplateID   uuid.UUID `db:"template_id" json:"template_id"`
	AddedAt      time.Time `db:"added_at" json:"added_at"`
}
