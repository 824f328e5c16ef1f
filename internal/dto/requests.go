package dto

import (
	"encoding/json"

	"github.com/google/uuid"
)

// RegisterRequest — тело запроса регистрации.
type RegisterRequest struct {
	Email         string `json:"email" binding:"required,email"`
	Password      string `json:"password" binding:"required"`
	FullName      string `json:"full_name" binding:"required"`
	WorkspaceName string `json:"workspace_name"`
}

// LoginRequest — тело запроса входа.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest — тело запроса обновления токенов.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// CreateTemplateRequest — тело запроса создания шаблона.
type CreateTemplateRequest struct {
	Name         string          `json:"name" binding:"required"`
	SubjectLine  string          `json:"subject_line" binding:"required"`
	BodyHTML     string          `json:"body_html" binding:"required"`
	BodyText     *string         `json:"body_text"`
	Category     *string         `json:"category"`
	Persona      *string         `json:"persona"`
	Industry     *string         `json:"industry"`
	CompanySize  *string         `json:"company_size"`
	SalesStage   *string         `json:"sales_stage"`
	Tone         *string         `json:"tone"`
	Language     string          `json:"language"`
	Status       string          `json:"status"`
	AccessLevel  string          `json:"access_level"`
	Tags         []string        `json:"tags"`
	CustomFields json.RawMessage `json:"custom_fields"`
}

// UpdateTemplateRequest — тело частичного обновления шаблона.
// Отсутствующие поля не изменяются.
type UpdateTemplateRequest struct {
	Name         *string         `json:"name"`
	SubjectLine  *string         `json:"subject_line"`
	BodyHTML     *string         `json:"body_html"`
	BodyText     *string         `json:"body_text"`
	Category     *string         `json:"category"`
	Persona      *string         `json:"persona"`
	Industry     *string         `json:"industry"`
	CompanySize  *string         `json:"company_size"`
	SalesStage   *string         `json:"sales_stage"`
	Tone         *string         `json:"tone"`
	Language     *string         `json:"language"`
	Status       *string         `json:"status"`
	AccessLevel  *string         `json:"access_level"`
	Tags         *[]string       `json:"tags"`
	CustomFields json.RawMessage `json:"custom_fields"`
}

// RecordPerformanceRequest — тело запроса обновления агрегатов рассылки.
type RecordPerformanceRequest struct {
	Sends   int `json:"sends" binding:"min=0"`
	Opens   int `json:"opens" binding:"min=0"`
	Clicks  int `json:"clicks" binding:"min=0"`
	Replies int `json:"replies" binding:"min=0"`
}

// CreateCollectionRequest — тело запроса создания подборки.
type CreateCollectionRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description *string `json:"description"`
}

// CreateContactRequest — тело запроса создания контакта.
type CreateContactRequest struct {
	AccountID    *uuid.UUID      `json:"account_id"`
	FirstName    string          `json:"first_name" binding:"required"`
	LastName     string          `json:"last_name" binding:"required"`
	Email        string          `json:"email" binding:"required"`
	Title        *string         `json:"title"`
	Phone        *string         `json:"phone"`
	Status       string          `json:"status"`
	Tags         []string        `json:"tags"`
	CustomFields json.RawMessage `json:"custom_fields"`
}

// UpdateContactRequest — тело частичного обновления контакта.
type UpdateContactRequest struct {
	AccountID    *uuid.UUID      `json:"account_id"`
	FirstName    *string         `json:"first_name"`
	LastName     *string         `json:"last_name"`
	Email        *string         `json:"email"`
	Title        *string         `json:"title"`
	Phone        *string         `json:"phone"`
	Status       *string         `json:"status"`
	Tags         *[]string       `json:"tags"`
	CustomFields json.RawMessage `json:"custom_fields"`
}

// CreateAccountRequest — тело запроса создания компании.
type CreateAccountRequest struct {
	Name        string  `json:"name" binding:"required"`
	Domain      *string `json:"domain"`
	Industry    *string `json:"industry"`
	CompanySize *string `json:"company_size"`
}

// UpdateAccountRequest — тело частичного обновления компании.
type UpdateAccountRequest struct {
	Name        *string `json:"name"`
	Domain      *string `json:"domain"`
	Industry    *string `json:"industry"`
	CompanySize *string `json:"company_size"`
}

// SequenceStepRequest — один шаг последовательности.
type SequenceStepRequest struct {
	TemplateID uuid.UUID `json:"template_id" binding:"required"`
	StepNumber int       `json:"step_number" binding:"required,min=1"`
	DelayDays  int       `json:"delay_days" binding:"min=0"`
}

// CreateSequenceRequest — тело запроса создания последовательности.
type CreateSequenceRequest struct {
	Name            string                `json:"name" binding:"required"`
	MaxEmailsPerDay int                   `json:"max_emails_per_day"`
	Steps           []SequenceStepRequest `json:"steps"`
}

// UpdateSequenceRequest — тело частичного обновления последовательности.
// Steps == null означает «шаги не трогать», непустой массив заменяет их целиком.
type UpdateSequenceRequest struct {
	Name            *string                `json:"name"`
	Status          *string                `json:"status"`
	MaxEmailsPerDay *int                   `json:"max_emails_per_day"`
	Steps           *[]SequenceStepRequest `json:"steps"`
}

// EnrollContactRequest — тело запроса добавления контакта в последовательность.
type EnrollContactRequest struct {
	ContactID uuid.UUID `json:"contact_id" binding:"required"`
}

// CreateDealRequest — тело запроса создания сделки.
type CreateDealRequest struct {
	Name            string     `json:"name" binding:"required"`
	Stage           string     `json:"stage"`
	Amount          *float64   `json:"amount"`
	ContactID       *uuid.UUID `json:"contact_id"`
	AccountID       *uuid.UUID `json:"account_id"`
	ExpectedCloseAt *string    `json:"expected_close_at"`
}

// UpdateDealRequest — тело частичного обновления сделки.
type UpdateDealRequest struct {
	Name            *string    `json:"name"`
	Stage           *string    `json:"stage"`
	Amount          *float64   `json:"amount"`
	ContactID       *uuid.UUID `json:"contact_id"`
	AccountID       *uuid.UUID `json:"account_id"`
	ExpectedCloseAt *string    `json:"expected_close_at"`
}
