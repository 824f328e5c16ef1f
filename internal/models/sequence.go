package models

import (
	"time"

	"github.com/google/uuid"
)

// Sequence описывает цепочку писем с упорядоченными шагами.
type Sequence struct {
	ID              uuid.UUID `db:"id" json:"id"`
	WorkspaceID     uuid.UUID `db:"workspace_id" json:"workspace_id"`
	CreatedBy       uuid.UUID `db:"created_by" json:"created_by"`
	Name            string    `db:"name" json:"name"`
	Description     *string   `db:"description" json:"description,omitempty"`
	Status          string    `db:"status" json:"status"`
	MaxEmailsPerDay int       `db:"max_emails_per_day" json:"max_emails_per_day"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`

	Steps []SequenceStep `db:"-" json:"steps,omitempty"`
}

// SequenceStep — один шаг цепочки: какой шаблон отправить и через сколько дней.
type SequenceStep struct {
	ID         uuid.UUID `db:"id" json:"id"`
	SequenceID uuid.UUID `db:"sequence_id" json:"sequence_id"`
	TemplateID uuid.UUID `db:"template_id" json:"template_id"`
	StepNumber int       `db:"step_number" json:"step_number"`
	DelayDays  int       `db:"delay_days" json:"delay_days"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// SequenceEnrollment — участие контакта в цепочке.
type SequenceEnrollment struct {
	ID          uuid.UUID `db:"id" json:"id"`
	SequenceID  uuid.UUID `db:"sequence_id" json:"sequence_id"`
	ContactID   uuid.UUID `db:"contact_id" json:"contact_id"`
	EnrolledBy  uuid.UUID `db:"enrolled_by" json:"enrolled_by"`
	Status      string    `db:"status" json:"status"`
	CurrentStep int       `db:"current_step" json:"current_step"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}
