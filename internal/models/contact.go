package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx/types"
	"github.com/lib/pq"
)

// Contact описывает человека, с которым ведётся переписка.
type Contact struct {
	ID           uuid.UUID      `db:"id" json:"id"`
	WorkspaceID  uuid.UUID      `db:"workspace_id" json:"workspace_id"`
	AccountID    *uuid.UUID     `db:"account_id" json:"account_id,omitempty"`
	OwnerID      uuid.UUID      `db:"owner_id" json:"owner_id"`
	FirstName    string         `db:"first_name" json:"first_name"`
	LastName     string         `db:"last_name" json:"last_name"`
	Email        string         `db:"email" json:"email"`
	Title        *string        `db:"title" json:"title,omitempty"`
	Phone        *string        `db:"phone" json:"phone,omitempty"`
	Status       string         `db:"status" json:"status"`
	Tags         pq.StringArray `db:"tags" json:"tags"`
	CustomFields types.JSONText `db:"custom_fields" json:"custom_fields,omitempty"`
	CreatedAt    time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at" json:"updated_at"`
}

// Account описывает компанию, объединяющую контакты.
type Account struct {
	ID          uuid.UUID `db:"id" json:"id"`
	WorkspaceID uuid.UUID `db:"workspace_id" json:"workspace_id"`
	CreatedBy   uuid.UUID `db:"created_by" json:"created_by"`
	Name        string    `db:"name" json:"name"`
	Domain      *string   `db:"domain" json:"domain,omitempty"`
	Industry    *string   `db:"industry" json:"industry,omitempty"`
	CompanySize *string   `db:"company_size" json:"company_size,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}
