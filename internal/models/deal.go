package models

import (
	"time"

	"github.com/google/uuid"
)

// Deal описывает сделку в пайплайне продаж.
type Deal struct {
	ID              uuid.UUID  `db:"id" json:"id"`
	WorkspaceID     uuid.UUID  `db:"workspace_id" json:"workspace_id"`
	OwnerID         uuid.UUID  `db:"owner_id" json:"owner_id"`
	ContactID       *uuid.UUID `db:"contact_id" json:"contact_id,omitempty"`
	AccountID       *uuid.UUID `db:"account_id" json:"account_id,omitempty"`
	Name            string     `db:"name" json:"name"`
	Stage           string     `db:"stage" json:"stage"`
	Amount          *float64   `db:"amount" json:"amount,omitempty"`
	ExpectedCloseAt *time.Time `db:"expected_close_at" json:"expected_close_at,omitempty"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updated_at"`
}

// StageSummary — агрегат по одной стадии пайплайна.
type StageSummary struct {
	Stage  string  `db:"stage" json:"stage"`
	Count  int     `db:"count" json:"count"`
	Amount float64 `db:"amount" json:"amount"`
}
