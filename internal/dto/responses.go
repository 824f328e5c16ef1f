package dto

import (
	"github.com/reachbase/reachbase-backend/internal/models"
	"github.com/reachbase/reachbase-backend/internal/service"
)

// ErrorResponse — стандартный ответ с ошибкой.
type ErrorResponse struct {
	Error string `json:"error"`
}

// SuccessResponse — стандартный успешный ответ.
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// AuthResponse — ответ на регистрацию и вход.
type AuthResponse struct {
	User      *models.User       `json:"user"`
	Workspace *models.Workspace  `json:"workspace,omitempty"`
	Tokens    *service.TokenPair `json:"tokens"`
}

// PipelineSummaryResponse — сводка воронки сделок.
type PipelineSummaryResponse struct {
	Stages []models.StageSummary `json:"stages"`
}
