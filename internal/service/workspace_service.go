package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/reachbase/reachbase-backend/internal/models"
	"github.com/reachbase/reachbase-backend/internal/repository"
)

// WorkspaceService отдаёт профиль пользователя и состав воркспейса.
type WorkspaceService struct {
	users *repository.UserRepository
}

// NewWorkspaceService создаёт сервис.
func NewWorkspaceService(users *repository.UserRepository) *WorkspaceService {
	return &WorkspaceService{users: users}
}

// GetProfile возвращает текущего пользователя.
func (s *WorkspaceService) GetProfile(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	return s.users.GetByID(ctx, userID)
}

// GetWorkspace возвращает воркспейс.
func (s *WorkspaceService) GetWorkspace(ctx context.Context, workspaceID uuid.UUID) (*models.Workspace, error) {
	return s.users.GetWorkspace(ctx, workspaceID)
}

// ListMembers возвращает активных пользователей воркспейса.
func (s *WorkspaceService) ListMembers(ctx context.Context, workspaceID uuid.UUID) ([]models.User, error) {
	return s.users.ListWorkspaceMembers(ctx, workspaceID)
}
