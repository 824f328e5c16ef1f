package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/reachbase/reachbase-backend/internal/http/handlers/common"
	"github.com/reachbase/reachbase-backend/internal/service"
)

// WorkspaceHandler отдаёт профиль пользователя и данные воркспейса.
type WorkspaceHandler struct {
	workspace *service.WorkspaceService
}

// NewWorkspaceHandler создаёт хэндлер.
func NewWorkspaceHandler(workspace *service.WorkspaceService) *WorkspaceHandler {
	return &WorkspaceHandler{workspace: workspace}
}

// Me обрабатывает GET /me.
func (h *WorkspaceHandler) Me(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	user, err := h.workspace.GetProfile(c.Request.Context(), userID)
	if err != nil {
		c.Error(err)
		return
	}

	common.RespondJSON(c, http.StatusOK, user)
}

// Get обрабатывает GET /workspace.
func (h *WorkspaceHandler) Get(c *gin.Context) {
	workspaceID, err := common.CurrentWorkspaceID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	ws, err := h.workspace.GetWorkspace(c.Request.Context(), workspaceID)
	if err != nil {
		c.Error(err)
		return
	}

	common.RespondJSON(c, http.StatusOK, ws)
}

// ListMembers обрабатывает GET /workspace/members.
func (h *WorkspaceHandler) ListMembers(c *gin.Context) {
	workspaceID, err := common.CurrentWorkspaceID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	members, err := h.workspace.ListMembers(c.Request.Context(), workspaceID)
	if err != nil {
		c.Error(err)
		return
	}

	common.RespondJSON(c, http.StatusOK, members)
}
