package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx/types"

	"github.com/reachbase/reachbase-backend/internal/dto"
	"github.com/reachbase/reachbase-backend/internal/http/handlers/common"
	"github.com/reachbase/reachbase-backend/internal/models"
	"github.com/reachbase/reachbase-backend/internal/repository"
	"github.com/reachbase/reachbase-backend/internal/service"
)

// TemplateHandler предоставляет HTTP слой для библиотеки шаблонов.
type TemplateHandler struct {
	templates *service.TemplateService
}

// NewTemplateHandler создаёт хэндлер.
func NewTemplateHandler(templates *service.TemplateService) *TemplateHandler {
	return &TemplateHandler{templates: templates}
}

// List обрабатывает GET /templates.
func (h *TemplateHandler) List(c *gin.Context) {
	workspaceID, err := common.CurrentWorkspaceID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	page, limit := common.GetPageLimit(c)

	params := repository.TemplateListParams{
		Search:      c.Query("search"),
		Category:    c.Query("category"),
		Persona:     c.Query("persona"),
		Industry:    c.Query("industry"),
		CompanySize: c.Query("company_size"),
		SalesStage:  c.Query("sales_stage"),
		Tone:        c.Query("tone"),
		Status:      c.Query("status"),
		AccessLevel: c.Query("access_level"),
		SortBy:      c.Query("sort_by"),
		SortOrder:   c.Query("sort_order"),
		Page:        page,
		Limit:       limit,
	}

	if tags := c.Query("tags"); tags != "" {
		params.Tags = strings.Split(tags, ",")
	}
	params.FavoriteOnly = c.Query("favorites") == "true"

	if params.ReplyRateMin, err = common.ParseFloatQuery(c, "reply_rate_min"); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}
	if params.ReplyRateMax, err = common.ParseFloatQuery(c, "reply_rate_max"); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}
	if params.CollectionID, err = common.ParseUUIDQuery(c, "collection_id"); err != nil {
		common.RespondBadRequest(c, "collection_id должен быть валидным UUID")
		return
	}

	result, err := h.templates.ListTemplates(c.Request.Context(), workspaceID, userID, params)
	if err != nil {
		c.Error(err)
		return
	}

	common.RespondJSON(c, http.StatusOK, result)
}

// Get обрабатывает GET /templates/:id.
func (h *TemplateHandler) Get(c *gin.Context) {
	workspaceID, err := common.CurrentWorkspaceID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}
	userID, _ := common.CurrentUserID(c)

	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	tmpl, err := h.templates.GetTemplate(c.Request.Context(), workspaceID, userID, id)
	if err != nil {
		c.Error(err)
		return
	}

	common.RespondJSON(c, http.StatusOK, tmpl)
}

// Create обрабатывает POST /templates.
func (h *TemplateHandler) Create(c *gin.Context) {
	workspaceID, err := common.CurrentWorkspaceID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}
	userID, _ := common.CurrentUserID(c)

	var req dto.CreateTemplateRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	tmpl, err := h.templates.CreateTemplate(c.Request.Context(), workspaceID, userID, service.CreateTemplateInput{
		Name:         req.Name,
		SubjectLine:  req.SubjectLine,
		BodyHTML:     req.BodyHTML,
		BodyText:     req.BodyText,
		Category:     req.Category,
		Persona:      req.Persona,
		Industry:     req.Industry,
		CompanySize:  req.CompanySize,
		SalesStage:   req.SalesStage,
		Tone:         req.Tone,
		Language:     req.Language,
		Status:       req.Status,
		AccessLevel:  req.AccessLevel,
		Tags:         req.Tags,
		CustomFields: types.JSONText(req.CustomFields),
	})
	if err != nil {
		c.Error(err)
		return
	}

	common.RespondJSON(c, http.StatusCreated, tmpl)
}

// Update обрабатывает PATCH /templates/:id.
func (h *TemplateHandler) Update(c *gin.Context) {
	workspaceID, err := common.CurrentWorkspaceID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req dto.UpdateTemplateRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	tmpl, err := h.templates.UpdateTemplate(c.Request.Context(), workspaceID, id, repository.TemplateUpdate{
		Name:         req.Name,
		SubjectLine:  req.SubjectLine,
		BodyHTML:     req.BodyHTML,
		BodyText:     req.BodyText,
		Category:     req.Category,
		Persona:      req.Persona,
		Industry:     req.Industry,
		CompanySize:  req.CompanySize,
		SalesStage:   req.SalesStage,
		Tone:         req.Tone,
		Language:     req.Language,
		Status:       req.Status,
		AccessLevel:  req.AccessLevel,
		Tags:         req.Tags,
		CustomFields: types.JSONText(req.CustomFields),
	})
	if err != nil {
		c.Error(err)
		return
	}

	common.RespondJSON(c, http.StatusOK, tmpl)
}

// Delete обрабатывает DELETE /templates/:id.
func (h *TemplateHandler) Delete(c *gin.Context) {
	workspaceID, err := common.CurrentWorkspaceID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	if err := h.templates.DeleteTemplate(c.Request.Context(), workspaceID, id); err != nil {
		c.Error(err)
		return
	}

	common.RespondSuccess(c, http.StatusOK, "шаблон удалён", nil)
}

// RecordUse обрабатывает POST /templates/:id/use.
func (h *TemplateHandler) RecordUse(c *gin.Context) {
	workspaceID, err := common.CurrentWorkspaceID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	if err := h.templates.RecordTemplateUse(c.Request.Context(), workspaceID, id); err != nil {
		c.Error(err)
		return
	}

	common.RespondSuccess(c, http.StatusOK, "использование учтено", nil)
}

// RecordPerformance обрабатывает PUT /templates/:id/performance.
func (h *TemplateHandler) RecordPerformance(c *gin.Context) {
	workspaceID, err := common.CurrentWorkspaceID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}
	userID, _ := common.CurrentUserID(c)

	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req dto.RecordPerformanceRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	perf := &models.TemplatePerformance{
		TemplateID: id,
		Sends:      req.Sends,
		Opens:      req.Opens,
		Clicks:     req.Clicks,
		Replies:    req.Replies,
	}
	if err := h.templates.RecordPerformance(c.Request.Context(), workspaceID, userID, perf); err != nil {
		c.Error(err)
		return
	}

	common.RespondJSON(c, http.StatusOK, perf)
}

// AddFavorite обрабатывает POST /templates/:id/favorite.
func (h *TemplateHandler) AddFavorite(c *gin.Context) {
	workspaceID, err := common.CurrentWorkspaceID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}
	userID, _ := common.CurrentUserID(c)

	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	if err := h.templates.AddFavorite(c.Request.Context(), workspaceID, userID, id); err != nil {
		c.Error(err)
		return
	}

	common.RespondSuccess(c, http.StatusOK, "шаблон добавлен в избранное", nil)
}

// RemoveFavorite обрабатывает DELETE /templates/:id/favorite.
func (h *TemplateHandler) RemoveFavorite(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	if err := h.templates.RemoveFavorite(c.Request.Context(), userID, id); err != nil {
		c.Error(err)
		return
	}

	common.RespondSuccess(c, http.StatusOK, "шаблон убран из избранного", nil)
}

// CreateCollection обрабатывает POST /collections.
func (h *TemplateHandler) CreateCollection(c *gin.Context) {
	workspaceID, err := common.CurrentWorkspaceID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}
	userID, _ := common.CurrentUserID(c)

	var req dto.CreateCollectionRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	col, err := h.templates.CreateCollection(c.Request.Context(), workspaceID, userID, req.Name, req.Description)
	if err != nil {
		c.Error(err)
		return
	}

	common.RespondJSON(c, http.StatusCreated, col)
}

// ListCollections обрабатывает GET /collections.
func (h *TemplateHandler) ListCollections(c *gin.Context) {
	workspaceID, err := common.CurrentWorkspaceID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	cols, err := h.templates.ListCollections(c.Request.Context(), workspaceID)
	if err != nil {
		c.Error(err)
		return
	}

	common.RespondJSON(c, http.StatusOK, cols)
}

// DeleteCollection обрабатывает DELETE /collections/:id.
func (h *TemplateHandler) DeleteCollection(c *gin.Context) {
	workspaceID, err := common.CurrentWorkspaceID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	if err := h.templates.DeleteCollection(c.Request.Context(), workspaceID, id); err != nil {
		c.Error(err)
		return
	}

	common.RespondSuccess(c, http.StatusOK, "подборка удалена", nil)
}

// AddToCollection обрабатывает POST /collections/:id/templates/:templateId.
func (h *TemplateHandler) AddToCollection(c *gin.Context) {
	workspaceID, err := common.CurrentWorkspaceID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}
	userID, _ := common.CurrentUserID(c)

	collectionID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}
	templateID, err := common.ParseUUIDParam(c, "templateId")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	if err := h.templates.AddToCollection(c.Request.Context(), workspaceID, userID, collectionID, templateID); err != nil {
		c.Error(err)
		return
	}

	common.RespondSuccess(c, http.StatusOK, "шаблон добавлен в подборку", nil)
}

// RemoveFromCollection обрабатывает DELETE /collections/:id/templates/:templateId.
func (h *TemplateHandler) RemoveFromCollection(c *gin.Context) {
	workspaceID, err := common.CurrentWorkspaceID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	collectionID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}
	templateID, err := common.ParseUUIDParam(c, "templateId")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	if err := h.templates.RemoveFromCollection(c.Request.Context(), workspaceID, collectionID, templateID); err != nil {
		c.Error(err)
		return
	}

	common.RespondSuccess(c, http.StatusOK, "шаблон убран из подборки", nil)
}
