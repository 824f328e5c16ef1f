package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/reachbase/reachbase-backend/internal/dto"
	"github.com/reachbase/reachbase-backend/internal/http/handlers/common"
	"github.com/reachbase/reachbase-backend/internal/models"
	"github.com/reachbase/reachbase-backend/internal/repository"
	"github.com/reachbase/reachbase-backend/internal/service"
)

// DealHandler предоставляет HTTP слой для сделок.
type DealHandler struct {
	deals *service.DealService
}

// NewDealHandler создаёт хэндлер.
func NewDealHandler(deals *service.DealService) *DealHandler {
	return &DealHandler{deals: deals}
}

// List обрабатывает GET /deals.
func (h *DealHandler) List(c *gin.Context) {
	workspaceID, err := common.CurrentWorkspaceID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	page, limit := common.GetPageLimit(c)
	params := repository.DealListParams{
		Search:    c.Query("search"),
		Stage:     c.Query("stage"),
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
		Page:      page,
		Limit:     limit,
	}
	if params.OwnerID, err = common.ParseUUIDQuery(c, "owner_id"); err != nil {
		common.RespondBadRequest(c, "owner_id должен быть валидным UUID")
		return
	}
	if params.AccountID, err = common.ParseUUIDQuery(c, "account_id"); err != nil {
		common.RespondBadRequest(c, "account_id должен быть валидным UUID")
		return
	}

	result, err := h.deals.ListDeals(c.Request.Context(), workspaceID, params)
	if err != nil {
		c.Error(err)
		return
	}

	common.RespondJSON(c, http.StatusOK, result)
}

// Get обрабатывает GET /deals/:id.
func (h *DealHandler) Get(c *gin.Context) {
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

	deal, err := h.deals.GetDeal(c.Request.Context(), workspaceID, id)
	if err != nil {
		c.Error(err)
		return
	}

	common.RespondJSON(c, http.StatusOK, deal)
}

// Create обрабатывает POST /deals.
func (h *DealHandler) Create(c *gin.Context) {
	workspaceID, err := common.CurrentWorkspaceID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}
	userID, _ := common.CurrentUserID(c)

	var req dto.CreateDealRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	closeAt, err := parseDealDate(req.ExpectedCloseAt)
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	deal := &models.Deal{
		Name:            req.Name,
		Stage:           req.Stage,
		Amount:          req.Amount,
		ContactID:       req.ContactID,
		AccountID:       req.AccountID,
		ExpectedCloseAt: closeAt,
	}
	created, err := h.deals.CreateDeal(c.Request.Context(), workspaceID, userID, deal)
	if err != nil {
		c.Error(err)
		return
	}

	common.RespondJSON(c, http.StatusCreated, created)
}

// Update обрабатывает PATCH /deals/:id.
func (h *DealHandler) Update(c *gin.Context) {
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

	var req dto.UpdateDealRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	closeAt, err := parseDealDate(req.ExpectedCloseAt)
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	deal, err := h.deals.UpdateDeal(c.Request.Context(), workspaceID, id, repository.DealUpdate{
		Name:            req.Name,
		Stage:           req.Stage,
		Amount:          req.Amount,
		ContactID:       req.ContactID,
		AccountID:       req.AccountID,
		ExpectedCloseAt: closeAt,
	})
	if err != nil {
		c.Error(err)
		return
	}

	common.RespondJSON(c, http.StatusOK, deal)
}

// Delete обрабатывает DELETE /deals/:id.
func (h *DealHandler) Delete(c *gin.Context) {
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

	if err := h.deals.DeleteDeal(c.Request.Context(), workspaceID, id); err != nil {
		c.Error(err)
		return
	}

	common.RespondSuccess(c, http.StatusOK, "сделка удалена", nil)
}

// PipelineSummary обрабатывает GET /deals/pipeline.
func (h *DealHandler) PipelineSummary(c *gin.Context) {
	workspaceID, err := common.CurrentWorkspaceID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	stages, err := h.deals.GetPipelineSummary(c.Request.Context(), workspaceID)
	if err != nil {
		c.Error(err)
		return
	}

	common.RespondJSON(c, http.StatusOK, dto.PipelineSummaryResponse{Stages: stages})
}

// parseDealDate разбирает дату закрытия в формате YYYY-MM-DD.
func parseDealDate(raw *string) (*time.Time, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", *raw)
	if err != nil {
		return nil, errInvalidCloseDate
	}
	return &t, nil
}
