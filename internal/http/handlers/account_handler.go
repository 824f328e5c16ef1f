package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/reachbase/reachbase-backend/internal/dto"
	"github.com/reachbase/reachbase-backend/internal/http/handlers/common"
	"github.com/reachbase/reachbase-backend/internal/repository"
	"github.com/reachbase/reachbase-backend/internal/service"
)

// AccountHandler предоставляет HTTP слой для компаний.
type AccountHandler struct {
	accounts *service.AccountService
}

// NewAccountHandler создаёт хэндлер.
func NewAccountHandler(accounts *service.AccountService) *AccountHandler {
	return &AccountHandler{accounts: accounts}
}

// List обрабатывает GET /accounts.
func (h *AccountHandler) List(c *gin.Context) {
	workspaceID, err := common.CurrentWorkspaceID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	page, limit := common.GetPageLimit(c)
	params := repository.AccountListParams{
		Search:      c.Query("search"),
		Industry:    c.Query("industry"),
		CompanySize: c.Query("company_size"),
		SortBy:      c.Query("sort_by"),
		SortOrder:   c.Query("sort_order"),
		Page:        page,
		Limit:       limit,
	}

	result, err := h.accounts.ListAccounts(c.Request.Context(), workspaceID, params)
	if err != nil {
		c.Error(err)
		return
	}

	common.RespondJSON(c, http.StatusOK, result)
}

// Get обрабатывает GET /accounts/:id.
func (h *AccountHandler) Get(c *gin.Context) {
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

	account, err := h.accounts.GetAccount(c.Request.Context(), workspaceID, id)
	if err != nil {
		c.Error(err)
		return
	}

	common.RespondJSON(c, http.StatusOK, account)
}

// Create обрабатывает POST /accounts.
func (h *AccountHandler) Create(c *gin.Context) {
	workspaceID, err := common.CurrentWorkspaceID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}
	userID, _ := common.CurrentUserID(c)

	var req dto.CreateAccountRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	account, err := h.accounts.CreateAccount(c.Request.Context(), workspaceID, userID, service.CreateAccountInput{
		Name:        req.Name,
		Domain:      req.Domain,
		Industry:    req.Industry,
		CompanySize: req.CompanySize,
	})
	if err != nil {
		c.Error(err)
		return
	}

	common.RespondJSON(c, http.StatusCreated, account)
}

// Update обрабатывает PATCH /accounts/:id.
func (h *AccountHandler) Update(c *gin.Context) {
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

	var req dto.UpdateAccountRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	account, err := h.accounts.UpdateAccount(c.Request.Context(), workspaceID, id, repository.AccountUpdate{
		Name:        req.Name,
		Domain:      req.Domain,
		Industry:    req.Industry,
		CompanySize: req.CompanySize,
	})
	if err != nil {
		c.Error(err)
		return
	}

	common.RespondJSON(c, http.StatusOK, account)
}

// Delete обрабатывает DELETE /accounts/:id.
func (h *AccountHandler) Delete(c *gin.Context) {
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

	if err := h.accounts.DeleteAccount(c.Request.Context(), workspaceID, id); err != nil {
		c.Error(err)
		return
	}

	common.RespondSuccess(c, http.StatusOK, "компания удалена", nil)
}
