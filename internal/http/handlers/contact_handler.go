package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx/types"

	"github.com/reachbase/reachbase-backend/internal/dto"
	"github.com/reachbase/reachbase-backend/internal/http/handlers/common"
	"github.com/reachbase/reachbase-backend/internal/repository"
	"github.com/reachbase/reachbase-backend/internal/service"
)

// ContactHandler предоставляет HTTP слой для контактов.
type ContactHandler struct {
	contacts *service.ContactService
}

// NewContactHandler создаёт хэндлер.
func NewContactHandler(contacts *service.ContactService) *ContactHandler {
	return &ContactHandler{contacts: contacts}
}

// List обрабатывает GET /contacts.
func (h *ContactHandler) List(c *gin.Context) {
	workspaceID, err := common.CurrentWorkspaceID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	page, limit := common.GetPageLimit(c)
	params := repository.ContactListParams{
		Search:    c.Query("search"),
		Status:    c.Query("status"),
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
		Page:      page,
		Limit:     limit,
	}
	if tags := c.Query("tags"); tags != "" {
		params.Tags = strings.Split(tags, ",")
	}
	if params.AccountID, err = common.ParseUUIDQuery(c, "account_id"); err != nil {
		common.RespondBadRequest(c, "account_id должен быть валидным UUID")
		return
	}
	if params.OwnerID, err = common.ParseUUIDQuery(c, "owner_id"); err != nil {
		common.RespondBadRequest(c, "owner_id должен быть валидным UUID")
		return
	}

	result, err := h.contacts.ListContacts(c.Request.Context(), workspaceID, params)
	if err != nil {
		c.Error(err)
		return
	}

	common.RespondJSON(c, http.StatusOK, result)
}

// Get обрабатывает GET /contacts/:id.
func (h *ContactHandler) Get(c *gin.Context) {
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

	contact, err := h.contacts.GetContact(c.Request.Context(), workspaceID, id)
	if err != nil {
		c.Error(err)
		return
	}

	common.RespondJSON(c, http.StatusOK, contact)
}

// Create обрабатывает POST /contacts.
func (h *ContactHandler) Create(c *gin.Context) {
	workspaceID, err := common.CurrentWorkspaceID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}
	userID, _ := common.CurrentUserID(c)

	var req dto.CreateContactRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	contact, err := h.contacts.CreateContact(c.Request.Context(), workspaceID, userID, service.CreateContactInput{
		AccountID:    req.AccountID,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		Title:        req.Title,
		Phone:        req.Phone,
		Status:       req.Status,
		Tags:         req.Tags,
		CustomFields: types.JSONText(req.CustomFields),
	})
	if err != nil {
		c.Error(err)
		return
	}

	common.RespondJSON(c, http.StatusCreated, contact)
}

// Update обрабатывает PATCH /contacts/:id.
func (h *ContactHandler) Update(c *gin.Context) {
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

	var req dto.UpdateContactRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	contact, err := h.contacts.UpdateContact(c.Request.Context(), workspaceID, id, repository.ContactUpdate{
		AccountID:    req.AccountID,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		Title:        req.Title,
		Phone:        req.Phone,
		Status:       req.Status,
		Tags:         req.Tags,
		CustomFields: types.JSONText(req.CustomFields),
	})
	if err != nil {
		c.Error(err)
		return
	}

	common.RespondJSON(c, http.StatusOK, contact)
}

// Delete обрабатывает DELETE /contacts/:id.
func (h *ContactHandler) Delete(c *gin.Context) {
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

	if err := h.contacts.DeleteContact(c.Request.Context(), workspaceID, id); err != nil {
		c.Error(err)
		return
	}

	common.RespondSuccess(c, http.StatusOK, "контакт удалён", nil)
}
