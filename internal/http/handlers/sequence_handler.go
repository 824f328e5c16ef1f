package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/reachbase/reachbase-backend/internal/dto"
	"github.com/reachbase/reachbase-backend/internal/http/handlers/common"
	"github.com/reachbase/reachbase-backend/internal/repository"
	"github.com/reachbase/reachbase-backend/internal/service"
)

// SequenceHandler предоставляет HTTP слой для последовательностей рассылки.
type SequenceHandler struct {
	sequences *service.SequenceService
}

// NewSequenceHandler создаёт хэндлер.
func NewSequenceHandler(sequences *service.SequenceService) *SequenceHandler {
	return &SequenceHandler{sequences: sequences}
}

// List обрабатывает GET /sequences.
func (h *SequenceHandler) List(c *gin.Context) {
	workspaceID, err := common.CurrentWorkspaceID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	page, limit := common.GetPageLimit(c)
	params := repository.SequenceListParams{
		Search:    c.Query("search"),
		Status:    c.Query("status"),
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
		Page:      page,
		Limit:     limit,
	}

	result, err := h.sequences.ListSequences(c.Request.Context(), workspaceID, params)
	if err != nil {
		c.Error(err)
		return
	}

	common.RespondJSON(c, http.StatusOK, result)
}

// Get обрабатывает GET /sequences/:id.
func (h *SequenceHandler) Get(c *gin.Context) {
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

	seq, err := h.sequences.GetSequence(c.Request.Context(), workspaceID, id)
	if err != nil {
		c.Error(err)
		return
	}

	common.RespondJSON(c, http.StatusOK, seq)
}

// Create обрабатывает POST /sequences.
func (h *SequenceHandler) Create(c *gin.Context) {
	workspaceID, err := common.CurrentWorkspaceID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}
	userID, _ := common.CurrentUserID(c)

	var req dto.CreateSequenceRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	seq, err := h.sequences.CreateSequence(c.Request.Context(), workspaceID, userID, service.CreateSequenceInput{
		Name:            req.Name,
		MaxEmailsPerDay: req.MaxEmailsPerDay,
		Steps:           toStepInputs(req.Steps),
	})
	if err != nil {
		c.Error(err)
		return
	}

	common.RespondJSON(c, http.StatusCreated, seq)
}

// Update обрабатывает PATCH /sequences/:id.
func (h *SequenceHandler) Update(c *gin.Context) {
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

	var req dto.UpdateSequenceRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	in := service.UpdateSequenceInput{
		Name:            req.Name,
		Status:          req.Status,
		MaxEmailsPerDay: req.MaxEmailsPerDay,
	}
	if req.Steps != nil {
		in.ReplaceSteps = true
		in.Steps = toStepInputs(*req.Steps)
	}

	seq, err := h.sequences.UpdateSequence(c.Request.Context(), workspaceID, id, in)
	if err != nil {
		c.Error(err)
		return
	}

	common.RespondJSON(c, http.StatusOK, seq)
}

// Delete обрабатывает DELETE /sequences/:id.
func (h *SequenceHandler) Delete(c *gin.Context) {
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

	if err := h.sequences.DeleteSequence(c.Request.Context(), workspaceID, id); err != nil {
		c.Error(err)
		return
	}

	common.RespondSuccess(c, http.StatusOK, "последовательность удалена", nil)
}

// Enroll обрабатывает POST /sequences/:id/enroll.
func (h *SequenceHandler) Enroll(c *gin.Context) {
	workspaceID, err := common.CurrentWorkspaceID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}
	userID, _ := common.CurrentUserID(c)

	sequenceID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req dto.EnrollContactRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	enrollment, err := h.sequences.EnrollContact(c.Request.Context(), workspaceID, userID, sequenceID, req.ContactID)
	if err != nil {
		c.Error(err)
		return
	}

	common.RespondJSON(c, http.StatusCreated, enrollment)
}

// ListEnrollments обрабатывает GET /sequences/:id/enrollments.
func (h *SequenceHandler) ListEnrollments(c *gin.Context) {
	workspaceID, err := common.CurrentWorkspaceID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	sequenceID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	enrollments, err := h.sequences.ListEnrollments(c.Request.Context(), workspaceID, sequenceID, c.Query("status"))
	if err != nil {
		c.Error(err)
		return
	}

	common.RespondJSON(c, http.StatusOK, enrollments)
}

// PauseEnrollment обрабатывает POST /enrollments/:id/pause.
func (h *SequenceHandler) PauseEnrollment(c *gin.Context) {
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

	if err := h.sequences.PauseEnrollment(c.Request.Context(), workspaceID, id); err != nil {
		c.Error(err)
		return
	}

	common.RespondSuccess(c, http.StatusOK, "рассылка контакту приостановлена", nil)
}

// ResumeEnrollment обрабатывает POST /enrollments/:id/resume.
func (h *SequenceHandler) ResumeEnrollment(c *gin.Context) {
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

	if err := h.sequences.ResumeEnrollment(c.Request.Context(), workspaceID, id); err != nil {
		c.Error(err)
		return
	}

	common.RespondSuccess(c, http.StatusOK, "рассылка контакту возобновлена", nil)
}

func toStepInputs(steps []dto.SequenceStepRequest) []service.StepInput {
	out := make([]service.StepInput, 0, len(steps))
	for _, s := range steps {
		out = append(out, service.StepInput{
			TemplateID: s.TemplateID,
			StepNumber: s.StepNumber,
			DelayDays:  s.DelayDays,
		})
	}
	return out
}
