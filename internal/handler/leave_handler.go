package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/faculty-leave-api/internal/dto"
	"github.com/noah-isme/faculty-leave-api/internal/models"
	appErrors "github.com/noah-isme/faculty-leave-api/pkg/errors"
	"github.com/noah-isme/faculty-leave-api/pkg/response"
)

type leaveService interface {
	Submit(ctx context.Context, caller models.Caller, req dto.SubmitLeaveRequest) (*models.LeaveApplicationDetail, error)
	Decide(ctx context.Context, caller models.Caller, id string, req dto.DecisionRequest) (*models.LeaveApplicationDetail, error)
	Cancel(ctx context.Context, caller models.Caller, id string) (*models.LeaveApplicationDetail, error)
	Get(ctx context.Context, caller models.Caller, id string) (*models.LeaveApplicationDetail, error)
	ListMine(ctx context.Context, caller models.Caller, query dto.LeaveListQuery) ([]models.LeaveApplicationDetail, *models.Pagination, error)
	ListPendingApprovals(ctx context.Context, caller models.Caller, page, pageSize int) ([]models.LeaveApplicationDetail, *models.Pagination, error)
	History(ctx context.Context, caller models.Caller, id string) ([]models.LeaveHistory, error)
	WorkingDays(start, end string) (*dto.WorkingDaysResponse, error)
}

type applicationAdjustments interface {
	ListByApplication(ctx context.Context, caller models.Caller, applicationID string) ([]models.ClassAdjustmentDetail, error)
}

type documentLinker interface {
	Link(ctx context.Context, caller models.Caller, applicationID string) (*dto.DocumentLinkResponse, error)
}

// LeaveHandler exposes the leave application workflow.
type LeaveHandler struct {
	leaves      leaveService
	adjustments applicationAdjustments
	documents   documentLinker
}

// NewLeaveHandler constructs a leave handler.
func NewLeaveHandler(leaves leaveService, adjustments applicationAdjustments, documents documentLinker) *LeaveHandler {
	return &LeaveHandler{leaves: leaves, adjustments: adjustments, documents: documents}
}

// Submit godoc
// @Summary Apply for leave or permission
// @Tags Leaves
// @Accept json
// @Produce json
// @Param payload body dto.SubmitLeaveRequest true "Leave application"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /leaves [post]
func (h *LeaveHandler) Submit(c *gin.Context) {
	caller, ok := callerFromContext(c)
	if !ok {
		return
	}
	var req dto.SubmitLeaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid leave payload"))
		return
	}
	app, err := h.leaves.Submit(c.Request.Context(), caller, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, app)
}

// Mine godoc
// @Summary List the caller's applications
// @Tags Leaves
// @Produce json
// @Param status query string false "Comma separated statuses"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /leaves/mine [get]
func (h *LeaveHandler) Mine(c *gin.Context) {
	caller, ok := callerFromContext(c)
	if !ok {
		return
	}
	page, size := pageParams(c)
	query := dto.LeaveListQuery{Page: page, PageSize: size}
	for _, s := range queryList(c, "status") {
		query.Status = append(query.Status, models.LeaveStatus(s))
	}
	items, pagination, err := h.leaves.ListMine(c.Request.Context(), caller, query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination)
}

// Pending godoc
// @Summary List applications awaiting the caller's decision
// @Tags Leaves
// @Produce json
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /leaves/pending [get]
func (h *LeaveHandler) Pending(c *gin.Context) {
	caller, ok := callerFromContext(c)
	if !ok {
		return
	}
	page, size := pageParams(c)
	items, pagination, err := h.leaves.ListPendingApprovals(c.Request.Context(), caller, page, size)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination)
}

// Get godoc
// @Summary Get one application
// @Tags Leaves
// @Produce json
// @Param id path string true "Application ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /leaves/{id} [get]
func (h *LeaveHandler) Get(c *gin.Context) {
	caller, ok := callerFromContext(c)
	if !ok {
		return
	}
	app, err := h.leaves.Get(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, app)
}

// History godoc
// @Summary Status history of an application
// @Tags Leaves
// @Produce json
// @Param id path string true "Application ID"
// @Success 200 {object} response.Envelope
// @Router /leaves/{id}/history [get]
func (h *LeaveHandler) History(c *gin.Context) {
	caller, ok := callerFromContext(c)
	if !ok {
		return
	}
	items, err := h.leaves.History(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, items)
}

// Decide godoc
// @Summary Approve or reject an application
// @Tags Leaves
// @Accept json
// @Produce json
// @Param id path string true "Application ID"
// @Param payload body dto.DecisionRequest true "Decision"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /leaves/{id}/decision [post]
func (h *LeaveHandler) Decide(c *gin.Context) {
	caller, ok := callerFromContext(c)
	if !ok {
		return
	}
	var req dto.DecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid decision payload"))
		return
	}
	app, err := h.leaves.Decide(c.Request.Context(), caller, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, app)
}

// Cancel godoc
// @Summary Cancel an undecided application
// @Tags Leaves
// @Produce json
// @Param id path string true "Application ID"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /leaves/{id}/cancel [post]
func (h *LeaveHandler) Cancel(c *gin.Context) {
	caller, ok := callerFromContext(c)
	if !ok {
		return
	}
	app, err := h.leaves.Cancel(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, app)
}

// Adjustments godoc
// @Summary Class adjustments requested by an application
// @Tags Leaves
// @Produce json
// @Param id path string true "Application ID"
// @Success 200 {object} response.Envelope
// @Router /leaves/{id}/adjustments [get]
func (h *LeaveHandler) Adjustments(c *gin.Context) {
	caller, ok := callerFromContext(c)
	if !ok {
		return
	}
	items, err := h.adjustments.ListByApplication(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, items)
}

// Document godoc
// @Summary Signed download link for the supporting document
// @Tags Leaves
// @Produce json
// @Param id path string true "Application ID"
// @Success 200 {object} response.Envelope
// @Router /leaves/{id}/document [get]
func (h *LeaveHandler) Document(c *gin.Context) {
	caller, ok := callerFromContext(c)
	if !ok {
		return
	}
	link, err := h.documents.Link(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, link)
}

// WorkingDays godoc
// @Summary Count weekdays in an inclusive range
// @Tags Leaves
// @Produce json
// @Param start query string true "Start date (YYYY-MM-DD)"
// @Param end query string true "End date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /leaves/working-days [get]
func (h *LeaveHandler) WorkingDays(c *gin.Context) {
	result, err := h.leaves.WorkingDays(c.Query("start"), c.Query("end"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, result)
}
