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

type classAdjustmentService interface {
	ListForColleague(ctx context.Context, caller models.Caller, pendingOnly bool) ([]models.ClassAdjustmentDetail, error)
	Respond(ctx context.Context, caller models.Caller, id string, req dto.RespondAdjustmentRequest) (*models.ClassAdjustmentDetail, error)
}

// ClassAdjustmentHandler serves colleagues asked to cover classes.
type ClassAdjustmentHandler struct {
	service classAdjustmentService
}

// NewClassAdjustmentHandler constructs the handler.
func NewClassAdjustmentHandler(service classAdjustmentService) *ClassAdjustmentHandler {
	return &ClassAdjustmentHandler{service: service}
}

// List godoc
// @Summary Class adjustments addressed to the caller
// @Tags ClassAdjustments
// @Produce json
// @Param pending query bool false "Only pending requests"
// @Success 200 {object} response.Envelope
// @Router /class-adjustments [get]
func (h *ClassAdjustmentHandler) List(c *gin.Context) {
	caller, ok := callerFromContext(c)
	if !ok {
		return
	}
	items, err := h.service.ListForColleague(c.Request.Context(), caller, queryBool(c, "pending"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, items)
}

// Respond godoc
// @Summary Accept or decline a class adjustment
// @Tags ClassAdjustments
// @Accept json
// @Produce json
// @Param id path string true "Adjustment ID"
// @Param payload body dto.RespondAdjustmentRequest true "Response"
// @Success 200 {object} response.Envelope
// @Router /class-adjustments/{id}/respond [post]
func (h *ClassAdjustmentHandler) Respond(c *gin.Context) {
	caller, ok := callerFromContext(c)
	if !ok {
		return
	}
	var req dto.RespondAdjustmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid adjustment response"))
		return
	}
	item, err := h.service.Respond(c.Request.Context(), caller, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, item)
}
