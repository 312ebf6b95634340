package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/faculty-leave-api/internal/models"
	"github.com/noah-isme/faculty-leave-api/pkg/response"
)

type directoryService interface {
	SearchFaculty(ctx context.Context, caller models.Caller, filter models.FacultySearchFilter) ([]models.User, *models.Pagination, error)
	LeaveTypes(ctx context.Context) ([]models.LeaveType, error)
}

// DirectoryHandler serves lookups for the application form.
type DirectoryHandler struct {
	service directoryService
}

// NewDirectoryHandler constructs the handler.
func NewDirectoryHandler(service directoryService) *DirectoryHandler {
	return &DirectoryHandler{service: service}
}

// SearchFaculty godoc
// @Summary Search colleagues for class adjustments
// @Tags Directory
// @Produce json
// @Param q query string false "Name or email fragment"
// @Param deptId query string false "Department filter"
// @Success 200 {object} response.Envelope
// @Router /faculty/search [get]
func (h *DirectoryHandler) SearchFaculty(c *gin.Context) {
	caller, ok := callerFromContext(c)
	if !ok {
		return
	}
	page, size := pageParams(c)
	filter := models.FacultySearchFilter{
		Query:    strings.TrimSpace(c.Query("q")),
		DeptID:   c.Query("deptId"),
		Page:     page,
		PageSize: size,
	}
	users, pagination, err := h.service.SearchFaculty(c.Request.Context(), caller, filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, users, pagination)
}

// LeaveTypes godoc
// @Summary List leave types
// @Tags Directory
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /leave-types [get]
func (h *DirectoryHandler) LeaveTypes(c *gin.Context) {
	types, err := h.service.LeaveTypes(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, types)
}
