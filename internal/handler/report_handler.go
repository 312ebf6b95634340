package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/faculty-leave-api/internal/dto"
	"github.com/noah-isme/faculty-leave-api/internal/models"
	"github.com/noah-isme/faculty-leave-api/internal/service"
	"github.com/noah-isme/faculty-leave-api/pkg/response"
)

type reportService interface {
	List(ctx context.Context, caller models.Caller, query dto.LeaveReportQuery) ([]models.LeaveReportRow, error)
	Export(ctx context.Context, caller models.Caller, query dto.LeaveReportQuery) (*service.ReportFile, error)
	DepartmentSummary(ctx context.Context, caller models.Caller, deptID string, year int) ([]models.DepartmentMemberSummary, error)
}

// ReportHandler exposes reporting endpoints.
type ReportHandler struct {
	reports reportService
}

// NewReportHandler constructs handler.
func NewReportHandler(reports reportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

func reportQuery(c *gin.Context) dto.LeaveReportQuery {
	return dto.LeaveReportQuery{
		DeptID:      c.Query("deptId"),
		UserID:      c.Query("userId"),
		LeaveTypeID: c.Query("leaveTypeId"),
		Status:      queryList(c, "status"),
		From:        c.Query("from"),
		To:          c.Query("to"),
		Format:      c.Query("format"),
	}
}

// Leaves godoc
// @Summary Leave report
// @Tags Reports
// @Produce json
// @Param deptId query string false "Department"
// @Param userId query string false "Applicant"
// @Param leaveTypeId query string false "Leave type"
// @Param status query string false "Comma separated statuses"
// @Param from query string false "Start date lower bound (YYYY-MM-DD)"
// @Param to query string false "Start date upper bound (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /reports/leaves [get]
func (h *ReportHandler) Leaves(c *gin.Context) {
	caller, ok := callerFromContext(c)
	if !ok {
		return
	}
	rows, err := h.reports.List(c.Request.Context(), caller, reportQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil, map[string]interface{}{"count": len(rows)})
}

// Export godoc
// @Summary Download the leave report
// @Tags Reports
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv or pdf"
// @Success 200 {file} file
// @Router /reports/leaves/export [get]
func (h *ReportHandler) Export(c *gin.Context) {
	caller, ok := callerFromContext(c)
	if !ok {
		return
	}
	file, err := h.reports.Export(c.Request.Context(), caller, reportQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Content)
}

// DepartmentSummary godoc
// @Summary Per-member leave summary of a department
// @Tags Reports
// @Produce json
// @Param deptId query string false "Department (admins only)"
// @Param year query int false "Year"
// @Success 200 {object} response.Envelope
// @Router /departments/summary [get]
func (h *ReportHandler) DepartmentSummary(c *gin.Context) {
	caller, ok := callerFromContext(c)
	if !ok {
		return
	}
	year, err := queryInt(c, "year")
	if err != nil {
		response.Error(c, err)
		return
	}
	summary, err := h.reports.DepartmentSummary(c.Request.Context(), caller, c.Query("deptId"), year)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, summary)
}
