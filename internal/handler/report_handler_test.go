package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/faculty-leave-api/internal/dto"
	"github.com/noah-isme/faculty-leave-api/internal/models"
	"github.com/noah-isme/faculty-leave-api/internal/service"
	appErrors "github.com/noah-isme/faculty-leave-api/pkg/errors"
)

type reportServiceMock struct {
	query   dto.LeaveReportQuery
	deptID  string
	year    int
	rows    []models.LeaveReportRow
	file    *service.ReportFile
	summary []models.DepartmentMemberSummary
	err     error
}

func (m *reportServiceMock) List(ctx context.Context, caller models.Caller, query dto.LeaveReportQuery) ([]models.LeaveReportRow, error) {
	m.query = query
	return m.rows, m.err
}

func (m *reportServiceMock) Export(ctx context.Context, caller models.Caller, query dto.LeaveReportQuery) (*service.ReportFile, error) {
	m.query = query
	return m.file, m.err
}

func (m *reportServiceMock) DepartmentSummary(ctx context.Context, caller models.Caller, deptID string, year int) ([]models.DepartmentMemberSummary, error) {
	m.deptID, m.year = deptID, year
	return m.summary, m.err
}

func TestReportHandlerLeaves(t *testing.T) {
	svc := &reportServiceMock{rows: []models.LeaveReportRow{{ApplicationID: "app-1"}, {ApplicationID: "app-2"}}}
	h := NewReportHandler(svc)
	c, w := newGinContext(http.MethodGet, "/reports/leaves?deptId=cse&status=approved,rejected&from=2024-01-01&to=2024-12-31", nil)
	withClaims(c, "admin-1", models.RoleCentralAdmin, "")

	h.Leaves(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "cse", svc.query.DeptID)
	assert.Equal(t, []string{"approved", "rejected"}, svc.query.Status)
	assert.Equal(t, "2024-01-01", svc.query.From)
	assert.Equal(t, "2024-12-31", svc.query.To)
	assert.JSONEq(t, `{"count":2}`, string(decodeEnvelope(t, w)["meta"]))
}

func TestReportHandlerExport(t *testing.T) {
	svc := &reportServiceMock{file: &service.ReportFile{Filename: "leave-report.csv", ContentType: "text/csv", Content: []byte("a,b\n")}}
	h := NewReportHandler(svc)
	c, w := newGinContext(http.MethodGet, "/reports/leaves/export?format=csv", nil)
	withClaims(c, "hod-1", models.RoleHOD, "cse")

	h.Export(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "csv", svc.query.Format)
	assert.Equal(t, `attachment; filename="leave-report.csv"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "a,b\n", w.Body.String())
}

func TestReportHandlerDepartmentSummary(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		svc := &reportServiceMock{summary: []models.DepartmentMemberSummary{{UserID: "fac-1", PendingCount: 1}}}
		h := NewReportHandler(svc)
		c, w := newGinContext(http.MethodGet, "/departments/summary?year=2024", nil)
		withClaims(c, "hod-1", models.RoleHOD, "cse")

		h.DepartmentSummary(c)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 2024, svc.year)
		assert.Empty(t, svc.deptID)
	})

	t.Run("bad year", func(t *testing.T) {
		svc := &reportServiceMock{}
		h := NewReportHandler(svc)
		c, w := newGinContext(http.MethodGet, "/departments/summary?year=last", nil)
		withClaims(c, "hod-1", models.RoleHOD, "cse")

		h.DepartmentSummary(c)

		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "year must be a number")
	})

	t.Run("forbidden", func(t *testing.T) {
		svc := &reportServiceMock{err: appErrors.Clone(appErrors.ErrForbidden, "department outside caller scope")}
		h := NewReportHandler(svc)
		c, w := newGinContext(http.MethodGet, "/departments/summary?deptId=ece", nil)
		withClaims(c, "hod-1", models.RoleHOD, "cse")

		h.DepartmentSummary(c)

		require.Equal(t, http.StatusForbidden, w.Code)
	})
}
