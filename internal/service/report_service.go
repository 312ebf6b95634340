package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/faculty-leave-api/internal/dto"
	"github.com/noah-isme/faculty-leave-api/internal/models"
	appErrors "github.com/noah-isme/faculty-leave-api/pkg/errors"
	"github.com/noah-isme/faculty-leave-api/pkg/export"
	"github.com/noah-isme/faculty-leave-api/pkg/workdays"
)

type reportStore interface {
	LeaveReport(ctx context.Context, filter models.LeaveReportFilter) ([]models.LeaveReportRow, error)
	DepartmentSummary(ctx context.Context, deptID string, year int) ([]models.DepartmentMemberSummary, error)
}

type datasetRenderer interface {
	Render(data export.Dataset) ([]byte, error)
	ContentType() string
	Extension() string
}

// ReportFile is a rendered export ready for download.
type ReportFile struct {
	Filename    string
	ContentType string
	Content     []byte
}

// ReportService serves leave reports and department summaries.
type ReportService struct {
	store     reportStore
	renderers map[string]datasetRenderer
	maxRows   int
	logger    *zap.Logger
	now       func() time.Time
}

// NewReportService constructs a ReportService with CSV and PDF renderers.
func NewReportService(store reportStore, maxRows int, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxRows <= 0 {
		maxRows = 5000
	}
	return &ReportService{
		store: store,
		renderers: map[string]datasetRenderer{
			"csv": export.NewCSVExporter(),
			"pdf": export.NewPDFExporter(),
		},
		maxRows: maxRows,
		logger:  logger,
		now:     time.Now,
	}
}

// List returns report rows visible to the caller.
func (s *ReportService) List(ctx context.Context, caller models.Caller, query dto.LeaveReportQuery) ([]models.LeaveReportRow, error) {
	filter, err := s.filter(caller, query)
	if err != nil {
		return nil, err
	}
	rows, err := s.store.LeaveReport(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build leave report")
	}
	if rows == nil {
		rows = []models.LeaveReportRow{}
	}
	return rows, nil
}

// Export renders the report in the requested format.
func (s *ReportService) Export(ctx context.Context, caller models.Caller, query dto.LeaveReportQuery) (*ReportFile, error) {
	format := strings.ToLower(strings.TrimSpace(query.Format))
	if format == "" {
		format = "csv"
	}
	renderer, ok := s.renderers[format]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}

	rows, err := s.List(ctx, caller, query)
	if err != nil {
		return nil, err
	}
	content, err := renderer.Render(leaveReportDataset(rows))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render leave report")
	}

	s.logger.Info("leave report exported", zap.String("user_id", caller.UserID), zap.String("format", format), zap.Int("rows", len(rows)))
	return &ReportFile{
		Filename:    fmt.Sprintf("leave-report-%s.%s", s.now().UTC().Format("20060102-150405"), renderer.Extension()),
		ContentType: renderer.ContentType(),
		Content:     content,
	}, nil
}

// DepartmentSummary lists each department member with pending and approved counts and
// days taken in the year. HODs see their own department; admins may choose one.
func (s *ReportService) DepartmentSummary(ctx context.Context, caller models.Caller, deptID string, year int) ([]models.DepartmentMemberSummary, error) {
	switch {
	case caller.Role == models.RoleHOD:
		deptID = caller.DeptID
	case caller.Role.IsAdministrative():
		if deptID == "" {
			deptID = caller.DeptID
		}
	default:
		return nil, appErrors.Clone(appErrors.ErrForbidden, "department summary requires HOD or admin role")
	}
	if deptID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "department is required")
	}
	if year <= 0 {
		year = s.now().Year()
	}
	summary, err := s.store.DepartmentSummary(ctx, deptID, year)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build department summary")
	}
	if summary == nil {
		summary = []models.DepartmentMemberSummary{}
	}
	return summary, nil
}

func (s *ReportService) filter(caller models.Caller, query dto.LeaveReportQuery) (models.LeaveReportFilter, error) {
	filter := models.LeaveReportFilter{
		DeptID:      query.DeptID,
		UserID:      query.UserID,
		LeaveTypeID: query.LeaveTypeID,
		Limit:       s.maxRows,
	}
	switch {
	case caller.Role == models.RoleHOD:
		if filter.DeptID != "" && filter.DeptID != caller.DeptID {
			return filter, appErrors.Clone(appErrors.ErrForbidden, "HOD reports are limited to their department")
		}
		filter.DeptID = caller.DeptID
	case caller.Role.IsAdministrative():
	default:
		return filter, appErrors.Clone(appErrors.ErrForbidden, "reports require HOD or admin role")
	}

	for _, raw := range query.Status {
		status := models.LeaveStatus(raw)
		switch status {
		case models.LeaveStatusPending, models.LeaveStatusApprovedByHOD, models.LeaveStatusApproved, models.LeaveStatusRejected, models.LeaveStatusCancelled:
			filter.Status = append(filter.Status, status)
		default:
			return filter, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown status %q", raw))
		}
	}
	if query.From != "" {
		from, err := workdays.Parse(query.From)
		if err != nil {
			return filter, appErrors.Clone(appErrors.ErrValidation, "from must be YYYY-MM-DD")
		}
		filter.From = &from
	}
	if query.To != "" {
		to, err := workdays.Parse(query.To)
		if err != nil {
			return filter, appErrors.Clone(appErrors.ErrValidation, "to must be YYYY-MM-DD")
		}
		filter.To = &to
	}
	if filter.From != nil && filter.To != nil && filter.To.Before(*filter.From) {
		return filter, appErrors.Clone(appErrors.ErrValidation, "to cannot precede from")
	}
	return filter, nil
}

func leaveReportDataset(rows []models.LeaveReportRow) export.Dataset {
	data := export.Dataset{
		Title: "Leave Report",
		Columns: []export.Column{
			{Key: "applicant", Title: "Applicant", Width: 3},
			{Key: "department", Title: "Department", Width: 3},
			{Key: "type", Title: "Leave Type", Width: 3},
			{Key: "start", Title: "From", Width: 2},
			{Key: "end", Title: "To", Width: 2},
			{Key: "days", Title: "Days", Width: 1},
			{Key: "status", Title: "Status", Width: 2},
			{Key: "applied", Title: "Applied On", Width: 2},
		},
		Rows: make([]map[string]string, 0, len(rows)),
	}
	for _, row := range rows {
		leaveType := row.LeaveTypeName
		if row.IsPermission {
			leaveType += " (permission)"
		}
		data.Rows = append(data.Rows, map[string]string{
			"applicant":  row.ApplicantName,
			"department": row.DeptName,
			"type":       leaveType,
			"start":      row.StartDate.Format(workdays.DateLayout),
			"end":        row.EndDate.Format(workdays.DateLayout),
			"days":       strconv.Itoa(row.TotalDays),
			"status":     string(row.Status),
			"applied":    row.ApplicationDate.Format(workdays.DateLayout),
		})
	}
	return data
}
