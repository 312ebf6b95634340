package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/faculty-leave-api/internal/models"
)

// ReportRepository runs read-only aggregate queries over leave data.
type ReportRepository struct {
	db sqlx.ExtContext
}

// NewReportRepository constructs the repository.
func NewReportRepository(db sqlx.ExtContext) *ReportRepository {
	return &ReportRepository{db: db}
}

// LeaveReport lists applications matching the filter ordered by start date.
func (r *ReportRepository) LeaveReport(ctx context.Context, filter models.LeaveReportFilter) ([]models.LeaveReportRow, error) {
	conditions := make([]string, 0, 6)
	args := make([]interface{}, 0, 6)
	add := func(cond string, arg interface{}) {
		args = append(args, arg)
		conditions = append(conditions, fmt.Sprintf(cond, len(args)))
	}
	if filter.DeptID != "" {
		add("u.dept_id = $%d", filter.DeptID)
	}
	if filter.UserID != "" {
		add("la.user_id = $%d", filter.UserID)
	}
	if filter.LeaveTypeID != "" {
		add("la.leave_type_id = $%d", filter.LeaveTypeID)
	}
	if len(filter.Status) > 0 {
		statuses := make([]string, len(filter.Status))
		for i, s := range filter.Status {
			statuses[i] = string(s)
		}
		add("la.status = ANY($%d)", pq.Array(statuses))
	}
	if filter.From != nil {
		add("la.end_date >= $%d", *filter.From)
	}
	if filter.To != nil {
		add("la.start_date <= $%d", *filter.To)
	}

	var b strings.Builder
	b.WriteString(`SELECT la.application_id, u.first_name || ' ' || u.last_name AS applicant_name,
       COALESCE(d.dept_name, '') AS dept_name, lt.type_name, la.start_date, la.end_date, la.total_days,
       la.status, la.is_permission, la.application_date
	FROM leave_applications la
	JOIN users u ON u.user_id = la.user_id
	JOIN leave_types lt ON lt.type_id = la.leave_type_id
	LEFT JOIN departments d ON d.dept_id = u.dept_id`)
	if len(conditions) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(conditions, " AND "))
	}
	b.WriteString(" ORDER BY la.start_date DESC, applicant_name")
	limit := filter.Limit
	if limit <= 0 {
		limit = 1000
	}
	b.WriteString(fmt.Sprintf(" LIMIT %d", limit))

	var rows []models.LeaveReportRow
	if err := sqlx.SelectContext(ctx, r.db, &rows, b.String(), args...); err != nil {
		return nil, fmt.Errorf("leave report: %w", err)
	}
	return rows, nil
}

// DepartmentSummary aggregates pending/approved counts and approved days per department member.
func (r *ReportRepository) DepartmentSummary(ctx context.Context, deptID string, year int) ([]models.DepartmentMemberSummary, error) {
	const query = `SELECT u.user_id, u.first_name || ' ' || u.last_name AS name, u.email,
       COUNT(la.application_id) FILTER (WHERE la.status IN ('pending', 'approved_by_hod')) AS pending_count,
       COUNT(la.application_id) FILTER (WHERE la.status = 'approved') AS approved_count,
       COALESCE(SUM(la.total_days) FILTER (WHERE la.status = 'approved'), 0) AS days_taken
	FROM users u
	LEFT JOIN leave_applications la ON la.user_id = u.user_id AND EXTRACT(YEAR FROM la.start_date) = $2
	WHERE u.dept_id = $1 AND u.status = 'active' AND u.role IN ('faculty', 'hod')
	GROUP BY u.user_id, u.first_name, u.last_name, u.email
	ORDER BY u.first_name, u.last_name`
	var summary []models.DepartmentMemberSummary
	if err := sqlx.SelectContext(ctx, r.db, &summary, query, deptID, year); err != nil {
		return nil, fmt.Errorf("department summary: %w", err)
	}
	return summary, nil
}
