package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/faculty-leave-api/internal/models"
)

const leaveDetailColumns = `la.application_id, la.user_id, la.leave_type_id, la.start_date, la.end_date, la.total_days, la.reason,
       la.status, la.hod_approval, la.admin_approval, la.hod_remarks, la.admin_remarks, la.hod_action_date,
       la.admin_action_date, la.forwarded_at, la.is_permission, la.permission_slot, la.document_path, la.balance_applied,
       la.application_date, la.last_updated, COALESCE(u.dept_id, '') AS dept_id, u.first_name || ' ' || u.last_name AS applicant_name, lt.type_name`

const leaveDetailFrom = ` FROM leave_applications la
JOIN users u ON u.user_id = la.user_id
JOIN leave_types lt ON lt.type_id = la.leave_type_id`

// LeaveApplicationRepository persists leave applications.
type LeaveApplicationRepository struct {
	db sqlx.ExtContext
}

// NewLeaveApplicationRepository constructs the repository over a pool or a transaction.
func NewLeaveApplicationRepository(db sqlx.ExtContext) *LeaveApplicationRepository {
	return &LeaveApplicationRepository{db: db}
}

// Create inserts a new application in the pending state.
func (r *LeaveApplicationRepository) Create(ctx context.Context, app *models.LeaveApplication) error {
	if app.ID == "" {
		app.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if app.ApplicationDate.IsZero() {
		app.ApplicationDate = now
	}
	app.LastUpdated = now
	if app.Status == "" {
		app.Status = models.LeaveStatusPending
	}
	if app.HODApproval == "" {
		app.HODApproval = models.DecisionPending
	}
	if app.AdminApproval == "" {
		app.AdminApproval = models.DecisionPending
	}
	const query = `INSERT INTO leave_applications
	(application_id, user_id, leave_type_id, start_date, end_date, total_days, reason, status, hod_approval, admin_approval,
	 is_permission, permission_slot, document_path, balance_applied, application_date, last_updated)
	VALUES (:application_id, :user_id, :leave_type_id, :start_date, :end_date, :total_days, :reason, :status, :hod_approval, :admin_approval,
	 :is_permission, :permission_slot, :document_path, :balance_applied, :application_date, :last_updated)`
	if _, err := sqlx.NamedExecContext(ctx, r.db, query, app); err != nil {
		return fmt.Errorf("create leave application: %w", err)
	}
	return nil
}

// GetDetail fetches an application with applicant and leave type data.
func (r *LeaveApplicationRepository) GetDetail(ctx context.Context, id string) (*models.LeaveApplicationDetail, error) {
	query := "SELECT " + leaveDetailColumns + leaveDetailFrom + " WHERE la.application_id = $1"
	var detail models.LeaveApplicationDetail
	if err := sqlx.GetContext(ctx, r.db, &detail, query, id); err != nil {
		return nil, err
	}
	return &detail, nil
}

// GetForUpdate fetches and row-locks an application. Must run inside a transaction.
func (r *LeaveApplicationRepository) GetForUpdate(ctx context.Context, id string) (*models.LeaveApplicationDetail, error) {
	query := "SELECT " + leaveDetailColumns + leaveDetailFrom + " WHERE la.application_id = $1 FOR UPDATE OF la"
	var detail models.LeaveApplicationDetail
	if err := sqlx.GetContext(ctx, r.db, &detail, query, id); err != nil {
		return nil, err
	}
	return &detail, nil
}

// UpdateDecision writes an approval stage outcome, guarded by the expected current status.
// It returns sql.ErrNoRows when the row no longer has that status.
func (r *LeaveApplicationRepository) UpdateDecision(ctx context.Context, update models.LeaveStatusUpdate) error {
	const query = `UPDATE leave_applications SET
	status = :status, hod_approval = :hod_approval, admin_approval = :admin_approval,
	hod_remarks = :hod_remarks, admin_remarks = :admin_remarks,
	hod_action_date = :hod_action_date, admin_action_date = :admin_action_date, forwarded_at = :forwarded_at,
	balance_applied = :balance_applied, last_updated = :last_updated
	WHERE application_id = :application_id AND status = :expected_status`
	result, err := sqlx.NamedExecContext(ctx, r.db, query, update)
	if err != nil {
		return fmt.Errorf("update leave decision: %w", err)
	}
	return requireAffected(result, "leave decision")
}

// UpdateStatus moves an application between statuses without touching approval fields.
func (r *LeaveApplicationRepository) UpdateStatus(ctx context.Context, id string, expected, status models.LeaveStatus, at time.Time) error {
	const query = `UPDATE leave_applications SET status = $1, last_updated = $2 WHERE application_id = $3 AND status = $4`
	result, err := r.db.ExecContext(ctx, query, status, at, id, expected)
	if err != nil {
		return fmt.Errorf("update leave status: %w", err)
	}
	return requireAffected(result, "leave status")
}

// List returns applications matching the filter, newest first, and the total count.
func (r *LeaveApplicationRepository) List(ctx context.Context, filter models.LeaveFilter) ([]models.LeaveApplicationDetail, int, error) {
	conditions := make([]string, 0, 3)
	args := make([]interface{}, 0, 5)
	if filter.UserID != "" {
		args = append(args, filter.UserID)
		conditions = append(conditions, fmt.Sprintf("la.user_id = $%d", len(args)))
	}
	if filter.DeptID != "" {
		args = append(args, filter.DeptID)
		conditions = append(conditions, fmt.Sprintf("u.dept_id = $%d", len(args)))
	}
	if len(filter.Status) > 0 {
		statuses := make([]string, len(filter.Status))
		for i, s := range filter.Status {
			statuses[i] = string(s)
		}
		args = append(args, pq.Array(statuses))
		conditions = append(conditions, fmt.Sprintf("la.status = ANY($%d)", len(args)))
	}
	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := sqlx.GetContext(ctx, r.db, &total, "SELECT COUNT(*)"+leaveDetailFrom+where, args...); err != nil {
		return nil, 0, fmt.Errorf("count leave applications: %w", err)
	}

	page, size := models.NormalizePage(filter.Page, filter.PageSize)
	query := "SELECT " + leaveDetailColumns + leaveDetailFrom + where +
		fmt.Sprintf(" ORDER BY la.application_date DESC LIMIT %d OFFSET %d", size, (page-1)*size)

	var apps []models.LeaveApplicationDetail
	if err := sqlx.SelectContext(ctx, r.db, &apps, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list leave applications: %w", err)
	}
	return apps, total, nil
}

func requireAffected(result sql.Result, what string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check %s rows: %w", what, err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}
