package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/faculty-leave-api/internal/models"
)

const adjustmentDetailSelect = `SELECT ca.adjustment_id, ca.application_id, ca.adjusted_by, ca.class_date, ca.class_time, ca.subject,
       ca.class_details, ca.status, ca.remarks, ca.responded_at, ca.created_at,
       la.user_id AS applicant_id, a.first_name || ' ' || a.last_name AS applicant_name,
       c.first_name || ' ' || c.last_name AS colleague_name,
       la.start_date AS leave_start_date, la.end_date AS leave_end_date, la.status AS leave_status
	FROM class_adjustments ca
	JOIN leave_applications la ON la.application_id = ca.application_id
	JOIN users a ON a.user_id = la.user_id
	JOIN users c ON c.user_id = ca.adjusted_by`

// ClassAdjustmentRepository persists substitute-teaching requests.
type ClassAdjustmentRepository struct {
	db sqlx.ExtContext
}

// NewClassAdjustmentRepository constructs the repository over a pool or a transaction.
func NewClassAdjustmentRepository(db sqlx.ExtContext) *ClassAdjustmentRepository {
	return &ClassAdjustmentRepository{db: db}
}

// Create inserts a pending adjustment.
func (r *ClassAdjustmentRepository) Create(ctx context.Context, adj *models.ClassAdjustment) error {
	if adj.ID == "" {
		adj.ID = uuid.NewString()
	}
	if adj.Status == "" {
		adj.Status = models.AdjustmentPending
	}
	if adj.CreatedAt.IsZero() {
		adj.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO class_adjustments
	(adjustment_id, application_id, adjusted_by, class_date, class_time, subject, class_details, status, created_at)
	VALUES (:adjustment_id, :application_id, :adjusted_by, :class_date, :class_time, :subject, :class_details, :status, :created_at)`
	if _, err := sqlx.NamedExecContext(ctx, r.db, query, adj); err != nil {
		return fmt.Errorf("create class adjustment: %w", err)
	}
	return nil
}

// GetForUpdate fetches and row-locks an adjustment. Must run inside a transaction.
func (r *ClassAdjustmentRepository) GetForUpdate(ctx context.Context, id string) (*models.ClassAdjustmentDetail, error) {
	var detail models.ClassAdjustmentDetail
	if err := sqlx.GetContext(ctx, r.db, &detail, adjustmentDetailSelect+" WHERE ca.adjustment_id = $1 FOR UPDATE OF ca", id); err != nil {
		return nil, err
	}
	return &detail, nil
}

// Respond records the colleague's answer while the adjustment is still pending.
func (r *ClassAdjustmentRepository) Respond(ctx context.Context, id string, status models.AdjustmentStatus, remarks *string, at time.Time) error {
	const query = `UPDATE class_adjustments SET status = $1, remarks = $2, responded_at = $3
	WHERE adjustment_id = $4 AND status = 'pending'`
	result, err := r.db.ExecContext(ctx, query, status, remarks, at, id)
	if err != nil {
		return fmt.Errorf("respond class adjustment: %w", err)
	}
	return requireAffected(result, "class adjustment")
}

// ListForColleague returns requests addressed to a user, most recent class first.
func (r *ClassAdjustmentRepository) ListForColleague(ctx context.Context, userID string, pendingOnly bool) ([]models.ClassAdjustmentDetail, error) {
	query := adjustmentDetailSelect + " WHERE ca.adjusted_by = $1"
	if pendingOnly {
		query += " AND ca.status = 'pending' AND la.status NOT IN ('rejected', 'cancelled')"
	}
	query += " ORDER BY ca.class_date DESC, ca.created_at DESC"
	var list []models.ClassAdjustmentDetail
	if err := sqlx.SelectContext(ctx, r.db, &list, query, userID); err != nil {
		return nil, fmt.Errorf("list colleague adjustments: %w", err)
	}
	return list, nil
}

// ListByApplication returns every adjustment attached to an application.
func (r *ClassAdjustmentRepository) ListByApplication(ctx context.Context, applicationID string) ([]models.ClassAdjustmentDetail, error) {
	query := adjustmentDetailSelect + " WHERE ca.application_id = $1 ORDER BY ca.class_date ASC"
	var list []models.ClassAdjustmentDetail
	if err := sqlx.SelectContext(ctx, r.db, &list, query, applicationID); err != nil {
		return nil, fmt.Errorf("list application adjustments: %w", err)
	}
	return list, nil
}
