package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/faculty-leave-api/internal/models"
)

// LeaveHistoryRepository stores the audit trail of application transitions.
type LeaveHistoryRepository struct {
	db sqlx.ExtContext
}

// NewLeaveHistoryRepository constructs the repository.
func NewLeaveHistoryRepository(db sqlx.ExtContext) *LeaveHistoryRepository {
	return &LeaveHistoryRepository{db: db}
}

// Create appends a history entry.
func (r *LeaveHistoryRepository) Create(ctx context.Context, entry *models.LeaveHistory) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO leave_history (history_id, application_id, status_from, status_to, remarks, updated_by, created_at)
	VALUES (:history_id, :application_id, :status_from, :status_to, :remarks, :updated_by, :created_at)`
	if _, err := sqlx.NamedExecContext(ctx, r.db, query, entry); err != nil {
		return fmt.Errorf("create leave history: %w", err)
	}
	return nil
}

// ListByApplication returns entries oldest first.
func (r *LeaveHistoryRepository) ListByApplication(ctx context.Context, applicationID string) ([]models.LeaveHistory, error) {
	const query = `SELECT h.history_id, h.application_id, h.status_from, h.status_to, h.remarks, h.updated_by,
       COALESCE(u.first_name || ' ' || u.last_name, '') AS updater_name, h.created_at
	FROM leave_history h
	LEFT JOIN users u ON u.user_id = h.updated_by
	WHERE h.application_id = $1
	ORDER BY h.created_at ASC`
	var entries []models.LeaveHistory
	if err := sqlx.SelectContext(ctx, r.db, &entries, query, applicationID); err != nil {
		return nil, fmt.Errorf("list leave history: %w", err)
	}
	return entries, nil
}
