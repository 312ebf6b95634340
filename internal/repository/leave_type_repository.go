package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/faculty-leave-api/internal/models"
)

// LeaveTypeRepository reads leave type definitions.
type LeaveTypeRepository struct {
	db sqlx.ExtContext
}

// NewLeaveTypeRepository constructs the repository.
func NewLeaveTypeRepository(db sqlx.ExtContext) *LeaveTypeRepository {
	return &LeaveTypeRepository{db: db}
}

// GetByID fetches a leave type.
func (r *LeaveTypeRepository) GetByID(ctx context.Context, id string) (*models.LeaveType, error) {
	const query = `SELECT type_id, type_name, description, default_balance, requires_document, carry_forward
	FROM leave_types WHERE type_id = $1`
	var lt models.LeaveType
	if err := sqlx.GetContext(ctx, r.db, &lt, query, id); err != nil {
		return nil, err
	}
	return &lt, nil
}

// List returns all leave types ordered by name.
func (r *LeaveTypeRepository) List(ctx context.Context) ([]models.LeaveType, error) {
	const query = `SELECT type_id, type_name, description, default_balance, requires_document, carry_forward
	FROM leave_types ORDER BY type_name`
	var types []models.LeaveType
	if err := sqlx.SelectContext(ctx, r.db, &types, query); err != nil {
		return nil, fmt.Errorf("list leave types: %w", err)
	}
	return types, nil
}
