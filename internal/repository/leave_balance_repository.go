package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/faculty-leave-api/internal/models"
)

// LeaveBalanceRepository maintains per-year leave usage.
type LeaveBalanceRepository struct {
	db sqlx.ExtContext
}

// NewLeaveBalanceRepository constructs the repository over a pool or a transaction.
func NewLeaveBalanceRepository(db sqlx.ExtContext) *LeaveBalanceRepository {
	return &LeaveBalanceRepository{db: db}
}

// ApplyUsage adds days to the used total for (user, type, year), creating the row from
// the leave type's default allowance when absent. The upsert is a single statement so
// concurrent first uses cannot create duplicates.
func (r *LeaveBalanceRepository) ApplyUsage(ctx context.Context, userID, leaveTypeID string, year, days int) error {
	const query = `INSERT INTO leave_balances (balance_id, user_id, leave_type_id, year, total_days, used_days, last_updated)
	SELECT $1, $2, lt.type_id, $3, lt.default_balance, $4, $5 FROM leave_types lt WHERE lt.type_id = $6
	ON CONFLICT (user_id, leave_type_id, year)
	DO UPDATE SET used_days = leave_balances.used_days + EXCLUDED.used_days, last_updated = EXCLUDED.last_updated`
	result, err := r.db.ExecContext(ctx, query, uuid.NewString(), userID, year, days, time.Now().UTC(), leaveTypeID)
	if err != nil {
		return fmt.Errorf("apply leave usage: %w", err)
	}
	return requireAffected(result, "leave balance")
}

// ListForUser returns every leave type with the user's usage for the year. Types without
// a balance row report their default allowance and zero usage.
func (r *LeaveBalanceRepository) ListForUser(ctx context.Context, userID string, year int) ([]models.BalanceView, error) {
	const query = `SELECT lt.type_id AS leave_type_id, lt.type_name, $2::int AS year,
       COALESCE(lb.total_days, lt.default_balance) AS total_days,
       COALESCE(lb.used_days, 0) AS used_days,
       COALESCE(lb.total_days, lt.default_balance) - COALESCE(lb.used_days, 0) AS remaining_days
	FROM leave_types lt
	LEFT JOIN leave_balances lb ON lb.leave_type_id = lt.type_id AND lb.user_id = $1 AND lb.year = $2
	ORDER BY lt.type_name`
	var balances []models.BalanceView
	if err := sqlx.SelectContext(ctx, r.db, &balances, query, userID, year); err != nil {
		return nil, fmt.Errorf("list leave balances: %w", err)
	}
	return balances, nil
}
