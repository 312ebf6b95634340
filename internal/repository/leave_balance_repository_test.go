package repository

import (
	"context"
	"database/sql"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLeaveBalanceRepositoryApplyUsageUpserts(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewLeaveBalanceRepository(db)
	mock.ExpectExec(`INSERT INTO leave_balances .* FROM leave_types lt WHERE lt\.type_id = \$6 ON CONFLICT \(user_id, leave_type_id, year\) DO UPDATE SET used_days = leave_balances\.used_days \+ EXCLUDED\.used_days`).
		WithArgs(sqlmock.AnyArg(), "user-1", 2024, 2, sqlmock.AnyArg(), "lt-casual").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.ApplyUsage(context.Background(), "user-1", "lt-casual", 2024, 2))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLeaveBalanceRepositoryApplyUsageUnknownType(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewLeaveBalanceRepository(db)
	mock.ExpectExec(`INSERT INTO leave_balances`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.ApplyUsage(context.Background(), "user-1", "lt-missing", 2024, 2)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestLeaveBalanceRepositoryListForUser(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewLeaveBalanceRepository(db)
	rows := sqlmock.NewRows([]string{"leave_type_id", "type_name", "year", "total_days", "used_days", "remaining_days"}).
		AddRow("lt-casual", "casual_leave", 2024, 12, 2, 10).
		AddRow("lt-earned", "earned_leave", 2024, 30, 0, 30)
	mock.ExpectQuery(`FROM leave_types lt LEFT JOIN leave_balances lb`).
		WithArgs("user-1", 2024).
		WillReturnRows(rows)

	balances, err := repo.ListForUser(context.Background(), "user-1", 2024)
	require.NoError(t, err)
	require.Len(t, balances, 2)
	assert.Equal(t, 10, balances[0].Remaining)
	assert.Equal(t, 0, balances[1].UsedDays)
	require.NoError(t, mock.ExpectationsWereMet())
}
