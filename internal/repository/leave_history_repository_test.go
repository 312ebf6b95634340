package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/faculty-leave-api/internal/models"
)

func TestLeaveHistoryRepositoryCreateAndList(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewLeaveHistoryRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO leave_history")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	from := models.LeaveStatusPending
	entry := &models.LeaveHistory{ApplicationID: "app-1", StatusFrom: &from, StatusTo: models.LeaveStatusApproved, UpdatedBy: "hod-1"}
	require.NoError(t, repo.Create(context.Background(), entry))
	assert.NotEmpty(t, entry.ID)

	mock.ExpectQuery(`FROM leave_history h LEFT JOIN users u .* WHERE h\.application_id = \$1 ORDER BY h\.created_at ASC`).
		WithArgs("app-1").
		WillReturnRows(sqlmock.NewRows([]string{"history_id", "application_id", "status_from", "status_to", "remarks", "updated_by", "updater_name", "created_at"}).
			AddRow("h-1", "app-1", nil, "pending", nil, "user-1", "Asha Rao", time.Now()).
			AddRow("h-2", "app-1", "pending", "approved", nil, "hod-1", "Meera Nair", time.Now()))

	entries, err := repo.ListByApplication(context.Background(), "app-1")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Nil(t, entries[0].StatusFrom)
	require.NotNil(t, entries[1].StatusFrom)
	assert.Equal(t, models.LeaveStatusPending, *entries[1].StatusFrom)
	require.NoError(t, mock.ExpectationsWereMet())
}
