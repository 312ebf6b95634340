package repository

import (
	"context"
	"database/sql"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/faculty-leave-api/internal/models"
)

var userCols = []string{"user_id", "first_name", "last_name", "email", "role", "dept_id", "dept_name", "status"}

func TestUserRepositoryFindByID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewUserRepository(db)
	mock.ExpectQuery(`FROM users u LEFT JOIN departments d .* WHERE u\.user_id = \$1`).
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows(userCols).AddRow("user-1", "Asha", "Rao", "asha@uni.test", "faculty", "dept-cse", "Computer Science", "active"))

	user, err := repo.FindByID(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, "Asha Rao", user.FullName())
	assert.Equal(t, models.RoleFaculty, user.Role)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryFindByIDWithoutDepartment(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewUserRepository(db)
	mock.ExpectQuery(`SELECT .*COALESCE\(u\.dept_id, ''\) AS dept_id.* FROM users u`).
		WithArgs("admin-1").
		WillReturnRows(sqlmock.NewRows(userCols).AddRow("admin-1", "Meera", "Nair", "office@uni.test", "admin", "", "", "active"))

	user, err := repo.FindByID(context.Background(), "admin-1")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, user.Role)
	assert.Empty(t, user.DeptID)
	assert.Empty(t, user.DeptName)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryFindDepartmentHODMissing(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewUserRepository(db)
	mock.ExpectQuery(`WHERE u\.dept_id = \$1 AND u\.role = 'hod' AND u\.status = 'active'`).
		WithArgs("dept-empty").
		WillReturnRows(sqlmock.NewRows(userCols))

	_, err := repo.FindDepartmentHOD(context.Background(), "dept-empty")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositorySearchFaculty(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewUserRepository(db)
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM users u .* u\.user_id <> \$1 AND \(u\.first_name \|\| ' ' \|\| u\.last_name\) ILIKE \$2`).
		WithArgs("user-1", `%vik\_r%`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`ORDER BY u\.first_name, u\.last_name LIMIT 20 OFFSET 0`).
		WithArgs("user-1", `%vik\_r%`).
		WillReturnRows(sqlmock.NewRows(userCols).AddRow("user-2", "Vikram", "Iyer", "vik@uni.test", "faculty", "dept-cse", "Computer Science", "active"))

	users, total, err := repo.SearchFaculty(context.Background(), models.FacultySearchFilter{Query: " vik_r ", ExcludeUserID: "user-1"})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, users, 1)
	assert.Equal(t, "user-2", users[0].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}
