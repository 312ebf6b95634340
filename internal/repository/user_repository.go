package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/faculty-leave-api/internal/models"
)

const userColumns = `u.user_id, u.first_name, u.last_name, u.email, u.role, COALESCE(u.dept_id, '') AS dept_id, COALESCE(d.dept_name, '') AS dept_name, u.status`

// UserRepository reads the faculty directory.
type UserRepository struct {
	db sqlx.ExtContext
}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(db sqlx.ExtContext) *UserRepository {
	return &UserRepository{db: db}
}

// FindByID returns a user by identifier.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	query := "SELECT " + userColumns + " FROM users u LEFT JOIN departments d ON d.dept_id = u.dept_id WHERE u.user_id = $1 LIMIT 1"
	var user models.User
	if err := sqlx.GetContext(ctx, r.db, &user, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return &user, nil
}

// FindDepartmentHOD returns the active head of a department, or sql.ErrNoRows.
func (r *UserRepository) FindDepartmentHOD(ctx context.Context, deptID string) (*models.User, error) {
	query := "SELECT " + userColumns + ` FROM users u LEFT JOIN departments d ON d.dept_id = u.dept_id
	WHERE u.dept_id = $1 AND u.role = 'hod' AND u.status = 'active' ORDER BY u.user_id LIMIT 1`
	var user models.User
	if err := sqlx.GetContext(ctx, r.db, &user, query, deptID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find department hod: %w", err)
	}
	return &user, nil
}

// SearchFaculty lists active faculty by name for the colleague picker.
func (r *UserRepository) SearchFaculty(ctx context.Context, filter models.FacultySearchFilter) ([]models.User, int, error) {
	conditions := []string{"u.status = 'active'", "u.role IN ('faculty', 'hod')"}
	args := make([]interface{}, 0, 3)
	if filter.ExcludeUserID != "" {
		args = append(args, filter.ExcludeUserID)
		conditions = append(conditions, fmt.Sprintf("u.user_id <> $%d", len(args)))
	}
	if filter.DeptID != "" {
		args = append(args, filter.DeptID)
		conditions = append(conditions, fmt.Sprintf("u.dept_id = $%d", len(args)))
	}
	if q := strings.TrimSpace(filter.Query); q != "" {
		args = append(args, "%"+escapeLike(q)+"%")
		conditions = append(conditions, fmt.Sprintf("(u.first_name || ' ' || u.last_name) ILIKE $%d", len(args)))
	}
	from := " FROM users u LEFT JOIN departments d ON d.dept_id = u.dept_id WHERE " + strings.Join(conditions, " AND ")

	var total int
	if err := sqlx.GetContext(ctx, r.db, &total, "SELECT COUNT(*)"+from, args...); err != nil {
		return nil, 0, fmt.Errorf("count faculty: %w", err)
	}

	page, size := models.NormalizePage(filter.Page, filter.PageSize)
	query := "SELECT " + userColumns + from + fmt.Sprintf(" ORDER BY u.first_name, u.last_name LIMIT %d OFFSET %d", size, (page-1)*size)
	var users []models.User
	if err := sqlx.SelectContext(ctx, r.db, &users, query, args...); err != nil {
		return nil, 0, fmt.Errorf("search faculty: %w", err)
	}
	return users, total, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`).Replace(s)
}
