package models

// UserRole represents the roles recognised by the leave workflow.
type UserRole string

const (
	RoleFaculty      UserRole = "faculty"
	RoleHOD          UserRole = "hod"
	RoleCentralAdmin UserRole = "central_admin"
	RoleAdmin        UserRole = "admin"
)

// Valid reports whether the role is known.
func (r UserRole) Valid() bool {
	switch r {
	case RoleFaculty, RoleHOD, RoleCentralAdmin, RoleAdmin:
		return true
	}
	return false
}

// IsAdministrative reports whether the role acts across departments.
func (r UserRole) IsAdministrative() bool {
	return r == RoleCentralAdmin || r == RoleAdmin
}

// UserStatus captures whether an account is active.
type UserStatus string

const (
	UserStatusActive   UserStatus = "active"
	UserStatusInactive UserStatus = "inactive"
)

// User is the read-only directory record for a faculty member or approver.
type User struct {
	ID        string     `db:"user_id" json:"id"`
	FirstName string     `db:"first_name" json:"firstName"`
	LastName  string     `db:"last_name" json:"lastName"`
	Email     string     `db:"email" json:"email"`
	Role      UserRole   `db:"role" json:"role"`
	DeptID    string     `db:"dept_id" json:"deptId"`
	DeptName  string     `db:"dept_name" json:"deptName,omitempty"`
	Status    UserStatus `db:"status" json:"status"`
}

// FullName joins first and last name.
func (u User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	default:
		return u.FirstName + " " + u.LastName
	}
}

// FacultySearchFilter narrows the colleague picker.
type FacultySearchFilter struct {
	Query         string
	ExcludeUserID string
	DeptID        string
	Page          int
	PageSize      int
}
