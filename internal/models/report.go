package models

import "time"

// LeaveReportFilter narrows the historical leave report.
type LeaveReportFilter struct {
	DeptID      string
	UserID      string
	LeaveTypeID string
	Status      []LeaveStatus
	From        *time.Time
	To          *time.Time
	Limit       int
}

// LeaveReportRow is one application in the leave report.
type LeaveReportRow struct {
	ApplicationID   string      `db:"application_id" json:"applicationId"`
	ApplicantName   string      `db:"applicant_name" json:"applicantName"`
	DeptName        string      `db:"dept_name" json:"deptName"`
	LeaveTypeName   string      `db:"type_name" json:"leaveTypeName"`
	StartDate       time.Time   `db:"start_date" json:"startDate"`
	EndDate         time.Time   `db:"end_date" json:"endDate"`
	TotalDays       int         `db:"total_days" json:"totalDays"`
	Status          LeaveStatus `db:"status" json:"status"`
	IsPermission    bool        `db:"is_permission" json:"isPermission"`
	ApplicationDate time.Time   `db:"application_date" json:"applicationDate"`
}

// DepartmentMemberSummary aggregates leave activity of one department member.
type DepartmentMemberSummary struct {
	UserID        string `db:"user_id" json:"userId"`
	Name          string `db:"name" json:"name"`
	Email         string `db:"email" json:"email"`
	PendingCount  int    `db:"pending_count" json:"pendingCount"`
	ApprovedCount int    `db:"approved_count" json:"approvedCount"`
	DaysTaken     int    `db:"days_taken" json:"daysTaken"`
}
