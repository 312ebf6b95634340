package models

import "time"

// LeaveBalance tracks usage of one leave type by one user in one year.
type LeaveBalance struct {
	ID          string    `db:"balance_id" json:"id"`
	UserID      string    `db:"user_id" json:"userId"`
	LeaveTypeID string    `db:"leave_type_id" json:"leaveTypeId"`
	Year        int       `db:"year" json:"year"`
	TotalDays   int       `db:"total_days" json:"totalDays"`
	UsedDays    int       `db:"used_days" json:"usedDays"`
	LastUpdated time.Time `db:"last_updated" json:"lastUpdated"`
}

// BalanceView is one row of the balance summary; types without usage report zero.
type BalanceView struct {
	LeaveTypeID   string `db:"leave_type_id" json:"leaveTypeId"`
	LeaveTypeName string `db:"type_name" json:"leaveTypeName"`
	Year          int    `db:"year" json:"year"`
	TotalDays     int    `db:"total_days" json:"totalDays"`
	UsedDays      int    `db:"used_days" json:"usedDays"`
	Remaining     int    `db:"remaining_days" json:"remainingDays"`
}
