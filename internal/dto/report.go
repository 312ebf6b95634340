package dto

// LeaveReportQuery captures GET /reports/leaves filters.
type LeaveReportQuery struct {
	DeptID      string   `form:"deptId"`
	UserID      string   `form:"userId"`
	LeaveTypeID string   `form:"leaveTypeId"`
	Status      []string `form:"status" validate:"omitempty,dive,oneof=pending approved_by_hod approved rejected cancelled"`
	From        string   `form:"from" validate:"omitempty,datetime=2006-01-02"`
	To          string   `form:"to" validate:"omitempty,datetime=2006-01-02"`
	Format      string   `form:"format" validate:"omitempty,oneof=csv pdf"`
}
