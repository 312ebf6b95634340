package models

import "time"

// LeaveStatus captures the lifecycle of a leave application.
type LeaveStatus string

const (
	LeaveStatusPending       LeaveStatus = "pending"
	LeaveStatusApprovedByHOD LeaveStatus = "approved_by_hod"
	LeaveStatusApproved      LeaveStatus = "approved"
	LeaveStatusRejected      LeaveStatus = "rejected"
	LeaveStatusCancelled     LeaveStatus = "cancelled"
)

// Terminal reports whether no further transition is possible.
func (s LeaveStatus) Terminal() bool {
	return s == LeaveStatusApproved || s == LeaveStatusRejected || s == LeaveStatusCancelled
}

// Cancellable reports whether the owner may still withdraw the application.
func (s LeaveStatus) Cancellable() bool {
	return s == LeaveStatusPending || s == LeaveStatusApprovedByHOD
}

// ApprovalDecision is the per-stage verdict recorded by an approver.
type ApprovalDecision string

const (
	DecisionPending  ApprovalDecision = "pending"
	DecisionApproved ApprovalDecision = "approved"
	DecisionRejected ApprovalDecision = "rejected"
)

// PermissionSlot is the teaching period covered by a short permission.
type PermissionSlot string

const (
	SlotMorning PermissionSlot = "morning"
	SlotEvening PermissionSlot = "evening"
)

// Valid reports whether the slot is known.
func (s PermissionSlot) Valid() bool {
	return s == SlotMorning || s == SlotEvening
}

// LeaveApplication is the persisted leave request.
type LeaveApplication struct {
	ID              string           `db:"application_id" json:"id"`
	UserID          string           `db:"user_id" json:"userId"`
	LeaveTypeID     string           `db:"leave_type_id" json:"leaveTypeId"`
	StartDate       time.Time        `db:"start_date" json:"startDate"`
	EndDate         time.Time        `db:"end_date" json:"endDate"`
	TotalDays       int              `db:"total_days" json:"totalDays"`
	Reason          string           `db:"reason" json:"reason"`
	Status          LeaveStatus      `db:"status" json:"status"`
	HODApproval     ApprovalDecision `db:"hod_approval" json:"hodApproval"`
	AdminApproval   ApprovalDecision `db:"admin_approval" json:"adminApproval"`
	HODRemarks      *string          `db:"hod_remarks" json:"hodRemarks,omitempty"`
	AdminRemarks    *string          `db:"admin_remarks" json:"adminRemarks,omitempty"`
	HODActionDate   *time.Time       `db:"hod_action_date" json:"hodActionDate,omitempty"`
	AdminActionDate *time.Time       `db:"admin_action_date" json:"adminActionDate,omitempty"`
	ForwardedAt     *time.Time       `db:"forwarded_at" json:"forwardedAt,omitempty"`
	IsPermission    bool             `db:"is_permission" json:"isPermission"`
	PermissionSlot  *PermissionSlot  `db:"permission_slot" json:"permissionSlot,omitempty"`
	DocumentPath    *string          `db:"document_path" json:"documentPath,omitempty"`
	BalanceApplied  bool             `db:"balance_applied" json:"balanceApplied"`
	ApplicationDate time.Time        `db:"application_date" json:"applicationDate"`
	LastUpdated     time.Time        `db:"last_updated" json:"lastUpdated"`
}

// LeaveApplicationDetail joins the application with applicant and leave type data.
type LeaveApplicationDetail struct {
	LeaveApplication
	DeptID        string `db:"dept_id" json:"deptId"`
	ApplicantName string `db:"applicant_name" json:"applicantName"`
	LeaveTypeName string `db:"type_name" json:"leaveTypeName"`
}

// LeaveStatusUpdate is the guarded write applied by a decision.
type LeaveStatusUpdate struct {
	ID              string           `db:"application_id"`
	ExpectedStatus  LeaveStatus      `db:"expected_status"`
	Status          LeaveStatus      `db:"status"`
	HODApproval     ApprovalDecision `db:"hod_approval"`
	AdminApproval   ApprovalDecision `db:"admin_approval"`
	HODRemarks      *string          `db:"hod_remarks"`
	AdminRemarks    *string          `db:"admin_remarks"`
	HODActionDate   *time.Time       `db:"hod_action_date"`
	AdminActionDate *time.Time       `db:"admin_action_date"`
	ForwardedAt     *time.Time       `db:"forwarded_at"`
	BalanceApplied  bool             `db:"balance_applied"`
	LastUpdated     time.Time        `db:"last_updated"`
}

// LeaveFilter constrains application listings.
type LeaveFilter struct {
	UserID   string
	DeptID   string
	Status   []LeaveStatus
	Page     int
	PageSize int
}
