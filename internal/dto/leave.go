package dto

import "github.com/noah-isme/faculty-leave-api/internal/models"

// ClassAdjustmentInput describes one class a colleague is asked to cover.
type ClassAdjustmentInput struct {
	ColleagueID  string `json:"colleagueId" validate:"required"`
	ClassDate    string `json:"classDate" validate:"required,datetime=2006-01-02"`
	ClassTime    string `json:"classTime" validate:"required,max=50"`
	Subject      string `json:"subject" validate:"required,max=100"`
	ClassDetails string `json:"classDetails" validate:"max=500"`
}

// SubmitLeaveRequest is the POST /leaves payload. Either a start/end range or a list of
// casual dates may be supplied; permission requests carry a single date and a slot.
type SubmitLeaveRequest struct {
	LeaveTypeID    string                 `json:"leaveTypeId" validate:"required"`
	StartDate      string                 `json:"startDate" validate:"omitempty,datetime=2006-01-02"`
	EndDate        string                 `json:"endDate" validate:"omitempty,datetime=2006-01-02"`
	CasualDates    []string               `json:"casualDates" validate:"omitempty,dive,datetime=2006-01-02"`
	Reason         string                 `json:"reason" validate:"required,max=1000"`
	IsPermission   bool                   `json:"isPermission"`
	PermissionSlot models.PermissionSlot  `json:"permissionSlot" validate:"omitempty,oneof=morning evening"`
	DocumentPath   string                 `json:"documentPath" validate:"max=255"`
	Adjustments    []ClassAdjustmentInput `json:"adjustments" validate:"omitempty,dive"`
}

// DecisionRequest is the approver verdict on an application.
type DecisionRequest struct {
	Decision models.ApprovalDecision `json:"decision" validate:"required,oneof=approved rejected"`
	Remarks  string                  `json:"remarks" validate:"max=1000"`
}

// LeaveListQuery mirrors listing query parameters.
type LeaveListQuery struct {
	Status   []models.LeaveStatus
	Page     int
	PageSize int
}

// WorkingDaysResponse reports the weekday count of a range.
type WorkingDaysResponse struct {
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
	WorkingDays int    `json:"workingDays"`
}

// DocumentLinkResponse carries a signed, time-limited document URL.
type DocumentLinkResponse struct {
	URL       string `json:"url"`
	ExpiresAt string `json:"expiresAt"`
}
