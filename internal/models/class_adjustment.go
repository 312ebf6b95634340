package models

import "time"

// AdjustmentStatus captures a colleague's response to a coverage request.
type AdjustmentStatus string

const (
	AdjustmentPending  AdjustmentStatus = "pending"
	AdjustmentAccepted AdjustmentStatus = "accepted"
	AdjustmentRejected AdjustmentStatus = "rejected"
)

// ClassAdjustment asks a colleague to take a class during the applicant's absence.
type ClassAdjustment struct {
	ID            string           `db:"adjustment_id" json:"id"`
	ApplicationID string           `db:"application_id" json:"applicationId"`
	AdjustedBy    string           `db:"adjusted_by" json:"adjustedBy"`
	ClassDate     time.Time        `db:"class_date" json:"classDate"`
	ClassTime     string           `db:"class_time" json:"classTime"`
	Subject       string           `db:"subject" json:"subject"`
	ClassDetails  *string          `db:"class_details" json:"classDetails,omitempty"`
	Status        AdjustmentStatus `db:"status" json:"status"`
	Remarks       *string          `db:"remarks" json:"remarks,omitempty"`
	RespondedAt   *time.Time       `db:"responded_at" json:"respondedAt,omitempty"`
	CreatedAt     time.Time        `db:"created_at" json:"createdAt"`
}

// ClassAdjustmentDetail joins the adjustment with its application context.
type ClassAdjustmentDetail struct {
	ClassAdjustment
	ApplicantID    string      `db:"applicant_id" json:"applicantId"`
	ApplicantName  string      `db:"applicant_name" json:"applicantName"`
	ColleagueName  string      `db:"colleague_name" json:"colleagueName"`
	LeaveStartDate time.Time   `db:"leave_start_date" json:"leaveStartDate"`
	LeaveEndDate   time.Time   `db:"leave_end_date" json:"leaveEndDate"`
	LeaveStatus    LeaveStatus `db:"leave_status" json:"leaveStatus"`
}
