package models

import "time"

// LeaveHistory is one audit entry for a status transition.
type LeaveHistory struct {
	ID            string       `db:"history_id" json:"id"`
	ApplicationID string       `db:"application_id" json:"applicationId"`
	StatusFrom    *LeaveStatus `db:"status_from" json:"statusFrom,omitempty"`
	StatusTo      LeaveStatus  `db:"status_to" json:"statusTo"`
	Remarks       *string      `db:"remarks" json:"remarks,omitempty"`
	UpdatedBy     string       `db:"updated_by" json:"updatedBy"`
	UpdaterName   string       `db:"updater_name" json:"updaterName,omitempty"`
	CreatedAt     time.Time    `db:"created_at" json:"createdAt"`
}
