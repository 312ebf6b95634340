package models

// LeaveType describes a category of leave and its yearly allowance.
type LeaveType struct {
	ID               string  `db:"type_id" json:"id"`
	Name             string  `db:"type_name" json:"name"`
	Description      *string `db:"description" json:"description,omitempty"`
	DefaultBalance   int     `db:"default_balance" json:"defaultBalance"`
	RequiresDocument bool    `db:"requires_document" json:"requiresDocument"`
	CarryForward     bool    `db:"carry_forward" json:"carryForward"`
}
