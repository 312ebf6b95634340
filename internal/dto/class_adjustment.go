package dto

import "github.com/noah-isme/faculty-leave-api/internal/models"

// RespondAdjustmentRequest is a colleague's answer to a coverage request.
type RespondAdjustmentRequest struct {
	Decision models.AdjustmentStatus `json:"decision" validate:"required,oneof=accepted rejected"`
	Remarks  string                  `json:"remarks" validate:"max=500"`
}
