package service

import (
	"strings"

	"github.com/noah-isme/faculty-leave-api/internal/models"
	"github.com/noah-isme/faculty-leave-api/pkg/config"
)

// PolicyInput describes one approver decision on an application.
type PolicyInput struct {
	LeaveTypeName string
	TotalDays     int
	IsPermission  bool
	ActingRole    models.UserRole
	Decision      models.ApprovalDecision
}

// PolicyOutcome is the status an application moves to after a decision.
type PolicyOutcome struct {
	Status                  models.LeaveStatus
	RequiresFurtherApproval bool
	ApplyBalance            bool
}

// ApprovalPolicy decides how far a single approval moves an application.
// It is pure: no I/O and no clock.
type ApprovalPolicy struct {
	casualTypeName string
	casualMaxDays  int
	strict         bool
}

// NewApprovalPolicy builds the policy from configuration.
func NewApprovalPolicy(cfg config.LeaveConfig) *ApprovalPolicy {
	name := cfg.CasualTypeName
	if name == "" {
		name = "casual_leave"
	}
	maxDays := cfg.CasualHODMaxDays
	if maxDays <= 0 {
		maxDays = 3
	}
	return &ApprovalPolicy{casualTypeName: name, casualMaxDays: maxDays, strict: cfg.StrictCasualMatch}
}

// NextStage returns the status produced by the decision.
func (p *ApprovalPolicy) NextStage(in PolicyInput) PolicyOutcome {
	if in.Decision == models.DecisionRejected {
		return PolicyOutcome{Status: models.LeaveStatusRejected}
	}

	switch in.ActingRole {
	case models.RoleHOD:
		if p.HODIsFinal(in.LeaveTypeName, in.TotalDays, in.IsPermission) {
			return PolicyOutcome{Status: models.LeaveStatusApproved, ApplyBalance: true}
		}
		return PolicyOutcome{Status: models.LeaveStatusApprovedByHOD, RequiresFurtherApproval: true}
	case models.RoleAdmin:
		return PolicyOutcome{Status: models.LeaveStatusApproved, ApplyBalance: true}
	case models.RoleCentralAdmin:
		return PolicyOutcome{Status: models.LeaveStatusApprovedByHOD, RequiresFurtherApproval: true}
	default:
		return PolicyOutcome{Status: models.LeaveStatusPending, RequiresFurtherApproval: true}
	}
}

// HODIsFinal reports whether head-of-department approval completes the chain.
func (p *ApprovalPolicy) HODIsFinal(leaveTypeName string, totalDays int, isPermission bool) bool {
	if isPermission {
		return true
	}
	return p.isCasual(leaveTypeName) && totalDays <= p.casualMaxDays
}

// AcceptsCasualDates reports whether the leave type may be requested as a set of explicit dates.
func (p *ApprovalPolicy) AcceptsCasualDates(leaveTypeName string) bool {
	return p.isCasual(leaveTypeName)
}

func (p *ApprovalPolicy) isCasual(leaveTypeName string) bool {
	if p.strict {
		return leaveTypeName == p.casualTypeName
	}
	return strings.Contains(leaveTypeName, p.casualTypeName)
}

// DeriveStatus recomputes the status an application must have given its approval fields.
// Cancellation is an owner action and is returned unchanged.
func (p *ApprovalPolicy) DeriveStatus(app models.LeaveApplication, leaveTypeName string) models.LeaveStatus {
	if app.Status == models.LeaveStatusCancelled {
		return models.LeaveStatusCancelled
	}
	switch {
	case app.HODApproval == models.DecisionRejected || app.AdminApproval == models.DecisionRejected:
		return models.LeaveStatusRejected
	case app.AdminApproval == models.DecisionApproved:
		return models.LeaveStatusApproved
	case app.HODApproval == models.DecisionApproved:
		if p.HODIsFinal(leaveTypeName, app.TotalDays, app.IsPermission) {
			return models.LeaveStatusApproved
		}
		return models.LeaveStatusApprovedByHOD
	default:
		return models.LeaveStatusPending
	}
}
