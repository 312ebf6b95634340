package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/faculty-leave-api/internal/dto"
	"github.com/noah-isme/faculty-leave-api/internal/models"
	appErrors "github.com/noah-isme/faculty-leave-api/pkg/errors"
	"github.com/noah-isme/faculty-leave-api/pkg/mailer"
	"github.com/noah-isme/faculty-leave-api/pkg/storage"
	"github.com/noah-isme/faculty-leave-api/pkg/workdays"
)

// statusSubmitted labels the transition metric of a fresh application.
const statusSubmitted models.LeaveStatus = "submitted"

type documentVerifier interface {
	Exists(relPath string) (bool, error)
}

// LeaveService runs the leave application workflow: submission, approval, cancellation and reads.
type LeaveService struct {
	stores    LeaveStores
	tx        TxRunner
	policy    *ApprovalPolicy
	balances  *BalanceService
	notifier  *NotificationService
	metrics   *MetricsService
	documents documentVerifier
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewLeaveService constructs a LeaveService. documents may be nil to skip file existence checks.
func NewLeaveService(
	stores LeaveStores,
	tx TxRunner,
	policy *ApprovalPolicy,
	balances *BalanceService,
	notifier *NotificationService,
	metrics *MetricsService,
	documents documentVerifier,
	validate *validator.Validate,
	logger *zap.Logger,
) *LeaveService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &LeaveService{
		stores:    stores,
		tx:        tx,
		policy:    policy,
		balances:  balances,
		notifier:  notifier,
		metrics:   metrics,
		documents: documents,
		validator: validate,
		logger:    logger,
		now:       time.Now,
	}
}

type leavePeriod struct {
	start time.Time
	end   time.Time
	days  int
	slot  *models.PermissionSlot
}

type adjustmentRequest struct {
	input     dto.ClassAdjustmentInput
	classDate time.Time
}

// Submit validates and records a new application together with its class adjustments.
func (s *LeaveService) Submit(ctx context.Context, caller models.Caller, req dto.SubmitLeaveRequest) (*models.LeaveApplicationDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid leave application")
	}
	if strings.TrimSpace(req.Reason) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "reason is required")
	}

	leaveType, err := s.stores.LeaveTypes.GetByID(ctx, req.LeaveTypeID)
	if err != nil {
		return nil, notFoundOr(err, "leave type not found", "failed to load leave type")
	}
	if !req.IsPermission && len(req.CasualDates) > 0 && !s.policy.AcceptsCasualDates(leaveType.Name) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "casual dates are only accepted for casual leave")
	}
	period, err := resolvePeriod(req)
	if err != nil {
		return nil, err
	}
	adjustments, err := resolveAdjustments(caller, req.Adjustments)
	if err != nil {
		return nil, err
	}
	if err := s.checkDocument(leaveType, req.DocumentPath); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	app := models.LeaveApplication{
		ID:              uuid.NewString(),
		UserID:          caller.UserID,
		LeaveTypeID:     leaveType.ID,
		StartDate:       period.start,
		EndDate:         period.end,
		TotalDays:       period.days,
		Reason:          strings.TrimSpace(req.Reason),
		Status:          models.LeaveStatusPending,
		HODApproval:     models.DecisionPending,
		AdminApproval:   models.DecisionPending,
		IsPermission:    req.IsPermission,
		PermissionSlot:  period.slot,
		DocumentPath:    optionalString(req.DocumentPath),
		ApplicationDate: now,
		LastUpdated:     now,
	}

	var (
		applicant *models.User
		emails    []*EmailRequest
	)
	err = s.tx.RunInTx(ctx, func(st LeaveStores) error {
		emails = nil
		var err error
		applicant, err = st.Users.FindByID(ctx, caller.UserID)
		if err != nil {
			return notFoundOr(err, "applicant not found", "failed to load applicant")
		}

		colleagues := make(map[string]*models.User, len(adjustments))
		for _, adj := range adjustments {
			if _, ok := colleagues[adj.input.ColleagueID]; ok {
				continue
			}
			colleague, err := st.Users.FindByID(ctx, adj.input.ColleagueID)
			if err != nil {
				return notFoundOr(err, "colleague not found", "failed to load colleague")
			}
			colleagues[colleague.ID] = colleague
		}

		if err := st.Applications.Create(ctx, &app); err != nil {
			return appErrors.Dependency(err, "failed to create leave application")
		}

		for _, adj := range adjustments {
			record := &models.ClassAdjustment{
				ApplicationID: app.ID,
				AdjustedBy:    adj.input.ColleagueID,
				ClassDate:     adj.classDate,
				ClassTime:     strings.TrimSpace(adj.input.ClassTime),
				Subject:       strings.TrimSpace(adj.input.Subject),
				ClassDetails:  optionalString(adj.input.ClassDetails),
				Status:        models.AdjustmentPending,
				CreatedAt:     now,
			}
			if err := st.Adjustments.Create(ctx, record); err != nil {
				return appErrors.Dependency(err, "failed to create class adjustment")
			}
			colleague := colleagues[adj.input.ColleagueID]
			email, err := s.notifier.Notify(ctx, st.Notifications, Notice{
				UserID: colleague.ID,
				Title:  "Class Adjustment Request",
				Message: fmt.Sprintf("%s has requested you to take %s on %s (%s).",
					applicant.FullName(), record.Subject, record.ClassDate.Format("02-01-2006"), record.ClassTime),
				Type: models.NotificationInfo,
				Link: "/class-adjustments",
				Email: &EmailRequest{Template: mailer.TemplateClassAdjustmentRequest, Data: mailer.Data{
					RecipientName: colleague.FullName(),
					ApplicationID: app.ID,
					ColleagueName: applicant.FullName(),
					StartDate:     app.StartDate,
					EndDate:       app.EndDate,
					ClassDate:     record.ClassDate,
					ClassTime:     record.ClassTime,
					Subject:       record.Subject,
					ClassDetails:  derefString(record.ClassDetails),
					Link:          "/class-adjustments",
				}},
			})
			if err != nil {
				return err
			}
			emails = append(emails, email)
		}

		if err := st.History.Create(ctx, &models.LeaveHistory{
			ApplicationID: app.ID,
			StatusTo:      models.LeaveStatusPending,
			Remarks:       optionalString("Application submitted"),
			UpdatedBy:     caller.UserID,
			CreatedAt:     now,
		}); err != nil {
			return appErrors.Dependency(err, "failed to record leave history")
		}

		email, err := s.notifier.Notify(ctx, st.Notifications, Notice{
			UserID:  app.UserID,
			Title:   "Leave Application Submitted",
			Message: fmt.Sprintf("Your %s application has been submitted and is pending approval.", leaveType.Name),
			Type:    models.NotificationSuccess,
			Link:    "/leaves/" + app.ID,
			Email:   &EmailRequest{Template: mailer.TemplateLeaveApplied, Data: s.mailData(app, applicant.FullName(), leaveType.Name)},
		})
		if err != nil {
			return err
		}
		emails = append(emails, email)

		hod, err := st.Users.FindDepartmentHOD(ctx, applicant.DeptID)
		switch {
		case errors.Is(err, sql.ErrNoRows):
		case err != nil:
			return appErrors.Dependency(err, "failed to load department head")
		case hod.ID != applicant.ID:
			title, message := "New Leave Application", fmt.Sprintf("%s has applied for %s from %s to %s.",
				applicant.FullName(), leaveType.Name, app.StartDate.Format("02-01-2006"), app.EndDate.Format("02-01-2006"))
			if app.IsPermission {
				title = "New Permission Leave Request"
				message = fmt.Sprintf("New permission leave request from %s for %s (%s)",
					applicant.FullName(), app.StartDate.Format("02-01-2006"), mailer.SlotLabel(string(*app.PermissionSlot)))
			}
			if _, err := s.notifier.Notify(ctx, st.Notifications, Notice{
				UserID:  hod.ID,
				Title:   title,
				Message: message,
				Type:    models.NotificationInfo,
				Link:    "/leaves/pending",
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, txError(err, "failed to submit leave application")
	}

	s.metrics.RecordTransition(statusSubmitted, models.LeaveStatusPending, caller.Role)
	s.notifier.Dispatch(emails...)
	s.logger.Info("leave application submitted",
		zap.String("application_id", app.ID),
		zap.String("user_id", app.UserID),
		zap.String("leave_type", leaveType.Name),
		zap.Int("total_days", app.TotalDays),
		zap.Int("adjustments", len(adjustments)))

	return &models.LeaveApplicationDetail{
		LeaveApplication: app,
		DeptID:           applicant.DeptID,
		ApplicantName:    applicant.FullName(),
		LeaveTypeName:    leaveType.Name,
	}, nil
}

// Decide records an approver's verdict and advances the application per the approval policy.
func (s *LeaveService) Decide(ctx context.Context, caller models.Caller, applicationID string, req dto.DecisionRequest) (*models.LeaveApplicationDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid decision")
	}
	remarks := strings.TrimSpace(req.Remarks)
	if req.Decision == models.DecisionRejected && remarks == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "remarks are required when rejecting")
	}
	switch caller.Role {
	case models.RoleHOD, models.RoleAdmin:
	case models.RoleCentralAdmin:
		if req.Decision == models.DecisionRejected {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "central admin may only forward applications")
		}
	default:
		return nil, appErrors.Clone(appErrors.ErrForbidden, "role cannot approve leave")
	}

	var (
		before  models.LeaveStatus
		updated models.LeaveApplicationDetail
		applied bool
		emails  []*EmailRequest
	)
	err := s.tx.RunInTx(ctx, func(st LeaveStores) error {
		emails = nil
		app, err := st.Applications.GetForUpdate(ctx, applicationID)
		if err != nil {
			return notFoundOr(err, "leave application not found", "failed to load leave application")
		}
		if err := authorizeDecision(caller, app); err != nil {
			return err
		}

		now := s.now().UTC()
		before = app.Status
		outcome := s.policy.NextStage(PolicyInput{
			LeaveTypeName: app.LeaveTypeName,
			TotalDays:     app.TotalDays,
			IsPermission:  app.IsPermission,
			ActingRole:    caller.Role,
			Decision:      req.Decision,
		})

		update := models.LeaveStatusUpdate{
			ID:              app.ID,
			ExpectedStatus:  app.Status,
			Status:          outcome.Status,
			HODApproval:     app.HODApproval,
			AdminApproval:   app.AdminApproval,
			HODRemarks:      app.HODRemarks,
			AdminRemarks:    app.AdminRemarks,
			HODActionDate:   app.HODActionDate,
			AdminActionDate: app.AdminActionDate,
			ForwardedAt:     app.ForwardedAt,
			BalanceApplied:  app.BalanceApplied,
			LastUpdated:     now,
		}
		switch caller.Role {
		case models.RoleCentralAdmin:
			update.ForwardedAt = &now
		case models.RoleHOD:
			update.HODApproval = req.Decision
			update.HODRemarks = optionalString(remarks)
			update.HODActionDate = &now
		case models.RoleAdmin:
			update.AdminApproval = req.Decision
			update.AdminRemarks = optionalString(remarks)
			update.AdminActionDate = &now
		}
		applied = outcome.ApplyBalance && !app.BalanceApplied
		if applied {
			update.BalanceApplied = true
		}

		if err := st.Applications.UpdateDecision(ctx, update); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return appErrors.Clone(appErrors.ErrConflict, "leave application was modified concurrently")
			}
			return appErrors.Dependency(err, "failed to update leave application")
		}
		if applied {
			if err := s.balances.ApplyUsage(ctx, st.Balances, app.UserID, app.LeaveTypeID, now.Year(), app.TotalDays); err != nil {
				return err
			}
		}

		historyRemarks := remarks
		if caller.Role == models.RoleCentralAdmin && historyRemarks == "" {
			historyRemarks = "Forwarded to admin"
		}
		if err := st.History.Create(ctx, &models.LeaveHistory{
			ApplicationID: app.ID,
			StatusFrom:    &before,
			StatusTo:      outcome.Status,
			Remarks:       optionalString(historyRemarks),
			UpdatedBy:     caller.UserID,
			CreatedAt:     now,
		}); err != nil {
			return appErrors.Dependency(err, "failed to record leave history")
		}

		updated = *app
		updated.Status = update.Status
		updated.HODApproval = update.HODApproval
		updated.AdminApproval = update.AdminApproval
		updated.HODRemarks = update.HODRemarks
		updated.AdminRemarks = update.AdminRemarks
		updated.HODActionDate = update.HODActionDate
		updated.AdminActionDate = update.AdminActionDate
		updated.ForwardedAt = update.ForwardedAt
		updated.BalanceApplied = update.BalanceApplied
		updated.LastUpdated = now

		notice, err := s.decisionNotice(ctx, st, caller, updated, remarks)
		if err != nil {
			return err
		}
		email, err := s.notifier.Notify(ctx, st.Notifications, notice)
		if err != nil {
			return err
		}
		emails = append(emails, email)
		return nil
	})
	if err != nil {
		return nil, txError(err, "failed to record decision")
	}

	s.metrics.RecordTransition(before, updated.Status, caller.Role)
	if applied {
		s.metrics.RecordBalanceApplied()
		s.balances.Invalidate(ctx, updated.UserID)
	}
	s.notifier.Dispatch(emails...)
	s.logger.Info("leave application decided",
		zap.String("application_id", updated.ID),
		zap.String("actor_id", caller.UserID),
		zap.String("role", string(caller.Role)),
		zap.String("from", string(before)),
		zap.String("to", string(updated.Status)),
		zap.Bool("balance_applied", applied))
	return &updated, nil
}

// Cancel withdraws the caller's own application while it is still awaiting approval.
func (s *LeaveService) Cancel(ctx context.Context, caller models.Caller, applicationID string) (*models.LeaveApplicationDetail, error) {
	var (
		before    models.LeaveStatus
		cancelled models.LeaveApplicationDetail
	)
	err := s.tx.RunInTx(ctx, func(st LeaveStores) error {
		app, err := st.Applications.GetForUpdate(ctx, applicationID)
		if err != nil {
			return notFoundOr(err, "leave application not found", "failed to load leave application")
		}
		if app.UserID != caller.UserID {
			return appErrors.Clone(appErrors.ErrForbidden, "only the applicant can cancel a leave application")
		}
		if !app.Status.Cancellable() {
			return appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("leave application is %s and cannot be cancelled", app.Status))
		}

		now := s.now().UTC()
		before = app.Status
		if err := st.Applications.UpdateStatus(ctx, app.ID, app.Status, models.LeaveStatusCancelled, now); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return appErrors.Clone(appErrors.ErrConflict, "leave application was modified concurrently")
			}
			return appErrors.Dependency(err, "failed to cancel leave application")
		}
		if err := st.History.Create(ctx, &models.LeaveHistory{
			ApplicationID: app.ID,
			StatusFrom:    &before,
			StatusTo:      models.LeaveStatusCancelled,
			Remarks:       optionalString("Cancelled by applicant"),
			UpdatedBy:     caller.UserID,
			CreatedAt:     now,
		}); err != nil {
			return appErrors.Dependency(err, "failed to record leave history")
		}

		hod, err := st.Users.FindDepartmentHOD(ctx, app.DeptID)
		switch {
		case errors.Is(err, sql.ErrNoRows):
		case err != nil:
			return appErrors.Dependency(err, "failed to load department head")
		case hod.ID != app.UserID:
			if _, err := s.notifier.Notify(ctx, st.Notifications, Notice{
				UserID:  hod.ID,
				Title:   "Leave Application Cancelled",
				Message: fmt.Sprintf("Leave application #%s has been cancelled by the faculty member.", app.ID),
				Type:    models.NotificationWarning,
				Link:    "/leaves/" + app.ID,
			}); err != nil {
				return err
			}
		}

		cancelled = *app
		cancelled.Status = models.LeaveStatusCancelled
		cancelled.LastUpdated = now
		return nil
	})
	if err != nil {
		return nil, txError(err, "failed to cancel leave application")
	}

	s.metrics.RecordTransition(before, models.LeaveStatusCancelled, caller.Role)
	s.logger.Info("leave application cancelled", zap.String("application_id", cancelled.ID), zap.String("user_id", caller.UserID))
	return &cancelled, nil
}

// Get returns one application visible to the caller.
func (s *LeaveService) Get(ctx context.Context, caller models.Caller, applicationID string) (*models.LeaveApplicationDetail, error) {
	app, err := s.stores.Applications.GetDetail(ctx, applicationID)
	if err != nil {
		return nil, notFoundOr(err, "leave application not found", "failed to load leave application")
	}
	if !canView(caller, app) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "not allowed to view this leave application")
	}
	return app, nil
}

// ListMine returns the caller's own applications.
func (s *LeaveService) ListMine(ctx context.Context, caller models.Caller, query dto.LeaveListQuery) ([]models.LeaveApplicationDetail, *models.Pagination, error) {
	return s.list(ctx, models.LeaveFilter{UserID: caller.UserID, Status: query.Status, Page: query.Page, PageSize: query.PageSize})
}

// ListPendingApprovals returns the applications waiting on the caller's stage.
func (s *LeaveService) ListPendingApprovals(ctx context.Context, caller models.Caller, page, pageSize int) ([]models.LeaveApplicationDetail, *models.Pagination, error) {
	filter := models.LeaveFilter{Page: page, PageSize: pageSize}
	switch caller.Role {
	case models.RoleHOD:
		filter.DeptID = caller.DeptID
		filter.Status = []models.LeaveStatus{models.LeaveStatusPending}
	case models.RoleCentralAdmin, models.RoleAdmin:
		filter.Status = []models.LeaveStatus{models.LeaveStatusApprovedByHOD}
	default:
		return nil, nil, appErrors.Clone(appErrors.ErrForbidden, "role has no approval queue")
	}
	return s.list(ctx, filter)
}

// History returns the audit trail of an application visible to the caller.
func (s *LeaveService) History(ctx context.Context, caller models.Caller, applicationID string) ([]models.LeaveHistory, error) {
	if _, err := s.Get(ctx, caller, applicationID); err != nil {
		return nil, err
	}
	entries, err := s.stores.History.ListByApplication(ctx, applicationID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load leave history")
	}
	if entries == nil {
		entries = []models.LeaveHistory{}
	}
	return entries, nil
}

// WorkingDays counts Monday to Friday between two dates, inclusive.
func (s *LeaveService) WorkingDays(startRaw, endRaw string) (*dto.WorkingDaysResponse, error) {
	start, err := workdays.Parse(startRaw)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "startDate must be YYYY-MM-DD")
	}
	end, err := workdays.Parse(endRaw)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "endDate must be YYYY-MM-DD")
	}
	if end.Before(start) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "endDate cannot precede startDate")
	}
	return &dto.WorkingDaysResponse{StartDate: startRaw, EndDate: endRaw, WorkingDays: workdays.Count(start, end)}, nil
}

func (s *LeaveService) list(ctx context.Context, filter models.LeaveFilter) ([]models.LeaveApplicationDetail, *models.Pagination, error) {
	apps, total, err := s.stores.Applications.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list leave applications")
	}
	if apps == nil {
		apps = []models.LeaveApplicationDetail{}
	}
	return apps, models.NewPagination(filter.Page, filter.PageSize, total), nil
}

func (s *LeaveService) checkDocument(leaveType *models.LeaveType, path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		if leaveType.RequiresDocument {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("%s requires a supporting document", leaveType.Name))
		}
		return nil
	}
	if s.documents == nil {
		return nil
	}
	ok, err := s.documents.Exists(path)
	if err != nil {
		if errors.Is(err, storage.ErrInvalidPath) {
			return appErrors.Clone(appErrors.ErrValidation, "invalid document path")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check document")
	}
	if !ok {
		return appErrors.Clone(appErrors.ErrValidation, "supporting document not found")
	}
	return nil
}

func (s *LeaveService) decisionNotice(ctx context.Context, st LeaveStores, caller models.Caller, app models.LeaveApplicationDetail, remarks string) (Notice, error) {
	notice := Notice{UserID: app.UserID, Link: "/leaves/" + app.ID}
	withRemarks := func(msg string) string {
		if remarks == "" {
			return msg
		}
		return msg + " Remarks: " + remarks
	}

	switch {
	case app.Status == models.LeaveStatusRejected:
		stage := "HOD"
		if caller.Role == models.RoleAdmin {
			stage = "Admin"
		}
		notice.Title = "Leave Application Rejected"
		notice.Message = withRemarks(fmt.Sprintf("Your leave application has been rejected by %s.", stage))
		notice.Type = models.NotificationError
	case caller.Role == models.RoleCentralAdmin:
		notice.Title = "Leave Application Update"
		notice.Message = withRemarks("Your leave application has been forwarded to Admin for final approval.")
		notice.Type = models.NotificationInfo
		return notice, nil
	case caller.Role == models.RoleAdmin:
		notice.Title = "Leave Application Approved"
		notice.Message = withRemarks("Your leave application has been fully approved by Admin.")
		notice.Type = models.NotificationSuccess
	case app.Status == models.LeaveStatusApproved:
		notice.Title = "Leave Application Update"
		notice.Message = withRemarks("Your leave application has been fully approved.")
		notice.Type = models.NotificationSuccess
	default:
		notice.Title = "Leave Application Update"
		notice.Message = withRemarks("Your leave application has been approved by HOD.")
		notice.Type = models.NotificationInfo
		return notice, nil
	}

	approver, err := st.Users.FindByID(ctx, caller.UserID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return Notice{}, appErrors.Dependency(err, "failed to load approver")
	}
	data := s.mailData(app.LeaveApplication, app.ApplicantName, app.LeaveTypeName)
	data.Remarks = remarks
	if approver != nil {
		data.Approver = approver.FullName()
	}
	template := mailer.TemplateLeaveApproved
	if app.Status == models.LeaveStatusRejected {
		template = mailer.TemplateLeaveRejected
	}
	notice.Email = &EmailRequest{Template: template, Data: data}
	return notice, nil
}

func (s *LeaveService) mailData(app models.LeaveApplication, recipient, leaveType string) mailer.Data {
	data := mailer.Data{
		RecipientName: recipient,
		ApplicationID: app.ID,
		LeaveType:     leaveType,
		StartDate:     app.StartDate,
		EndDate:       app.EndDate,
		Reason:        app.Reason,
		IsPermission:  app.IsPermission,
		Link:          "/leaves/" + app.ID,
	}
	if app.PermissionSlot != nil {
		data.PermissionSlot = string(*app.PermissionSlot)
	}
	return data
}

func authorizeDecision(caller models.Caller, app *models.LeaveApplicationDetail) error {
	if app.Status.Terminal() {
		return appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("leave application is already %s", app.Status))
	}
	switch caller.Role {
	case models.RoleHOD:
		if app.DeptID != caller.DeptID {
			return appErrors.Clone(appErrors.ErrForbidden, "leave application belongs to another department")
		}
		if app.Status != models.LeaveStatusPending {
			return appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("leave application is %s, not awaiting HOD approval", app.Status))
		}
	case models.RoleCentralAdmin, models.RoleAdmin:
		if app.Status != models.LeaveStatusApprovedByHOD {
			return appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("leave application is %s, not awaiting admin approval", app.Status))
		}
		if caller.Role == models.RoleCentralAdmin && app.ForwardedAt != nil {
			return appErrors.Clone(appErrors.ErrConflict, "leave application was already forwarded to admin")
		}
	default:
		return appErrors.Clone(appErrors.ErrForbidden, "role cannot approve leave")
	}
	return nil
}

func canView(caller models.Caller, app *models.LeaveApplicationDetail) bool {
	switch {
	case app.UserID == caller.UserID, caller.Role.IsAdministrative():
		return true
	case caller.Role == models.RoleHOD:
		return app.DeptID == caller.DeptID
	default:
		return false
	}
}

func resolvePeriod(req dto.SubmitLeaveRequest) (leavePeriod, error) {
	if req.IsPermission {
		if !req.PermissionSlot.Valid() {
			return leavePeriod{}, appErrors.Clone(appErrors.ErrValidation, "permission slot must be morning or evening")
		}
		raw := req.StartDate
		if raw == "" && len(req.CasualDates) == 1 {
			raw = req.CasualDates[0]
		}
		if raw == "" {
			return leavePeriod{}, appErrors.Clone(appErrors.ErrValidation, "permission date is required")
		}
		if req.EndDate != "" && req.EndDate != raw {
			return leavePeriod{}, appErrors.Clone(appErrors.ErrValidation, "permission covers a single date")
		}
		date, err := workdays.Parse(raw)
		if err != nil {
			return leavePeriod{}, appErrors.Clone(appErrors.ErrValidation, "permission date must be YYYY-MM-DD")
		}
		days := workdays.Count(date, date)
		if days == 0 {
			return leavePeriod{}, appErrors.Clone(appErrors.ErrValidation, "permission date must be a working day")
		}
		slot := req.PermissionSlot
		return leavePeriod{start: date, end: date, days: days, slot: &slot}, nil
	}

	if len(req.CasualDates) > 0 {
		seen := make(map[string]time.Time, len(req.CasualDates))
		for _, raw := range req.CasualDates {
			date, err := workdays.Parse(raw)
			if err != nil {
				return leavePeriod{}, appErrors.Clone(appErrors.ErrValidation, "casual dates must be YYYY-MM-DD")
			}
			seen[raw] = date
		}
		dates := make([]time.Time, 0, len(seen))
		for _, d := range seen {
			dates = append(dates, d)
		}
		sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
		return leavePeriod{start: dates[0], end: dates[len(dates)-1], days: len(dates)}, nil
	}

	if req.StartDate == "" || req.EndDate == "" {
		return leavePeriod{}, appErrors.Clone(appErrors.ErrValidation, "startDate and endDate are required")
	}
	start, err := workdays.Parse(req.StartDate)
	if err != nil {
		return leavePeriod{}, appErrors.Clone(appErrors.ErrValidation, "startDate must be YYYY-MM-DD")
	}
	end, err := workdays.Parse(req.EndDate)
	if err != nil {
		return leavePeriod{}, appErrors.Clone(appErrors.ErrValidation, "endDate must be YYYY-MM-DD")
	}
	if end.Before(start) {
		return leavePeriod{}, appErrors.Clone(appErrors.ErrValidation, "endDate cannot precede startDate")
	}
	days := workdays.Count(start, end)
	if days == 0 {
		return leavePeriod{}, appErrors.Clone(appErrors.ErrValidation, "leave period contains no working days")
	}
	return leavePeriod{start: start, end: end, days: days}, nil
}

func resolveAdjustments(caller models.Caller, inputs []dto.ClassAdjustmentInput) ([]adjustmentRequest, error) {
	out := make([]adjustmentRequest, 0, len(inputs))
	for i, in := range inputs {
		if strings.TrimSpace(in.ColleagueID) == "" || strings.TrimSpace(in.Subject) == "" || strings.TrimSpace(in.ClassTime) == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("adjustment %d is incomplete", i+1))
		}
		if in.ColleagueID == caller.UserID {
			return nil, appErrors.Clone(appErrors.ErrValidation, "cannot assign a class adjustment to yourself")
		}
		date, err := workdays.Parse(in.ClassDate)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("adjustment %d has an invalid class date", i+1))
		}
		out = append(out, adjustmentRequest{input: in, classDate: date})
	}
	return out, nil
}

// txError keeps typed workflow errors and reports anything else as a dependency failure.
func txError(err error, message string) error {
	var appErr *appErrors.Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return appErrors.Dependency(err, message)
}
