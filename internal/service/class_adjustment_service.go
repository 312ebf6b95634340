package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/faculty-leave-api/internal/dto"
	"github.com/noah-isme/faculty-leave-api/internal/models"
	appErrors "github.com/noah-isme/faculty-leave-api/pkg/errors"
	"github.com/noah-isme/faculty-leave-api/pkg/mailer"
)

// ClassAdjustmentService handles colleagues' responses to class coverage requests.
type ClassAdjustmentService struct {
	stores    LeaveStores
	tx        TxRunner
	notifier  *NotificationService
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewClassAdjustmentService constructs a ClassAdjustmentService.
func NewClassAdjustmentService(stores LeaveStores, tx TxRunner, notifier *NotificationService, validate *validator.Validate, logger *zap.Logger) *ClassAdjustmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ClassAdjustmentService{stores: stores, tx: tx, notifier: notifier, validator: validate, logger: logger, now: time.Now}
}

// Respond accepts or rejects a pending adjustment addressed to the caller. The parent
// application's approval chain is unaffected.
func (s *ClassAdjustmentService) Respond(ctx context.Context, caller models.Caller, adjustmentID string, req dto.RespondAdjustmentRequest) (*models.ClassAdjustmentDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid adjustment response")
	}
	remarks := strings.TrimSpace(req.Remarks)

	var (
		result models.ClassAdjustmentDetail
		email  *EmailRequest
	)
	err := s.tx.RunInTx(ctx, func(st LeaveStores) error {
		adj, err := st.Adjustments.GetForUpdate(ctx, adjustmentID)
		if err != nil {
			return notFoundOr(err, "class adjustment not found", "failed to load class adjustment")
		}
		if adj.AdjustedBy != caller.UserID {
			return appErrors.Clone(appErrors.ErrForbidden, "class adjustment is assigned to another colleague")
		}
		if adj.Status != models.AdjustmentPending {
			return appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("class adjustment already %s", adj.Status))
		}

		now := s.now().UTC()
		if err := st.Adjustments.Respond(ctx, adj.ID, req.Decision, optionalString(remarks), now); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return appErrors.Clone(appErrors.ErrConflict, "class adjustment was modified concurrently")
			}
			return appErrors.Dependency(err, "failed to update class adjustment")
		}

		result = *adj
		result.Status = req.Decision
		result.Remarks = optionalString(remarks)
		result.RespondedAt = &now

		verb, title, kind, template := "accepted", "Class Adjustment Accepted", models.NotificationSuccess, mailer.TemplateClassAdjustmentApproved
		if req.Decision == models.AdjustmentRejected {
			verb, title, kind, template = "declined", "Class Adjustment Declined", models.NotificationWarning, mailer.TemplateClassAdjustmentRejected
		}
		message := fmt.Sprintf("%s has %s your request to take %s on %s (%s).",
			adj.ColleagueName, verb, adj.Subject, adj.ClassDate.Format("02-01-2006"), adj.ClassTime)
		if remarks != "" {
			message += " Remarks: " + remarks
		}

		var nerr error
		email, nerr = s.notifier.Notify(ctx, st.Notifications, Notice{
			UserID:  adj.ApplicantID,
			Title:   title,
			Message: message,
			Type:    kind,
			Link:    "/leaves/" + adj.ApplicationID,
			Email: &EmailRequest{Template: template, Data: mailer.Data{
				RecipientName: adj.ApplicantName,
				ApplicationID: adj.ApplicationID,
				ColleagueName: adj.ColleagueName,
				StartDate:     adj.LeaveStartDate,
				EndDate:       adj.LeaveEndDate,
				ClassDate:     adj.ClassDate,
				ClassTime:     adj.ClassTime,
				Subject:       adj.Subject,
				ClassDetails:  derefString(adj.ClassDetails),
				Remarks:       remarks,
				Link:          "/leaves/" + adj.ApplicationID,
			}},
		})
		return nerr
	})
	if err != nil {
		return nil, txError(err, "failed to respond to class adjustment")
	}

	s.notifier.Dispatch(email)
	s.logger.Info("class adjustment answered",
		zap.String("adjustment_id", result.ID),
		zap.String("application_id", result.ApplicationID),
		zap.String("status", string(result.Status)))
	return &result, nil
}

// ListForColleague returns the adjustments addressed to the caller.
func (s *ClassAdjustmentService) ListForColleague(ctx context.Context, caller models.Caller, pendingOnly bool) ([]models.ClassAdjustmentDetail, error) {
	items, err := s.stores.Adjustments.ListForColleague(ctx, caller.UserID, pendingOnly)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list class adjustments")
	}
	if items == nil {
		items = []models.ClassAdjustmentDetail{}
	}
	return items, nil
}

// ListByApplication returns every adjustment requested by one application. Visible to
// whoever may view the application and to the colleagues it names.
func (s *ClassAdjustmentService) ListByApplication(ctx context.Context, caller models.Caller, applicationID string) ([]models.ClassAdjustmentDetail, error) {
	app, err := s.stores.Applications.GetDetail(ctx, applicationID)
	if err != nil {
		return nil, notFoundOr(err, "leave application not found", "failed to load leave application")
	}
	items, err := s.stores.Adjustments.ListByApplication(ctx, applicationID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list class adjustments")
	}
	if !canView(caller, app) && !namesColleague(items, caller.UserID) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "not allowed to view these class adjustments")
	}
	if items == nil {
		items = []models.ClassAdjustmentDetail{}
	}
	return items, nil
}

func namesColleague(items []models.ClassAdjustmentDetail, userID string) bool {
	for _, item := range items {
		if item.AdjustedBy == userID {
			return true
		}
	}
	return false
}
