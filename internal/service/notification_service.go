package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/faculty-leave-api/internal/models"
	appErrors "github.com/noah-isme/faculty-leave-api/pkg/errors"
	"github.com/noah-isme/faculty-leave-api/pkg/jobs"
	"github.com/noah-isme/faculty-leave-api/pkg/mailer"
)

// MailJobType identifies queued email jobs.
const MailJobType = "mail"

// EmailRequest is an email deferred until the enclosing transaction commits.
type EmailRequest struct {
	UserID   string
	Template string
	Data     mailer.Data
}

// Notice is an in-app notification, optionally paired with an email.
type Notice struct {
	UserID  string
	Title   string
	Message string
	Type    models.NotificationType
	Link    string
	Email   *EmailRequest
}

type mailEnqueuer interface {
	Enqueue(job jobs.Job) error
}

// NotificationService records in-app notifications and hands emails to the mail queue.
type NotificationService struct {
	store  notificationStore
	queue  mailEnqueuer
	logger *zap.Logger
	now    func() time.Time
}

// NewNotificationService constructs a NotificationService. queue may be nil when mail is disabled.
func NewNotificationService(store notificationStore, queue mailEnqueuer, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{store: store, queue: queue, logger: logger, now: time.Now}
}

// Notify inserts an unread notification through store, which is normally bound to the
// caller's transaction. The paired email, if any, is returned for dispatch after commit.
func (s *NotificationService) Notify(ctx context.Context, store notificationStore, notice Notice) (*EmailRequest, error) {
	if notice.UserID == "" || strings.TrimSpace(notice.Title) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "notification requires recipient and title")
	}
	if store == nil {
		store = s.store
	}
	n := &models.Notification{
		UserID:    notice.UserID,
		Title:     notice.Title,
		Message:   notice.Message,
		Type:      notice.Type,
		Link:      optionalString(notice.Link),
		CreatedAt: s.now().UTC(),
	}
	if err := store.Create(ctx, n); err != nil {
		return nil, appErrors.Dependency(err, "failed to record notification")
	}
	if notice.Email == nil {
		return nil, nil
	}
	email := *notice.Email
	if email.UserID == "" {
		email.UserID = notice.UserID
	}
	return &email, nil
}

// Dispatch enqueues committed emails. Failures are logged and never returned.
func (s *NotificationService) Dispatch(emails ...*EmailRequest) {
	for _, email := range emails {
		if email == nil {
			continue
		}
		if s.queue == nil {
			s.logger.Debug("mail queue disabled, email dropped", zap.String("template", email.Template), zap.String("user_id", email.UserID))
			continue
		}
		job := jobs.Job{ID: uuid.NewString(), Type: MailJobType, Payload: *email, Enqueued: s.now().UTC()}
		if err := s.queue.Enqueue(job); err != nil {
			s.logger.Warn("failed to enqueue email",
				zap.String("template", email.Template),
				zap.String("user_id", email.UserID),
				zap.Error(err))
		}
	}
}

// List returns the caller's notifications, newest first.
func (s *NotificationService) List(ctx context.Context, caller models.Caller, page, pageSize int, unreadOnly bool) ([]models.Notification, *models.Pagination, error) {
	items, total, err := s.store.List(ctx, models.NotificationFilter{UserID: caller.UserID, UnreadOnly: unreadOnly, Page: page, PageSize: pageSize})
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list notifications")
	}
	if items == nil {
		items = []models.Notification{}
	}
	return items, models.NewPagination(page, pageSize, total), nil
}

// MarkRead flags one of the caller's notifications as read.
func (s *NotificationService) MarkRead(ctx context.Context, caller models.Caller, id string) error {
	if err := s.store.MarkRead(ctx, id, caller.UserID, s.now().UTC()); err != nil {
		return notFoundOr(err, "notification not found", "failed to update notification")
	}
	return nil
}

// MarkAllRead flags every unread notification of the caller.
func (s *NotificationService) MarkAllRead(ctx context.Context, caller models.Caller) (int64, error) {
	updated, err := s.store.MarkAllRead(ctx, caller.UserID, s.now().UTC())
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update notifications")
	}
	return updated, nil
}

// CountUnread returns the caller's unread count.
func (s *NotificationService) CountUnread(ctx context.Context, caller models.Caller) (int, error) {
	count, err := s.store.CountUnread(ctx, caller.UserID)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count notifications")
	}
	return count, nil
}

// Delete removes one of the caller's notifications.
func (s *NotificationService) Delete(ctx context.Context, caller models.Caller, id string) error {
	if err := s.store.Delete(ctx, id, caller.UserID); err != nil {
		return notFoundOr(err, "notification not found", "failed to delete notification")
	}
	return nil
}

// CleanupOlderThan deletes read notifications older than days.
func (s *NotificationService) CleanupOlderThan(ctx context.Context, days int) (int64, error) {
	if days <= 0 {
		return 0, appErrors.Clone(appErrors.ErrValidation, "retention days must be positive")
	}
	cutoff := s.now().UTC().AddDate(0, 0, -days)
	removed, err := s.store.DeleteReadBefore(ctx, cutoff)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to clean up notifications")
	}
	return removed, nil
}

// RunCleanup purges old read notifications every interval until ctx is cancelled.
func (s *NotificationService) RunCleanup(ctx context.Context, interval time.Duration, days int) {
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.cleanupOnce(ctx, days)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.cleanupOnce(ctx, days)
		}
	}
}

func (s *NotificationService) cleanupOnce(ctx context.Context, days int) {
	removed, err := s.CleanupOlderThan(ctx, days)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			s.logger.Warn("notification cleanup failed", zap.Error(err))
		}
		return
	}
	s.logger.Info("notification cleanup completed", zap.Int64("removed", removed), zap.Int("retention_days", days))
}
