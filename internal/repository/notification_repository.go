package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/faculty-leave-api/internal/models"
)

// NotificationRepository stores in-app notifications.
type NotificationRepository struct {
	db sqlx.ExtContext
}

// NewNotificationRepository constructs the repository over a pool or a transaction.
func NewNotificationRepository(db sqlx.ExtContext) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Create inserts an unread notification.
func (r *NotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.Type == "" {
		n.Type = models.NotificationInfo
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	n.IsRead = false
	const query = `INSERT INTO notifications (notification_id, user_id, title, message, type, link, is_read, created_at)
	VALUES (:notification_id, :user_id, :title, :message, :type, :link, :is_read, :created_at)`
	if _, err := sqlx.NamedExecContext(ctx, r.db, query, n); err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	return nil
}

// List returns a user's notifications newest first with the total count.
func (r *NotificationRepository) List(ctx context.Context, filter models.NotificationFilter) ([]models.Notification, int, error) {
	where := " WHERE user_id = $1"
	if filter.UnreadOnly {
		where += " AND is_read = FALSE"
	}

	var total int
	if err := sqlx.GetContext(ctx, r.db, &total, "SELECT COUNT(*) FROM notifications"+where, filter.UserID); err != nil {
		return nil, 0, fmt.Errorf("count notifications: %w", err)
	}

	page, size := models.NormalizePage(filter.Page, filter.PageSize)
	query := `SELECT notification_id, user_id, title, message, type, link, is_read, read_at, created_at FROM notifications` +
		where + fmt.Sprintf(" ORDER BY created_at DESC LIMIT %d OFFSET %d", size, (page-1)*size)
	var list []models.Notification
	if err := sqlx.SelectContext(ctx, r.db, &list, query, filter.UserID); err != nil {
		return nil, 0, fmt.Errorf("list notifications: %w", err)
	}
	return list, total, nil
}

// MarkRead flags one notification owned by the user. Returns sql.ErrNoRows when absent.
func (r *NotificationRepository) MarkRead(ctx context.Context, id, userID string, at time.Time) error {
	const query = `UPDATE notifications SET is_read = TRUE, read_at = COALESCE(read_at, $1)
	WHERE notification_id = $2 AND user_id = $3`
	result, err := r.db.ExecContext(ctx, query, at, id, userID)
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	return requireAffected(result, "notification")
}

// MarkAllRead flags every unread notification of the user.
func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID string, at time.Time) (int64, error) {
	const query = `UPDATE notifications SET is_read = TRUE, read_at = $1 WHERE user_id = $2 AND is_read = FALSE`
	result, err := r.db.ExecContext(ctx, query, at, userID)
	if err != nil {
		return 0, fmt.Errorf("mark all notifications read: %w", err)
	}
	return result.RowsAffected()
}

// CountUnread returns the number of unread notifications.
func (r *NotificationRepository) CountUnread(ctx context.Context, userID string) (int, error) {
	var count int
	const query = `SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND is_read = FALSE`
	if err := sqlx.GetContext(ctx, r.db, &count, query, userID); err != nil {
		return 0, fmt.Errorf("count unread notifications: %w", err)
	}
	return count, nil
}

// Delete removes one notification owned by the user. Returns sql.ErrNoRows when absent.
func (r *NotificationRepository) Delete(ctx context.Context, id, userID string) error {
	const query = `DELETE FROM notifications WHERE notification_id = $1 AND user_id = $2`
	result, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("delete notification: %w", err)
	}
	return requireAffected(result, "notification")
}

// DeleteReadBefore purges read notifications created before the cutoff.
func (r *NotificationRepository) DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	const query = `DELETE FROM notifications WHERE is_read = TRUE AND created_at < $1`
	result, err := r.db.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("cleanup notifications: %w", err)
	}
	return result.RowsAffected()
}
