package models

import "time"

// NotificationType classifies in-app notifications.
type NotificationType string

const (
	NotificationInfo    NotificationType = "info"
	NotificationSuccess NotificationType = "success"
	NotificationWarning NotificationType = "warning"
	NotificationError   NotificationType = "error"
)

// Notification is an in-app message for one user.
type Notification struct {
	ID        string           `db:"notification_id" json:"id"`
	UserID    string           `db:"user_id" json:"userId"`
	Title     string           `db:"title" json:"title"`
	Message   string           `db:"message" json:"message"`
	Type      NotificationType `db:"type" json:"type"`
	Link      *string          `db:"link" json:"link,omitempty"`
	IsRead    bool             `db:"is_read" json:"isRead"`
	ReadAt    *time.Time       `db:"read_at" json:"readAt,omitempty"`
	CreatedAt time.Time        `db:"created_at" json:"createdAt"`
}

// NotificationFilter constrains notification listings.
type NotificationFilter struct {
	UserID     string
	UnreadOnly bool
	Page       int
	PageSize   int
}
