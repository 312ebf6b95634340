package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/faculty-leave-api/internal/dto"
	"github.com/noah-isme/faculty-leave-api/internal/models"
	"github.com/noah-isme/faculty-leave-api/pkg/response"
)

type notificationService interface {
	List(ctx context.Context, caller models.Caller, page, pageSize int, unreadOnly bool) ([]models.Notification, *models.Pagination, error)
	MarkRead(ctx context.Context, caller models.Caller, id string) error
	MarkAllRead(ctx context.Context, caller models.Caller) (int64, error)
	CountUnread(ctx context.Context, caller models.Caller) (int, error)
	Delete(ctx context.Context, caller models.Caller, id string) error
}

// NotificationHandler exposes the in-app inbox.
type NotificationHandler struct {
	service notificationService
}

// NewNotificationHandler constructs the handler.
func NewNotificationHandler(service notificationService) *NotificationHandler {
	return &NotificationHandler{service: service}
}

// List godoc
// @Summary List the caller's notifications
// @Tags Notifications
// @Produce json
// @Param unread query bool false "Only unread"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /notifications [get]
func (h *NotificationHandler) List(c *gin.Context) {
	caller, ok := callerFromContext(c)
	if !ok {
		return
	}
	page, size := pageParams(c)
	items, pagination, err := h.service.List(c.Request.Context(), caller, page, size, queryBool(c, "unread"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination)
}

// UnreadCount godoc
// @Summary Count unread notifications
// @Tags Notifications
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /notifications/unread-count [get]
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	caller, ok := callerFromContext(c)
	if !ok {
		return
	}
	count, err := h.service.CountUnread(c.Request.Context(), caller)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.UnreadCountResponse{Unread: count})
}

// MarkRead godoc
// @Summary Mark one notification read
// @Tags Notifications
// @Param id path string true "Notification ID"
// @Success 204
// @Router /notifications/{id}/read [post]
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	caller, ok := callerFromContext(c)
	if !ok {
		return
	}
	if err := h.service.MarkRead(c.Request.Context(), caller, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// MarkAllRead godoc
// @Summary Mark every notification read
// @Tags Notifications
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /notifications/read-all [post]
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	caller, ok := callerFromContext(c)
	if !ok {
		return
	}
	updated, err := h.service.MarkAllRead(c.Request.Context(), caller)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.MarkAllReadResponse{Updated: updated})
}

// Delete godoc
// @Summary Delete a notification
// @Tags Notifications
// @Param id path string true "Notification ID"
// @Success 204
// @Router /notifications/{id} [delete]
func (h *NotificationHandler) Delete(c *gin.Context) {
	caller, ok := callerFromContext(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), caller, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
