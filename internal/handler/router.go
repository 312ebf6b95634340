package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/faculty-leave-api/internal/middleware"
	"github.com/noah-isme/faculty-leave-api/internal/models"
)

// Handlers groups every HTTP handler mounted under the API prefix.
type Handlers struct {
	Leaves           *LeaveHandler
	Balances         *BalanceHandler
	ClassAdjustments *ClassAdjustmentHandler
	Notifications    *NotificationHandler
	Directory        *DirectoryHandler
	Reports          *ReportHandler
	Documents        *DocumentHandler
}

// RegisterRoutes mounts the API on group. Everything except document downloads requires a
// verified bearer token.
func RegisterRoutes(group *gin.RouterGroup, h Handlers, tokens middleware.TokenValidator) {
	group.GET("/documents/:token", h.Documents.Download)

	api := group.Group("")
	api.Use(middleware.JWT(tokens))

	approvers := middleware.RequireRoles(models.RoleHOD, models.RoleCentralAdmin, models.RoleAdmin)

	leaves := api.Group("/leaves")
	leaves.POST("", h.Leaves.Submit)
	leaves.GET("/mine", h.Leaves.Mine)
	leaves.GET("/pending", approvers, h.Leaves.Pending)
	leaves.GET("/working-days", h.Leaves.WorkingDays)
	leaves.GET("/:id", h.Leaves.Get)
	leaves.GET("/:id/history", h.Leaves.History)
	leaves.GET("/:id/adjustments", h.Leaves.Adjustments)
	leaves.GET("/:id/document", h.Leaves.Document)
	leaves.POST("/:id/decision", approvers, h.Leaves.Decide)
	leaves.POST("/:id/cancel", h.Leaves.Cancel)

	api.GET("/leave-types", h.Directory.LeaveTypes)
	api.GET("/faculty/search", h.Directory.SearchFaculty)
	api.GET("/balances", h.Balances.List)

	adjustments := api.Group("/class-adjustments")
	adjustments.GET("", h.ClassAdjustments.List)
	adjustments.POST("/:id/respond", h.ClassAdjustments.Respond)

	notifications := api.Group("/notifications")
	notifications.GET("", h.Notifications.List)
	notifications.GET("/unread-count", h.Notifications.UnreadCount)
	notifications.POST("/read-all", h.Notifications.MarkAllRead)
	notifications.POST("/:id/read", h.Notifications.MarkRead)
	notifications.DELETE("/:id", h.Notifications.Delete)

	api.GET("/departments/summary", approvers, h.Reports.DepartmentSummary)
	reports := api.Group("/reports", approvers)
	reports.GET("/leaves", h.Reports.Leaves)
	reports.GET("/leaves/export", h.Reports.Export)
}
