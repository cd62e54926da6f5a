package routes

import (
	"github.com/labstack/echo/v4"

	"notifier/internal/handlers"
)

type Handlers struct {
	Health        *handlers.HealthHandler
	Notifications *handlers.NotificationHandler
	Internal      *handlers.InternalHandler
}

// Middleware holds the guards of each route group.
type Middleware struct {
	API      []echo.MiddlewareFunc
	Internal []echo.MiddlewareFunc
}

func SetupRoutes(e *echo.Echo, h Handlers, mw Middleware) {
	// Public routes
	e.GET("/health", h.Health.Check)

	// Protected routes
	api := e.Group("/api/v1", mw.API...)

	notifications := api.Group("/notifications")
	notifications.GET("", h.Notifications.List)
	notifications.DELETE("", h.Notifications.ClearAll)
	notifications.GET("/unread-count", h.Notifications.UnreadCount)
	notifications.GET("/workspaces", h.Notifications.WorkspaceCounts)
	notifications.POST("/mark-all-as-read", h.Notifications.MarkAllAsRead)
	notifications.GET("/:id", h.Notifications.Get)
	notifications.POST("/:id/mark-as-read", h.Notifications.MarkAsRead)

	// Service to service routes
	internal := e.Group("/internal", mw.Internal...)
	internal.POST("/events", h.Internal.PublishEvent)
	internal.GET("/tasks/:id", h.Internal.GetTaskStatus)
	internal.DELETE("/notifications/:id", h.Internal.DeleteNotification)
}
