package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"notifier/internal/auth"
	"notifier/internal/notification"
)

const (
	defaultPageSize = 50
	maxPageSize     = 100
)

var validate = validator.New()

type NotificationHandler struct {
	notifications *notification.Handler
}

func NewNotificationHandler(h *notification.Handler) *NotificationHandler {
	return &NotificationHandler{notifications: h}
}

// NotificationView is a notification as seen by one recipient.
type NotificationView struct {
	ID          int64                `json:"id"`
	Type        string               `json:"type"`
	SenderID    *int64               `json:"sender_id"`
	WorkspaceID *int64               `json:"workspace_id"`
	CreatedAt   time.Time            `json:"created_on"`
	Read        bool                 `json:"read"`
	Data        notification.Payload `json:"data"`
}

func newNotificationView(r notification.Recipient) NotificationView {
	return NotificationView{
		ID:          r.Notification.ID,
		Type:        r.Notification.Type,
		SenderID:    r.Notification.SenderID,
		WorkspaceID: r.Notification.WorkspaceID,
		CreatedAt:   r.Notification.CreatedAt,
		Read:        r.Read,
		Data:        r.Notification.Data,
	}
}

type ListResponse struct {
	Count       int                `json:"count"`
	UnreadCount int                `json:"unread_count"`
	Results     []NotificationView `json:"results"`
}

type pageParams struct {
	Limit  int `validate:"min=1,max=100"`
	Offset int `validate:"min=0"`
}

type WorkspaceUnreadCount struct {
	WorkspaceID              int64 `json:"workspace_id"`
	UnreadNotificationsCount int   `json:"unread_notifications_count"`
}

func (h *NotificationHandler) List(c echo.Context) error {
	userID, _ := auth.UserID(c)
	ctx := c.Request().Context()

	workspaceID, err := workspaceParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	page := pageParams{Limit: defaultPageSize}
	if err := echo.QueryParamsBinder(c).
		Int("limit", &page.Limit).
		Int("offset", &page.Offset).
		BindError(); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid pagination parameters"})
	}
	if err := validate.Struct(page); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": fmt.Sprintf("limit must be between 1 and %d and offset must not be negative", maxPageSize),
		})
	}

	query := h.notifications.ListNotifications(userID, workspaceID)

	count, err := query.Count(ctx)
	if err != nil {
		return internalError(c, "Failed to count notifications", err)
	}

	unread, err := query.Unread().Count(ctx)
	if err != nil {
		return internalError(c, "Failed to count unread notifications", err)
	}

	recipients, err := query.Page(ctx, page.Limit, page.Offset)
	if err != nil {
		return internalError(c, "Failed to list notifications", err)
	}

	results := make([]NotificationView, 0, len(recipients))
	for _, r := range recipients {
		results = append(results, newNotificationView(r))
	}

	return c.JSON(http.StatusOK, ListResponse{
		Count:       count,
		UnreadCount: unread,
		Results:     results,
	})
}

func (h *NotificationHandler) Get(c echo.Context) error {
	userID, _ := auth.UserID(c)

	notificationID, err := idParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	r, err := h.notifications.GetNotificationByID(c.Request().Context(), userID, notificationID)
	if err != nil {
		return notificationError(c, err)
	}

	return c.JSON(http.StatusOK, newNotificationView(*r))
}

func (h *NotificationHandler) UnreadCount(c echo.Context) error {
	userID, _ := auth.UserID(c)

	workspaceID, err := workspaceParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	count, err := h.notifications.GetUnreadNotificationsCount(c.Request().Context(), userID, workspaceID)
	if err != nil {
		return internalError(c, "Failed to count unread notifications", err)
	}

	return c.JSON(http.StatusOK, map[string]int{"unread_count": count})
}

// WorkspaceCounts reports the unread count of every requested workspace in
// one query.
func (h *NotificationHandler) WorkspaceCounts(c echo.Context) error {
	userID, _ := auth.UserID(c)

	var workspaceIDs []int64
	if err := echo.QueryParamsBinder(c).Int64s("workspace_id", &workspaceIDs).BindError(); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid workspace_id"})
	}
	if err := validate.Var(workspaceIDs, "required,max=500,dive,gt=0"); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "At least one valid workspace_id is required"})
	}

	annotated, err := notification.AnnotateWorkspacesWithUnreadCount(c.Request().Context(), h.notifications, userID, workspaceIDs,
		func(id int64) int64 { return id })
	if err != nil {
		return internalError(c, "Failed to count unread notifications", err)
	}

	counts := make([]WorkspaceUnreadCount, 0, len(annotated))
	for _, a := range annotated {
		counts = append(counts, WorkspaceUnreadCount{
			WorkspaceID:              a.Item,
			UnreadNotificationsCount: a.UnreadNotificationsCount,
		})
	}

	return c.JSON(http.StatusOK, counts)
}

func (h *NotificationHandler) MarkAsRead(c echo.Context) error {
	userID, _ := auth.UserID(c)

	notificationID, err := idParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	if err := h.notifications.MarkNotificationAsRead(c.Request().Context(), userID, notificationID); err != nil {
		return internalError(c, "Failed to mark notification as read", err)
	}

	return c.NoContent(http.StatusNoContent)
}

func (h *NotificationHandler) MarkAllAsRead(c echo.Context) error {
	userID, _ := auth.UserID(c)

	workspaceID, err := workspaceParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	updated, err := h.notifications.MarkAllNotificationsAsRead(c.Request().Context(), userID, workspaceID)
	if err != nil {
		return internalError(c, "Failed to mark notifications as read", err)
	}

	return c.JSON(http.StatusOK, map[string]int64{"updated": updated})
}

func (h *NotificationHandler) ClearAll(c echo.Context) error {
	userID, _ := auth.UserID(c)

	workspaceID, err := workspaceParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	result, err := h.notifications.ClearAllNotifications(c.Request().Context(), userID, workspaceID)
	if err != nil {
		return internalError(c, "Failed to clear notifications", err)
	}

	return c.JSON(http.StatusOK, result)
}

func notificationError(c echo.Context, err error) error {
	switch {
	case notification.IsNotFound(err):
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Notification not found"})
	case errors.Is(err, notification.ErrInvalidNotification),
		errors.Is(err, notification.ErrUnknownNotificationType):
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	default:
		return internalError(c, "Notification request failed", err)
	}
}

func internalError(c echo.Context, msg string, err error) error {
	slog.ErrorContext(c.Request().Context(), msg, "error", err, "path", c.Path())
	return c.JSON(http.StatusInternalServerError, map[string]string{"error": msg})
}
