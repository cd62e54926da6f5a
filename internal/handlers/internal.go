package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/hibiken/asynq"
	"github.com/labstack/echo/v4"

	"notifier/internal/events"
	"notifier/internal/notification"
)

// EventQueue hands events over to the worker.
type EventQueue interface {
	EnqueueEvent(ctx context.Context, e events.Event) (string, error)
	GetTaskStatus(taskID string) (*asynq.TaskInfo, error)
}

// InternalHandler serves the API used by other services.
type InternalHandler struct {
	queue         EventQueue
	notifications *notification.Handler
}

func NewInternalHandler(queue EventQueue, h *notification.Handler) *InternalHandler {
	return &InternalHandler{queue: queue, notifications: h}
}

type TaskStatus struct {
	ID          string     `json:"id"`
	Type        string     `json:"type"`
	State       string     `json:"state"`
	Retried     int        `json:"retried"`
	LastError   string     `json:"last_error,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// PublishEvent validates an event envelope and queues it for dispatch.
func (h *InternalHandler) PublishEvent(c echo.Context) error {
	var env events.Envelope
	if err := c.Bind(&env); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}

	e, err := env.Event()
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	taskID, err := h.queue.EnqueueEvent(c.Request().Context(), e)
	if err != nil {
		return internalError(c, "Failed to enqueue event", err)
	}

	return c.JSON(http.StatusAccepted, map[string]string{"task_id": taskID})
}

func (h *InternalHandler) GetTaskStatus(c echo.Context) error {
	info, err := h.queue.GetTaskStatus(c.Param("id"))
	if errors.Is(err, asynq.ErrTaskNotFound) || errors.Is(err, asynq.ErrQueueNotFound) {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Task not found"})
	}
	if err != nil {
		return internalError(c, "Failed to get task status", err)
	}

	status := TaskStatus{
		ID:        info.ID,
		Type:      info.Type,
		State:     info.State.String(),
		Retried:   info.Retried,
		LastError: info.LastErr,
	}
	if !info.CompletedAt.IsZero() {
		status.CompletedAt = &info.CompletedAt
	}

	return c.JSON(http.StatusOK, status)
}

func (h *InternalHandler) DeleteNotification(c echo.Context) error {
	notificationID, err := idParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	if err := h.notifications.DeleteNotification(c.Request().Context(), notificationID); err != nil {
		return notificationError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}
