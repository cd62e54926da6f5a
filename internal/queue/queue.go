package queue

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"notifier/internal/events"
)

const (
	QueueEvents      = "events"
	QueueMaintenance = "maintenance"
)

const (
	TaskDispatchEvent = "event:dispatch"
	TaskPurgeCleared  = "notifications:purge_cleared"
)

type Client struct {
	client    *asynq.Client
	inspector *asynq.Inspector
}

// NewClient connects the task queue to Redis.
func NewClient(redisAddr string) *Client {
	redisOpt := asynq.RedisClientOpt{Addr: redisAddr}

	slog.Info("Successfully initialized task queue", "redis_addr", redisAddr)
	return &Client{
		client:    asynq.NewClient(redisOpt),
		inspector: asynq.NewInspector(redisOpt),
	}
}

// NewDispatchEventTask wraps e in a task for the worker's dispatcher.
func NewDispatchEventTask(e events.Event) (*asynq.Task, error) {
	payload, err := events.Encode(e)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskDispatchEvent, payload), nil
}

func NewPurgeClearedTask() *asynq.Task {
	return asynq.NewTask(TaskPurgeCleared, nil)
}

// EnqueueEvent queues e for asynchronous dispatch and returns the task ID.
// Events are not retried; a failed dispatch is archived for inspection.
func (c *Client) EnqueueEvent(ctx context.Context, e events.Event) (string, error) {
	task, err := NewDispatchEventTask(e)
	if err != nil {
		return "", err
	}

	info, err := c.client.EnqueueContext(ctx, task,
		asynq.TaskID(uuid.NewString()),
		asynq.Queue(QueueEvents),
		asynq.MaxRetry(0),
		asynq.Timeout(time.Minute),
		asynq.Retention(24*time.Hour),
	)
	if err != nil {
		return "", fmt.Errorf("failed to enqueue %s event: %w", e.Kind(), err)
	}

	slog.DebugContext(ctx, "Event enqueued", "kind", e.Kind(), "task_id", info.ID)
	return info.ID, nil
}

// GetTaskStatus returns the current state of an event task.
func (c *Client) GetTaskStatus(taskID string) (*asynq.TaskInfo, error) {
	info, err := c.inspector.GetTaskInfo(QueueEvents, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to get task info: %w", err)
	}
	return info, nil
}

func (c *Client) Close() error {
	if err := c.inspector.Close(); err != nil {
		return err
	}
	return c.client.Close()
}
