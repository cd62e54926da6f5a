package worker

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/hibiken/asynq"
)

func loggingMiddleware(next asynq.Handler) asynq.Handler {
	return asynq.HandlerFunc(func(ctx context.Context, t *asynq.Task) error {
		start := time.Now()
		taskID, _ := asynq.GetTaskID(ctx)

		err := next.ProcessTask(ctx, t)

		slog.InfoContext(ctx, "Task processed",
			"type", t.Type(),
			"task_id", taskID,
			"duration", time.Since(start),
			"failed", err != nil)
		return err
	})
}

func logTaskError(ctx context.Context, t *asynq.Task, err error) {
	retried, _ := asynq.GetRetryCount(ctx)
	maxRetry, _ := asynq.GetMaxRetry(ctx)

	slog.ErrorContext(ctx, "Task failed",
		"type", t.Type(),
		"retried", retried,
		"max_retry", maxRetry,
		"error", err)
}

// logger adapts slog to asynq.Logger.
type logger struct {
	l *slog.Logger
}

func newLogger(l *slog.Logger) *logger {
	return &logger{l: l.With("component", "asynq")}
}

func (l *logger) Debug(args ...any) { l.l.Debug(fmt.Sprint(args...)) }
func (l *logger) Info(args ...any)  { l.l.Info(fmt.Sprint(args...)) }
func (l *logger) Warn(args ...any)  { l.l.Warn(fmt.Sprint(args...)) }
func (l *logger) Error(args ...any) { l.l.Error(fmt.Sprint(args...)) }

func (l *logger) Fatal(args ...any) {
	l.l.Error(fmt.Sprint(args...))
	os.Exit(1)
}
