package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"notifier/internal/config"
	"notifier/internal/events"
	"notifier/internal/queue"
)

// Publisher delivers a decoded event to its subscribers.
type Publisher interface {
	Publish(ctx context.Context, e events.Event) error
}

type Maintainer interface {
	DeleteAllClearedNotifications(ctx context.Context) (int64, error)
}

type Worker struct {
	server     *asynq.Server
	scheduler  *asynq.Scheduler
	cfg        config.WorkerConfig
	publisher  Publisher
	maintainer Maintainer
}

func NewWorker(redisAddr string, cfg config.WorkerConfig, publisher Publisher, maintainer Maintainer) *Worker {
	redisOpt := asynq.RedisClientOpt{Addr: redisAddr}

	server := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency: cfg.Concurrency,
			Queues: map[string]int{
				queue.QueueEvents:      10,
				queue.QueueMaintenance: 1,
			},
			Logger:       newLogger(slog.Default()),
			ErrorHandler: asynq.ErrorHandlerFunc(logTaskError),
		},
	)

	scheduler := asynq.NewScheduler(redisOpt, &asynq.SchedulerOpts{
		Location: time.UTC,
		Logger:   newLogger(slog.Default()),
	})

	return &Worker{
		server:     server,
		scheduler:  scheduler,
		cfg:        cfg,
		publisher:  publisher,
		maintainer: maintainer,
	}
}

// Mux routes every task type handled by the worker.
func (w *Worker) Mux() *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.Use(loggingMiddleware)

	mux.HandleFunc(queue.TaskDispatchEvent, w.HandleDispatchEvent)
	mux.HandleFunc(queue.TaskPurgeCleared, w.HandlePurgeCleared)

	return mux
}

// Start processes tasks and runs the purge schedule until ctx is done.
func (w *Worker) Start(ctx context.Context) error {
	spec := fmt.Sprintf("@every %s", w.cfg.PurgeInterval)
	if _, err := w.scheduler.Register(spec, queue.NewPurgeClearedTask(),
		asynq.Queue(queue.QueueMaintenance),
		asynq.MaxRetry(0),
	); err != nil {
		return fmt.Errorf("failed to schedule purge of cleared notifications: %w", err)
	}

	slog.Info("Starting worker",
		"queues", []string{queue.QueueEvents, queue.QueueMaintenance},
		"concurrency", w.cfg.Concurrency,
		"purge_interval", w.cfg.PurgeInterval)

	if err := w.server.Start(w.Mux()); err != nil {
		return err
	}

	if err := w.scheduler.Start(); err != nil {
		w.server.Shutdown()
		return err
	}

	slog.Info("Worker started successfully")

	<-ctx.Done()

	w.scheduler.Shutdown()
	w.server.Shutdown()
	slog.Info("Worker stopped")
	return nil
}

func (w *Worker) HandleDispatchEvent(ctx context.Context, t *asynq.Task) error {
	e, err := events.Decode(t.Payload())
	if err != nil {
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}

	if err := w.publisher.Publish(ctx, e); err != nil {
		return fmt.Errorf("failed to dispatch %s event: %w", e.Kind(), err)
	}

	slog.InfoContext(ctx, "Event dispatched", "kind", e.Kind())
	return nil
}

func (w *Worker) HandlePurgeCleared(ctx context.Context, _ *asynq.Task) error {
	deleted, err := w.maintainer.DeleteAllClearedNotifications(ctx)
	if err != nil {
		return fmt.Errorf("failed to purge cleared notifications: %w", err)
	}

	slog.InfoContext(ctx, "Purged cleared notifications", "deleted", deleted)
	return nil
}
