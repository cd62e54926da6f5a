package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"notifier/internal/events"
	"notifier/internal/producers"
	"notifier/internal/server"
	"notifier/internal/worker"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Dispatches queued events and purges cleared notifications",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(false)
		if err != nil {
			return err
		}
		defer a.Close()

		dispatcher := events.NewDispatcher()
		if err := producers.Register(dispatcher, a.notifications); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if cfg.Worker.MonitoringAddr != "" {
			dashboard := worker.NewMonitor(cfg.Redis.Addr)
			defer dashboard.Close()

			monitoring := server.NewMonitoring(worker.MonitoringPath, dashboard)
			go func() {
				if err := server.Run(ctx, monitoring, cfg.Worker.MonitoringAddr); err != nil {
					slog.Error("Monitoring server failed", "error", err)
				}
			}()
		}

		w := worker.NewWorker(cfg.Redis.Addr, cfg.Worker, dispatcher, a.notifications)
		return w.Start(ctx)
	},
}
