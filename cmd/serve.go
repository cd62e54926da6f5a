package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"notifier/internal/queue"
	"notifier/internal/server"
)

var serveMigrate bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Runs the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(serveMigrate)
		if err != nil {
			return err
		}
		defer a.Close()

		q := queue.NewClient(cfg.Redis.Addr)
		defer func() {
			if err := q.Close(); err != nil {
				slog.Error("Failed to close task queue", "error", err)
			}
		}()

		e, err := server.New(cfg, a.db, a.notifications, q)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return server.Run(ctx, e, cfg.HTTPAddr)
	},
}

func init() {
	serveCmd.Flags().BoolVar(&serveMigrate, "migrate", false, "apply pending migrations before starting")
}
