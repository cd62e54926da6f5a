package main

import (
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"notifier/internal/db"
	"notifier/internal/migrations"
	"notifier/internal/notification"
	"notifier/internal/producers"
)

// app holds what both the HTTP server and the worker need.
type app struct {
	db            *sqlx.DB
	notifications *notification.Handler
}

func newApp(migrate bool) (*app, error) {
	if migrate {
		if err := migrations.Up(cfg.DB); err != nil {
			return nil, err
		}
	}

	conn, err := db.Open(cfg.DB)
	if err != nil {
		return nil, err
	}

	registry, err := producers.NewRegistry()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to build notification registry: %w", err)
	}

	store := notification.NewStore(conn, slog.Default().With("component", "store"))

	return &app{
		db:            conn,
		notifications: notification.NewHandler(store, registry),
	}, nil
}

func (a *app) Close() {
	if err := a.db.Close(); err != nil {
		slog.Error("Failed to close database", "error", err)
	}
}
