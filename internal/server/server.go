package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"notifier/internal/auth"
	"notifier/internal/config"
	"notifier/internal/handlers"
	"notifier/internal/notification"
	"notifier/internal/routes"
)

const shutdownTimeout = 10 * time.Second

// New assembles the HTTP server with every route registered.
func New(cfg *config.Config, db *sqlx.DB, notifications *notification.Handler, queue handlers.EventQueue) (*echo.Echo, error) {
	limiter, err := auth.NewRateLimiter(cfg.RateLimit)
	if err != nil {
		return nil, err
	}

	e := newEcho()

	routes.SetupRoutes(e,
		routes.Handlers{
			Health:        handlers.NewHealthHandler(db),
			Notifications: handlers.NewNotificationHandler(notifications),
			Internal:      handlers.NewInternalHandler(queue, notifications),
		},
		routes.Middleware{
			API: []echo.MiddlewareFunc{
				auth.RateLimitMiddleware(limiter),
				auth.JWTMiddleware(cfg.Auth.JWTSecret),
			},
			Internal: []echo.MiddlewareFunc{
				auth.InternalTokenMiddleware(cfg.Auth.InternalToken),
			},
		},
	)

	return e, nil
}

// NewMonitoring serves the task dashboard of the worker under path.
func NewMonitoring(path string, dashboard http.Handler) *echo.Echo {
	e := newEcho()
	e.Any(path+"/*", echo.WrapHandler(dashboard))
	return e
}

func newEcho() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []any{
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency,
				"request_id", v.RequestID,
			}
			if v.Error != nil {
				slog.ErrorContext(c.Request().Context(), "Request failed", append(attrs, "error", v.Error)...)
				return nil
			}
			slog.InfoContext(c.Request().Context(), "Request handled", attrs...)
			return nil
		},
	}))

	return e
}

// Run serves e on addr until ctx is cancelled, then shuts it down gracefully.
func Run(ctx context.Context, e *echo.Echo, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "addr", addr)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down http server: %w", err)
	}

	slog.Info("HTTP server stopped")
	return nil
}
