package main

import (
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ahmetcoskunkizilkaya/recipe-api/internal/cache"
	"github.com/ahmetcoskunkizilkaya/recipe-api/internal/database"
	"github.com/ahmetcoskunkizilkaya/recipe-api/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/recipe-api/internal/logging"
	"github.com/ahmetcoskunkizilkaya/recipe-api/internal/routes"
	"github.com/ahmetcoskunkizilkaya/recipe-api/internal/services"
	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	// Structured logging (JSON to stdout)
	logging.Setup()

	rt, err := bootstrap()
	if err != nil {
		return err
	}
	cfg := rt.cfg

	if cfg.JWTSecret == "" {
		_ = database.Close(rt.db)
		return errors.New("JWT_SECRET environment variable is required")
	}

	// DB log sink (ERROR+ async batch) with 30-day retention
	pgLogHandler := logging.AttachDB(rt.db)
	cleanupDone := make(chan struct{})
	logging.StartCleanup(rt.db, cleanupDone)

	// Sentry error tracking
	var pre []fiber.Handler
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      cfg.AppEnv,
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		} else {
			pre = append(pre, sentryfiber.New(sentryfiber.Options{
				Repanic:         true,
				WaitForDelivery: false,
			}))
		}
	}

	// Shared rate limit counters when Redis is configured
	var limiterStorage fiber.Storage
	redisStorage, redisErr := cache.NewRedisStorage(cfg)
	if redisErr != nil {
		slog.Warn("redis unavailable, using in-memory rate limits", "addr", cfg.RedisAddr, "error", redisErr)
	} else if redisStorage != nil {
		limiterStorage = redisStorage
		slog.Info("redis rate limit storage enabled", "addr", cfg.RedisAddr)
	}

	userService := services.NewUserService(rt.db, cfg)

	app := routes.NewApp(cfg, pre...)
	routes.Setup(app, cfg, rt.db, limiterStorage,
		handlers.NewUserHandler(userService),
		handlers.NewHealthHandler(rt.db),
		handlers.NewAdminHandler(userService),
		rt.plugins,
	)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	listenErr := make(chan error, 1)
	go func() {
		slog.Info("server starting", "port", cfg.Port, "driver", cfg.DBDriver)
		listenErr <- app.Listen(":" + cfg.Port)
	}()

	select {
	case <-quit:
		slog.Info("shutting down server...")
	case err = <-listenErr:
		slog.Error("server failed to start", "error", err)
	}

	if shutdownErr := app.Shutdown(); shutdownErr != nil {
		slog.Error("server shutdown error", "error", shutdownErr)
	}

	close(cleanupDone)
	pgLogHandler.Stop()
	sentry.Flush(2 * time.Second)

	if redisStorage != nil {
		if closeErr := redisStorage.Close(); closeErr != nil {
			slog.Error("redis close error", "error", closeErr)
		}
	}
	if closeErr := database.Close(rt.db); closeErr != nil {
		slog.Error("database close error", "error", closeErr)
	}

	slog.Info("server stopped")
	return err
}
