// Package main is the entry point for the Own Instead API server. The same
// process runs the job scheduler, the queue consumer and the notification
// worker.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/owninstead/backend/config"
	"github.com/owninstead/backend/internal/infra/db"
	"github.com/owninstead/backend/internal/infra/dependency"
	"github.com/owninstead/backend/internal/infra/telemetry"
	"github.com/owninstead/backend/internal/integration/persistence/model"
)

func main() {
	// Load .env file if it exists (development only)
	_ = godotenv.Load()

	cfg := config.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.Server.SlogLevel(),
	}))
	slog.SetDefault(logger)

	slog.Info("Starting Own Instead API",
		"environment", cfg.Server.Environment,
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
	)

	if err := run(cfg); err != nil {
		slog.Error("Server exited with error", "error", err)
		os.Exit(1)
	}
	slog.Info("Server exited properly")
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Telemetry.MetricsEnabled {
		shutdownTelemetry, err := telemetry.Init(ctx, telemetry.Config{
			ServiceName: cfg.Telemetry.ServiceName,
			Environment: cfg.Server.Environment,
		})
		if err != nil {
			return err
		}
		defer func() {
			if err := shutdownTelemetry(context.Background()); err != nil {
				slog.Error("Failed to shut down telemetry", "error", err)
			}
		}()
	}

	database, err := db.NewConnection(&cfg.Database)
	if err != nil {
		return err
	}
	defer func() {
		if err := database.Close(); err != nil {
			slog.Error("Failed to close database connection", "error", err)
		}
	}()

	if err := database.AutoMigrate(model.AllModels()...); err != nil {
		return err
	}
	slog.Info("Database migrations completed successfully")

	redisClient, err := dependency.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	injector, err := dependency.NewInjector(cfg, database.DB(), redisClient, dependency.Options{})
	if err != nil {
		return err
	}

	var background sync.WaitGroup
	if cfg.Scheduler.Enabled {
		injector.Scheduler.Start(ctx)
	}
	if injector.Consumer != nil && cfg.Scheduler.QueueWorkerEnabled {
		background.Add(1)
		go func() {
			defer background.Done()
			injector.Consumer.Start(ctx)
		}()
	}
	if cfg.Notification.WorkerEnabled {
		background.Add(1)
		go func() {
			defer background.Done()
			injector.NotificationWorker.Start(ctx)
		}()
	}
	injector.LoginRateLimiter.StartCleanup(ctx, 5*time.Minute)

	engine := injector.Router.Setup(cfg.Server.Environment)
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("Server listening", "address", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server failed to start: %w", err)
		}
	case <-ctx.Done():
	}

	slog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	stop()
	if cfg.Scheduler.Enabled {
		if err := injector.Scheduler.Shutdown(cfg.Scheduler.ShutdownTimeout); err != nil {
			slog.Warn("Scheduler did not stop cleanly", "error", err)
		}
	}
	background.Wait()
	return nil
}
