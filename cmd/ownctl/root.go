package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/owninstead/backend/config"
	"github.com/owninstead/backend/internal/application/job"
	"github.com/owninstead/backend/internal/infra/db"
	"github.com/owninstead/backend/internal/infra/dependency"
	"github.com/owninstead/backend/internal/integration/persistence/model"
)

var (
	flagEnqueue bool
	flagVerbose bool
)

// app is built once per invocation by the root command's pre-run hook.
var app struct {
	cfg      *config.Config
	database *db.Database
	redis    redis.UniversalClient
	injector *dependency.Injector
}

var rootCmd = &cobra.Command{
	Use:               "ownctl",
	Short:             "Own Instead operator CLI",
	Long:              "Run evaluation, trade, sync and order refresh jobs outside their schedule.",
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: teardown,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagEnqueue, "enqueue", false, "Queue single-target tasks instead of running them (requires Redis)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Log at debug level")
}

func setup(cmd *cobra.Command, _ []string) error {
	_ = godotenv.Load()
	app.cfg = config.Load()

	level := app.cfg.Server.SlogLevel()
	if flagVerbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	database, err := db.NewConnection(&app.cfg.Database)
	if err != nil {
		return err
	}
	if err := database.AutoMigrate(model.AllModels()...); err != nil {
		return err
	}
	app.database = database

	app.redis, err = dependency.NewRedisClient(cmd.Context(), app.cfg.Redis)
	if err != nil {
		return err
	}
	if flagEnqueue && app.redis == nil {
		return fmt.Errorf("--enqueue requires REDIS_URL")
	}

	app.injector, err = dependency.NewInjector(app.cfg, database.DB(), app.redis, dependency.Options{})
	return err
}

func teardown(_ *cobra.Command, _ []string) {
	if app.redis != nil {
		_ = app.redis.Close()
	}
	if app.database != nil {
		_ = app.database.Close()
	}
}

// runJob runs the batch form of kind, or the single-target form when target
// is set.
func runJob(ctx context.Context, kind job.Kind, target string) error {
	if target == "" {
		result, err := app.injector.Runner.RunBatch(ctx, kind)
		if err != nil {
			return err
		}
		fmt.Printf("  %s: %d succeeded, %d skipped, %d failed\n", kind, result.Succeeded, result.Skipped, result.Failed)
		return nil
	}

	id, err := uuid.Parse(target)
	if err != nil {
		return fmt.Errorf("invalid id %q: %w", target, err)
	}
	task := job.NewTask(kind, id)

	if flagEnqueue {
		if err := app.injector.Dispatcher.Dispatch(ctx, task); err != nil {
			return err
		}
		fmt.Printf("  %s: queued task %s\n", kind, task.ID)
		return nil
	}

	if err := app.injector.Runner.RunTask(ctx, task); err != nil {
		return err
	}
	fmt.Printf("  %s: completed for %s\n", kind, id)
	return nil
}
