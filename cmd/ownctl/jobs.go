package main

import (
	"fmt"
	"os"
	"os/signal"
	"sort"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/owninstead/backend/internal/application/job"
	"github.com/owninstead/backend/internal/integration/persistence"
)

var (
	flagUser       string
	flagEvaluation string
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Evaluate last week's spending for every onboarded user, or one user",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runJob(cmd.Context(), job.KindWeeklyEvaluation, flagUser)
	},
}

var executeCmd = &cobra.Command{
	Use:   "execute",
	Short: "Place orders for confirmed evaluations, or one evaluation",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runJob(cmd.Context(), job.KindTradeExecution, flagEvaluation)
	},
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Sync bank transactions for every connection, or one user's connections",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runJob(cmd.Context(), job.KindTransactionSync, flagUser)
	},
}

var refreshOrdersCmd = &cobra.Command{
	Use:   "refresh-orders",
	Short: "Poll the brokerage for submitted orders",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runJob(cmd.Context(), job.KindOrderRefresh, "")
	},
}

var pruneTokensCmd = &cobra.Command{
	Use:   "prune-tokens",
	Short: "Delete expired refresh tokens",
	RunE: func(cmd *cobra.Command, _ []string) error {
		deleted, err := persistence.NewTokenRepository(app.injector.DB).DeleteExpired(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("  deleted %d expired refresh tokens\n", deleted)
		return nil
	},
}

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Show the next run of every scheduled job",
	RunE: func(_ *cobra.Command, _ []string) error {
		next := app.injector.Scheduler.NextRuns()
		kinds := make([]job.Kind, 0, len(next))
		for kind := range next {
			kinds = append(kinds, kind)
		}
		sort.Slice(kinds, func(i, j int) bool { return next[kinds[i]].Before(next[kinds[j]]) })

		fmt.Println()
		for _, kind := range kinds {
			fmt.Printf("  %-20s %s\n", kind, next[kind].Format(time.RFC1123))
		}
		fmt.Println()
		return nil
	},
}

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Run the scheduler, queue consumer and notification worker without the HTTP API",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		in := app.injector
		in.Scheduler.Start(ctx)

		var wg sync.WaitGroup
		if in.Consumer != nil {
			wg.Add(1)
			go func() {
				defer wg.Done()
				in.Consumer.Start(ctx)
			}()
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			in.NotificationWorker.Start(ctx)
		}()

		<-ctx.Done()
		err := in.Scheduler.Shutdown(app.cfg.Scheduler.ShutdownTimeout)
		wg.Wait()
		return err
	},
}

func init() {
	evaluateCmd.Flags().StringVar(&flagUser, "user", "", "Only evaluate this user ID")
	executeCmd.Flags().StringVar(&flagEvaluation, "evaluation", "", "Only execute this evaluation ID")
	syncCmd.Flags().StringVar(&flagUser, "user", "", "Only sync this user ID")

	rootCmd.AddCommand(evaluateCmd, executeCmd, syncCmd, refreshOrdersCmd, pruneTokensCmd, scheduleCmd, workerCmd)
}
