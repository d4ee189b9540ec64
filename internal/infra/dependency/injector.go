// Package dependency provides dependency injection for the application.
package dependency

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/owninstead/backend/config"
	"github.com/owninstead/backend/internal/application/adapter"
	"github.com/owninstead/backend/internal/application/job"
	"github.com/owninstead/backend/internal/application/usecase/auth"
	"github.com/owninstead/backend/internal/application/usecase/banksync"
	"github.com/owninstead/backend/internal/application/usecase/evaluation"
	"github.com/owninstead/backend/internal/application/usecase/profile"
	"github.com/owninstead/backend/internal/application/usecase/reward"
	"github.com/owninstead/backend/internal/application/usecase/rule"
	"github.com/owninstead/backend/internal/application/usecase/trade"
	"github.com/owninstead/backend/internal/application/usecase/transaction"
	"github.com/owninstead/backend/internal/domain/service"
	"github.com/owninstead/backend/internal/infra/scheduler"
	"github.com/owninstead/backend/internal/infra/server/router"
	"github.com/owninstead/backend/internal/infra/telemetry"
	"github.com/owninstead/backend/internal/integration/adapters"
	"github.com/owninstead/backend/internal/integration/bank"
	"github.com/owninstead/backend/internal/integration/brokerage"
	"github.com/owninstead/backend/internal/integration/entrypoint/controller"
	"github.com/owninstead/backend/internal/integration/entrypoint/middleware"
	"github.com/owninstead/backend/internal/integration/notification"
	"github.com/owninstead/backend/internal/integration/notification/templates"
	"github.com/owninstead/backend/internal/integration/persistence"
	"github.com/owninstead/backend/internal/integration/queue"
	rewardstore "github.com/owninstead/backend/internal/integration/reward"
)

const (
	providerRetryAttempts = 3
	providerRetryDelay    = 500 * time.Millisecond
)

// Options overrides the external collaborators. Zero values build the real
// provider clients from config.
type Options struct {
	Brokerage adapter.BrokerageClient
	Bank      adapter.BankClient
	Push      adapter.PushSender
	Email     adapter.EmailSender
	Now       func() time.Time
}

// Injector holds all application dependencies.
type Injector struct {
	Config *config.Config
	DB     *gorm.DB
	Redis  redis.UniversalClient

	Router             *router.Router
	Runner             *job.Runner
	Dispatcher         job.Dispatcher
	Scheduler          *scheduler.Scheduler
	Consumer           *queue.Consumer
	NotificationWorker *notification.Worker
	LoginRateLimiter   *middleware.RateLimiter
}

// NewInjector creates a new dependency injector with all dependencies wired.
// redisClient may be nil, in which case jobs run inline and reward totals are
// only logged.
func NewInjector(cfg *config.Config, db *gorm.DB, redisClient redis.UniversalClient, opts Options) (*Injector, error) {
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	// Repositories
	userRepo := persistence.NewUserRepository(db)
	profileRepo := persistence.NewProfileRepository(db)
	tokenRepo := persistence.NewTokenRepository(db)
	ruleRepo := persistence.NewRuleRepository(db)
	transactionRepo := persistence.NewTransactionRepository(db)
	evaluationRepo := persistence.NewEvaluationRepository(db)
	orderRepo := persistence.NewOrderRepository(db)
	bankConnRepo := persistence.NewBankConnectionRepository(db)
	brokerageConnRepo := persistence.NewBrokerageConnectionRepository(db)
	notificationQueueRepo := persistence.NewNotificationQueueRepository(db)

	// Services and provider clients
	passwordService := adapters.NewPasswordService(cfg.JWT.BcryptCost)
	tokenService := adapters.NewTokenService(cfg.JWT.Secret, cfg.JWT.AccessTokenExpiry, cfg.JWT.RefreshTokenExpiry, tokenRepo)
	classifier := service.NewClassifier()
	evaluator := service.NewEvaluator(classifier)

	brokerageClient := opts.Brokerage
	if brokerageClient == nil {
		brokerageClient = brokerage.NewSnapTradeClient(
			cfg.Brokerage.BaseURL, cfg.Brokerage.ClientID, cfg.Brokerage.ConsumerKey, cfg.Brokerage.Timeout,
		).WithRetry(providerRetryAttempts, providerRetryDelay)
	}
	bankClient := opts.Bank
	if bankClient == nil {
		bankClient = bank.NewPlaidClient(
			cfg.Bank.BaseURL, cfg.Bank.ClientID, cfg.Bank.Secret, cfg.Bank.Timeout,
		).WithRetry(providerRetryAttempts, providerRetryDelay)
	}

	pushSender := opts.Push
	if pushSender == nil {
		pushSender = notification.NewExpoClient(cfg.Notification.ExpoURL, cfg.Notification.ExpoToken)
	}
	emailSender := opts.Email
	if emailSender == nil && cfg.Notification.ResendAPIKey != "" {
		emailSender = notification.NewResendClient(cfg.Notification.ResendAPIKey, cfg.Notification.FromName, cfg.Notification.FromEmail)
	}
	notifier := notification.NewService(notificationQueueRepo, emailSender != nil)

	var rewards adapter.RewardRecorder = rewardstore.NewLogRecorder()
	if redisClient != nil {
		rewards = rewardstore.NewRedisRecorder(redisClient)
	}

	// Use cases
	registerUseCase := auth.NewRegisterUserUseCase(userRepo, profileRepo, passwordService, tokenService, auth.ProfileDefaults{
		Asset:       cfg.Brokerage.DefaultSymbol,
		MaxPerTrade: cfg.Investing.DefaultMaxPerTrade,
		MaxPerMonth: cfg.Investing.DefaultMaxPerMonth,
	})
	sessionUseCase := auth.NewSessionUseCase(userRepo, passwordService, tokenService)

	weeklyEvaluation := evaluation.NewWeeklyEvaluationUseCase(
		profileRepo, ruleRepo, transactionRepo, evaluationRepo, orderRepo, notifier, rewards, evaluator,
	).WithClock(now)
	executeTrade := trade.NewExecuteTradeUseCase(
		evaluationRepo, orderRepo, profileRepo, brokerageConnRepo, brokerageClient, notifier, rewards, cfg.Brokerage.DefaultSymbol,
	).WithClock(now)
	refreshOrders := trade.NewRefreshOrdersUseCase(orderRepo, brokerageConnRepo, brokerageClient, notifier)
	syncTransactions := banksync.NewSyncTransactionsUseCase(
		bankConnRepo, transactionRepo, bankClient, cfg.Scheduler.SyncDelay,
	).WithClock(now)

	// Jobs
	runner := job.NewRunner(cfg.Scheduler.JobTimeout)
	runner.Handle(job.KindWeeklyEvaluation, weeklyEvaluation.EvaluateAll, func(ctx context.Context, userID uuid.UUID) error {
		_, err := weeklyEvaluation.EvaluateUser(ctx, userID)
		return err
	})
	runner.Handle(job.KindTradeExecution, executeTrade.ExecuteAll, func(ctx context.Context, evaluationID uuid.UUID) error {
		out, err := executeTrade.Execute(ctx, evaluationID)
		if err != nil {
			return err
		}
		return out.Err()
	})
	runner.Handle(job.KindTransactionSync, syncTransactions.SyncAll, func(ctx context.Context, userID uuid.UUID) error {
		_, err := syncTransactions.SyncUser(ctx, userID)
		return err
	})
	runner.Handle(job.KindOrderRefresh, refreshOrders.Execute, nil)

	var dispatcher job.Dispatcher = job.NewInlineDispatcher(runner)
	var consumer *queue.Consumer
	if redisClient != nil {
		dispatcher = queue.NewRedisQueue(redisClient, cfg.Redis.QueueName)
		consumer = queue.NewConsumer(redisClient, cfg.Redis.QueueName, runner.RunTask)
	}

	sched := scheduler.New(runner, cfg.Scheduler.TickInterval, cfg.Scheduler.RunOnStartup)
	for kind, spec := range map[job.Kind]string{
		job.KindWeeklyEvaluation: cfg.Scheduler.WeeklyEvaluation,
		job.KindTradeExecution:   cfg.Scheduler.TradeExecution,
		job.KindTransactionSync:  cfg.Scheduler.TransactionSync,
		job.KindOrderRefresh:     cfg.Scheduler.OrderRefresh,
	} {
		if err := sched.Register(kind, spec); err != nil {
			return nil, err
		}
	}

	renderer, err := templates.NewRenderer()
	if err != nil {
		return nil, fmt.Errorf("failed to load notification templates: %w", err)
	}
	workerConfig := notification.DefaultWorkerConfig()
	workerConfig.PollInterval = cfg.Notification.PollInterval
	workerConfig.BatchSize = cfg.Notification.BatchSize
	worker := notification.NewWorker(notificationQueueRepo, pushSender, emailSender, profileRepo, userRepo, renderer, workerConfig)

	// Controllers
	var redisHealth func() bool
	if redisClient != nil {
		redisHealth = func() bool {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return redisClient.Ping(ctx).Err() == nil
		}
	}
	healthController := controller.NewHealthController(func() bool {
		sqlDB, err := db.DB()
		if err != nil {
			return false
		}
		return sqlDB.Ping() == nil
	}, redisHealth, dispatcher.Mode())

	authController := controller.NewAuthController(registerUseCase, sessionUseCase)

	ruleController := controller.NewRuleController(
		rule.NewListRulesUseCase(ruleRepo),
		rule.NewCreateRuleUseCase(ruleRepo),
		rule.NewGetRuleUseCase(ruleRepo),
		rule.NewUpdateRuleUseCase(ruleRepo),
		rule.NewDeleteRuleUseCase(ruleRepo),
	)

	transactionController := controller.NewTransactionController(
		transaction.NewListTransactionsUseCase(transactionRepo, classifier),
		transaction.NewSetExcludedUseCase(transactionRepo, classifier),
	)

	profileController := controller.NewProfileController(
		profile.NewGetProfileUseCase(profileRepo),
		profile.NewUpdateProfileUseCase(profileRepo, cfg.Investing.SupportedSymbols),
		profile.NewCompleteOnboardingUseCase(profileRepo),
	)

	evaluationController := controller.NewEvaluationController(
		evaluation.NewListEvaluationsUseCase(evaluationRepo),
		evaluation.NewCurrentEvaluationsUseCase(evaluationRepo),
		evaluation.NewPreviewEvaluationUseCase(ruleRepo, transactionRepo, evaluationRepo, evaluator).WithClock(now),
		evaluation.NewConfirmEvaluationUseCase(evaluationRepo, ruleRepo, transactionRepo, profileRepo, orderRepo, evaluator).WithClock(now),
		evaluation.NewSkipEvaluationUseCase(evaluationRepo),
	)

	orderController := controller.NewOrderController(
		trade.NewListOrdersUseCase(orderRepo),
		trade.NewGetOrderUseCase(orderRepo),
	)

	triggerController := controller.NewTriggerController(dispatcher, executeTrade)
	statsController := controller.NewStatsController(reward.NewGetStatsUseCase(rewards))

	// Middleware
	loginRateLimiter := middleware.NewRateLimiter(5, time.Minute)
	if cfg.Server.Environment == "e2e" || cfg.Server.Environment == "test" {
		loginRateLimiter.Disable()
	}
	authMiddleware := middleware.NewAuthMiddleware(tokenService)

	var metricsHandler http.Handler
	if cfg.Telemetry.MetricsEnabled {
		metricsHandler = telemetry.Handler()
	}

	r := router.NewRouter(
		healthController,
		authController,
		ruleController,
		transactionController,
		profileController,
		evaluationController,
		orderController,
		triggerController,
		statsController,
		loginRateLimiter,
		authMiddleware,
		metricsHandler,
	)

	slog.Info("Dependencies wired",
		"job_mode", dispatcher.Mode(),
		"email_enabled", emailSender != nil,
		"rewards", fmt.Sprintf("%T", rewards),
	)

	return &Injector{
		Config:             cfg,
		DB:                 db,
		Redis:              redisClient,
		Router:             r,
		Runner:             runner,
		Dispatcher:         dispatcher,
		Scheduler:          sched,
		Consumer:           consumer,
		NotificationWorker: worker,
		LoginRateLimiter:   loginRateLimiter,
	}, nil
}

// NewRedisClient connects to cfg.URL. It returns nil, nil when Redis is not
// configured.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (redis.UniversalClient, error) {
	if !cfg.Enabled() {
		return nil, nil
	}

	options, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}
	if cfg.Password != "" {
		options.Password = cfg.Password
	}
	if cfg.DB != 0 {
		options.DB = cfg.DB
	}

	client := redis.NewClient(options)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return client, nil
}
