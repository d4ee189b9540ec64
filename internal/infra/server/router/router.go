// Package router sets up the HTTP routing for the application.
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/owninstead/backend/internal/integration/entrypoint/controller"
	"github.com/owninstead/backend/internal/integration/entrypoint/middleware"
)

// Router holds the Gin engine and controller dependencies.
type Router struct {
	engine                *gin.Engine
	healthController      *controller.HealthController
	authController        *controller.AuthController
	ruleController        *controller.RuleController
	transactionController *controller.TransactionController
	profileController     *controller.ProfileController
	evaluationController  *controller.EvaluationController
	orderController       *controller.OrderController
	triggerController     *controller.TriggerController
	statsController       *controller.StatsController
	loginRateLimiter      *middleware.RateLimiter
	authMiddleware        *middleware.AuthMiddleware
	metricsHandler        http.Handler
}

// NewRouter creates a new router instance with all dependencies. A nil
// metricsHandler leaves /metrics unregistered.
func NewRouter(
	healthController *controller.HealthController,
	authController *controller.AuthController,
	ruleController *controller.RuleController,
	transactionController *controller.TransactionController,
	profileController *controller.ProfileController,
	evaluationController *controller.EvaluationController,
	orderController *controller.OrderController,
	triggerController *controller.TriggerController,
	statsController *controller.StatsController,
	loginRateLimiter *middleware.RateLimiter,
	authMiddleware *middleware.AuthMiddleware,
	metricsHandler http.Handler,
) *Router {
	return &Router{
		healthController:      healthController,
		authController:        authController,
		ruleController:        ruleController,
		transactionController: transactionController,
		profileController:     profileController,
		evaluationController:  evaluationController,
		orderController:       orderController,
		triggerController:     triggerController,
		statsController:       statsController,
		loginRateLimiter:      loginRateLimiter,
		authMiddleware:        authMiddleware,
		metricsHandler:        metricsHandler,
	}
}

// Setup configures and returns the Gin engine with all routes.
func (r *Router) Setup(environment string) *gin.Engine {
	switch environment {
	case "production":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	}

	r.engine = gin.Default()
	if r.metricsHandler != nil {
		r.engine.Use(middleware.Metrics())
		r.engine.GET("/metrics", gin.WrapH(r.metricsHandler))
	}

	r.setupHealthRoutes()
	r.setupAPIRoutes()

	return r.engine
}

func (r *Router) setupHealthRoutes() {
	r.engine.GET("/health", r.healthController.Check)
}

func (r *Router) setupAPIRoutes() {
	api := r.engine.Group("/api/v1")

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", r.authController.Register)
		authGroup.POST("/login", r.loginRateLimiter.Middleware(), r.authController.Login)
		authGroup.POST("/refresh", r.authController.RefreshToken)
		authGroup.POST("/logout", r.authController.Logout)
	}

	protected := api.Group("")
	protected.Use(r.authMiddleware.Authenticate())

	rules := protected.Group("/rules")
	{
		rules.GET("", r.ruleController.List)
		rules.POST("", r.ruleController.Create)
		rules.GET("/:id", r.ruleController.Get)
		rules.PATCH("/:id", r.ruleController.Update)
		rules.DELETE("/:id", r.ruleController.Delete)
	}

	transactions := protected.Group("/transactions")
	{
		transactions.GET("", r.transactionController.List)
		transactions.PATCH("/:id", r.transactionController.Update)
	}

	profile := protected.Group("/profile")
	{
		profile.GET("", r.profileController.Get)
		profile.PATCH("", r.profileController.Update)
		profile.POST("/complete-onboarding", r.profileController.CompleteOnboarding)
	}

	evaluations := protected.Group("/evaluations")
	{
		evaluations.GET("", r.evaluationController.List)
		evaluations.GET("/current", r.evaluationController.Current)
		evaluations.GET("/preview", r.evaluationController.Preview)
		evaluations.POST("/:id/confirm", r.evaluationController.Confirm)
		evaluations.POST("/:id/skip", r.evaluationController.Skip)
	}

	orders := protected.Group("/orders")
	{
		orders.GET("", r.orderController.List)
		orders.GET("/:id", r.orderController.Get)
	}

	triggers := protected.Group("/triggers")
	{
		triggers.POST("/evaluate", r.triggerController.Evaluate)
		triggers.POST("/evaluations/:id/execute", r.triggerController.Execute)
		triggers.POST("/sync", r.triggerController.Sync)
	}

	protected.GET("/stats", r.statsController.Get)
}

// Engine returns the configured Gin engine.
func (r *Router) Engine() *gin.Engine {
	return r.engine
}
