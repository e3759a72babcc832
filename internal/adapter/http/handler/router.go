package handler

import (
	"points-ledger/internal/adapter/http/middleware"
	redisStore "points-ledger/internal/adapter/storage/redis"
	"points-ledger/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	LedgerSvc      ports.LedgerService
	ReportingSvc   ports.ReportingService
	AccountSvc     ports.AccountService
	RateLimitStore *redisStore.RateLimitStore // nil = rate limiting disabled
	HealthCheckers []ports.HealthChecker
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(1 << 20)) // 1 MB request body limit

	// Health check (deep, verifies the configured backends)
	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	// Rate limit rules
	rules := middleware.DefaultRateLimitRules()

	// Helper: return rate limiter middleware if store is available, else noop.
	rl := func(group string) gin.HandlerFunc {
		if deps.RateLimitStore == nil {
			return func(c *gin.Context) { c.Next() }
		}
		rule, ok := rules[group]
		if !ok {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimiter(deps.RateLimitStore, group, rule, deps.Logger)
	}

	// API v1 routes
	v1 := r.Group("/api/v1")

	accountHandler := NewAccountHandler(deps.AccountSvc, deps.ReportingSvc)
	accounts := v1.Group("/accounts")
	{
		accounts.POST("", rl("accounts"), accountHandler.Create)
		accounts.GET("/:id", rl("reads"), accountHandler.Get)
		accounts.GET("/:id/balance", rl("reads"), accountHandler.GetBalance)
		accounts.GET("/:id/transfers", rl("reads"), accountHandler.ListTransfers)
		accounts.GET("/:id/reconcile", rl("reads"), accountHandler.Reconcile)
	}

	ledgerHandler := NewLedgerHandler(deps.LedgerSvc)
	points := v1.Group("/points")
	{
		points.POST("/transfer", rl("transfers"), ledgerHandler.Transfer)
		points.POST("/reward", rl("rewards"), ledgerHandler.Reward)
	}

	return r
}
