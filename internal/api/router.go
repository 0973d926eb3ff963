package api

import (
	"flaggate/internal/metrics"
	"flaggate/internal/middleware"
	"flaggate/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func RegisterRoutes(flagHandler *FlagHandler, evalHandler *EvaluateHandler, envHandler *EnvironmentHandler, authHandler *AuthHandler, rdb *redis.Client, requestsPerSecond int, env string) *gin.Engine {
	r := gin.New()

	devMode := env != logger.EnvProd

	// Global middleware
	r.Use(
		middleware.CorsMiddleware(),
		middleware.RequestID(),
		middleware.GinZapLogger(),
		middleware.GinZapRecovery(),
		middleware.HttpMiddleware(),
		middleware.TraceMiddleware(),
	)
	r.SetTrustedProxies(nil)

	// Public routes
	r.GET("/health", flagHandler.HealthCheck)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	// Auth routes (public)
	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
	}

	// Auth routes (protected)
	authProtected := r.Group("/v1/auth")
	authProtected.Use(middleware.JWTMiddleware(devMode))
	{
		authProtected.GET("/me", authHandler.GetProfile)
		authProtected.POST("/logout", authHandler.Logout)
	}

	// Protected routes (control plane)
	protected := r.Group("/v1")
	protected.Use(middleware.JWTMiddleware(devMode))

	// rate limiter for write operations
	writeLimiter := middleware.RateLimitMiddleware(rdb, requestsPerSecond)

	{
		protected.GET("/evaluate/:key", evalHandler.Evaluate)

		protected.POST("/flags", writeLimiter, flagHandler.CreateFlag)
		protected.GET("/flags", flagHandler.ListFlags)
		protected.GET("/flags/:key", flagHandler.GetFlag)
		protected.PUT("/flags/:key", writeLimiter, flagHandler.UpdateFlag)
		protected.DELETE("/flags/:key", writeLimiter, flagHandler.DeleteFlag)
		protected.GET("/flags/:key/audits", flagHandler.GetFlagAudits)

		protected.GET("/audit", flagHandler.RecentAudits)

		protected.POST("/environments", writeLimiter, envHandler.CreateEnvironment)
		protected.GET("/environments", envHandler.ListEnvironments)
		protected.GET("/environments/:key", envHandler.GetEnvironment)
	}
	return r
}
