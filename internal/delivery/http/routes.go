package http

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/matchboard/backend/config"
	"github.com/matchboard/backend/internal/infrastructure/ratelimit"
)

// SetupRouter creates and configures the Gin router.
// A nil limiter disables rate limiting.
func SetupRouter(cfg *config.Config, handler *Handler, logger *zap.Logger, limiter *ratelimit.VisitorLimiter) *gin.Engine {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	router := gin.New()
	_ = router.SetTrustedProxies(nil)

	// Global middleware
	router.Use(RequestIDMiddleware())
	router.Use(RecoveryMiddleware(logger))
	router.Use(LoggerMiddleware(logger))
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	router.GET("/health", handler.HealthCheck)

	v1 := router.Group("/api/v1")
	if limiter != nil {
		v1.Use(RateLimitMiddleware(limiter))
	}
	{
		v1.GET("/runs", handler.ListRuns)

		products := v1.Group("/products")
		{
			products.GET("", handler.ListProducts)
			products.GET("/export", handler.ExportProducts)
		}

		v1.GET("/product/:id", handler.GetProduct)
	}

	return router
}
