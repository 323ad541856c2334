package http

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/taabalselect/storefront/config"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler, logger *zap.Logger) *gin.Engine {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	router := gin.New()

	// Global middleware
	router.Use(RequestIDMiddleware())
	router.Use(RecoveryMiddleware(logger))
	router.Use(LoggerMiddleware(logger.Named("access")))
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	router.GET("/health", handler.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	v1.Use(RateLimitMiddleware(cfg.RateLimit.PerIP))
	{
		catalog := v1.Group("/catalog")
		{
			catalog.GET("", handler.ListCatalog)
			catalog.GET("/categories", handler.ListCategories)
			catalog.POST("/reload", handler.ReloadCatalog)
		}

		cart := v1.Group("/cart")
		{
			cart.GET("", handler.GetCart)
			cart.DELETE("", handler.ClearCart)
			cart.GET("/order", handler.GetOrder)
			cart.POST("/items", handler.AddItem)
			cart.PUT("/items/:id", handler.SetItemQty)
			cart.DELETE("/items/:id", handler.RemoveItem)
		}
	}

	return router
}
