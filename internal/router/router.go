package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "planfill/docs"
	"planfill/internal/config"
	"planfill/internal/handler"
	"planfill/internal/middleware"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	cfg *config.Config,
	fillH *handler.FillHandler,
	runH *handler.RunHandler,
	healthH *handler.HealthHandler,
	logger *zap.Logger,
) *gin.Engine {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(cfg.CORS))

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	if cfg.Server.Environment != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	v1 := r.Group("/api/v1")

	// Download is authorized by its own signed token, not the API key.
	v1.GET("/runs/:id/download", runH.Download)

	protected := v1.Group("")
	protected.Use(middleware.APIKeyAuth(cfg.Auth))

	protected.POST("/generate", fillH.Generate)
	protected.POST("/inspect", fillH.Inspect)

	runs := protected.Group("/runs")
	runs.POST("", runH.Submit)
	runs.GET("", runH.List)
	runs.GET("/:id", runH.GetByID)
	runs.GET("/:id/link", runH.Link)

	return r
}
