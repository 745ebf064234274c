package http

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/voicecommerce/backend/config"
)

// SetupRouter creates and configures the Gin router. gatherer may be nil to skip /metrics.
func SetupRouter(cfg *config.Config, handler *Handler, gatherer prometheus.Gatherer, logger zerolog.Logger) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(RequestIDMiddleware())
	router.Use(RecoveryMiddleware(logger))
	router.Use(LoggerMiddleware(logger))
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	// Health check endpoint
	router.GET("/health", handler.HealthCheck)

	if gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{
			EnableOpenMetrics: true,
		})))
	}

	// Voice and search endpoints
	api := router.Group("/")
	api.Use(RateLimitMiddleware(cfg.RateLimit.PerIP))
	{
		api.POST("/stt", handler.Transcribe)
		api.POST("/reply", handler.Reply)
		api.GET("/tokopedia/search", handler.SearchProducts)
	}

	mountWebClient(router, cfg.Server.StaticDir, logger)

	return router
}

// mountWebClient serves the browser client when its directory exists
func mountWebClient(router *gin.Engine, dir string, logger zerolog.Logger) {
	if dir == "" {
		return
	}
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		logger.Debug().Str("dir", dir).Msg("web client directory not found, static files disabled")
		return
	}

	router.Static("/static", dir)
	index := filepath.Join(dir, "index.html")
	router.GET("/", func(c *gin.Context) {
		if _, err := os.Stat(index); err != nil {
			c.Status(http.StatusNotFound)
			return
		}
		c.File(index)
	})
}
