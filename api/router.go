package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/seometa/api/handler"
	"github.com/use-agent/seometa/api/middleware"
	"github.com/use-agent/seometa/batch"
	"github.com/use-agent/seometa/config"
)

// NewRouter creates a configured Gin engine with all routes and middleware.
//
// Middleware chain:
//
//	Global:  Recovery → Logger
//	API:     Auth (if enabled) → RateLimit
//
// The page and the health endpoint sit outside auth so browsers and probes
// always reach them.
func NewRouter(runner *batch.Runner, cfg *config.Config, startTime time.Time) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())

	r.GET("/", handler.Index())

	v1 := r.Group("/api/v1")
	v1.GET("/health", handler.Health(runner, startTime))

	protected := v1.Group("")
	if cfg.Auth.Enabled {
		protected.Use(middleware.Auth(cfg.Auth.APIKeys))
	}
	protected.Use(middleware.RateLimit(cfg.RateLimit))

	protected.GET("/analyze", handler.Analyze(runner))
	protected.POST("/batch", handler.PostBatch(runner))
	protected.POST("/bulk", handler.Bulk(runner, cfg))

	return r
}
