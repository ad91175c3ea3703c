package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/seometa/batch"
	"github.com/use-agent/seometa/models"
)

// Version is reported by the health endpoint and the CLI.
const Version = "0.1.0"

// Health returns a handler for GET /api/v1/health.
func Health(runner *batch.Runner, startTime time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, models.HealthResponse{
			Status:      "healthy",
			Uptime:      time.Since(startTime).Round(time.Second).String(),
			Version:     Version,
			Concurrency: runner.Concurrency(),
			MaxBatch:    models.MaxBatchURLs,
		})
	}
}
