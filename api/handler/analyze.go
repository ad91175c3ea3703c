package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/seometa/batch"
	"github.com/use-agent/seometa/models"
)

// Analyze returns a handler for GET /api/v1/analyze?url=.
//
// The URL is normalized before fetching. A blank url is rejected with 400;
// a fetch or parse failure is returned as 502 with the error object.
func Analyze(runner *batch.Runner) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.Query("url")
		if strings.TrimSpace(raw) == "" {
			respondError(c, models.NewValidationError("url query parameter is required"))
			return
		}

		res, err := runner.Analyze(c.Request.Context(), raw)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, res)
	}
}
