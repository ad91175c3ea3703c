package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/seometa/batch"
	"github.com/use-agent/seometa/models"
)

// PostBatch returns a handler for POST /api/v1/batch.
//
// The request body is {"urls": [...]}. Blank entries are dropped, at most
// models.MaxBatchURLs remain, and the response lists one result per
// remaining entry in input order. The batch runs to completion within the
// request even if the client goes away.
func PostBatch(runner *batch.Runner) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body models.BatchAnalyzeRequest
		if err := c.ShouldBindJSON(&body); err != nil {
			respondError(c, models.NewAnalyzeError(models.ErrCodeValidation, "invalid request body", err))
			return
		}

		req, err := models.NewBatchRequest(body.URLs)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, runner.Run(c.Request.Context(), req))
	}
}
