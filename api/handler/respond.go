package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/seometa/models"
)

// respondError maps err to the correct HTTP status code and writes a
// structured JSON error response.
func respondError(c *gin.Context, err error) {
	detail := models.AsDetail(err)
	c.JSON(mapErrorToStatus(detail.Code), models.ErrorResponse{Error: detail})
}

// mapErrorToStatus translates error codes to HTTP status codes.
func mapErrorToStatus(code string) int {
	switch code {
	case models.ErrCodeValidation:
		return http.StatusBadRequest // 400
	case models.ErrCodeFetch, models.ErrCodeParse:
		return http.StatusBadGateway // 502
	case models.ErrCodeRateLimited:
		return http.StatusTooManyRequests // 429
	case models.ErrCodeUnauthorized:
		return http.StatusUnauthorized // 401
	default:
		return http.StatusInternalServerError // 500
	}
}
