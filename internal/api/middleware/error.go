package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"battery-payback/internal/api/models"
	"battery-payback/internal/logger"
)

// ErrorHandler middleware recovers from panics and answers with the error
// envelope.
func ErrorHandler(log logger.Logger) gin.HandlerFunc {
	log = logger.OrNop(log)
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		log.Errorf("panic serving %s %s: %v", c.Request.Method, c.Request.URL.Path, recovered)
		msg := "An unexpected error occurred"
		if s, ok := recovered.(string); ok {
			msg = s
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "INTERNAL_ERROR",
				Message: msg,
			},
		})
	})
}
