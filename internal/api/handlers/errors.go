package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"battery-payback/internal/api/models"
	"battery-payback/internal/model"
	"battery-payback/internal/sweep"
)

// abortWithError writes the error envelope and stops the handler chain.
func abortWithError(c *gin.Context, status int, code string, err error) {
	c.AbortWithStatusJSON(status, models.ErrorResponse{
		Error: models.ErrorDetail{
			Code:    code,
			Message: err.Error(),
		},
	})
}

// abortWithDomainError maps errors from the simulation packages to a status
// and error code.
func abortWithDomainError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, model.ErrInvalidInput):
		abortWithError(c, http.StatusBadRequest, "INVALID_INPUT", err)
	case errors.Is(err, sweep.ErrUnknownBatterySize):
		abortWithError(c, http.StatusUnprocessableEntity, "UNKNOWN_BATTERY_SIZE", err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		abortWithError(c, http.StatusServiceUnavailable, "CANCELLED", err)
	default:
		abortWithError(c, http.StatusInternalServerError, "INTERNAL_ERROR", err)
	}
}
