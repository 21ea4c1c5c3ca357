package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"contentdesk/internal/models"
	"contentdesk/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// respondError maps service errors onto status codes and error bodies.
// Anything unrecognised is logged and reported as fallback with a 500.
func respondError(c *gin.Context, log *zap.Logger, err error, fallback string) {
	var (
		limited  *service.RateLimitedError
		weak     *service.WeakPasswordError
		mismatch *service.CodeMismatchError
	)

	switch {
	case errors.As(err, &limited):
		c.Header("Retry-After", strconv.Itoa(limited.RetryAfter))
		c.JSON(http.StatusTooManyRequests, models.ErrorResponse{
			Error:      "too many attempts, please try again later",
			RetryAfter: limited.RetryAfter,
		})
	case errors.As(err, &weak):
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "password does not meet requirements",
			Details: weak.Violations,
		})
	case errors.As(err, &mismatch):
		remaining := mismatch.Remaining
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:             service.ErrCodeMismatch.Error(),
			AttemptsRemaining: &remaining,
		})
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrInvalidSession),
		errors.Is(err, service.ErrSessionExpired),
		errors.Is(err, service.ErrInvalidResetSession):
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: err.Error()})
	case errors.Is(err, service.ErrCodeExpired),
		errors.Is(err, service.ErrNotVerified):
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
	case errors.Is(err, service.ErrDeliveryFailure):
		log.Error("verification code delivery failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: service.ErrDeliveryFailure.Error()})
	default:
		log.Error(fallback, zap.Error(err))
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: fallback})
	}
}

// bindJSON binds the request body and writes a 400 on failure
func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return false
	}
	return true
}
