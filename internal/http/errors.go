package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"legal-aid/internal/service"
)

// statusFor traduce los errores de servicio a códigos HTTP.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrEmptyContent), errors.Is(err, service.ErrInvalidIssueInput):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrIssueNotFound),
		errors.Is(err, service.ErrNotificationNotFound),
		errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrConversationNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrNotAuthorized):
		return http.StatusForbidden
	case errors.Is(err, service.ErrRateLimited):
		return http.StatusTooManyRequests
	}
	return http.StatusInternalServerError
}

// writeServiceError responde con el cuerpo {"error": ...}; los 500 no filtran el detalle.
func writeServiceError(c *gin.Context, logger *zap.Logger, op string, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.Error(op+" failed", zap.Error(err))
		c.JSON(status, gin.H{"error": "internal error"})
		return
	}
	logger.Info(op+" rejected", zap.Int("status", status), zap.Error(err))
	c.JSON(status, gin.H{"error": err.Error()})
}
