package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/soundprediction/hybridrag/pkg/driver"
	"github.com/soundprediction/hybridrag/pkg/server/dto"
	"github.com/soundprediction/hybridrag/pkg/types"
)

// writeError writes an error response as JSON
func writeError(c *gin.Context, status int, errCode, message string) {
	c.AbortWithStatusJSON(status, dto.ErrorResponse{
		Error:   errCode,
		Message: message,
		Code:    status,
	})
}

// writeBackendError maps an error from the client to an HTTP status.
func writeBackendError(c *gin.Context, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, types.ErrInvalidQuery),
		errors.Is(err, types.ErrEmptyName),
		errors.Is(err, types.ErrEmptyID):
		writeError(c, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, driver.ErrNodeNotFound):
		writeError(c, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, types.ErrBackendUnreachable),
		errors.Is(err, types.ErrAllChannelsFailed),
		errors.Is(err, types.ErrTransientBackend):
		logger.ErrorContext(c.Request.Context(), "Backend unavailable", "path", c.FullPath(), "error", err)
		writeError(c, http.StatusServiceUnavailable, "backend_unavailable", err.Error())
	default:
		logger.ErrorContext(c.Request.Context(), "Request failed", "path", c.FullPath(), "error", err)
		writeError(c, http.StatusInternalServerError, "internal_error", err.Error())
	}
}
