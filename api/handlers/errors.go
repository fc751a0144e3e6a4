package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/feichai0017/ai-ready-data/internal/models"
	"github.com/feichai0017/ai-ready-data/pkg/logger"
)

// ErrorResponse is the envelope for every failed request.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// writeError maps a service error onto the API error taxonomy and status
// code.
func writeError(c *gin.Context, log logger.Logger, err error) {
	status, code := classify(err)

	log.Error("Request failed",
		logger.String("path", c.Request.URL.Path),
		logger.String("code", code),
		logger.Error(err),
	)

	c.JSON(status, ErrorResponse{
		Error:   code,
		Message: err.Error(),
	})
}

func classify(err error) (int, string) {
	var stageErr *models.StageError

	switch {
	case errors.Is(err, models.ErrInvalidCredential):
		return http.StatusUnauthorized, "InvalidCredential"
	case errors.Is(err, models.ErrQuotaExceeded):
		return http.StatusTooManyRequests, "QuotaExceeded"
	case errors.Is(err, models.ErrUnsupportedFileType):
		return http.StatusBadRequest, "UnsupportedFileType"
	case errors.Is(err, models.ErrConfiguration):
		return http.StatusBadRequest, "ConfigurationError"
	case errors.Is(err, models.ErrPartitionFailure):
		return http.StatusUnprocessableEntity, "PartitionFailure"
	case errors.As(err, &stageErr):
		return http.StatusInternalServerError, "InternalStageError"
	default:
		return http.StatusInternalServerError, "InternalError"
	}
}
