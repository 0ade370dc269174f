package handlers

import (
	"errors"
	"net/http"

	"github.com/upb/todo-app/services"
	"github.com/upb/todo-app/utils"
	"go.uber.org/zap"
)

var errorStatus = map[services.ErrorType]int{
	services.ErrorTypeNotFound:     http.StatusNotFound,
	services.ErrorTypeValidation:   http.StatusBadRequest,
	services.ErrorTypeUnauthorized: http.StatusUnauthorized,
	services.ErrorTypeForbidden:    http.StatusForbidden,
	services.ErrorTypeUnavailable:  http.StatusServiceUnavailable,
	services.ErrorTypeExternal:     http.StatusBadGateway,
	services.ErrorTypeInternal:     http.StatusInternalServerError,
}

// HandleServiceError maps domain errors to HTTP responses
func HandleServiceError(w http.ResponseWriter, err error, logger *zap.Logger) {
	if err == nil {
		return
	}

	errType := services.GetErrorType(err)
	status, ok := errorStatus[errType]
	if !ok {
		status = http.StatusInternalServerError
	}

	message := publicMessage(err)
	var details map[string]interface{}

	switch errType {
	case services.ErrorTypeValidation:
		details = services.GetErrorDetails(err)
	case services.ErrorTypeExternal:
		// Upstream detail stays in the log
		logger.Warn("external dependency failed", zap.Error(err))
		message = ""
	case services.ErrorTypeInternal:
		logger.Error("internal server error", zap.Error(err))
		message = "An internal error occurred"
	case services.ErrorTypeNotFound, services.ErrorTypeUnauthorized,
		services.ErrorTypeForbidden, services.ErrorTypeUnavailable:
	default:
		logger.Error("unhandled error type",
			zap.Error(err),
			zap.String("error_type", string(errType)))
		message = "An unexpected error occurred"
	}

	if len(details) == 0 {
		details = nil
	}
	if err := utils.WriteError(w, status, message, details); err != nil {
		logger.Error("failed to write error response", zap.Int("status", status), zap.Error(err))
	}
}

// publicMessage is the client-safe message of a domain error
func publicMessage(err error) string {
	var domainErr *services.DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Message
	}
	return err.Error()
}
