package handlers

import (
	"errors"
	"net/http"

	"taskManager/internal/logger"
	"taskManager/internal/middleware"
	"taskManager/internal/service"

	"go.uber.org/zap"
)

// handleError writes err. Business errors keep their code, anything else
// means the backing store is unusable and is reported as 503.
func handleError(w http.ResponseWriter, r *http.Request, err error, operation string) {
	requestID := middleware.GetRequestID(r.Context())

	var businessErr *service.BusinessError
	if errors.As(err, &businessErr) {
		statusCode := mapBusinessErrorToHTTP(businessErr.Code)

		logger.Warn("HTTP: business error",
			zap.String("request_id", requestID),
			zap.String("operation", operation),
			zap.String("error_code", businessErr.Code),
			zap.Int("http_status", statusCode))

		responseWithJSON(w, statusCode,
			toPayload("error", businessErr.Code),
			toPayload("message", businessErr.Message),
			toPayload("details", businessErr.Details),
		)
		return
	}

	logger.Error("HTTP: service error", err,
		zap.String("request_id", requestID),
		zap.String("operation", operation))

	responseWithJSON(w, http.StatusServiceUnavailable,
		toPayload("error", "SERVICE_UNAVAILABLE"),
		toPayload("message", "service unavailable"),
		toPayload("request_id", requestID),
	)
}

func mapBusinessErrorToHTTP(code string) int {
	switch code {
	case service.CodeNotFound:
		return http.StatusNotFound
	case service.CodeValidation:
		return http.StatusBadRequest
	case service.CodeUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusBadRequest
	}
}
