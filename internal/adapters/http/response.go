package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/nestpoint/crm-mesh/services/engagement/M21-priority-engine/internal/domain"
)

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeSuccess(w http.ResponseWriter, statusCode int, message string, data any) {
	body := map[string]any{"status": "success"}
	if message != "" {
		body["message"] = message
	}
	if data != nil {
		body["data"] = data
	}
	writeJSON(w, statusCode, body)
}

func writeError(w http.ResponseWriter, statusCode int, code, message, requestID string) {
	writeJSON(w, statusCode, map[string]any{
		"status":     "error",
		"code":       code,
		"message":    message,
		"request_id": requestID,
	})
}

func mapDomainError(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrConfiguration):
		return http.StatusUnprocessableEntity, "configuration_error"
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, "invalid_input"
	case errors.Is(err, domain.ErrInvalidEnvelope):
		return http.StatusBadRequest, "invalid_envelope"
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict, "conflict"
	case errors.Is(err, domain.ErrIdempotencyRequired):
		return http.StatusBadRequest, "idempotency_key_required"
	case errors.Is(err, domain.ErrIdempotencyConflict):
		return http.StatusConflict, "idempotency_conflict"
	case errors.Is(err, domain.ErrUnsupportedEventType):
		return http.StatusUnprocessableEntity, "unsupported_event_type"
	}
	return http.StatusInternalServerError, "internal_error"
}
