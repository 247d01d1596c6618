package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/benvon/life-tracker/internal/apperr"
	"github.com/benvon/life-tracker/internal/models"
	"github.com/benvon/life-tracker/internal/request"
	"github.com/benvon/life-tracker/internal/validation"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

const maxErrorMessageLength = 200

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := map[string]any{
		"success":   true,
		"data":      data,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// sanitizeErrorMessage bounds client-facing error messages
func sanitizeErrorMessage(message string) string {
	runes := []rune(message)
	if len(runes) > maxErrorMessageLength {
		return string(runes[:maxErrorMessageLength]) + "..."
	}
	return message
}

// respondJSONError sends an error JSON response with a sanitized message
func respondJSONError(w http.ResponseWriter, status int, errorType, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := map[string]any{
		"success":   false,
		"error":     errorType,
		"message":   sanitizeErrorMessage(message),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// respondError converts err to its status and envelope. Unclassified errors are logged and
// answered with a generic message.
func respondError(w http.ResponseWriter, r *http.Request, logger *zap.Logger, err error) {
	if errors.Is(err, request.ErrBodyTooLarge) {
		respondJSONError(w, http.StatusRequestEntityTooLarge, "request_too_large", "Request body is too large")
		return
	}

	status := apperr.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		logger.Error("request_failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		respondJSONError(w, status, apperr.Code(err), "An unexpected error occurred")
		return
	}
	respondJSONError(w, status, apperr.Code(err), apperr.Message(err))
}

// decodeAndValidate reads a JSON body into dst and runs its validate tags
func decodeAndValidate(r *http.Request, dst any) error {
	if err := request.DecodeJSON(r, dst); err != nil {
		return err
	}
	return validation.Struct(dst)
}

// pathUUID reads a UUID route variable
func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	raw := mux.Vars(r)[name]
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperr.Validation("%s must be a UUID", name)
	}
	return id, nil
}

// parseDate reads a YYYY-MM-DD body field as a date in loc
func parseDate(s string, loc *time.Location) (time.Time, error) {
	d, err := models.ParseDate(s, loc)
	if err != nil {
		return time.Time{}, apperr.Validation("%s", err.Error())
	}
	return d, nil
}
