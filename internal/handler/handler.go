package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"tuango/internal/model"

	"github.com/rs/zerolog"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Log the error but don't expose it to the client
		return
	}
}

// writeError writes an error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string, logger zerolog.Logger) {
	logger.Error().Str("error", message).Int("status", status).Msg("handler error")
	writeJSON(w, status, ErrorResponse{Error: message})
}

// writeInvalidJSON rejects a request body that failed to decode.
func writeInvalidJSON(w http.ResponseWriter, logger zerolog.Logger) {
	logger.Error().Str("error", "invalid request body").Int("status", http.StatusBadRequest).Msg("handler error")
	writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body", Code: model.ErrCodeInvalidJSON})
}

// writeUnauthorised rejects a request whose caller identity or role does not
// allow the operation.
func writeUnauthorised(w http.ResponseWriter, status int, message string, logger zerolog.Logger) {
	logger.Error().Str("error", message).Int("status", status).Msg("handler error")
	writeJSON(w, status, ErrorResponse{Error: message, Code: model.ErrCodeUnauthorised})
}

// writeServiceError maps typed domain errors onto HTTP responses. Anything
// unrecognised is an internal error with the detail kept out of the response.
func writeServiceError(w http.ResponseWriter, err error, logger zerolog.Logger) {
	var (
		validationErr *model.ValidationError
		stockErr      *model.InsufficientStockError
		stateErr      *model.StateError
		notFoundErr   *model.NotFoundError
		transientErr  *model.TransientError
	)

	switch {
	case errors.As(err, &validationErr):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: validationErr.Error(), Code: model.ErrCodeValidation})
	case errors.As(err, &stockErr):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: stockErr.Error(), Code: model.ErrCodeInsufficientStock})
	case errors.As(err, &stateErr):
		writeJSON(w, http.StatusConflict, ErrorResponse{Error: stateErr.Error(), Code: model.ErrCodeInvalidState})
	case errors.As(err, &notFoundErr):
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: notFoundErr.Error(), Code: model.ErrCodeNotFound})
	case errors.As(err, &transientErr):
		logger.Warn().Err(err).Msg("transient store error surfaced to client")
		writeJSON(w, http.StatusServiceUnavailable, ErrorResponse{Error: "temporarily unavailable, please try again", Code: model.ErrCodeTransient})
	default:
		logger.Error().Err(err).Msg("unhandled service error")
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "internal server error", Code: model.ErrCodeInternalError})
	}
}

// parseID parses a positive int64 path segment.
func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid id")
	}
	return id, nil
}

// requestUserID reads the authenticated user id the gateway forwards in the
// X-User-ID header. Token validation itself happens upstream.
func requestUserID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.Header.Get("X-User-ID"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// requestActor reads the caller's role from the X-User-Role header.
func requestActor(r *http.Request) model.Actor {
	if r.Header.Get("X-User-Role") == "admin" {
		return model.ActorAdmin
	}
	return model.ActorUser
}
