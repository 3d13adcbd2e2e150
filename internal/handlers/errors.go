// Package handlers implements the HTTP endpoints of the document assistant.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"realty-assistant/internal/contextutil"
	"realty-assistant/internal/document"
	"realty-assistant/internal/extraction"
	"realty-assistant/internal/ingest"
	"realty-assistant/internal/llm"
	"realty-assistant/internal/property"
	"realty-assistant/internal/service"
	"realty-assistant/internal/storage"
)

// ErrorResponse represents an error response.
//
// swagger:model ErrorResponse
type ErrorResponse struct {
	Error string `json:"error"`
}

// errorStatus maps a domain error to an HTTP status and a client-facing message.
func errorStatus(err error) (int, string) {
	var validation *service.ValidationError
	var maxBytes *http.MaxBytesError

	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest, validation.Error()
	case errors.Is(err, service.ErrInvalidInput):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, extraction.ErrUnknownDocumentType):
		return http.StatusBadRequest, "Unknown document type"
	case errors.Is(err, service.ErrNotFound), errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound, "Not found"
	case errors.Is(err, document.ErrUnsupportedFormat):
		return http.StatusUnsupportedMediaType, "Unsupported document format"
	case errors.Is(err, document.ErrTooLarge), errors.As(err, &maxBytes):
		return http.StatusRequestEntityTooLarge, "Document exceeds size limit"
	case errors.Is(err, document.ErrTooManyPages):
		return http.StatusUnprocessableEntity, "Document exceeds page limit"
	case errors.Is(err, document.ErrNoText):
		return http.StatusUnprocessableEntity, "Document contains no extractable text"
	case errors.Is(err, property.ErrNoAddress):
		return http.StatusUnprocessableEntity, "No property address found in document"
	case errors.Is(err, ingest.ErrSearchDisabled), errors.Is(err, service.ErrUnavailable):
		return http.StatusServiceUnavailable, "Service unavailable"
	case errors.Is(err, service.ErrExternalService), errors.Is(err, llm.ErrMalformedResponse):
		return http.StatusBadGateway, "External service error"
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}

// handleServiceError logs err and writes the matching error response.
func handleServiceError(ctx context.Context, w http.ResponseWriter, err error, op string) {
	logger := contextutil.LoggerFromContext(ctx)
	status, msg := errorStatus(err)
	if status >= http.StatusInternalServerError {
		logger.ErrorContext(ctx, op+" failed", "error", err, "status", status)
	} else {
		logger.WarnContext(ctx, op+" rejected", "error", err, "status", status)
	}
	writeError(w, status, msg)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, ErrorResponse{Error: message})
}

func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(v)
}

// decodeJSON decodes the request body into v, writing a 400 on failure.
func decodeJSON(ctx context.Context, w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		contextutil.LoggerFromContext(ctx).WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

// boolQuery reads a boolean query parameter; "true" and "1" are true.
func boolQuery(r *http.Request, name string) bool {
	v := r.URL.Query().Get(name)
	return strings.EqualFold(v, "true") || v == "1"
}

// intQuery reads a positive integer query parameter, or def when absent.
func intQuery(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, &service.ValidationError{Field: name, Message: "must be a positive integer"}
	}
	return n, nil
}
