package web

// errors.go provides unified error response handling for the API.
//
// The error flow:
//  1. Handler encounters an error
//  2. Calls respondError(w, r, err, status), or statusFor(err) to pick one
//  3. Error is mapped via core.MapError to a user-friendly message and code
//  4. Technical error + context is logged with request ID for correlation
//  5. The user message is written as an ErrorResponse

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/JonMunkholm/gridmap/internal/core"
	"github.com/JonMunkholm/gridmap/internal/grid"
	"github.com/go-chi/chi/v5/middleware"
)

var (
	errNoFile      = errors.New("no file provided")
	errInvalidBody = errors.New("invalid request body")
)

// ErrorResponse represents the JSON structure for API error responses.
// Includes both machine-readable (Code) and human-readable (Message, Action) fields.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// respondError logs the technical error and writes the mapped user message.
func respondError(w http.ResponseWriter, r *http.Request, err error, status int) {
	userMsg := core.MapError(err)

	attrs := []any{
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"code", userMsg.Code,
		"request_id", middleware.GetReqID(r.Context()),
	}
	if status >= http.StatusInternalServerError {
		slog.Error("request error", attrs...)
	} else {
		slog.Warn("request error", attrs...)
	}

	if errors.Is(err, core.ErrTooManyRequests) {
		w.Header().Set("Retry-After", strconv.Itoa(1))
	}

	writeJSON(w, status, ErrorResponse{
		Error:   userMsg.Message,
		Message: userMsg.Message,
		Action:  userMsg.Action,
		Code:    userMsg.Code,
	})
}

// respondErr picks the status for err and responds with it.
func respondErr(w http.ResponseWriter, r *http.Request, err error) {
	respondError(w, r, err, statusFor(err))
}

// statusFor maps engine, grid and template errors to HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, grid.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, core.ErrTemplateNotFound), errors.Is(err, core.ErrMappingNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrTemplateExists):
		return http.StatusConflict
	case errors.Is(err, core.ErrTemplatesUnavailable), errors.Is(err, core.ErrTooManyRequests):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusRequestTimeout
	case errors.Is(err, errInvalidBody), errors.Is(err, errNoFile),
		errors.Is(err, grid.ErrEmptyFile),
		errors.Is(err, core.ErrMissingValueMapping),
		errors.Is(err, core.ErrDuplicateRole),
		errors.Is(err, core.ErrCustomNameRequired),
		errors.Is(err, core.ErrUnknownRole),
		errors.Is(err, core.ErrTemplateNameRequired):
		return http.StatusBadRequest
	}

	// Grid parse errors are not sentinels but carry a GRID code.
	if strings.HasPrefix(core.MapError(err).Code, "GRID") {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// decodeJSON reads a JSON body into v, rejecting unknown fields.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", errInvalidBody, err)
	}
	return nil
}

// writeJSON writes v as a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
