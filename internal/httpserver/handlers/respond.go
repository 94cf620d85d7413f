package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/MrSnakeDoc/goodnews/internal/errs"
	"github.com/MrSnakeDoc/goodnews/internal/httpserver/deps"
	"github.com/MrSnakeDoc/goodnews/internal/i18n"
	"github.com/MrSnakeDoc/goodnews/internal/logger"
)

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// errorStatus maps an error to its HTTP status and message key.
func errorStatus(err error) (int, string) {
	var (
		fe       *errs.FieldError
		tooLarge *http.MaxBytesError
	)
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge, "too_large"
	case errors.As(err, &fe):
		return http.StatusBadRequest, fe.Key
	case errors.Is(err, errs.ErrInvalidURL):
		return http.StatusBadRequest, "validate_https"
	case errors.Is(err, errs.ErrUnsupportedFormat):
		return http.StatusBadRequest, "unsupported_format"
	case errors.Is(err, errs.ErrValidation):
		return http.StatusBadRequest, "invalid_request"
	case errors.Is(err, errs.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, errs.ErrDuplicateURL):
		return http.StatusConflict, "link_exists"
	case errors.Is(err, errs.ErrUnauthorized):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, errs.ErrPermissionDenied):
		return http.StatusForbidden, "sync_permission_hint"
	case errors.Is(err, errs.ErrRateLimited):
		return http.StatusTooManyRequests, "rate_limited"
	default:
		return http.StatusInternalServerError, "something_went_wrong"
	}
}

// writeError answers with the translated message for err. Server-side
// failures are logged; their details never reach the client.
func writeError(w http.ResponseWriter, r *http.Request, d deps.Deps, err error) {
	status, key := errorStatus(err)
	if status >= http.StatusInternalServerError {
		d.Logger.Error("request failed",
			logger.String("method", r.Method),
			logger.String("path", r.URL.Path),
			logger.String("request_id", middleware.GetReqID(r.Context())),
			logger.Error(err))
	}

	resp := errorResponse{Error: i18n.T(r.Context(), key)}
	var fe *errs.FieldError
	if errors.As(err, &fe) {
		resp.Field = fe.Field
	}
	writeJSON(w, status, resp)
}

func errInvalidRequest(err error) error {
	return fmt.Errorf("%w: %w", err, errs.ErrValidation)
}
