package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"domaind/internal/model"
	"domaind/pkg/types"
)

// HTTPError allows services to provide an HTTP status code for an error.
type HTTPError interface {
	error
	StatusCode() int
}

// statusFor maps service errors to HTTP status codes.
func statusFor(err error) int {
	var he HTTPError
	switch {
	case errors.As(err, &he):
		return he.StatusCode()
	case model.IsArgument(err), model.IsFactory(err):
		return http.StatusBadRequest
	case model.IsLookup(err), model.IsNotFound(err):
		return http.StatusNotFound
	case model.IsValidation(err):
		return http.StatusUnprocessableEntity
	case model.IsPublish(err):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// writeJSONError writes a consistent JSON error payload.
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(types.ErrorResponse{Error: msg, Code: status})
}

// writeServiceError logs err and writes it with its mapped status.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		requestLog(r).Error().Err(err).Int("status", status).Msg("request failed")
	}
	writeJSONError(w, status, err.Error())
}
