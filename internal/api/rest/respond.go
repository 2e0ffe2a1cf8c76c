package rest

import (
	"encoding/json"
	"net/http"

	"dabwish/pkg/errors"
)

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// MessageResponse acknowledges an action without returning a resource
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// errBadRequest marks requests that could not be parsed at all
var errBadRequest = errors.New("bad request")

func badRequest(format string, args ...interface{}) error {
	return errors.Wrapf(errBadRequest, format, args...)
}

// statusFor maps the error taxonomy onto HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, errors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, errors.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, errors.ErrCodeExpired),
		errors.Is(err, errors.ErrInvalidInput),
		errors.Is(err, errors.ErrInvalidFileFormat),
		errors.Is(err, errors.ErrFileTooLarge):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError answers with the mapped status. Internal errors are logged and
// never echoed to the client.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		h.log.Errorw("Request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		msg = http.StatusText(status)
	}
	writeJSON(w, status, ErrorResponse{Code: status, Message: msg})
}
