package site

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/goliatone/go-vortex/pkg/auth"
	"github.com/goliatone/go-vortex/pkg/chat"
	"github.com/goliatone/go-vortex/pkg/flow"
	"github.com/goliatone/go-vortex/pkg/openapi"
)

// StatusError carries the HTTP status a handler error maps to.
type StatusError struct {
	Code int
	Err  error
}

func (e StatusError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return http.StatusText(e.Code)
}

func (e StatusError) Unwrap() error { return e.Err }

// StatusCode reports the status, defaulting to 500.
func (e StatusError) StatusCode() int {
	if e.Code <= 0 {
		return http.StatusInternalServerError
	}
	return e.Code
}

// errorResponse is the Error schema of the API description.
type errorResponse struct {
	Error      string              `json:"error"`
	Fields     map[string][]string `json:"fields,omitempty"`
	FormErrors []string            `json:"formErrors,omitempty"`
}

func writeJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	var status StatusError
	if errors.As(err, &status) {
		code = status.StatusCode()
	}
	message := http.StatusText(code)
	if code < http.StatusInternalServerError {
		message = err.Error()
	}
	writeJSON(w, code, errorResponse{Error: message})
}

func writeRequestError(w http.ResponseWriter, code int, reqErr *openapi.RequestError) {
	writeJSON(w, code, errorResponse{
		Error:      "invalid request",
		Fields:     reqErr.Fields,
		FormErrors: reqErr.Form,
	})
}

// classify maps domain errors onto HTTP statuses.
func classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, flow.ErrUnknownFlow), errors.Is(err, chat.ErrUnknownConversation):
		return StatusError{Code: http.StatusNotFound, Err: err}
	case errors.Is(err, flow.ErrFlowCompleted):
		return StatusError{Code: http.StatusConflict, Err: err}
	case errors.Is(err, flow.ErrStepOutOfRange), errors.Is(err, flow.ErrFlowMismatch),
		errors.Is(err, chat.ErrEmptyPost), errors.Is(err, chat.ErrPostTooLong):
		return StatusError{Code: http.StatusBadRequest, Err: err}
	case errors.Is(err, auth.ErrUploadTooLarge):
		return StatusError{Code: http.StatusRequestEntityTooLarge, Err: err}
	default:
		return err
	}
}

func bodyTooLarge(err error) bool {
	var tooLarge *http.MaxBytesError
	return errors.As(err, &tooLarge)
}
