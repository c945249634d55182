package api

import (
	"encoding/json"
	"net/http"

	"github.com/matzehuels/augment/pkg/errors"
)

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

func respondJSON(w http.ResponseWriter, data any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	respondJSON(w, errorBody{Code: code, Message: errors.UserMessage(err)}, statusOf(err))
}

// statusOf maps an error code to an HTTP status.
func statusOf(err error) int {
	switch {
	case errors.IsInvalid(err):
		return http.StatusBadRequest
	case errors.IsNotFound(err):
		return http.StatusNotFound
	case errors.Is(err, errors.ErrCodeUnsupported):
		return http.StatusNotImplemented
	case errors.Is(err, errors.ErrCodeTimeout):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func errNotFound(path string) error {
	return errors.New(errors.ErrCodeNotFound, "no route for %s", path)
}

// decodeJSON reads a JSON request body into v, rejecting unknown fields.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "malformed request body")
	}
	return nil
}
