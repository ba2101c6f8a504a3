// Package httputil holds the JSON envelope helpers shared by HTTP handlers.
package httputil

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	dErrors "cpfgate/pkg/domain-errors"
)

// GenericInternalMessage is the only message ever returned for internal errors.
const GenericInternalMessage = "Internal server error"

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// WriteJSON writes v as a JSON body with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError translates a domain error into a status code and JSON envelope.
// Internal errors never expose their message.
func WriteError(w http.ResponseWriter, err error) {
	status, body := ErrorEnvelope(err)
	WriteJSON(w, status, body)
}

// ErrorEnvelope returns the status and body WriteError would write, for
// transports that do not own an http.ResponseWriter.
func ErrorEnvelope(err error) (int, ErrorResponse) {
	code := dErrors.CodeOf(err)
	message := GenericInternalMessage
	var de *dErrors.Error
	if code != dErrors.CodeInternal && errors.As(err, &de) {
		message = de.Message
	}
	return StatusFor(code), ErrorResponse{Error: string(code), Message: message}
}

// StatusFor maps an error code to an HTTP status.
func StatusFor(code dErrors.Code) int {
	switch code {
	case dErrors.CodeBadRequest, dErrors.CodeValidation, dErrors.CodeInvalidInput:
		return http.StatusBadRequest
	case dErrors.CodeUnauthorized:
		return http.StatusUnauthorized
	case dErrors.CodeForbidden:
		return http.StatusForbidden
	case dErrors.CodeNotFound:
		return http.StatusNotFound
	case dErrors.CodeConflict:
		return http.StatusConflict
	case dErrors.CodeUnavailable:
		return http.StatusServiceUnavailable
	case dErrors.CodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// DecodeJSON decodes the request body into T. An empty body yields the zero value.
func DecodeJSON[T any](r *http.Request) (*T, error) {
	var v T
	if r.Body == nil || r.ContentLength == 0 {
		return &v, nil
	}
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
		if errors.Is(err, io.EOF) {
			return &v, nil
		}
		return nil, dErrors.Wrap(err, dErrors.CodeBadRequest, "Request body is not valid JSON")
	}
	return &v, nil
}
