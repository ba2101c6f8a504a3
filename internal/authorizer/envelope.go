package authorizer

import (
	"encoding/json"
	"net/http"

	"cpfgate/internal/decision"
	dErrors "cpfgate/pkg/domain-errors"
	"cpfgate/pkg/platform/httputil"
)

// Response is the {statusCode, body} envelope of the token shape. Body is a
// JSON document: {"token": ...} or {"message": ...}.
type Response struct {
	StatusCode int               `json:"statusCode"`
	Headers    map[string]string `json:"headers,omitempty"`
	Body       string            `json:"body"`
}

type TokenBody struct {
	Token string `json:"token"`
}

type MessageBody struct {
	Message string `json:"message"`
}

func tokenResponse(token string) Response {
	return envelope(http.StatusOK, TokenBody{Token: token})
}

func messageResponse(status int, message string) Response {
	return envelope(status, MessageBody{Message: message})
}

func envelope(status int, body any) Response {
	raw, err := json.Marshal(body)
	if err != nil {
		status = http.StatusInternalServerError
		raw = []byte(`{"message":"` + httputil.GenericInternalMessage + `"}`)
	}
	return Response{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       string(raw),
	}
}

// denialCode maps a non-issuing decision onto the error taxonomy so status
// codes come from httputil.StatusFor.
func denialCode(d decision.Decision) dErrors.Code {
	switch d.State {
	case decision.StateNoIdentifier:
		return dErrors.CodeBadRequest
	case decision.StateInvalidFormat:
		return dErrors.CodeValidation
	case decision.StateConfigurationMissing:
		return dErrors.CodeConfiguration
	case decision.StateResolverError:
		return dErrors.CodeUnavailable
	case decision.StateResolvedNotFound:
		return dErrors.CodeForbidden
	default:
		return dErrors.CodeInternal
	}
}

func denialResponse(d decision.Decision) Response {
	code := denialCode(d)
	message := d.Reason
	if code == dErrors.CodeInternal || message == "" {
		message = httputil.GenericInternalMessage
	}
	return messageResponse(httputil.StatusFor(code), message)
}
