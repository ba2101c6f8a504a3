package authorizer

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"strings"

	dErrors "cpfgate/pkg/domain-errors"
)

// HeaderName is the canonical header carrying the CPF.
const HeaderName = "cpf"

// Request is a transport-neutral inbound request.
type Request struct {
	Headers map[string]string
	Body    string
	// Resource is echoed into the policy; "*" when empty.
	Resource string
}

// ErrMalformedBody is returned when a non-empty body is not a JSON object.
var ErrMalformedBody = dErrors.New(dErrors.CodeBadRequest, "Request body is not valid JSON")

// ExtractCPF finds the identifier in headers, then in the JSON body. Header
// lookup tries "cpf", then "CPF", then any case-insensitive match. The result
// is trimmed; an absent identifier is "" with a nil error.
func ExtractCPF(headers map[string]string, body string) (string, error) {
	if v, ok := lookupHeader(headers); ok {
		if v = strings.TrimSpace(v); v != "" {
			return v, nil
		}
	}
	return cpfFromBody(body)
}

func lookupHeader(headers map[string]string) (string, bool) {
	if v, ok := headers[HeaderName]; ok {
		return v, true
	}
	if v, ok := headers[strings.ToUpper(HeaderName)]; ok {
		return v, true
	}
	for k, v := range headers {
		if strings.EqualFold(k, HeaderName) {
			return v, true
		}
	}
	return "", false
}

func cpfFromBody(body string) (string, error) {
	if strings.TrimSpace(body) == "" {
		return "", nil
	}
	dec := json.NewDecoder(bytes.NewBufferString(body))
	dec.UseNumber()
	var payload struct {
		CPF any `json:"cpf"`
	}
	if err := dec.Decode(&payload); err != nil {
		return "", ErrMalformedBody
	}
	// exactly one JSON value; trailing whitespace only
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return "", ErrMalformedBody
	}
	switch v := payload.CPF.(type) {
	case string:
		return strings.TrimSpace(v), nil
	case json.Number:
		return v.String(), nil
	default:
		return "", nil
	}
}
