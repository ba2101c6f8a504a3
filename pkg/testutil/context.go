package testutil

import (
	"net/http"

	"cpfgate/pkg/requestcontext"
)

// WithSubject marks req as authenticated, as the bearer middleware would.
func WithSubject(req *http.Request, cpf string, customer bool) *http.Request {
	ctx := requestcontext.WithSubject(req.Context(), requestcontext.Subject{CPF: cpf, Customer: customer})
	return req.WithContext(ctx)
}
