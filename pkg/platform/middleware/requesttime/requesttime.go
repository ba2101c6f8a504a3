// Package requesttime pins one "now" per request so the token expiry and the
// audit timestamp of a decision agree.
package requesttime

import (
	"net/http"
	"time"

	"cpfgate/pkg/requestcontext"
)

func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(requestcontext.WithTime(r.Context(), time.Now())))
	})
}
