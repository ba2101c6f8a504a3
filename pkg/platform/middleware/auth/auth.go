package auth

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	dErrors "cpfgate/pkg/domain-errors"
	"cpfgate/pkg/platform/httputil"
	"cpfgate/pkg/requestcontext"
)

// TokenValidator verifies a bearer token and returns the subject it was issued to.
type TokenValidator interface {
	ValidateSubject(ctx context.Context, token string) (requestcontext.Subject, error)
}

const bearerPrefix = "Bearer "

// RequireAuth rejects requests without a valid bearer token and stores the
// verified subject in the request context.
func RequireAuth(validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			requestID := requestcontext.RequestID(ctx)

			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), bearerPrefix)
			if !ok || strings.TrimSpace(token) == "" {
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", requestID,
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "Missing or invalid Authorization header"))
				return
			}

			subject, err := validator.ValidateSubject(ctx, strings.TrimSpace(token))
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", requestID,
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "Invalid or expired token"))
				return
			}

			next.ServeHTTP(w, r.WithContext(requestcontext.WithSubject(ctx, subject)))
		})
	}
}
