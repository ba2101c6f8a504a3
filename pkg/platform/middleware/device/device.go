// Package device derives a coarse device name from the User-Agent header for
// audit events.
package device

import (
	"context"
	"net/http"
	"strings"

	"github.com/mssola/useragent"
)

type contextKeyDeviceName struct{}

// Name returns the device name stored on ctx.
func Name(ctx context.Context) string {
	if name, ok := ctx.Value(contextKeyDeviceName{}).(string); ok {
		return name
	}
	return ""
}

// WithName injects a device name into a context.
// Useful for service unit tests that don't run the full HTTP middleware chain.
func WithName(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, contextKeyDeviceName{}, name)
}

// NameFromUserAgent renders "<browser> on <os>", "<bot> (bot)" or "" for an
// empty header.
func NameFromUserAgent(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}
	ua := useragent.New(raw)
	browser, _ := ua.Browser()
	if ua.Bot() {
		return browser + " (bot)"
	}
	os := ua.OSInfo().Name
	switch {
	case browser != "" && os != "":
		return browser + " on " + os
	case browser != "":
		return browser
	case os != "":
		return os
	default:
		return "unknown"
	}
}

// Middleware stores the device name derived from User-Agent on the request context.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := WithName(r.Context(), NameFromUserAgent(r.UserAgent()))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
