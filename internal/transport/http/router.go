// Package httptransport wires the HTTP surface of the gateway.
package httptransport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"cpfgate/internal/directory"
	"cpfgate/internal/platform/metrics"
	"cpfgate/internal/resource"
	"cpfgate/pkg/platform/httputil"
	"cpfgate/pkg/platform/middleware/auth"
	"cpfgate/pkg/platform/middleware/device"
	"cpfgate/pkg/platform/middleware/metadata"
	"cpfgate/pkg/platform/middleware/requesttime"
)

// HealthCheck reports a dependency problem; nil means healthy.
type HealthCheck func(ctx context.Context) error

// Deps are the handlers and collaborators mounted by NewRouter. Nil handlers
// leave their route unmounted.
type Deps struct {
	Authorize      *AuthorizeHandler
	Lookup         *directory.Handler
	Protected      *resource.Handler
	TokenValidator auth.TokenValidator
	Metrics        *metrics.Metrics
	Gatherer       prometheus.Gatherer
	Health         map[string]HealthCheck
	Logger         *slog.Logger
}

func NewRouter(d Deps) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(metadata.RequestID)
	r.Use(requesttime.Middleware)
	r.Use(metadata.ClientMetadata)
	r.Use(device.Middleware)
	r.Use(d.Metrics.Middleware)

	r.Get("/health", healthHandler(d.Health, d.Logger))
	if d.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))
	}
	if d.Authorize != nil {
		r.Post("/authorize", d.Authorize.HandleAuthorize)
	}
	if d.Lookup != nil {
		d.Lookup.Register(r)
	}
	if d.Protected != nil && d.TokenValidator != nil {
		d.Protected.Register(r, auth.RequireAuth(d.TokenValidator, d.Logger))
	}
	return r
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func healthHandler(checks map[string]HealthCheck, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := healthResponse{Status: "ok"}
		status := http.StatusOK
		if len(checks) > 0 {
			resp.Checks = make(map[string]string, len(checks))
		}
		for name, check := range checks {
			if err := check(r.Context()); err != nil {
				logger.WarnContext(r.Context(), "health check failed", "check", name, "error", err)
				resp.Checks[name] = "unavailable"
				resp.Status = "degraded"
				status = http.StatusServiceUnavailable
				continue
			}
			resp.Checks[name] = "ok"
		}
		httputil.WriteJSON(w, status, resp)
	}
}
