package httptransport

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"cpfgate/internal/authorizer"
	dErrors "cpfgate/pkg/domain-errors"
	"cpfgate/pkg/platform/httputil"
	"cpfgate/pkg/requestcontext"
)

const maxBodyBytes = 16 << 10

// AuthorizeService runs one authorization request.
type AuthorizeService interface {
	Authorize(ctx context.Context, req authorizer.Request) authorizer.Result
}

// AuthorizeHandler exposes the authorizer over plain HTTP. Policy results are
// written as 200 with the policy document; token results carry their own
// status code.
type AuthorizeHandler struct {
	service         AuthorizeService
	defaultResource string
	logger          *slog.Logger
}

func NewAuthorizeHandler(service AuthorizeService, defaultResource string, logger *slog.Logger) *AuthorizeHandler {
	if defaultResource == "" {
		defaultResource = authorizer.DefaultResource
	}
	return &AuthorizeHandler{service: service, defaultResource: defaultResource, logger: logger}
}

func (h *AuthorizeHandler) HandleAuthorize(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		h.logger.WarnContext(ctx, "failed to read authorize body",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "Request body could not be read"))
		return
	}

	resource := r.URL.Query().Get("methodArn")
	if resource == "" {
		resource = h.defaultResource
	}

	res := h.service.Authorize(ctx, authorizer.Request{
		Headers:  flattenHeaders(r.Header),
		Body:     string(body),
		Resource: resource,
	})

	switch {
	case res.Policy != nil:
		httputil.WriteJSON(w, http.StatusOK, res.Policy)
	case res.Response != nil:
		for k, v := range res.Response.Headers {
			w.Header().Set(k, v)
		}
		w.WriteHeader(res.Response.StatusCode)
		_, _ = io.WriteString(w, res.Response.Body)
	default:
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "empty authorization result"))
	}
}

// flattenHeaders keeps the first value of each header under its canonical name.
func flattenHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k, v := range h {
		if len(v) > 0 {
			out[k] = v[0]
		}
	}
	return out
}
