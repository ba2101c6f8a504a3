// Package resource is the sample protected API behind the issued tokens.
package resource

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	dErrors "cpfgate/pkg/domain-errors"
	"cpfgate/pkg/platform/httputil"
	"cpfgate/pkg/requestcontext"
)

const AuthenticatedMessage = "Request authenticated"

type ProtectedResponse struct {
	Message  string `json:"message"`
	CPF      string `json:"cpf"`
	Customer bool   `json:"customer"`
}

type Handler struct {
	logger *slog.Logger
}

func NewHandler(logger *slog.Logger) *Handler {
	return &Handler{logger: logger}
}

// Register mounts GET /protected behind requireAuth.
func (h *Handler) Register(r chi.Router, requireAuth func(http.Handler) http.Handler) {
	r.With(requireAuth).Get("/protected", h.HandleProtected)
}

func (h *Handler) HandleProtected(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	subject, ok := requestcontext.SubjectFrom(ctx)
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "Missing or invalid Authorization header"))
		return
	}
	h.logger.InfoContext(ctx, "protected resource accessed",
		"request_id", requestcontext.RequestID(ctx),
		"customer", subject.Customer,
	)
	httputil.WriteJSON(w, http.StatusOK, ProtectedResponse{
		Message:  AuthenticatedMessage,
		CPF:      subject.CPF,
		Customer: subject.Customer,
	})
}
