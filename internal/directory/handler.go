package directory

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"cpfgate/pkg/platform/httputil"
)

// LookupService is what the HTTP handler needs.
type LookupService interface {
	Lookup(ctx context.Context, raw string) (*Record, error)
}

type LookupRequest struct {
	CPF string `json:"cpf"`
}

type LookupResponse struct {
	Message    string            `json:"message"`
	Username   string            `json:"username"`
	Attributes map[string]string `json:"attributes"`
}

type Handler struct {
	service LookupService
}

func NewHandler(service LookupService) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/customers/lookup", h.HandleLookup)
}

func (h *Handler) HandleLookup(w http.ResponseWriter, r *http.Request) {
	req, err := httputil.DecodeJSON[LookupRequest](r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	rec, err := h.service.Lookup(r.Context(), req.CPF)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, LookupResponse{
		Message:    "Customer found",
		Username:   rec.Username,
		Attributes: rec.Attributes,
	})
}
