package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"motorcover/internal/authz"
	"motorcover/internal/payment/models"
	id "motorcover/pkg/domain"
	"motorcover/pkg/platform/httputil"
)

// Service defines the payment operations the handler depends on.
type Service interface {
	History(ctx context.Context, actor authz.Identity) ([]*models.Payment, error)
	ListByPolicy(ctx context.Context, actor authz.Identity, policyID id.PolicyID) ([]*models.Payment, error)
}

// Handler wires the payment history endpoints.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the customer-facing payment route.
func (h *Handler) Register(r chi.Router) {
	r.Get("/payments", h.HandleHistory)
}

// RegisterAdmin mounts the per-policy payment listing.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Get("/policies/{policyID}/payments", h.HandleListByPolicy)
}

func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	payments, err := h.service.History(ctx, authz.FromContext(ctx))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, payments)
}

func (h *Handler) HandleListByPolicy(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	policyID, err := id.ParsePolicyID(chi.URLParam(r, "policyID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	payments, err := h.service.ListByPolicy(ctx, authz.FromContext(ctx), policyID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, payments)
}
