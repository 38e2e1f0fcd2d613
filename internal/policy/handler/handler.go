package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"motorcover/internal/authz"
	"motorcover/internal/policy/models"
	"motorcover/internal/policy/service"
	id "motorcover/pkg/domain"
	"motorcover/pkg/platform/httputil"
	"motorcover/pkg/requestcontext"
)

// Service defines the policy operations the handler depends on.
type Service interface {
	List(ctx context.Context, actor authz.Identity) ([]*models.Policy, error)
	Get(ctx context.Context, actor authz.Identity, policyID id.PolicyID) (*service.Detail, error)
	Create(ctx context.Context, actor authz.Identity, p models.NewPolicyParams) (*models.Policy, error)
	Update(ctx context.Context, actor authz.Identity, policyID id.PolicyID, patch models.Patch) (*models.Policy, error)
	Renew(ctx context.Context, actor authz.Identity, policyID id.PolicyID, months int, premiumOverride *float64) (*models.Policy, error)
	Terminate(ctx context.Context, actor authz.Identity, policyID id.PolicyID, reason string) (*models.Policy, error)
	ListAll(ctx context.Context, actor authz.Identity, offset, limit int) ([]*models.Policy, int, error)
}

// Handler wires policy endpoints to the policy service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the customer-facing policy routes.
func (h *Handler) Register(r chi.Router) {
	r.Route("/policies", func(r chi.Router) {
		r.Get("/", h.HandleList)
		r.Get("/{policyID}", h.HandleGet)
		r.Post("/{policyID}/renew", h.HandleRenew)
	})
}

// RegisterAdmin mounts the administrative policy routes.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Get("/policies", h.HandleListAll)
	r.Post("/policies", h.HandleCreate)
	r.Patch("/policies/{policyID}", h.HandleUpdate)
	r.Post("/policies/{policyID}/terminate", h.HandleTerminate)
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	policies, err := h.service.List(ctx, authz.FromContext(ctx))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, policies)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	policyID, err := id.ParsePolicyID(chi.URLParam(r, "policyID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	detail, err := h.service.Get(ctx, authz.FromContext(ctx), policyID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromDetail(detail))
}

func (h *Handler) HandleRenew(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	policyID, err := id.ParsePolicyID(chi.URLParam(r, "policyID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[RenewPolicyRequest](w, r, h.logger, requestID)
	if !ok {
		return
	}

	policy, err := h.service.Renew(ctx, authz.FromContext(ctx), policyID, req.Months, req.PremiumOverride)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "policy renewal accepted",
		"request_id", requestID,
		"policy_id", policyID,
		"months", req.Months,
	)
	httputil.WriteJSON(w, http.StatusOK, policy)
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[CreatePolicyRequest](w, r, h.logger, requestID)
	if !ok {
		return
	}

	policy, err := h.service.Create(ctx, authz.FromContext(ctx), req.Params())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "policy created",
		"request_id", requestID,
		"policy_id", policy.ID,
		"owner_id", policy.OwnerID,
	)
	httputil.WriteJSON(w, http.StatusCreated, policy)
}

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	policyID, err := id.ParsePolicyID(chi.URLParam(r, "policyID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[UpdatePolicyRequest](w, r, h.logger, requestID)
	if !ok {
		return
	}

	policy, err := h.service.Update(ctx, authz.FromContext(ctx), policyID, req.Patch())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, policy)
}

func (h *Handler) HandleTerminate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	policyID, err := id.ParsePolicyID(chi.URLParam(r, "policyID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[TerminatePolicyRequest](w, r, h.logger, requestID)
	if !ok {
		return
	}

	policy, err := h.service.Terminate(ctx, authz.FromContext(ctx), policyID, req.Reason)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, policy)
}

func (h *Handler) HandleListAll(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	page := httputil.ParsePage(r)

	policies, total, err := h.service.ListAll(ctx, authz.FromContext(ctx), page.Offset, page.Limit)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, ListAllResponse{Policies: policies, Total: total})
}

// ListAllResponse is the paginated administrative listing payload.
type ListAllResponse struct {
	Policies []*models.Policy `json:"policies"`
	Total    int              `json:"total"`
}
