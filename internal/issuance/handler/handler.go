package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"motorcover/internal/authz"
	"motorcover/internal/issuance/service"
	id "motorcover/pkg/domain"
	"motorcover/pkg/platform/httputil"
	"motorcover/pkg/requestcontext"
)

// Service defines the issuance operation the handler depends on.
type Service interface {
	IssuePolicyFromProposal(ctx context.Context, actor authz.Identity, proposalID id.ProposalID) (*service.Result, error)
}

// Handler wires the issuance endpoint to the issuance service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the issuance route under the proposal resource.
func (h *Handler) Register(r chi.Router) {
	r.Post("/proposals/{proposalID}/issue", h.HandleIssue)
}

func (h *Handler) HandleIssue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	proposalID, err := id.ParseProposalID(chi.URLParam(r, "proposalID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	result, err := h.service.IssuePolicyFromProposal(ctx, authz.FromContext(ctx), proposalID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "issuance request completed",
		"request_id", requestID,
		"proposal_id", proposalID,
		"policy_id", result.Policy.ID,
	)
	httputil.WriteJSON(w, http.StatusCreated, result)
}
