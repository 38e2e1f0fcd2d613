package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"motorcover/internal/authz"
	"motorcover/internal/proposal/models"
	"motorcover/internal/proposal/service"
	id "motorcover/pkg/domain"
	"motorcover/pkg/platform/httputil"
	"motorcover/pkg/requestcontext"
)

// Service defines the proposal operations the handler depends on.
type Service interface {
	Submit(ctx context.Context, actor authz.Identity, p models.NewProposalParams, attachment *service.Attachment) (*models.Proposal, error)
	List(ctx context.Context, actor authz.Identity) ([]*models.Proposal, error)
	Get(ctx context.Context, actor authz.Identity, proposalID id.ProposalID) (*service.Detail, error)
	Cancel(ctx context.Context, actor authz.Identity, proposalID id.ProposalID) (*models.Proposal, error)
	StartReview(ctx context.Context, actor authz.Identity, proposalID id.ProposalID) (*models.Proposal, error)
	Approve(ctx context.Context, actor authz.Identity, proposalID id.ProposalID) (*models.Proposal, error)
	Reject(ctx context.Context, actor authz.Identity, proposalID id.ProposalID, reason string) (*models.Proposal, error)
	Delete(ctx context.Context, actor authz.Identity, proposalID id.ProposalID) error
	ListAll(ctx context.Context, actor authz.Identity, offset, limit int) ([]*models.Proposal, int, error)
}

// Handler wires proposal endpoints to the proposal service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the customer-facing proposal routes. Flat registration
// lets the issuance handler add its route under the same prefix.
func (h *Handler) Register(r chi.Router) {
	r.Post("/proposals", h.HandleSubmit)
	r.Get("/proposals", h.HandleList)
	r.Get("/proposals/{proposalID}", h.HandleGet)
	r.Post("/proposals/{proposalID}/cancel", h.HandleCancel)
}

// RegisterAdmin mounts the review and cleanup routes.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Get("/proposals", h.HandleListAll)
	r.Post("/proposals/{proposalID}/review", h.HandleStartReview)
	r.Post("/proposals/{proposalID}/approve", h.HandleApprove)
	r.Post("/proposals/{proposalID}/reject", h.HandleReject)
	r.Delete("/proposals/{proposalID}", h.HandleDelete)
}

func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor := authz.FromContext(ctx)
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[SubmitProposalRequest](w, r, h.logger, requestID)
	if !ok {
		return
	}

	proposal, err := h.service.Submit(ctx, actor, req.Params(), req.ParsedAttachment())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "proposal submitted",
		"request_id", requestID,
		"proposal_id", proposal.ID,
		"owner_id", actor.UserID,
		"vehicle_id", proposal.VehicleID,
	)
	httputil.WriteJSON(w, http.StatusCreated, proposal)
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	proposals, err := h.service.List(ctx, authz.FromContext(ctx))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, proposals)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	proposalID, err := id.ParseProposalID(chi.URLParam(r, "proposalID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	detail, err := h.service.Get(ctx, authz.FromContext(ctx), proposalID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromDetail(detail))
}

func (h *Handler) HandleCancel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	proposalID, err := id.ParseProposalID(chi.URLParam(r, "proposalID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	proposal, err := h.service.Cancel(ctx, authz.FromContext(ctx), proposalID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, proposal)
}

func (h *Handler) HandleStartReview(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.StartReview)
}

func (h *Handler) HandleApprove(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	proposalID, err := id.ParseProposalID(chi.URLParam(r, "proposalID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	proposal, err := h.service.Approve(ctx, authz.FromContext(ctx), proposalID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "proposal approved",
		"request_id", requestID,
		"proposal_id", proposalID,
	)
	httputil.WriteJSON(w, http.StatusOK, proposal)
}

func (h *Handler) HandleReject(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	proposalID, err := id.ParseProposalID(chi.URLParam(r, "proposalID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[RejectProposalRequest](w, r, h.logger, requestID)
	if !ok {
		return
	}

	proposal, err := h.service.Reject(ctx, authz.FromContext(ctx), proposalID, req.Reason)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, proposal)
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	proposalID, err := id.ParseProposalID(chi.URLParam(r, "proposalID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := h.service.Delete(ctx, authz.FromContext(ctx), proposalID); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) HandleListAll(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	page := httputil.ParsePage(r)

	proposals, total, err := h.service.ListAll(ctx, authz.FromContext(ctx), page.Offset, page.Limit)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, ListAllResponse{Proposals: proposals, Total: total})
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request, op func(context.Context, authz.Identity, id.ProposalID) (*models.Proposal, error)) {
	ctx := r.Context()

	proposalID, err := id.ParseProposalID(chi.URLParam(r, "proposalID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	proposal, err := op(ctx, authz.FromContext(ctx), proposalID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, proposal)
}

// ListAllResponse is the paginated review listing payload.
type ListAllResponse struct {
	Proposals []*models.Proposal `json:"proposals"`
	Total     int                `json:"total"`
}
