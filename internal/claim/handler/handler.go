package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"motorcover/internal/authz"
	"motorcover/internal/claim/models"
	"motorcover/internal/claim/service"
	id "motorcover/pkg/domain"
	"motorcover/pkg/platform/httputil"
	"motorcover/pkg/requestcontext"
)

// Service defines the claim operations the handler depends on.
type Service interface {
	File(ctx context.Context, actor authz.Identity, p models.NewClaimParams, attachment *service.Attachment) (*models.Claim, error)
	List(ctx context.Context, actor authz.Identity) ([]*service.Listed, error)
	Get(ctx context.Context, actor authz.Identity, claimID id.ClaimID) (*service.Listed, error)
	Update(ctx context.Context, actor authz.Identity, claimID id.ClaimID, patch models.Patch) (*models.Claim, error)
	StartReview(ctx context.Context, actor authz.Identity, claimID id.ClaimID) (*models.Claim, error)
	Approve(ctx context.Context, actor authz.Identity, claimID id.ClaimID, approvedAmount float64, notes string) (*models.Claim, error)
	Reject(ctx context.Context, actor authz.Identity, claimID id.ClaimID, notes string) (*models.Claim, error)
	Settle(ctx context.Context, actor authz.Identity, claimID id.ClaimID) (*models.Claim, error)
	Delete(ctx context.Context, actor authz.Identity, claimID id.ClaimID) error
	ListAll(ctx context.Context, actor authz.Identity, offset, limit int) ([]*models.Claim, int, error)
}

// Handler wires claim endpoints to the claim service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the customer-facing claim routes.
func (h *Handler) Register(r chi.Router) {
	r.Route("/claims", func(r chi.Router) {
		r.Post("/", h.HandleFile)
		r.Get("/", h.HandleList)
		r.Get("/{claimID}", h.HandleGet)
		r.Patch("/{claimID}", h.HandleUpdate)
		r.Post("/{claimID}/withdraw", h.HandleReject)
	})
}

// RegisterAdmin mounts the assessment and cleanup routes.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Get("/claims", h.HandleListAll)
	r.Post("/claims/{claimID}/review", h.HandleStartReview)
	r.Post("/claims/{claimID}/approve", h.HandleApprove)
	r.Post("/claims/{claimID}/reject", h.HandleReject)
	r.Post("/claims/{claimID}/settle", h.HandleSettle)
	r.Delete("/claims/{claimID}", h.HandleDelete)
}

func (h *Handler) HandleFile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor := authz.FromContext(ctx)
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[FileClaimRequest](w, r, h.logger, requestID)
	if !ok {
		return
	}

	claim, err := h.service.File(ctx, actor, req.Params(), req.ParsedAttachment())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "claim filed",
		"request_id", requestID,
		"claim_id", claim.ID,
		"policy_id", claim.PolicyID,
		"owner_id", claim.OwnerID,
	)
	httputil.WriteJSON(w, http.StatusCreated, claim)
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	listed, err := h.service.List(ctx, authz.FromContext(ctx))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromListed(listed))
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	claimID, err := id.ParseClaimID(chi.URLParam(r, "claimID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	listed, err := h.service.Get(ctx, authz.FromContext(ctx), claimID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromOne(listed))
}

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	claimID, err := id.ParseClaimID(chi.URLParam(r, "claimID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[UpdateClaimRequest](w, r, h.logger, requestID)
	if !ok {
		return
	}

	claim, err := h.service.Update(ctx, authz.FromContext(ctx), claimID, req.Patch())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, claim)
}

func (h *Handler) HandleStartReview(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.StartReview)
}

func (h *Handler) HandleSettle(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.Settle)
}

func (h *Handler) HandleApprove(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	claimID, err := id.ParseClaimID(chi.URLParam(r, "claimID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[ApproveClaimRequest](w, r, h.logger, requestID)
	if !ok {
		return
	}

	claim, err := h.service.Approve(ctx, authz.FromContext(ctx), claimID, req.ApprovedAmount, req.Notes)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "claim approved",
		"request_id", requestID,
		"claim_id", claimID,
		"approved_amount", req.ApprovedAmount,
	)
	httputil.WriteJSON(w, http.StatusOK, claim)
}

func (h *Handler) HandleReject(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	claimID, err := id.ParseClaimID(chi.URLParam(r, "claimID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[RejectClaimRequest](w, r, h.logger, requestID)
	if !ok {
		return
	}

	claim, err := h.service.Reject(ctx, authz.FromContext(ctx), claimID, req.Notes)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, claim)
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	claimID, err := id.ParseClaimID(chi.URLParam(r, "claimID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := h.service.Delete(ctx, authz.FromContext(ctx), claimID); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) HandleListAll(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	page := httputil.ParsePage(r)

	claims, total, err := h.service.ListAll(ctx, authz.FromContext(ctx), page.Offset, page.Limit)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, ListAllResponse{Claims: claims, Total: total})
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request, op func(context.Context, authz.Identity, id.ClaimID) (*models.Claim, error)) {
	ctx := r.Context()

	claimID, err := id.ParseClaimID(chi.URLParam(r, "claimID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	claim, err := op(ctx, authz.FromContext(ctx), claimID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, claim)
}

// ListAllResponse is the paginated assessment listing payload.
type ListAllResponse struct {
	Claims []*models.Claim `json:"claims"`
	Total  int             `json:"total"`
}
