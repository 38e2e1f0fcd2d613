package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"motorcover/internal/authz"
	"motorcover/internal/user/models"
	id "motorcover/pkg/domain"
	dErrors "motorcover/pkg/domain-errors"
	"motorcover/pkg/platform/httputil"
	"motorcover/pkg/requestcontext"
)

// Service defines the user operations the handler depends on.
type Service interface {
	Get(ctx context.Context, actor authz.Identity, userID id.UserID) (*models.User, error)
	UpdateProfile(ctx context.Context, actor authz.Identity, userID id.UserID, patch models.ProfilePatch) (*models.User, error)
	List(ctx context.Context, actor authz.Identity, offset, limit int) ([]*models.User, int, error)
	UpdateRole(ctx context.Context, actor authz.Identity, userID id.UserID, role id.Role) (*models.User, error)
	Deactivate(ctx context.Context, actor authz.Identity, userID id.UserID) (*models.User, error)
}

// Handler wires the profile and admin user endpoints.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the customer-facing profile routes.
func (h *Handler) Register(r chi.Router) {
	r.Get("/users/me", h.HandleGetProfile)
	r.Patch("/users/me", h.HandleUpdateProfile)
}

// RegisterAdmin mounts the admin user-management routes.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Get("/users", h.HandleList)
	r.Get("/users/{userID}", h.HandleGetByID)
	r.Put("/users/{userID}/role", h.HandleUpdateRole)
	r.Delete("/users/{userID}", h.HandleDeactivate)
}

func (h *Handler) HandleGetProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor := authz.FromContext(ctx)

	user, err := h.service.Get(ctx, actor, actor.UserID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, user)
}

func (h *Handler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor := authz.FromContext(ctx)
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[UpdateProfileRequest](w, r, h.logger, requestID)
	if !ok {
		return
	}

	user, err := h.service.UpdateProfile(ctx, actor, actor.UserID, models.ProfilePatch{
		Name:    req.Name,
		Phone:   req.Phone,
		Address: req.Address,
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, user)
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor := authz.FromContext(ctx)
	page := httputil.ParsePage(r)

	users, total, err := h.service.List(ctx, actor, page.Offset, page.Limit)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, ListResponse{Users: users, Total: total})
}

func (h *Handler) HandleGetByID(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor := authz.FromContext(ctx)

	userID, err := id.ParseUserID(chi.URLParam(r, "userID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	user, err := h.service.Get(ctx, actor, userID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, user)
}

func (h *Handler) HandleUpdateRole(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor := authz.FromContext(ctx)
	requestID := requestcontext.RequestID(ctx)

	userID, err := id.ParseUserID(chi.URLParam(r, "userID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[UpdateRoleRequest](w, r, h.logger, requestID)
	if !ok {
		return
	}

	user, err := h.service.UpdateRole(ctx, actor, userID, req.ParsedRole())
	if err != nil {
		if dErrors.CodeOf(err) == dErrors.CodeInternal {
			h.logger.ErrorContext(ctx, "role update failed",
				"request_id", requestID,
				"user_id", userID,
				"error", err,
			)
		}
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, user)
}

func (h *Handler) HandleDeactivate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor := authz.FromContext(ctx)

	userID, err := id.ParseUserID(chi.URLParam(r, "userID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	user, err := h.service.Deactivate(ctx, actor, userID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, user)
}

// ListResponse is the paginated admin listing payload.
type ListResponse struct {
	Users []*models.User `json:"users"`
	Total int            `json:"total"`
}
