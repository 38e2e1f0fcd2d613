package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"motorcover/internal/admin/service"
	"motorcover/internal/authz"
	id "motorcover/pkg/domain"
	"motorcover/pkg/platform/httputil"
)

// Service defines the admin operations the handler depends on.
type Service interface {
	Dashboard(ctx context.Context, actor authz.Identity) (*service.Dashboard, error)
	UserDetail(ctx context.Context, actor authz.Identity, userID id.UserID) (*service.UserDetail, error)
}

// Handler wires the back-office aggregate endpoints.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterAdmin mounts the dashboard routes on the admin router.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Get("/dashboard", h.HandleDashboard)
	r.Get("/users/{userID}/detail", h.HandleUserDetail)
}

func (h *Handler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	dashboard, err := h.service.Dashboard(ctx, authz.FromContext(ctx))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, dashboard)
}

func (h *Handler) HandleUserDetail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, err := id.ParseUserID(chi.URLParam(r, "userID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	detail, err := h.service.UserDetail(ctx, authz.FromContext(ctx), userID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, detail)
}
