package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"motorcover/internal/authz"
	"motorcover/internal/vehicle/models"
	id "motorcover/pkg/domain"
	"motorcover/pkg/platform/httputil"
	"motorcover/pkg/requestcontext"
)

// Service defines the vehicle operations the handler depends on.
type Service interface {
	Add(ctx context.Context, actor authz.Identity, p models.NewVehicleParams) (*models.Vehicle, error)
	List(ctx context.Context, actor authz.Identity) ([]*models.Vehicle, error)
	Get(ctx context.Context, actor authz.Identity, vehicleID id.VehicleID) (*models.Vehicle, error)
	Update(ctx context.Context, actor authz.Identity, vehicleID id.VehicleID, patch models.Patch) (*models.Vehicle, error)
	Delete(ctx context.Context, actor authz.Identity, vehicleID id.VehicleID) error
}

// Handler wires vehicle endpoints to the vehicle service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts vehicle routes.
func (h *Handler) Register(r chi.Router) {
	r.Route("/vehicles", func(r chi.Router) {
		r.Post("/", h.HandleAdd)
		r.Get("/", h.HandleList)
		r.Get("/{vehicleID}", h.HandleGet)
		r.Patch("/{vehicleID}", h.HandleUpdate)
		r.Delete("/{vehicleID}", h.HandleDelete)
	})
}

func (h *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor := authz.FromContext(ctx)
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[AddVehicleRequest](w, r, h.logger, requestID)
	if !ok {
		return
	}

	vehicle, err := h.service.Add(ctx, actor, req.Params())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "vehicle added",
		"request_id", requestID,
		"vehicle_id", vehicle.ID,
		"owner_id", actor.UserID,
	)
	httputil.WriteJSON(w, http.StatusCreated, vehicle)
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	vehicles, err := h.service.List(ctx, authz.FromContext(ctx))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, vehicles)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	vehicleID, err := id.ParseVehicleID(chi.URLParam(r, "vehicleID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	vehicle, err := h.service.Get(ctx, authz.FromContext(ctx), vehicleID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, vehicle)
}

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	vehicleID, err := id.ParseVehicleID(chi.URLParam(r, "vehicleID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[UpdateVehicleRequest](w, r, h.logger, requestID)
	if !ok {
		return
	}

	vehicle, err := h.service.Update(ctx, authz.FromContext(ctx), vehicleID, req.Patch())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, vehicle)
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	vehicleID, err := id.ParseVehicleID(chi.URLParam(r, "vehicleID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := h.service.Delete(ctx, authz.FromContext(ctx), vehicleID); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
