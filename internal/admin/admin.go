package admin

import (
	"log/slog"

	"motorcover/internal/admin/handler"
	"motorcover/internal/admin/service"
)

// Service serves the back-office aggregate views.
type Service = service.Service

// Handler wires the dashboard endpoints.
type Handler = handler.Handler

// NewService constructs the admin service over the domain stores.
func NewService(users service.UserStore, vehicles service.VehicleStore, proposals service.ProposalStore, policies service.PolicyStore, claims service.ClaimStore, opts ...service.Option) *Service {
	return service.New(users, vehicles, proposals, policies, claims, opts...)
}

// NewHandler constructs the HTTP handler for admin routes.
func NewHandler(s *Service, logger *slog.Logger) *Handler {
	return handler.New(s, logger)
}
