package policy

import (
	"log/slog"

	"motorcover/internal/policy/handler"
	"motorcover/internal/policy/service"
)

// Service manages the policy portfolio and the renewal path.
type Service = service.Service

// Handler wires HTTP endpoints to the policy service.
type Handler = handler.Handler

// NewService constructs the policy service with required dependencies.
func NewService(policies service.PolicyStore, vehicles service.VehicleReader, opts ...service.Option) *Service {
	return service.New(policies, vehicles, opts...)
}

// NewHandler constructs the HTTP handler for policy routes.
func NewHandler(s *Service, logger *slog.Logger) *Handler {
	return handler.New(s, logger)
}
