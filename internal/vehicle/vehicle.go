package vehicle

import (
	"log/slog"

	"motorcover/internal/vehicle/handler"
	"motorcover/internal/vehicle/service"
)

// Service manages the customer vehicle registry.
type Service = service.Service

// Handler wires HTTP endpoints to the vehicle service.
type Handler = handler.Handler

// NewService constructs the vehicle service with required dependencies.
func NewService(vehicles service.VehicleStore, opts ...service.Option) *Service {
	return service.New(vehicles, opts...)
}

// NewHandler constructs the HTTP handler for vehicle routes.
func NewHandler(s *Service, logger *slog.Logger) *Handler {
	return handler.New(s, logger)
}
