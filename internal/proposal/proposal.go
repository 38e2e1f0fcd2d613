package proposal

import (
	"log/slog"

	"motorcover/internal/proposal/handler"
	"motorcover/internal/proposal/service"
)

// Service drives the proposal state machine.
type Service = service.Service

// Handler wires HTTP endpoints to the proposal service.
type Handler = handler.Handler

// NewService constructs the proposal service with required dependencies.
func NewService(proposals service.ProposalStore, vehicles service.VehicleReader, opts ...service.Option) *Service {
	return service.New(proposals, vehicles, opts...)
}

// NewHandler constructs the HTTP handler for proposal routes.
func NewHandler(s *Service, logger *slog.Logger) *Handler {
	return handler.New(s, logger)
}
