package claim

import (
	"log/slog"

	"motorcover/internal/claim/handler"
	"motorcover/internal/claim/service"
)

// Service drives the claim state machine.
type Service = service.Service

// Handler wires HTTP endpoints to the claim service.
type Handler = handler.Handler

// NewService constructs the claim service with required dependencies.
func NewService(claims service.ClaimStore, policies service.PolicyReader, opts ...service.Option) *Service {
	return service.New(claims, policies, opts...)
}

// NewHandler constructs the HTTP handler for claim routes.
func NewHandler(s *Service, logger *slog.Logger) *Handler {
	return handler.New(s, logger)
}
