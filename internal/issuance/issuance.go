package issuance

import (
	"log/slog"

	"motorcover/internal/issuance/handler"
	"motorcover/internal/issuance/service"
)

// Service turns approved proposals into active policies.
type Service = service.Service

// Handler wires the issuance endpoint to the service.
type Handler = handler.Handler

// NewService constructs the issuance service with required dependencies.
func NewService(proposals service.ProposalConverter, policies service.PolicyCreator, payments service.PaymentRecorder, users service.UserReader, runner service.TxRunner, opts ...service.Option) *Service {
	return service.New(proposals, policies, payments, users, runner, opts...)
}

// NewHandler constructs the HTTP handler for the issuance route.
func NewHandler(s *Service, logger *slog.Logger) *Handler {
	return handler.New(s, logger)
}
