package payment

import (
	"log/slog"

	"motorcover/internal/payment/handler"
	"motorcover/internal/payment/service"
)

// Service serves payment history.
type Service = service.Service

// Handler wires the payment history endpoints.
type Handler = handler.Handler

// NewService constructs the payment service.
func NewService(payments service.PaymentStore) *Service {
	return service.New(payments)
}

// NewHandler constructs the HTTP handler for payment routes.
func NewHandler(s *Service, logger *slog.Logger) *Handler {
	return handler.New(s, logger)
}
