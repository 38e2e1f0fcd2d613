package user

import (
	"log/slog"

	"motorcover/internal/user/handler"
	"motorcover/internal/user/service"
)

// Service manages user accounts and roles.
type Service = service.Service

// Handler wires HTTP endpoints to the user service.
type Handler = handler.Handler

// NewService constructs the user service with required dependencies.
func NewService(users service.UserStore, opts ...service.Option) *Service {
	return service.New(users, opts...)
}

// NewHandler constructs the HTTP handler for user routes.
func NewHandler(s *Service, logger *slog.Logger) *Handler {
	return handler.New(s, logger)
}
