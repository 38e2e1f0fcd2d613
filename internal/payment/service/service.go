package service

import (
	"context"

	"motorcover/internal/authz"
	"motorcover/internal/payment/models"
	id "motorcover/pkg/domain"
	dErrors "motorcover/pkg/domain-errors"
)

// PaymentStore is the slice of the payment store the service needs.
type PaymentStore interface {
	ListByUser(ctx context.Context, userID id.UserID) ([]*models.Payment, error)
	ListByPolicy(ctx context.Context, policyID id.PolicyID) ([]*models.Payment, error)
}

// Service serves payment history. Payments are written by issuance only;
// this surface is read-only.
type Service struct {
	payments PaymentStore
}

func New(payments PaymentStore) *Service {
	return &Service{payments: payments}
}

// History returns the caller's own payments, newest first.
func (s *Service) History(ctx context.Context, actor authz.Identity) ([]*models.Payment, error) {
	if err := authz.RequireIdentity(actor); err != nil {
		return nil, err
	}
	payments, err := s.payments.ListByUser(ctx, actor.UserID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "payment store failure")
	}
	return payments, nil
}

// ListByPolicy returns every payment against one policy. Reviewer access.
func (s *Service) ListByPolicy(ctx context.Context, actor authz.Identity, policyID id.PolicyID) ([]*models.Payment, error) {
	if err := authz.RequireReviewer(actor); err != nil {
		return nil, err
	}
	payments, err := s.payments.ListByPolicy(ctx, policyID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "payment store failure")
	}
	return payments, nil
}
