// Package store persists payment records.
//
// Error contract:
//   - Create returns sentinel.ErrConflict when the payment ID or transaction
//     reference already exists.
//   - FindByID returns sentinel.ErrNotFound for unknown payments.
package store

import (
	"context"
	"sort"
	"sync"

	"motorcover/internal/payment/models"
	id "motorcover/pkg/domain"
	"motorcover/pkg/platform/sentinel"
)

// Memory is an in-memory payment store for tests and local runs.
type Memory struct {
	mu       sync.RWMutex
	payments map[id.PaymentID]*models.Payment
}

func NewMemory() *Memory {
	return &Memory{payments: make(map[id.PaymentID]*models.Payment)}
}

func (s *Memory) Create(_ context.Context, payment *models.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.payments[payment.ID]; exists {
		return sentinel.ErrConflict
	}
	for _, existing := range s.payments {
		if existing.TransactionID == payment.TransactionID {
			return sentinel.ErrConflict
		}
	}
	clone := *payment
	s.payments[payment.ID] = &clone
	return nil
}

func (s *Memory) FindByID(_ context.Context, paymentID id.PaymentID) (*models.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	payment, ok := s.payments[paymentID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	clone := *payment
	return &clone, nil
}

func (s *Memory) ListByUser(_ context.Context, userID id.UserID) ([]*models.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.Payment
	for _, payment := range s.payments {
		if payment.UserID == userID {
			clone := *payment
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Memory) ListByPolicy(_ context.Context, policyID id.PolicyID) ([]*models.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.Payment
	for _, payment := range s.payments {
		if payment.PolicyID == policyID {
			clone := *payment
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}
