package store

import (
	"context"
	"sort"
	"sync"

	"motorcover/internal/notification/models"
	id "motorcover/pkg/domain"
	"motorcover/pkg/platform/sentinel"
)

// Memory is an in-memory outbox for tests and local development.
//
// Error contract:
//   - Create returns sentinel.ErrConflict when the event ID already exists.
//   - Update and FindByID return sentinel.ErrNotFound for unknown IDs.
type Memory struct {
	mu     sync.RWMutex
	events map[id.NotificationID]models.Event
}

func NewMemory() *Memory {
	return &Memory{events: make(map[id.NotificationID]models.Event)}
}

func (s *Memory) Create(_ context.Context, event *models.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.events[event.ID]; exists {
		return sentinel.ErrConflict
	}
	s.events[event.ID] = *event
	return nil
}

func (s *Memory) FindByID(_ context.Context, eventID id.NotificationID) (*models.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	event, exists := s.events[eventID]
	if !exists {
		return nil, sentinel.ErrNotFound
	}
	return &event, nil
}

// ListPending returns undelivered events oldest first, up to limit.
// Failed events are included so the relay retries them.
func (s *Memory) ListPending(_ context.Context, limit int) ([]*models.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pending := make([]*models.Event, 0)
	for _, event := range s.events {
		if event.Status == models.EventStatusSent {
			continue
		}
		e := event
		pending = append(pending, &e)
	}
	sort.Slice(pending, func(i, j int) bool {
		return pending[i].CreatedAt.Before(pending[j].CreatedAt)
	})
	if limit > 0 && len(pending) > limit {
		pending = pending[:limit]
	}
	return pending, nil
}

// Update persists delivery bookkeeping written by MarkSent or MarkFailed.
func (s *Memory) Update(_ context.Context, event *models.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.events[event.ID]; !exists {
		return sentinel.ErrNotFound
	}
	s.events[event.ID] = *event
	return nil
}
