package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"motorcover/internal/user/models"
	id "motorcover/pkg/domain"
	"motorcover/pkg/platform/sentinel"
)

// Error Contract:
// All store methods follow this pattern:
// - Return sentinel.ErrNotFound when the requested user does not exist
// - Return sentinel.ErrConflict when a unique constraint would be violated
// - Return wrapped errors with context for infrastructure failures

// Memory stores users in memory for tests and development.
type Memory struct {
	mu    sync.RWMutex
	users map[id.UserID]*models.User
}

func NewMemory() *Memory {
	return &Memory{users: make(map[id.UserID]*models.User)}
}

func (s *Memory) Create(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.ID]; ok {
		return fmt.Errorf("user %s already exists: %w", user.ID, sentinel.ErrConflict)
	}
	for _, existing := range s.users {
		if strings.EqualFold(existing.Email, user.Email) {
			return fmt.Errorf("email already registered: %w", sentinel.ErrConflict)
		}
	}
	copied := *user
	s.users[user.ID] = &copied
	return nil
}

func (s *Memory) FindByID(_ context.Context, userID id.UserID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[userID]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", userID, sentinel.ErrNotFound)
	}
	copied := *user
	return &copied, nil
}

func (s *Memory) Update(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.ID]; !ok {
		return fmt.Errorf("user %s: %w", user.ID, sentinel.ErrNotFound)
	}
	copied := *user
	s.users[user.ID] = &copied
	return nil
}

// Execute runs validate and mutate under the store lock so two concurrent
// transitions on the same user cannot interleave.
func (s *Memory) Execute(_ context.Context, userID id.UserID, validate func(*models.User) error, mutate func(*models.User)) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[userID]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", userID, sentinel.ErrNotFound)
	}
	if err := validate(user); err != nil {
		return nil, err
	}
	mutate(user)
	copied := *user
	return &copied, nil
}

func (s *Memory) List(_ context.Context, offset, limit int) ([]*models.User, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]*models.User, 0, len(s.users))
	for _, user := range s.users {
		copied := *user
		all = append(all, &copied)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })

	total := len(all)
	if offset >= total {
		return []*models.User{}, total, nil
	}
	end := offset + limit
	if limit <= 0 || end > total {
		end = total
	}
	return all[offset:end], total, nil
}

func (s *Memory) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users), nil
}
