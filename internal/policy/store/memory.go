package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"motorcover/internal/policy/models"
	id "motorcover/pkg/domain"
	"motorcover/pkg/platform/sentinel"
)

// Memory stores policies in memory for tests and development.
type Memory struct {
	mu       sync.RWMutex
	policies map[id.PolicyID]*models.Policy
}

func NewMemory() *Memory {
	return &Memory{policies: make(map[id.PolicyID]*models.Policy)}
}

func (s *Memory) Create(_ context.Context, policy *models.Policy) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if policy.ProposalID != nil {
		for _, existing := range s.policies {
			if existing.ProposalID != nil && *existing.ProposalID == *policy.ProposalID {
				return fmt.Errorf("proposal %s already has a policy: %w", *policy.ProposalID, sentinel.ErrConflict)
			}
		}
	}
	copied := *policy
	s.policies[policy.ID] = &copied
	return nil
}

func (s *Memory) FindByID(_ context.Context, policyID id.PolicyID) (*models.Policy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	policy, ok := s.policies[policyID]
	if !ok {
		return nil, fmt.Errorf("policy %s: %w", policyID, sentinel.ErrNotFound)
	}
	copied := *policy
	return &copied, nil
}

func (s *Memory) ListByOwner(_ context.Context, ownerID id.UserID) ([]*models.Policy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	owned := make([]*models.Policy, 0)
	for _, policy := range s.policies {
		if policy.OwnerID == ownerID {
			copied := *policy
			owned = append(owned, &copied)
		}
	}
	sort.Slice(owned, func(i, j int) bool { return owned[i].CreatedAt.After(owned[j].CreatedAt) })
	return owned, nil
}

func (s *Memory) List(_ context.Context, offset, limit int) ([]*models.Policy, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]*models.Policy, 0, len(s.policies))
	for _, policy := range s.policies {
		copied := *policy
		all = append(all, &copied)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })

	total := len(all)
	if offset >= total {
		return []*models.Policy{}, total, nil
	}
	end := offset + limit
	if limit <= 0 || end > total {
		end = total
	}
	return all[offset:end], total, nil
}

func (s *Memory) Execute(_ context.Context, policyID id.PolicyID, validate func(*models.Policy) error, mutate func(*models.Policy)) (*models.Policy, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	policy, ok := s.policies[policyID]
	if !ok {
		return nil, fmt.Errorf("policy %s: %w", policyID, sentinel.ErrNotFound)
	}
	if err := validate(policy); err != nil {
		return nil, err
	}
	mutate(policy)
	copied := *policy
	return &copied, nil
}

// MarkExpiredDue lapses every active policy whose end date has passed.
// Returns how many policies flipped.
func (s *Memory) MarkExpiredDue(_ context.Context, asOf time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	flipped := 0
	for _, policy := range s.policies {
		if policy.Status == models.PolicyStatusActive && policy.EndDate.Before(asOf) {
			policy.ApplyExpire(asOf)
			flipped++
		}
	}
	return flipped, nil
}

func (s *Memory) CountByStatus(_ context.Context) (map[models.PolicyStatus]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := make(map[models.PolicyStatus]int)
	for _, policy := range s.policies {
		counts[policy.Status]++
	}
	return counts, nil
}
