package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"motorcover/internal/claim/models"
	id "motorcover/pkg/domain"
	"motorcover/pkg/platform/sentinel"
)

// Memory stores claims in memory for tests and development.
type Memory struct {
	mu     sync.RWMutex
	claims map[id.ClaimID]*models.Claim
}

func NewMemory() *Memory {
	return &Memory{claims: make(map[id.ClaimID]*models.Claim)}
}

func (s *Memory) Create(_ context.Context, claim *models.Claim) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.claims[claim.ID]; ok {
		return fmt.Errorf("claim %s already exists: %w", claim.ID, sentinel.ErrConflict)
	}
	copied := *claim
	s.claims[claim.ID] = &copied
	return nil
}

func (s *Memory) FindByID(_ context.Context, claimID id.ClaimID) (*models.Claim, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	claim, ok := s.claims[claimID]
	if !ok {
		return nil, fmt.Errorf("claim %s: %w", claimID, sentinel.ErrNotFound)
	}
	copied := *claim
	return &copied, nil
}

// ListByOwner returns the owner's claims, newest first.
func (s *Memory) ListByOwner(_ context.Context, ownerID id.UserID) ([]*models.Claim, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	owned := make([]*models.Claim, 0)
	for _, claim := range s.claims {
		if claim.OwnerID != ownerID {
			continue
		}
		copied := *claim
		owned = append(owned, &copied)
	}
	sort.Slice(owned, func(i, j int) bool { return owned[i].CreatedAt.After(owned[j].CreatedAt) })
	return owned, nil
}

// List returns a page of all claims, newest first. Used by the admin
// review surface.
func (s *Memory) List(_ context.Context, offset, limit int) ([]*models.Claim, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]*models.Claim, 0, len(s.claims))
	for _, claim := range s.claims {
		copied := *claim
		all = append(all, &copied)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })

	total := len(all)
	if offset >= total {
		return []*models.Claim{}, total, nil
	}
	end := offset + limit
	if limit <= 0 || end > total {
		end = total
	}
	return all[offset:end], total, nil
}

// Execute runs validate and mutate under the store lock so two concurrent
// transitions on the same claim cannot both succeed.
func (s *Memory) Execute(_ context.Context, claimID id.ClaimID, validate func(*models.Claim) error, mutate func(*models.Claim)) (*models.Claim, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	claim, ok := s.claims[claimID]
	if !ok {
		return nil, fmt.Errorf("claim %s: %w", claimID, sentinel.ErrNotFound)
	}
	if err := validate(claim); err != nil {
		return nil, err
	}
	mutate(claim)
	copied := *claim
	return &copied, nil
}

func (s *Memory) Delete(_ context.Context, claimID id.ClaimID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.claims[claimID]; !ok {
		return fmt.Errorf("claim %s: %w", claimID, sentinel.ErrNotFound)
	}
	delete(s.claims, claimID)
	return nil
}

func (s *Memory) CountByStatus(_ context.Context) (map[models.ClaimStatus]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := make(map[models.ClaimStatus]int)
	for _, claim := range s.claims {
		counts[claim.Status]++
	}
	return counts, nil
}
