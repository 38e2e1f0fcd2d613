package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"motorcover/internal/proposal/models"
	id "motorcover/pkg/domain"
	"motorcover/pkg/platform/sentinel"
)

// Memory stores proposals in memory for tests and development.
type Memory struct {
	mu        sync.RWMutex
	proposals map[id.ProposalID]*models.Proposal
}

func NewMemory() *Memory {
	return &Memory{proposals: make(map[id.ProposalID]*models.Proposal)}
}

func (s *Memory) Create(_ context.Context, proposal *models.Proposal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.proposals[proposal.ID]; ok {
		return fmt.Errorf("proposal %s already exists: %w", proposal.ID, sentinel.ErrConflict)
	}
	copied := *proposal
	s.proposals[proposal.ID] = &copied
	return nil
}

func (s *Memory) FindByID(_ context.Context, proposalID id.ProposalID) (*models.Proposal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	proposal, ok := s.proposals[proposalID]
	if !ok {
		return nil, fmt.Errorf("proposal %s: %w", proposalID, sentinel.ErrNotFound)
	}
	copied := *proposal
	return &copied, nil
}

// ListByOwner returns the owner's proposals, canceled ones excluded, newest
// first.
func (s *Memory) ListByOwner(_ context.Context, ownerID id.UserID) ([]*models.Proposal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	owned := make([]*models.Proposal, 0)
	for _, proposal := range s.proposals {
		if proposal.OwnerID != ownerID || proposal.Status == models.ProposalStatusCanceled {
			continue
		}
		copied := *proposal
		owned = append(owned, &copied)
	}
	sort.Slice(owned, func(i, j int) bool { return owned[i].SubmissionDate.After(owned[j].SubmissionDate) })
	return owned, nil
}

// List returns a page of all proposals, newest first. Used by the admin
// review surface.
func (s *Memory) List(_ context.Context, offset, limit int) ([]*models.Proposal, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]*models.Proposal, 0, len(s.proposals))
	for _, proposal := range s.proposals {
		copied := *proposal
		all = append(all, &copied)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].SubmissionDate.After(all[j].SubmissionDate) })

	total := len(all)
	if offset >= total {
		return []*models.Proposal{}, total, nil
	}
	end := offset + limit
	if limit <= 0 || end > total {
		end = total
	}
	return all[offset:end], total, nil
}

// Execute runs validate and mutate under the store lock so two concurrent
// transitions on the same proposal cannot both succeed.
func (s *Memory) Execute(_ context.Context, proposalID id.ProposalID, validate func(*models.Proposal) error, mutate func(*models.Proposal)) (*models.Proposal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	proposal, ok := s.proposals[proposalID]
	if !ok {
		return nil, fmt.Errorf("proposal %s: %w", proposalID, sentinel.ErrNotFound)
	}
	if err := validate(proposal); err != nil {
		return nil, err
	}
	mutate(proposal)
	copied := *proposal
	return &copied, nil
}

func (s *Memory) Delete(_ context.Context, proposalID id.ProposalID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.proposals[proposalID]; !ok {
		return fmt.Errorf("proposal %s: %w", proposalID, sentinel.ErrNotFound)
	}
	delete(s.proposals, proposalID)
	return nil
}

func (s *Memory) CountByStatus(_ context.Context) (map[models.ProposalStatus]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := make(map[models.ProposalStatus]int)
	for _, proposal := range s.proposals {
		counts[proposal.Status]++
	}
	return counts, nil
}
