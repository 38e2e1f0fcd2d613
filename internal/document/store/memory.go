package store

import (
	"context"
	"sort"
	"sync"

	"motorcover/internal/document/models"
	id "motorcover/pkg/domain"
)

// Memory stores document records in memory for tests and development.
type Memory struct {
	mu        sync.RWMutex
	documents map[id.DocumentID]*models.Document
}

func NewMemory() *Memory {
	return &Memory{documents: make(map[id.DocumentID]*models.Document)}
}

// Upsert inserts the document, replacing any earlier record with the same
// parent and type. The replaced record is returned so its blob can be
// cleaned up.
func (s *Memory) Upsert(_ context.Context, doc *models.Document) (*models.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var replaced *models.Document
	for docID, existing := range s.documents {
		if existing.Type == doc.Type && sameParent(existing, doc) {
			copied := *existing
			replaced = &copied
			delete(s.documents, docID)
			break
		}
	}
	copied := *doc
	s.documents[doc.ID] = &copied
	return replaced, nil
}

func (s *Memory) ListByProposal(_ context.Context, proposalID id.ProposalID) ([]*models.Document, error) {
	return s.listBy(func(d *models.Document) bool {
		return d.ProposalID != nil && *d.ProposalID == proposalID
	}), nil
}

func (s *Memory) ListByClaim(_ context.Context, claimID id.ClaimID) ([]*models.Document, error) {
	return s.listBy(func(d *models.Document) bool {
		return d.ClaimID != nil && *d.ClaimID == claimID
	}), nil
}

// DeleteByProposal removes every record under the proposal and returns
// them so their blobs can be cleaned up.
func (s *Memory) DeleteByProposal(_ context.Context, proposalID id.ProposalID) ([]*models.Document, error) {
	return s.deleteBy(func(d *models.Document) bool {
		return d.ProposalID != nil && *d.ProposalID == proposalID
	}), nil
}

func (s *Memory) DeleteByClaim(_ context.Context, claimID id.ClaimID) ([]*models.Document, error) {
	return s.deleteBy(func(d *models.Document) bool {
		return d.ClaimID != nil && *d.ClaimID == claimID
	}), nil
}

func (s *Memory) listBy(match func(*models.Document) bool) []*models.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Document, 0)
	for _, doc := range s.documents {
		if match(doc) {
			copied := *doc
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UploadedAt.After(out[j].UploadedAt) })
	return out
}

func (s *Memory) deleteBy(match func(*models.Document) bool) []*models.Document {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*models.Document, 0)
	for docID, doc := range s.documents {
		if match(doc) {
			copied := *doc
			out = append(out, &copied)
			delete(s.documents, docID)
		}
	}
	return out
}

func sameParent(a, b *models.Document) bool {
	if a.ProposalID != nil && b.ProposalID != nil {
		return *a.ProposalID == *b.ProposalID
	}
	if a.ClaimID != nil && b.ClaimID != nil {
		return *a.ClaimID == *b.ClaimID
	}
	return false
}
