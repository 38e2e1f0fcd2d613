package service

import (
	"context"
	"log/slog"
	"mime"
	"path/filepath"

	"motorcover/internal/document/blobstore"
	"motorcover/internal/document/models"
	id "motorcover/pkg/domain"
	dErrors "motorcover/pkg/domain-errors"
	"motorcover/pkg/requestcontext"
)

// DocumentStore is the persistence port for document records.
type DocumentStore interface {
	Upsert(ctx context.Context, doc *models.Document) (replaced *models.Document, err error)
	ListByProposal(ctx context.Context, proposalID id.ProposalID) ([]*models.Document, error)
	ListByClaim(ctx context.Context, claimID id.ClaimID) ([]*models.Document, error)
	DeleteByProposal(ctx context.Context, proposalID id.ProposalID) ([]*models.Document, error)
	DeleteByClaim(ctx context.Context, claimID id.ClaimID) ([]*models.Document, error)
}

// Service uploads attachment bytes to the blob store and keeps one record
// per (parent, type). It backs the attacher ports of the proposal and
// claim services.
type Service struct {
	documents DocumentStore
	blobs     blobstore.Store
	logger    *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func New(documents DocumentStore, blobs blobstore.Store, opts ...Option) *Service {
	s := &Service{documents: documents, blobs: blobs, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AttachToProposal uploads the content and records it under the proposal,
// replacing an earlier upload of the same type.
func (s *Service) AttachToProposal(ctx context.Context, proposalID id.ProposalID, docType, filename string, content []byte) (string, error) {
	return s.attach(ctx, &proposalID, nil, "proposals/"+proposalID.String(), docType, filename, content)
}

// AttachToClaim uploads the content and records it under the claim,
// replacing an earlier upload of the same type.
func (s *Service) AttachToClaim(ctx context.Context, claimID id.ClaimID, docType, filename string, content []byte) (string, error) {
	return s.attach(ctx, nil, &claimID, "claims/"+claimID.String(), docType, filename, content)
}

func (s *Service) attach(ctx context.Context, proposalID *id.ProposalID, claimID *id.ClaimID, prefix, docType, filename string, content []byte) (string, error) {
	if len(content) == 0 {
		return "", dErrors.New(dErrors.CodeValidation, "document content is empty")
	}

	documentID := id.NewDocumentID()
	key := prefix + "/" + docType + "/" + documentID.String() + filepath.Ext(filename)
	locator, err := s.blobs.Put(ctx, key, content, contentTypeFor(filename))
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to store document")
	}

	now := requestcontext.Now(ctx)
	doc, err := models.NewDocument(documentID, proposalID, claimID, docType, filename, locator, int64(len(content)), now)
	if err != nil {
		return "", err
	}

	replaced, err := s.documents.Upsert(ctx, doc)
	if err != nil {
		// The blob is orphaned; log the key so it can be reaped.
		s.logger.ErrorContext(ctx, "document record write failed",
			"request_id", requestcontext.RequestID(ctx),
			"locator", locator,
			"error", err,
		)
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to record document")
	}
	if replaced != nil {
		if err := s.blobs.Delete(ctx, replaced.Locator); err != nil {
			s.logger.WarnContext(ctx, "replaced blob not removed",
				"request_id", requestcontext.RequestID(ctx),
				"locator", replaced.Locator,
				"error", err,
			)
		}
	}
	return locator, nil
}

// ListByProposal returns the proposal's document records.
func (s *Service) ListByProposal(ctx context.Context, proposalID id.ProposalID) ([]*models.Document, error) {
	docs, err := s.documents.ListByProposal(ctx, proposalID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list documents")
	}
	return docs, nil
}

// ListByClaim returns the claim's document records.
func (s *Service) ListByClaim(ctx context.Context, claimID id.ClaimID) ([]*models.Document, error) {
	docs, err := s.documents.ListByClaim(ctx, claimID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list documents")
	}
	return docs, nil
}

// DeleteByProposal removes the proposal's document records and their blobs.
func (s *Service) DeleteByProposal(ctx context.Context, proposalID id.ProposalID) error {
	docs, err := s.documents.DeleteByProposal(ctx, proposalID)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete documents")
	}
	s.deleteBlobs(ctx, docs)
	return nil
}

// DeleteByClaim removes the claim's document records and their blobs.
func (s *Service) DeleteByClaim(ctx context.Context, claimID id.ClaimID) error {
	docs, err := s.documents.DeleteByClaim(ctx, claimID)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete documents")
	}
	s.deleteBlobs(ctx, docs)
	return nil
}

// deleteBlobs is best-effort: the records are already gone, a leftover
// blob is storage waste, not an integrity problem.
func (s *Service) deleteBlobs(ctx context.Context, docs []*models.Document) {
	for _, doc := range docs {
		if err := s.blobs.Delete(ctx, doc.Locator); err != nil {
			s.logger.WarnContext(ctx, "blob not removed",
				"request_id", requestcontext.RequestID(ctx),
				"locator", doc.Locator,
				"error", err,
			)
		}
	}
}

func contentTypeFor(filename string) string {
	if ct := mime.TypeByExtension(filepath.Ext(filename)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
