package models

import (
	"strings"
	"time"

	id "motorcover/pkg/domain"
	dErrors "motorcover/pkg/domain-errors"
)

// Document records an uploaded file against exactly one parent entity.
// The file bytes live in the blob store; Locator points at them.
type Document struct {
	ID         id.DocumentID  `json:"id"`
	ProposalID *id.ProposalID `json:"proposal_id,omitempty"`
	ClaimID    *id.ClaimID    `json:"claim_id,omitempty"`
	Type       string         `json:"type"`
	Filename   string         `json:"filename"`
	Locator    string         `json:"locator"`
	SizeBytes  int64          `json:"size_bytes"`
	UploadedAt time.Time      `json:"uploaded_at"`
}

// NewDocument builds a document record. Exactly one parent must be set;
// re-uploading the same type for the same parent replaces the earlier
// record, which the store enforces.
func NewDocument(documentID id.DocumentID, proposalID *id.ProposalID, claimID *id.ClaimID, docType, filename, locator string, size int64, now time.Time) (*Document, error) {
	switch {
	case proposalID == nil && claimID == nil:
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "document needs a parent")
	case proposalID != nil && claimID != nil:
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "document cannot have two parents")
	case strings.TrimSpace(docType) == "":
		return nil, dErrors.New(dErrors.CodeValidation, "document type is required")
	case strings.TrimSpace(filename) == "":
		return nil, dErrors.New(dErrors.CodeValidation, "document filename is required")
	case strings.TrimSpace(locator) == "":
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "document locator is required")
	case size <= 0:
		return nil, dErrors.New(dErrors.CodeValidation, "document is empty")
	}
	return &Document{
		ID:         documentID,
		ProposalID: proposalID,
		ClaimID:    claimID,
		Type:       strings.TrimSpace(docType),
		Filename:   strings.TrimSpace(filename),
		Locator:    locator,
		SizeBytes:  size,
		UploadedAt: now,
	}, nil
}
