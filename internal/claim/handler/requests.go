package handler

import (
	"encoding/base64"
	"strings"
	"time"

	"motorcover/internal/claim/models"
	"motorcover/internal/claim/service"
	id "motorcover/pkg/domain"
	dErrors "motorcover/pkg/domain-errors"
)

// maxAttachmentBytes bounds an inline base64 attachment after decoding.
const maxAttachmentBytes = 512 * 1024

// FileClaimRequest is the body for POST /claims.
type FileClaimRequest struct {
	PolicyID     string             `json:"policy_id"`
	IncidentDate time.Time          `json:"incident_date"`
	Description  string             `json:"description"`
	ClaimAmount  *float64           `json:"claim_amount,omitempty"`
	Document     *AttachmentPayload `json:"document,omitempty"`

	parsedPolicyID   id.PolicyID
	parsedAttachment *service.Attachment
}

// AttachmentPayload is an inline document upload.
type AttachmentPayload struct {
	Type     string `json:"type"`
	Filename string `json:"filename"`
	Content  string `json:"content"` // base64
}

func (r *FileClaimRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}

	policyID, err := id.ParsePolicyID(strings.TrimSpace(r.PolicyID))
	if err != nil {
		return err
	}
	r.parsedPolicyID = policyID

	if strings.TrimSpace(r.Description) == "" {
		return dErrors.New(dErrors.CodeValidation, "description is required")
	}
	if r.IncidentDate.IsZero() {
		return dErrors.New(dErrors.CodeValidation, "incident_date is required")
	}
	if r.ClaimAmount != nil && *r.ClaimAmount <= 0 {
		return dErrors.New(dErrors.CodeValidation, "claim_amount must be greater than zero")
	}

	if r.Document != nil {
		attachment, err := r.Document.parse()
		if err != nil {
			return err
		}
		r.parsedAttachment = attachment
	}
	return nil
}

func (p *AttachmentPayload) parse() (*service.Attachment, error) {
	if strings.TrimSpace(p.Type) == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "document.type is required")
	}
	if strings.TrimSpace(p.Filename) == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "document.filename is required")
	}
	content, err := base64.StdEncoding.DecodeString(p.Content)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeValidation, "document.content must be base64")
	}
	if len(content) == 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "document.content is empty")
	}
	if len(content) > maxAttachmentBytes {
		return nil, dErrors.New(dErrors.CodeValidation, "document.content exceeds the size limit")
	}
	return &service.Attachment{Type: p.Type, Filename: p.Filename, Content: content}, nil
}

// Params maps the validated request onto constructor params.
func (r *FileClaimRequest) Params() models.NewClaimParams {
	return models.NewClaimParams{
		PolicyID:     r.parsedPolicyID,
		IncidentDate: r.IncidentDate,
		Description:  r.Description,
		ClaimAmount:  r.ClaimAmount,
	}
}

// ParsedAttachment returns the decoded optional document.
func (r *FileClaimRequest) ParsedAttachment() *service.Attachment { return r.parsedAttachment }

// UpdateClaimRequest is the body for PATCH /claims/{claimID}.
type UpdateClaimRequest struct {
	Description *string  `json:"description,omitempty"`
	ClaimAmount *float64 `json:"claim_amount,omitempty"`
	Status      *string  `json:"status,omitempty"`

	parsedStatus *models.ClaimStatus
}

func (r *UpdateClaimRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if r.Description == nil && r.ClaimAmount == nil && r.Status == nil {
		return dErrors.New(dErrors.CodeValidation, "at least one field must be provided")
	}
	if r.Status != nil {
		status, err := models.ParseClaimStatus(strings.TrimSpace(*r.Status))
		if err != nil {
			return err
		}
		r.parsedStatus = &status
	}
	return nil
}

// Patch maps the request onto the model patch.
func (r *UpdateClaimRequest) Patch() models.Patch {
	return models.Patch{
		Description: r.Description,
		ClaimAmount: r.ClaimAmount,
		Status:      r.parsedStatus,
	}
}

// ApproveClaimRequest is the body for POST /admin/claims/{claimID}/approve.
type ApproveClaimRequest struct {
	ApprovedAmount float64 `json:"approved_amount"`
	Notes          string  `json:"notes,omitempty"`
}

func (r *ApproveClaimRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if r.ApprovedAmount <= 0 {
		return dErrors.New(dErrors.CodeValidation, "approved_amount must be greater than zero")
	}
	if len(r.Notes) > 1000 {
		return dErrors.New(dErrors.CodeValidation, "notes must be at most 1000 characters")
	}
	return nil
}

// RejectClaimRequest is the body for claim rejection.
type RejectClaimRequest struct {
	Notes string `json:"notes"`
}

func (r *RejectClaimRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if strings.TrimSpace(r.Notes) == "" {
		return dErrors.New(dErrors.CodeValidation, "notes is required")
	}
	if len(r.Notes) > 1000 {
		return dErrors.New(dErrors.CodeValidation, "notes must be at most 1000 characters")
	}
	return nil
}
