package handler

import (
	"encoding/base64"
	"strings"

	"motorcover/internal/proposal/models"
	"motorcover/internal/proposal/service"
	id "motorcover/pkg/domain"
	dErrors "motorcover/pkg/domain-errors"
)

// maxAttachmentBytes bounds an inline base64 attachment after decoding.
const maxAttachmentBytes = 512 * 1024

// SubmitProposalRequest is the body for POST /proposals.
type SubmitProposalRequest struct {
	VehicleID         string             `json:"vehicle_id"`
	PolicyType        string             `json:"policy_type"`
	RequestedCoverage float64            `json:"requested_coverage"`
	PremiumEstimate   float64            `json:"premium_estimate"`
	Document          *AttachmentPayload `json:"document,omitempty"`

	parsedVehicleID  id.VehicleID
	parsedPolicyType id.PolicyType
	parsedAttachment *service.Attachment
}

// AttachmentPayload is an inline document upload.
type AttachmentPayload struct {
	Type     string `json:"type"`
	Filename string `json:"filename"`
	Content  string `json:"content"` // base64
}

func (r *SubmitProposalRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}

	vehicleID, err := id.ParseVehicleID(strings.TrimSpace(r.VehicleID))
	if err != nil {
		return err
	}
	r.parsedVehicleID = vehicleID

	policyType, err := id.ParsePolicyType(strings.TrimSpace(r.PolicyType))
	if err != nil {
		return err
	}
	r.parsedPolicyType = policyType

	if r.RequestedCoverage <= 0 {
		return dErrors.New(dErrors.CodeValidation, "requested_coverage must be greater than zero")
	}
	if r.PremiumEstimate < 0 {
		return dErrors.New(dErrors.CodeValidation, "premium_estimate must not be negative")
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
func (r *SubmitProposalRequest) Params() models.NewProposalParams {
	return models.NewProposalParams{
		VehicleID:         r.parsedVehicleID,
		PolicyType:        r.parsedPolicyType,
		RequestedCoverage: r.RequestedCoverage,
		PremiumEstimate:   r.PremiumEstimate,
	}
}

// ParsedAttachment returns the decoded optional document.
func (r *SubmitProposalRequest) ParsedAttachment() *service.Attachment { return r.parsedAttachment }

// RejectProposalRequest is the body for POST /admin/proposals/{proposalID}/reject.
type RejectProposalRequest struct {
	Reason string `json:"reason"`
}

func (r *RejectProposalRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if strings.TrimSpace(r.Reason) == "" {
		return dErrors.New(dErrors.CodeValidation, "reason is required")
	}
	if len(r.Reason) > 1000 {
		return dErrors.New(dErrors.CodeValidation, "reason must be at most 1000 characters")
	}
	return nil
}
