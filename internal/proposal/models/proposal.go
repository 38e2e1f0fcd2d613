package models

import (
	"strings"
	"time"

	id "motorcover/pkg/domain"
	dErrors "motorcover/pkg/domain-errors"
)

// Proposal is a customer's request for coverage on a vehicle, pending an
// underwriting decision.
//
// Invariants:
//   - RequestedCoverage is strictly positive
//   - Status follows the transition table in status.go
//   - A proposal converts to a policy at most once; Converted is terminal
type Proposal struct {
	ID                id.ProposalID  `json:"id"`
	OwnerID           id.UserID      `json:"owner_id"`
	VehicleID         id.VehicleID   `json:"vehicle_id"`
	PolicyType        id.PolicyType  `json:"policy_type"`
	RequestedCoverage float64        `json:"requested_coverage"`
	PremiumEstimate   float64        `json:"premium_estimate"`
	Status            ProposalStatus `json:"status"`
	RejectionReason   string         `json:"rejection_reason,omitempty"`
	SubmissionDate    time.Time      `json:"submission_date"`
	ApprovalDate      *time.Time     `json:"approval_date,omitempty"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
}

// CanCancel gates the owner-initiated cancel. Only freshly submitted
// proposals may be withdrawn.
func (p *Proposal) CanCancel() error {
	if !p.Status.CanTransitionTo(ProposalStatusCanceled) {
		return dErrors.New(dErrors.CodeInvalidTransition,
			"proposal in status "+string(p.Status)+" cannot be canceled")
	}
	return nil
}

// ApplyCancel transitions to Canceled. Call CanCancel first.
func (p *Proposal) ApplyCancel(now time.Time) {
	p.Status = ProposalStatusCanceled
	p.UpdatedAt = now
}

// CanStartReview gates moving a submitted proposal into underwriting.
func (p *Proposal) CanStartReview() error {
	if !p.Status.CanTransitionTo(ProposalStatusUnderReview) {
		return dErrors.New(dErrors.CodeInvalidTransition,
			"proposal in status "+string(p.Status)+" cannot enter review")
	}
	return nil
}

// ApplyStartReview transitions to UnderReview. Call CanStartReview first.
func (p *Proposal) ApplyStartReview(now time.Time) {
	p.Status = ProposalStatusUnderReview
	p.UpdatedAt = now
}

// CanApprove gates the underwriting approval.
func (p *Proposal) CanApprove() error {
	if !p.Status.CanTransitionTo(ProposalStatusApproved) {
		return dErrors.New(dErrors.CodeInvalidTransition,
			"proposal in status "+string(p.Status)+" cannot be approved")
	}
	return nil
}

// ApplyApprove transitions to Approved and stamps the approval date.
func (p *Proposal) ApplyApprove(now time.Time) {
	p.Status = ProposalStatusApproved
	p.ApprovalDate = &now
	p.UpdatedAt = now
}

// CanReject gates the underwriting rejection.
func (p *Proposal) CanReject() error {
	if !p.Status.CanTransitionTo(ProposalStatusRejected) {
		return dErrors.New(dErrors.CodeInvalidTransition,
			"proposal in status "+string(p.Status)+" cannot be rejected")
	}
	return nil
}

// ApplyReject transitions to Rejected and records the reason.
func (p *Proposal) ApplyReject(reason string, now time.Time) {
	p.Status = ProposalStatusRejected
	p.RejectionReason = strings.TrimSpace(reason)
	p.UpdatedAt = now
}

// CanConvert gates issuance. Only an approved proposal converts, and only
// once.
func (p *Proposal) CanConvert() error {
	if p.Status == ProposalStatusConverted {
		return dErrors.New(dErrors.CodeInvalidTransition, "proposal has already been converted")
	}
	if !p.Status.CanTransitionTo(ProposalStatusConverted) {
		return dErrors.New(dErrors.CodeInvalidTransition,
			"proposal in status "+string(p.Status)+" cannot be converted")
	}
	return nil
}

// ApplyConvert transitions to Converted. Call CanConvert first.
func (p *Proposal) ApplyConvert(now time.Time) {
	p.Status = ProposalStatusConverted
	p.UpdatedAt = now
}

// CanDelete gates the administrative hard delete. A converted proposal is
// referenced by a policy and must never be removed.
func (p *Proposal) CanDelete() error {
	if p.Status == ProposalStatusConverted {
		return dErrors.New(dErrors.CodeInvalidTransition, "converted proposals cannot be deleted")
	}
	return nil
}

// NewProposalParams collects the constructor inputs.
type NewProposalParams struct {
	OwnerID           id.UserID
	VehicleID         id.VehicleID
	PolicyType        id.PolicyType
	RequestedCoverage float64
	PremiumEstimate   float64
}

func NewProposal(proposalID id.ProposalID, p NewProposalParams, now time.Time) (*Proposal, error) {
	switch {
	case p.OwnerID.IsNil():
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "proposal owner is required")
	case p.VehicleID.IsNil():
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "proposal vehicle is required")
	case !p.PolicyType.Valid():
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "policy type is not valid")
	case p.RequestedCoverage <= 0:
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "requested coverage must be greater than zero")
	case p.PremiumEstimate < 0:
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "premium estimate must not be negative")
	}
	return &Proposal{
		ID:                proposalID,
		OwnerID:           p.OwnerID,
		VehicleID:         p.VehicleID,
		PolicyType:        p.PolicyType,
		RequestedCoverage: p.RequestedCoverage,
		PremiumEstimate:   p.PremiumEstimate,
		Status:            ProposalStatusSubmitted,
		SubmissionDate:    now,
		CreatedAt:         now,
		UpdatedAt:         now,
	}, nil
}
