package models

import (
	"time"

	id "motorcover/pkg/domain"
	dErrors "motorcover/pkg/domain-errors"
)

// renewalReminderLead is how far before expiry the renewal reminder fires.
const renewalReminderLead = 30 * 24 * time.Hour

// Policy is an insurance contract, usually created by converting an
// approved proposal.
//
// Invariants:
//   - EndDate is strictly after StartDate, at creation and on every update
//   - CoverageAmount and PremiumAmount are strictly positive
//   - At most one policy references a given proposal
//   - Terminated is terminal
type Policy struct {
	ID                  id.PolicyID    `json:"id"`
	OwnerID             id.UserID      `json:"owner_id"`
	VehicleID           id.VehicleID   `json:"vehicle_id"`
	ProposalID          *id.ProposalID `json:"proposal_id,omitempty"`
	Type                id.PolicyType  `json:"type"`
	CoverageAmount      float64        `json:"coverage_amount"`
	PremiumAmount       float64        `json:"premium_amount"`
	StartDate           time.Time      `json:"start_date"`
	EndDate             time.Time      `json:"end_date"`
	RenewalReminderDate time.Time      `json:"renewal_reminder_date"`
	Status              PolicyStatus   `json:"status"`
	TerminationReason   string         `json:"termination_reason,omitempty"`
	CreatedAt           time.Time      `json:"created_at"`
	UpdatedAt           time.Time      `json:"updated_at"`
}

// IsActive reports whether claims may currently be filed against the policy.
func (p *Policy) IsActive() bool { return p.Status == PolicyStatusActive }

// CanRenew gates renewal. Only Active and Expired policies renew; this is
// the one path that brings an Expired policy back to Active.
func (p *Policy) CanRenew() error {
	if p.Status == PolicyStatusTerminated {
		return dErrors.New(dErrors.CodeInvalidTransition, "terminated policies cannot be renewed")
	}
	return nil
}

// ApplyRenewal extends the term by whole calendar months from the current
// end date and reactivates the policy. A nil premium override leaves the
// premium unchanged.
func (p *Policy) ApplyRenewal(months int, premiumOverride *float64, now time.Time) {
	p.EndDate = p.EndDate.AddDate(0, months, 0)
	p.RenewalReminderDate = p.EndDate.Add(-renewalReminderLead)
	if premiumOverride != nil {
		p.PremiumAmount = *premiumOverride
	}
	p.Status = PolicyStatusActive
	p.UpdatedAt = now
}

// CanExpire gates the time-passage transition.
func (p *Policy) CanExpire() error {
	if !p.Status.CanTransitionTo(PolicyStatusExpired) {
		return dErrors.New(dErrors.CodeInvalidTransition,
			"policy in status "+string(p.Status)+" cannot expire")
	}
	return nil
}

// ApplyExpire marks the policy lapsed. Call CanExpire first.
func (p *Policy) ApplyExpire(now time.Time) {
	p.Status = PolicyStatusExpired
	p.UpdatedAt = now
}

// CanTerminate gates the administrative termination.
func (p *Policy) CanTerminate() error {
	if !p.Status.CanTransitionTo(PolicyStatusTerminated) {
		return dErrors.New(dErrors.CodeInvalidTransition,
			"policy in status "+string(p.Status)+" cannot be terminated")
	}
	return nil
}

// ApplyTerminate ends the policy for good and records why.
func (p *Policy) ApplyTerminate(reason string, now time.Time) {
	p.Status = PolicyStatusTerminated
	p.TerminationReason = reason
	p.UpdatedAt = now
}

// Patch carries the optional mutable fields of a policy update.
type Patch struct {
	StartDate     *time.Time
	EndDate       *time.Time
	PremiumAmount *float64
}

// ValidatePatch checks the date-ordering invariant against the patched
// values before anything is written.
func (p *Policy) ValidatePatch(patch Patch) error {
	start := p.StartDate
	end := p.EndDate
	if patch.StartDate != nil {
		start = *patch.StartDate
	}
	if patch.EndDate != nil {
		end = *patch.EndDate
	}
	if !end.After(start) {
		return dErrors.New(dErrors.CodeInvalidTransition, "policy end date must be after the start date")
	}
	if patch.PremiumAmount != nil && *patch.PremiumAmount <= 0 {
		return dErrors.New(dErrors.CodeValidation, "premium amount must be greater than zero")
	}
	return nil
}

// ApplyPatch updates the term fields. Call ValidatePatch first.
func (p *Policy) ApplyPatch(patch Patch, now time.Time) {
	if patch.StartDate != nil {
		p.StartDate = *patch.StartDate
	}
	if patch.EndDate != nil {
		p.EndDate = *patch.EndDate
		p.RenewalReminderDate = p.EndDate.Add(-renewalReminderLead)
	}
	if patch.PremiumAmount != nil {
		p.PremiumAmount = *patch.PremiumAmount
	}
	p.UpdatedAt = now
}

// NewPolicyParams collects the constructor inputs.
type NewPolicyParams struct {
	OwnerID        id.UserID
	VehicleID      id.VehicleID
	ProposalID     *id.ProposalID
	Type           id.PolicyType
	CoverageAmount float64
	PremiumAmount  float64
	StartDate      time.Time
	EndDate        time.Time
}

func NewPolicy(policyID id.PolicyID, p NewPolicyParams, now time.Time) (*Policy, error) {
	switch {
	case p.OwnerID.IsNil():
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "policy owner is required")
	case p.VehicleID.IsNil():
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "policy vehicle is required")
	case !p.Type.Valid():
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "policy type is not valid")
	case p.CoverageAmount <= 0:
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "coverage amount must be greater than zero")
	case p.PremiumAmount <= 0:
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "premium amount must be greater than zero")
	case !p.EndDate.After(p.StartDate):
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "policy end date must be after the start date")
	}
	return &Policy{
		ID:                  policyID,
		OwnerID:             p.OwnerID,
		VehicleID:           p.VehicleID,
		ProposalID:          p.ProposalID,
		Type:                p.Type,
		CoverageAmount:      p.CoverageAmount,
		PremiumAmount:       p.PremiumAmount,
		StartDate:           p.StartDate,
		EndDate:             p.EndDate,
		RenewalReminderDate: p.EndDate.Add(-renewalReminderLead),
		Status:              PolicyStatusActive,
		CreatedAt:           now,
		UpdatedAt:           now,
	}, nil
}
