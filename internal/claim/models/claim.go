package models

import (
	"strings"
	"time"

	id "motorcover/pkg/domain"
	dErrors "motorcover/pkg/domain-errors"
)

// Claim is a loss report filed against an active policy.
type Claim struct {
	ID             id.ClaimID  `json:"id"`
	PolicyID       id.PolicyID `json:"policy_id"`
	OwnerID        id.UserID   `json:"owner_id"`
	IncidentDate   time.Time   `json:"incident_date"`
	Description    string      `json:"description"`
	ClaimAmount    *float64    `json:"claim_amount,omitempty"`
	ApprovedAmount *float64    `json:"approved_amount,omitempty"`
	Notes          string      `json:"notes,omitempty"`
	Status         ClaimStatus `json:"status"`
	ApprovalDate   *time.Time  `json:"approval_date,omitempty"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

func (c *Claim) CanStartReview() error {
	if !c.Status.CanTransitionTo(ClaimStatusUnderReview) {
		return dErrors.New(dErrors.CodeInvalidTransition,
			"claim cannot move to review from status "+string(c.Status))
	}
	return nil
}

func (c *Claim) ApplyStartReview(now time.Time) {
	c.Status = ClaimStatusUnderReview
	c.UpdatedAt = now
}

func (c *Claim) CanApprove() error {
	if !c.Status.CanTransitionTo(ClaimStatusApproved) {
		return dErrors.New(dErrors.CodeInvalidTransition,
			"claim cannot be approved from status "+string(c.Status))
	}
	return nil
}

// ApplyApprove records the payout decision. Amount validity is checked by
// the service before the transition is attempted.
func (c *Claim) ApplyApprove(approvedAmount float64, notes string, now time.Time) {
	c.Status = ClaimStatusApproved
	c.ApprovedAmount = &approvedAmount
	c.Notes = notes
	c.ApprovalDate = &now
	c.UpdatedAt = now
}

func (c *Claim) CanReject() error {
	if !c.Status.CanTransitionTo(ClaimStatusRejected) {
		return dErrors.New(dErrors.CodeInvalidTransition,
			"claim cannot be rejected from status "+string(c.Status))
	}
	return nil
}

// ApplyReject records the decision; the notes replace the description so
// the claimant sees why.
func (c *Claim) ApplyReject(notes string, now time.Time) {
	c.Status = ClaimStatusRejected
	c.Description = notes
	c.UpdatedAt = now
}

func (c *Claim) CanSettle() error {
	if !c.Status.CanTransitionTo(ClaimStatusSettled) {
		return dErrors.New(dErrors.CodeInvalidTransition,
			"claim cannot be settled from status "+string(c.Status))
	}
	return nil
}

func (c *Claim) ApplySettle(now time.Time) {
	c.Status = ClaimStatusSettled
	c.UpdatedAt = now
}

func (c *Claim) CanDelete() error {
	if !c.Status.Deletable() {
		return dErrors.New(dErrors.CodeInvalidTransition,
			"only pending or under-review claims can be deleted")
	}
	return nil
}

// Patch carries the optional mutable fields of a claim update. Status is
// admin-only; the service enforces that before ValidatePatch runs.
type Patch struct {
	Description *string
	ClaimAmount *float64
	Status      *ClaimStatus
}

func (c *Claim) ValidatePatch(patch Patch) error {
	if patch.Description != nil && strings.TrimSpace(*patch.Description) == "" {
		return dErrors.New(dErrors.CodeValidation, "description must not be blank")
	}
	if patch.ClaimAmount != nil && *patch.ClaimAmount <= 0 {
		return dErrors.New(dErrors.CodeValidation, "claim amount must be greater than zero")
	}
	if patch.Status != nil && !c.Status.CanTransitionTo(*patch.Status) {
		return dErrors.New(dErrors.CodeInvalidTransition,
			"claim cannot move from "+string(c.Status)+" to "+string(*patch.Status))
	}
	return nil
}

func (c *Claim) ApplyPatch(patch Patch, now time.Time) {
	if patch.Description != nil {
		c.Description = *patch.Description
	}
	if patch.ClaimAmount != nil {
		c.ClaimAmount = patch.ClaimAmount
	}
	if patch.Status != nil {
		c.Status = *patch.Status
	}
	c.UpdatedAt = now
}

// NewClaimParams collects the filing inputs.
type NewClaimParams struct {
	PolicyID     id.PolicyID
	OwnerID      id.UserID
	IncidentDate time.Time
	Description  string
	ClaimAmount  *float64
}

// NewClaim files a claim in Pending. The incident must not be in the
// future relative to the supplied clock.
func NewClaim(claimID id.ClaimID, p NewClaimParams, now time.Time) (*Claim, error) {
	switch {
	case p.PolicyID.IsNil():
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "claim policy is required")
	case p.OwnerID.IsNil():
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "claim owner is required")
	case strings.TrimSpace(p.Description) == "":
		return nil, dErrors.New(dErrors.CodeValidation, "description is required")
	case p.IncidentDate.After(now):
		return nil, dErrors.New(dErrors.CodeInvalidTransition, "incident date cannot be in the future")
	case p.ClaimAmount != nil && *p.ClaimAmount <= 0:
		return nil, dErrors.New(dErrors.CodeValidation, "claim amount must be greater than zero")
	}
	return &Claim{
		ID:           claimID,
		PolicyID:     p.PolicyID,
		OwnerID:      p.OwnerID,
		IncidentDate: p.IncidentDate,
		Description:  strings.TrimSpace(p.Description),
		ClaimAmount:  p.ClaimAmount,
		Status:       ClaimStatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}
