package models

import (
	dErrors "motorcover/pkg/domain-errors"
)

// ClaimStatus is the review state of a filed claim.
type ClaimStatus string

const (
	ClaimStatusPending     ClaimStatus = "Pending"
	ClaimStatusUnderReview ClaimStatus = "UnderReview"
	ClaimStatusApproved    ClaimStatus = "Approved"
	ClaimStatusRejected    ClaimStatus = "Rejected"
	ClaimStatusSettled     ClaimStatus = "Settled"
)

// claimTransitions is the legal status graph. Review can be picked up and
// put back down; approval, rejection, and settlement are one-way.
var claimTransitions = map[ClaimStatus][]ClaimStatus{
	ClaimStatusPending:     {ClaimStatusUnderReview, ClaimStatusApproved, ClaimStatusRejected},
	ClaimStatusUnderReview: {ClaimStatusPending, ClaimStatusApproved, ClaimStatusRejected},
	ClaimStatusApproved:    {ClaimStatusSettled},
}

func (s ClaimStatus) CanTransitionTo(target ClaimStatus) bool {
	for _, allowed := range claimTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transitions are possible.
func (s ClaimStatus) Terminal() bool {
	return len(claimTransitions[s]) == 0
}

// Deletable reports whether a claim in this status may be removed.
func (s ClaimStatus) Deletable() bool {
	return s == ClaimStatusPending || s == ClaimStatusUnderReview
}

func ParseClaimStatus(s string) (ClaimStatus, error) {
	switch ClaimStatus(s) {
	case ClaimStatusPending, ClaimStatusUnderReview, ClaimStatusApproved,
		ClaimStatusRejected, ClaimStatusSettled:
		return ClaimStatus(s), nil
	}
	return "", dErrors.New(dErrors.CodeValidation, "unknown claim status")
}
