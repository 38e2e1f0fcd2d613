package models

import dErrors "motorcover/pkg/domain-errors"

// ProposalStatus is the proposal state machine's closed value set.
type ProposalStatus string

const (
	ProposalStatusSubmitted   ProposalStatus = "Submitted"
	ProposalStatusUnderReview ProposalStatus = "UnderReview"
	ProposalStatusApproved    ProposalStatus = "Approved"
	ProposalStatusRejected    ProposalStatus = "Rejected"
	ProposalStatusCanceled    ProposalStatus = "Canceled"
	ProposalStatusConverted   ProposalStatus = "Converted"
)

// proposalTransitions is the single source of transition legality.
// Rejected, Canceled, and Converted are terminal.
var proposalTransitions = map[ProposalStatus][]ProposalStatus{
	ProposalStatusSubmitted:   {ProposalStatusUnderReview, ProposalStatusApproved, ProposalStatusRejected, ProposalStatusCanceled},
	ProposalStatusUnderReview: {ProposalStatusApproved, ProposalStatusRejected},
	ProposalStatusApproved:    {ProposalStatusConverted},
}

// CanTransitionTo reports whether the transition table allows moving to next.
func (s ProposalStatus) CanTransitionTo(next ProposalStatus) bool {
	for _, allowed := range proposalTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transitions exist from this status.
func (s ProposalStatus) Terminal() bool {
	return len(proposalTransitions[s]) == 0
}

func ParseProposalStatus(s string) (ProposalStatus, error) {
	status := ProposalStatus(s)
	switch status {
	case ProposalStatusSubmitted, ProposalStatusUnderReview, ProposalStatusApproved,
		ProposalStatusRejected, ProposalStatusCanceled, ProposalStatusConverted:
		return status, nil
	}
	return "", dErrors.New(dErrors.CodeValidation, "unknown proposal status: "+s)
}
