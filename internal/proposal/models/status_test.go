package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProposalTransitions(t *testing.T) {
	tests := []struct {
		from    ProposalStatus
		to      ProposalStatus
		allowed bool
	}{
		{ProposalStatusSubmitted, ProposalStatusUnderReview, true},
		{ProposalStatusSubmitted, ProposalStatusApproved, true},
		{ProposalStatusSubmitted, ProposalStatusCanceled, true},
		{ProposalStatusSubmitted, ProposalStatusConverted, false},
		{ProposalStatusUnderReview, ProposalStatusApproved, true},
		{ProposalStatusUnderReview, ProposalStatusCanceled, false},
		{ProposalStatusApproved, ProposalStatusConverted, true},
		{ProposalStatusApproved, ProposalStatusRejected, false},
		{ProposalStatusConverted, ProposalStatusApproved, false},
		{ProposalStatusRejected, ProposalStatusApproved, false},
		{ProposalStatusCanceled, ProposalStatusCanceled, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to),
			"%s -> %s", tt.from, tt.to)
	}
}

func TestTerminalStatuses(t *testing.T) {
	for _, status := range []ProposalStatus{ProposalStatusRejected, ProposalStatusCanceled, ProposalStatusConverted} {
		assert.True(t, status.Terminal(), "%s should be terminal", status)
	}
	for _, status := range []ProposalStatus{ProposalStatusSubmitted, ProposalStatusUnderReview, ProposalStatusApproved} {
		assert.False(t, status.Terminal(), "%s should not be terminal", status)
	}
}
