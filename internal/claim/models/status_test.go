package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClaimTransitions(t *testing.T) {
	cases := []struct {
		from    ClaimStatus
		to      ClaimStatus
		allowed bool
	}{
		{ClaimStatusPending, ClaimStatusUnderReview, true},
		{ClaimStatusPending, ClaimStatusApproved, true},
		{ClaimStatusPending, ClaimStatusRejected, true},
		{ClaimStatusPending, ClaimStatusSettled, false},
		{ClaimStatusUnderReview, ClaimStatusPending, true},
		{ClaimStatusUnderReview, ClaimStatusApproved, true},
		{ClaimStatusUnderReview, ClaimStatusRejected, true},
		{ClaimStatusApproved, ClaimStatusSettled, true},
		{ClaimStatusApproved, ClaimStatusRejected, false},
		{ClaimStatusRejected, ClaimStatusPending, false},
		{ClaimStatusSettled, ClaimStatusApproved, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.allowed, tc.from.CanTransitionTo(tc.to),
			"%s -> %s", tc.from, tc.to)
	}
}

func TestClaimTerminal(t *testing.T) {
	assert.False(t, ClaimStatusPending.Terminal())
	assert.False(t, ClaimStatusUnderReview.Terminal())
	assert.False(t, ClaimStatusApproved.Terminal())
	assert.True(t, ClaimStatusRejected.Terminal())
	assert.True(t, ClaimStatusSettled.Terminal())
}

func TestClaimDeletable(t *testing.T) {
	assert.True(t, ClaimStatusPending.Deletable())
	assert.True(t, ClaimStatusUnderReview.Deletable())
	assert.False(t, ClaimStatusApproved.Deletable())
	assert.False(t, ClaimStatusRejected.Deletable())
	assert.False(t, ClaimStatusSettled.Deletable())
}
