package models

import (
	"fmt"
	"time"

	id "motorcover/pkg/domain"
)

// Builders for the fixed set of lifecycle notifications. Keeping the wording
// here means services emit events without owning copy.

func ProposalApproved(recipient id.UserID, proposalID id.ProposalID, now time.Time) *Event {
	event, _ := NewEvent(id.NewNotificationID(), EventProposalApproved, recipient,
		"Your insurance proposal has been approved",
		fmt.Sprintf("Proposal %s was approved. You can now complete payment to issue your policy.", proposalID),
		now)
	return event
}

func ProposalRejected(recipient id.UserID, proposalID id.ProposalID, reason string, now time.Time) *Event {
	body := fmt.Sprintf("Proposal %s was rejected.", proposalID)
	if reason != "" {
		body = fmt.Sprintf("%s Reason: %s", body, reason)
	}
	event, _ := NewEvent(id.NewNotificationID(), EventProposalRejected, recipient,
		"Your insurance proposal has been rejected", body, now)
	return event
}

func PolicyIssued(recipient id.UserID, policyID id.PolicyID, certificate []byte, now time.Time) *Event {
	event, _ := NewEvent(id.NewNotificationID(), EventPolicyIssued, recipient,
		"Your insurance policy is now active",
		fmt.Sprintf("Policy %s has been issued and is active. Your certificate is attached.", policyID),
		now)
	event.Attachment = certificate
	event.AttachmentName = fmt.Sprintf("policy-%s.txt", policyID)
	return event
}

func ClaimApproved(recipient id.UserID, claimID id.ClaimID, approvedAmount float64, now time.Time) *Event {
	event, _ := NewEvent(id.NewNotificationID(), EventClaimApproved, recipient,
		"Your claim has been approved",
		fmt.Sprintf("Claim %s was approved for %.2f.", claimID, approvedAmount),
		now)
	return event
}

func ClaimRejected(recipient id.UserID, claimID id.ClaimID, notes string, now time.Time) *Event {
	body := fmt.Sprintf("Claim %s was rejected.", claimID)
	if notes != "" {
		body = fmt.Sprintf("%s Notes: %s", body, notes)
	}
	event, _ := NewEvent(id.NewNotificationID(), EventClaimRejected, recipient,
		"Your claim has been rejected", body, now)
	return event
}
