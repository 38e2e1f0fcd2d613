package models

import (
	"time"

	id "motorcover/pkg/domain"
	dErrors "motorcover/pkg/domain-errors"
)

// EventType names an outbound notification trigger.
type EventType string

const (
	EventProposalApproved EventType = "proposal.approved"
	EventProposalRejected EventType = "proposal.rejected"
	EventPolicyIssued     EventType = "policy.issued"
	EventClaimApproved    EventType = "claim.approved"
	EventClaimRejected    EventType = "claim.rejected"
)

// EventStatus tracks an outbox row through the relay.
type EventStatus string

const (
	EventStatusPending EventStatus = "pending"
	EventStatusSent    EventStatus = "sent"
	EventStatusFailed  EventStatus = "failed"
)

// Event is one outbox row. State transitions append events after the
// business transaction commits; the relay dispatches them asynchronously so
// a slow mail relay can never block or corrupt a transition.
type Event struct {
	ID          id.NotificationID `json:"id"`
	Type        EventType         `json:"type"`
	RecipientID id.UserID         `json:"recipient_id"`
	Subject     string            `json:"subject"`
	Body        string            `json:"body"`
	// Attachment carries rendered certificate bytes for policy.issued
	// events. Empty for everything else.
	Attachment     []byte      `json:"attachment,omitempty"`
	AttachmentName string      `json:"attachment_name,omitempty"`
	Status         EventStatus `json:"status"`
	Attempts       int         `json:"attempts"`
	LastError      string      `json:"last_error,omitempty"`
	LastAttemptAt  *time.Time  `json:"last_attempt_at,omitempty"`
	CreatedAt      time.Time   `json:"created_at"`
	SentAt         *time.Time  `json:"sent_at,omitempty"`
}

// MarkSent records a successful dispatch.
func (e *Event) MarkSent(now time.Time) {
	e.Status = EventStatusSent
	e.SentAt = &now
}

// MarkFailed records a failed dispatch attempt. The relay retries pending
// and failed rows alike; Status=failed is informational.
func (e *Event) MarkFailed(err error, now time.Time) {
	e.Status = EventStatusFailed
	e.Attempts++
	e.LastAttemptAt = &now
	if err != nil {
		e.LastError = err.Error()
	}
}

func NewEvent(eventID id.NotificationID, eventType EventType, recipient id.UserID, subject, body string, now time.Time) (*Event, error) {
	if recipient.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "notification recipient is required")
	}
	if subject == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "notification subject is required")
	}
	return &Event{
		ID:          eventID,
		Type:        eventType,
		RecipientID: recipient,
		Subject:     subject,
		Body:        body,
		Status:      EventStatusPending,
		CreatedAt:   now,
	}, nil
}
