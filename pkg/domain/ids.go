// Package domain defines typed identifiers shared across the lifecycle
// services. Wrapping uuid.UUID per entity keeps a ProposalID from ever being
// passed where a PolicyID is expected; the compiler enforces what code review
// used to catch.
package domain

import (
	"github.com/google/uuid"

	dErrors "motorcover/pkg/domain-errors"
)

type (
	// UserID identifies a registered user (customer, officer, or admin).
	UserID uuid.UUID
	// VehicleID identifies an insured (or insurable) vehicle.
	VehicleID uuid.UUID
	// ProposalID identifies a coverage proposal.
	ProposalID uuid.UUID
	// PolicyID identifies an issued policy.
	PolicyID uuid.UUID
	// ClaimID identifies a claim filed against a policy.
	ClaimID uuid.UUID
	// PaymentID identifies a recorded payment.
	PaymentID uuid.UUID
	// DocumentID identifies an uploaded document record.
	DocumentID uuid.UUID
	// NotificationID identifies an outbox notification event.
	NotificationID uuid.UUID
)

// parse validates the invariant shared by every identifier: a valid,
// non-nil UUID. Trust boundaries (handlers, stores) call the typed
// wrappers below.
func parse(s, kind string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" id is required")
	}
	parsed, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+kind+" id")
	}
	if parsed == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" id must not be nil")
	}
	return parsed, nil
}

func ParseUserID(s string) (UserID, error) {
	u, err := parse(s, "user")
	return UserID(u), err
}

func ParseVehicleID(s string) (VehicleID, error) {
	u, err := parse(s, "vehicle")
	return VehicleID(u), err
}

func ParseProposalID(s string) (ProposalID, error) {
	u, err := parse(s, "proposal")
	return ProposalID(u), err
}

func ParsePolicyID(s string) (PolicyID, error) {
	u, err := parse(s, "policy")
	return PolicyID(u), err
}

func ParseClaimID(s string) (ClaimID, error) {
	u, err := parse(s, "claim")
	return ClaimID(u), err
}

func ParseDocumentID(s string) (DocumentID, error) {
	u, err := parse(s, "document")
	return DocumentID(u), err
}

func (id UserID) IsNil() bool     { return uuid.UUID(id) == uuid.Nil }
func (id VehicleID) IsNil() bool  { return uuid.UUID(id) == uuid.Nil }
func (id ProposalID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id PolicyID) IsNil() bool   { return uuid.UUID(id) == uuid.Nil }
func (id ClaimID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }
func (id PaymentID) IsNil() bool  { return uuid.UUID(id) == uuid.Nil }
func (id DocumentID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

func (id NotificationID) IsNil() bool          { return uuid.UUID(id) == uuid.Nil }
func (id NotificationID) String() string       { return uuid.UUID(id).String() }
func NewNotificationID() NotificationID        { return NotificationID(uuid.New()) }
func (id NotificationID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }

func (id UserID) String() string     { return uuid.UUID(id).String() }
func (id VehicleID) String() string  { return uuid.UUID(id).String() }
func (id ProposalID) String() string { return uuid.UUID(id).String() }
func (id PolicyID) String() string   { return uuid.UUID(id).String() }
func (id ClaimID) String() string    { return uuid.UUID(id).String() }
func (id PaymentID) String() string  { return uuid.UUID(id).String() }
func (id DocumentID) String() string { return uuid.UUID(id).String() }

func (id UserID) MarshalText() ([]byte, error)     { return []byte(id.String()), nil }
func (id VehicleID) MarshalText() ([]byte, error)  { return []byte(id.String()), nil }
func (id ProposalID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }
func (id PolicyID) MarshalText() ([]byte, error)   { return []byte(id.String()), nil }
func (id ClaimID) MarshalText() ([]byte, error)    { return []byte(id.String()), nil }
func (id PaymentID) MarshalText() ([]byte, error)  { return []byte(id.String()), nil }
func (id DocumentID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }

func (id *UserID) UnmarshalText(b []byte) error {
	u, err := ParseUserID(string(b))
	if err != nil {
		return err
	}
	*id = u
	return nil
}

func (id *VehicleID) UnmarshalText(b []byte) error {
	u, err := ParseVehicleID(string(b))
	if err != nil {
		return err
	}
	*id = u
	return nil
}

func (id *ProposalID) UnmarshalText(b []byte) error {
	u, err := ParseProposalID(string(b))
	if err != nil {
		return err
	}
	*id = u
	return nil
}

func (id *PolicyID) UnmarshalText(b []byte) error {
	u, err := ParsePolicyID(string(b))
	if err != nil {
		return err
	}
	*id = u
	return nil
}

func (id *ClaimID) UnmarshalText(b []byte) error {
	u, err := ParseClaimID(string(b))
	if err != nil {
		return err
	}
	*id = u
	return nil
}

func (id *DocumentID) UnmarshalText(b []byte) error {
	u, err := ParseDocumentID(string(b))
	if err != nil {
		return err
	}
	*id = u
	return nil
}

func NewUserID() UserID         { return UserID(uuid.New()) }
func NewVehicleID() VehicleID   { return VehicleID(uuid.New()) }
func NewProposalID() ProposalID { return ProposalID(uuid.New()) }
func NewPolicyID() PolicyID     { return PolicyID(uuid.New()) }
func NewClaimID() ClaimID       { return ClaimID(uuid.New()) }
func NewPaymentID() PaymentID   { return PaymentID(uuid.New()) }
func NewDocumentID() DocumentID { return DocumentID(uuid.New()) }
