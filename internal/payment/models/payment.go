package models

import (
	"strings"
	"time"

	"github.com/google/uuid"

	id "motorcover/pkg/domain"
	dErrors "motorcover/pkg/domain-errors"
)

// PaymentStatus is the settlement state of a payment record.
type PaymentStatus string

const (
	PaymentStatusCompleted PaymentStatus = "Completed"
	PaymentStatusFailed    PaymentStatus = "Failed"
	PaymentStatusRefunded  PaymentStatus = "Refunded"
)

// Payment is the record of a premium settlement against a policy.
type Payment struct {
	ID            id.PaymentID  `json:"id"`
	TransactionID string        `json:"transaction_id"`
	UserID        id.UserID     `json:"user_id"`
	PolicyID      id.PolicyID   `json:"policy_id"`
	Amount        float64       `json:"amount"`
	Currency      string        `json:"currency"`
	Status        PaymentStatus `json:"status"`
	CreatedAt     time.Time     `json:"created_at"`
}

// NewCompletedPayment records a settled premium payment. The gateway is
// simulated, so the transaction reference is generated here.
func NewCompletedPayment(userID id.UserID, policyID id.PolicyID, amount float64, currency string, now time.Time) (*Payment, error) {
	switch {
	case userID.IsNil():
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "payment user is required")
	case policyID.IsNil():
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "payment policy is required")
	case amount <= 0:
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "payment amount must be greater than zero")
	}
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" {
		currency = "INR"
	}
	return &Payment{
		ID:            id.NewPaymentID(),
		TransactionID: "TXN-" + uuid.NewString(),
		UserID:        userID,
		PolicyID:      policyID,
		Amount:        amount,
		Currency:      currency,
		Status:        PaymentStatusCompleted,
		CreatedAt:     now,
	}, nil
}
