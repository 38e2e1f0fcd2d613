package handler

import (
	"strings"
	"time"

	"motorcover/internal/policy/models"
	id "motorcover/pkg/domain"
	dErrors "motorcover/pkg/domain-errors"
)

// RenewPolicyRequest is the body for POST /policies/{policyID}/renew.
type RenewPolicyRequest struct {
	Months          int      `json:"months"`
	PremiumOverride *float64 `json:"premium_override,omitempty"`
}

func (r *RenewPolicyRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if r.Months < 1 || r.Months > 24 {
		return dErrors.New(dErrors.CodeValidation, "months must be between 1 and 24")
	}
	if r.PremiumOverride != nil && *r.PremiumOverride <= 0 {
		return dErrors.New(dErrors.CodeValidation, "premium_override must be greater than zero")
	}
	return nil
}

// CreatePolicyRequest is the body for POST /admin/policies.
type CreatePolicyRequest struct {
	OwnerID        string    `json:"owner_id"`
	VehicleID      string    `json:"vehicle_id"`
	PolicyType     string    `json:"policy_type"`
	CoverageAmount float64   `json:"coverage_amount"`
	PremiumAmount  float64   `json:"premium_amount"`
	StartDate      time.Time `json:"start_date"`
	EndDate        time.Time `json:"end_date"`

	parsedOwnerID   id.UserID
	parsedVehicleID id.VehicleID
	parsedType      id.PolicyType
}

func (r *CreatePolicyRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}

	ownerID, err := id.ParseUserID(strings.TrimSpace(r.OwnerID))
	if err != nil {
		return err
	}
	r.parsedOwnerID = ownerID

	vehicleID, err := id.ParseVehicleID(strings.TrimSpace(r.VehicleID))
	if err != nil {
		return err
	}
	r.parsedVehicleID = vehicleID

	policyType, err := id.ParsePolicyType(strings.TrimSpace(r.PolicyType))
	if err != nil {
		return err
	}
	r.parsedType = policyType

	if r.CoverageAmount <= 0 {
		return dErrors.New(dErrors.CodeValidation, "coverage_amount must be greater than zero")
	}
	if r.PremiumAmount <= 0 {
		return dErrors.New(dErrors.CodeValidation, "premium_amount must be greater than zero")
	}
	if !r.EndDate.After(r.StartDate) {
		return dErrors.New(dErrors.CodeValidation, "end_date must be after start_date")
	}
	return nil
}

// Params maps the validated request onto constructor params.
func (r *CreatePolicyRequest) Params() models.NewPolicyParams {
	return models.NewPolicyParams{
		OwnerID:        r.parsedOwnerID,
		VehicleID:      r.parsedVehicleID,
		Type:           r.parsedType,
		CoverageAmount: r.CoverageAmount,
		PremiumAmount:  r.PremiumAmount,
		StartDate:      r.StartDate,
		EndDate:        r.EndDate,
	}
}

// UpdatePolicyRequest is the body for PATCH /admin/policies/{policyID}.
type UpdatePolicyRequest struct {
	StartDate     *time.Time `json:"start_date,omitempty"`
	EndDate       *time.Time `json:"end_date,omitempty"`
	PremiumAmount *float64   `json:"premium_amount,omitempty"`
}

func (r *UpdatePolicyRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if r.StartDate == nil && r.EndDate == nil && r.PremiumAmount == nil {
		return dErrors.New(dErrors.CodeValidation, "at least one field must be provided")
	}
	return nil
}

// Patch maps the request onto the model patch.
func (r *UpdatePolicyRequest) Patch() models.Patch {
	return models.Patch{
		StartDate:     r.StartDate,
		EndDate:       r.EndDate,
		PremiumAmount: r.PremiumAmount,
	}
}

// TerminatePolicyRequest is the body for POST /admin/policies/{policyID}/terminate.
type TerminatePolicyRequest struct {
	Reason string `json:"reason"`
}

func (r *TerminatePolicyRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if strings.TrimSpace(r.Reason) == "" {
		return dErrors.New(dErrors.CodeValidation, "reason is required")
	}
	if len(r.Reason) > 1000 {
		return dErrors.New(dErrors.CodeValidation, "reason must be at most 1000 characters")
	}
	return nil
}
