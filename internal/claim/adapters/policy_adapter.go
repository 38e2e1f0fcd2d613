package adapters

import (
	"context"

	"motorcover/internal/claim/service"
	policymodels "motorcover/internal/policy/models"
	id "motorcover/pkg/domain"
)

// PolicyStore is the slice of the policy store the adapter needs.
type PolicyStore interface {
	FindByID(ctx context.Context, policyID id.PolicyID) (*policymodels.Policy, error)
}

// PolicyAdapter exposes the policy store through the claim service's
// reader port.
type PolicyAdapter struct {
	policies PolicyStore
}

func NewPolicyAdapter(policies PolicyStore) *PolicyAdapter {
	return &PolicyAdapter{policies: policies}
}

func (a *PolicyAdapter) Get(ctx context.Context, policyID id.PolicyID) (*service.PolicySummary, error) {
	policy, err := a.policies.FindByID(ctx, policyID)
	if err != nil {
		return nil, err
	}
	return &service.PolicySummary{
		ID:             policy.ID,
		OwnerID:        policy.OwnerID,
		VehicleID:      policy.VehicleID,
		Type:           string(policy.Type),
		Status:         string(policy.Status),
		CoverageAmount: policy.CoverageAmount,
		Active:         policy.IsActive(),
	}, nil
}
