package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "motorcover/pkg/domain"
	dErrors "motorcover/pkg/domain-errors"
)

func validParams() NewPolicyParams {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return NewPolicyParams{
		OwnerID:        id.NewUserID(),
		VehicleID:      id.NewVehicleID(),
		Type:           id.PolicyTypeComprehensive,
		CoverageAmount: 50000,
		PremiumAmount:  2000,
		StartDate:      start,
		EndDate:        start.AddDate(1, 0, 0),
	}
}

func TestNewPolicy(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("valid params produce active policy with reminder date", func(t *testing.T) {
		policy, err := NewPolicy(id.NewPolicyID(), validParams(), now)
		require.NoError(t, err)
		assert.Equal(t, PolicyStatusActive, policy.Status)
		assert.Equal(t, policy.EndDate.AddDate(0, 0, -30), policy.RenewalReminderDate)
	})

	t.Run("end date not after start date is rejected", func(t *testing.T) {
		p := validParams()
		p.EndDate = p.StartDate
		_, err := NewPolicy(id.NewPolicyID(), p, now)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})

	t.Run("non-positive premium is rejected", func(t *testing.T) {
		p := validParams()
		p.PremiumAmount = 0
		_, err := NewPolicy(id.NewPolicyID(), p, now)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})
}

func TestRenewal(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	policy, err := NewPolicy(id.NewPolicyID(), NewPolicyParams{
		OwnerID:        id.NewUserID(),
		VehicleID:      id.NewVehicleID(),
		Type:           id.PolicyTypeThirdParty,
		CoverageAmount: 30000,
		PremiumAmount:  1500,
		StartDate:      time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:        time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}, now)
	require.NoError(t, err)

	t.Run("calendar month arithmetic with unchanged premium", func(t *testing.T) {
		policy.ApplyRenewal(12, nil, now)
		assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), policy.EndDate)
		assert.Equal(t, 1500.0, policy.PremiumAmount)
		assert.Equal(t, PolicyStatusActive, policy.Status)
	})

	t.Run("expired policy reactivates with premium override", func(t *testing.T) {
		require.NoError(t, policy.CanExpire())
		policy.ApplyExpire(now)

		require.NoError(t, policy.CanRenew())
		override := 1800.0
		policy.ApplyRenewal(6, &override, now)
		assert.Equal(t, PolicyStatusActive, policy.Status)
		assert.Equal(t, 1800.0, policy.PremiumAmount)
		assert.Equal(t, time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC), policy.EndDate)
	})

	t.Run("terminated policy cannot renew", func(t *testing.T) {
		require.NoError(t, policy.CanTerminate())
		policy.ApplyTerminate("fraud investigation", now)
		err := policy.CanRenew()
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidTransition))
	})
}

func TestValidatePatch(t *testing.T) {
	now := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	policy, err := NewPolicy(id.NewPolicyID(), validParams(), now)
	require.NoError(t, err)

	t.Run("end before start is rejected", func(t *testing.T) {
		bad := policy.StartDate.AddDate(0, 0, -1)
		err := policy.ValidatePatch(Patch{EndDate: &bad})
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidTransition))
	})

	t.Run("moving start past end is rejected", func(t *testing.T) {
		bad := policy.EndDate.AddDate(0, 0, 1)
		err := policy.ValidatePatch(Patch{StartDate: &bad})
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidTransition))
	})

	t.Run("valid patch moves reminder with end date", func(t *testing.T) {
		end := policy.EndDate.AddDate(0, 3, 0)
		require.NoError(t, policy.ValidatePatch(Patch{EndDate: &end}))
		policy.ApplyPatch(Patch{EndDate: &end}, now)
		assert.Equal(t, end.AddDate(0, 0, -30), policy.RenewalReminderDate)
	})
}
