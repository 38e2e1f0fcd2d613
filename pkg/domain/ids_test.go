package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "motorcover/pkg/domain-errors"
)

// TestParseID_Invariants validates the parsing invariant shared by all
// identifier types: valid, non-empty, non-nil UUIDs only.
func TestParseID_Invariants(t *testing.T) {
	t.Run("rejects empty string", func(t *testing.T) {
		_, err := ParseUserID("")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects invalid format", func(t *testing.T) {
		_, err := ParsePolicyID("not-a-uuid")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects nil UUID", func(t *testing.T) {
		_, err := ParseClaimID(uuid.Nil.String())
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("accepts valid UUID", func(t *testing.T) {
		valid := uuid.New()
		id, err := ParseProposalID(valid.String())
		require.NoError(t, err)
		assert.Equal(t, ProposalID(valid), id)
	})
}

// TestTypeDistinction verifies the compiler enforces type safety between
// identifier kinds. If this compiles, the invariant holds.
func TestTypeDistinction(t *testing.T) {
	userID := UserID(uuid.New())
	policyID := PolicyID(uuid.New())

	// These would fail to compile if types were interchangeable:
	// var _ UserID = policyID   // compile error
	// var _ PolicyID = userID   // compile error

	assert.NotEqual(t, uuid.UUID(userID), uuid.UUID(policyID))
}

func TestIsNil(t *testing.T) {
	assert.True(t, UserID{}.IsNil())
	assert.False(t, NewUserID().IsNil())
}
