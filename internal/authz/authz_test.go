package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"

	id "motorcover/pkg/domain"
	dErrors "motorcover/pkg/domain-errors"
)

func TestRequireIdentity(t *testing.T) {
	t.Run("missing identity is unauthorized", func(t *testing.T) {
		err := RequireIdentity(Identity{})
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	t.Run("present identity passes", func(t *testing.T) {
		actor := Identity{UserID: id.NewUserID(), Role: id.RoleCustomer}
		assert.NoError(t, RequireIdentity(actor))
	})
}

func TestRequireAdmin(t *testing.T) {
	tests := []struct {
		name     string
		role     id.Role
		wantCode dErrors.Code
	}{
		{name: "admin passes", role: id.RoleAdmin},
		{name: "officer forbidden", role: id.RoleOfficer, wantCode: dErrors.CodeForbidden},
		{name: "customer forbidden", role: id.RoleCustomer, wantCode: dErrors.CodeForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := RequireAdmin(Identity{UserID: id.NewUserID(), Role: tt.role})
			if tt.wantCode == "" {
				assert.NoError(t, err)
				return
			}
			assert.True(t, dErrors.HasCode(err, tt.wantCode))
		})
	}
}

func TestRequireReviewer(t *testing.T) {
	actor := Identity{UserID: id.NewUserID(), Role: id.RoleOfficer}
	assert.NoError(t, RequireReviewer(actor))

	actor.Role = id.RoleCustomer
	err := RequireReviewer(actor)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeForbidden))
}

func TestRequireOwnerOrAdmin(t *testing.T) {
	owner := id.NewUserID()

	t.Run("owner passes", func(t *testing.T) {
		actor := Identity{UserID: owner, Role: id.RoleCustomer}
		assert.NoError(t, RequireOwnerOrAdmin(actor, owner))
	})

	t.Run("admin bypasses ownership", func(t *testing.T) {
		actor := Identity{UserID: id.NewUserID(), Role: id.RoleAdmin}
		assert.NoError(t, RequireOwnerOrAdmin(actor, owner))
	})

	t.Run("other customer is denied", func(t *testing.T) {
		actor := Identity{UserID: id.NewUserID(), Role: id.RoleCustomer}
		err := RequireOwnerOrAdmin(actor, owner)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeForbidden))
		assert.True(t, IsOwnershipDenial(err))
	})

	t.Run("missing identity is unauthorized not forbidden", func(t *testing.T) {
		err := RequireOwnerOrAdmin(Identity{}, owner)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
		assert.False(t, dErrors.HasCode(err, dErrors.CodeForbidden))
	})
}
