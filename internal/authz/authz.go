// Package authz is the single authorization guard every lifecycle operation
// calls before mutating state. The rules used to be re-derived per endpoint;
// centralizing them means an ownership bug is fixed in exactly one place.
//
// The guard is a pure check: it never touches the store and has no side
// effects. Callers apply the result before any mutation.
package authz

import (
	"context"

	id "motorcover/pkg/domain"
	dErrors "motorcover/pkg/domain-errors"
	"motorcover/pkg/requestcontext"
)

// Identity is the acting user as asserted by the external identity layer.
type Identity struct {
	UserID id.UserID
	Role   id.Role
}

// Valid reports whether an identity is present at all.
func (a Identity) Valid() bool { return !a.UserID.IsNil() }

// FromContext rebuilds the acting identity placed in the request context by
// the auth middleware. The zero Identity means no authenticated caller.
func FromContext(ctx context.Context) Identity {
	return Identity{
		UserID: requestcontext.UserID(ctx),
		Role:   id.Role(requestcontext.Role(ctx)),
	}
}

// RequireIdentity fails with Unauthorized when no identity was supplied.
func RequireIdentity(actor Identity) error {
	if !actor.Valid() {
		return dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	return nil
}

// RequireAdmin allows only admins through. Used for role changes, hard
// deletes, and the unrestricted review lookups.
func RequireAdmin(actor Identity) error {
	if err := RequireIdentity(actor); err != nil {
		return err
	}
	if !actor.Role.IsAdmin() {
		return dErrors.New(dErrors.CodeForbidden, "admin role required")
	}
	return nil
}

// RequireReviewer allows admins and officers through. Used for the
// underwriting review surface.
func RequireReviewer(actor Identity) error {
	if err := RequireIdentity(actor); err != nil {
		return err
	}
	if !actor.Role.CanReview() {
		return dErrors.New(dErrors.CodeForbidden, "reviewer role required")
	}
	return nil
}

// RequireOwnerOrAdmin enforces the ownership rule: customers may only act on
// entities whose owning user id equals their own; admins bypass ownership.
//
// Callers on read paths translate the Forbidden result to NotFound so the
// existence of other customers' records never leaks.
func RequireOwnerOrAdmin(actor Identity, owner id.UserID) error {
	if err := RequireIdentity(actor); err != nil {
		return err
	}
	if actor.Role.IsAdmin() {
		return nil
	}
	if actor.UserID != owner {
		return dErrors.New(dErrors.CodeForbidden, "entity belongs to another user")
	}
	return nil
}

// IsOwnershipDenial reports whether err is the ownership failure produced by
// RequireOwnerOrAdmin, letting read paths convert it to NotFound.
func IsOwnershipDenial(err error) bool {
	return dErrors.HasCode(err, dErrors.CodeForbidden)
}
