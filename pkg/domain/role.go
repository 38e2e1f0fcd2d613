package domain

import dErrors "motorcover/pkg/domain-errors"

// Role is the closed set of user roles the identity layer can assert.
type Role string

const (
	// RoleCustomer owns vehicles, proposals, policies, and claims.
	RoleCustomer Role = "Customer"
	// RoleOfficer reviews proposals and claims but holds no admin rights.
	RoleOfficer Role = "Officer"
	// RoleAdmin bypasses ownership checks for reads and administrative writes.
	RoleAdmin Role = "Admin"
)

var validRoles = map[Role]bool{
	RoleCustomer: true,
	RoleOfficer:  true,
	RoleAdmin:    true,
}

// ParseRole validates a role string from a token or role-update request.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !validRoles[r] {
		return "", dErrors.New(dErrors.CodeInvalidInput, "unknown role: "+s)
	}
	return r, nil
}

// Valid reports whether the role is one of the closed set.
func (r Role) Valid() bool { return validRoles[r] }

func (r Role) IsAdmin() bool { return r == RoleAdmin }

// CanReview reports whether the role may act on other users' proposals and
// claims through the review endpoints.
func (r Role) CanReview() bool { return r == RoleAdmin || r == RoleOfficer }
