package models

import (
	"strings"
	"time"

	id "motorcover/pkg/domain"
	dErrors "motorcover/pkg/domain-errors"
)

// User is a registered account holder.
//
// Invariants:
//   - Email is non-empty and normalized to lower case
//   - Role is one of the values accepted by domain.ParseRole
//   - Deactivation is a soft flag; users are never hard-deleted because
//     policies and claims stay attributable to them
type User struct {
	ID        id.UserID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Address   string    `json:"address,omitempty"`
	Role      id.Role   `json:"role"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (u *User) IsActive() bool { return u.Active }

// CanDeactivate reports whether the soft-deactivation flag may be cleared.
func (u *User) CanDeactivate() error {
	if !u.Active {
		return dErrors.New(dErrors.CodeInvariantViolation, "user is already deactivated")
	}
	return nil
}

// ApplyDeactivation clears the active flag. Call CanDeactivate first.
func (u *User) ApplyDeactivation(now time.Time) {
	u.Active = false
	u.UpdatedAt = now
}

// ApplyRoleChange swaps the role and returns the previous value so callers
// can log the before/after pair.
func (u *User) ApplyRoleChange(role id.Role, now time.Time) id.Role {
	previous := u.Role
	u.Role = role
	u.UpdatedAt = now
	return previous
}

// ApplyProfileUpdate patches the mutable profile fields. Nil fields are left
// untouched.
func (u *User) ApplyProfileUpdate(patch ProfilePatch, now time.Time) {
	if patch.Name != nil {
		u.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Phone != nil {
		u.Phone = strings.TrimSpace(*patch.Phone)
	}
	if patch.Address != nil {
		u.Address = strings.TrimSpace(*patch.Address)
	}
	u.UpdatedAt = now
}

// ProfilePatch carries the optional profile fields an account holder may
// change about themselves.
type ProfilePatch struct {
	Name    *string
	Phone   *string
	Address *string
}

func NewUser(userID id.UserID, name, email string, role id.Role, now time.Time) (*User, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "user name cannot be empty")
	}
	if email == "" || !strings.Contains(email, "@") {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "user email is not valid")
	}
	if !role.Valid() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "user role is not valid")
	}
	return &User{
		ID:        userID,
		Name:      name,
		Email:     email,
		Role:      role,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}
