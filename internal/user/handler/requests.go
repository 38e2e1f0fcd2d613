package handler

import (
	"strings"

	id "motorcover/pkg/domain"
	dErrors "motorcover/pkg/domain-errors"
)

// UpdateProfileRequest is the body for PATCH /users/me.
type UpdateProfileRequest struct {
	Name    *string `json:"name,omitempty"`
	Phone   *string `json:"phone,omitempty"`
	Address *string `json:"address,omitempty"`
}

func (r *UpdateProfileRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if r.Name == nil && r.Phone == nil && r.Address == nil {
		return dErrors.New(dErrors.CodeValidation, "at least one field must be provided")
	}
	if r.Name != nil && strings.TrimSpace(*r.Name) == "" {
		return dErrors.New(dErrors.CodeValidation, "name must not be blank")
	}
	if r.Name != nil && len(*r.Name) > 128 {
		return dErrors.New(dErrors.CodeValidation, "name must be at most 128 characters")
	}
	return nil
}

// UpdateRoleRequest is the body for PUT /admin/users/{userID}/role.
type UpdateRoleRequest struct {
	Role string `json:"role"`

	parsedRole id.Role
}

func (r *UpdateRoleRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	role, err := id.ParseRole(strings.TrimSpace(r.Role))
	if err != nil {
		return dErrors.New(dErrors.CodeValidation, "role must be one of Customer, Officer, Admin")
	}
	r.parsedRole = role
	return nil
}

// ParsedRole returns the validated role.
func (r *UpdateRoleRequest) ParsedRole() id.Role { return r.parsedRole }
