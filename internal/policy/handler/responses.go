package handler

import (
	"motorcover/internal/policy/models"
	"motorcover/internal/policy/service"
)

// DetailResponse is the policy detail payload with its vehicle summary.
type DetailResponse struct {
	Policy  *models.Policy  `json:"policy"`
	Vehicle *VehicleSummary `json:"vehicle,omitempty"`
}

// VehicleSummary is the vehicle slice embedded in policy detail.
type VehicleSummary struct {
	ID                 string `json:"id"`
	Type               string `json:"type"`
	Make               string `json:"make"`
	Model              string `json:"model"`
	RegistrationNumber string `json:"registration_number"`
}

// FromDetail maps the service detail onto the response payload.
func FromDetail(detail *service.Detail) DetailResponse {
	resp := DetailResponse{Policy: detail.Policy}
	if detail.Vehicle != nil {
		resp.Vehicle = &VehicleSummary{
			ID:                 detail.Vehicle.ID.String(),
			Type:               detail.Vehicle.Type,
			Make:               detail.Vehicle.Make,
			Model:              detail.Vehicle.Model,
			RegistrationNumber: detail.Vehicle.RegistrationNumber,
		}
	}
	return resp
}
