package handler

import (
	"motorcover/internal/proposal/models"
	"motorcover/internal/proposal/service"
)

// DetailResponse is the proposal detail payload with its vehicle summary.
type DetailResponse struct {
	Proposal *models.Proposal `json:"proposal"`
	Vehicle  *VehicleSummary  `json:"vehicle,omitempty"`
}

// VehicleSummary is the vehicle slice embedded in proposal detail.
type VehicleSummary struct {
	ID                 string `json:"id"`
	Type               string `json:"type"`
	Make               string `json:"make"`
	Model              string `json:"model"`
	RegistrationNumber string `json:"registration_number"`
}

// FromDetail maps the service detail onto the response payload.
func FromDetail(detail *service.Detail) DetailResponse {
	resp := DetailResponse{Proposal: detail.Proposal}
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
