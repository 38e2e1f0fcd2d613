package handler

import (
	"strings"

	"motorcover/internal/vehicle/models"
	dErrors "motorcover/pkg/domain-errors"
)

// AddVehicleRequest is the body for POST /vehicles.
type AddVehicleRequest struct {
	Type               string  `json:"type"`
	Make               string  `json:"make"`
	Model              string  `json:"model"`
	Year               int     `json:"year"`
	RegistrationNumber string  `json:"registration_number"`
	ChassisNumber      string  `json:"chassis_number"`
	EngineNumber       string  `json:"engine_number"`
	Color              string  `json:"color"`
	FuelType           string  `json:"fuel_type"`
	MarketValue        float64 `json:"market_value"`

	parsedType models.VehicleType
}

func (r *AddVehicleRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	vehicleType, err := models.ParseVehicleType(strings.TrimSpace(r.Type))
	if err != nil {
		return err
	}
	r.parsedType = vehicleType

	if strings.TrimSpace(r.RegistrationNumber) == "" {
		return dErrors.New(dErrors.CodeValidation, "registration_number is required")
	}
	if len(r.RegistrationNumber) > 20 {
		return dErrors.New(dErrors.CodeValidation, "registration_number must be at most 20 characters")
	}
	if r.MarketValue < 0 {
		return dErrors.New(dErrors.CodeValidation, "market_value must not be negative")
	}
	return nil
}

// Params maps the validated request onto constructor params.
func (r *AddVehicleRequest) Params() models.NewVehicleParams {
	return models.NewVehicleParams{
		Type:               r.parsedType,
		Make:               r.Make,
		Model:              r.Model,
		Year:               r.Year,
		RegistrationNumber: r.RegistrationNumber,
		ChassisNumber:      r.ChassisNumber,
		EngineNumber:       r.EngineNumber,
		Color:              r.Color,
		FuelType:           r.FuelType,
		MarketValue:        r.MarketValue,
	}
}

// UpdateVehicleRequest is the body for PATCH /vehicles/{vehicleID}.
type UpdateVehicleRequest struct {
	Make        *string  `json:"make,omitempty"`
	Model       *string  `json:"model,omitempty"`
	Year        *int     `json:"year,omitempty"`
	Color       *string  `json:"color,omitempty"`
	FuelType    *string  `json:"fuel_type,omitempty"`
	MarketValue *float64 `json:"market_value,omitempty"`
}

func (r *UpdateVehicleRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if r.Make == nil && r.Model == nil && r.Year == nil && r.Color == nil && r.FuelType == nil && r.MarketValue == nil {
		return dErrors.New(dErrors.CodeValidation, "at least one field must be provided")
	}
	return nil
}

// Patch maps the request onto the model patch.
func (r *UpdateVehicleRequest) Patch() models.Patch {
	return models.Patch{
		Make:        r.Make,
		Model:       r.Model,
		Year:        r.Year,
		Color:       r.Color,
		FuelType:    r.FuelType,
		MarketValue: r.MarketValue,
	}
}
