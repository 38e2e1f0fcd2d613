package models

import (
	"strings"
	"time"

	id "motorcover/pkg/domain"
	dErrors "motorcover/pkg/domain-errors"
)

// VehicleType is the closed set of insurable vehicle categories.
type VehicleType string

const (
	VehicleTypeCar       VehicleType = "Car"
	VehicleTypeBike      VehicleType = "Bike"
	VehicleTypeCamperVan VehicleType = "CamperVan"
	VehicleTypeTruck     VehicleType = "Truck"
)

var validVehicleTypes = map[VehicleType]bool{
	VehicleTypeCar:       true,
	VehicleTypeBike:      true,
	VehicleTypeCamperVan: true,
	VehicleTypeTruck:     true,
}

func ParseVehicleType(s string) (VehicleType, error) {
	t := VehicleType(s)
	if !validVehicleTypes[t] {
		return "", dErrors.New(dErrors.CodeValidation, "unknown vehicle type: "+s)
	}
	return t, nil
}

// Vehicle is a customer-owned vehicle that proposals and policies reference.
//
// Invariants:
//   - Owned by exactly one user, immutable after creation
//   - Deletion is a soft flag; historical proposals and policies keep
//     pointing at the record
type Vehicle struct {
	ID                 id.VehicleID `json:"id"`
	OwnerID            id.UserID    `json:"owner_id"`
	Type               VehicleType  `json:"type"`
	Make               string       `json:"make"`
	Model              string       `json:"model"`
	Year               int          `json:"year"`
	RegistrationNumber string       `json:"registration_number"`
	ChassisNumber      string       `json:"chassis_number,omitempty"`
	EngineNumber       string       `json:"engine_number,omitempty"`
	Color              string       `json:"color,omitempty"`
	FuelType           string       `json:"fuel_type,omitempty"`
	MarketValue        float64      `json:"market_value"`
	Active             bool         `json:"active"`
	CreatedAt          time.Time    `json:"created_at"`
	UpdatedAt          time.Time    `json:"updated_at"`
}

func (v *Vehicle) IsActive() bool { return v.Active }

// CanDelete reports whether the vehicle may be soft-deleted.
func (v *Vehicle) CanDelete() error {
	if !v.Active {
		return dErrors.New(dErrors.CodeInvalidTransition, "vehicle is already deleted")
	}
	return nil
}

// ApplyDelete clears the active flag. Historical records are untouched.
func (v *Vehicle) ApplyDelete(now time.Time) {
	v.Active = false
	v.UpdatedAt = now
}

// Patch carries the optional mutable fields of a vehicle update.
type Patch struct {
	Make        *string
	Model       *string
	Year        *int
	Color       *string
	FuelType    *string
	MarketValue *float64
}

// ApplyPatch updates the mutable fields. Registration and chassis numbers
// are immutable once recorded.
func (v *Vehicle) ApplyPatch(patch Patch, now time.Time) {
	if patch.Make != nil {
		v.Make = strings.TrimSpace(*patch.Make)
	}
	if patch.Model != nil {
		v.Model = strings.TrimSpace(*patch.Model)
	}
	if patch.Year != nil {
		v.Year = *patch.Year
	}
	if patch.Color != nil {
		v.Color = strings.TrimSpace(*patch.Color)
	}
	if patch.FuelType != nil {
		v.FuelType = strings.TrimSpace(*patch.FuelType)
	}
	if patch.MarketValue != nil {
		v.MarketValue = *patch.MarketValue
	}
	v.UpdatedAt = now
}

// NewVehicleParams collects the constructor inputs.
type NewVehicleParams struct {
	OwnerID            id.UserID
	Type               VehicleType
	Make               string
	Model              string
	Year               int
	RegistrationNumber string
	ChassisNumber      string
	EngineNumber       string
	Color              string
	FuelType           string
	MarketValue        float64
}

func NewVehicle(vehicleID id.VehicleID, p NewVehicleParams, now time.Time) (*Vehicle, error) {
	p.RegistrationNumber = strings.ToUpper(strings.TrimSpace(p.RegistrationNumber))
	switch {
	case p.OwnerID.IsNil():
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "vehicle owner is required")
	case !validVehicleTypes[p.Type]:
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "vehicle type is not valid")
	case p.RegistrationNumber == "":
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "registration number is required")
	case p.Year < 1900 || p.Year > now.Year()+1:
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "vehicle year is out of range")
	case p.MarketValue < 0:
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "market value must not be negative")
	}
	return &Vehicle{
		ID:                 vehicleID,
		OwnerID:            p.OwnerID,
		Type:               p.Type,
		Make:               strings.TrimSpace(p.Make),
		Model:              strings.TrimSpace(p.Model),
		Year:               p.Year,
		RegistrationNumber: p.RegistrationNumber,
		ChassisNumber:      strings.TrimSpace(p.ChassisNumber),
		EngineNumber:       strings.TrimSpace(p.EngineNumber),
		Color:              strings.TrimSpace(p.Color),
		FuelType:           strings.TrimSpace(p.FuelType),
		MarketValue:        p.MarketValue,
		Active:             true,
		CreatedAt:          now,
		UpdatedAt:          now,
	}, nil
}
