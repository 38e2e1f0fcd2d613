package adapters

import (
	"context"

	"motorcover/internal/proposal/service"
	vehiclemodels "motorcover/internal/vehicle/models"
	id "motorcover/pkg/domain"
)

// VehicleStore is the slice of the vehicle store the adapter needs.
type VehicleStore interface {
	FindByID(ctx context.Context, vehicleID id.VehicleID) (*vehiclemodels.Vehicle, error)
}

// VehicleAdapter exposes the vehicle store through the proposal service's
// reader port.
type VehicleAdapter struct {
	vehicles VehicleStore
}

func NewVehicleAdapter(vehicles VehicleStore) *VehicleAdapter {
	return &VehicleAdapter{vehicles: vehicles}
}

func (a *VehicleAdapter) Get(ctx context.Context, vehicleID id.VehicleID) (*service.VehicleSummary, error) {
	vehicle, err := a.vehicles.FindByID(ctx, vehicleID)
	if err != nil {
		return nil, err
	}
	return &service.VehicleSummary{
		ID:                 vehicle.ID,
		OwnerID:            vehicle.OwnerID,
		Type:               string(vehicle.Type),
		Make:               vehicle.Make,
		Model:              vehicle.Model,
		RegistrationNumber: vehicle.RegistrationNumber,
		Active:             vehicle.Active,
	}, nil
}
