package service

import (
	"context"
	"errors"
	"log/slog"

	"motorcover/internal/authz"
	"motorcover/internal/vehicle/models"
	id "motorcover/pkg/domain"
	dErrors "motorcover/pkg/domain-errors"
	"motorcover/pkg/platform/sentinel"
	"motorcover/pkg/requestcontext"
)

// VehicleStore is the persistence port for vehicle records.
type VehicleStore interface {
	Create(ctx context.Context, vehicle *models.Vehicle) error
	FindByID(ctx context.Context, vehicleID id.VehicleID) (*models.Vehicle, error)
	ListByOwner(ctx context.Context, ownerID id.UserID) ([]*models.Vehicle, error)
	Execute(ctx context.Context, vehicleID id.VehicleID, validate func(*models.Vehicle) error, mutate func(*models.Vehicle)) (*models.Vehicle, error)
}

// Service manages the vehicle registry a customer insures against.
type Service struct {
	vehicles VehicleStore
	logger   *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func New(vehicles VehicleStore, opts ...Option) *Service {
	s := &Service{vehicles: vehicles, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Add registers a vehicle under the acting customer.
func (s *Service) Add(ctx context.Context, actor authz.Identity, p models.NewVehicleParams) (*models.Vehicle, error) {
	if err := authz.RequireIdentity(actor); err != nil {
		return nil, err
	}
	p.OwnerID = actor.UserID

	vehicle, err := models.NewVehicle(id.NewVehicleID(), p, requestcontext.Now(ctx))
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
			return nil, dErrors.New(dErrors.CodeValidation, err.Error())
		}
		return nil, err
	}
	if err := s.vehicles.Create(ctx, vehicle); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "registration number is already in use")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create vehicle")
	}
	return vehicle, nil
}

// List returns the caller's active vehicles, newest first.
func (s *Service) List(ctx context.Context, actor authz.Identity) ([]*models.Vehicle, error) {
	if err := authz.RequireIdentity(actor); err != nil {
		return nil, err
	}
	vehicles, err := s.vehicles.ListByOwner(ctx, actor.UserID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list vehicles")
	}
	return vehicles, nil
}

// Get returns one vehicle. Ownership misses surface as NotFound.
func (s *Service) Get(ctx context.Context, actor authz.Identity, vehicleID id.VehicleID) (*models.Vehicle, error) {
	if err := authz.RequireIdentity(actor); err != nil {
		return nil, err
	}
	vehicle, err := s.vehicles.FindByID(ctx, vehicleID)
	if err != nil {
		return nil, wrapVehicleErr(err)
	}
	if err := authz.RequireOwnerOrAdmin(actor, vehicle.OwnerID); err != nil {
		if authz.IsOwnershipDenial(err) {
			return nil, dErrors.New(dErrors.CodeNotFound, "vehicle not found")
		}
		return nil, err
	}
	return vehicle, nil
}

// Update patches the mutable vehicle fields for the owner or an admin.
func (s *Service) Update(ctx context.Context, actor authz.Identity, vehicleID id.VehicleID, patch models.Patch) (*models.Vehicle, error) {
	if err := authz.RequireIdentity(actor); err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	vehicle, err := s.vehicles.Execute(ctx, vehicleID,
		func(v *models.Vehicle) error {
			if err := s.requireOwnership(actor, v); err != nil {
				return err
			}
			if !v.IsActive() {
				return dErrors.New(dErrors.CodeInvalidTransition, "vehicle is deleted")
			}
			if patch.Year != nil && (*patch.Year < 1900 || *patch.Year > now.Year()+1) {
				return dErrors.New(dErrors.CodeValidation, "vehicle year is out of range")
			}
			if patch.MarketValue != nil && *patch.MarketValue < 0 {
				return dErrors.New(dErrors.CodeValidation, "market value must not be negative")
			}
			return nil
		},
		func(v *models.Vehicle) {
			v.ApplyPatch(patch, now)
		},
	)
	if err != nil {
		return nil, wrapVehicleErr(err)
	}
	return vehicle, nil
}

// Delete soft-deletes a vehicle. Proposals and policies that reference it
// are never touched.
func (s *Service) Delete(ctx context.Context, actor authz.Identity, vehicleID id.VehicleID) error {
	if err := authz.RequireIdentity(actor); err != nil {
		return err
	}

	now := requestcontext.Now(ctx)
	_, err := s.vehicles.Execute(ctx, vehicleID,
		func(v *models.Vehicle) error {
			if err := s.requireOwnership(actor, v); err != nil {
				return err
			}
			return v.CanDelete()
		},
		func(v *models.Vehicle) {
			v.ApplyDelete(now)
		},
	)
	if err != nil {
		return wrapVehicleErr(err)
	}
	return nil
}

// requireOwnership hides other customers' vehicles behind NotFound.
func (s *Service) requireOwnership(actor authz.Identity, v *models.Vehicle) error {
	if err := authz.RequireOwnerOrAdmin(actor, v.OwnerID); err != nil {
		if authz.IsOwnershipDenial(err) {
			return dErrors.New(dErrors.CodeNotFound, "vehicle not found")
		}
		return err
	}
	return nil
}

func wrapVehicleErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "vehicle not found")
	case dErrors.CodeOf(err) != dErrors.CodeInternal:
		return err
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "vehicle store failure")
	}
}
