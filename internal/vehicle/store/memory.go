package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"motorcover/internal/vehicle/models"
	id "motorcover/pkg/domain"
	"motorcover/pkg/platform/sentinel"
)

// Memory stores vehicles in memory for tests and development.
type Memory struct {
	mu       sync.RWMutex
	vehicles map[id.VehicleID]*models.Vehicle
}

func NewMemory() *Memory {
	return &Memory{vehicles: make(map[id.VehicleID]*models.Vehicle)}
}

func (s *Memory) Create(_ context.Context, vehicle *models.Vehicle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.vehicles {
		if existing.Active && strings.EqualFold(existing.RegistrationNumber, vehicle.RegistrationNumber) {
			return fmt.Errorf("registration number already in use: %w", sentinel.ErrConflict)
		}
	}
	copied := *vehicle
	s.vehicles[vehicle.ID] = &copied
	return nil
}

func (s *Memory) FindByID(_ context.Context, vehicleID id.VehicleID) (*models.Vehicle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	vehicle, ok := s.vehicles[vehicleID]
	if !ok {
		return nil, fmt.Errorf("vehicle %s: %w", vehicleID, sentinel.ErrNotFound)
	}
	copied := *vehicle
	return &copied, nil
}

// ListByOwner returns the owner's active vehicles, newest first.
func (s *Memory) ListByOwner(_ context.Context, ownerID id.UserID) ([]*models.Vehicle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	owned := make([]*models.Vehicle, 0)
	for _, vehicle := range s.vehicles {
		if vehicle.OwnerID == ownerID && vehicle.Active {
			copied := *vehicle
			owned = append(owned, &copied)
		}
	}
	sort.Slice(owned, func(i, j int) bool { return owned[i].CreatedAt.After(owned[j].CreatedAt) })
	return owned, nil
}

func (s *Memory) Execute(_ context.Context, vehicleID id.VehicleID, validate func(*models.Vehicle) error, mutate func(*models.Vehicle)) (*models.Vehicle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	vehicle, ok := s.vehicles[vehicleID]
	if !ok {
		return nil, fmt.Errorf("vehicle %s: %w", vehicleID, sentinel.ErrNotFound)
	}
	if err := validate(vehicle); err != nil {
		return nil, err
	}
	mutate(vehicle)
	copied := *vehicle
	return &copied, nil
}
