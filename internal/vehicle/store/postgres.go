package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"motorcover/internal/vehicle/models"
	id "motorcover/pkg/domain"
	"motorcover/pkg/platform/sentinel"
	"motorcover/pkg/platform/tx"
)

// Postgres persists vehicles in PostgreSQL. Pure I/O.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

const vehicleColumns = `id, owner_id, type, make, model, year, registration_number,
	chassis_number, engine_number, color, fuel_type, market_value, active, created_at, updated_at`

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *Postgres) q(ctx context.Context) querier {
	if t := tx.From(ctx); t != nil {
		return t
	}
	return s.db
}

func (s *Postgres) Create(ctx context.Context, vehicle *models.Vehicle) error {
	query := `
		INSERT INTO vehicles (` + vehicleColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`
	_, err := s.q(ctx).ExecContext(ctx, query,
		uuid.UUID(vehicle.ID), uuid.UUID(vehicle.OwnerID), string(vehicle.Type),
		vehicle.Make, vehicle.Model, vehicle.Year, vehicle.RegistrationNumber,
		vehicle.ChassisNumber, vehicle.EngineNumber, vehicle.Color, vehicle.FuelType,
		vehicle.MarketValue, vehicle.Active, vehicle.CreatedAt, vehicle.UpdatedAt,
	)
	if err != nil {
		if strings.Contains(err.Error(), "23505") {
			return fmt.Errorf("create vehicle: %w", sentinel.ErrConflict)
		}
		return fmt.Errorf("create vehicle: %w", err)
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, vehicleID id.VehicleID) (*models.Vehicle, error) {
	query := `SELECT ` + vehicleColumns + ` FROM vehicles WHERE id = $1`
	vehicle, err := scanVehicle(s.q(ctx).QueryRowContext(ctx, query, uuid.UUID(vehicleID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("vehicle %s: %w", vehicleID, sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find vehicle: %w", err)
	}
	return vehicle, nil
}

func (s *Postgres) ListByOwner(ctx context.Context, ownerID id.UserID) ([]*models.Vehicle, error) {
	query := `SELECT ` + vehicleColumns + ` FROM vehicles WHERE owner_id = $1 AND active ORDER BY created_at DESC`
	rows, err := s.q(ctx).QueryContext(ctx, query, uuid.UUID(ownerID))
	if err != nil {
		return nil, fmt.Errorf("list vehicles: %w", err)
	}
	defer rows.Close()

	vehicles := make([]*models.Vehicle, 0)
	for rows.Next() {
		vehicle, err := scanVehicle(rows)
		if err != nil {
			return nil, fmt.Errorf("scan vehicle: %w", err)
		}
		vehicles = append(vehicles, vehicle)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate vehicles: %w", err)
	}
	return vehicles, nil
}

func (s *Postgres) Execute(ctx context.Context, vehicleID id.VehicleID, validate func(*models.Vehicle) error, mutate func(*models.Vehicle)) (*models.Vehicle, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin vehicle execute: %w", err)
	}
	defer func() {
		_ = dbTx.Rollback()
	}()

	query := `SELECT ` + vehicleColumns + ` FROM vehicles WHERE id = $1 FOR UPDATE`
	vehicle, err := scanVehicle(dbTx.QueryRowContext(ctx, query, uuid.UUID(vehicleID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("vehicle %s: %w", vehicleID, sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("lock vehicle: %w", err)
	}

	if err := validate(vehicle); err != nil {
		return nil, err
	}
	mutate(vehicle)

	update := `
		UPDATE vehicles
		SET make = $2, model = $3, year = $4, color = $5, fuel_type = $6,
			market_value = $7, active = $8, updated_at = $9
		WHERE id = $1
	`
	if _, err := dbTx.ExecContext(ctx, update,
		uuid.UUID(vehicle.ID), vehicle.Make, vehicle.Model, vehicle.Year,
		vehicle.Color, vehicle.FuelType, vehicle.MarketValue, vehicle.Active, vehicle.UpdatedAt,
	); err != nil {
		return nil, fmt.Errorf("write vehicle: %w", err)
	}
	if err := dbTx.Commit(); err != nil {
		return nil, fmt.Errorf("commit vehicle execute: %w", err)
	}
	return vehicle, nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanVehicle(row scannable) (*models.Vehicle, error) {
	var vehicle models.Vehicle
	var vehicleID, ownerID uuid.UUID
	var vehicleType string
	if err := row.Scan(&vehicleID, &ownerID, &vehicleType, &vehicle.Make, &vehicle.Model,
		&vehicle.Year, &vehicle.RegistrationNumber, &vehicle.ChassisNumber, &vehicle.EngineNumber,
		&vehicle.Color, &vehicle.FuelType, &vehicle.MarketValue, &vehicle.Active,
		&vehicle.CreatedAt, &vehicle.UpdatedAt); err != nil {
		return nil, err
	}
	vehicle.ID = id.VehicleID(vehicleID)
	vehicle.OwnerID = id.UserID(ownerID)
	vehicle.Type = models.VehicleType(vehicleType)
	return &vehicle, nil
}
