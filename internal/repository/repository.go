// Package repository implements persistence for the parking system. The
// PostgreSQL repositories use plain SQL (no ORM) over a dbx.DBTX so the same
// code runs against the pool or inside a transaction.
package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Shivanand-hulikatti/parking-lot/internal/model"
)

// AreaRepository persists parking areas.
type AreaRepository interface {
	Create(ctx context.Context, area *model.ParkingArea) error
	GetByID(ctx context.Context, id int64) (*model.ParkingArea, error)
	// GetForUpdate loads the area and, inside a transaction, holds its row
	// lock until commit. CheckIn and tariff creation serialise on it.
	GetForUpdate(ctx context.Context, id int64) (*model.ParkingArea, error)
	List(ctx context.Context) ([]model.ParkingArea, error)
	Update(ctx context.Context, area *model.ParkingArea) error
}

// VehicleRepository persists vehicles.
type VehicleRepository interface {
	Create(ctx context.Context, v *model.Vehicle) error
	GetByID(ctx context.Context, id int64) (*model.Vehicle, error)
	GetForUpdate(ctx context.Context, id int64) (*model.Vehicle, error)
	GetByPlate(ctx context.Context, plate string) (*model.Vehicle, error)
}

// TariffRepository persists the tariff catalog.
type TariffRepository interface {
	Create(ctx context.Context, rule *model.TariffRule) error
	GetByID(ctx context.Context, id int64) (*model.TariffRule, error)
	ListByArea(ctx context.Context, areaID int64) ([]model.TariffRule, error)
	ListActive(ctx context.Context, areaID int64, class model.VehicleClass) ([]model.TariffRule, error)
	SetActive(ctx context.Context, id int64, active bool) error
}

// TransactionRepository persists parking transactions.
type TransactionRepository interface {
	Create(ctx context.Context, tr *model.Transaction) error
	GetByID(ctx context.Context, id int64) (*model.Transaction, error)
	HasOngoing(ctx context.Context, vehicleID int64) (bool, error)
	// CountOngoing is the live occupancy of an area.
	CountOngoing(ctx context.Context, areaID int64) (int, error)
	// Complete moves an ongoing transaction to completed. It returns
	// ErrAlreadyCompleted when the row is no longer ongoing.
	Complete(ctx context.Context, tr *model.Transaction) error
	List(ctx context.Context, areaID int64, status model.Status) ([]model.Transaction, error)
	Delete(ctx context.Context, id int64) error
}

// Repos bundles repositories bound to the same handle.
type Repos struct {
	Areas        AreaRepository
	Vehicles     VehicleRepository
	Tariffs      TariffRepository
	Transactions TransactionRepository
}

// Store hands out repositories, either directly or bound to a transaction
// that commits only if fn succeeds.
type Store interface {
	Repos() Repos
	WithTx(ctx context.Context, fn func(ctx context.Context, r Repos) error) error
}

const pgUniqueViolation = "23505"

// Names of the unique constraints that carry domain meaning.
const (
	constraintPlate          = "vehicles_plate_key"
	constraintActiveTariff   = "tariff_rules_active_tuple_key"
	constraintVehicleOngoing = "transactions_vehicle_ongoing_key"
)

// uniqueViolation reports the constraint behind a PostgreSQL unique violation.
func uniqueViolation(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return pgErr.ConstraintName, true
	}
	return "", false
}
