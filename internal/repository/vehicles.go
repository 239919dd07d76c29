package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Shivanand-hulikatti/parking-lot/internal/dbx"
	"github.com/Shivanand-hulikatti/parking-lot/internal/model"
)

const vehicleColumns = `id, plate, vehicle_class, color, owner_id, created_at`

// VehicleRepo is the PostgreSQL VehicleRepository.
type VehicleRepo struct {
	db dbx.DBTX
}

// NewVehicleRepo constructs a VehicleRepo.
func NewVehicleRepo(db dbx.DBTX) *VehicleRepo {
	return &VehicleRepo{db: db}
}

// Create inserts the vehicle. A plate that is already registered yields
// ErrDuplicatePlate.
func (r *VehicleRepo) Create(ctx context.Context, v *model.Vehicle) error {
	var owner sql.NullString
	if v.OwnerID != nil {
		owner = sql.NullString{String: *v.OwnerID, Valid: true}
	}
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO vehicles (plate, vehicle_class, color, owner_id)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		v.Plate, string(v.Class), v.Color, owner,
	).Scan(&v.ID, &v.CreatedAt)
	if err != nil {
		if c, ok := uniqueViolation(err); ok && c == constraintPlate {
			return model.ErrDuplicatePlate
		}
		return fmt.Errorf("insert vehicle: %w", err)
	}
	return nil
}

// GetByID returns a single vehicle or ErrVehicleNotFound.
func (r *VehicleRepo) GetByID(ctx context.Context, id int64) (*model.Vehicle, error) {
	return r.get(ctx, `SELECT `+vehicleColumns+` FROM vehicles WHERE id = $1`, id)
}

// GetForUpdate locks the vehicle row. CheckIn takes this lock before the area
// lock so that two check-ins of one vehicle into different areas serialise.
func (r *VehicleRepo) GetForUpdate(ctx context.Context, id int64) (*model.Vehicle, error) {
	return r.get(ctx, `SELECT `+vehicleColumns+` FROM vehicles WHERE id = $1 FOR UPDATE`, id)
}

// GetByPlate looks a vehicle up by its normalized plate.
func (r *VehicleRepo) GetByPlate(ctx context.Context, plate string) (*model.Vehicle, error) {
	return r.get(ctx, `SELECT `+vehicleColumns+` FROM vehicles WHERE plate = $1`, plate)
}

func (r *VehicleRepo) get(ctx context.Context, query string, arg any) (*model.Vehicle, error) {
	var (
		v     model.Vehicle
		class string
		owner sql.NullString
	)
	err := r.db.QueryRowContext(ctx, query, arg).
		Scan(&v.ID, &v.Plate, &class, &v.Color, &owner, &v.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrVehicleNotFound
		}
		return nil, fmt.Errorf("get vehicle: %w", err)
	}
	v.Class = model.VehicleClass(class)
	if owner.Valid {
		v.OwnerID = &owner.String
	}
	return &v, nil
}
