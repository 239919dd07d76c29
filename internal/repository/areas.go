package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Shivanand-hulikatti/parking-lot/internal/dbx"
	"github.com/Shivanand-hulikatti/parking-lot/internal/model"
)

const areaColumns = `id, name, location, capacity, default_rule_type, active, created_at`

// AreaRepo is the PostgreSQL AreaRepository.
type AreaRepo struct {
	db dbx.DBTX
}

// NewAreaRepo constructs an AreaRepo.
func NewAreaRepo(db dbx.DBTX) *AreaRepo {
	return &AreaRepo{db: db}
}

// Create inserts the area and fills in its generated id and creation time.
func (r *AreaRepo) Create(ctx context.Context, area *model.ParkingArea) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO parking_areas (name, location, capacity, default_rule_type, active)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at`,
		area.Name, area.Location, area.Capacity, string(area.DefaultRuleType), area.Active,
	).Scan(&area.ID, &area.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert area: %w", err)
	}
	return nil
}

// GetByID returns a single area or ErrAreaNotFound.
func (r *AreaRepo) GetByID(ctx context.Context, id int64) (*model.ParkingArea, error) {
	return r.get(ctx, `SELECT `+areaColumns+` FROM parking_areas WHERE id = $1`, id)
}

// GetForUpdate acquires an exclusive row-level lock on the area. Every other
// transaction issuing the same SELECT ... FOR UPDATE blocks until this one
// commits or rolls back, so the occupancy count read afterwards cannot go
// stale before the insert that depends on it.
func (r *AreaRepo) GetForUpdate(ctx context.Context, id int64) (*model.ParkingArea, error) {
	return r.get(ctx, `SELECT `+areaColumns+` FROM parking_areas WHERE id = $1 FOR UPDATE`, id)
}

func (r *AreaRepo) get(ctx context.Context, query string, id int64) (*model.ParkingArea, error) {
	a, err := scanArea(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrAreaNotFound
		}
		return nil, fmt.Errorf("get area: %w", err)
	}
	return a, nil
}

// List returns all areas ordered by id.
func (r *AreaRepo) List(ctx context.Context) ([]model.ParkingArea, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+areaColumns+` FROM parking_areas ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list areas: %w", err)
	}
	defer rows.Close()

	areas := []model.ParkingArea{}
	for rows.Next() {
		a, err := scanArea(rows)
		if err != nil {
			return nil, fmt.Errorf("scan area: %w", err)
		}
		areas = append(areas, *a)
	}
	return areas, rows.Err()
}

// Update writes the editable fields of an area.
func (r *AreaRepo) Update(ctx context.Context, area *model.ParkingArea) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE parking_areas
		 SET name = $2, location = $3, capacity = $4, default_rule_type = $5, active = $6
		 WHERE id = $1`,
		area.ID, area.Name, area.Location, area.Capacity, string(area.DefaultRuleType), area.Active,
	)
	if err != nil {
		return fmt.Errorf("update area: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update area: %w", err)
	}
	if n == 0 {
		return model.ErrAreaNotFound
	}
	return nil
}

func scanArea(s scanner) (*model.ParkingArea, error) {
	var (
		a        model.ParkingArea
		ruleType string
	)
	if err := s.Scan(&a.ID, &a.Name, &a.Location, &a.Capacity, &ruleType, &a.Active, &a.CreatedAt); err != nil {
		return nil, err
	}
	a.DefaultRuleType = model.RuleType(ruleType)
	return &a, nil
}
