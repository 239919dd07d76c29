package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/Shivanand-hulikatti/parking-lot/internal/logging"
	"github.com/Shivanand-hulikatti/parking-lot/internal/model"
	"github.com/Shivanand-hulikatti/parking-lot/internal/repository"
)

// VehicleService registers and looks up vehicles.
type VehicleService struct {
	store repository.Store
	log   logging.Logger
}

// NewVehicleService constructs a VehicleService.
func NewVehicleService(store repository.Store, log logging.Logger) *VehicleService {
	return &VehicleService{store: store, log: log}
}

// Register stores a vehicle under its normalized plate.
func (s *VehicleService) Register(ctx context.Context, req model.RegisterVehicleRequest) (*model.Vehicle, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}
	plate := model.NormalizePlate(req.Plate)
	if plate == "" {
		return nil, fmt.Errorf("%w: plate is empty", model.ErrValidation)
	}
	v := &model.Vehicle{
		Plate:   plate,
		Class:   req.Class,
		Color:   strings.TrimSpace(req.Color),
		OwnerID: req.OwnerID,
	}
	if err := s.store.Repos().Vehicles.Create(ctx, v); err != nil {
		return nil, wrap("register vehicle", err)
	}
	s.log.Info(ctx, "vehicle registered", "vehicle_id", v.ID, "vehicle_class", v.Class)
	return v, nil
}

// Get returns a single vehicle.
func (s *VehicleService) Get(ctx context.Context, id int64) (*model.Vehicle, error) {
	v, err := s.store.Repos().Vehicles.GetByID(ctx, id)
	return v, wrap("get vehicle", err)
}

// FindByPlate looks a vehicle up by plate, in any spelling that normalizes
// to the stored one.
func (s *VehicleService) FindByPlate(ctx context.Context, plate string) (*model.Vehicle, error) {
	normalized := model.NormalizePlate(plate)
	if normalized == "" {
		return nil, fmt.Errorf("%w: plate is required", model.ErrValidation)
	}
	v, err := s.store.Repos().Vehicles.GetByPlate(ctx, normalized)
	return v, wrap("find vehicle", err)
}
