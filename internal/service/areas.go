package service

import (
	"context"
	"strings"

	"github.com/Shivanand-hulikatti/parking-lot/internal/logging"
	"github.com/Shivanand-hulikatti/parking-lot/internal/model"
	"github.com/Shivanand-hulikatti/parking-lot/internal/repository"
)

// AreaService manages parking areas.
type AreaService struct {
	store repository.Store
	log   logging.Logger
}

// NewAreaService constructs an AreaService.
func NewAreaService(store repository.Store, log logging.Logger) *AreaService {
	return &AreaService{store: store, log: log}
}

// Create validates the request and stores a new area. Areas are active
// unless the request says otherwise.
func (s *AreaService) Create(ctx context.Context, req model.CreateAreaRequest) (*model.ParkingArea, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := Validate(req); err != nil {
		return nil, err
	}
	area := &model.ParkingArea{
		Name:            req.Name,
		Location:        strings.TrimSpace(req.Location),
		Capacity:        req.Capacity,
		DefaultRuleType: req.DefaultRuleType,
		Active:          true,
	}
	if req.Active != nil {
		area.Active = *req.Active
	}
	if err := s.store.Repos().Areas.Create(ctx, area); err != nil {
		return nil, wrap("create area", err)
	}
	s.log.Info(ctx, "area created", "area_id", area.ID, "capacity", area.Capacity)
	return area, nil
}

// Get returns a single area.
func (s *AreaService) Get(ctx context.Context, id int64) (*model.ParkingArea, error) {
	area, err := s.store.Repos().Areas.GetByID(ctx, id)
	return area, wrap("get area", err)
}

// List returns all areas.
func (s *AreaService) List(ctx context.Context) ([]model.ParkingArea, error) {
	areas, err := s.store.Repos().Areas.List(ctx)
	return areas, wrap("list areas", err)
}

// Update replaces the editable fields of an area. Lowering the capacity below
// the current occupancy is allowed; new check-ins are refused until enough
// vehicles leave.
func (s *AreaService) Update(ctx context.Context, id int64, req model.UpdateAreaRequest) (*model.ParkingArea, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := Validate(req); err != nil {
		return nil, err
	}
	var area *model.ParkingArea
	err := s.store.WithTx(ctx, func(ctx context.Context, r repository.Repos) error {
		var err error
		area, err = r.Areas.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		area.Name = req.Name
		area.Location = strings.TrimSpace(req.Location)
		area.Capacity = req.Capacity
		area.DefaultRuleType = req.DefaultRuleType
		area.Active = req.Active
		return r.Areas.Update(ctx, area)
	})
	if err != nil {
		return nil, wrap("update area", err)
	}
	s.log.Info(ctx, "area updated", "area_id", id, "capacity", area.Capacity, "active", area.Active)
	return area, nil
}
