package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Shivanand-hulikatti/parking-lot/internal/logging"
	"github.com/Shivanand-hulikatti/parking-lot/internal/model"
	"github.com/Shivanand-hulikatti/parking-lot/internal/repository/memory"
)

const actor = "6f1c1b7e-8a51-4c7a-9a6e-0c4f3f2d9b10"

type recorder struct {
	mu      sync.Mutex
	updates []model.OccupancyUpdate
}

func (r *recorder) Publish(u model.OccupancyUpdate) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updates = append(r.updates, u)
}

func (r *recorder) last() model.OccupancyUpdate {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.updates[len(r.updates)-1]
}

type fixture struct {
	store    *memory.Store
	parking  *ParkingService
	tariffs  *TariffService
	areas    *AreaService
	vehicles *VehicleService
	feed     *recorder
	clock    *time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	log := logging.Nop()
	feed := &recorder{}
	clock := time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)

	f := &fixture{
		store:    store,
		parking:  NewParkingService(store, time.UTC, feed, log),
		tariffs:  NewTariffService(store, log),
		areas:    NewAreaService(store, log),
		vehicles: NewVehicleService(store, log),
		feed:     feed,
		clock:    &clock,
	}
	f.parking.now = func() time.Time { return *f.clock }
	return f
}

func (f *fixture) advance(d time.Duration) {
	*f.clock = f.clock.Add(d)
}

func (f *fixture) area(t *testing.T, capacity int) *model.ParkingArea {
	t.Helper()
	a, err := f.areas.Create(context.Background(), model.CreateAreaRequest{Name: "Area", Capacity: capacity})
	require.NoError(t, err)
	return a
}

func (f *fixture) vehicle(t *testing.T, plate string, class model.VehicleClass) *model.Vehicle {
	t.Helper()
	v, err := f.vehicles.Register(context.Background(), model.RegisterVehicleRequest{Plate: plate, Class: class})
	require.NoError(t, err)
	return v
}

func (f *fixture) tariff(t *testing.T, areaID int64, req model.CreateTariffRequest) *model.TariffRule {
	t.Helper()
	rule, err := f.tariffs.Create(context.Background(), areaID, req)
	require.NoError(t, err)
	return rule
}

func i64(v int64) *int64 { return &v }

func tod(s string) *model.TimeOfDay {
	t := model.MustTimeOfDay(s)
	return &t
}

// intervalCar is 5000 for the first hour and 3000 for every hour after.
func intervalCar() model.CreateTariffRequest {
	return model.CreateTariffRequest{
		VehicleClass:      model.ClassCar,
		RuleType:          model.RuleInterval,
		BasePrice:         5000,
		ContinuationPrice: i64(3000),
		IntervalMinutes:   i64(60),
	}
}
