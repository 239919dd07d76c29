package service

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/Shivanand-hulikatti/parking-lot/internal/barcode"
	"github.com/Shivanand-hulikatti/parking-lot/internal/model"
)

func TestCheckIn_OpensOngoingTransaction(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	area := f.area(t, 2)
	car := f.vehicle(t, "b 1234-xyz", model.ClassCar)
	rule := f.tariff(t, area.ID, intervalCar())

	tr, err := f.parking.CheckIn(ctx, area.ID, car.ID, actor)
	require.NoError(t, err)

	assert.NotZero(t, tr.ID)
	assert.Equal(t, model.StatusOngoing, tr.Status)
	assert.Equal(t, rule.ID, tr.TariffID)
	assert.Equal(t, actor, tr.ActorID)
	assert.Equal(t, *f.clock, tr.EntryTime)
	assert.Len(t, tr.Token, barcode.TokenLength)
	assert.Nil(t, tr.ExitTime)
	assert.Nil(t, tr.TotalFee)

	n, err := f.parking.Occupancy(ctx, area.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, model.OccupancyUpdate{AreaID: area.ID, Occupied: 1, Capacity: 2, Available: 1}, f.feed.last())
}

func TestCheckIn_Rejections(t *testing.T) {
	ctx := context.Background()

	t.Run("requires an actor", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.parking.CheckIn(ctx, 1, 1, "")
		assert.ErrorIs(t, err, model.ErrValidation)
	})

	t.Run("unknown vehicle", func(t *testing.T) {
		f := newFixture(t)
		area := f.area(t, 1)
		_, err := f.parking.CheckIn(ctx, area.ID, 99, actor)
		assert.ErrorIs(t, err, model.ErrVehicleNotFound)
	})

	t.Run("unknown area", func(t *testing.T) {
		f := newFixture(t)
		car := f.vehicle(t, "A1", model.ClassCar)
		_, err := f.parking.CheckIn(ctx, 99, car.ID, actor)
		assert.ErrorIs(t, err, model.ErrAreaNotFound)
	})

	t.Run("already parked in another area", func(t *testing.T) {
		f := newFixture(t)
		a1, a2 := f.area(t, 5), f.area(t, 5)
		f.tariff(t, a1.ID, intervalCar())
		f.tariff(t, a2.ID, intervalCar())
		car := f.vehicle(t, "A1", model.ClassCar)

		_, err := f.parking.CheckIn(ctx, a1.ID, car.ID, actor)
		require.NoError(t, err)
		_, err = f.parking.CheckIn(ctx, a2.ID, car.ID, actor)
		assert.ErrorIs(t, err, model.ErrVehicleAlreadyParked)
	})

	t.Run("full area", func(t *testing.T) {
		f := newFixture(t)
		area := f.area(t, 1)
		f.tariff(t, area.ID, intervalCar())
		_, err := f.parking.CheckIn(ctx, area.ID, f.vehicle(t, "A1", model.ClassCar).ID, actor)
		require.NoError(t, err)

		_, err = f.parking.CheckIn(ctx, area.ID, f.vehicle(t, "A2", model.ClassCar).ID, actor)
		assert.ErrorIs(t, err, model.ErrAreaFull)
	})

	t.Run("zero capacity is always full", func(t *testing.T) {
		f := newFixture(t)
		area := f.area(t, 0)
		f.tariff(t, area.ID, intervalCar())
		_, err := f.parking.CheckIn(ctx, area.ID, f.vehicle(t, "A1", model.ClassCar).ID, actor)
		assert.ErrorIs(t, err, model.ErrAreaFull)
	})

	t.Run("inactive area", func(t *testing.T) {
		f := newFixture(t)
		inactive := false
		area, err := f.areas.Create(ctx, model.CreateAreaRequest{Name: "Closed", Capacity: 3, Active: &inactive})
		require.NoError(t, err)
		f.tariff(t, area.ID, intervalCar())

		_, err = f.parking.CheckIn(ctx, area.ID, f.vehicle(t, "A1", model.ClassCar).ID, actor)
		assert.ErrorIs(t, err, model.ErrAreaInactive)
	})

	t.Run("full wins over inactive", func(t *testing.T) {
		f := newFixture(t)
		inactive := false
		area, err := f.areas.Create(ctx, model.CreateAreaRequest{Name: "Closed", Capacity: 0, Active: &inactive})
		require.NoError(t, err)

		_, err = f.parking.CheckIn(ctx, area.ID, f.vehicle(t, "A1", model.ClassCar).ID, actor)
		assert.ErrorIs(t, err, model.ErrAreaFull)
	})

	t.Run("no tariff for class", func(t *testing.T) {
		f := newFixture(t)
		area := f.area(t, 3)
		f.tariff(t, area.ID, intervalCar())
		bike := f.vehicle(t, "M1", model.ClassMotorcycle)

		_, err := f.parking.CheckIn(ctx, area.ID, bike.ID, actor)
		assert.ErrorIs(t, err, model.ErrNoTariffFound)
	})

	t.Run("no tariff for time of day", func(t *testing.T) {
		f := newFixture(t)
		area := f.area(t, 3)
		night := intervalCar()
		night.ValidFrom, night.ValidTo = tod("20:00"), tod("06:00")
		f.tariff(t, area.ID, night)

		_, err := f.parking.CheckIn(ctx, area.ID, f.vehicle(t, "A1", model.ClassCar).ID, actor)
		assert.ErrorIs(t, err, model.ErrNoTariffFound)
	})
}

func TestCheckIn_NoPartialWriteOnFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	area := f.area(t, 2)
	f.tariff(t, area.ID, intervalCar())
	car := f.vehicle(t, "A1", model.ClassCar)

	f.parking.newToken = func() (string, error) { return "", errors.New("entropy exhausted") }
	_, err := f.parking.CheckIn(ctx, area.ID, car.ID, actor)
	require.Error(t, err)

	n, err := f.parking.Occupancy(ctx, area.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, f.feed.updates)
}

func TestCheckIn_SelectsRuleByLocalTimeOfDay(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.parking.loc = time.FixedZone("UTC+7", 7*60*60)
	area := f.area(t, 5)

	day := intervalCar()
	day.ValidFrom, day.ValidTo = tod("08:00"), tod("20:00")
	dayRule := f.tariff(t, area.ID, day)
	night := model.CreateTariffRequest{VehicleClass: model.ClassCar, RuleType: model.RuleFlat, BasePrice: 10000,
		ValidFrom: tod("20:00"), ValidTo: tod("08:00")}
	nightRule := f.tariff(t, area.ID, night)

	// 09:00 UTC is 16:00 local.
	tr, err := f.parking.CheckIn(ctx, area.ID, f.vehicle(t, "A1", model.ClassCar).ID, actor)
	require.NoError(t, err)
	assert.Equal(t, dayRule.ID, tr.TariffID)

	f.advance(5 * time.Hour) // 21:00 local
	tr, err = f.parking.CheckIn(ctx, area.ID, f.vehicle(t, "A2", model.ClassCar).ID, actor)
	require.NoError(t, err)
	assert.Equal(t, nightRule.ID, tr.TariffID)
}

func TestCheckOut_PricesStay(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	area := f.area(t, 2)
	f.tariff(t, area.ID, intervalCar())
	car := f.vehicle(t, "A1", model.ClassCar)

	tr, err := f.parking.CheckIn(ctx, area.ID, car.ID, actor)
	require.NoError(t, err)

	f.advance(125*time.Minute + 40*time.Second)
	done, err := f.parking.CheckOut(ctx, tr.ID)
	require.NoError(t, err)

	assert.Equal(t, model.StatusCompleted, done.Status)
	require.NotNil(t, done.ExitTime)
	assert.Equal(t, *f.clock, *done.ExitTime)
	assert.Equal(t, int64(125), *done.DurationMinutes)
	assert.Equal(t, int64(11000), *done.TotalFee)
	assert.Equal(t, model.OccupancyUpdate{AreaID: area.ID, Occupied: 0, Capacity: 2, Available: 2}, f.feed.last())

	_, err = f.parking.CheckOut(ctx, tr.ID)
	assert.ErrorIs(t, err, model.ErrAlreadyCompleted)

	stored, err := f.parking.GetTransaction(ctx, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(11000), *stored.TotalFee)
}

func TestCheckOut_ZeroMinuteStayBillsFirstBlock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	area := f.area(t, 1)
	f.tariff(t, area.ID, intervalCar())

	tr, err := f.parking.CheckIn(ctx, area.ID, f.vehicle(t, "A1", model.ClassCar).ID, actor)
	require.NoError(t, err)
	done, err := f.parking.CheckOut(ctx, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), *done.DurationMinutes)
	assert.Equal(t, int64(5000), *done.TotalFee)
}

func TestCheckOut_UsesRuleResolvedAtCheckIn(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	area := f.area(t, 1)
	old := f.tariff(t, area.ID, intervalCar())

	tr, err := f.parking.CheckIn(ctx, area.ID, f.vehicle(t, "A1", model.ClassCar).ID, actor)
	require.NoError(t, err)

	_, err = f.tariffs.SetActive(ctx, old.ID, false)
	require.NoError(t, err)
	f.tariff(t, area.ID, model.CreateTariffRequest{VehicleClass: model.ClassCar, RuleType: model.RuleFlat, BasePrice: 1})

	f.advance(61 * time.Minute)
	done, err := f.parking.CheckOut(ctx, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(8000), *done.TotalFee)
}

func TestCheckOut_UnknownTransaction(t *testing.T) {
	f := newFixture(t)
	_, err := f.parking.CheckOut(context.Background(), 404)
	assert.ErrorIs(t, err, model.ErrTransactionNotFound)
}

func TestCheckOutByToken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	area := f.area(t, 3)
	f.tariff(t, area.ID, intervalCar())

	tr, err := f.parking.CheckIn(ctx, area.ID, f.vehicle(t, "A1", model.ClassCar).ID, actor)
	require.NoError(t, err)
	code, err := f.parking.Barcode(ctx, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, barcode.Format(tr.ID, tr.Token), code.Payload)

	t.Run("wrong token", func(t *testing.T) {
		forged := barcode.Format(tr.ID, "00000000000000000000000000000000")
		_, err := f.parking.CheckOutByToken(ctx, forged)
		assert.ErrorIs(t, err, model.ErrInvalidBarcode)
	})

	t.Run("malformed payload", func(t *testing.T) {
		_, err := f.parking.CheckOutByToken(ctx, "hello")
		assert.ErrorIs(t, err, model.ErrInvalidBarcode)
	})

	t.Run("unknown transaction", func(t *testing.T) {
		_, err := f.parking.CheckOutByToken(ctx, barcode.Format(tr.ID+100, tr.Token))
		assert.ErrorIs(t, err, model.ErrTransactionNotFound)
	})

	t.Run("round trip", func(t *testing.T) {
		done, err := f.parking.CheckOutByToken(ctx, code.Payload)
		require.NoError(t, err)
		assert.Equal(t, tr.ID, done.ID)
		assert.Equal(t, model.StatusCompleted, done.Status)

		_, err = f.parking.CheckOutByToken(ctx, code.Payload)
		assert.ErrorIs(t, err, model.ErrAlreadyCompleted)
	})
}

func TestConcurrentCheckIns_NeverExceedCapacity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	const capacity, contenders = 3, 25
	area := f.area(t, capacity)
	f.tariff(t, area.ID, intervalCar())

	ids := make([]int64, contenders)
	for i := range ids {
		ids[i] = f.vehicle(t, fmt.Sprintf("C%03d", i), model.ClassCar).ID
	}

	var admitted, full atomic.Int32
	var g errgroup.Group
	for _, id := range ids {
		id := id
		g.Go(func() error {
			_, err := f.parking.CheckIn(ctx, area.ID, id, actor)
			switch {
			case err == nil:
				admitted.Add(1)
			case errors.Is(err, model.ErrAreaFull):
				full.Add(1)
			default:
				return err
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	assert.Equal(t, int32(capacity), admitted.Load())
	assert.Equal(t, int32(contenders-capacity), full.Load())
	n, err := f.parking.Occupancy(ctx, area.ID)
	require.NoError(t, err)
	assert.Equal(t, capacity, n)
}

func TestConcurrentCheckIns_NoDoubleParkingAcrossAreas(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	car := f.vehicle(t, "A1", model.ClassCar)

	areas := make([]int64, 10)
	for i := range areas {
		a := f.area(t, 5)
		f.tariff(t, a.ID, intervalCar())
		areas[i] = a.ID
	}

	var admitted, parked atomic.Int32
	var g errgroup.Group
	for _, areaID := range areas {
		areaID := areaID
		g.Go(func() error {
			_, err := f.parking.CheckIn(ctx, areaID, car.ID, actor)
			switch {
			case err == nil:
				admitted.Add(1)
			case errors.Is(err, model.ErrVehicleAlreadyParked):
				parked.Add(1)
			default:
				return err
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	assert.Equal(t, int32(1), admitted.Load())
	assert.Equal(t, int32(len(areas)-1), parked.Load())
}

func TestConcurrentCheckOuts_ExactlyOneWins(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	area := f.area(t, 1)
	f.tariff(t, area.ID, intervalCar())
	tr, err := f.parking.CheckIn(ctx, area.ID, f.vehicle(t, "A1", model.ClassCar).ID, actor)
	require.NoError(t, err)

	var won, lost atomic.Int32
	var g errgroup.Group
	for i := 0; i < 8; i++ {
		g.Go(func() error {
			_, err := f.parking.CheckOut(ctx, tr.ID)
			switch {
			case err == nil:
				won.Add(1)
			case errors.Is(err, model.ErrAlreadyCompleted):
				lost.Add(1)
			default:
				return err
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	assert.Equal(t, int32(1), won.Load())
	assert.Equal(t, int32(7), lost.Load())
}

func TestAreaStatusAndListing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	area := f.area(t, 3)
	f.tariff(t, area.ID, intervalCar())

	first, err := f.parking.CheckIn(ctx, area.ID, f.vehicle(t, "A1", model.ClassCar).ID, actor)
	require.NoError(t, err)
	f.advance(time.Minute)
	_, err = f.parking.CheckIn(ctx, area.ID, f.vehicle(t, "A2", model.ClassCar).ID, actor)
	require.NoError(t, err)
	_, err = f.parking.CheckOut(ctx, first.ID)
	require.NoError(t, err)

	status, err := f.parking.AreaStatus(ctx, area.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, status.Occupied)
	assert.Equal(t, 2, status.Available)

	ongoing, err := f.parking.ListTransactions(ctx, area.ID, model.StatusOngoing)
	require.NoError(t, err)
	assert.Len(t, ongoing, 1)
	all, err := f.parking.ListTransactions(ctx, area.ID, "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, first.ID, all[1].ID, "newest first")

	_, err = f.parking.ListTransactions(ctx, area.ID, "parked")
	assert.ErrorIs(t, err, model.ErrValidation)
	_, err = f.parking.ListTransactions(ctx, 99, "")
	assert.ErrorIs(t, err, model.ErrAreaNotFound)
	_, err = f.parking.AreaStatus(ctx, 99)
	assert.ErrorIs(t, err, model.ErrAreaNotFound)
}

func TestDeleteTransaction(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	area := f.area(t, 1)
	f.tariff(t, area.ID, intervalCar())
	tr, err := f.parking.CheckIn(ctx, area.ID, f.vehicle(t, "A1", model.ClassCar).ID, actor)
	require.NoError(t, err)

	require.NoError(t, f.parking.DeleteTransaction(ctx, tr.ID))
	assert.ErrorIs(t, f.parking.DeleteTransaction(ctx, tr.ID), model.ErrTransactionNotFound)

	_, err = f.parking.Barcode(ctx, tr.ID)
	assert.ErrorIs(t, err, model.ErrTransactionNotFound)
	n, err := f.parking.Occupancy(ctx, area.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
}
