package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Shivanand-hulikatti/parking-lot/internal/barcode"
	"github.com/Shivanand-hulikatti/parking-lot/internal/logging"
	"github.com/Shivanand-hulikatti/parking-lot/internal/model"
	"github.com/Shivanand-hulikatti/parking-lot/internal/repository"
	"github.com/Shivanand-hulikatti/parking-lot/internal/tariff"
)

// ParkingService runs the transaction lifecycle: check-in, check-out and the
// capacity view derived from ongoing transactions.
type ParkingService struct {
	store    repository.Store
	loc      *time.Location
	notifier Notifier
	log      logging.Logger

	now      func() time.Time
	newToken func() (string, error)
}

// NewParkingService constructs a ParkingService. loc is the zone tariff
// windows are evaluated in; notifier may be nil.
func NewParkingService(store repository.Store, loc *time.Location, notifier Notifier, log logging.Logger) *ParkingService {
	if loc == nil {
		loc = time.UTC
	}
	return &ParkingService{
		store:    store,
		loc:      loc,
		notifier: notifier,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
		newToken: barcode.NewToken,
	}
}

// CheckIn admits a vehicle into an area and opens an ongoing transaction.
//
// Everything happens in one database transaction. The vehicle row is locked
// first and the area row second, always in that order: the vehicle lock
// serialises two check-ins of the same vehicle into different areas, the area
// lock serialises check-ins competing for the last free slot. Without them two
// callers could both read a free slot (or no ongoing stay) and both insert.
//
// The checks run in a fixed order, so a full and inactive area reports
// ErrAreaFull.
func (s *ParkingService) CheckIn(ctx context.Context, areaID, vehicleID int64, actorID string) (*model.Transaction, error) {
	if actorID == "" {
		return nil, fmt.Errorf("%w: actor id is required", model.ErrValidation)
	}

	var (
		tr       model.Transaction
		capacity int
		occupied int
	)
	err := s.store.WithTx(ctx, func(ctx context.Context, r repository.Repos) error {
		vehicle, err := r.Vehicles.GetForUpdate(ctx, vehicleID)
		if err != nil {
			return err
		}
		area, err := r.Areas.GetForUpdate(ctx, areaID)
		if err != nil {
			return err
		}

		parked, err := r.Transactions.HasOngoing(ctx, vehicle.ID)
		if err != nil {
			return err
		}
		if parked {
			return model.ErrVehicleAlreadyParked
		}

		occupied, err = r.Transactions.CountOngoing(ctx, area.ID)
		if err != nil {
			return err
		}
		if occupied >= area.Capacity {
			return model.ErrAreaFull
		}
		if !area.Active {
			return model.ErrAreaInactive
		}

		now := s.now()
		rules, err := r.Tariffs.ListActive(ctx, area.ID, vehicle.Class)
		if err != nil {
			return err
		}
		rule, err := tariff.Select(rules, area.ID, vehicle.Class, now, s.loc)
		if err != nil {
			return err
		}

		token, err := s.newToken()
		if err != nil {
			return fmt.Errorf("generate token: %w", err)
		}

		tr = model.Transaction{
			VehicleID: vehicle.ID,
			AreaID:    area.ID,
			TariffID:  rule.ID,
			ActorID:   actorID,
			EntryTime: now,
			Status:    model.StatusOngoing,
			Token:     token,
		}
		if err := r.Transactions.Create(ctx, &tr); err != nil {
			return err
		}
		capacity = area.Capacity
		occupied++
		return nil
	})
	if err != nil {
		s.logRejection(ctx, "check-in rejected", err, "area_id", areaID, "vehicle_id", vehicleID)
		return nil, wrap("check in", err)
	}

	s.log.Info(ctx, "vehicle checked in",
		"transaction_id", tr.ID, "area_id", tr.AreaID, "vehicle_id", tr.VehicleID,
		"tariff_id", tr.TariffID, "actor_id", actorID)
	s.publish(tr.AreaID, occupied, capacity)
	return &tr, nil
}

// CheckOut closes an ongoing transaction and prices it with the rule resolved
// at check-in. Of two concurrent check-outs exactly one wins; the other gets
// ErrAlreadyCompleted.
func (s *ParkingService) CheckOut(ctx context.Context, transactionID int64) (*model.Transaction, error) {
	var (
		tr       *model.Transaction
		capacity int
		occupied int
	)
	err := s.store.WithTx(ctx, func(ctx context.Context, r repository.Repos) error {
		var err error
		tr, err = r.Transactions.GetByID(ctx, transactionID)
		if err != nil {
			return err
		}
		if !tr.IsOngoing() {
			return model.ErrAlreadyCompleted
		}
		rule, err := r.Tariffs.GetByID(ctx, tr.TariffID)
		if err != nil {
			return fmt.Errorf("load tariff %d: %w", tr.TariffID, err)
		}

		exit := s.now()
		minutes := tariff.DurationMinutes(tr.EntryTime, exit)
		fee := tariff.Fee(*rule, minutes)
		tr.ExitTime = &exit
		tr.DurationMinutes = &minutes
		tr.TotalFee = &fee
		tr.Status = model.StatusCompleted

		// The update only matches while the row is still ongoing.
		if err := r.Transactions.Complete(ctx, tr); err != nil {
			return err
		}

		area, err := r.Areas.GetByID(ctx, tr.AreaID)
		if err != nil {
			return err
		}
		capacity = area.Capacity
		occupied, err = r.Transactions.CountOngoing(ctx, area.ID)
		return err
	})
	if err != nil {
		s.logRejection(ctx, "check-out rejected", err, "transaction_id", transactionID)
		return nil, wrap("check out", err)
	}

	s.log.Info(ctx, "vehicle checked out",
		"transaction_id", tr.ID, "area_id", tr.AreaID,
		"duration_minutes", *tr.DurationMinutes, "total_fee", *tr.TotalFee)
	s.publish(tr.AreaID, occupied, capacity)
	return tr, nil
}

// CheckOutByToken checks out the transaction a scanned receipt points to.
// A payload whose token does not match the stored one is rejected as
// ErrInvalidBarcode.
func (s *ParkingService) CheckOutByToken(ctx context.Context, payload string) (*model.Transaction, error) {
	id, token, err := barcode.Parse(payload)
	if err != nil {
		return nil, err
	}
	tr, err := s.store.Repos().Transactions.GetByID(ctx, id)
	if err != nil {
		return nil, wrap("check out by token", err)
	}
	if !barcode.TokenMatches(tr.Token, token) {
		s.log.Warn(ctx, "barcode token mismatch", "transaction_id", id)
		return nil, fmt.Errorf("%w: token mismatch", model.ErrInvalidBarcode)
	}
	return s.CheckOut(ctx, id)
}

// Occupancy counts the ongoing transactions of an area.
func (s *ParkingService) Occupancy(ctx context.Context, areaID int64) (int, error) {
	n, err := s.store.Repos().Transactions.CountOngoing(ctx, areaID)
	if err != nil {
		return 0, wrap("occupancy", err)
	}
	return n, nil
}

// AreaStatus returns the area with its current occupancy.
func (s *ParkingService) AreaStatus(ctx context.Context, areaID int64) (*model.AreaStatus, error) {
	area, err := s.store.Repos().Areas.GetByID(ctx, areaID)
	if err != nil {
		return nil, wrap("area status", err)
	}
	n, err := s.Occupancy(ctx, areaID)
	if err != nil {
		return nil, err
	}
	status := model.NewAreaStatus(*area, n)
	return &status, nil
}

// GetTransaction returns a single transaction.
func (s *ParkingService) GetTransaction(ctx context.Context, id int64) (*model.Transaction, error) {
	tr, err := s.store.Repos().Transactions.GetByID(ctx, id)
	return tr, wrap("get transaction", err)
}

// ListTransactions returns the transactions of an area, optionally filtered
// by status.
func (s *ParkingService) ListTransactions(ctx context.Context, areaID int64, status model.Status) ([]model.Transaction, error) {
	if status != "" && status != model.StatusOngoing && status != model.StatusCompleted {
		return nil, fmt.Errorf("%w: unknown status %q", model.ErrValidation, status)
	}
	r := s.store.Repos()
	if _, err := r.Areas.GetByID(ctx, areaID); err != nil {
		return nil, wrap("list transactions", err)
	}
	list, err := r.Transactions.List(ctx, areaID, status)
	return list, wrap("list transactions", err)
}

// DeleteTransaction removes a transaction record. It is an administrative
// correction and does not touch any other record.
func (s *ParkingService) DeleteTransaction(ctx context.Context, id int64) error {
	if err := s.store.Repos().Transactions.Delete(ctx, id); err != nil {
		return wrap("delete transaction", err)
	}
	s.log.Warn(ctx, "transaction deleted", "transaction_id", id)
	return nil
}

// Barcode returns the receipt payload for a transaction.
func (s *ParkingService) Barcode(ctx context.Context, id int64) (*model.BarcodeResponse, error) {
	tr, err := s.store.Repos().Transactions.GetByID(ctx, id)
	if err != nil {
		return nil, wrap("barcode", err)
	}
	return &model.BarcodeResponse{TransactionID: tr.ID, Payload: barcode.Format(tr.ID, tr.Token)}, nil
}

func (s *ParkingService) publish(areaID int64, occupied, capacity int) {
	if s.notifier == nil {
		return
	}
	available := capacity - occupied
	if available < 0 {
		available = 0
	}
	s.notifier.Publish(model.OccupancyUpdate{
		AreaID:    areaID,
		Occupied:  occupied,
		Capacity:  capacity,
		Available: available,
	})
}

func (s *ParkingService) logRejection(ctx context.Context, msg string, err error, args ...any) {
	args = append(args, "error", err)
	if isExpected(err) {
		s.log.Info(ctx, msg, args...)
		return
	}
	s.log.Error(ctx, msg, args...)
}
