package service

import (
	"context"
	"fmt"

	"github.com/Shivanand-hulikatti/parking-lot/internal/logging"
	"github.com/Shivanand-hulikatti/parking-lot/internal/model"
	"github.com/Shivanand-hulikatti/parking-lot/internal/repository"
	"github.com/Shivanand-hulikatti/parking-lot/internal/tariff"
)

// MaxQuoteMinutes bounds the stay length a quote accepts: ten years.
const MaxQuoteMinutes int64 = 10 * 366 * 24 * 60

// TariffService manages the tariff catalog of each area.
type TariffService struct {
	store repository.Store
	log   logging.Logger
}

// NewTariffService constructs a TariffService.
func NewTariffService(store repository.Store, log logging.Logger) *TariffService {
	return &TariffService{store: store, log: log}
}

// Create adds a rule to an area's catalog. An active rule whose window
// overlaps another active rule for the same area and class is rejected with
// ErrAmbiguousTariff, so the selector never sees two candidates.
//
// The area row is locked for the duration, the same lock CheckIn takes, which
// keeps two concurrent creations from both passing the overlap check.
func (s *TariffService) Create(ctx context.Context, areaID int64, req model.CreateTariffRequest) (*model.TariffRule, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}
	rule, err := tariff.NewRule(areaID, req)
	if err != nil {
		return nil, err
	}

	err = s.store.WithTx(ctx, func(ctx context.Context, r repository.Repos) error {
		if _, err := r.Areas.GetForUpdate(ctx, areaID); err != nil {
			return err
		}
		if err := s.checkConflict(ctx, r, rule); err != nil {
			return err
		}
		return r.Tariffs.Create(ctx, &rule)
	})
	if err != nil {
		return nil, wrap("create tariff", err)
	}

	s.log.Info(ctx, "tariff created",
		"tariff_id", rule.ID, "area_id", rule.AreaID, "vehicle_class", rule.VehicleClass,
		"rule_type", rule.RuleType, "active", rule.Active)
	return &rule, nil
}

// SetActive activates or deactivates a rule. Activation re-runs the overlap
// check under the area lock.
func (s *TariffService) SetActive(ctx context.Context, id int64, active bool) (*model.TariffRule, error) {
	var rule *model.TariffRule
	err := s.store.WithTx(ctx, func(ctx context.Context, r repository.Repos) error {
		var err error
		rule, err = r.Tariffs.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if _, err := r.Areas.GetForUpdate(ctx, rule.AreaID); err != nil {
			return err
		}
		if rule.Active == active {
			return nil
		}
		rule.Active = active
		if active {
			if err := s.checkConflict(ctx, r, *rule); err != nil {
				return err
			}
		}
		return r.Tariffs.SetActive(ctx, id, active)
	})
	if err != nil {
		return nil, wrap("set tariff active", err)
	}
	s.log.Info(ctx, "tariff updated", "tariff_id", id, "active", active)
	return rule, nil
}

func (s *TariffService) checkConflict(ctx context.Context, r repository.Repos, rule model.TariffRule) error {
	if !rule.Active {
		return nil
	}
	active, err := r.Tariffs.ListActive(ctx, rule.AreaID, rule.VehicleClass)
	if err != nil {
		return err
	}
	return tariff.CheckConflict(active, rule)
}

// List returns every rule of an area.
func (s *TariffService) List(ctx context.Context, areaID int64) ([]model.TariffRule, error) {
	r := s.store.Repos()
	if _, err := r.Areas.GetByID(ctx, areaID); err != nil {
		return nil, wrap("list tariffs", err)
	}
	rules, err := r.Tariffs.ListByArea(ctx, areaID)
	return rules, wrap("list tariffs", err)
}

// Get returns a single rule.
func (s *TariffService) Get(ctx context.Context, id int64) (*model.TariffRule, error) {
	rule, err := s.store.Repos().Tariffs.GetByID(ctx, id)
	return rule, wrap("get tariff", err)
}

// Quote previews the fee a stay of the given length would cost under a rule.
func (s *TariffService) Quote(ctx context.Context, id, minutes int64) (*model.QuoteResponse, error) {
	if minutes < 0 {
		return nil, fmt.Errorf("%w: minutes must not be negative", model.ErrValidation)
	}
	if minutes > MaxQuoteMinutes {
		return nil, fmt.Errorf("%w: minutes must not exceed %d", model.ErrValidation, MaxQuoteMinutes)
	}
	rule, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &model.QuoteResponse{
		TariffID:        rule.ID,
		DurationMinutes: minutes,
		Fee:             tariff.Fee(*rule, minutes),
	}, nil
}
