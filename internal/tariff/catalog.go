package tariff

import (
	"fmt"

	"github.com/Shivanand-hulikatti/parking-lot/internal/model"
)

// NewRule builds a rule for area from a create request and checks the
// cross-field constraints that struct tags cannot express. Returned errors
// wrap model.ErrValidation.
func NewRule(areaID int64, req model.CreateTariffRequest) (model.TariffRule, error) {
	rule := model.TariffRule{
		AreaID:            areaID,
		VehicleClass:      req.VehicleClass,
		RuleType:          req.RuleType,
		BasePrice:         req.BasePrice,
		ContinuationPrice: req.ContinuationPrice,
		IntervalMinutes:   req.IntervalMinutes,
		ProgressiveSteps:  req.ProgressiveSteps,
		DailyCap:          req.DailyCap,
		ValidFrom:         req.ValidFrom,
		ValidTo:           req.ValidTo,
		Active:            true,
	}
	if req.Active != nil {
		rule.Active = *req.Active
	}

	if err := Validate(rule); err != nil {
		return model.TariffRule{}, err
	}
	if rule.RuleType == model.RuleProgressive {
		rule.ProgressiveSteps = SortedSteps(rule.ProgressiveSteps)
	}
	if rule.RuleType == model.RuleInterval && rule.IntervalMinutes == nil {
		n := DefaultIntervalMinutes
		rule.IntervalMinutes = &n
	}
	return rule, nil
}

// Validate checks the shape of a rule.
func Validate(rule model.TariffRule) error {
	if !rule.VehicleClass.Valid() {
		return invalid("unknown vehicle class %q", rule.VehicleClass)
	}
	if !rule.RuleType.Valid() {
		return invalid("unknown rule type %q", rule.RuleType)
	}
	if rule.BasePrice < 0 {
		return invalid("base_price must not be negative")
	}
	if rule.DailyCap != nil && *rule.DailyCap < 0 {
		return invalid("daily_cap must not be negative")
	}

	if (rule.ValidFrom == nil) != (rule.ValidTo == nil) {
		return invalid("valid_from and valid_to must be set together")
	}
	if rule.HasWindow() {
		if *rule.ValidFrom == *rule.ValidTo {
			return invalid("valid_from and valid_to must differ")
		}
		if *rule.ValidFrom < 0 || *rule.ValidFrom >= model.MinutesPerDay ||
			*rule.ValidTo < 0 || *rule.ValidTo >= model.MinutesPerDay {
			return invalid("window bounds must be within a day")
		}
	}

	if rule.RuleType != model.RuleInterval {
		if rule.ContinuationPrice != nil || rule.IntervalMinutes != nil {
			return invalid("continuation_price and interval_minutes apply to interval rules only")
		}
	} else {
		if rule.ContinuationPrice != nil && *rule.ContinuationPrice < 0 {
			return invalid("continuation_price must not be negative")
		}
		if rule.IntervalMinutes != nil && *rule.IntervalMinutes <= 0 {
			return invalid("interval_minutes must be positive")
		}
	}

	if rule.RuleType != model.RuleProgressive {
		if len(rule.ProgressiveSteps) > 0 {
			return invalid("progressive_steps apply to progressive rules only")
		}
		return nil
	}
	seen := make(map[int]struct{}, len(rule.ProgressiveSteps))
	for _, s := range rule.ProgressiveSteps {
		if s.HourIndex < 1 {
			return invalid("hour_index must be at least 1")
		}
		if s.Price < 0 {
			return invalid("progressive price must not be negative")
		}
		if _, dup := seen[s.HourIndex]; dup {
			return invalid("duplicate hour_index %d", s.HourIndex)
		}
		seen[s.HourIndex] = struct{}{}
	}
	return nil
}

// CheckConflict returns ErrAmbiguousTariff when candidate, if active, could
// apply at the same instant as one of the active rules already stored for the
// same area and vehicle class. A rule never conflicts with itself.
func CheckConflict(existing []model.TariffRule, candidate model.TariffRule) error {
	if !candidate.Active {
		return nil
	}
	for _, r := range existing {
		if r.ID == candidate.ID && candidate.ID != 0 {
			continue
		}
		if !r.Active || r.AreaID != candidate.AreaID || r.VehicleClass != candidate.VehicleClass {
			continue
		}
		if WindowsOverlap(r, candidate) {
			return fmt.Errorf("%w: conflicts with tariff %d", model.ErrAmbiguousTariff, r.ID)
		}
	}
	return nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{model.ErrValidation}, args...)...)
}
