package tariff

import (
	"time"

	"github.com/Shivanand-hulikatti/parking-lot/internal/model"
)

// Select returns the single active rule of rules that prices vehicles of
// class in area at the given instant. The time of day is read in loc.
//
// Several matches mean the catalog is inconsistent; Select refuses to pick
// one and returns ErrAmbiguousTariff.
func Select(rules []model.TariffRule, areaID int64, class model.VehicleClass, at time.Time, loc *time.Location) (model.TariffRule, error) {
	if loc != nil {
		at = at.In(loc)
	}

	var (
		found   model.TariffRule
		matches int
	)
	for _, r := range rules {
		if r.AreaID != areaID || r.VehicleClass != class || !r.Active {
			continue
		}
		if !WindowContains(r, at) {
			continue
		}
		found = r
		matches++
	}

	switch matches {
	case 0:
		return model.TariffRule{}, model.ErrNoTariffFound
	case 1:
		return found, nil
	default:
		return model.TariffRule{}, model.ErrAmbiguousTariff
	}
}
