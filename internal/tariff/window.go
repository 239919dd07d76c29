package tariff

import (
	"time"

	"github.com/Shivanand-hulikatti/parking-lot/internal/model"
)

// span is a half-open [from, to) range of minutes since midnight.
type span struct {
	from, to int
}

// WindowContains reports whether the time of day of at falls inside the
// rule's [ValidFrom, ValidTo) window. A rule without a window always matches;
// a window with ValidFrom after ValidTo spans midnight.
func WindowContains(rule model.TariffRule, at time.Time) bool {
	if !rule.HasWindow() {
		return true
	}
	t := int(model.TimeOfDayOf(at))
	for _, s := range spans(rule) {
		if t >= s.from && t < s.to {
			return true
		}
	}
	return false
}

// WindowsOverlap reports whether two rules can both apply at some instant.
func WindowsOverlap(a, b model.TariffRule) bool {
	for _, x := range spans(a) {
		for _, y := range spans(b) {
			if x.from < y.to && y.from < x.to {
				return true
			}
		}
	}
	return false
}

// spans splits a rule's window into at most two non-wrapping ranges.
func spans(rule model.TariffRule) []span {
	if !rule.HasWindow() {
		return []span{{0, model.MinutesPerDay}}
	}
	from, to := int(*rule.ValidFrom), int(*rule.ValidTo)
	if from < to {
		return []span{{from, to}}
	}
	return []span{{from, model.MinutesPerDay}, {0, to}}
}
