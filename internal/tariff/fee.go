// Package tariff implements the pricing side of the parking system: the fee
// calculator for flat, interval and progressive rules, time-window matching,
// rule selection and the catalog consistency checks run before a rule is
// stored. Everything here is pure and works on integer minor currency units.
package tariff

import (
	"math"
	"sort"
	"time"

	"github.com/Shivanand-hulikatti/parking-lot/internal/model"
)

// DefaultIntervalMinutes is the block length of an interval rule that does
// not set one.
const DefaultIntervalMinutes int64 = 60

// DurationMinutes is the whole-minute length of a stay. Partial minutes are
// dropped and clock skew never yields a negative duration.
func DurationMinutes(entry, exit time.Time) int64 {
	d := exit.Sub(entry)
	if d <= 0 {
		return 0
	}
	return int64(d / time.Minute)
}

// Fee returns the amount owed for a stay of durationMinutes under rule. The
// result is never negative and saturates at math.MaxInt64 before the daily
// cap is applied, so very long stays still clamp to the cap.
func Fee(rule model.TariffRule, durationMinutes int64) int64 {
	if durationMinutes < 0 {
		durationMinutes = 0
	}

	var total int64
	switch rule.RuleType {
	case model.RuleInterval:
		total = intervalFee(rule, durationMinutes)
	case model.RuleProgressive:
		total = progressiveFee(rule, durationMinutes)
	default:
		total = rule.BasePrice
	}
	if total < 0 {
		total = 0
	}

	// The cap applies once to the whole stay, not per calendar day.
	if rule.DailyCap != nil && total > *rule.DailyCap {
		total = max(*rule.DailyCap, 0)
	}
	return total
}

func intervalFee(rule model.TariffRule, minutes int64) int64 {
	size := DefaultIntervalMinutes
	if rule.IntervalMinutes != nil && *rule.IntervalMinutes > 0 {
		size = *rule.IntervalMinutes
	}
	units := blocks(minutes, size)

	if rule.ContinuationPrice != nil {
		return addSat(rule.BasePrice, mulSat(units-1, *rule.ContinuationPrice))
	}
	return mulSat(units, rule.BasePrice)
}

// progressiveFee bills each hour at the step with the greatest hour index not
// above it, falling back to the base price before the first step. Runs of
// hours sharing a price are billed in one multiplication.
func progressiveFee(rule model.TariffRule, minutes int64) int64 {
	if len(rule.ProgressiveSteps) == 0 {
		return rule.BasePrice
	}

	hours := blocks(minutes, 60)
	var total int64
	price := rule.BasePrice
	from := int64(1) // first hour not yet billed
	for _, st := range SortedSteps(rule.ProgressiveSteps) {
		idx := int64(st.HourIndex)
		if idx > hours {
			break
		}
		if idx > from {
			total = addSat(total, mulSat(idx-from, price))
			from = idx
		}
		price = st.Price
	}
	return addSat(total, mulSat(hours-from+1, price))
}

// blocks is ceil(minutes/size) with a floor of one block: any presence,
// including a zero-minute stay, is billed the first block.
func blocks(minutes, size int64) int64 {
	n := minutes / size
	if minutes%size != 0 {
		n++
	}
	if n < 1 {
		return 1
	}
	return n
}

// mulSat multiplies non-negative amounts, saturating at math.MaxInt64.
// Negative operands count as zero.
func mulSat(a, b int64) int64 {
	if a <= 0 || b <= 0 {
		return 0
	}
	if a > math.MaxInt64/b {
		return math.MaxInt64
	}
	return a * b
}

// addSat adds non-negative amounts, saturating at math.MaxInt64.
func addSat(a, b int64) int64 {
	a, b = max(a, 0), max(b, 0)
	if a > math.MaxInt64-b {
		return math.MaxInt64
	}
	return a + b
}

// SortedSteps returns a copy of steps ordered by HourIndex.
func SortedSteps(steps []model.ProgressiveStep) []model.ProgressiveStep {
	out := make([]model.ProgressiveStep, len(steps))
	copy(out, steps)
	sort.SliceStable(out, func(i, j int) bool { return out[i].HourIndex < out[j].HourIndex })
	return out
}
