// Package scoring ranks how well a vendor's price band fits a lead's budget.
//
// A score is the sum of two independent components:
//   - overlap width: the share of the lead's range the vendor also covers,
//     scaled to at most 30 points;
//   - midpoint containment: a flat 30 points when the middle of the lead's
//     budget falls inside the vendor's range.
//
// The maximum reachable score is therefore 60. Category fit is not scored.
package scoring

import (
	"github.com/shopspring/decimal"
)

const (
	// MaxOverlapScore caps the overlap-width component.
	MaxOverlapScore = 30
	// MidpointScore is awarded when the lead's budget midpoint is in range.
	MidpointScore = 30
	// MaxScore is the highest value Score can return.
	MaxScore = MaxOverlapScore + MidpointScore
)

var (
	maxOverlap = decimal.NewFromInt(MaxOverlapScore)
	midpoint   = decimal.NewFromInt(MidpointScore)
	two        = decimal.NewFromInt(2)
)

// BudgetRange is an inclusive money range in minor units.
type BudgetRange struct {
	Min int64
	Max int64
}

// Point returns the range [v, v].
func Point(v int64) BudgetRange {
	return BudgetRange{Min: v, Max: v}
}

// Valid reports whether the range is non-negative and ordered.
func (r BudgetRange) Valid() bool {
	return r.Min >= 0 && r.Max >= 0 && r.Min <= r.Max
}

// Contains reports whether v is within the range, bounds included.
func (r BudgetRange) Contains(v decimal.Decimal) bool {
	return v.GreaterThanOrEqual(decimal.NewFromInt(r.Min)) && v.LessThanOrEqual(decimal.NewFromInt(r.Max))
}

// Midpoint returns (Min+Max)/2 without integer truncation.
func (r BudgetRange) Midpoint() decimal.Decimal {
	return decimal.NewFromInt(r.Min).Add(decimal.NewFromInt(r.Max)).Div(two)
}

// Score returns the rounded match score in [0, MaxScore].
// Invalid ranges on either side score 0.
func Score(lead, vendor BudgetRange) int {
	if !lead.Valid() || !vendor.Valid() {
		return 0
	}
	total := OverlapScore(lead, vendor).Add(MidpointContainmentScore(lead, vendor))
	return int(total.Round(0).IntPart())
}

// OverlapScore is the unrounded overlap-width component.
// A zero-width lead range is a single point: it earns the full component
// when the vendor covers it and nothing otherwise.
func OverlapScore(lead, vendor BudgetRange) decimal.Decimal {
	if !lead.Valid() || !vendor.Valid() {
		return decimal.Zero
	}

	start := max(vendor.Min, lead.Min)
	end := min(vendor.Max, lead.Max)
	if end < start {
		return decimal.Zero
	}

	leadWidth := lead.Max - lead.Min
	if leadWidth == 0 {
		return maxOverlap
	}

	overlap := decimal.NewFromInt(end - start)
	contribution := overlap.Mul(maxOverlap).Div(decimal.NewFromInt(leadWidth))
	return decimal.Min(contribution, maxOverlap)
}

// MidpointContainmentScore is the flat midpoint component.
func MidpointContainmentScore(lead, vendor BudgetRange) decimal.Decimal {
	if !lead.Valid() || !vendor.Valid() {
		return decimal.Zero
	}
	if vendor.Contains(lead.Midpoint()) {
		return midpoint
	}
	return decimal.Zero
}
