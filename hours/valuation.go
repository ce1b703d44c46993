package hours

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// MONETARY VALUATION
// =============================================================================

// Valuation is the money owed for a BucketedResult at one hourly rate.
//
//	Normal   = NormalHours x rate
//	Extra50  = (Extra50Day + Extra50Night) x rate x Extra50Multiplier
//	Extra100 = (Extra100Day + Extra100Night) x rate x Extra100Multiplier
//	Total    = Normal + Extra50 + Extra100
//
// Amounts are unrounded; round at presentation (StringFixed(2)).
type Valuation struct {
	Normal   decimal.Decimal
	Extra50  decimal.Decimal
	Extra100 decimal.Decimal
	Total    decimal.Decimal
}

// Value prices hours at rate. A zero or negative rate (no wage configured)
// yields a zero valuation; that is a valid state, not an error.
func Value(h BucketedResult, rate decimal.Decimal, rules Rules) Valuation {
	if !rate.IsPositive() {
		return Valuation{Normal: decimal.Zero, Extra50: decimal.Zero, Extra100: decimal.Zero, Total: decimal.Zero}
	}

	normal := decimal.NewFromFloat(h.NormalHours).Mul(rate)
	extra50 := decimal.NewFromFloat(h.Extra50()).Mul(rate).Mul(rules.Extra50Multiplier)
	extra100 := decimal.NewFromFloat(h.Extra100()).Mul(rate).Mul(rules.Extra100Multiplier)

	return Valuation{
		Normal:   normal,
		Extra50:  extra50,
		Extra100: extra100,
		Total:    normal.Add(extra50).Add(extra100),
	}
}

// Add sums two valuations.
func (v Valuation) Add(o Valuation) Valuation {
	return Valuation{
		Normal:   v.Normal.Add(o.Normal),
		Extra50:  v.Extra50.Add(o.Extra50),
		Extra100: v.Extra100.Add(o.Extra100),
		Total:    v.Total.Add(o.Total),
	}
}
