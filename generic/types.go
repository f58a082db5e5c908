/*
Package generic provides the domain-agnostic building blocks of the salary tracker.

PURPOSE:
  This package contains the calendar and arithmetic primitives that the
  payroll engine is written against. It knows nothing about wages, day types
  or overtime tiers; it only knows dates, clock times, periods and decimals.

KEY CONCEPTS IN THIS FILE (types.go):
  - Minutes to hours conversion without float drift

DESIGN PRINCIPLES:
  1. Precision: hours and money use decimal.Decimal, never float64
  2. Totality: helpers never fail, malformed input degrades to zero
  3. Value semantics: every type here is a small value, safe to copy

USAGE:
  net := generic.MinutesToHours(510)         // 8.5

SEE ALSO:
  - time.go: TimePoint (calendar date) and ClockTime (hour:minute)
  - period.go: Period and settlement cycle calculation
  - errors.go: Sentinel and structured errors
*/
package generic

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// DECIMAL HELPERS
// =============================================================================

// MinutesPerHour is the divisor used to turn worked minutes into hours.
var MinutesPerHour = decimal.NewFromInt(60)

// MinutesToHours converts minutes to fractional hours. Negative input yields zero.
func MinutesToHours(minutes int) decimal.Decimal {
	if minutes <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(minutes)).Div(MinutesPerHour)
}
