/*
calculator.go - Wage calculation for one attendance entry

ALGORITHM:
  1. net minutes = (check-out - check-in) - break, floored at zero.
     Every bucket below is counted in whole minutes; hours are derived
     from minutes only for display.
     Check-out before check-in (an overnight shift) is NOT wrapped to the
     next day: the day prices as zero hours.
  2. The day type selects a pay rule:

       SICK_LEAVE     everything zero
       REST_DAY_WORK  all net hours are overtime
       NORMAL         first 8h regular, rest overtime
       DOUBLE_PAY     as NORMAL, regular pay x2

  3. Overtime splits into tier 1 (first 2h, multiplier 1) and tier 2
     (everything beyond, multiplier 2, no cap).
  4. salary = round((regular pay + overtime pay) / 60), where both pays are
     minutes x rate x multiplier. The division by 60 and the rounding
     happen once, exactly, half away from zero.

EXAMPLE (rate 200, m1 1.34, m2 1.67):
  09:00-21:00, break 60, NORMAL -> 11h net
  regular 480m, tier1 120m, tier2 60m
  salary = round((96000 + 32160 + 20040) / 60) = 2470
*/
package payroll

import (
	"github.com/Chung0221/salary-tracker/generic"
	"github.com/shopspring/decimal"
)

const (
	standardDayMinutes = 8 * 60
	tier1CapMinutes    = 2 * 60
)

var (
	doublePay = decimal.NewFromInt(2)
	singlePay = decimal.NewFromInt(1)
)

// Compute prices one entry under rates. It never fails: malformed time
// ranges degrade to a zero-hour day.
func Compute(entry AttendanceEntry, rates RateConfig) PayBreakdown {
	return ruleFor(entry.DayType).price(NetMinutes(entry), rates)
}

// NetMinutes returns worked minutes after the unpaid break, floored at zero.
// A negative break is treated as no break.
func NetMinutes(entry AttendanceEntry) int {
	breakMinutes := max(entry.BreakMinutes, 0)
	return max(generic.MinutesBetween(entry.CheckIn, entry.CheckOut)-breakMinutes, 0)
}

// NetHours is NetMinutes expressed in hours.
func NetHours(entry AttendanceEntry) decimal.Decimal {
	return generic.MinutesToHours(NetMinutes(entry))
}

// =============================================================================
// PAY RULES - One per day type
// =============================================================================

type payRule interface {
	price(netMinutes int, rates RateConfig) PayBreakdown
}

// ruleFor must list every DayType. Values outside the enum price as NORMAL.
func ruleFor(d DayType) payRule {
	switch d {
	case DaySickLeave:
		return unpaidDay{}
	case DayRestDayWork:
		return overtimeOnlyDay{tier1Cap: tier1CapMinutes}
	case DayDoublePay:
		return regularDay{regularCap: standardDayMinutes, tier1Cap: tier1CapMinutes, regularMultiplier: doublePay}
	case DayNormal:
		fallthrough
	default:
		return regularDay{regularCap: standardDayMinutes, tier1Cap: tier1CapMinutes, regularMultiplier: singlePay}
	}
}

// unpaidDay ignores attendance completely.
type unpaidDay struct{}

func (unpaidDay) price(int, RateConfig) PayBreakdown {
	return zeroBreakdown()
}

// overtimeOnlyDay pays every net minute at the overtime tiers.
type overtimeOnlyDay struct {
	tier1Cap int
}

func (r overtimeOnlyDay) price(netMinutes int, rates RateConfig) PayBreakdown {
	tier1, tier2 := splitOvertime(netMinutes, r.tier1Cap)
	return NewPayBreakdown(0, tier1, tier2, roundSalary(overtimePay(tier1, tier2, rates)))
}

// regularDay pays up to regularCap minutes at the base rate times
// regularMultiplier and the remainder as tiered overtime.
type regularDay struct {
	regularCap        int
	tier1Cap          int
	regularMultiplier decimal.Decimal
}

func (r regularDay) price(netMinutes int, rates RateConfig) PayBreakdown {
	regular := min(netMinutes, r.regularCap)
	tier1, tier2 := splitOvertime(netMinutes-r.regularCap, r.tier1Cap)

	regularPay := minutes(regular).Mul(rates.HourlyRate).Mul(r.regularMultiplier)
	return NewPayBreakdown(regular, tier1, tier2, roundSalary(regularPay.Add(overtimePay(tier1, tier2, rates))))
}

// =============================================================================
// HELPERS
// =============================================================================

// splitOvertime divides overtime into the capped first tier and the uncapped rest.
func splitOvertime(overtime, tier1Cap int) (tier1, tier2 int) {
	overtime = max(overtime, 0)
	tier1 = min(overtime, tier1Cap)
	return tier1, overtime - tier1
}

// overtimePay is priced in rate-minutes, sixty times the currency amount.
func overtimePay(tier1, tier2 int, rates RateConfig) decimal.Decimal {
	return minutes(tier1).Mul(rates.HourlyRate).Mul(rates.OvertimeMultiplier1).
		Add(minutes(tier2).Mul(rates.HourlyRate).Mul(rates.OvertimeMultiplier2))
}

// roundSalary converts rate-minutes to a whole currency unit, rounding half
// away from zero.
func roundSalary(rateMinutes decimal.Decimal) int64 {
	return rateMinutes.DivRound(generic.MinutesPerHour, 0).IntPart()
}

func minutes(m int) decimal.Decimal { return decimal.NewFromInt(int64(m)) }

func zeroBreakdown() PayBreakdown {
	return NewPayBreakdown(0, 0, 0, 0)
}
