package generic

import "time"

// =============================================================================
// PERIOD - Inclusive date range used for filtering and settlement
// =============================================================================

// Period is the inclusive date range [Start, End].
//
// Examples:
//   - Calendar month March 2025: Mar 1 - Mar 31
//   - Settlement cycle closing on the 25th: Feb 26 - Mar 25
type Period struct {
	Start TimePoint
	End   TimePoint
}

// Contains returns true if the time point is within the period [Start, End]
func (p Period) Contains(t TimePoint) bool {
	return t.AfterOrEqual(p.Start) && t.BeforeOrEqual(p.End)
}

// Validate rejects periods whose end is before their start.
func (p Period) Validate() error {
	if p.End.Before(p.Start) {
		return ErrInvalidPeriod
	}
	return nil
}

// String returns a string representation of the period.
func (p Period) String() string {
	return "[" + p.Start.String() + ", " + p.End.String() + "]"
}

// MonthPeriod returns the calendar month containing year/month.
func MonthPeriod(year int, month time.Month) Period {
	return Period{Start: StartOfMonth(year, month), End: EndOfMonth(year, month)}
}

// PeriodType defines how periods are calculated
type PeriodType string

const (
	PeriodCalendarMonth   PeriodType = "calendar_month"   // 1st - last day of month
	PeriodSettlementCycle PeriodType = "settlement_cycle" // day after settlement day - settlement day
)

// DefaultSettlementDay closes a pay cycle on the 25th.
const DefaultSettlementDay = 25

// MaxSettlementDay keeps every cycle boundary valid in February.
const MaxSettlementDay = 28

// PeriodConfig defines how to calculate periods
type PeriodConfig struct {
	Type PeriodType

	// For settlement cycles: the day of month the cycle closes on (1-28).
	SettlementDay int
}

// =============================================================================
// PERIOD CALCULATOR - Determines which period a date falls into
// =============================================================================

// PeriodFor returns the period that contains the given date
func (pc PeriodConfig) PeriodFor(date TimePoint) Period {
	switch pc.Type {
	case PeriodSettlementCycle:
		return SettlementCycle(date, pc.SettlementDay)
	default:
		return MonthPeriod(date.Year(), date.Month())
	}
}

// Previous returns the period immediately before p.
func (pc PeriodConfig) Previous(p Period) Period {
	return pc.PeriodFor(p.Start.AddDays(-1))
}

// SettlementCycle returns the pay cycle closing on settlementDay that contains
// date. A day outside 1..28 falls back to DefaultSettlementDay.
func SettlementCycle(date TimePoint, settlementDay int) Period {
	if settlementDay < 1 || settlementDay > MaxSettlementDay {
		settlementDay = DefaultSettlementDay
	}

	end := NewTimePoint(date.Year(), date.Month(), settlementDay)
	if date.Day() > settlementDay {
		end = end.AddMonths(1)
	}
	start := end.AddMonths(-1).AddDays(1)
	return Period{Start: start, End: end}
}
