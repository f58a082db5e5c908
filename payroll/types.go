/*
Package payroll turns daily attendance into pay and folds pay into period totals.

PURPOSE:
  A worker records one AttendanceEntry per day (check-in, check-out, unpaid
  break, day type). The calculator converts it into hour buckets and a
  salary under the RateConfig in effect; the aggregator sums stored records
  for a month, a settlement cycle, an explicit range, or everything.

KEY CONCEPTS IN THIS FILE (types.go):
  - DayType: closed set NORMAL | SICK_LEAVE | DOUBLE_PAY | REST_DAY_WORK
  - RateConfig: live, user-editable rates (hourly rate, two overtime multipliers)
  - RateSnapshot: value copy of the rates frozen into each Record
  - AttendanceEntry: calculator input
  - PayBreakdown: calculator output
  - Record: entry + breakdown + snapshot, immutable once stored
  - Totals: aggregator output

DESIGN PRINCIPLES:
  1. Totality: Compute and Aggregate never fail
  2. Precision: hour buckets are whole minutes, hours are derived from
     them; salary is an integer rounded once per record
  3. Stability: a record keeps the rates it was computed with, later
     settings edits never change history
  4. Immutability: records are deleted and re-added, never edited

SEE ALSO:
  - calculator.go: Compute and the per-day-type pay rules
  - aggregate.go: Filter, Aggregate, Select, Months
  - book.go: Record lifecycle on top of the stores
*/
package payroll

import (
	"time"

	"github.com/Chung0221/salary-tracker/generic"
	"github.com/shopspring/decimal"
)

// =============================================================================
// DAY TYPE - Closed classification of a worked day
// =============================================================================

type DayType int

const (
	DayNormal      DayType = iota // Regular day: 8h regular, then tiered overtime
	DaySickLeave                  // Unpaid, attendance times ignored
	DayDoublePay                  // Regular hours paid twice, overtime as normal
	DayRestDayWork                // Every hour is overtime
)

// DayTypes lists every day type in declaration order.
var DayTypes = []DayType{DayNormal, DaySickLeave, DayDoublePay, DayRestDayWork}

func (d DayType) String() string {
	switch d {
	case DayNormal:
		return "NORMAL"
	case DaySickLeave:
		return "SICK_LEAVE"
	case DayDoublePay:
		return "DOUBLE_PAY"
	case DayRestDayWork:
		return "REST_DAY_WORK"
	default:
		return "UNKNOWN"
	}
}

// ParseDayType accepts the canonical names returned by String.
func ParseDayType(s string) (DayType, error) {
	for _, d := range DayTypes {
		if d.String() == s {
			return d, nil
		}
	}
	return DayNormal, &generic.ParseError{Field: "day_type", Value: s, Err: generic.ErrUnknownDayType}
}

func (d DayType) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *DayType) UnmarshalText(b []byte) error {
	parsed, err := ParseDayType(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// =============================================================================
// RATES
// =============================================================================

// RateConfig is the live pay configuration owned by the settings store.
type RateConfig struct {
	HourlyRate          decimal.Decimal
	OvertimeMultiplier1 decimal.Decimal // first 2 overtime hours
	OvertimeMultiplier2 decimal.Decimal // every overtime hour after that
	DefaultBreakMinutes int             // pre-filled break for new entries
	SettlementDay       int             // day of month a pay cycle closes on
}

// DefaultRateConfig returns the rates used until the worker saves their own.
func DefaultRateConfig() RateConfig {
	return RateConfig{
		HourlyRate:          decimal.NewFromInt(200),
		OvertimeMultiplier1: decimal.RequireFromString("1.34"),
		OvertimeMultiplier2: decimal.RequireFromString("1.67"),
		DefaultBreakMinutes: 60,
		SettlementDay:       generic.DefaultSettlementDay,
	}
}

// Snapshot copies the pay-relevant rates by value.
func (rc RateConfig) Snapshot() RateSnapshot {
	return RateSnapshot{
		HourlyRate:          rc.HourlyRate,
		OvertimeMultiplier1: rc.OvertimeMultiplier1,
		OvertimeMultiplier2: rc.OvertimeMultiplier2,
	}
}

// Validate rejects settings the UI should never save. Compute itself accepts
// any RateConfig.
func (rc RateConfig) Validate() error {
	switch {
	case !rc.HourlyRate.IsPositive():
		return &generic.ValidationError{Field: "hourly_rate", Message: "must be greater than 0"}
	case !rc.OvertimeMultiplier1.IsPositive():
		return &generic.ValidationError{Field: "overtime_multiplier1", Message: "must be greater than 0"}
	case !rc.OvertimeMultiplier2.IsPositive():
		return &generic.ValidationError{Field: "overtime_multiplier2", Message: "must be greater than 0"}
	case rc.DefaultBreakMinutes < 0:
		return &generic.ValidationError{Field: "default_break_minutes", Message: "must not be negative"}
	case rc.SettlementDay < 1 || rc.SettlementDay > generic.MaxSettlementDay:
		return &generic.ValidationError{Field: "settlement_day", Message: "must be between 1 and 28"}
	}
	return nil
}

// RateSnapshot is the part of RateConfig frozen into a Record.
type RateSnapshot struct {
	HourlyRate          decimal.Decimal
	OvertimeMultiplier1 decimal.Decimal
	OvertimeMultiplier2 decimal.Decimal
}

// =============================================================================
// ENTRY / BREAKDOWN / RECORD
// =============================================================================

// AttendanceEntry is one worked (or sick) day as typed in by the worker.
type AttendanceEntry struct {
	Date         generic.TimePoint // sorting and filtering only
	CheckIn      generic.ClockTime
	CheckOut     generic.ClockTime
	BreakMinutes int
	DayType      DayType
	Note         string // free text, never priced
}

// PayBreakdown is the calculator output. The minute buckets are exact; the
// hour fields are derived from them by NewPayBreakdown.
type PayBreakdown struct {
	RegularMinutes       int
	OvertimeTier1Minutes int
	OvertimeTier2Minutes int

	RegularHours       decimal.Decimal
	OvertimeTier1Hours decimal.Decimal
	OvertimeTier2Hours decimal.Decimal
	OvertimeTotalHours decimal.Decimal // always Tier1 + Tier2
	Salary             int64
}

// NewPayBreakdown builds a breakdown from minute buckets.
func NewPayBreakdown(regular, tier1, tier2 int, salary int64) PayBreakdown {
	tier1Hours := generic.MinutesToHours(tier1)
	tier2Hours := generic.MinutesToHours(tier2)
	return PayBreakdown{
		RegularMinutes:       regular,
		OvertimeTier1Minutes: tier1,
		OvertimeTier2Minutes: tier2,
		RegularHours:         generic.MinutesToHours(regular),
		OvertimeTier1Hours:   tier1Hours,
		OvertimeTier2Hours:   tier2Hours,
		OvertimeTotalHours:   tier1Hours.Add(tier2Hours),
		Salary:               salary,
	}
}

type RecordID string

// Record is a stored, immutable computation.
type Record struct {
	ID        RecordID
	Entry     AttendanceEntry
	Pay       PayBreakdown
	Applied   RateSnapshot
	CreatedAt time.Time
}

// AppliedRate is the hourly rate that was live when the record was created.
func (r Record) AppliedRate() decimal.Decimal { return r.Applied.HourlyRate }

// Totals converts a single record into a one-element total.
func (r Record) Totals() Totals {
	return NewTotals(1, r.Pay.Salary, r.Pay.RegularMinutes, r.Pay.OvertimeTier1Minutes, r.Pay.OvertimeTier2Minutes)
}

// =============================================================================
// TOTALS - Aggregator output
// =============================================================================

// Totals sums whole minutes so period hours never accumulate division error.
type Totals struct {
	Count  int
	Salary int64

	RegularMinutes       int
	OvertimeTier1Minutes int
	OvertimeTier2Minutes int

	RegularHours       decimal.Decimal
	OvertimeTier1Hours decimal.Decimal
	OvertimeTier2Hours decimal.Decimal
	OvertimeTotalHours decimal.Decimal
}

// NewTotals builds totals from minute sums, deriving the hour fields.
func NewTotals(count int, salary int64, regular, tier1, tier2 int) Totals {
	pay := NewPayBreakdown(regular, tier1, tier2, salary)
	return Totals{
		Count:                count,
		Salary:               salary,
		RegularMinutes:       regular,
		OvertimeTier1Minutes: tier1,
		OvertimeTier2Minutes: tier2,
		RegularHours:         pay.RegularHours,
		OvertimeTier1Hours:   pay.OvertimeTier1Hours,
		OvertimeTier2Hours:   pay.OvertimeTier2Hours,
		OvertimeTotalHours:   pay.OvertimeTotalHours,
	}
}

// Add sums two totals field by field.
func (t Totals) Add(o Totals) Totals {
	return NewTotals(
		t.Count+o.Count,
		t.Salary+o.Salary,
		t.RegularMinutes+o.RegularMinutes,
		t.OvertimeTier1Minutes+o.OvertimeTier1Minutes,
		t.OvertimeTier2Minutes+o.OvertimeTier2Minutes,
	)
}

// Equal compares the count, the salary and the minute buckets.
func (t Totals) Equal(o Totals) bool {
	return t.Count == o.Count &&
		t.Salary == o.Salary &&
		t.RegularMinutes == o.RegularMinutes &&
		t.OvertimeTier1Minutes == o.OvertimeTier1Minutes &&
		t.OvertimeTier2Minutes == o.OvertimeTier2Minutes
}
