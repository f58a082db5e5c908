/*
aggregate.go - Period totals over stored records

PURPOSE:
  Folds a sequence of records into Totals for a selected range or for
  everything. Each record already carries its own rounded salary and its
  own rate snapshot, so nothing is recomputed here.

SUMMATION:
  Salaries and hour buckets are summed as integers (minutes), so the totals do not
  depend on record order and Aggregate(A ++ B) == Aggregate(A).Add(Aggregate(B)).

FILTERS:
  AllRecords()               everything (also the zero Filter)
  InPeriod(p)                inclusive [p.Start, p.End]
  InMonth(2025, time.March)  calendar month
  InSettlementCycle(d, 25)   pay cycle closing on the 25th that contains d
*/
package payroll

import (
	"sort"
	"time"

	"github.com/Chung0221/salary-tracker/generic"
)

// =============================================================================
// FILTER
// =============================================================================

// Filter selects records by entry date. The zero value selects everything.
type Filter struct {
	period *generic.Period
}

func AllRecords() Filter { return Filter{} }

func InPeriod(p generic.Period) Filter { return Filter{period: &p} }

func InMonth(year int, month time.Month) Filter {
	return InPeriod(generic.MonthPeriod(year, month))
}

func InSettlementCycle(date generic.TimePoint, settlementDay int) Filter {
	return InPeriod(generic.SettlementCycle(date, settlementDay))
}

// Period returns the filtered range, ok is false for "all".
func (f Filter) Period() (generic.Period, bool) {
	if f.period == nil {
		return generic.Period{}, false
	}
	return *f.period, true
}

// Match reports whether the record's date falls inside the filter.
func (f Filter) Match(r Record) bool {
	return f.period == nil || f.period.Contains(r.Entry.Date)
}

func (f Filter) String() string {
	if f.period == nil {
		return "all"
	}
	return f.period.String()
}

// =============================================================================
// AGGREGATION
// =============================================================================

// ZeroTotals is the result for an empty selection.
func ZeroTotals() Totals {
	return NewTotals(0, 0, 0, 0, 0)
}

// Aggregate sums every record matching filter. It never fails and never
// modifies records.
func Aggregate(records []Record, filter Filter) Totals {
	totals := ZeroTotals()
	for _, r := range records {
		if !filter.Match(r) {
			continue
		}
		totals = totals.Add(r.Totals())
	}
	return totals
}

// Select returns the matching records newest first (by date, then by id).
// The input slice is left untouched.
func Select(records []Record, filter Filter) []Record {
	selected := make([]Record, 0, len(records))
	for _, r := range records {
		if filter.Match(r) {
			selected = append(selected, r)
		}
	}
	sort.SliceStable(selected, func(i, j int) bool {
		a, b := selected[i], selected[j]
		if !a.Entry.Date.Equal(b.Entry.Date) {
			return a.Entry.Date.After(b.Entry.Date)
		}
		return a.ID > b.ID
	})
	return selected
}

// Months lists the distinct YYYY-MM keys present in records, newest first.
func Months(records []Record) []string {
	seen := make(map[string]bool)
	months := []string{}
	for _, r := range records {
		key := r.Entry.Date.MonthKey()
		if !seen[key] {
			seen[key] = true
			months = append(months, key)
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(months)))
	return months
}
