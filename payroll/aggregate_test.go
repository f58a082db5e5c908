package payroll

import (
	"testing"
	"time"

	"github.com/Chung0221/salary-tracker/generic"
	"github.com/stretchr/testify/assert"
)

func date(year int, month time.Month, day int) generic.TimePoint {
	return generic.NewTimePoint(year, month, day)
}

// record builds a stored record for day, priced under the default rates.
func record(id string, d generic.TimePoint, in, out generic.ClockTime, day DayType) Record {
	e := AttendanceEntry{Date: d, CheckIn: in, CheckOut: out, BreakMinutes: 60, DayType: day}
	rates := DefaultRateConfig()
	return Record{ID: RecordID(id), Entry: e, Pay: Compute(e, rates), Applied: rates.Snapshot()}
}

func sampleRecords() []Record {
	return []Record{
		record("a", date(2025, time.February, 26), clock(9, 0), clock(18, 0), DayNormal),  // 1600
		record("b", date(2025, time.March, 3), clock(9, 0), clock(21, 0), DayNormal),      // 2470
		record("c", date(2025, time.March, 25), clock(9, 0), clock(18, 0), DayDoublePay),  // 3200
		record("d", date(2025, time.March, 26), clock(9, 0), clock(18, 0), DaySickLeave),  // 0
		record("e", date(2025, time.April, 2), clock(9, 0), clock(15, 0), DayRestDayWork), // 5h overtime
	}
}

func TestAggregate_Empty(t *testing.T) {
	totals := Aggregate(nil, AllRecords())

	assert.True(t, totals.Equal(ZeroTotals()))
	assert.Equal(t, 0, totals.Count)
	assert.Equal(t, int64(0), totals.Salary)
}

func TestAggregate_SumsStoredSalaries(t *testing.T) {
	records := sampleRecords()
	totals := Aggregate(records, AllRecords())

	var want int64
	for _, r := range records {
		want += r.Pay.Salary
	}
	assert.Equal(t, 5, totals.Count)
	assert.Equal(t, want, totals.Salary)
	assertDecimal(t, hours("24"), totals.RegularHours, "regular") // 8 + 8 + 8
	assertDecimal(t, hours("8"), totals.OvertimeTotalHours, "overtime")
	assert.Equal(t, 1440, totals.RegularMinutes)
	assertDecimal(t, totals.OvertimeTier1Hours.Add(totals.OvertimeTier2Hours), totals.OvertimeTotalHours, "tiers")
}

func TestAggregate_FractionalHoursSumExactly(t *testing.T) {
	// GIVEN: Three 20-minute days with no break
	records := make([]Record, 0, 3)
	for i := 0; i < 3; i++ {
		e := AttendanceEntry{
			Date:     date(2025, time.March, 3+i),
			CheckIn:  clock(9, 0),
			CheckOut: clock(9, 20),
			DayType:  DayNormal,
		}
		records = append(records, Record{ID: RecordID(e.Date.String()), Entry: e, Pay: Compute(e, DefaultRateConfig())})
	}

	// WHEN: Aggregating them
	totals := Aggregate(records, AllRecords())

	// THEN: The regular total is exactly one hour
	assert.Equal(t, 60, totals.RegularMinutes)
	assertDecimal(t, hours("1"), totals.RegularHours, "regular")
	assert.Equal(t, "1", totals.RegularHours.String())
}

func TestAggregate_IsAdditive(t *testing.T) {
	records := sampleRecords()

	for split := 0; split <= len(records); split++ {
		left := Aggregate(records[:split], AllRecords())
		right := Aggregate(records[split:], AllRecords())
		whole := Aggregate(records, AllRecords())

		assert.True(t, whole.Equal(left.Add(right)), "split at %d", split)
	}
}

func TestAggregate_OrderIndependent(t *testing.T) {
	records := sampleRecords()
	reversed := make([]Record, len(records))
	for i, r := range records {
		reversed[len(records)-1-i] = r
	}

	assert.True(t, Aggregate(records, AllRecords()).Equal(Aggregate(reversed, AllRecords())))
}

func TestAggregate_UsesStoredPayNotCurrentRates(t *testing.T) {
	// GIVEN: A stored record whose salary differs from a fresh computation
	// WHEN: Aggregating
	// THEN: The stored salary is summed, nothing is re-priced
	r := record("a", date(2025, time.March, 3), clock(9, 0), clock(18, 0), DayNormal)
	r.Pay.Salary = 1234

	assert.Equal(t, int64(1234), Aggregate([]Record{r}, AllRecords()).Salary)
}

func TestAggregate_Filters(t *testing.T) {
	records := sampleRecords()

	tests := []struct {
		name      string
		filter    Filter
		wantCount int
		wantPay   int64
	}{
		{"all", AllRecords(), 5, Aggregate(records, AllRecords()).Salary},
		{"zero filter is all", Filter{}, 5, Aggregate(records, AllRecords()).Salary},
		{"calendar month", InMonth(2025, time.March), 3, 2470 + 3200},
		{"settlement cycle closing on the 25th", InSettlementCycle(date(2025, time.March, 10), 25), 3, 1600 + 2470 + 3200},
		{"inclusive range", InPeriod(generic.Period{Start: date(2025, time.March, 3), End: date(2025, time.March, 25)}), 2, 2470 + 3200},
		{"range without records", InMonth(2024, time.January), 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			totals := Aggregate(records, tt.filter)
			assert.Equal(t, tt.wantCount, totals.Count)
			assert.Equal(t, tt.wantPay, totals.Salary)
		})
	}
}

func TestFilter_String(t *testing.T) {
	assert.Equal(t, "all", AllRecords().String())
	assert.Equal(t, "[2025-03-01, 2025-03-31]", InMonth(2025, time.March).String())

	_, ok := AllRecords().Period()
	assert.False(t, ok)
	p, ok := InMonth(2025, time.February).Period()
	assert.True(t, ok)
	assert.Equal(t, "2025-02-28", p.End.String())
}

func TestSelect_NewestFirst(t *testing.T) {
	records := sampleRecords()
	sameDay := record("f", date(2025, time.March, 3), clock(9, 0), clock(18, 0), DayNormal)
	records = append(records, sameDay)

	selected := Select(records, InMonth(2025, time.March))

	ids := make([]RecordID, len(selected))
	for i, r := range selected {
		ids[i] = r.ID
	}
	assert.Equal(t, []RecordID{"d", "c", "f", "b"}, ids)
	assert.Equal(t, RecordID("a"), records[0].ID, "input must stay untouched")
}

func TestMonths(t *testing.T) {
	assert.Equal(t, []string{"2025-04", "2025-03", "2025-02"}, Months(sampleRecords()))
	assert.Equal(t, []string{}, Months(nil))
}
