package payroll_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/Chung0221/salary-tracker/generic"
	"github.com/Chung0221/salary-tracker/payroll"
	"github.com/Chung0221/salary-tracker/store/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func newTestBook(t *testing.T) *payroll.Book {
	t.Helper()
	store := memory.NewMemory()
	book := payroll.NewBook(store, store, store)

	seq := 0
	book.NewID = func() string {
		seq++
		return fmt.Sprintf("id-%03d", seq)
	}
	book.Now = func() time.Time { return time.Date(2025, time.April, 1, 12, 0, 0, 0, time.UTC) }
	return book
}

func day(year int, month time.Month, d int) generic.TimePoint {
	return generic.NewTimePoint(year, month, d)
}

func shift(date generic.TimePoint, in, out string, dayType payroll.DayType) payroll.AttendanceEntry {
	checkIn, _ := generic.ParseClockTime(in)
	checkOut, _ := generic.ParseClockTime(out)
	return payroll.AttendanceEntry{
		Date:         date,
		CheckIn:      checkIn,
		CheckOut:     checkOut,
		BreakMinutes: 60,
		DayType:      dayType,
	}
}

// =============================================================================
// SUBMIT / RATE SNAPSHOT
// =============================================================================

func TestBook_SubmitComputesAndSnapshots(t *testing.T) {
	ctx := context.Background()
	book := newTestBook(t)

	rec, err := book.Submit(ctx, shift(day(2025, time.March, 3), "09:00", "21:00", payroll.DayNormal))
	require.NoError(t, err)

	assert.Equal(t, payroll.RecordID("id-001"), rec.ID)
	assert.Equal(t, int64(2470), rec.Pay.Salary)
	assert.True(t, rec.AppliedRate().Equal(decimal.NewFromInt(200)))

	stored, err := book.Record(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.Pay.Salary, stored.Pay.Salary)
}

func TestBook_RateChangeDoesNotRewriteHistory(t *testing.T) {
	// GIVEN: A record computed at rate 200
	// WHEN: The hourly rate is changed to 300 and a second record is added
	// THEN: The first record keeps salary 1600 and rate 200, the second uses 300

	ctx := context.Background()
	book := newTestBook(t)

	first, err := book.Submit(ctx, shift(day(2025, time.March, 3), "09:00", "18:00", payroll.DayNormal))
	require.NoError(t, err)

	rates := payroll.DefaultRateConfig()
	rates.HourlyRate = decimal.NewFromInt(300)
	require.NoError(t, book.UpdateRates(ctx, rates))

	second, err := book.Submit(ctx, shift(day(2025, time.March, 4), "09:00", "18:00", payroll.DayNormal))
	require.NoError(t, err)

	reloaded, err := book.Record(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1600), reloaded.Pay.Salary)
	assert.True(t, reloaded.AppliedRate().Equal(decimal.NewFromInt(200)))
	assert.Equal(t, int64(2400), second.Pay.Salary)

	totals, err := book.Summary(ctx, payroll.InMonth(2025, time.March))
	require.NoError(t, err)
	assert.Equal(t, int64(4000), totals.Salary)
}

func TestBook_UpdateRatesRejectsInvalid(t *testing.T) {
	ctx := context.Background()
	book := newTestBook(t)

	rates := payroll.DefaultRateConfig()
	rates.HourlyRate = decimal.Zero
	err := book.UpdateRates(ctx, rates)
	assert.ErrorIs(t, err, generic.ErrValidation)

	live, err := book.Rates(ctx)
	require.NoError(t, err)
	assert.True(t, live.HourlyRate.Equal(decimal.NewFromInt(200)), "defaults stay live")
}

func TestBook_Preview(t *testing.T) {
	ctx := context.Background()
	book := newTestBook(t)

	pay, rates, err := book.Preview(ctx, shift(day(2025, time.March, 3), "09:00", "14:00", payroll.DayRestDayWork))
	require.NoError(t, err)
	assert.Equal(t, 25, rates.SettlementDay)
	assert.Equal(t, int64(1204), pay.Salary) // 4h net: 2*268 + 2*334

	records, err := book.List(ctx, payroll.AllRecords())
	require.NoError(t, err)
	assert.Empty(t, records, "preview must not store")
}

// =============================================================================
// LIST / SUMMARY / MONTHS
// =============================================================================

func TestBook_ListAndSummary(t *testing.T) {
	ctx := context.Background()
	book := newTestBook(t)

	entries := []payroll.AttendanceEntry{
		shift(day(2025, time.February, 27), "09:00", "18:00", payroll.DayNormal),
		shift(day(2025, time.March, 3), "09:00", "21:00", payroll.DayNormal),
		shift(day(2025, time.March, 26), "09:00", "18:00", payroll.DaySickLeave),
	}
	for _, e := range entries {
		_, err := book.Submit(ctx, e)
		require.NoError(t, err)
	}

	all, err := book.List(ctx, payroll.AllRecords())
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "2025-03-26", all[0].Entry.Date.String())

	cycle, err := book.Summary(ctx, payroll.InSettlementCycle(day(2025, time.March, 1), 25))
	require.NoError(t, err)
	assert.Equal(t, 2, cycle.Count)
	assert.Equal(t, int64(1600+2470), cycle.Salary)

	empty, err := book.Summary(ctx, payroll.InMonth(2030, time.January))
	require.NoError(t, err)
	assert.True(t, empty.Equal(payroll.ZeroTotals()))

	months, err := book.Months(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"2025-03", "2025-02"}, months)
}

func TestBook_SummaryRejectsInvertedPeriod(t *testing.T) {
	book := newTestBook(t)

	_, err := book.Summary(context.Background(), payroll.InPeriod(generic.Period{
		Start: day(2025, time.March, 31),
		End:   day(2025, time.March, 1),
	}))
	assert.ErrorIs(t, err, generic.ErrInvalidPeriod)
}

// =============================================================================
// DELETE
// =============================================================================

func TestBook_Delete(t *testing.T) {
	ctx := context.Background()
	book := newTestBook(t)

	a, err := book.Submit(ctx, shift(day(2025, time.March, 3), "09:00", "18:00", payroll.DayNormal))
	require.NoError(t, err)
	b, err := book.Submit(ctx, shift(day(2025, time.March, 4), "09:00", "18:00", payroll.DayNormal))
	require.NoError(t, err)

	n, err := book.Delete(ctx, a.ID, "missing")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = book.Record(ctx, a.ID)
	assert.ErrorIs(t, err, generic.ErrRecordNotFound)

	totals, err := book.Summary(ctx, payroll.AllRecords())
	require.NoError(t, err)
	assert.Equal(t, b.Pay.Salary, totals.Salary)

	n, err = book.Delete(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestBook_DeleteRange(t *testing.T) {
	ctx := context.Background()
	book := newTestBook(t)

	for d := 1; d <= 10; d++ {
		_, err := book.Submit(ctx, shift(day(2025, time.March, d), "09:00", "18:00", payroll.DayNormal))
		require.NoError(t, err)
	}

	n, err := book.DeleteRange(ctx, generic.Period{Start: day(2025, time.March, 3), End: day(2025, time.March, 7)})
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	totals, err := book.Summary(ctx, payroll.AllRecords())
	require.NoError(t, err)
	assert.Equal(t, 5, totals.Count)
	assert.Equal(t, int64(5*1600), totals.Salary)
}

// =============================================================================
// SETTLEMENT
// =============================================================================

func TestBook_SettleArchivesTotalsOnce(t *testing.T) {
	ctx := context.Background()
	book := newTestBook(t)

	_, err := book.Submit(ctx, shift(day(2025, time.March, 3), "09:00", "21:00", payroll.DayNormal))
	require.NoError(t, err)

	run, err := book.SettleCycle(ctx, day(2025, time.March, 10))
	require.NoError(t, err)
	assert.Equal(t, "[2025-02-26, 2025-03-25]", run.Period.String())
	assert.Equal(t, int64(2470), run.Totals.Salary)

	_, err = book.SettleCycle(ctx, day(2025, time.March, 20))
	assert.ErrorIs(t, err, generic.ErrAlreadySettled)
	assert.True(t, generic.IsConflict(err))

	// Archived totals survive record deletion.
	_, err = book.DeleteRange(ctx, run.Period)
	require.NoError(t, err)

	runs, err := book.ListSettlements(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, int64(2470), runs[0].Totals.Salary)
}

func TestBook_SettleDue(t *testing.T) {
	// GIVEN: Records in the cycle Feb 26 - Mar 25
	// WHEN: SettleDue runs on Mar 27 and again on Mar 28
	// THEN: The first call archives the closed cycle, the second does nothing

	ctx := context.Background()
	book := newTestBook(t)

	_, err := book.Submit(ctx, shift(day(2025, time.March, 25), "09:00", "18:00", payroll.DayNormal))
	require.NoError(t, err)
	_, err = book.Submit(ctx, shift(day(2025, time.March, 26), "09:00", "18:00", payroll.DayNormal))
	require.NoError(t, err)

	run, err := book.SettleDue(ctx, day(2025, time.March, 27))
	require.NoError(t, err)
	require.NotNil(t, run)
	assert.Equal(t, "[2025-02-26, 2025-03-25]", run.Period.String())
	assert.Equal(t, 1, run.Totals.Count)

	again, err := book.SettleDue(ctx, day(2025, time.March, 28))
	require.NoError(t, err)
	assert.Nil(t, again)
}

func TestBook_SettleRejectsInvertedPeriod(t *testing.T) {
	book := newTestBook(t)

	_, err := book.Settle(context.Background(), generic.Period{
		Start: day(2025, time.March, 25),
		End:   day(2025, time.March, 1),
	})
	assert.ErrorIs(t, err, generic.ErrInvalidPeriod)
}

// =============================================================================
// FORM HELPERS
// =============================================================================

func TestNextEntry(t *testing.T) {
	prev := shift(day(2025, time.January, 31), "08:30", "17:30", payroll.DayDoublePay)
	prev.Note = "雙薪"

	next := payroll.NextEntry(prev)

	assert.Equal(t, "2025-02-01", next.Date.String())
	assert.Equal(t, prev.CheckIn, next.CheckIn)
	assert.Equal(t, prev.CheckOut, next.CheckOut)
	assert.Equal(t, prev.BreakMinutes, next.BreakMinutes)
	assert.Equal(t, payroll.DayNormal, next.DayType)
	assert.Empty(t, next.Note)
}
