package memory

import (
	"context"
	"testing"
	"time"

	"github.com/Chung0221/salary-tracker/generic"
	"github.com/Chung0221/salary-tracker/payroll"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rec(id string, month time.Month, day int) payroll.Record {
	return payroll.Record{
		ID:    payroll.RecordID(id),
		Entry: payroll.AttendanceEntry{Date: generic.NewTimePoint(2025, month, day)},
	}
}

func TestMemory_AppendKeepsDateOrder(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	require.NoError(t, m.Append(ctx, rec("b", time.March, 10)))
	require.NoError(t, m.Append(ctx, rec("a", time.March, 1)))
	require.NoError(t, m.Append(ctx, rec("c", time.March, 10)))
	assert.ErrorIs(t, m.Append(ctx, rec("a", time.April, 1)), generic.ErrDuplicateRecord)

	all, err := m.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, payroll.RecordID("a"), all[0].ID)
	assert.Equal(t, payroll.RecordID("b"), all[1].ID)
	assert.Equal(t, payroll.RecordID("c"), all[2].ID)

	all[0].ID = "mutated"
	again, _ := m.List(ctx)
	assert.Equal(t, payroll.RecordID("a"), again[0].ID, "List returns a copy")
}

func TestMemory_DeleteFreesID(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	require.NoError(t, m.Append(ctx, rec("a", time.March, 1)))
	require.NoError(t, m.Append(ctx, rec("b", time.March, 2)))

	n, err := m.Delete(ctx, []payroll.RecordID{"a"})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = m.Get(ctx, "a")
	assert.ErrorIs(t, err, generic.ErrRecordNotFound)
	assert.NoError(t, m.Append(ctx, rec("a", time.March, 5)))

	n, err = m.DeleteRange(ctx, generic.NewTimePoint(2025, time.March, 2), generic.NewTimePoint(2025, time.March, 5))
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestMemory_Settlements(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	feb := generic.MonthPeriod(2025, time.February)
	mar := generic.MonthPeriod(2025, time.March)

	require.NoError(t, m.SaveSettlement(ctx, payroll.SettlementRun{ID: "feb", Period: feb}))
	require.NoError(t, m.SaveSettlement(ctx, payroll.SettlementRun{ID: "mar", Period: mar}))
	assert.ErrorIs(t, m.SaveSettlement(ctx, payroll.SettlementRun{ID: "again", Period: feb}), generic.ErrAlreadySettled)

	runs, err := m.ListSettlements(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "mar", runs[0].ID)

	got, err := m.GetSettlement(ctx, feb)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "feb", got.ID)
}

func TestMemory_Rates(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	rates, err := m.LoadRates(ctx)
	require.NoError(t, err)
	assert.Nil(t, rates)

	require.NoError(t, m.SaveRates(ctx, payroll.DefaultRateConfig()))
	rates, err = m.LoadRates(ctx)
	require.NoError(t, err)
	require.NotNil(t, rates)
	assert.Equal(t, 25, rates.SettlementDay)
}

func TestMemory_Reset(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	require.NoError(t, m.Append(ctx, rec("a", time.March, 1)))
	require.NoError(t, m.SaveRates(ctx, payroll.DefaultRateConfig()))
	require.NoError(t, m.SaveSettlement(ctx, payroll.SettlementRun{
		ID:     "run-1",
		Period: generic.SettlementCycle(generic.NewTimePoint(2025, time.March, 1), 25),
	}))

	require.NoError(t, m.Reset(ctx))

	all, err := m.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
	rates, err := m.LoadRates(ctx)
	require.NoError(t, err)
	assert.Nil(t, rates)
	runs, err := m.ListSettlements(ctx)
	require.NoError(t, err)
	assert.Empty(t, runs)

	// The id is free again
	assert.NoError(t, m.Append(ctx, rec("a", time.March, 1)))
}
