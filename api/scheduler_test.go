package api

import (
	"context"
	"testing"
	"time"

	"github.com/Chung0221/salary-tracker/generic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettlementScheduler_RunNow(t *testing.T) {
	ctx := context.Background()
	s := newTestServer(t)
	s.createRecord(t, entryBody("2025-03-10", "09:00", "21:00"))

	scheduler := NewSettlementScheduler(s.book)
	scheduler.Today = func() generic.TimePoint { return generic.NewTimePoint(2025, time.March, 27) }

	// WHEN: Checking after the March 25 settlement day
	run, err := scheduler.RunNow(ctx)

	// THEN: The closed cycle is archived
	require.NoError(t, err)
	require.NotNil(t, run)
	assert.Equal(t, "2025-02-26", run.Period.Start.String())
	assert.Equal(t, "2025-03-25", run.Period.End.String())
	assert.Equal(t, int64(2470), run.Totals.Salary)

	// AND: A second check finds nothing to do
	run, err = scheduler.RunNow(ctx)
	require.NoError(t, err)
	assert.Nil(t, run)
}

func TestSettlementScheduler_StartStop(t *testing.T) {
	s := newTestServer(t)

	scheduler := NewSettlementScheduler(s.book)
	scheduler.CheckInterval = time.Hour
	scheduler.Today = func() generic.TimePoint { return generic.NewTimePoint(2025, time.March, 27) }

	// Start runs one check immediately
	scheduler.Start()
	require.Eventually(t, func() bool {
		runs, err := s.book.ListSettlements(context.Background())
		return err == nil && len(runs) == 1
	}, time.Second, 10*time.Millisecond)
	scheduler.Stop()

	// Stop is idempotent and the scheduler can be restarted
	scheduler.Stop()
	scheduler.Start()
	scheduler.Stop()
}

func TestSettlementScheduler_Disabled(t *testing.T) {
	s := newTestServer(t)

	scheduler := NewSettlementScheduler(s.book)
	scheduler.Enabled = false
	scheduler.Start()
	scheduler.Stop()

	runs, err := s.book.ListSettlements(context.Background())
	require.NoError(t, err)
	assert.Empty(t, runs)
}
