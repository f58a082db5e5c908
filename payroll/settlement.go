package payroll

import (
	"context"
	"time"

	"github.com/Chung0221/salary-tracker/generic"
	"github.com/rs/zerolog/log"
)

// =============================================================================
// SETTLEMENT - Archived totals of a closed pay cycle
// =============================================================================

// SettlementRun freezes the totals of one settlement cycle. Deleting records
// afterwards does not change an archived run.
type SettlementRun struct {
	ID       string
	Period   generic.Period
	Totals   Totals
	ClosedAt time.Time
}

// Settle archives the totals of period. Each period can be settled once.
func (b *Book) Settle(ctx context.Context, period generic.Period) (SettlementRun, error) {
	if err := period.Validate(); err != nil {
		return SettlementRun{}, err
	}

	existing, err := b.Settlements.GetSettlement(ctx, period)
	if err != nil {
		return SettlementRun{}, err
	}
	if existing != nil {
		return SettlementRun{}, generic.ErrAlreadySettled
	}

	totals, err := b.Summary(ctx, InPeriod(period))
	if err != nil {
		return SettlementRun{}, err
	}

	run := SettlementRun{
		ID:       b.NewID(),
		Period:   period,
		Totals:   totals,
		ClosedAt: b.Now().UTC(),
	}
	if err := b.Settlements.SaveSettlement(ctx, run); err != nil {
		return SettlementRun{}, err
	}

	log.Info().
		Str("period", period.String()).
		Int("records", totals.Count).
		Int64("salary", totals.Salary).
		Msg("settlement archived")
	return run, nil
}

// SettleCycle archives the settlement cycle containing date, using the live
// settlement day.
func (b *Book) SettleCycle(ctx context.Context, date generic.TimePoint) (SettlementRun, error) {
	rates, err := b.Rates(ctx)
	if err != nil {
		return SettlementRun{}, err
	}
	return b.Settle(ctx, generic.SettlementCycle(date, rates.SettlementDay))
}

// SettleDue archives the most recently closed cycle before today if it has
// not been archived yet. It returns nil when there is nothing to do.
func (b *Book) SettleDue(ctx context.Context, today generic.TimePoint) (*SettlementRun, error) {
	rates, err := b.Rates(ctx)
	if err != nil {
		return nil, err
	}

	cycles := generic.PeriodConfig{Type: generic.PeriodSettlementCycle, SettlementDay: rates.SettlementDay}
	closed := cycles.Previous(cycles.PeriodFor(today))

	existing, err := b.Settlements.GetSettlement(ctx, closed)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, nil
	}

	run, err := b.Settle(ctx, closed)
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// ListSettlements returns archived runs newest first.
func (b *Book) ListSettlements(ctx context.Context) ([]SettlementRun, error) {
	return b.Settlements.ListSettlements(ctx)
}
