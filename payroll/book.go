/*
book.go - Record lifecycle on top of the stores

PURPOSE:
  Book is the explicit record collection the rest of the application talks
  to. It computes pay at submission time, freezes the live rates into the
  record, and answers list/summary queries by handing stored records to the
  pure aggregator.

RATE SNAPSHOT:
  Submit reads the live RateConfig exactly once and copies it by value into
  the record. UpdateRates only writes the settings store; stored records are
  never touched, so historical totals are stable.

FLOW:
  entry -> Submit -> Compute -> Record{Pay, Applied} -> RecordStore.Append
  filter -> Summary -> RecordStore.ListRange -> Aggregate -> Totals
*/
package payroll

import (
	"context"
	"time"

	"github.com/Chung0221/salary-tracker/generic"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Book holds all dependencies of the record lifecycle.
type Book struct {
	Records     RecordStore
	Settings    SettingsStore
	Settlements SettlementStore

	// Defaults are returned by Rates until settings are saved.
	Defaults RateConfig

	Now   func() time.Time
	NewID func() string
}

// NewBook creates a book with DefaultRateConfig, wall-clock time and UUIDv7 ids.
func NewBook(records RecordStore, settings SettingsStore, settlements SettlementStore) *Book {
	return &Book{
		Records:     records,
		Settings:    settings,
		Settlements: settlements,
		Defaults:    DefaultRateConfig(),
		Now:         time.Now,
		NewID:       newTimeOrderedID,
	}
}

// newTimeOrderedID returns a UUIDv7, which sorts by creation time.
func newTimeOrderedID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// =============================================================================
// SETTINGS
// =============================================================================

// Rates returns the live configuration, or Defaults if none was saved.
func (b *Book) Rates(ctx context.Context) (RateConfig, error) {
	rates, err := b.Settings.LoadRates(ctx)
	if err != nil {
		return RateConfig{}, err
	}
	if rates == nil {
		return b.Defaults, nil
	}
	return *rates, nil
}

// UpdateRates validates and saves a new live configuration. Existing
// records keep their snapshots.
func (b *Book) UpdateRates(ctx context.Context, rates RateConfig) error {
	if err := rates.Validate(); err != nil {
		return err
	}
	if err := b.Settings.SaveRates(ctx, rates); err != nil {
		return err
	}
	log.Info().
		Str("hourly_rate", rates.HourlyRate.String()).
		Str("overtime_multiplier1", rates.OvertimeMultiplier1.String()).
		Str("overtime_multiplier2", rates.OvertimeMultiplier2.String()).
		Int("settlement_day", rates.SettlementDay).
		Msg("rates updated")
	return nil
}

// =============================================================================
// RECORDS
// =============================================================================

// Preview prices an entry under the live rates without storing it.
func (b *Book) Preview(ctx context.Context, entry AttendanceEntry) (PayBreakdown, RateConfig, error) {
	rates, err := b.Rates(ctx)
	if err != nil {
		return PayBreakdown{}, RateConfig{}, err
	}
	return Compute(entry, rates), rates, nil
}

// Submit computes and stores a new record.
func (b *Book) Submit(ctx context.Context, entry AttendanceEntry) (Record, error) {
	rates, err := b.Rates(ctx)
	if err != nil {
		return Record{}, err
	}

	record := Record{
		ID:        RecordID(b.NewID()),
		Entry:     entry,
		Pay:       Compute(entry, rates),
		Applied:   rates.Snapshot(),
		CreatedAt: b.Now().UTC(),
	}
	if err := b.Records.Append(ctx, record); err != nil {
		return Record{}, err
	}

	log.Info().
		Str("record_id", string(record.ID)).
		Str("date", entry.Date.String()).
		Str("day_type", entry.DayType.String()).
		Int64("salary", record.Pay.Salary).
		Msg("record added")
	return record, nil
}

// Record returns a single stored record.
func (b *Book) Record(ctx context.Context, id RecordID) (Record, error) {
	return b.Records.Get(ctx, id)
}

// List returns matching records newest first.
func (b *Book) List(ctx context.Context, filter Filter) ([]Record, error) {
	records, err := b.load(ctx, filter)
	if err != nil {
		return nil, err
	}
	return Select(records, filter), nil
}

// Summary aggregates matching records.
func (b *Book) Summary(ctx context.Context, filter Filter) (Totals, error) {
	records, err := b.load(ctx, filter)
	if err != nil {
		return Totals{}, err
	}
	return Aggregate(records, filter), nil
}

// Months lists the YYYY-MM keys that have at least one record.
func (b *Book) Months(ctx context.Context) ([]string, error) {
	records, err := b.Records.List(ctx)
	if err != nil {
		return nil, err
	}
	return Months(records), nil
}

// Delete removes records by id and reports how many were removed.
func (b *Book) Delete(ctx context.Context, ids ...RecordID) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	n, err := b.Records.Delete(ctx, ids)
	if err != nil {
		return 0, err
	}
	log.Info().Int("requested", len(ids)).Int("deleted", n).Msg("records deleted")
	return n, nil
}

// DeleteRange removes every record dated within period.
func (b *Book) DeleteRange(ctx context.Context, period generic.Period) (int, error) {
	if err := period.Validate(); err != nil {
		return 0, err
	}
	n, err := b.Records.DeleteRange(ctx, period.Start, period.End)
	if err != nil {
		return 0, err
	}
	log.Info().Str("period", period.String()).Int("deleted", n).Msg("records deleted by range")
	return n, nil
}

// NextEntry prepares the form for the following day: same times and break,
// date advanced by one day, day type and note reset.
func NextEntry(prev AttendanceEntry) AttendanceEntry {
	next := prev
	next.Date = prev.Date.AddDays(1)
	next.DayType = DayNormal
	next.Note = ""
	return next
}

// load narrows the store query to the filter's range when there is one.
func (b *Book) load(ctx context.Context, filter Filter) ([]Record, error) {
	if p, ok := filter.Period(); ok {
		if err := p.Validate(); err != nil {
			return nil, err
		}
		return b.Records.ListRange(ctx, p.Start, p.End)
	}
	return b.Records.List(ctx)
}
