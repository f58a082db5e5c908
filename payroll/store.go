/*
store.go - Persistence interfaces for records, settings and settlements

PURPOSE:
  Defines the boundary between the payroll logic and the database.
  Different implementations can use SQLite or in-memory storage.

RECORDS ARE IMMUTABLE:
  RecordStore has Append and Delete but no Update. A correction is a
  delete followed by a fresh Append, which recomputes pay under the rates
  live at that moment.

IMPLEMENTATIONS:
  - store/sqlite/sqlite.go: SQLite (file or :memory:)
  - store/memory/memory.go: In-memory for testing

SEE ALSO:
  - book.go: Higher-level service using these stores
*/
package payroll

import (
	"context"

	"github.com/Chung0221/salary-tracker/generic"
)

// RecordStore persists computed records.
type RecordStore interface {
	// Append stores a record. Returns generic.ErrDuplicateRecord if the id exists.
	Append(ctx context.Context, r Record) error

	// Get returns the record or generic.ErrRecordNotFound.
	Get(ctx context.Context, id RecordID) (Record, error)

	// List returns every record.
	List(ctx context.Context) ([]Record, error)

	// ListRange returns records dated within [from, to].
	ListRange(ctx context.Context, from, to generic.TimePoint) ([]Record, error)

	// Delete removes the given ids and reports how many existed.
	Delete(ctx context.Context, ids []RecordID) (int, error)

	// DeleteRange removes records dated within [from, to].
	DeleteRange(ctx context.Context, from, to generic.TimePoint) (int, error)
}

// SettingsStore persists the live RateConfig.
type SettingsStore interface {
	// LoadRates returns nil when nothing was saved yet.
	LoadRates(ctx context.Context) (*RateConfig, error)
	SaveRates(ctx context.Context, rates RateConfig) error
}

// SettlementStore persists archived settlement runs.
type SettlementStore interface {
	// SaveSettlement returns generic.ErrAlreadySettled if the period was archived.
	SaveSettlement(ctx context.Context, run SettlementRun) error

	// GetSettlement returns nil when the period was never archived.
	GetSettlement(ctx context.Context, period generic.Period) (*SettlementRun, error)

	// ListSettlements returns runs newest period first.
	ListSettlements(ctx context.Context) ([]SettlementRun, error)
}
