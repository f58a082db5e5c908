/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. Hours, rates and
  multipliers travel as decimal strings so no precision is lost in
  JavaScript clients; salaries are integers.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

TYPES:
  Entries:     factory.EntryJSON (request body of /calculate and /records)
  Settings:    factory.RatesJSON
  Records:     RecordDTO, BreakdownDTO, CreateRecordResponse, DeleteRecordsRequest
  Totals:      TotalsDTO
  Settlements: SettlementDTO, SettleRequest
  Import:      LegacyImportRequest, ImportResponse

VALIDATION:
  Request types carry go-playground/validator tags; see bind in handlers.go.

SEE ALSO:
  - handlers.go: Uses these types
  - factory/entry.go: EntryJSON type
*/
package api

import (
	"encoding/json"
	"time"

	"github.com/Chung0221/salary-tracker/factory"
	"github.com/Chung0221/salary-tracker/payroll"
)

// =============================================================================
// RECORDS
// =============================================================================

// BreakdownDTO is a PayBreakdown in API responses.
type BreakdownDTO struct {
	RegularHours       string `json:"regular_hours"`
	OvertimeTier1Hours string `json:"overtime_tier1_hours"`
	OvertimeTier2Hours string `json:"overtime_tier2_hours"`
	OvertimeTotalHours string `json:"overtime_total_hours"`
	Salary             int64  `json:"salary"`
}

// RateSnapshotDTO is the rate set a record was priced with.
type RateSnapshotDTO struct {
	HourlyRate          string `json:"hourly_rate"`
	OvertimeMultiplier1 string `json:"overtime_multiplier1"`
	OvertimeMultiplier2 string `json:"overtime_multiplier2"`
}

// RecordDTO represents a stored record in API responses.
type RecordDTO struct {
	ID string `json:"id"`
	factory.EntryJSON
	BreakdownDTO
	AppliedRate string          `json:"applied_rate"`
	Applied     RateSnapshotDTO `json:"applied_rates"`
	CreatedAt   string          `json:"created_at"`
}

// CalculateResponse is the dry-run result of POST /api/calculate.
type CalculateResponse struct {
	BreakdownDTO
	NetHours string            `json:"net_hours"`
	Rates    factory.RatesJSON `json:"rates"`
}

// CreateRecordResponse returns the stored record and the suggested next entry.
type CreateRecordResponse struct {
	Record RecordDTO         `json:"record"`
	Next   factory.EntryJSON `json:"next"`
}

// DeleteRecordsRequest deletes either by ids or by an inclusive date range.
type DeleteRecordsRequest struct {
	IDs  []string `json:"ids" validate:"omitempty,dive,required"`
	From string   `json:"from" validate:"required_with=To"`
	To   string   `json:"to" validate:"required_with=From"`
}

// =============================================================================
// TOTALS / SETTLEMENTS
// =============================================================================

// TotalsDTO represents aggregated totals.
type TotalsDTO struct {
	Scope              string `json:"scope"`
	Count              int    `json:"count"`
	Salary             int64  `json:"salary"`
	RegularHours       string `json:"regular_hours"`
	OvertimeTier1Hours string `json:"overtime_tier1_hours"`
	OvertimeTier2Hours string `json:"overtime_tier2_hours"`
	OvertimeTotalHours string `json:"overtime_total_hours"`
}

// SettlementDTO represents an archived settlement run.
type SettlementDTO struct {
	ID          string    `json:"id"`
	PeriodStart string    `json:"period_start"`
	PeriodEnd   string    `json:"period_end"`
	Totals      TotalsDTO `json:"totals"`
	ClosedAt    string    `json:"closed_at"`
}

// SettleRequest settles the cycle containing Date.
type SettleRequest struct {
	Date string `json:"date" validate:"required"`
}

// =============================================================================
// IMPORT
// =============================================================================

// LegacyImportRequest carries the old tracker's storage values. Each field
// may be the raw JSON value or the JSON-encoded string kept in storage.
type LegacyImportRequest struct {
	Settings json.RawMessage `json:"salary_settings,omitempty"`
	Records  json.RawMessage `json:"salary_records,omitempty"`
}

// ImportResponse reports what an import changed.
type ImportResponse struct {
	Imported     int               `json:"imported"`
	RatesUpdated bool              `json:"rates_updated"`
	Rates        factory.RatesJSON `json:"rates"`
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func toBreakdownDTO(p payroll.PayBreakdown) BreakdownDTO {
	return BreakdownDTO{
		RegularHours:       p.RegularHours.String(),
		OvertimeTier1Hours: p.OvertimeTier1Hours.String(),
		OvertimeTier2Hours: p.OvertimeTier2Hours.String(),
		OvertimeTotalHours: p.OvertimeTotalHours.String(),
		Salary:             p.Salary,
	}
}

func toRecordDTO(entries *factory.EntryFactory, r payroll.Record) RecordDTO {
	return RecordDTO{
		ID:           string(r.ID),
		EntryJSON:    entries.ToJSON(r.Entry),
		BreakdownDTO: toBreakdownDTO(r.Pay),
		AppliedRate:  r.AppliedRate().String(),
		Applied: RateSnapshotDTO{
			HourlyRate:          r.Applied.HourlyRate.String(),
			OvertimeMultiplier1: r.Applied.OvertimeMultiplier1.String(),
			OvertimeMultiplier2: r.Applied.OvertimeMultiplier2.String(),
		},
		CreatedAt: r.CreatedAt.Format(time.RFC3339),
	}
}

func toTotalsDTO(scope string, t payroll.Totals) TotalsDTO {
	return TotalsDTO{
		Scope:              scope,
		Count:              t.Count,
		Salary:             t.Salary,
		RegularHours:       t.RegularHours.String(),
		OvertimeTier1Hours: t.OvertimeTier1Hours.String(),
		OvertimeTier2Hours: t.OvertimeTier2Hours.String(),
		OvertimeTotalHours: t.OvertimeTotalHours.String(),
	}
}

func toSettlementDTO(run payroll.SettlementRun) SettlementDTO {
	return SettlementDTO{
		ID:          run.ID,
		PeriodStart: run.Period.Start.String(),
		PeriodEnd:   run.Period.End.String(),
		Totals:      toTotalsDTO(run.Period.String(), run.Totals),
		ClosedAt:    run.ClosedAt.Format(time.RFC3339),
	}
}
