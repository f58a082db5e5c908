/*
handlers.go - HTTP API handlers for the salary tracker

PURPOSE:
  Exposes the record book via REST API. Handles HTTP request/response,
  JSON serialization, and delegates to payroll.Book.

ENDPOINTS:
  Settings:
    GET    /api/settings               Live rates
    PUT    /api/settings               Update rates (partial)

  Records:
    POST   /api/calculate              Price an entry without storing it
    GET    /api/records                List records (newest first)
    POST   /api/records                Add a record
    GET    /api/records/{id}           Get a record
    DELETE /api/records/{id}           Delete a record
    POST   /api/records/delete         Delete by ids or by date range

  Reports:
    GET    /api/summary                Totals for a filter
    GET    /api/months                 Months that have records
    GET    /api/export                 TSV / CSV / XLSX download

  Settlements:
    GET    /api/settlements            Archived cycles
    POST   /api/settlements            Settle the cycle containing a date

  Admin:
    POST   /api/import/legacy          Import the old tracker's storage blobs
    POST   /api/reset                  Delete everything (when supported)

FILTER QUERY (records, summary, export):
  month=2025-03             calendar month ("all" or empty for everything)
  cycle=2025-03-10          settlement cycle containing the date
  from=2025-03-01&to=...    inclusive range

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Record not found
  - 409: Conflict (already settled, duplicate id)
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/Chung0221/salary-tracker/factory"
	"github.com/Chung0221/salary-tracker/generic"
	"github.com/Chung0221/salary-tracker/payroll"
	"github.com/Chung0221/salary-tracker/report"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Resetter is implemented by stores that can wipe all data.
type Resetter interface {
	Reset(ctx context.Context) error
}

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Book *payroll.Book

	// Reset is optional; POST /api/reset answers 501 without it.
	Reset Resetter

	validate *validator.Validate
}

// NewHandler creates a new handler around book.
func NewHandler(book *payroll.Book) *Handler {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &Handler{
		Book:     book,
		validate: v,
	}
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// SETTINGS
// =============================================================================

// GetSettings returns the live rates.
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	rates, err := h.Book.Rates(r.Context())
	if err != nil {
		writeDomainError(w, "Failed to load settings", err)
		return
	}
	writeJSON(w, http.StatusOK, factory.RatesToJSON(rates))
}

// UpdateSettings overlays the given fields onto the live rates.
// Existing records keep the rates they were created with.
func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req factory.RatesJSON
	if !h.bind(w, r, &req) {
		return
	}

	ctx := r.Context()
	current, err := h.Book.Rates(ctx)
	if err != nil {
		writeDomainError(w, "Failed to load settings", err)
		return
	}

	updated := factory.RatesFromJSON(req, current)
	if err := h.Book.UpdateRates(ctx, updated); err != nil {
		writeDomainError(w, "Failed to update settings", err)
		return
	}
	writeJSON(w, http.StatusOK, factory.RatesToJSON(updated))
}

// =============================================================================
// RECORDS
// =============================================================================

// Calculate prices an entry under the live rates without storing it.
func (h *Handler) Calculate(w http.ResponseWriter, r *http.Request) {
	var req factory.EntryJSON
	if !h.bind(w, r, &req) {
		return
	}

	ctx := r.Context()
	entries, err := h.entryFactory(ctx)
	if err != nil {
		writeDomainError(w, "Failed to load settings", err)
		return
	}
	entry, err := entries.FromJSON(req)
	if err != nil {
		writeDomainError(w, "Invalid entry", err)
		return
	}

	pay, rates, err := h.Book.Preview(ctx, entry)
	if err != nil {
		writeDomainError(w, "Failed to calculate", err)
		return
	}

	writeJSON(w, http.StatusOK, CalculateResponse{
		BreakdownDTO: toBreakdownDTO(pay),
		NetHours:     payroll.NetHours(entry).String(),
		Rates:        factory.RatesToJSON(rates),
	})
}

// CreateRecord computes and stores a record.
func (h *Handler) CreateRecord(w http.ResponseWriter, r *http.Request) {
	var req factory.EntryJSON
	if !h.bind(w, r, &req) {
		return
	}

	ctx := r.Context()
	entries, err := h.entryFactory(ctx)
	if err != nil {
		writeDomainError(w, "Failed to load settings", err)
		return
	}
	entry, err := entries.FromJSON(req)
	if err != nil {
		writeDomainError(w, "Invalid entry", err)
		return
	}

	record, err := h.Book.Submit(ctx, entry)
	if err != nil {
		writeDomainError(w, "Failed to add record", err)
		return
	}

	writeJSON(w, http.StatusCreated, CreateRecordResponse{
		Record: toRecordDTO(entries, record),
		Next:   entries.ToJSON(payroll.NextEntry(entry)),
	})
}

// ListRecords returns records matching the filter query, newest first.
func (h *Handler) ListRecords(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	filter, err := h.filterFromQuery(ctx, r)
	if err != nil {
		writeDomainError(w, "Invalid filter", err)
		return
	}

	records, err := h.Book.List(ctx, filter)
	if err != nil {
		writeDomainError(w, "Failed to list records", err)
		return
	}

	entries := factory.NewEntryFactory(0)
	dtos := make([]RecordDTO, 0, len(records))
	for _, rec := range records {
		dtos = append(dtos, toRecordDTO(entries, rec))
	}
	writeJSON(w, http.StatusOK, map[string]any{"records": dtos})
}

// GetRecord returns one record.
func (h *Handler) GetRecord(w http.ResponseWriter, r *http.Request) {
	id := payroll.RecordID(chi.URLParam(r, "id"))

	record, err := h.Book.Record(r.Context(), id)
	if err != nil {
		writeDomainError(w, "Record not found", err)
		return
	}
	writeJSON(w, http.StatusOK, toRecordDTO(factory.NewEntryFactory(0), record))
}

// DeleteRecord removes one record.
func (h *Handler) DeleteRecord(w http.ResponseWriter, r *http.Request) {
	id := payroll.RecordID(chi.URLParam(r, "id"))

	n, err := h.Book.Delete(r.Context(), id)
	if err != nil {
		writeDomainError(w, "Failed to delete record", err)
		return
	}
	if n == 0 {
		writeDomainError(w, "Record not found", generic.ErrRecordNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"deleted": n})
}

// DeleteRecords removes records by ids or by an inclusive date range.
func (h *Handler) DeleteRecords(w http.ResponseWriter, r *http.Request) {
	var req DeleteRecordsRequest
	if !h.bind(w, r, &req) {
		return
	}

	ctx := r.Context()
	var (
		n   int
		err error
	)
	switch {
	case len(req.IDs) > 0 && (req.From != "" || req.To != ""):
		err = &generic.ValidationError{Field: "ids", Message: "ids and from/to cannot be combined"}
	case len(req.IDs) > 0:
		ids := make([]payroll.RecordID, len(req.IDs))
		for i, id := range req.IDs {
			ids[i] = payroll.RecordID(id)
		}
		n, err = h.Book.Delete(ctx, ids...)
	case req.From != "":
		var period generic.Period
		period, err = parsePeriod(req.From, req.To)
		if err == nil {
			n, err = h.Book.DeleteRange(ctx, period)
		}
	default:
		err = &generic.ValidationError{Field: "ids", Message: "either ids or from/to is required"}
	}
	if err != nil {
		writeDomainError(w, "Failed to delete records", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"deleted": n})
}

// =============================================================================
// REPORTS
// =============================================================================

// GetSummary returns totals for the filter query.
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	filter, err := h.filterFromQuery(ctx, r)
	if err != nil {
		writeDomainError(w, "Invalid filter", err)
		return
	}

	totals, err := h.Book.Summary(ctx, filter)
	if err != nil {
		writeDomainError(w, "Failed to summarize", err)
		return
	}
	writeJSON(w, http.StatusOK, toTotalsDTO(filter.String(), totals))
}

// ListMonths returns the YYYY-MM keys that have records, newest first.
func (h *Handler) ListMonths(w http.ResponseWriter, r *http.Request) {
	months, err := h.Book.Months(r.Context())
	if err != nil {
		writeDomainError(w, "Failed to list months", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"months": months})
}

// Export streams the filtered records as a TSV, CSV or XLSX file.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	format, err := report.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid format", err)
		return
	}

	ctx := r.Context()
	filter, err := h.filterFromQuery(ctx, r)
	if err != nil {
		writeDomainError(w, "Invalid filter", err)
		return
	}

	records, err := h.Book.List(ctx, filter)
	if err != nil {
		writeDomainError(w, "Failed to list records", err)
		return
	}
	totals := payroll.Aggregate(records, payroll.AllRecords())

	// Render fully before writing headers so a failure can still be a 500.
	var buf bytes.Buffer
	if err := report.Write(&buf, format, filter.String(), records, totals); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to export", err)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, exportFileName(filter, format)))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func exportFileName(filter payroll.Filter, format report.Format) string {
	name := "salary-all"
	if p, ok := filter.Period(); ok {
		name = fmt.Sprintf("salary-%s_%s", p.Start, p.End)
	}
	return name + format.Extension()
}

// =============================================================================
// SETTLEMENTS
// =============================================================================

// ListSettlements returns archived settlement runs, newest first.
func (h *Handler) ListSettlements(w http.ResponseWriter, r *http.Request) {
	runs, err := h.Book.ListSettlements(r.Context())
	if err != nil {
		writeDomainError(w, "Failed to list settlements", err)
		return
	}

	dtos := make([]SettlementDTO, 0, len(runs))
	for _, run := range runs {
		dtos = append(dtos, toSettlementDTO(run))
	}
	writeJSON(w, http.StatusOK, map[string]any{"settlements": dtos})
}

// Settle archives the settlement cycle containing the given date.
func (h *Handler) Settle(w http.ResponseWriter, r *http.Request) {
	var req SettleRequest
	if !h.bind(w, r, &req) {
		return
	}

	date, err := generic.ParseDate(req.Date)
	if err != nil {
		writeDomainError(w, "Invalid date", err)
		return
	}

	run, err := h.Book.SettleCycle(r.Context(), date)
	if err != nil {
		writeDomainError(w, "Failed to settle", err)
		return
	}
	writeJSON(w, http.StatusCreated, toSettlementDTO(run))
}

// =============================================================================
// ADMIN
// =============================================================================

// ImportLegacy loads the old tracker's settings and records. Both blobs are
// parsed before anything is saved; settings are then applied first so the
// imported records are priced with them. A failed import leaves the previous
// rates and no imported records behind.
func (h *Handler) ImportLegacy(w http.ResponseWriter, r *http.Request) {
	var req LegacyImportRequest
	if !h.bind(w, r, &req) {
		return
	}

	ctx := r.Context()
	rates, err := h.Book.Rates(ctx)
	if err != nil {
		writeDomainError(w, "Failed to load settings", err)
		return
	}

	previous := rates
	updateRates := false
	if raw := storedValue(req.Settings); raw != nil {
		rates, err = factory.ParseLegacySettings(raw, rates)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid salary_settings", err)
			return
		}
		if err := rates.Validate(); err != nil {
			writeDomainError(w, "Invalid salary_settings", err)
			return
		}
		updateRates = true
	}

	var entries []payroll.AttendanceEntry
	if raw := storedValue(req.Records); raw != nil {
		entries, err = factory.NewEntryFactory(rates.DefaultBreakMinutes).ParseLegacyRecords(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid salary_records", err)
			return
		}
	}

	// Both blobs are parsed; nothing was written before this point.
	resp := ImportResponse{}
	if updateRates {
		if err := h.Book.UpdateRates(ctx, rates); err != nil {
			writeDomainError(w, "Failed to update settings", err)
			return
		}
		resp.RatesUpdated = true
	}

	imported := make([]payroll.RecordID, 0, len(entries))
	for _, entry := range entries {
		rec, err := h.Book.Submit(ctx, entry)
		if err != nil {
			h.rollbackImport(ctx, imported, previous, resp.RatesUpdated)
			writeDomainError(w, "Failed to import records", err)
			return
		}
		imported = append(imported, rec.ID)
	}
	resp.Imported = len(imported)

	log.Info().Int("imported", resp.Imported).Bool("rates_updated", resp.RatesUpdated).Msg("legacy import finished")
	resp.Rates = factory.RatesToJSON(rates)
	writeJSON(w, http.StatusOK, resp)
}

// rollbackImport undoes a partially applied import.
func (h *Handler) rollbackImport(ctx context.Context, imported []payroll.RecordID, previous payroll.RateConfig, ratesUpdated bool) {
	if _, err := h.Book.Delete(ctx, imported...); err != nil {
		log.Error().Err(err).Int("records", len(imported)).Msg("failed to roll back imported records")
	}
	if ratesUpdated {
		if err := h.Book.UpdateRates(ctx, previous); err != nil {
			log.Error().Err(err).Msg("failed to restore rates after import")
		}
	}
}

// ResetDatabase clears all data.
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	if h.Reset == nil {
		writeError(w, http.StatusNotImplemented, "Reset not supported by this store", nil)
		return
	}
	if err := h.Reset.Reset(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}
	log.Warn().Msg("all data deleted")
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// HELPERS
// =============================================================================

// entryFactory fills omitted breaks with the live default.
func (h *Handler) entryFactory(ctx context.Context) (*factory.EntryFactory, error) {
	rates, err := h.Book.Rates(ctx)
	if err != nil {
		return nil, err
	}
	return factory.NewEntryFactory(rates.DefaultBreakMinutes), nil
}

// filterFromQuery reads month, cycle or from/to. No parameter selects everything.
func (h *Handler) filterFromQuery(ctx context.Context, r *http.Request) (payroll.Filter, error) {
	q := r.URL.Query()

	if month := q.Get("month"); month != "" && month != "all" {
		start, err := time.Parse("2006-01", month)
		if err != nil {
			return payroll.Filter{}, &generic.ParseError{Field: "month", Value: month, Err: err}
		}
		return payroll.InMonth(start.Year(), start.Month()), nil
	}

	if cycle := q.Get("cycle"); cycle != "" {
		date, err := generic.ParseDate(cycle)
		if err != nil {
			return payroll.Filter{}, err
		}
		rates, err := h.Book.Rates(ctx)
		if err != nil {
			return payroll.Filter{}, err
		}
		return payroll.InSettlementCycle(date, rates.SettlementDay), nil
	}

	if from, to := q.Get("from"), q.Get("to"); from != "" || to != "" {
		period, err := parsePeriod(from, to)
		if err != nil {
			return payroll.Filter{}, err
		}
		return payroll.InPeriod(period), nil
	}

	return payroll.AllRecords(), nil
}

func parsePeriod(from, to string) (generic.Period, error) {
	start, err := generic.ParseDate(from)
	if err != nil {
		return generic.Period{}, err
	}
	end, err := generic.ParseDate(to)
	if err != nil {
		return generic.Period{}, err
	}
	period := generic.Period{Start: start, End: end}
	return period, period.Validate()
}

// storedValue unwraps a value copied out of key/value storage, where JSON is
// kept as a string. It returns nil for an absent or null value.
func storedValue(raw json.RawMessage) []byte {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return []byte(s)
		}
	}
	return raw
}

// bind decodes the JSON body into dst and validates it. On failure it writes
// a 400 response and returns false.
func (h *Handler) bind(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", errors.New(formatBindingError(err)))
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		writeError(w, http.StatusBadRequest, "Validation failed", errors.New(formatBindingError(err)))
		return false
	}
	return true
}

func formatBindingError(err error) string {
	if errors.Is(err, io.EOF) {
		return "Request body is empty"
	}

	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return fmt.Sprintf("Invalid JSON at byte offset %d", syntaxErr.Offset)
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return fmt.Sprintf("Field '%s' should be of type %s", typeErr.Field, typeErr.Type.String())
	}

	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		out := make([]string, 0, len(ve))
		for _, fe := range ve {
			out = append(out, formatFieldError(fe))
		}
		return strings.Join(out, ", ")
	}

	return err.Error()
}

func formatFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("Field '%s' is required", fe.Field())
	case "required_with":
		return fmt.Sprintf("Field '%s' is required together with '%s'", fe.Field(), strings.ToLower(fe.Param()))
	case "min":
		return fmt.Sprintf("Field '%s' must be at least %s", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("Field '%s' must be at most %s", fe.Field(), fe.Param())
	}
	return fmt.Sprintf("Field '%s' failed validation for '%s'", fe.Field(), fe.Tag())
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError picks the status from the error kind.
func writeDomainError(w http.ResponseWriter, message string, err error) {
	status := http.StatusInternalServerError
	switch {
	case generic.IsClientError(err):
		status = http.StatusBadRequest
	case generic.IsNotFound(err):
		status = http.StatusNotFound
	case generic.IsConflict(err):
		status = http.StatusConflict
	}
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Msg(message)
	}
	writeError(w, status, message, err)
}
