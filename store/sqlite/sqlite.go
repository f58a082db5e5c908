/*
Package sqlite provides a SQLite-backed implementation of the payroll stores.

PURPOSE:
  Implements payroll.RecordStore, payroll.SettingsStore and
  payroll.SettlementStore on a single SQLite database file.

KEY TABLES:
  records:          One row per computed record, entry + breakdown + rate snapshot
  settings:         Key/value JSON blobs (the live RateConfig lives under "rates")
  settlement_runs:  Archived totals, one per settlement period

NUMERIC STORAGE:
  Hour buckets are stored as INTEGER minutes and rebuilt into hours on read.
  Rates are decimal TEXT (decimal.Decimal.String()), never REAL, so values
  read back are exactly the values computed. Salaries are INTEGER. A column
  that fails to parse is a scan error, never a silent zero.

DATES:
  Entry dates are TEXT "YYYY-MM-DD", so range filters compare lexicographically.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety on top of SQLite's own locking.

USAGE:
  store, err := sqlite.New("./salary.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  book := payroll.NewBook(store, store, store)
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Chung0221/salary-tracker/generic"
	"github.com/Chung0221/salary-tracker/payroll"
	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
)

// Store implements all payroll storage interfaces using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var (
	_ payroll.RecordStore     = (*Store)(nil)
	_ payroll.SettingsStore   = (*Store)(nil)
	_ payroll.SettlementStore = (*Store)(nil)
)

const ratesKey = "rates"

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		// Every pooled connection would otherwise get its own empty database.
		db.SetMaxOpenConns(1)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Records (immutable once written)
	CREATE TABLE IF NOT EXISTS records (
		id TEXT PRIMARY KEY,
		entry_date TEXT NOT NULL,
		check_in TEXT NOT NULL,
		check_out TEXT NOT NULL,
		break_minutes INTEGER NOT NULL,
		day_type TEXT NOT NULL,
		note TEXT,
		regular_minutes INTEGER NOT NULL,
		overtime_tier1_minutes INTEGER NOT NULL,
		overtime_tier2_minutes INTEGER NOT NULL,
		salary INTEGER NOT NULL,
		applied_rate TEXT NOT NULL,
		applied_multiplier1 TEXT NOT NULL,
		applied_multiplier2 TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_records_entry_date
		ON records(entry_date);

	-- Settings (key/value JSON blobs)
	CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value_json TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	-- Settlement runs (one per period)
	CREATE TABLE IF NOT EXISTS settlement_runs (
		id TEXT PRIMARY KEY,
		period_start TEXT NOT NULL,
		period_end TEXT NOT NULL,
		record_count INTEGER NOT NULL,
		salary INTEGER NOT NULL,
		regular_minutes INTEGER NOT NULL,
		overtime_tier1_minutes INTEGER NOT NULL,
		overtime_tier2_minutes INTEGER NOT NULL,
		closed_at TEXT NOT NULL
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_unique_settlement_period
		ON settlement_runs(period_start, period_end);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// RECORD STORE (payroll.RecordStore interface)
// =============================================================================

const recordColumns = `id, entry_date, check_in, check_out, break_minutes, day_type, note,
	regular_minutes, overtime_tier1_minutes, overtime_tier2_minutes, salary,
	applied_rate, applied_multiplier1, applied_multiplier2, created_at`

// Append adds a record.
func (s *Store) Append(ctx context.Context, r payroll.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `INSERT INTO records (` + recordColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := s.db.ExecContext(ctx, query,
		r.ID,
		r.Entry.Date.String(),
		r.Entry.CheckIn.String(),
		r.Entry.CheckOut.String(),
		r.Entry.BreakMinutes,
		r.Entry.DayType.String(),
		nullString(r.Entry.Note),
		r.Pay.RegularMinutes,
		r.Pay.OvertimeTier1Minutes,
		r.Pay.OvertimeTier2Minutes,
		r.Pay.Salary,
		r.Applied.HourlyRate.String(),
		r.Applied.OvertimeMultiplier1.String(),
		r.Applied.OvertimeMultiplier2.String(),
		r.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return generic.ErrDuplicateRecord
		}
		return fmt.Errorf("failed to append record: %w", err)
	}
	return nil
}

// Get returns a record by id.
func (s *Store) Get(ctx context.Context, id payroll.RecordID) (payroll.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records, err := s.queryRecords(ctx, `SELECT `+recordColumns+` FROM records WHERE id = ?`, id)
	if err != nil {
		return payroll.Record{}, err
	}
	if len(records) == 0 {
		return payroll.Record{}, generic.ErrRecordNotFound
	}
	return records[0], nil
}

// List returns all records ordered by date.
func (s *Store) List(ctx context.Context) ([]payroll.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryRecords(ctx, `SELECT `+recordColumns+` FROM records
		ORDER BY entry_date ASC, id ASC`)
}

// ListRange returns records dated within [from, to].
func (s *Store) ListRange(ctx context.Context, from, to generic.TimePoint) ([]payroll.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryRecords(ctx, `SELECT `+recordColumns+` FROM records
		WHERE entry_date >= ? AND entry_date <= ?
		ORDER BY entry_date ASC, id ASC`, from.String(), to.String())
}

// Delete removes records by id.
func (s *Store) Delete(ctx context.Context, ids []payroll.RecordID) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	res, err := s.db.ExecContext(ctx, `DELETE FROM records WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete records: %w", err)
	}
	return affected(res)
}

// DeleteRange removes records dated within [from, to].
func (s *Store) DeleteRange(ctx context.Context, from, to generic.TimePoint) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`DELETE FROM records WHERE entry_date >= ? AND entry_date <= ?`,
		from.String(), to.String())
	if err != nil {
		return 0, fmt.Errorf("failed to delete records: %w", err)
	}
	return affected(res)
}

func (s *Store) queryRecords(ctx context.Context, query string, args ...any) ([]payroll.Record, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer rows.Close()

	var records []payroll.Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

func scanRecord(rows *sql.Rows) (payroll.Record, error) {
	var (
		r                                payroll.Record
		id, date, checkIn, checkOut, day string
		note                             sql.NullString
		regular, tier1, tier2            int
		salary                           int64
		rate, multiplier1, multiplier2   string
		createdAt                        string
	)

	err := rows.Scan(&id, &date, &checkIn, &checkOut, &r.Entry.BreakMinutes, &day, &note,
		&regular, &tier1, &tier2, &salary,
		&rate, &multiplier1, &multiplier2, &createdAt)
	if err != nil {
		return payroll.Record{}, fmt.Errorf("failed to scan record: %w", err)
	}

	r.ID = payroll.RecordID(id)
	if r.Entry.Date, err = generic.ParseDate(date); err != nil {
		return payroll.Record{}, err
	}
	if r.Entry.CheckIn, err = generic.ParseClockTime(checkIn); err != nil {
		return payroll.Record{}, err
	}
	if r.Entry.CheckOut, err = generic.ParseClockTime(checkOut); err != nil {
		return payroll.Record{}, err
	}
	if r.Entry.DayType, err = payroll.ParseDayType(day); err != nil {
		return payroll.Record{}, err
	}
	r.Entry.Note = note.String
	r.Pay = payroll.NewPayBreakdown(regular, tier1, tier2, salary)

	if r.Applied.HourlyRate, err = parseDecimal("applied_rate", rate); err != nil {
		return payroll.Record{}, fmt.Errorf("failed to scan record %s: %w", id, err)
	}
	if r.Applied.OvertimeMultiplier1, err = parseDecimal("applied_multiplier1", multiplier1); err != nil {
		return payroll.Record{}, fmt.Errorf("failed to scan record %s: %w", id, err)
	}
	if r.Applied.OvertimeMultiplier2, err = parseDecimal("applied_multiplier2", multiplier2); err != nil {
		return payroll.Record{}, fmt.Errorf("failed to scan record %s: %w", id, err)
	}
	if r.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return payroll.Record{}, fmt.Errorf("failed to scan record %s: bad created_at %q: %w", id, createdAt, err)
	}
	return r, nil
}

// =============================================================================
// SETTINGS STORE (payroll.SettingsStore interface)
// =============================================================================

// ratesJSON is the persisted shape of payroll.RateConfig.
type ratesJSON struct {
	HourlyRate          decimal.Decimal `json:"hourly_rate"`
	OvertimeMultiplier1 decimal.Decimal `json:"overtime_multiplier1"`
	OvertimeMultiplier2 decimal.Decimal `json:"overtime_multiplier2"`
	DefaultBreakMinutes int             `json:"default_break_minutes"`
	SettlementDay       int             `json:"settlement_day"`
}

// LoadRates returns the saved rates, or nil if none were saved.
func (s *Store) LoadRates(ctx context.Context) (*payroll.RateConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT value_json FROM settings WHERE key = ?`, ratesKey).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load rates: %w", err)
	}

	var stored ratesJSON
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		return nil, fmt.Errorf("failed to decode rates: %w", err)
	}
	return &payroll.RateConfig{
		HourlyRate:          stored.HourlyRate,
		OvertimeMultiplier1: stored.OvertimeMultiplier1,
		OvertimeMultiplier2: stored.OvertimeMultiplier2,
		DefaultBreakMinutes: stored.DefaultBreakMinutes,
		SettlementDay:       stored.SettlementDay,
	}, nil
}

// SaveRates upserts the live rates.
func (s *Store) SaveRates(ctx context.Context, rates payroll.RateConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := json.Marshal(ratesJSON{
		HourlyRate:          rates.HourlyRate,
		OvertimeMultiplier1: rates.OvertimeMultiplier1,
		OvertimeMultiplier2: rates.OvertimeMultiplier2,
		DefaultBreakMinutes: rates.DefaultBreakMinutes,
		SettlementDay:       rates.SettlementDay,
	})
	if err != nil {
		return fmt.Errorf("failed to encode rates: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO settings (key, value_json, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value_json = excluded.value_json, updated_at = excluded.updated_at`,
		ratesKey, string(raw), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to save rates: %w", err)
	}
	return nil
}

// =============================================================================
// SETTLEMENT STORE (payroll.SettlementStore interface)
// =============================================================================

const settlementColumns = `id, period_start, period_end, record_count, salary,
	regular_minutes, overtime_tier1_minutes, overtime_tier2_minutes, closed_at`

// SaveSettlement archives a run. The unique period index rejects repeats.
func (s *Store) SaveSettlement(ctx context.Context, run payroll.SettlementRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `INSERT INTO settlement_runs (`+settlementColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.Period.Start.String(),
		run.Period.End.String(),
		run.Totals.Count,
		run.Totals.Salary,
		run.Totals.RegularMinutes,
		run.Totals.OvertimeTier1Minutes,
		run.Totals.OvertimeTier2Minutes,
		run.ClosedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return generic.ErrAlreadySettled
		}
		return fmt.Errorf("failed to save settlement: %w", err)
	}
	return nil
}

// GetSettlement returns the run for period, or nil.
func (s *Store) GetSettlement(ctx context.Context, period generic.Period) (*payroll.SettlementRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	runs, err := s.querySettlements(ctx, `SELECT `+settlementColumns+` FROM settlement_runs
		WHERE period_start = ? AND period_end = ?`, period.Start.String(), period.End.String())
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, nil
	}
	return &runs[0], nil
}

// ListSettlements returns every run, newest period first.
func (s *Store) ListSettlements(ctx context.Context) ([]payroll.SettlementRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.querySettlements(ctx, `SELECT `+settlementColumns+` FROM settlement_runs
		ORDER BY period_start DESC`)
}

func (s *Store) querySettlements(ctx context.Context, query string, args ...any) ([]payroll.SettlementRun, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query settlements: %w", err)
	}
	defer rows.Close()

	var runs []payroll.SettlementRun
	for rows.Next() {
		var (
			run                   payroll.SettlementRun
			start, end, closedAt  string
			count                 int
			salary                int64
			regular, tier1, tier2 int
		)
		if err := rows.Scan(&run.ID, &start, &end, &count, &salary,
			&regular, &tier1, &tier2, &closedAt); err != nil {
			return nil, fmt.Errorf("failed to scan settlement: %w", err)
		}
		if run.Period.Start, err = generic.ParseDate(start); err != nil {
			return nil, err
		}
		if run.Period.End, err = generic.ParseDate(end); err != nil {
			return nil, err
		}
		run.Totals = payroll.NewTotals(count, salary, regular, tier1, tier2)
		if run.ClosedAt, err = time.Parse(time.RFC3339, closedAt); err != nil {
			return nil, fmt.Errorf("failed to scan settlement %s: bad closed_at %q: %w", run.ID, closedAt, err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// =============================================================================
// ADMIN
// =============================================================================

// Reset removes all data (records, settings, settlements).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, table := range []string{"records", "settings", "settlement_runs"} {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to reset %s: %w", table, err)
		}
	}
	return nil
}

// Helper functions

func parseDecimal(column, value string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("bad %s %q: %w", column, value, err)
	}
	return d, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func affected(res sql.Result) (int, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
