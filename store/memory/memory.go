// Package memory provides in-memory implementations of the payroll stores.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/Chung0221/salary-tracker/generic"
	"github.com/Chung0221/salary-tracker/payroll"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

// Memory implements payroll.RecordStore, payroll.SettingsStore and
// payroll.SettlementStore.
type Memory struct {
	mu          sync.RWMutex
	records     []payroll.Record // ordered by entry date, then insertion
	ids         map[payroll.RecordID]bool
	rates       *payroll.RateConfig
	settlements []payroll.SettlementRun
}

var (
	_ payroll.RecordStore     = (*Memory)(nil)
	_ payroll.SettingsStore   = (*Memory)(nil)
	_ payroll.SettlementStore = (*Memory)(nil)
)

func NewMemory() *Memory {
	return &Memory{
		ids: make(map[payroll.RecordID]bool),
	}
}

// =============================================================================
// RECORDS
// =============================================================================

// Append adds a single record.
func (m *Memory) Append(_ context.Context, r payroll.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ids[r.ID] {
		return generic.ErrDuplicateRecord
	}

	// Binary search for insertion point keeps records ordered by date
	i := sort.Search(len(m.records), func(i int) bool {
		return m.records[i].Entry.Date.After(r.Entry.Date)
	})
	m.records = append(m.records, payroll.Record{})
	copy(m.records[i+1:], m.records[i:])
	m.records[i] = r
	m.ids[r.ID] = true
	return nil
}

func (m *Memory) Get(_ context.Context, id payroll.RecordID) (payroll.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, r := range m.records {
		if r.ID == id {
			return r, nil
		}
	}
	return payroll.Record{}, generic.ErrRecordNotFound
}

func (m *Memory) List(_ context.Context) ([]payroll.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]payroll.Record, len(m.records))
	copy(result, m.records)
	return result, nil
}

func (m *Memory) ListRange(_ context.Context, from, to generic.TimePoint) ([]payroll.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []payroll.Record
	for _, r := range m.records {
		if from.BeforeOrEqual(r.Entry.Date) && r.Entry.Date.BeforeOrEqual(to) {
			result = append(result, r)
		}
	}
	return result, nil
}

func (m *Memory) Delete(_ context.Context, ids []payroll.RecordID) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	drop := make(map[payroll.RecordID]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	return m.removeLocked(func(r payroll.Record) bool { return drop[r.ID] }), nil
}

func (m *Memory) DeleteRange(_ context.Context, from, to generic.TimePoint) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.removeLocked(func(r payroll.Record) bool {
		return from.BeforeOrEqual(r.Entry.Date) && r.Entry.Date.BeforeOrEqual(to)
	}), nil
}

func (m *Memory) removeLocked(match func(payroll.Record) bool) int {
	kept := m.records[:0]
	removed := 0
	for _, r := range m.records {
		if match(r) {
			delete(m.ids, r.ID)
			removed++
			continue
		}
		kept = append(kept, r)
	}
	m.records = kept
	return removed
}

// =============================================================================
// SETTINGS
// =============================================================================

func (m *Memory) LoadRates(_ context.Context) (*payroll.RateConfig, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.rates == nil {
		return nil, nil
	}
	rates := *m.rates
	return &rates, nil
}

func (m *Memory) SaveRates(_ context.Context, rates payroll.RateConfig) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.rates = &rates
	return nil
}

// =============================================================================
// SETTLEMENTS
// =============================================================================

func (m *Memory) SaveSettlement(_ context.Context, run payroll.SettlementRun) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, s := range m.settlements {
		if samePeriod(s.Period, run.Period) {
			return generic.ErrAlreadySettled
		}
	}
	m.settlements = append(m.settlements, run)
	return nil
}

func (m *Memory) GetSettlement(_ context.Context, period generic.Period) (*payroll.SettlementRun, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, s := range m.settlements {
		if samePeriod(s.Period, period) {
			run := s
			return &run, nil
		}
	}
	return nil, nil
}

func (m *Memory) ListSettlements(_ context.Context) ([]payroll.SettlementRun, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]payroll.SettlementRun, len(m.settlements))
	copy(result, m.settlements)
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Period.Start.After(result[j].Period.Start)
	})
	return result, nil
}

func samePeriod(a, b generic.Period) bool {
	return a.Start.Equal(b.Start) && a.End.Equal(b.End)
}

// Reset drops all records, settings and settlement runs.
func (m *Memory) Reset(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.records = nil
	m.ids = make(map[payroll.RecordID]bool)
	m.rates = nil
	m.settlements = nil
	return nil
}
