package factory

import (
	"encoding/json"
	"fmt"

	"github.com/Chung0221/salary-tracker/payroll"
	"github.com/shopspring/decimal"
)

// =============================================================================
// LEGACY IMPORT - Storage blobs of the old browser tracker
// =============================================================================
//
// The browser tracker kept two JSON blobs in key/value storage:
//
//   salary_settings: {"hourlyRate":200,"overtimeRate1":1.34,"overtimeRate2":1.67,"settlementDay":25}
//   salary_records:  [{"id":1741000000000,"date":"2025-03-03","checkIn":"09:00",
//                      "checkOut":"21:00","breakMinutes":60,"note":"雙薪 (已外加8hr底薪)",
//                      "salary":"4070", ...}]
//
// Stored salaries and hours were computed with different double-pay rules,
// so imported entries are re-priced; only the attendance fields are kept.

// LegacySettingsJSON is the old salary_settings blob.
type LegacySettingsJSON struct {
	HourlyRate    *decimal.Decimal `json:"hourlyRate"`
	OvertimeRate1 *decimal.Decimal `json:"overtimeRate1"`
	OvertimeRate2 *decimal.Decimal `json:"overtimeRate2"`
	SettlementDay *int             `json:"settlementDay"`
}

// LegacyRecordJSON is one element of the old salary_records blob.
type LegacyRecordJSON struct {
	Date         string `json:"date"`
	CheckIn      string `json:"checkIn"`
	CheckOut     string `json:"checkOut"`
	BreakMinutes int    `json:"breakMinutes"`
	Note         string `json:"note"`
}

// ParseLegacySettings overlays the old settings blob onto base.
func ParseLegacySettings(raw []byte, base payroll.RateConfig) (payroll.RateConfig, error) {
	var ls LegacySettingsJSON
	if err := json.Unmarshal(raw, &ls); err != nil {
		return payroll.RateConfig{}, fmt.Errorf("failed to parse legacy settings: %w", err)
	}
	return RatesFromJSON(RatesJSON{
		HourlyRate:          ls.HourlyRate,
		OvertimeMultiplier1: ls.OvertimeRate1,
		OvertimeMultiplier2: ls.OvertimeRate2,
		SettlementDay:       ls.SettlementDay,
	}, base), nil
}

// ParseLegacyRecords converts the old records blob into entries. The day type
// is derived from the note.
func (f *EntryFactory) ParseLegacyRecords(raw []byte) ([]payroll.AttendanceEntry, error) {
	var records []LegacyRecordJSON
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("failed to parse legacy records: %w", err)
	}

	entries := make([]payroll.AttendanceEntry, 0, len(records))
	for i, lr := range records {
		breakMinutes := lr.BreakMinutes
		entry, err := f.FromJSON(EntryJSON{
			Date:         lr.Date,
			CheckIn:      lr.CheckIn,
			CheckOut:     lr.CheckOut,
			BreakMinutes: &breakMinutes,
			Note:         lr.Note,
		})
		if err != nil {
			return nil, fmt.Errorf("legacy record %d: %w", i, err)
		}
		entry.DayType = DayTypeFromNote(lr.Note)
		entries = append(entries, entry)
	}
	return entries, nil
}
