/*
Package factory provides JSON to Go conversion for attendance entries and rates.

PURPOSE:
  Converts wire-format entries ("09:00" clock strings, "YYYY-MM-DD" dates,
  day-type labels) into payroll.AttendanceEntry, and rate settings into
  payroll.RateConfig. The payroll package never sees strings; everything
  textual is parsed here.

JSON SCHEMA (entry):
  {
    "date": "2025-03-10",
    "check_in": "09:00",
    "check_out": "21:00",
    "break_minutes": 60,
    "day_type": "NORMAL",
    "note": "其他專案"
  }

DAY TYPE LABELS:
  Canonical names (NORMAL, SICK_LEAVE, DOUBLE_PAY, REST_DAY_WORK) in any
  case, plus the note tags used by the old browser tracker:

    "病假"      -> SICK_LEAVE
    "雙薪"      -> DOUBLE_PAY
    "其他專案"  -> NORMAL
    ""          -> NORMAL

USAGE:
  f := NewEntryFactory(60)
  entry, err := f.ParseEntry(`{"date":"2025-03-10","check_in":"09:00","check_out":"18:00"}`)

SEE ALSO:
  - rates.go: RateConfig conversion
  - legacy.go: Import of the old tracker's storage blobs
*/
package factory

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Chung0221/salary-tracker/generic"
	"github.com/Chung0221/salary-tracker/payroll"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// EntryJSON is the JSON representation of an attendance entry.
type EntryJSON struct {
	Date         string `json:"date" validate:"required"`
	CheckIn      string `json:"check_in" validate:"required"`
	CheckOut     string `json:"check_out" validate:"required"`
	BreakMinutes *int   `json:"break_minutes,omitempty" validate:"omitempty,min=0,max=1440"`
	DayType      string `json:"day_type,omitempty"`
	Note         string `json:"note,omitempty" validate:"max=200"`
}

// =============================================================================
// ENTRY FACTORY
// =============================================================================

// EntryFactory converts JSON entries to payroll entries.
type EntryFactory struct {
	// DefaultBreakMinutes fills entries that omit break_minutes.
	DefaultBreakMinutes int
}

// NewEntryFactory creates a factory that fills missing breaks with defaultBreak.
func NewEntryFactory(defaultBreak int) *EntryFactory {
	return &EntryFactory{DefaultBreakMinutes: defaultBreak}
}

// ParseEntry parses a JSON string into an AttendanceEntry.
func (f *EntryFactory) ParseEntry(jsonStr string) (payroll.AttendanceEntry, error) {
	var ej EntryJSON
	if err := json.Unmarshal([]byte(jsonStr), &ej); err != nil {
		return payroll.AttendanceEntry{}, fmt.Errorf("failed to parse entry JSON: %w", err)
	}
	return f.FromJSON(ej)
}

// FromJSON converts EntryJSON to payroll.AttendanceEntry.
func (f *EntryFactory) FromJSON(ej EntryJSON) (payroll.AttendanceEntry, error) {
	date, err := generic.ParseDate(ej.Date)
	if err != nil {
		return payroll.AttendanceEntry{}, err
	}
	checkIn, err := parseClock("check_in", ej.CheckIn)
	if err != nil {
		return payroll.AttendanceEntry{}, err
	}
	checkOut, err := parseClock("check_out", ej.CheckOut)
	if err != nil {
		return payroll.AttendanceEntry{}, err
	}
	dayType, err := ParseDayTypeLabel(ej.DayType)
	if err != nil {
		return payroll.AttendanceEntry{}, err
	}

	breakMinutes := f.DefaultBreakMinutes
	if ej.BreakMinutes != nil {
		breakMinutes = *ej.BreakMinutes
	}

	return payroll.AttendanceEntry{
		Date:         date,
		CheckIn:      checkIn,
		CheckOut:     checkOut,
		BreakMinutes: breakMinutes,
		DayType:      dayType,
		Note:         strings.TrimSpace(ej.Note),
	}, nil
}

// ToJSON converts an AttendanceEntry to EntryJSON.
func (f *EntryFactory) ToJSON(entry payroll.AttendanceEntry) EntryJSON {
	breakMinutes := entry.BreakMinutes
	return EntryJSON{
		Date:         entry.Date.String(),
		CheckIn:      entry.CheckIn.String(),
		CheckOut:     entry.CheckOut.String(),
		BreakMinutes: &breakMinutes,
		DayType:      entry.DayType.String(),
		Note:         entry.Note,
	}
}

// =============================================================================
// PARSING HELPERS
// =============================================================================

func parseClock(field, s string) (generic.ClockTime, error) {
	c, err := generic.ParseClockTime(s)
	if err != nil {
		return generic.ClockTime{}, &generic.ParseError{Field: field, Value: s, Err: generic.ErrInvalidClockTime}
	}
	return c, nil
}

// noteTags maps the old tracker's note tags to day types.
var noteTags = map[string]payroll.DayType{
	"病假":   payroll.DaySickLeave,
	"雙薪":   payroll.DayDoublePay,
	"其他專案": payroll.DayNormal,
}

// ParseDayTypeLabel accepts a canonical day-type name (case-insensitive,
// dashes or spaces allowed), an old note tag, or "" for NORMAL.
func ParseDayTypeLabel(label string) (payroll.DayType, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return payroll.DayNormal, nil
	}
	if d, ok := noteTags[label]; ok {
		return d, nil
	}

	canonical := strings.ToUpper(strings.NewReplacer("-", "_", " ", "_").Replace(label))
	d, err := payroll.ParseDayType(canonical)
	if err != nil {
		return payroll.DayNormal, &generic.ParseError{Field: "day_type", Value: label, Err: generic.ErrUnknownDayType}
	}
	return d, nil
}

// DayTypeFromNote classifies a free-text note the way the old tracker did:
// any note mentioning sick leave or double pay selects that day type.
func DayTypeFromNote(note string) payroll.DayType {
	switch {
	case strings.Contains(note, "病假"):
		return payroll.DaySickLeave
	case strings.Contains(note, "雙薪"):
		return payroll.DayDoublePay
	default:
		return payroll.DayNormal
	}
}
