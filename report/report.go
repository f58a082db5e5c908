/*
Package report renders records and their totals as spreadsheets.

PURPOSE:
  Turns a selection of records plus its Totals into a file the worker can
  paste or open: tab-separated text (clipboard paste into a spreadsheet),
  CSV, or an XLSX workbook.

COLUMNS:
  date, check_in, check_out, break_minutes, day_type, note, regular_hours,
  overtime_tier1_hours, overtime_tier2_hours, overtime_total_hours,
  applied_rate, salary

  The last row of the delimited formats is a TOTAL row. Hours are printed
  with 2 decimals; this is display rounding only, totals are summed at full
  precision before formatting.

WORKBOOK:
  Sheet "Records": header + one row per record + TOTAL row
  Sheet "Summary": scope, record count, salary and hour totals

SEE ALSO:
  - payroll/aggregate.go: Select and Aggregate produce the inputs
  - api/handlers.go: GET /api/export
*/
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Chung0221/salary-tracker/payroll"
	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"
)

// =============================================================================
// FORMATS
// =============================================================================

type Format string

const (
	FormatTSV  Format = "tsv"
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ParseFormat accepts tsv, csv or xlsx (case-insensitive). Empty means tsv.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatTSV, nil
	case FormatTSV, FormatCSV, FormatXLSX:
		return f, nil
	default:
		return "", fmt.Errorf("unknown export format %q", s)
	}
}

// ContentType returns the MIME type served for the format.
func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "text/tab-separated-values; charset=utf-8"
	}
}

// Extension is the file name suffix including the dot.
func (f Format) Extension() string {
	return "." + string(f)
}

// =============================================================================
// ROWS
// =============================================================================

// Row is one exported line. Every field is pre-formatted text.
type Row struct {
	Date               string `csv:"date"`
	CheckIn            string `csv:"check_in"`
	CheckOut           string `csv:"check_out"`
	BreakMinutes       string `csv:"break_minutes"`
	DayType            string `csv:"day_type"`
	Note               string `csv:"note"`
	RegularHours       string `csv:"regular_hours"`
	OvertimeTier1Hours string `csv:"overtime_tier1_hours"`
	OvertimeTier2Hours string `csv:"overtime_tier2_hours"`
	OvertimeTotalHours string `csv:"overtime_total_hours"`
	AppliedRate        string `csv:"applied_rate"`
	Salary             string `csv:"salary"`
}

// TotalLabel marks the totals row in the date column.
const TotalLabel = "TOTAL"

// Rows converts records into rows and appends the totals row.
func Rows(records []payroll.Record, totals payroll.Totals) []Row {
	rows := make([]Row, 0, len(records)+1)
	for _, r := range records {
		rows = append(rows, Row{
			Date:               r.Entry.Date.String(),
			CheckIn:            r.Entry.CheckIn.String(),
			CheckOut:           r.Entry.CheckOut.String(),
			BreakMinutes:       strconv.Itoa(r.Entry.BreakMinutes),
			DayType:            r.Entry.DayType.String(),
			Note:               r.Entry.Note,
			RegularHours:       FormatHours(r.Pay.RegularHours),
			OvertimeTier1Hours: FormatHours(r.Pay.OvertimeTier1Hours),
			OvertimeTier2Hours: FormatHours(r.Pay.OvertimeTier2Hours),
			OvertimeTotalHours: FormatHours(r.Pay.OvertimeTotalHours),
			AppliedRate:        r.AppliedRate().String(),
			Salary:             strconv.FormatInt(r.Pay.Salary, 10),
		})
	}
	rows = append(rows, Row{
		Date:               TotalLabel,
		Note:               fmt.Sprintf("%d records", totals.Count),
		RegularHours:       FormatHours(totals.RegularHours),
		OvertimeTier1Hours: FormatHours(totals.OvertimeTier1Hours),
		OvertimeTier2Hours: FormatHours(totals.OvertimeTier2Hours),
		OvertimeTotalHours: FormatHours(totals.OvertimeTotalHours),
		Salary:             strconv.FormatInt(totals.Salary, 10),
	})
	return rows
}

// FormatHours prints hours with two decimals.
func FormatHours(h decimal.Decimal) string {
	return h.StringFixed(2)
}

// =============================================================================
// DELIMITED TEXT
// =============================================================================

// WriteDelimited writes the header, one line per record and the totals row,
// separated by comma.
func WriteDelimited(w io.Writer, comma rune, records []payroll.Record, totals payroll.Totals) error {
	cw := csv.NewWriter(w)
	cw.Comma = comma
	if err := gocsv.MarshalCSV(Rows(records, totals), gocsv.NewSafeCSVWriter(cw)); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	return nil
}

// Write renders the selection in the given format.
func Write(w io.Writer, format Format, scope string, records []payroll.Record, totals payroll.Totals) error {
	switch format {
	case FormatCSV:
		return WriteDelimited(w, ',', records, totals)
	case FormatXLSX:
		return WriteXLSX(w, scope, records, totals)
	default:
		return WriteDelimited(w, '\t', records, totals)
	}
}
