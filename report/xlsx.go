package report

import (
	"fmt"
	"io"

	"github.com/Chung0221/salary-tracker/payroll"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const (
	recordsSheet = "Records"
	summarySheet = "Summary"
)

var header = []interface{}{
	"date", "check_in", "check_out", "break_minutes", "day_type", "note",
	"regular_hours", "overtime_tier1_hours", "overtime_tier2_hours", "overtime_total_hours",
	"applied_rate", "salary",
}

// WriteXLSX writes a workbook with a Records sheet and a Summary sheet.
// Hours and money are written as numbers so the sheet can be summed again.
func WriteXLSX(w io.Writer, scope string, records []payroll.Record, totals payroll.Totals) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", recordsSheet); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create style: %w", err)
	}

	if err := setRow(f, recordsSheet, 1, header); err != nil {
		return err
	}
	for i, r := range records {
		row := []interface{}{
			r.Entry.Date.String(),
			r.Entry.CheckIn.String(),
			r.Entry.CheckOut.String(),
			r.Entry.BreakMinutes,
			r.Entry.DayType.String(),
			r.Entry.Note,
			hoursCell(r.Pay.RegularHours),
			hoursCell(r.Pay.OvertimeTier1Hours),
			hoursCell(r.Pay.OvertimeTier2Hours),
			hoursCell(r.Pay.OvertimeTotalHours),
			r.AppliedRate().InexactFloat64(),
			r.Pay.Salary,
		}
		if err := setRow(f, recordsSheet, i+2, row); err != nil {
			return err
		}
	}

	totalRow := len(records) + 2
	if err := setRow(f, recordsSheet, totalRow, []interface{}{
		TotalLabel, nil, nil, nil, nil, fmt.Sprintf("%d records", totals.Count),
		hoursCell(totals.RegularHours),
		hoursCell(totals.OvertimeTier1Hours),
		hoursCell(totals.OvertimeTier2Hours),
		hoursCell(totals.OvertimeTotalHours),
		nil,
		totals.Salary,
	}); err != nil {
		return err
	}
	if err := f.SetRowStyle(recordsSheet, 1, 1, bold); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}
	if err := f.SetRowStyle(recordsSheet, totalRow, totalRow, bold); err != nil {
		return fmt.Errorf("failed to style totals: %w", err)
	}

	if _, err := f.NewSheet(summarySheet); err != nil {
		return fmt.Errorf("failed to add summary sheet: %w", err)
	}
	summary := [][]interface{}{
		{"scope", scope},
		{"records", totals.Count},
		{"salary", totals.Salary},
		{"regular_hours", hoursCell(totals.RegularHours)},
		{"overtime_tier1_hours", hoursCell(totals.OvertimeTier1Hours)},
		{"overtime_tier2_hours", hoursCell(totals.OvertimeTier2Hours)},
		{"overtime_total_hours", hoursCell(totals.OvertimeTotalHours)},
	}
	for i, row := range summary {
		if err := setRow(f, summarySheet, i+1, row); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write %s row %d: %w", sheet, row, err)
	}
	return nil
}

// hoursCell rounds hours to two decimals for display.
func hoursCell(h decimal.Decimal) float64 {
	return h.Round(2).InexactFloat64()
}
