package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/Chung0221/salary-tracker/generic"
	"github.com/Chung0221/salary-tracker/payroll"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func testRecords() []payroll.Record {
	rates := payroll.DefaultRateConfig()
	entries := []payroll.AttendanceEntry{
		{
			Date:    generic.NewTimePoint(2025, 3, 4),
			CheckIn: generic.NewClockTime(9, 0), CheckOut: generic.NewClockTime(18, 20),
			BreakMinutes: 60, DayType: payroll.DayNormal, Note: "其他專案, 加班",
		},
		{
			Date:    generic.NewTimePoint(2025, 3, 3),
			CheckIn: generic.NewClockTime(9, 0), CheckOut: generic.NewClockTime(21, 0),
			BreakMinutes: 60, DayType: payroll.DayNormal,
		},
	}

	records := make([]payroll.Record, len(entries))
	for i, e := range entries {
		records[i] = payroll.Record{
			ID:      payroll.RecordID(string(rune('a' + i))),
			Entry:   e,
			Pay:     payroll.Compute(e, rates),
			Applied: rates.Snapshot(),
		}
	}
	return records
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"": FormatTSV, "TSV": FormatTSV, "csv": FormatCSV, " xlsx ": FormatXLSX} {
		got, err := ParseFormat(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := ParseFormat("pdf")
	assert.Error(t, err)
}

func TestWriteDelimited_TSV(t *testing.T) {
	records := testRecords()
	totals := payroll.Aggregate(records, payroll.AllRecords())

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatTSV, "all", records, totals))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 4, "header + 2 records + total")

	assert.Equal(t, "date\tcheck_in\tcheck_out\tbreak_minutes\tday_type\tnote\tregular_hours\t"+
		"overtime_tier1_hours\tovertime_tier2_hours\tovertime_total_hours\tapplied_rate\tsalary", lines[0])

	// 8h20m net: 20 minutes of tier-1 overtime shown as 0.33
	first := strings.Split(lines[1], "\t")
	assert.Equal(t, "2025-03-04", first[0])
	assert.Equal(t, "其他專案, 加班", first[5])
	assert.Equal(t, "8.00", first[6])
	assert.Equal(t, "0.33", first[7])
	assert.Equal(t, "200", first[10])
	assert.Equal(t, "1689", first[11]) // 1600 + 89.33

	total := strings.Split(lines[3], "\t")
	assert.Equal(t, TotalLabel, total[0])
	assert.Equal(t, "2 records", total[5])
	assert.Equal(t, "16.00", total[6])
	assert.Equal(t, "2.33", total[7])
	assert.Equal(t, "4159", total[11])
}

func TestWriteDelimited_CSVQuotesCommas(t *testing.T) {
	records := testRecords()
	totals := payroll.Aggregate(records, payroll.AllRecords())

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatCSV, "all", records, totals))

	assert.Contains(t, buf.String(), `"其他專案, 加班"`)
}

func TestWriteDelimited_EmptySelection(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatCSV, "all", nil, payroll.ZeroTotals()))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[1], "TOTAL,"))
	assert.True(t, strings.HasSuffix(lines[1], ",0"))
}

func TestWriteXLSX(t *testing.T) {
	records := testRecords()
	totals := payroll.Aggregate(records, payroll.AllRecords())

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatXLSX, "[2025-03-01, 2025-03-31]", records, totals))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Records", "Summary"}, f.GetSheetList())

	rows, err := f.GetRows("Records")
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, "date", rows[0][0])
	assert.Equal(t, "2025-03-04", rows[1][0])
	assert.Equal(t, TotalLabel, rows[3][0])

	salary, err := f.GetCellValue("Records", "L4")
	require.NoError(t, err)
	assert.Equal(t, "4159", salary)

	scope, err := f.GetCellValue("Summary", "B1")
	require.NoError(t, err)
	assert.Equal(t, "[2025-03-01, 2025-03-31]", scope)

	count, err := f.GetCellValue("Summary", "B2")
	require.NoError(t, err)
	assert.Equal(t, "2", count)
}
