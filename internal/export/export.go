// Package export renders overtime and mileage reports as JSON, CSV and XLSX.
package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/xuri/excelize/v2"

	"github.com/pkordes/trip-overtime/internal/domain"
)

// Format is an output encoding.
type Format string

const (
	JSON Format = "json"
	CSV  Format = "csv"
	XLSX Format = "xlsx"
)

// ParseFormat accepts "json", "csv" or "xlsx" (any case); "" means JSON.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return JSON, nil
	case JSON, CSV, XLSX:
		return f, nil
	default:
		return "", fmt.Errorf("%w: format must be one of json, csv, xlsx", domain.ErrValidation)
	}
}

// ContentType returns the MIME type for the format.
func (f Format) ContentType() string {
	switch f {
	case CSV:
		return "text/csv"
	case XLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "application/json"
	}
}

// Extension returns the file extension for the format, without the dot.
func (f Format) Extension() string {
	return string(f)
}

type overtimeRow struct {
	Date        string  `csv:"Date"`
	Day         string  `csv:"Day"`
	HomeArrival string  `csv:"Home Arrival"`
	Hours       float64 `csv:"Overtime Hours"`
	FullDay     bool    `csv:"Full Day"`
}

type mileageRow struct {
	Date      string  `csv:"Date"`
	Miles     float64 `csv:"Miles"`
	Postcodes string  `csv:"Postcodes"`
}

func overtimeRows(recs []domain.OvertimeRecord) []overtimeRow {
	rows := make([]overtimeRow, 0, len(recs))
	for _, r := range recs {
		rows = append(rows, overtimeRow{
			Date:        r.DateLabel(),
			Day:         r.Weekday(),
			HomeArrival: r.HomeArrivalLabel(),
			Hours:       r.Hours,
			FullDay:     r.FullDay,
		})
	}
	return rows
}

func mileageRows(days []domain.DailyMileage) []mileageRow {
	rows := make([]mileageRow, 0, len(days))
	for _, d := range days {
		rows = append(rows, mileageRow{
			Date:      d.DateLabel(),
			Miles:     d.Miles,
			Postcodes: strings.Join(d.Postcodes, ","),
		})
	}
	return rows
}

// WriteOvertimeCSV writes one line per overtime record under a header row.
func WriteOvertimeCSV(w io.Writer, report domain.OvertimeReport) error {
	rows := overtimeRows(report.Records)
	if err := gocsv.Marshal(&rows, w); err != nil {
		return fmt.Errorf("export.WriteOvertimeCSV: %w", err)
	}
	return nil
}

// WriteSummaryCSV writes one line per day of the mileage summary.
func WriteSummaryCSV(w io.Writer, summary domain.MileageSummary) error {
	rows := mileageRows(summary.Days)
	if err := gocsv.Marshal(&rows, w); err != nil {
		return fmt.Errorf("export.WriteSummaryCSV: %w", err)
	}
	return nil
}

// WriteOvertimeXLSX writes an "Overtime" sheet followed by a total row.
func WriteOvertimeXLSX(w io.Writer, report domain.OvertimeReport) error {
	sheet := sheetData{
		name:   "Overtime",
		header: []any{"Date", "Day", "Home Arrival", "Overtime Hours", "Full Day"},
		total:  []any{"Total", "", "", report.TotalHours, ""},
	}
	for _, r := range overtimeRows(report.Records) {
		sheet.rows = append(sheet.rows, []any{r.Date, r.Day, r.HomeArrival, r.Hours, r.FullDay})
	}
	if err := writeWorkbook(w, sheet); err != nil {
		return fmt.Errorf("export.WriteOvertimeXLSX: %w", err)
	}
	return nil
}

// WriteSummaryXLSX writes a "Summary" sheet followed by a total row.
func WriteSummaryXLSX(w io.Writer, summary domain.MileageSummary) error {
	sheet := sheetData{
		name:   "Summary",
		header: []any{"Date", "Miles", "Postcodes"},
		total:  []any{"Total", summary.TotalMiles, ""},
	}
	for _, r := range mileageRows(summary.Days) {
		sheet.rows = append(sheet.rows, []any{r.Date, r.Miles, r.Postcodes})
	}
	if err := writeWorkbook(w, sheet); err != nil {
		return fmt.Errorf("export.WriteSummaryXLSX: %w", err)
	}
	return nil
}

type sheetData struct {
	name   string
	header []any
	rows   [][]any
	total  []any
}

func writeWorkbook(w io.Writer, s sheetData) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), s.name); err != nil {
		return err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	lines := append([][]any{s.header}, s.rows...)
	lines = append(lines, s.total)
	for i, line := range lines {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(s.name, cell, &line); err != nil {
			return err
		}
	}

	lastCol, err := excelize.ColumnNumberToName(len(s.header))
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(s.name, "A1", lastCol+"1", bold); err != nil {
		return err
	}
	totalRow := len(lines)
	if err := f.SetCellStyle(s.name, fmt.Sprintf("A%d", totalRow), fmt.Sprintf("%s%d", lastCol, totalRow), bold); err != nil {
		return err
	}
	return f.Write(w)
}
