// Package ingest turns a MileIQ spreadsheet export into typed trip events.
//
// Reading (workbook.go) and coercion (builder.go) are separate steps so the
// row layout can be tested without building spreadsheets.
package ingest

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"

	"github.com/pkordes/trip-overtime/internal/domain"
)

// Layout describes where the trip table sits inside the export.
// Column indexes are zero-based (A = 0).
type Layout struct {
	HeaderRows       int
	StartTimeCol     int
	StartLocationCol int
	EndLocationCol   int
	MilesCol         int
}

// MileIQLayout is the fixed layout of a MileIQ drive report: 39 preamble
// rows, then Start Time (B), Start Location (C), End Location (E), Miles (H).
var MileIQLayout = Layout{
	HeaderRows:       39,
	StartTimeCol:     1,
	StartLocationCol: 2,
	EndLocationCol:   4,
	MilesCol:         7,
}

// width is the number of columns a row needs to cover every field.
func (l Layout) width() int {
	return max(l.StartTimeCol, l.StartLocationCol, l.EndLocationCol, l.MilesCol) + 1
}

// maxXLSRows bounds how many rows are pulled from a legacy workbook.
const maxXLSRows = 100000

// Reader extracts RawTrip rows from .xlsx and .xls files.
type Reader struct {
	layout Layout
}

// NewReader returns a Reader for the given layout.
func NewReader(layout Layout) *Reader {
	return &Reader{layout: layout}
}

// Read parses data according to the extension of name.
// Returns domain.ErrUnsupportedFormat for other extensions and
// domain.ErrInvalidWorkbook when the file cannot be opened as a workbook.
func (r *Reader) Read(name string, data []byte) ([]domain.RawTrip, error) {
	rows, err := readRows(name, data, r.layout.width())
	if err != nil {
		return nil, fmt.Errorf("ingest.Reader.Read: %w", err)
	}
	if len(rows) <= r.layout.HeaderRows {
		return []domain.RawTrip{}, nil
	}

	out := make([]domain.RawTrip, 0, len(rows)-r.layout.HeaderRows)
	for _, row := range rows[r.layout.HeaderRows:] {
		out = append(out, domain.RawTrip{
			StartTime:     cellValue(row, r.layout.StartTimeCol),
			StartLocation: cellValue(row, r.layout.StartLocationCol),
			EndLocation:   cellValue(row, r.layout.EndLocationCol),
			Miles:         cellValue(row, r.layout.MilesCol),
		})
	}
	return out, nil
}

func readRows(name string, data []byte, width int) ([][]string, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xls":
		return readXLS(data, width)
	case ".xlsx":
		return readXLSX(data)
	default:
		return nil, fmt.Errorf("%w: %q (expected .xlsx or .xls)", domain.ErrUnsupportedFormat, filepath.Ext(name))
	}
}

func readXLSX(data []byte) ([][]string, error) {
	file, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidWorkbook, err)
	}
	defer func() { _ = file.Close() }()

	sheetName := file.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("%w: no worksheet found", domain.ErrInvalidWorkbook)
	}

	// Raw values keep date cells as Excel serials; the displayed form depends
	// on the cell's number format and is often month-first.
	rows, err := file.GetRows(sheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidWorkbook, err)
	}
	return rows, nil
}

// readXLS reads the first sheet of a BIFF workbook. Every row read is at least
// width cells wide, since cells can exist without a row record.
func readXLS(data []byte, width int) (rows [][]string, err error) {
	// The BIFF decoder panics on some truncated files.
	defer func() {
		if p := recover(); p != nil {
			rows, err = nil, fmt.Errorf("%w: %v", domain.ErrInvalidWorkbook, p)
		}
	}()

	workbook, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidWorkbook, err)
	}
	if workbook.NumSheets() == 0 {
		return nil, fmt.Errorf("%w: no worksheet found", domain.ErrInvalidWorkbook)
	}
	sheet := workbook.GetSheet(0)
	if sheet == nil {
		return nil, fmt.Errorf("%w: no worksheet found", domain.ErrInvalidWorkbook)
	}

	last := min(int(sheet.MaxRow), maxXLSRows-1)
	rows = make([][]string, last+1)
	for i := 0; i <= last; i++ {
		row := xlsRow(sheet, i)
		if row == nil {
			continue
		}
		cells := make([]string, max(row.LastCol()+1, width))
		for j := range cells {
			cells[j] = row.Col(j)
		}
		rows[i] = cells
	}
	return rows, nil
}

// xlsRow returns row i, or nil when the sheet holds nothing for it.
// WorkSheet.Row dereferences missing rows.
func xlsRow(sheet *xls.WorkSheet, i int) (row *xls.Row) {
	defer func() {
		if recover() != nil {
			row = nil
		}
	}()
	return sheet.Row(i)
}

func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
