package export

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/trip-overtime/internal/domain"
)

// OvertimeRecordJSON is the wire form of one overtime day.
type OvertimeRecordJSON struct {
	Date        openapi_types.Date `json:"date"`
	Label       string             `json:"label"`
	Weekday     string             `json:"weekday"`
	HomeArrival *string            `json:"home_arrival,omitempty"`
	Hours       float64            `json:"hours"`
	FullDay     bool               `json:"full_day"`
}

// WorkPatternJSON is the wire form of one month's weekend pattern.
type WorkPatternJSON struct {
	Month           string               `json:"month"`
	WorkedSaturdays []openapi_types.Date `json:"worked_saturdays"`
	WorkedSundays   []openapi_types.Date `json:"worked_sundays"`
	OffDays         []openapi_types.Date `json:"off_days"`
}

// StatsJSON is the wire form of domain.IngestStats.
type StatsJSON struct {
	Rows             int `json:"rows"`
	BlankRows        int `json:"blank_rows"`
	UnknownTimes     int `json:"unknown_times"`
	UnknownLocations int `json:"unknown_locations"`
	BadMiles         int `json:"bad_miles"`
}

// OvertimeReportJSON is the wire form of an overtime report. ID and
// CreatedAt are present only for archived reports.
type OvertimeReportJSON struct {
	ID          *uuid.UUID           `json:"id,omitempty"`
	FileName    string               `json:"file_name"`
	ContentHash string               `json:"content_hash"`
	From        *openapi_types.Date  `json:"from,omitempty"`
	To          *openapi_types.Date  `json:"to,omitempty"`
	Records     []OvertimeRecordJSON `json:"records"`
	Patterns    []WorkPatternJSON    `json:"patterns,omitempty"`
	TotalHours  float64              `json:"total_hours"`
	Stats       StatsJSON            `json:"stats"`
	CreatedAt   *time.Time           `json:"created_at,omitempty"`
}

// DailyMileageJSON is the wire form of one summary day.
type DailyMileageJSON struct {
	Date      openapi_types.Date `json:"date"`
	Label     string             `json:"label"`
	Miles     float64            `json:"miles"`
	Postcodes []string           `json:"postcodes"`
}

// MileageSummaryJSON is the wire form of a mileage summary.
type MileageSummaryJSON struct {
	FileName   string             `json:"file_name"`
	Days       []DailyMileageJSON `json:"days"`
	TotalMiles float64            `json:"total_miles"`
	Stats      StatsJSON          `json:"stats"`
}

// OvertimeJSON maps a report to its wire form.
func OvertimeJSON(r domain.OvertimeReport) OvertimeReportJSON {
	out := OvertimeReportJSON{
		FileName:    r.FileName,
		ContentHash: r.ContentHash,
		From:        optionalDate(r.Range.From),
		To:          optionalDate(r.Range.To),
		Records:     make([]OvertimeRecordJSON, 0, len(r.Records)),
		TotalHours:  r.TotalHours,
		Stats:       statsJSON(r.Stats),
	}
	if r.ID != uuid.Nil {
		id := r.ID
		out.ID = &id
	}
	if !r.CreatedAt.IsZero() {
		created := r.CreatedAt
		out.CreatedAt = &created
	}
	for _, rec := range r.Records {
		j := OvertimeRecordJSON{
			Date:    openapi_types.Date{Time: rec.Date},
			Label:   rec.DateLabel(),
			Weekday: rec.Weekday(),
			Hours:   rec.Hours,
			FullDay: rec.FullDay,
		}
		if rec.HomeArrival != nil {
			a := rec.HomeArrivalLabel()
			j.HomeArrival = &a
		}
		out.Records = append(out.Records, j)
	}
	for _, p := range r.Patterns {
		out.Patterns = append(out.Patterns, WorkPatternJSON{
			Month:           p.Month.String(),
			WorkedSaturdays: dates(p.WorkedSaturdays.Sorted()),
			WorkedSundays:   dates(p.WorkedSundays.Sorted()),
			OffDays:         dates(p.OffDays.Sorted()),
		})
	}
	return out
}

// SummaryJSON maps a mileage summary to its wire form.
func SummaryJSON(s domain.MileageSummary) MileageSummaryJSON {
	out := MileageSummaryJSON{
		FileName:   s.FileName,
		Days:       make([]DailyMileageJSON, 0, len(s.Days)),
		TotalMiles: s.TotalMiles,
		Stats:      statsJSON(s.Stats),
	}
	for _, d := range s.Days {
		codes := d.Postcodes
		if codes == nil {
			codes = []string{}
		}
		out.Days = append(out.Days, DailyMileageJSON{
			Date:      openapi_types.Date{Time: d.Date},
			Label:     d.DateLabel(),
			Miles:     d.Miles,
			Postcodes: codes,
		})
	}
	return out
}

// WriteOvertimeJSON writes the report as indented JSON.
func WriteOvertimeJSON(w io.Writer, r domain.OvertimeReport) error {
	if err := writeJSON(w, OvertimeJSON(r)); err != nil {
		return fmt.Errorf("export.WriteOvertimeJSON: %w", err)
	}
	return nil
}

// WriteSummaryJSON writes the summary as indented JSON.
func WriteSummaryJSON(w io.Writer, s domain.MileageSummary) error {
	if err := writeJSON(w, SummaryJSON(s)); err != nil {
		return fmt.Errorf("export.WriteSummaryJSON: %w", err)
	}
	return nil
}

// WriteOvertime dispatches on f.
func WriteOvertime(w io.Writer, f Format, r domain.OvertimeReport) error {
	switch f {
	case CSV:
		return WriteOvertimeCSV(w, r)
	case XLSX:
		return WriteOvertimeXLSX(w, r)
	default:
		return WriteOvertimeJSON(w, r)
	}
}

// WriteSummary dispatches on f.
func WriteSummary(w io.Writer, f Format, s domain.MileageSummary) error {
	switch f {
	case CSV:
		return WriteSummaryCSV(w, s)
	case XLSX:
		return WriteSummaryXLSX(w, s)
	default:
		return WriteSummaryJSON(w, s)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func statsJSON(s domain.IngestStats) StatsJSON {
	return StatsJSON{
		Rows:             s.Rows,
		BlankRows:        s.BlankRows,
		UnknownTimes:     s.UnknownTimes,
		UnknownLocations: s.UnknownLocations,
		BadMiles:         s.BadMiles,
	}
}

func optionalDate(t time.Time) *openapi_types.Date {
	if t.IsZero() {
		return nil
	}
	return &openapi_types.Date{Time: t}
}

func dates(ts []time.Time) []openapi_types.Date {
	out := make([]openapi_types.Date, 0, len(ts))
	for _, t := range ts {
		out = append(out, openapi_types.Date{Time: t})
	}
	return out
}
