package domain

import (
	"time"

	"github.com/google/uuid"
)

// DateLabelLayout is the human-readable date format used in reports ("05-Mar-2024").
const DateLabelLayout = "02-Jan-2006"

// ClockLayout is the time-of-day format used for home arrivals.
const ClockLayout = "15:04"

// OvertimeRecord is the overtime owed for a single calendar day.
type OvertimeRecord struct {
	Date time.Time

	// HomeArrival is the latest recorded arrival at the home postcode.
	// Nil for full-day entries granted because the day was an off-day.
	HomeArrival *time.Time

	// Hours is a multiple of the rounding granularity in (0, full day].
	Hours float64

	// FullDay is true when the day is compensated as a whole day.
	FullDay bool
}

// Weekday returns the English weekday name of the record's date.
func (r OvertimeRecord) Weekday() string {
	return r.Date.Weekday().String()
}

// DateLabel returns the date formatted as DD-Mon-YYYY.
func (r OvertimeRecord) DateLabel() string {
	return r.Date.Format(DateLabelLayout)
}

// HomeArrivalLabel returns the home arrival as HH:MM, or "" for full-day entries.
func (r OvertimeRecord) HomeArrivalLabel() string {
	if r.HomeArrival == nil {
		return ""
	}
	return r.HomeArrival.Format(ClockLayout)
}

// OvertimeReport is the result of one overtime run over an uploaded file.
type OvertimeReport struct {
	// ID is set once the report has been archived; uuid.Nil otherwise.
	ID          uuid.UUID
	FileName    string
	ContentHash string
	Range       DateRange
	Records     []OvertimeRecord
	Patterns    []WorkPattern
	TotalHours  float64
	Stats       IngestStats
	CreatedAt   time.Time
}

// IngestStats counts how the raw rows of a file were treated.
type IngestStats struct {
	Rows             int
	BlankRows        int
	UnknownTimes     int
	UnknownLocations int
	BadMiles         int
}

// ReportSummary is the list view of an archived report.
type ReportSummary struct {
	ID          uuid.UUID
	FileName    string
	ContentHash string
	TotalHours  float64
	Days        int
	CreatedAt   time.Time
}
