// Package domain contains the core data types for the trip overtime service.
// This package depends only on the standard library and google/uuid, and is
// imported by every other internal package.
package domain

import (
	"strings"
	"time"
)

// RawTrip is one data row of a mileage export, exactly as read from the
// spreadsheet. All cells are kept as text; coercion happens in ingest.Builder.
type RawTrip struct {
	StartTime     string
	StartLocation string
	EndLocation   string
	Miles         string
}

// Blank reports whether every cell of the row is empty after trimming.
func (r RawTrip) Blank() bool {
	return isBlank(r.StartTime) && isBlank(r.StartLocation) && isBlank(r.EndLocation) && isBlank(r.Miles)
}

// TripEvent is one recorded movement after normalization.
// A zero Start means the start time could not be parsed; such events never
// take part in date bucketing.
type TripEvent struct {
	Start     time.Time
	StartCode string
	EndCode   string
	Miles     float64
}

// HasTime reports whether the event carries a usable start time.
func (e TripEvent) HasTime() bool {
	return !e.Start.IsZero()
}

// Date returns the calendar date of the event's start time.
// Only meaningful when HasTime is true.
func (e TripEvent) Date() time.Time {
	return DateOf(e.Start)
}

// DateOf truncates t to its calendar date at midnight UTC.
// All date keys in the service are produced by this function, so they can be
// compared with == and used as map keys.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
