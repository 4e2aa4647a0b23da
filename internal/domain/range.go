package domain

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the ISO date format accepted for range bounds.
const DateLayout = "2006-01-02"

// DateRange restricts an overtime run to the inclusive span [From, To].
// A zero bound is open.
type DateRange struct {
	From time.Time
	To   time.Time
}

// ParseRange builds a DateRange from optional "2006-01-02" strings.
// Returns ErrValidation for malformed dates or when to is before from.
func ParseRange(from, to string) (DateRange, error) {
	var r DateRange
	var err error
	if r.From, err = parseBound("from", from); err != nil {
		return DateRange{}, err
	}
	if r.To, err = parseBound("to", to); err != nil {
		return DateRange{}, err
	}
	if !r.From.IsZero() && !r.To.IsZero() && r.To.Before(r.From) {
		return DateRange{}, fmt.Errorf("%w: to must not be before from", ErrValidation)
	}
	return r, nil
}

func parseBound(name, value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s must be a date in YYYY-MM-DD format", ErrValidation, name)
	}
	return t, nil
}

// Contains reports whether the calendar date of t lies inside the range.
func (r DateRange) Contains(t time.Time) bool {
	d := DateOf(t)
	if !r.From.IsZero() && d.Before(r.From) {
		return false
	}
	if !r.To.IsZero() && d.After(r.To) {
		return false
	}
	return true
}

// String renders the range for cache keys and logs, e.g. "2024-03-01..".
func (r DateRange) String() string {
	var b strings.Builder
	if !r.From.IsZero() {
		b.WriteString(r.From.Format(DateLayout))
	}
	b.WriteString("..")
	if !r.To.IsZero() {
		b.WriteString(r.To.Format(DateLayout))
	}
	return b.String()
}
