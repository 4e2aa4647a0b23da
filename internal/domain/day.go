package domain

import "time"

// DayBucket holds every timed TripEvent that shares one calendar date.
// Events are ordered by Start ascending; events with identical start times
// keep their input order.
type DayBucket struct {
	Date   time.Time
	Events []TripEvent
}

// HasActivity reports whether anything was recorded on the day.
func (b DayBucket) HasActivity() bool {
	return len(b.Events) > 0
}

// Weekend reports whether the bucket's date falls on a Saturday or Sunday.
func (b DayBucket) Weekend() bool {
	return IsWeekend(b.Date)
}

// IsWeekend reports whether t falls on a Saturday or Sunday.
func IsWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}
