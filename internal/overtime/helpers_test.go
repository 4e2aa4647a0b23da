package overtime_test

import (
	"testing"
	"time"

	"github.com/pkordes/trip-overtime/internal/domain"
)

// at parses "2006-01-02 15:04" as a wall-clock UTC time.
func at(t *testing.T, s string) time.Time {
	t.Helper()
	ts, err := time.Parse("2006-01-02 15:04", s)
	if err != nil {
		t.Fatalf("at(%q): %v", s, err)
	}
	return ts
}

// day parses "2006-01-02" as a date key.
func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		t.Fatalf("day(%q): %v", s, err)
	}
	return d
}

// trip builds an event from start location to end location at the given time.
func trip(t *testing.T, start, from, to string) domain.TripEvent {
	t.Helper()
	return domain.TripEvent{Start: at(t, start), StartCode: from, EndCode: to, Miles: 5}
}

func bucketOf(t *testing.T, date string, events ...domain.TripEvent) domain.DayBucket {
	t.Helper()
	return domain.DayBucket{Date: day(t, date), Events: events}
}
