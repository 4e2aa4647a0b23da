package domain

import (
	"slices"
	"time"
)

// DateSet is a set of calendar dates. Keys must come from DateOf.
type DateSet map[time.Time]struct{}

// Add inserts d (normalized with DateOf) into the set.
func (s DateSet) Add(d time.Time) {
	s[DateOf(d)] = struct{}{}
}

// Has reports whether d is a member of the set.
func (s DateSet) Has(d time.Time) bool {
	_, ok := s[DateOf(d)]
	return ok
}

// Sorted returns the members in ascending order. Never nil.
func (s DateSet) Sorted() []time.Time {
	out := make([]time.Time, 0, len(s))
	for d := range s {
		out = append(out, d)
	}
	slices.SortFunc(out, func(a, b time.Time) int { return a.Compare(b) })
	return out
}

// Month identifies a calendar month.
type Month struct {
	Year  int
	Month time.Month
}

// MonthOf returns the calendar month containing t.
func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month()}
}

// Contains reports whether t falls inside the month.
func (m Month) Contains(t time.Time) bool {
	return t.Year() == m.Year && t.Month() == m.Month
}

// String formats the month as "2006-01".
func (m Month) String() string {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC).Format("2006-01")
}

// WorkPattern is the weekend-work context derived for one calendar month.
type WorkPattern struct {
	Month           Month
	WorkedSaturdays DateSet
	WorkedSundays   DateSet

	// OffDays are the compensating rest days implied by the worked weekend
	// days. Membership does not depend on activity on the off-day itself.
	OffDays DateSet
}
