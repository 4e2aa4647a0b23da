package overtime

import (
	"time"

	"github.com/pkordes/trip-overtime/internal/domain"
)

// Off-day offsets relative to a worked weekend day.
var (
	sundayOffsets   = []int{-2, -1}
	saturdayOffsets = []int{1, 2}
)

// OffDays derives the rest days owed for the given worked Sundays and
// Saturdays: the Friday and Saturday before each Sunday, the Sunday and
// Monday after each Saturday.
func OffDays(sundays, saturdays []time.Time) domain.DateSet {
	off := domain.DateSet{}
	for _, s := range sundays {
		for _, n := range sundayOffsets {
			off.Add(domain.DateOf(s).AddDate(0, 0, n))
		}
	}
	for _, t := range saturdays {
		for _, n := range saturdayOffsets {
			off.Add(domain.DateOf(t).AddDate(0, 0, n))
		}
	}
	return off
}

// DetectPattern finds the weekend days worked in month and the off-days they
// imply. Buckets outside month are ignored, and off-days that would fall in
// a neighbouring month are dropped, so each month is judged on its own.
func DetectPattern(month domain.Month, buckets []domain.DayBucket) domain.WorkPattern {
	p := domain.WorkPattern{
		Month:           month,
		WorkedSaturdays: domain.DateSet{},
		WorkedSundays:   domain.DateSet{},
		OffDays:         domain.DateSet{},
	}
	for _, b := range buckets {
		if !month.Contains(b.Date) || !b.HasActivity() {
			continue
		}
		switch b.Date.Weekday() {
		case time.Saturday:
			p.WorkedSaturdays.Add(b.Date)
		case time.Sunday:
			p.WorkedSundays.Add(b.Date)
		}
	}

	for d := range OffDays(p.WorkedSundays.Sorted(), p.WorkedSaturdays.Sorted()) {
		if month.Contains(d) {
			p.OffDays.Add(d)
		}
	}
	return p
}
