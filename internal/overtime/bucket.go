package overtime

import (
	"slices"
	"time"

	"github.com/pkordes/trip-overtime/internal/domain"
)

// Bucket groups events by calendar date. Events without a start time are
// dropped. Buckets are ordered by date; events inside a bucket by start time,
// with ties kept in input order.
func Bucket(events []domain.TripEvent) []domain.DayBucket {
	byDate := make(map[time.Time][]domain.TripEvent)
	for _, ev := range events {
		if !ev.HasTime() {
			continue
		}
		d := ev.Date()
		byDate[d] = append(byDate[d], ev)
	}

	buckets := make([]domain.DayBucket, 0, len(byDate))
	for d, evs := range byDate {
		slices.SortStableFunc(evs, func(a, b domain.TripEvent) int {
			return a.Start.Compare(b.Start)
		})
		buckets = append(buckets, domain.DayBucket{Date: d, Events: evs})
	}
	slices.SortFunc(buckets, func(a, b domain.DayBucket) int {
		return a.Date.Compare(b.Date)
	})
	return buckets
}

// groupByMonth splits date-ordered buckets into consecutive per-month runs.
func groupByMonth(buckets []domain.DayBucket) [][]domain.DayBucket {
	var groups [][]domain.DayBucket
	for i, b := range buckets {
		if i == 0 || domain.MonthOf(b.Date) != domain.MonthOf(buckets[i-1].Date) {
			groups = append(groups, nil)
		}
		groups[len(groups)-1] = append(groups[len(groups)-1], b)
	}
	return groups
}
