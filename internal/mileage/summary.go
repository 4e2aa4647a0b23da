// Package mileage builds the per-day mileage summary of a trip export.
package mileage

import (
	"math"
	"slices"
	"time"

	"github.com/pkordes/trip-overtime/internal/domain"
)

// Summarize totals miles per calendar date and records the day's postcode
// trail. Events without a start time cannot be dated and are left out.
// Days are in date order; within a day, events keep their input order.
func Summarize(events []domain.TripEvent) domain.MileageSummary {
	type acc struct {
		miles float64
		codes []string
	}
	byDate := make(map[time.Time]*acc)
	for _, ev := range events {
		if !ev.HasTime() {
			continue
		}
		d := ev.Date()
		a, ok := byDate[d]
		if !ok {
			a = &acc{}
			byDate[d] = a
		}
		a.miles += ev.Miles
		for _, c := range []string{ev.StartCode, ev.EndCode} {
			if c != "" {
				a.codes = append(a.codes, c)
			}
		}
	}

	summary := domain.MileageSummary{Days: make([]domain.DailyMileage, 0, len(byDate))}
	for d, a := range byDate {
		summary.Days = append(summary.Days, domain.DailyMileage{
			Date:      d,
			Miles:     roundTenth(a.miles),
			Postcodes: dedupeConsecutive(a.codes),
		})
	}
	slices.SortFunc(summary.Days, func(a, b domain.DailyMileage) int {
		return a.Date.Compare(b.Date)
	})
	for _, d := range summary.Days {
		summary.TotalMiles += d.Miles
	}
	summary.TotalMiles = roundTenth(summary.TotalMiles)
	return summary
}

// dedupeConsecutive collapses runs of equal codes: UB3,UB2,UB2,UB3 → UB3,UB2,UB3.
func dedupeConsecutive(codes []string) []string {
	out := make([]string, 0, len(codes))
	for _, c := range codes {
		if len(out) > 0 && out[len(out)-1] == c {
			continue
		}
		out = append(out, c)
	}
	return out
}

func roundTenth(f float64) float64 {
	return math.Round(f*10) / 10
}
