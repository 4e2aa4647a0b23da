package overtime

import (
	"time"

	"github.com/pkordes/trip-overtime/internal/domain"
)

// Engine applies a Policy to bucketed trip events.
type Engine struct {
	policy Policy
}

// NewEngine returns an Engine for p.
func NewEngine(p Policy) *Engine {
	return &Engine{policy: p}
}

// Policy returns the policy the engine applies.
func (e *Engine) Policy() Policy {
	return e.policy
}

// Compute decides the overtime owed for one day.
//
// An off-day with any activity is a full day, whatever happened on it.
// Otherwise the latest trip ending at home is compared against the day's
// cutoff; the excess is rounded up to the policy granularity and capped.
// ok is false when nothing is owed.
func (e *Engine) Compute(b domain.DayBucket, offDays domain.DateSet) (rec domain.OvertimeRecord, ok bool) {
	if !b.HasActivity() {
		return domain.OvertimeRecord{}, false
	}
	if offDays.Has(b.Date) {
		return domain.OvertimeRecord{
			Date:    b.Date,
			Hours:   e.policy.FullDay.Hours(),
			FullDay: true,
		}, true
	}

	arrival, found := e.latestHomeArrival(b)
	if !found {
		return domain.OvertimeRecord{}, false
	}
	over := arrival.Sub(b.Date.Add(e.policy.cutoff(b.Date)))
	if over <= 0 {
		return domain.OvertimeRecord{}, false
	}

	owed := e.policy.round(over)
	return domain.OvertimeRecord{
		Date:        b.Date,
		HomeArrival: &arrival,
		Hours:       owed.Hours(),
		FullDay:     owed == e.policy.FullDay,
	}, true
}

func (e *Engine) latestHomeArrival(b domain.DayBucket) (arrival time.Time, found bool) {
	for i := len(b.Events) - 1; i >= 0; i-- {
		if ev := b.Events[i]; ev.EndCode != "" && ev.EndCode == e.policy.HomeCode {
			return ev.Start, true
		}
	}
	return time.Time{}, false
}

// Result is the outcome of a full overtime run.
type Result struct {
	Records    []domain.OvertimeRecord
	Patterns   []domain.WorkPattern
	TotalHours float64
}

// Calculate runs the whole pipeline over events. Weekend work anywhere in a
// month shapes that month's off-days; r only limits which days are reported.
func (e *Engine) Calculate(events []domain.TripEvent, r domain.DateRange) Result {
	res := Result{
		Records:  []domain.OvertimeRecord{},
		Patterns: []domain.WorkPattern{},
	}
	for _, month := range groupByMonth(Bucket(events)) {
		pattern := DetectPattern(domain.MonthOf(month[0].Date), month)
		inRange := false
		for _, b := range month {
			if !r.Contains(b.Date) {
				continue
			}
			inRange = true
			if rec, ok := e.Compute(b, pattern.OffDays); ok {
				res.Records = append(res.Records, rec)
				res.TotalHours += rec.Hours
			}
		}
		if inRange {
			res.Patterns = append(res.Patterns, pattern)
		}
	}
	return res
}
