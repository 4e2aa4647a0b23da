// Package overtime derives daily overtime entitlement from trip events.
//
// The pipeline is Bucket → DetectPattern (per month) → Engine.Compute (per
// day). Everything here is pure: no I/O, no clocks, no shared state.
package overtime

import (
	"fmt"
	"time"

	"github.com/pkordes/trip-overtime/internal/postcode"
)

// Policy holds the constants of the overtime rule.
type Policy struct {
	// HomeCode is the outward postcode that counts as arriving home.
	HomeCode string

	// WeekdayCutoff and WeekendCutoff are offsets from midnight after which a
	// home arrival accrues overtime.
	WeekdayCutoff time.Duration
	WeekendCutoff time.Duration

	// FullDay is both the credit for working an off-day and the per-day cap.
	FullDay time.Duration

	// Granularity is the rounding step; partial steps round up.
	Granularity time.Duration
}

// DefaultPolicy returns the standard rule: home UB3, 17:30 on weekdays,
// 16:30 at weekends, 7.5 hour days, half-hour steps.
func DefaultPolicy() Policy {
	return Policy{
		HomeCode:      postcode.DefaultHome,
		WeekdayCutoff: 17*time.Hour + 30*time.Minute,
		WeekendCutoff: 16*time.Hour + 30*time.Minute,
		FullDay:       7*time.Hour + 30*time.Minute,
		Granularity:   30 * time.Minute,
	}
}

// ParseClock converts "HH:MM" into an offset from midnight.
func ParseClock(s string) (time.Duration, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("overtime.ParseClock: %q is not HH:MM", s)
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}

// cutoff returns the cutoff offset for the given date.
func (p Policy) cutoff(date time.Time) time.Duration {
	switch date.Weekday() {
	case time.Saturday, time.Sunday:
		return p.WeekendCutoff
	default:
		return p.WeekdayCutoff
	}
}

// round rounds d up to the next multiple of Granularity and caps it at FullDay.
// d must be positive.
func (p Policy) round(d time.Duration) time.Duration {
	steps := (d + p.Granularity - 1) / p.Granularity
	return min(steps*p.Granularity, p.FullDay)
}
