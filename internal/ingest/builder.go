package ingest

import (
	"fmt"
	"strings"

	"github.com/pkordes/trip-overtime/internal/domain"
	"github.com/pkordes/trip-overtime/internal/postcode"
)

// layoutCheckRows is the fewest data rows for which an all-unreadable time
// column is taken as a misaligned layout rather than bad data.
const layoutCheckRows = 3

// Builder converts RawTrip rows into TripEvents.
type Builder struct {
	normalizer *postcode.Normalizer
}

// NewBuilder returns a Builder that resolves locations with n.
func NewBuilder(n *postcode.Normalizer) *Builder {
	return &Builder{normalizer: n}
}

// Build coerces every non-blank row into a TripEvent, in input order.
//
// Row problems are absorbed: an unparseable start time yields an event with a
// zero Start, bad miles become 0, unknown locations become "". The batch is
// rejected with domain.ErrInvalidWorkbook only when it has at least
// layoutCheckRows data rows and not one of them has a usable start time,
// which means the layout is wrong. Smaller batches come back with no dated
// events.
func (b *Builder) Build(rows []domain.RawTrip) ([]domain.TripEvent, domain.IngestStats, error) {
	var stats domain.IngestStats
	events := make([]domain.TripEvent, 0, len(rows))

	for _, row := range rows {
		if row.Blank() {
			stats.BlankRows++
			continue
		}
		stats.Rows++

		ev := domain.TripEvent{
			StartCode: b.normalizer.Normalize(row.StartLocation),
			EndCode:   b.normalizer.Normalize(row.EndLocation),
		}
		if start, ok := ParseStartTime(row.StartTime); ok {
			ev.Start = start
		} else {
			stats.UnknownTimes++
		}
		miles, ok := ParseMiles(row.Miles)
		if !ok {
			stats.BadMiles++
		}
		ev.Miles = miles
		if ev.StartCode == "" && strings.TrimSpace(row.StartLocation) != "" {
			stats.UnknownLocations++
		}
		if ev.EndCode == "" && strings.TrimSpace(row.EndLocation) != "" {
			stats.UnknownLocations++
		}

		events = append(events, ev)
	}

	if stats.Rows >= layoutCheckRows && stats.UnknownTimes == stats.Rows {
		return nil, stats, fmt.Errorf("ingest.Builder.Build: %w: none of %d rows has a readable start time", domain.ErrInvalidWorkbook, stats.Rows)
	}
	return events, stats, nil
}
