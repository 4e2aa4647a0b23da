// Package service contains the use cases of the overtime API and CLI.
// Services orchestrate ingestion, the overtime engine, the result cache and
// the report archive. No SQL and no HTTP live here.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/pkordes/trip-overtime/internal/domain"
	"github.com/pkordes/trip-overtime/internal/ingest"
	"github.com/pkordes/trip-overtime/internal/mileage"
	"github.com/pkordes/trip-overtime/internal/overtime"
	"github.com/pkordes/trip-overtime/internal/repo"
	"github.com/pkordes/trip-overtime/internal/resultcache"
)

// RowReader extracts raw trip rows from an uploaded workbook.
// *ingest.Reader satisfies it.
type RowReader interface {
	Read(name string, data []byte) ([]domain.RawTrip, error)
}

// Caches holds the process-wide memoized results. Build it once at startup
// with NewCaches and share it between every service instance.
type Caches struct {
	Reports   *resultcache.Cache[domain.OvertimeReport]
	Summaries *resultcache.Cache[domain.MileageSummary]
}

// NewCaches returns empty caches.
func NewCaches() Caches {
	return Caches{
		Reports:   resultcache.New[domain.OvertimeReport](),
		Summaries: resultcache.New[domain.MileageSummary](),
	}
}

// OvertimeService turns uploaded trip logs into overtime reports and mileage
// summaries, and serves archived reports.
type OvertimeService struct {
	reader  RowReader
	builder *ingest.Builder
	engine  *overtime.Engine
	caches  Caches
	archive repo.ReportRepo
	log     *slog.Logger

	// archiving serializes archive writes per cache key.
	archiving singleflight.Group
}

// NewOvertimeService wires the pipeline. archive may be nil, in which case
// reports are computed but never stored.
func NewOvertimeService(
	reader RowReader,
	builder *ingest.Builder,
	engine *overtime.Engine,
	caches Caches,
	archive repo.ReportRepo,
	log *slog.Logger,
) *OvertimeService {
	return &OvertimeService{
		reader:  reader,
		builder: builder,
		engine:  engine,
		caches:  caches,
		archive: archive,
		log:     log,
	}
}

// Overtime computes the overtime report for the upload, limited to days in r.
// Identical bytes with identical options return the memoized report.
// Archived reports carry a non-nil ID. A report whose archive write failed is
// archived again by the next identical request.
func (s *OvertimeService) Overtime(ctx context.Context, up domain.Upload, r domain.DateRange) (domain.OvertimeReport, error) {
	if len(up.Data) == 0 {
		return domain.OvertimeReport{}, fmt.Errorf("service.OvertimeService.Overtime: %w: empty upload", domain.ErrValidation)
	}

	hash := resultcache.ContentHash(up.Data)
	key := resultcache.Key(hash, "overtime", up.Ext(), r.String())

	report, hit, err := s.caches.Reports.Do(key, func() (domain.OvertimeReport, error) {
		events, stats, err := s.events(up)
		if err != nil {
			return domain.OvertimeReport{}, err
		}

		res := s.engine.Calculate(events, r)
		return domain.OvertimeReport{
			ContentHash: hash,
			Range:       r,
			Records:     res.Records,
			Patterns:    res.Patterns,
			TotalHours:  res.TotalHours,
			Stats:       stats,
		}, nil
	})
	if err != nil {
		return domain.OvertimeReport{}, fmt.Errorf("service.OvertimeService.Overtime: %w", err)
	}
	report.FileName = up.Name
	report = s.store(ctx, key, report)
	// The archived copy carries the name of whichever upload stored it.
	report.FileName = up.Name

	s.log.InfoContext(ctx, "overtime report",
		"file", up.Name,
		"hash", shortHash(hash),
		"range", r.String(),
		"records", len(report.Records),
		"total_hours", report.TotalHours,
		"cache_hit", hit,
	)
	return report, nil
}

// Summary computes the per-day mileage summary for the upload.
func (s *OvertimeService) Summary(ctx context.Context, up domain.Upload) (domain.MileageSummary, error) {
	if len(up.Data) == 0 {
		return domain.MileageSummary{}, fmt.Errorf("service.OvertimeService.Summary: %w: empty upload", domain.ErrValidation)
	}

	hash := resultcache.ContentHash(up.Data)
	key := resultcache.Key(hash, "summary", up.Ext())

	summary, hit, err := s.caches.Summaries.Do(key, func() (domain.MileageSummary, error) {
		events, stats, err := s.events(up)
		if err != nil {
			return domain.MileageSummary{}, err
		}
		summary := mileage.Summarize(events)
		summary.Stats = stats
		return summary, nil
	})
	if err != nil {
		return domain.MileageSummary{}, fmt.Errorf("service.OvertimeService.Summary: %w", err)
	}
	summary.FileName = up.Name

	s.log.InfoContext(ctx, "mileage summary",
		"file", up.Name,
		"hash", shortHash(hash),
		"days", len(summary.Days),
		"total_miles", summary.TotalMiles,
		"cache_hit", hit,
	)
	return summary, nil
}

// GetReport returns an archived report. Without an archive every lookup is
// domain.ErrNotFound.
func (s *OvertimeService) GetReport(ctx context.Context, id uuid.UUID) (domain.OvertimeReport, error) {
	if s.archive == nil {
		return domain.OvertimeReport{}, fmt.Errorf("service.OvertimeService.GetReport: %w", domain.ErrNotFound)
	}
	report, err := s.archive.GetByID(ctx, id)
	if err != nil {
		return domain.OvertimeReport{}, fmt.Errorf("service.OvertimeService.GetReport: %w", err)
	}
	return report, nil
}

// ListReports returns one page of archived reports, newest first, and the
// total count. Without an archive the list is always empty.
func (s *OvertimeService) ListReports(ctx context.Context, p domain.PaginationParams) ([]domain.ReportSummary, int64, error) {
	if s.archive == nil {
		return []domain.ReportSummary{}, 0, nil
	}
	items, total, err := s.archive.ListPaged(ctx, p)
	if err != nil {
		return nil, 0, fmt.Errorf("service.OvertimeService.ListReports: %w", err)
	}
	return items, total, nil
}

// events reads and types every row of the upload.
func (s *OvertimeService) events(up domain.Upload) ([]domain.TripEvent, domain.IngestStats, error) {
	rows, err := s.reader.Read(up.Name, up.Data)
	if err != nil {
		return nil, domain.IngestStats{}, err
	}
	events, stats, err := s.builder.Build(rows)
	if err != nil {
		return nil, stats, err
	}
	if stats.BlankRows > 0 || stats.UnknownTimes > 0 || stats.BadMiles > 0 || stats.UnknownLocations > 0 {
		s.log.Debug("rows absorbed",
			"file", up.Name,
			"blank", stats.BlankRows,
			"unknown_times", stats.UnknownTimes,
			"bad_miles", stats.BadMiles,
			"unknown_locations", stats.UnknownLocations,
		)
	}
	return events, stats, nil
}

// store archives a not yet archived report when an archive is configured and
// records the archived copy under key. The write outlives the request
// context. A failed write is logged and the unarchived report is returned.
func (s *OvertimeService) store(ctx context.Context, key string, report domain.OvertimeReport) domain.OvertimeReport {
	if s.archive == nil || report.ID != uuid.Nil {
		return report
	}
	v, _, _ := s.archiving.Do(key, func() (any, error) {
		if cur, ok := s.caches.Reports.Get(key); ok && cur.ID != uuid.Nil {
			return cur, nil
		}
		saved, err := s.archive.Create(context.WithoutCancel(ctx), report)
		if err != nil {
			s.log.WarnContext(ctx, "archive report failed", "file", report.FileName, "error", err)
			return report, nil
		}
		s.caches.Reports.Put(key, saved)
		return saved, nil
	})
	return v.(domain.OvertimeReport)
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}
