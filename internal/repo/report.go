// Package repo contains all database access logic for the report archive.
// No business logic lives here — only SQL and type mapping.
package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/trip-overtime/internal/domain"
)

// db is the minimal interface satisfied by *pgxpool.Pool and pgx.Tx.
// Accepting this interface lets integration tests pass a transaction that is
// rolled back after each test. Begin on a pgx.Tx opens a savepoint.
type db interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// ReportRepo defines the persistence operations for archived overtime reports.
type ReportRepo interface {
	// Create stores the report and its day records, returning the report with
	// its DB-generated ID and CreatedAt populated.
	Create(ctx context.Context, report domain.OvertimeReport) (domain.OvertimeReport, error)

	// GetByID returns a stored report with its records ordered by date.
	// Returns domain.ErrNotFound if no report with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.OvertimeReport, error)

	// ListPaged returns one page of report summaries, newest first, and the
	// total number of stored reports.
	ListPaged(ctx context.Context, p domain.PaginationParams) ([]domain.ReportSummary, int64, error)
}

type pgReportRepo struct {
	db db
}

// NewReportRepo constructs a ReportRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewReportRepo(db db) ReportRepo {
	return &pgReportRepo{db: db}
}

// Create inserts the report row and one report_days row per record in a
// single transaction.
func (r *pgReportRepo) Create(ctx context.Context, report domain.OvertimeReport) (domain.OvertimeReport, error) {
	const insertReport = `
		INSERT INTO reports (file_name, content_hash, range_from, range_to, total_hours,
		                     rows_read, blank_rows, unknown_times, unknown_locations, bad_miles)
		VALUES (@file_name, @content_hash, @range_from, @range_to, @total_hours,
		        @rows_read, @blank_rows, @unknown_times, @unknown_locations, @bad_miles)
		RETURNING id, created_at`

	const insertDay = `
		INSERT INTO report_days (report_id, day, home_arrival, overtime_hours, full_day)
		VALUES (@report_id, @day, @home_arrival, @overtime_hours, @full_day)`

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return domain.OvertimeReport{}, fmt.Errorf("repo.ReportRepo.Create: begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var id pgtype.UUID
	err = tx.QueryRow(ctx, insertReport, pgx.NamedArgs{
		"file_name":         report.FileName,
		"content_hash":      report.ContentHash,
		"range_from":        nullableDate(report.Range.From),
		"range_to":          nullableDate(report.Range.To),
		"total_hours":       report.TotalHours,
		"rows_read":         report.Stats.Rows,
		"blank_rows":        report.Stats.BlankRows,
		"unknown_times":     report.Stats.UnknownTimes,
		"unknown_locations": report.Stats.UnknownLocations,
		"bad_miles":         report.Stats.BadMiles,
	}).Scan(&id, &report.CreatedAt)
	if err != nil {
		return domain.OvertimeReport{}, fmt.Errorf("repo.ReportRepo.Create: insert report: %w", err)
	}
	report.ID = uuid.UUID(id.Bytes)

	for _, rec := range report.Records {
		_, err := tx.Exec(ctx, insertDay, pgx.NamedArgs{
			"report_id":      report.ID,
			"day":            rec.Date,
			"home_arrival":   rec.HomeArrival, // nil becomes NULL
			"overtime_hours": rec.Hours,
			"full_day":       rec.FullDay,
		})
		if err != nil {
			return domain.OvertimeReport{}, fmt.Errorf("repo.ReportRepo.Create: insert day %s: %w", rec.Date.Format(domain.DateLayout), err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.OvertimeReport{}, fmt.Errorf("repo.ReportRepo.Create: commit: %w", err)
	}
	return report, nil
}

// GetByID loads a report and its day records.
func (r *pgReportRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.OvertimeReport, error) {
	const q = `
		SELECT id, file_name, content_hash, range_from, range_to, total_hours,
		       rows_read, blank_rows, unknown_times, unknown_locations, bad_miles, created_at
		FROM reports
		WHERE id = @id`

	const qDays = `
		SELECT day, home_arrival, overtime_hours, full_day
		FROM report_days
		WHERE report_id = @id
		ORDER BY day`

	report, err := scanReport(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.OvertimeReport{}, fmt.Errorf("repo.ReportRepo.GetByID: %w", err)
	}

	rows, err := r.db.Query(ctx, qDays, pgx.NamedArgs{"id": id})
	if err != nil {
		return domain.OvertimeReport{}, fmt.Errorf("repo.ReportRepo.GetByID: days: %w", err)
	}
	defer rows.Close()

	report.Records = []domain.OvertimeRecord{}
	for rows.Next() {
		rec, err := scanDay(rows)
		if err != nil {
			return domain.OvertimeReport{}, fmt.Errorf("repo.ReportRepo.GetByID: scan day: %w", err)
		}
		report.Records = append(report.Records, rec)
	}
	if err := rows.Err(); err != nil {
		return domain.OvertimeReport{}, fmt.Errorf("repo.ReportRepo.GetByID: rows: %w", err)
	}
	return report, nil
}

// ListPaged returns report summaries ordered by created_at descending.
func (r *pgReportRepo) ListPaged(ctx context.Context, p domain.PaginationParams) ([]domain.ReportSummary, int64, error) {
	const qCount = `SELECT count(*) FROM reports`

	const q = `
		SELECT r.id, r.file_name, r.content_hash, r.total_hours,
		       (SELECT count(*) FROM report_days d WHERE d.report_id = r.id) AS days,
		       r.created_at
		FROM reports r
		ORDER BY r.created_at DESC, r.id
		LIMIT @limit OFFSET @offset`

	var total int64
	if err := r.db.QueryRow(ctx, qCount).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repo.ReportRepo.ListPaged: count: %w", err)
	}

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"limit": p.Limit, "offset": p.Offset()})
	if err != nil {
		return nil, 0, fmt.Errorf("repo.ReportRepo.ListPaged: %w", err)
	}
	defer rows.Close()

	summaries := []domain.ReportSummary{}
	for rows.Next() {
		var (
			s    domain.ReportSummary
			id   pgtype.UUID
			days int64
		)
		if err := rows.Scan(&id, &s.FileName, &s.ContentHash, &s.TotalHours, &days, &s.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("repo.ReportRepo.ListPaged: scan: %w", err)
		}
		s.ID = uuid.UUID(id.Bytes)
		s.Days = int(days)
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("repo.ReportRepo.ListPaged: rows: %w", err)
	}
	return summaries, total, nil
}

// scanner is satisfied by both pgx.Row and pgx.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanReport(s scanner) (domain.OvertimeReport, error) {
	var (
		rep      domain.OvertimeReport
		id       pgtype.UUID
		from, to pgtype.Date
	)
	err := s.Scan(&id, &rep.FileName, &rep.ContentHash, &from, &to, &rep.TotalHours,
		&rep.Stats.Rows, &rep.Stats.BlankRows, &rep.Stats.UnknownTimes,
		&rep.Stats.UnknownLocations, &rep.Stats.BadMiles, &rep.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.OvertimeReport{}, domain.ErrNotFound
		}
		return domain.OvertimeReport{}, err
	}
	rep.ID = uuid.UUID(id.Bytes)
	if from.Valid {
		rep.Range.From = from.Time
	}
	if to.Valid {
		rep.Range.To = to.Time
	}
	return rep, nil
}

func scanDay(s scanner) (domain.OvertimeRecord, error) {
	var (
		rec     domain.OvertimeRecord
		day     pgtype.Date
		arrival pgtype.Timestamp
	)
	if err := s.Scan(&day, &arrival, &rec.Hours, &rec.FullDay); err != nil {
		return domain.OvertimeRecord{}, err
	}
	rec.Date = domain.DateOf(day.Time)
	if arrival.Valid {
		a := arrival.Time
		rec.HomeArrival = &a
	}
	return rec, nil
}

// nullableDate maps an open range bound to NULL.
func nullableDate(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
