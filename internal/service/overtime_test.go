package service_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/trip-overtime/internal/domain"
	"github.com/pkordes/trip-overtime/internal/ingest"
	"github.com/pkordes/trip-overtime/internal/overtime"
	"github.com/pkordes/trip-overtime/internal/postcode"
	"github.com/pkordes/trip-overtime/internal/repo"
	"github.com/pkordes/trip-overtime/internal/service"
)

// ---- test doubles ----------------------------------------------------------

// stubReader returns fixed rows and counts how often it was asked.
type stubReader struct {
	rows  []domain.RawTrip
	err   error
	calls atomic.Int32
}

func (r *stubReader) Read(_ string, _ []byte) ([]domain.RawTrip, error) {
	r.calls.Add(1)
	return r.rows, r.err
}

var _ service.RowReader = (*stubReader)(nil)

// mockReportRepo is a hand-written test double for repo.ReportRepo.
// Set only the function fields the test needs.
type mockReportRepo struct {
	create    func(ctx context.Context, r domain.OvertimeReport) (domain.OvertimeReport, error)
	getByID   func(ctx context.Context, id uuid.UUID) (domain.OvertimeReport, error)
	listPaged func(ctx context.Context, p domain.PaginationParams) ([]domain.ReportSummary, int64, error)
}

func (m *mockReportRepo) Create(ctx context.Context, r domain.OvertimeReport) (domain.OvertimeReport, error) {
	return m.create(ctx, r)
}
func (m *mockReportRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.OvertimeReport, error) {
	return m.getByID(ctx, id)
}
func (m *mockReportRepo) ListPaged(ctx context.Context, p domain.PaginationParams) ([]domain.ReportSummary, int64, error) {
	return m.listPaged(ctx, p)
}

var _ repo.ReportRepo = (*mockReportRepo)(nil)

// ---- helpers ---------------------------------------------------------------

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// marchRows is a small log: a late Tuesday, a worked Sunday and a trip on
// the Friday that Sunday turns into an off-day.
func marchRows() []domain.RawTrip {
	return []domain.RawTrip{
		{StartTime: "05/03/2024 16:40", StartLocation: "Depot, UB7 0AB", EndLocation: "Home", Miles: "12.4"},
		{StartTime: "05/03/2024 18:07", StartLocation: "Job, TW6 2GA", EndLocation: "Home", Miles: "8"},
		{StartTime: "08/03/2024 09:00", StartLocation: "Home", EndLocation: "SL3 8QQ", Miles: "5"},
		{StartTime: "10/03/2024 10:00", StartLocation: "Home", EndLocation: "Rico Pudo locker", Miles: "3.3"},
		{},
	}
}

func newService(reader service.RowReader, archive repo.ReportRepo) *service.OvertimeService {
	return service.NewOvertimeService(
		reader,
		ingest.NewBuilder(postcode.New(postcode.DefaultHome, postcode.DefaultAliases...)),
		overtime.NewEngine(overtime.DefaultPolicy()),
		service.NewCaches(),
		archive,
		quietLogger(),
	)
}

func upload() domain.Upload {
	return domain.Upload{Name: "march.xlsx", Data: []byte("workbook bytes")}
}

// ---- Overtime --------------------------------------------------------------

func TestOvertimeService_Overtime(t *testing.T) {
	svc := newService(&stubReader{rows: marchRows()}, nil)

	got, err := svc.Overtime(context.Background(), upload(), domain.DateRange{})

	require.NoError(t, err)
	assert.Equal(t, "march.xlsx", got.FileName)
	assert.NotEmpty(t, got.ContentHash)
	assert.Equal(t, uuid.Nil, got.ID, "no archive means no ID")
	assert.Equal(t, 4, got.Stats.Rows)
	assert.Equal(t, 1, got.Stats.BlankRows)

	// 05-Mar 18:07 → 1.0 h, 08-Mar off-day → 7.5 h, 10-Mar worked Sunday is
	// not itself an off-day and has no home arrival.
	require.Len(t, got.Records, 2)
	assert.Equal(t, "05-Mar-2024", got.Records[0].DateLabel())
	assert.InDelta(t, 1.0, got.Records[0].Hours, 1e-9)
	assert.Equal(t, "08-Mar-2024", got.Records[1].DateLabel())
	assert.True(t, got.Records[1].FullDay)
	assert.InDelta(t, 8.5, got.TotalHours, 1e-9)
	require.Len(t, got.Patterns, 1)
}

func TestOvertimeService_Overtime_RangeFilters(t *testing.T) {
	svc := newService(&stubReader{rows: marchRows()}, nil)
	r, err := domain.ParseRange("2024-03-06", "2024-03-31")
	require.NoError(t, err)

	got, err := svc.Overtime(context.Background(), upload(), r)

	require.NoError(t, err)
	require.Len(t, got.Records, 1)
	assert.Equal(t, "08-Mar-2024", got.Records[0].DateLabel())
	assert.InDelta(t, 7.5, got.TotalHours, 1e-9)
}

func TestOvertimeService_Overtime_CachesIdenticalInput(t *testing.T) {
	reader := &stubReader{rows: marchRows()}
	svc := newService(reader, nil)
	ctx := context.Background()

	first, err := svc.Overtime(ctx, upload(), domain.DateRange{})
	require.NoError(t, err)
	second, err := svc.Overtime(ctx, upload(), domain.DateRange{})
	require.NoError(t, err)

	assert.Equal(t, int32(1), reader.calls.Load())
	assert.Equal(t, first.TotalHours, second.TotalHours)

	// A different range is a different request.
	r, err := domain.ParseRange("2024-03-06", "")
	require.NoError(t, err)
	_, err = svc.Overtime(ctx, upload(), r)
	require.NoError(t, err)
	assert.Equal(t, int32(2), reader.calls.Load())
}

func TestOvertimeService_Overtime_EmptyUpload(t *testing.T) {
	svc := newService(&stubReader{}, nil)

	_, err := svc.Overtime(context.Background(), domain.Upload{Name: "x.xlsx"}, domain.DateRange{})

	require.ErrorIs(t, err, domain.ErrValidation)
}

func TestOvertimeService_Overtime_ReaderErrorNotCached(t *testing.T) {
	reader := &stubReader{err: domain.ErrInvalidWorkbook}
	svc := newService(reader, nil)
	ctx := context.Background()

	_, err := svc.Overtime(ctx, upload(), domain.DateRange{})
	require.ErrorIs(t, err, domain.ErrInvalidWorkbook)

	reader.err = nil
	reader.rows = marchRows()
	got, err := svc.Overtime(ctx, upload(), domain.DateRange{})
	require.NoError(t, err)
	assert.NotEmpty(t, got.Records)
}

func TestOvertimeService_Overtime_NoReadableTimes(t *testing.T) {
	rows := []domain.RawTrip{
		{StartTime: "soon", StartLocation: "Home", EndLocation: "UB7", Miles: "1"},
		{StartTime: "later", StartLocation: "UB7", EndLocation: "Home", Miles: "1"},
		{StartTime: "tomorrow", StartLocation: "Home", EndLocation: "TW6", Miles: "2"},
	}
	svc := newService(&stubReader{rows: rows}, nil)

	_, err := svc.Overtime(context.Background(), upload(), domain.DateRange{})

	require.ErrorIs(t, err, domain.ErrInvalidWorkbook)
}

func TestOvertimeService_Overtime_OneUnreadableRowIsEmptyReport(t *testing.T) {
	rows := []domain.RawTrip{{StartTime: "soon", StartLocation: "Home", EndLocation: "UB7", Miles: "1"}}
	svc := newService(&stubReader{rows: rows}, nil)

	got, err := svc.Overtime(context.Background(), upload(), domain.DateRange{})

	require.NoError(t, err)
	assert.Empty(t, got.Records)
	assert.Zero(t, got.TotalHours)
	assert.Equal(t, 1, got.Stats.UnknownTimes)
}

func TestOvertimeService_Overtime_Archives(t *testing.T) {
	id := uuid.New()
	var stored domain.OvertimeReport
	archive := &mockReportRepo{
		create: func(_ context.Context, r domain.OvertimeReport) (domain.OvertimeReport, error) {
			stored = r
			r.ID = id
			r.CreatedAt = time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC)
			return r, nil
		},
	}
	svc := newService(&stubReader{rows: marchRows()}, archive)

	got, err := svc.Overtime(context.Background(), upload(), domain.DateRange{})

	require.NoError(t, err)
	assert.Equal(t, id, got.ID)
	assert.Len(t, stored.Records, 2)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestOvertimeService_Overtime_ArchiveFailureIsNotFatal(t *testing.T) {
	archive := &mockReportRepo{
		create: func(_ context.Context, _ domain.OvertimeReport) (domain.OvertimeReport, error) {
			return domain.OvertimeReport{}, errors.New("connection refused")
		},
	}
	svc := newService(&stubReader{rows: marchRows()}, archive)

	got, err := svc.Overtime(context.Background(), upload(), domain.DateRange{})

	require.NoError(t, err)
	assert.Equal(t, uuid.Nil, got.ID)
	assert.Len(t, got.Records, 2)
}

func TestOvertimeService_Overtime_RetriesArchiveOnNextRequest(t *testing.T) {
	id := uuid.New()
	var creates atomic.Int32
	archive := &mockReportRepo{
		create: func(_ context.Context, r domain.OvertimeReport) (domain.OvertimeReport, error) {
			if creates.Add(1) == 1 {
				return domain.OvertimeReport{}, errors.New("connection refused")
			}
			r.ID = id
			return r, nil
		},
	}
	reader := &stubReader{rows: marchRows()}
	svc := newService(reader, archive)
	ctx := context.Background()

	first, err := svc.Overtime(ctx, upload(), domain.DateRange{})
	require.NoError(t, err)
	assert.Equal(t, uuid.Nil, first.ID)

	second, err := svc.Overtime(ctx, upload(), domain.DateRange{})
	require.NoError(t, err)
	assert.Equal(t, id, second.ID)

	third, err := svc.Overtime(ctx, upload(), domain.DateRange{})
	require.NoError(t, err)
	assert.Equal(t, id, third.ID)

	assert.Equal(t, int32(2), creates.Load(), "archived once after the failure")
	assert.Equal(t, int32(1), reader.calls.Load(), "computed once")
}

func TestOvertimeService_Overtime_ArchiveOutlivesCancelledRequest(t *testing.T) {
	id := uuid.New()
	archive := &mockReportRepo{
		create: func(ctx context.Context, r domain.OvertimeReport) (domain.OvertimeReport, error) {
			if err := ctx.Err(); err != nil {
				return domain.OvertimeReport{}, err
			}
			r.ID = id
			return r, nil
		},
	}
	svc := newService(&stubReader{rows: marchRows()}, archive)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	got, err := svc.Overtime(ctx, upload(), domain.DateRange{})

	require.NoError(t, err)
	assert.Equal(t, id, got.ID)
}

func TestOvertimeService_Overtime_FileNameIsPerRequest(t *testing.T) {
	reader := &stubReader{rows: marchRows()}
	svc := newService(reader, nil)
	ctx := context.Background()
	april := upload()
	april.Name = "april.xlsx"

	first, err := svc.Overtime(ctx, upload(), domain.DateRange{})
	require.NoError(t, err)
	second, err := svc.Overtime(ctx, april, domain.DateRange{})
	require.NoError(t, err)

	assert.Equal(t, "march.xlsx", first.FileName)
	assert.Equal(t, "april.xlsx", second.FileName)
	assert.Equal(t, int32(1), reader.calls.Load())
}

// ---- Summary ---------------------------------------------------------------

func TestOvertimeService_Summary(t *testing.T) {
	svc := newService(&stubReader{rows: marchRows()}, nil)

	got, err := svc.Summary(context.Background(), upload())

	require.NoError(t, err)
	assert.Equal(t, "march.xlsx", got.FileName)
	require.Len(t, got.Days, 3)
	assert.InDelta(t, 20.4, got.Days[0].Miles, 1e-9)
	assert.Equal(t, []string{"UB7", "UB3", "TW6", "UB3"}, got.Days[0].Postcodes)
	assert.Equal(t, []string{"UB3", "UB7"}, got.Days[2].Postcodes)
	assert.InDelta(t, 28.7, got.TotalMiles, 1e-9)
}

func TestOvertimeService_Summary_EmptyUpload(t *testing.T) {
	svc := newService(&stubReader{}, nil)

	_, err := svc.Summary(context.Background(), domain.Upload{Name: "x.xlsx"})

	require.ErrorIs(t, err, domain.ErrValidation)
}

// ---- archive reads ---------------------------------------------------------

func TestOvertimeService_GetReport(t *testing.T) {
	id := uuid.New()
	archive := &mockReportRepo{
		getByID: func(_ context.Context, got uuid.UUID) (domain.OvertimeReport, error) {
			if got != id {
				return domain.OvertimeReport{}, domain.ErrNotFound
			}
			return domain.OvertimeReport{ID: id, FileName: "march.xlsx"}, nil
		},
	}
	svc := newService(&stubReader{}, archive)

	got, err := svc.GetReport(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "march.xlsx", got.FileName)

	_, err = svc.GetReport(context.Background(), uuid.New())
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestOvertimeService_GetReport_NoArchive(t *testing.T) {
	svc := newService(&stubReader{}, nil)

	_, err := svc.GetReport(context.Background(), uuid.New())

	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestOvertimeService_ListReports(t *testing.T) {
	archive := &mockReportRepo{
		listPaged: func(_ context.Context, p domain.PaginationParams) ([]domain.ReportSummary, int64, error) {
			assert.Equal(t, 2, p.Page)
			return []domain.ReportSummary{{FileName: "a.xlsx"}}, 21, nil
		},
	}
	svc := newService(&stubReader{}, archive)

	items, total, err := svc.ListReports(context.Background(), domain.PaginationParams{Page: 2, Limit: 20})

	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, int64(21), total)
}

func TestOvertimeService_ListReports_NoArchive(t *testing.T) {
	svc := newService(&stubReader{}, nil)

	items, total, err := svc.ListReports(context.Background(), domain.PaginationParams{Page: 1, Limit: 20})

	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Zero(t, total)
}

func TestOvertimeService_Summary_FileNameIsPerRequest(t *testing.T) {
	reader := &stubReader{rows: marchRows()}
	svc := newService(reader, nil)
	ctx := context.Background()
	april := upload()
	april.Name = "april.xlsx"

	first, err := svc.Summary(ctx, upload())
	require.NoError(t, err)
	second, err := svc.Summary(ctx, april)
	require.NoError(t, err)

	assert.Equal(t, "march.xlsx", first.FileName)
	assert.Equal(t, "april.xlsx", second.FileName)
	assert.Equal(t, int32(1), reader.calls.Load())
}
