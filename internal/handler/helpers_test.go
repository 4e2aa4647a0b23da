package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/trip-overtime/internal/domain"
	"github.com/pkordes/trip-overtime/internal/handler"
)

const testOpenAPI = "openapi: 3.0.3\n"

// mockServicer is a test double for handler.OvertimeServicer.
// Set only the method fields your test needs.
type mockServicer struct {
	overtime    func(ctx context.Context, up domain.Upload, r domain.DateRange) (domain.OvertimeReport, error)
	summary     func(ctx context.Context, up domain.Upload) (domain.MileageSummary, error)
	getReport   func(ctx context.Context, id uuid.UUID) (domain.OvertimeReport, error)
	listReports func(ctx context.Context, p domain.PaginationParams) ([]domain.ReportSummary, int64, error)
}

func (m *mockServicer) Overtime(ctx context.Context, up domain.Upload, r domain.DateRange) (domain.OvertimeReport, error) {
	return m.overtime(ctx, up, r)
}
func (m *mockServicer) Summary(ctx context.Context, up domain.Upload) (domain.MileageSummary, error) {
	return m.summary(ctx, up)
}
func (m *mockServicer) GetReport(ctx context.Context, id uuid.UUID) (domain.OvertimeReport, error) {
	return m.getReport(ctx, id)
}
func (m *mockServicer) ListReports(ctx context.Context, p domain.PaginationParams) ([]domain.ReportSummary, int64, error) {
	return m.listReports(ctx, p)
}

// compile-time check: mockServicer must satisfy handler.OvertimeServicer.
var _ handler.OvertimeServicer = (*mockServicer)(nil)

// newHTTPHandler wires a Server with the given mock, the way main.go does.
func newHTTPHandler(svc handler.OvertimeServicer) http.Handler {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return handler.NewServer(svc, []byte(testOpenAPI), log).Routes()
}

// multipartRequest builds a POST with the given file in field "file".
func multipartRequest(t *testing.T, target, filename string, content []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) handler.ErrorResponse {
	t.Helper()
	var body handler.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}
